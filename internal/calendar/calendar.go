// Package calendar computes registration windows, period lengths and worksheet
// names for a group's recurring match day. All dates are UTC calendar dates.
package calendar

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mauv0809/padel-roster/internal/apperrors"
)

const (
	// DateLayout is the DD.MM.YYYY format used in grids and commands.
	DateLayout = "02.01.2006"
	// shortLayout is the DD.MM format used in worksheet names.
	shortLayout = "02.01"
	day         = 24 * time.Hour
)

// ErrInvalidState is returned when the next period is requested too early.
var ErrInvalidState = apperrors.Policy("the next registration period cannot be opened yet")

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddWeeks moves date forward by the given number of weeks.
func AddWeeks(date time.Time, weeks int) time.Time {
	return DateOf(date).AddDate(0, 0, weeks*7)
}

// ComputeInitialWindow returns the registration-open-until date of a newly created group.
func ComputeInitialWindow(today time.Time, weeks int) time.Time {
	return AddWeeks(today, weeks)
}

// ComputeNextWindow extends the window by one period. It refuses while the current
// period still has more days left than remain in the game week.
func ComputeNextWindow(now, currentOpenUntil time.Time, weeks, gameWeekday int) (time.Time, error) {
	if left := DaysUntil(now, currentOpenUntil); left > 6-gameWeekday {
		return time.Time{}, fmt.Errorf("%d days left in the current period: %w", left, ErrInvalidState)
	}
	return AddWeeks(currentOpenUntil, weeks), nil
}

// DaysUntil returns the number of whole days from now to date, rounded down.
func DaysUntil(now, date time.Time) int {
	return int(math.Floor(float64(date.Sub(now)) / float64(day)))
}

// DaysInPeriod returns the number of calendar days in [start, end).
func DaysInPeriod(start, end time.Time) int {
	return int(DateOf(end).Sub(DateOf(start)) / day)
}

// PeriodStart returns the first day of the period that ends at openUntil.
func PeriodStart(openUntil time.Time, weeks int) time.Time {
	return AddWeeks(openUntil, -weeks)
}

// PeriodContaining returns the [start, end) bounds of the period that holds date,
// assuming periods of equal length chained back-to-back up to openUntil.
func PeriodContaining(openUntil time.Time, weeks int, date time.Time) (time.Time, time.Time) {
	length := weeks * 7
	end := DateOf(openUntil)
	date = DateOf(date)
	if length <= 0 {
		return end, end
	}
	offset := int(end.Sub(date) / day)
	var shift int
	if offset > 0 {
		shift = (offset - 1) / length
	} else {
		shift = -((-offset)/length + 1)
	}
	end = end.AddDate(0, 0, -shift*length)
	return end.AddDate(0, 0, -length), end
}

// WorksheetName builds "<prefix> DD.MM-DD.MM" for the period [start, end).
func WorksheetName(prefix string, start, end time.Time) string {
	last := DateOf(end).AddDate(0, 0, -1)
	return fmt.Sprintf("%s %s-%s", prefix, DateOf(start).Format(shortLayout), last.Format(shortLayout))
}

// Weekday returns the weekday of date with Monday as 0 and Sunday as 6.
func Weekday(date time.Time) int {
	return (int(date.UTC().Weekday()) + 6) % 7
}

// IsGameDay reports whether date falls on gameWeekday.
func IsGameDay(date time.Time, gameWeekday int) bool {
	return Weekday(date) == gameWeekday
}

// WeekdayName returns the English name of a Monday-based weekday index.
func WeekdayName(weekday int) string {
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return weekdayNames[weekday]
}

// ParseWeekday accepts a weekday name, case-insensitively.
func ParseWeekday(name string) (int, error) {
	name = strings.TrimSpace(name)
	for i, n := range weekdayNames {
		if strings.EqualFold(n, name) {
			return i, nil
		}
	}
	return 0, apperrors.Validation("invalid weekday %q, expected a name like Monday", name)
}

// ParseDate parses a DD.MM.YYYY date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, apperrors.Validation("invalid date %q, expected DD.MM.YYYY", s)
	}
	return t, nil
}

// FormatDate renders date as DD.MM.YYYY.
func FormatDate(date time.Time) string {
	return DateOf(date).Format(DateLayout)
}
