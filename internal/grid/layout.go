package grid

import (
	"strconv"
	"time"

	"github.com/mauv0809/padel-roster/internal/calendar"
)

// BuildBlank produces the initial grid for a period of periodDays days starting at
// periodStart. Every column gets its weekday and date. Columns falling on
// gameWeekday also get both list labels and their ordinal placeholders.
func BuildBlank(periodStart time.Time, periodDays, gameWeekday, playerCount int) Grid {
	g := New(RowCount(playerCount), periodDays)
	start := calendar.DateOf(periodStart)
	for col := 0; col < periodDays; col++ {
		d := start.AddDate(0, 0, col)
		weekday := calendar.Weekday(d)
		g[WeekdayRow][col] = calendar.WeekdayName(weekday)
		g[DateRow][col] = calendar.FormatDate(d)
		if weekday == gameWeekday {
			layColumn(g, col, playerCount, 0)
		}
	}
	return g
}

// layColumn writes the list labels and ordinal placeholders of one game column.
// Waiting rows beyond the playerCount placeholders, up to waitingRows, are cleared.
func layColumn(g Grid, col, playerCount, waitingRows int) {
	g[ListLabelRow][col] = PlayerListLabel
	for i := 0; i < playerCount; i++ {
		g[FirstListRow+i][col] = strconv.Itoa(i + 1)
	}
	g[FirstListRow+playerCount][col] = ""
	g[WaitingLabelRow(playerCount)][col] = WaitingListLabel
	for i := 0; i < max(playerCount, waitingRows); i++ {
		value := ""
		if i < playerCount {
			value = strconv.Itoa(i + 1)
		}
		g[FirstWaitingRow(playerCount)+i][col] = value
	}
}
