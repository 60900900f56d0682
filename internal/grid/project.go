package grid

import (
	"fmt"
	"time"

	"github.com/mauv0809/padel-roster/internal/apperrors"
	"github.com/mauv0809/padel-roster/internal/calendar"
)

// ErrColumnNotFound is returned when the grid has no column for the requested date.
// It is not fatal: the grid predates the date and is returned unchanged.
var ErrColumnNotFound = apperrors.Policy("no column for this date in the worksheet")

// Entry is one roster position as shown in the grid.
type Entry struct {
	Rank int
	Name string
}

// Project re-derives the list sections of date's column from entries, which must be
// ordered by rank. The first playerCount entries go to the main list, the rest to
// the waiting list. The input grid is never modified; projecting the same roster
// twice yields the same grid.
func Project(existing Grid, date time.Time, entries []Entry, playerCount int) (Grid, error) {
	col := existing.FindDateColumn(calendar.FormatDate(date))
	if col < 0 {
		return existing.Clone(0, 0), fmt.Errorf("%s: %w", calendar.FormatDate(date), ErrColumnNotFound)
	}

	waiting := max(len(entries)-playerCount, 0)
	rows := FirstWaitingRow(playerCount) + max(playerCount, waiting)
	out := existing.Clone(rows, col+1)
	// Clear stale names left below the placeholders by a longer waiting list.
	layColumn(out, col, playerCount, out.Rows()-FirstWaitingRow(playerCount))

	for idx, e := range entries {
		if idx < playerCount {
			out[FirstListRow+idx][col] = fmt.Sprintf("%d. %s", e.Rank, e.Name)
			continue
		}
		ordinal := idx - playerCount
		out[FirstWaitingRow(playerCount)+ordinal][col] = fmt.Sprintf("%d. %s", ordinal+1, e.Name)
		if ordinal == 0 {
			out[WaitingLabelRow(playerCount)][col] = WaitingListLabel
		}
	}
	return out, nil
}
