// Package grid lays out the per-period worksheet and projects rosters onto it.
//
// Layout of every date column:
//
//	row 0           weekday name
//	row 1           date, DD.MM.YYYY
//	row 3           "Player List" (game days only)
//	rows 4..4+p-1   main list ordinals
//	row 4+p+1       "Waiting List"
//	rows 4+p+2..    waiting list ordinals
package grid

import (
	"fmt"
	"strings"
)

const (
	WeekdayRow   = 0
	DateRow      = 1
	ListLabelRow = 3
	FirstListRow = 4
	// Spacing is the number of extra rows allocated below the two lists.
	Spacing = 10

	PlayerListLabel  = "Player List"
	WaitingListLabel = "Waiting List"
)

// Grid is a rectangular-ish table of cell values, indexed [row][column].
// Rows read back from a sheet may be ragged.
type Grid [][]string

// RowCount returns the number of rows allocated for a period grid.
func RowCount(playerCount int) int {
	return playerCount*2 + Spacing
}

// WaitingLabelRow returns the row of the "Waiting List" label.
func WaitingLabelRow(playerCount int) int {
	return FirstListRow + playerCount + 1
}

// FirstWaitingRow returns the row of the first waiting list entry.
func FirstWaitingRow(playerCount int) int {
	return FirstListRow + playerCount + 2
}

// New allocates an empty grid.
func New(rows, cols int) Grid {
	g := make(Grid, rows)
	for i := range g {
		g[i] = make([]string, cols)
	}
	return g
}

// Rows returns the number of rows.
func (g Grid) Rows() int { return len(g) }

// Cols returns the width of the widest row.
func (g Grid) Cols() int {
	cols := 0
	for _, row := range g {
		cols = max(cols, len(row))
	}
	return cols
}

// Cell returns the value at (row, col), or "" outside the grid.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return ""
	}
	return g[row][col]
}

// Clone returns a deep copy with every row padded to at least rows x cols.
func (g Grid) Clone(rows, cols int) Grid {
	rows = max(rows, g.Rows())
	cols = max(cols, g.Cols())
	out := New(rows, cols)
	for i, row := range g {
		copy(out[i], row)
	}
	return out
}

// FindDateColumn returns the column whose date row holds value, or -1.
func (g Grid) FindDateColumn(value string) int {
	if len(g) <= DateRow {
		return -1
	}
	for col, cell := range g[DateRow] {
		if strings.TrimSpace(cell) == value {
			return col
		}
	}
	return -1
}

// A1Range renders the A1 notation range covering rows x cols from the top-left cell.
func A1Range(sheet string, rows, cols int) string {
	quoted := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	if rows <= 0 || cols <= 0 {
		return quoted
	}
	return fmt.Sprintf("%s!A1:%s%d", quoted, ColumnName(cols-1), rows)
}

// ColumnName converts a zero-based column index to its spreadsheet letters.
func ColumnName(col int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return name
}
