package sheets

import (
	"context"

	"github.com/mauv0809/padel-roster/internal/grid"
)

// Sink is the tabular store the roster grids are written to.
// spreadsheet is a spreadsheet URL or id, sheet the worksheet title.
type Sink interface {
	ReadGrid(ctx context.Context, spreadsheet, sheet string) (grid.Grid, error)
	// WriteGrid writes g starting at A1 in a single request.
	WriteGrid(ctx context.Context, spreadsheet, sheet string, g grid.Grid) error
	SheetExists(ctx context.Context, spreadsheet, sheet string) (bool, error)
	CreateSheet(ctx context.Context, spreadsheet, sheet string, rows, cols int) error
	// CheckWritable verifies the service account may add worksheets to spreadsheet.
	CheckWritable(ctx context.Context, spreadsheet string) error
}
