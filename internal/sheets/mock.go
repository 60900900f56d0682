package sheets

import (
	"context"
	"sync"

	"github.com/mauv0809/padel-roster/internal/grid"
)

var _ Sink = (*Mock)(nil)

// Mock is an in-memory Sink for testing. Worksheets live in a map keyed by
// spreadsheet and title. Set the Func fields to inject failures.
// It is safe for concurrent use.
type Mock struct {
	mu     sync.Mutex
	sheets map[string]map[string]grid.Grid

	// Spies for method calls
	ReadGridFunc      func(spreadsheet, sheet string) (grid.Grid, error)
	WriteGridFunc     func(spreadsheet, sheet string, g grid.Grid) error
	CreateSheetFunc   func(spreadsheet, sheet string, rows, cols int) error
	CheckWritableFunc func(spreadsheet string) error

	// Call records
	WriteGridCalls   []WriteGridCall
	CreateSheetCalls []CreateSheetCall
}

// WriteGridCall holds the arguments for a call to WriteGrid.
type WriteGridCall struct {
	Spreadsheet string
	Sheet       string
	Grid        grid.Grid
}

// CreateSheetCall holds the arguments for a call to CreateSheet.
type CreateSheetCall struct {
	Spreadsheet string
	Sheet       string
	Rows, Cols  int
}

// NewMock creates an empty mock sink.
func NewMock() *Mock {
	return &Mock{sheets: make(map[string]map[string]grid.Grid)}
}

// Put stores a worksheet directly, bypassing the call records.
func (m *Mock) Put(spreadsheet, sheet string, g grid.Grid) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(spreadsheet, sheet, g)
}

func (m *Mock) put(spreadsheet, sheet string, g grid.Grid) {
	if m.sheets[spreadsheet] == nil {
		m.sheets[spreadsheet] = make(map[string]grid.Grid)
	}
	m.sheets[spreadsheet][sheet] = g.Clone(0, 0)
}

// Sheet returns a copy of a stored worksheet.
func (m *Mock) Sheet(spreadsheet, sheet string) (grid.Grid, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.sheets[spreadsheet][sheet]
	if !ok {
		return nil, false
	}
	return g.Clone(0, 0), true
}

func (m *Mock) ReadGrid(ctx context.Context, spreadsheet, sheet string) (grid.Grid, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadGridFunc != nil {
		return m.ReadGridFunc(spreadsheet, sheet)
	}
	g, ok := m.sheets[spreadsheet][sheet]
	if !ok {
		return nil, ErrSheetNotFound
	}
	return g.Clone(0, 0), nil
}

func (m *Mock) WriteGrid(ctx context.Context, spreadsheet, sheet string, g grid.Grid) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteGridCalls = append(m.WriteGridCalls, WriteGridCall{Spreadsheet: spreadsheet, Sheet: sheet, Grid: g.Clone(0, 0)})
	if m.WriteGridFunc != nil {
		if err := m.WriteGridFunc(spreadsheet, sheet, g); err != nil {
			return err
		}
	}
	if _, ok := m.sheets[spreadsheet][sheet]; !ok {
		return ErrSheetNotFound
	}
	m.put(spreadsheet, sheet, g)
	return nil
}

func (m *Mock) SheetExists(ctx context.Context, spreadsheet, sheet string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sheets[spreadsheet][sheet]
	return ok, nil
}

func (m *Mock) CreateSheet(ctx context.Context, spreadsheet, sheet string, rows, cols int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateSheetCalls = append(m.CreateSheetCalls, CreateSheetCall{Spreadsheet: spreadsheet, Sheet: sheet, Rows: rows, Cols: cols})
	if m.CreateSheetFunc != nil {
		if err := m.CreateSheetFunc(spreadsheet, sheet, rows, cols); err != nil {
			return err
		}
	}
	m.put(spreadsheet, sheet, grid.New(rows, cols))
	return nil
}

func (m *Mock) CheckWritable(ctx context.Context, spreadsheet string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CheckWritableFunc != nil {
		return m.CheckWritableFunc(spreadsheet)
	}
	return nil
}
