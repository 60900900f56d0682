package sheets

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/mauv0809/padel-roster/internal/apperrors"
	"github.com/mauv0809/padel-roster/internal/grid"
	"github.com/sethvargo/go-retry"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	defaultMaxRetries = 4
	defaultBaseDelay  = 500 * time.Millisecond
)

// New creates a Sink backed by the Google Sheets API, authenticated with a
// service account credentials file. Extra options are applied last.
func New(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (Sink, error) {
	options := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsFile != "" {
		options = append(options, option.WithCredentialsFile(credentialsFile))
	}
	options = append(options, opts...)
	svc, err := sheets.NewService(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return NewWithService(svc, defaultMaxRetries, defaultBaseDelay), nil
}

// NewWithService wraps an existing sheets service. Useful for tests that point the
// service at a fake endpoint.
func NewWithService(svc *sheets.Service, maxRetries uint64, baseDelay time.Duration) Sink {
	return &client{
		svc:        svc,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// isTransient reports whether err is worth retrying: throttling, server errors and network failures.
func isTransient(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// classify maps a final API error onto the error taxonomy.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusNotFound,
			apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range"):
			return errors.Wrapf(ErrSheetNotFound, "%s: %s", op, apiErr.Message)
		case apiErr.Code == http.StatusForbidden:
			return errors.Wrapf(ErrNotWritable, "%s", op)
		}
	}
	return apperrors.External(err, op)
}

func (c *client) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.baseDelay))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err != nil && isTransient(err) {
			log.Warn("Transient sheets failure, retrying", "op", op, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	return classify(err, op)
}

// ReadGrid reads every populated cell of a worksheet. Rows may be ragged.
func (c *client) ReadGrid(ctx context.Context, spreadsheet, sheet string) (grid.Grid, error) {
	id, err := SpreadsheetID(spreadsheet)
	if err != nil {
		return nil, err
	}
	var resp *sheets.ValueRange
	err = c.do(ctx, "read grid", func(ctx context.Context) error {
		var err error
		resp, err = c.svc.Spreadsheets.Values.Get(id, grid.A1Range(sheet, 0, 0)).
			ValueRenderOption("FORMATTED_VALUE").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	g := make(grid.Grid, len(resp.Values))
	for i, row := range resp.Values {
		g[i] = make([]string, len(row))
		for j, cell := range row {
			g[i][j] = fmt.Sprint(cell)
		}
	}
	log.Debug("Read worksheet", "spreadsheet", id, "sheet", sheet, "rows", g.Rows())
	return g, nil
}

// WriteGrid overwrites the worksheet region covered by g. The worksheet is enlarged
// first when g outgrows it. Values are written raw so dates and ordinals are stored
// exactly as laid out.
func (c *client) WriteGrid(ctx context.Context, spreadsheet, sheet string, g grid.Grid) error {
	id, err := SpreadsheetID(spreadsheet)
	if err != nil {
		return err
	}
	worksheets, err := c.worksheets(ctx, id)
	if err != nil {
		return err
	}
	props, ok := worksheets[sheet]
	if !ok {
		return errors.Wrapf(ErrSheetNotFound, "write grid: %s", sheet)
	}
	rows, cols := g.Rows(), g.Cols()
	if err := c.ensureSize(ctx, id, props, rows, cols); err != nil {
		return err
	}
	values := make([][]interface{}, rows)
	for i := range values {
		values[i] = make([]interface{}, cols)
		for j := 0; j < cols; j++ {
			values[i][j] = g.Cell(i, j)
		}
	}
	rangeA1 := grid.A1Range(sheet, rows, cols)
	err = c.do(ctx, "write grid", func(ctx context.Context) error {
		_, err := c.svc.Spreadsheets.Values.Update(id, rangeA1, &sheets.ValueRange{Values: values}).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return err
	}
	log.Info("Wrote worksheet", "spreadsheet", id, "range", rangeA1)
	return nil
}

// ensureSize appends rows and columns so the worksheet holds at least rows x cols cells.
func (c *client) ensureSize(ctx context.Context, id string, props *sheets.SheetProperties, rows, cols int) error {
	if props.GridProperties == nil {
		return nil
	}
	var reqs []*sheets.Request
	if extra := int64(rows) - props.GridProperties.RowCount; extra > 0 {
		reqs = append(reqs, appendDimension(props.SheetId, "ROWS", extra))
	}
	if extra := int64(cols) - props.GridProperties.ColumnCount; extra > 0 {
		reqs = append(reqs, appendDimension(props.SheetId, "COLUMNS", extra))
	}
	if len(reqs) == 0 {
		return nil
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}
	err := c.do(ctx, "resize worksheet", func(ctx context.Context) error {
		_, err := c.svc.Spreadsheets.BatchUpdate(id, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return err
	}
	log.Info("Resized worksheet", "spreadsheet", id, "sheet", props.Title, "rows", rows, "cols", cols)
	return nil
}

func appendDimension(sheetID int64, dimension string, length int64) *sheets.Request {
	return &sheets.Request{AppendDimension: &sheets.AppendDimensionRequest{
		SheetId:   sheetID,
		Dimension: dimension,
		Length:    length,
		// The first worksheet has id 0, which would otherwise be omitted.
		ForceSendFields: []string{"SheetId"},
	}}
}

// SheetExists reports whether the spreadsheet has a worksheet titled sheet.
func (c *client) SheetExists(ctx context.Context, spreadsheet, sheet string) (bool, error) {
	id, err := SpreadsheetID(spreadsheet)
	if err != nil {
		return false, err
	}
	worksheets, err := c.worksheets(ctx, id)
	if err != nil {
		return false, err
	}
	_, ok := worksheets[sheet]
	return ok, nil
}

// worksheets returns the properties of every worksheet keyed by title.
func (c *client) worksheets(ctx context.Context, id string) (map[string]*sheets.SheetProperties, error) {
	var resp *sheets.Spreadsheet
	err := c.do(ctx, "list worksheets", func(ctx context.Context) error {
		var err error
		resp, err = c.svc.Spreadsheets.Get(id).
			Fields("sheets.properties(sheetId,title,gridProperties(rowCount,columnCount))").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	worksheets := make(map[string]*sheets.SheetProperties, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			worksheets[s.Properties.Title] = s.Properties
		}
	}
	return worksheets, nil
}

// CreateSheet adds a worksheet of rows x cols.
func (c *client) CreateSheet(ctx context.Context, spreadsheet, sheet string, rows, cols int) error {
	_, err := c.addSheet(ctx, spreadsheet, sheet, rows, cols)
	if err == nil {
		log.Info("Created worksheet", "spreadsheet", spreadsheet, "sheet", sheet, "rows", rows, "cols", cols)
	}
	return err
}

func (c *client) addSheet(ctx context.Context, spreadsheet, sheet string, rows, cols int) (int64, error) {
	id, err := SpreadsheetID(spreadsheet)
	if err != nil {
		return 0, err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: sheet,
					GridProperties: &sheets.GridProperties{
						RowCount:    int64(rows),
						ColumnCount: int64(cols),
					},
				},
			},
		}},
	}
	var resp *sheets.BatchUpdateSpreadsheetResponse
	err = c.do(ctx, "create worksheet", func(ctx context.Context) error {
		var err error
		resp, err = c.svc.Spreadsheets.BatchUpdate(id, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return 0, err
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, nil
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// CheckWritable creates and removes a throwaway worksheet.
func (c *client) CheckWritable(ctx context.Context, spreadsheet string) error {
	id, err := SpreadsheetID(spreadsheet)
	if err != nil {
		return err
	}
	probe := "probe-" + uuid.NewString()
	sheetID, err := c.addSheet(ctx, id, probe, 1, 1)
	if err != nil {
		if errors.Is(err, ErrSheetNotFound) {
			return errors.Wrap(ErrNotWritable, "spreadsheet not found")
		}
		return err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{DeleteSheet: &sheets.DeleteSheetRequest{SheetId: sheetID}}},
	}
	err = c.do(ctx, "delete probe worksheet", func(ctx context.Context) error {
		_, err := c.svc.Spreadsheets.BatchUpdate(id, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		log.Warn("Failed to remove probe worksheet", "spreadsheet", id, "sheet", probe, "error", err)
	}
	return nil
}
