package sheets

import (
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mauv0809/padel-roster/internal/apperrors"
	"google.golang.org/api/sheets/v4"
)

// client talks to the Google Sheets API.
type client struct {
	svc        *sheets.Service
	maxRetries uint64
	baseDelay  time.Duration
}

var (
	// ErrSheetNotFound is returned when the spreadsheet or worksheet does not exist. It is not retried.
	ErrSheetNotFound = errors.Mark(errors.New("worksheet not found"), apperrors.ErrExternalUnavailable)
	// ErrNotWritable is returned when the service account has no edit access.
	ErrNotWritable = apperrors.Policy("the spreadsheet is not shared with edit access to the bot")
)

var (
	urlPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	idPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]{10,}$`)
)

// SpreadsheetID extracts the spreadsheet id from a spreadsheet URL, or accepts a bare id.
func SpreadsheetID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if m := urlPattern.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}
	if idPattern.MatchString(ref) {
		return ref, nil
	}
	return "", apperrors.Validation("%q is not a Google Sheets link", ref)
}
