package market

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnreadable is returned when the input cannot be opened or read.
	ErrSourceUnreadable = errors.New("source unreadable")

	// ErrSchemaMismatch is returned when the header is missing or a required
	// column is absent or duplicated.
	ErrSchemaMismatch = errors.New("source schema mismatch")

	// ErrInvalidWindowSize is returned for window sizes below one.
	ErrInvalidWindowSize = errors.New("invalid window size")

	// ErrEmptyWindow is returned when the source has no rows to fold.
	ErrEmptyWindow = errors.New("empty window")
)

// RowParseError reports a value that could not be converted to the type
// its column declares. Row is the 0-based sequence index of the data row.
type RowParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("row %d: column %s: cannot parse %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *RowParseError) Unwrap() error {
	return e.Err
}

// Error kinds reported by ErrorKind.
const (
	KindSourceUnreadable  = "source_unreadable"
	KindSchemaMismatch    = "schema_mismatch"
	KindRowParse          = "row_parse"
	KindInvalidWindowSize = "invalid_window_size"
	KindEmptyWindow       = "empty_window"
)

// ErrorKind classifies err into one of the Kind constants. It returns ""
// for errors that did not originate in this package.
func ErrorKind(err error) string {
	var rpe *RowParseError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rpe):
		return KindRowParse
	case errors.Is(err, ErrInvalidWindowSize):
		return KindInvalidWindowSize
	case errors.Is(err, ErrEmptyWindow):
		return KindEmptyWindow
	case errors.Is(err, ErrSchemaMismatch):
		return KindSchemaMismatch
	case errors.Is(err, ErrSourceUnreadable):
		return KindSourceUnreadable
	}
	return ""
}
