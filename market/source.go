package market

import (
	"path/filepath"
	"strings"
)

// RowStream yields PriceRows in source order. Next returns ok=false once the
// source is exhausted. A stream cannot be rewound; reopen the source instead.
type RowStream interface {
	Next() (row PriceRow, ok bool, err error)
	Close() error
}

// Open returns a RowStream for path, reading Excel workbooks by extension
// and treating everything else as delimited text.
func Open(path string) (RowStream, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return OpenXLSX(path, "")
	default:
		return OpenCSV(path)
	}
}
