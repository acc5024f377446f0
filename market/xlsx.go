package market

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXRowStream reads price rows from one sheet of an Excel workbook. The
// first non-blank row of the sheet is the header. Cell values are read raw,
// so number formats applied in the workbook do not change parsed values.
type XLSXRowStream struct {
	f      *excelize.File
	rows   *excelize.Rows
	schema schema
	seq    int
}

// OpenXLSX opens the workbook at path. An empty sheet name selects the first
// sheet.
func OpenXLSX(path, sheet string) (*XLSXRowStream, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}

	s, err := newXLSXRowStream(f, sheet)
	if err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func newXLSXRowStream(f *excelize.File, sheet string) (*XLSXRowStream, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrSchemaMismatch)
		}
		sheet = sheets[0]
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: sheet %q not found", ErrSchemaMismatch, sheet)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}

	s := &XLSXRowStream{f: f, rows: rows}
	for {
		rec, ok, err := s.read()
		if err != nil {
			rows.Close()
			return nil, err
		}
		if !ok {
			rows.Close()
			return nil, fmt.Errorf("%w: no header row in sheet %q", ErrSchemaMismatch, sheet)
		}
		if blank(rec) {
			continue
		}
		if s.schema, err = resolveSchema(rec); err != nil {
			rows.Close()
			return nil, err
		}
		return s, nil
	}
}

func (s *XLSXRowStream) read() ([]string, bool, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
		}
		return nil, false, nil
	}
	rec, err := s.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	return rec, true, nil
}

func (s *XLSXRowStream) Next() (PriceRow, bool, error) {
	for {
		rec, ok, err := s.read()
		if err != nil || !ok {
			return PriceRow{}, false, err
		}
		if blank(rec) {
			continue
		}

		seq := s.seq
		s.seq++
		row, err := s.schema.parse(seq, rec)
		if err != nil {
			return PriceRow{}, false, err
		}
		return row, true, nil
	}
}

func (s *XLSXRowStream) Close() error {
	if err := s.rows.Close(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
