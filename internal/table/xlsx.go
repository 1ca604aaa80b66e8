package table

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".xlsx") || strings.HasSuffix(n, ".xlsm")
}

// Load reads the selected sheet (or the first one) of a workbook. The first
// row is the header.
func (xlsxLoader) Load(name string, r io.Reader, opt Options) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Name: name, Err: fmt.Errorf("open xlsx: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Name: name, Err: errors.New("workbook has no sheets")}
	}
	sheet := sheets[0]
	if opt.Sheet != "" {
		sheet = ""
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, &ParseError{Name: name, Err: fmt.Errorf("sheet %q not found; available sheets: %s", opt.Sheet, strings.Join(sheets, ", "))}
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Name: name, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	// GetRows drops trailing empty rows but keeps blank ones in the middle.
	for len(rows) > 0 && len(rows[0]) == 0 {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, &ParseError{Name: name, Err: errors.New("no columns to parse from file")}
	}
	header, records := rows[0], rows[1:]
	records = dropBlankRows(records)

	truncated := false
	if opt.MaxRows > 0 && len(records) > opt.MaxRows {
		records = records[:opt.MaxRows]
		truncated = true
	}
	t, err := buildTable(name, header, records, opt)
	if err != nil {
		return nil, err
	}
	t.Truncated = truncated
	return t, nil
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, r := range rows {
		blank := true
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, r)
		}
	}
	return out
}
