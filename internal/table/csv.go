package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

type csvLoader struct{}

func (csvLoader) CanLoad(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".csv") || strings.HasSuffix(n, ".tsv") || strings.HasSuffix(n, ".txt")
}

func (csvLoader) Load(name string, r io.Reader, opt Options) (*Table, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(name)
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Name: name, Err: errors.New("no columns to parse from file")}
		}
		return nil, &ParseError{Name: name, Err: fmt.Errorf("read header: %w", err)}
	}

	var records [][]string
	truncated := false
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ParseError{Name: name, Err: fmt.Errorf("read row %d: %w", len(records)+2, err)}
		}
		if opt.MaxRows > 0 && len(records) >= opt.MaxRows {
			truncated = true
			break
		}
		records = append(records, rec)
	}
	t, err := buildTable(name, header, records, opt)
	if err != nil {
		return nil, err
	}
	t.Truncated = truncated
	return t, nil
}

func sniffDelimiter(name string) rune {
	if strings.HasSuffix(strings.ToLower(name), ".tsv") {
		return '\t'
	}
	return ','
}
