package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Options controls how raw files become tables.
type Options struct {
	// Delimiter for CSV. If 0, picks tab for .tsv files and comma otherwise.
	Delimiter rune
	// DecimalSeparator for numbers. 0 or '.' means dot; ',' accepts "0,5".
	DecimalSeparator rune
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Sheet selects the XLSX worksheet by name. Empty means the first sheet.
	Sheet string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{}
}

var nullTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsNullToken reports whether a raw cell denotes a missing value.
func IsNullToken(s string) bool {
	_, ok := nullTokens[strings.TrimSpace(s)]
	return ok
}

// buildTable turns a header and raw records into typed columns. Records
// shorter than the header are padded with nulls; longer ones are rejected.
func buildTable(name string, header []string, records [][]string, opt Options) (*Table, error) {
	names := columnNames(header)
	ncol := len(names)
	raw := make([][]string, ncol)
	for j := range raw {
		raw[j] = make([]string, len(records))
	}
	for i, rec := range records {
		if len(rec) > ncol {
			return nil, &ParseError{Name: name, Err: fmt.Errorf("row %d: expected %d fields, saw %d", i+2, ncol, len(rec))}
		}
		for j := 0; j < ncol; j++ {
			if j < len(rec) {
				raw[j][i] = strings.TrimSpace(rec[j])
			}
		}
	}
	cols := make([]Column, ncol)
	for j := range cols {
		cols[j] = typedColumn(names[j], raw[j], opt)
	}
	return New(name, cols...)
}

// columnNames fills blank headers and disambiguates duplicates as a, a.1, a.2.
func columnNames(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]struct{}, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for n := 1; ; n++ {
			if _, dup := used[name]; !dup {
				break
			}
			name = fmt.Sprintf("%s.%d", h, n)
		}
		used[name] = struct{}{}
		out[i] = name
	}
	return out
}

func typedColumn(name string, cells []string, opt Options) Column {
	kind := inferKind(cells, opt)
	vals := make([]Value, len(cells))
	for i, s := range cells {
		if IsNullToken(s) {
			vals[i] = Null
			continue
		}
		switch kind {
		case KindInteger:
			n, _ := strconv.ParseInt(s, 10, 64)
			vals[i] = Int(n)
		case KindFloat:
			f, _ := parseFloat(s, opt.DecimalSeparator)
			vals[i] = Float(f)
		case KindBoolean:
			vals[i] = Bool(strings.EqualFold(s, "true"))
		default:
			vals[i] = String(s)
		}
	}
	return Column{Name: name, Kind: kind, Values: vals}
}

// inferKind picks the narrowest kind every non-null cell parses as.
// A column with no values at all is float, so it reads as numeric with
// absent aggregates.
func inferKind(cells []string, opt Options) Kind {
	allInt, allFloat, allBool := true, true, true
	seen := 0
	for _, s := range cells {
		if IsNullToken(s) {
			continue
		}
		seen++
		if allInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat {
			if _, ok := parseFloat(s, opt.DecimalSeparator); !ok {
				allFloat = false
			}
		}
		if allBool && !strings.EqualFold(s, "true") && !strings.EqualFold(s, "false") {
			allBool = false
		}
		if !allInt && !allFloat && !allBool {
			return KindString
		}
	}
	switch {
	case seen == 0:
		return KindFloat
	case allInt:
		return KindInteger
	case allFloat:
		return KindFloat
	case allBool:
		return KindBoolean
	}
	return KindString
}

func parseFloat(s string, dec rune) (float64, bool) {
	if dec != 0 && dec != '.' {
		if strings.ContainsRune(s, '.') {
			return 0, false
		}
		s = strings.Replace(s, string(dec), ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
