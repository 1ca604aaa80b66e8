package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/eda-cli/internal/table"
	"github.com/spf13/cobra"
)

// ingestFlags are the reading options shared by every command that loads
// a dataset.
type ingestFlags struct {
	delimiter string
	decimal   string
	maxRows   int
	sheet     string
}

func (f *ingestFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (default: by extension)")
	cmd.Flags().StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "XLSX: sheet name to analyze (default: first sheet)")
}

// options resolves flags over the configured defaults.
func (f *ingestFlags) options() (table.Options, error) {
	c := currentConfig()
	opt := table.DefaultOptions()

	delim := f.delimiter
	if delim == "" {
		delim = c.Delimiter
	}
	d, err := parseDelimiter(delim)
	if err != nil {
		return opt, err
	}
	opt.Delimiter = d

	dec := f.decimal
	if dec == "" {
		dec = c.Decimal
	}
	switch strings.ToLower(strings.TrimSpace(dec)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot", "":
		opt.DecimalSeparator = '.'
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", dec)
	}

	if f.maxRows < 0 {
		return opt, fmt.Errorf("--max-rows must not be negative")
	}
	opt.MaxRows = f.maxRows
	opt.Sheet = f.sheet
	return opt, nil
}

// reset restores the zero values between in-process invocations.
func (f *ingestFlags) reset() { *f = ingestFlags{} }

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case ";":
		return ';', nil
	case "|":
		return '|', nil
	case "\t", "tab":
		return '\t', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s", s)
	}
}

// loadTable reads path with the resolved options and logs what was read.
func loadTable(path string, f *ingestFlags) (*table.Table, error) {
	opt, err := f.options()
	if err != nil {
		return nil, err
	}
	t, err := table.Load(path, opt)
	if err != nil {
		return nil, err
	}
	appLog.Debug().
		Str("file", path).
		Int("rows", t.NumRows()).
		Int("cols", t.NumCols()).
		Bool("truncated", t.Truncated).
		Msg("loaded table")
	return t, nil
}
