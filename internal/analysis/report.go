package analysis

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/KaramelBytes/eda-cli/internal/table"
	"github.com/google/uuid"
)

// Report bundles the outputs of one pipeline run over a table.
type Report struct {
	ID        string          `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	Rows      int             `json:"rows" yaml:"rows"`
	Cols      int             `json:"cols" yaml:"cols"`
	Truncated bool            `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Summary   []ColumnSummary `json:"summary" yaml:"summary"`
	Missing   []MissingRow    `json:"missing" yaml:"missing"`
	Flags     Flags           `json:"flags" yaml:"flags"`
}

// Analyze validates t and runs the summarizer, the missing-value reporter
// and the quality scorer over it.
func Analyze(t *table.Table) (*Report, error) {
	if err := table.Validate(t); err != nil {
		return nil, err
	}
	summary := Summarize(t)
	missing := MissingTable(t)
	return &Report{
		ID:        uuid.NewString(),
		Name:      t.Name,
		Rows:      t.NumRows(),
		Cols:      t.NumCols(),
		Truncated: t.Truncated,
		Summary:   summary,
		Missing:   missing,
		Flags:     ComputeQualityFlags(t, summary, missing),
	}, nil
}

// OKForModel reports whether the table passes the size and missingness
// checks. Constant columns alone do not disqualify it.
func (r *Report) OKForModel() bool {
	return !(r.Flags.TooFewRows || r.Flags.TooManyColumns || r.Flags.TooManyMissing)
}

// NumericColumns returns the names of numeric columns in column order.
func (r *Report) NumericColumns() []string {
	var out []string
	for _, s := range r.Summary {
		if s.IsNumeric {
			out = append(out, s.Name)
		}
	}
	return out
}

// WriteTable prints the column summaries as an aligned text table.
func (r *Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "name\tdtype\tnon_null\tmissing\tmissing_share\tunique\tis_numeric\tmin\tmax\tmean\tstd")
	for _, s := range r.Summary {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.3f\t%d\t%t\t%s\t%s\t%s\t%s\n",
			safeName(s.Name), s.Kind, s.NonNull, s.Missing, s.MissingShare, s.Unique, s.IsNumeric,
			FormatOptional(s.Min), FormatOptional(s.Max), FormatOptional(s.Mean), FormatOptional(s.Std))
	}
	return tw.Flush()
}

// FormatOptional renders an optional statistic, or "" when it is absent.
func FormatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', 6, 64)
}

// Markdown renders a compact report suitable for standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", r.Cols))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Summary {
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%, unique %d)",
			safeName(c.Name), c.Kind, c.NonNull, c.MissingShare*100, c.Unique))
		if c.IsNumeric && c.Min != nil {
			b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g", *c.Min, *c.Max, *c.Mean))
			if c.Std != nil {
				b.WriteString(fmt.Sprintf(", std %.4g", *c.Std))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n[MISSING VALUES]\n")
	b.WriteString("| column | missing | share |\n| --- | --- | --- |\n")
	for _, m := range r.Missing {
		b.WriteString(fmt.Sprintf("| %s | %d | %.3f |\n", safeVal(safeName(m.Column)), m.Missing, m.MissingShare))
	}

	f := r.Flags
	b.WriteString("\n[QUALITY FLAGS]\n")
	b.WriteString(fmt.Sprintf("- too_few_rows: %t (< %d rows)\n", f.TooFewRows, MinRows))
	b.WriteString(fmt.Sprintf("- too_many_columns: %t (> %d columns)\n", f.TooManyColumns, MaxColumns))
	b.WriteString(fmt.Sprintf("- too_many_missing: %t (> %.0f%% in a column)\n", f.TooManyMissing, MaxMissingShare*100))
	b.WriteString(fmt.Sprintf("- has_constant_columns: %t", f.HasConstantColumns))
	if len(f.ConstantColumns) > 0 {
		b.WriteString(fmt.Sprintf(" (%s)", strings.Join(f.ConstantColumns, ", ")))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("- quality_score: %.2f\n", f.QualityScore))

	if r.Truncated {
		b.WriteString("\n[NOTES]\n")
		b.WriteString(fmt.Sprintf("- processed only the first %d rows due to MaxRows\n", r.Rows))
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
