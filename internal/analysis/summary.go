package analysis

import (
	"math"

	"github.com/KaramelBytes/eda-cli/internal/table"
	"github.com/montanaflynn/stats"
)

// ColumnSummary captures the declared kind, null counts and, for numeric
// columns, the distribution of one column. Numeric fields are nil when the
// column is not numeric or the statistic is undefined.
type ColumnSummary struct {
	Name         string     `json:"name" yaml:"name"`
	Kind         table.Kind `json:"dtype" yaml:"dtype"`
	NonNull      int        `json:"non_null" yaml:"non_null"`
	Missing      int        `json:"missing" yaml:"missing"`
	MissingShare float64    `json:"missing_share" yaml:"missing_share"`
	// Unique counts distinct non-null values; nulls never count.
	Unique    int      `json:"unique" yaml:"unique"`
	IsNumeric bool     `json:"is_numeric" yaml:"is_numeric"`
	Min       *float64 `json:"min" yaml:"min"`
	Max       *float64 `json:"max" yaml:"max"`
	Mean      *float64 `json:"mean" yaml:"mean"`
	Std       *float64 `json:"std" yaml:"std"`
}

// Summarize returns one summary per column, in column order.
func Summarize(t *table.Table) []ColumnSummary {
	out := make([]ColumnSummary, 0, t.NumCols())
	for _, c := range t.Columns() {
		out = append(out, summarizeColumn(c, t.NumRows()))
	}
	return out
}

func summarizeColumn(c table.Column, rows int) ColumnSummary {
	s := ColumnSummary{Name: c.Name, Kind: c.Kind, IsNumeric: c.Kind.IsNumeric()}
	distinct := make(map[string]struct{})
	var nums []float64
	for _, v := range c.Values {
		if v.Null {
			s.Missing++
			continue
		}
		s.NonNull++
		distinct[v.Key(c.Kind)] = struct{}{}
		if s.IsNumeric {
			nums = append(nums, v.Num)
		}
	}
	s.Unique = len(distinct)
	s.MissingShare = missingShare(s.Missing, rows)
	if s.IsNumeric {
		s.Min, s.Max, s.Mean, s.Std = describe(nums)
	}
	return s
}

// describe computes min, max, mean and sample standard deviation. With no
// values everything is nil; with one value std is nil. Non-finite results
// are reported as nil.
func describe(x []float64) (lo, hi, mean, std *float64) {
	if len(x) == 0 {
		return nil, nil, nil, nil
	}
	lo = finite(stats.Min(x))
	hi = finite(stats.Max(x))
	mean = finite(stats.Mean(x))
	if len(x) > 1 {
		std = finite(stats.StandardDeviationSample(x))
	}
	return lo, hi, mean, std
}

func finite(v float64, err error) *float64 {
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
