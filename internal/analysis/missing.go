package analysis

import "github.com/KaramelBytes/eda-cli/internal/table"

// MissingRow is one line of the missing-value report.
type MissingRow struct {
	Column       string  `json:"column" yaml:"column"`
	Missing      int     `json:"missing" yaml:"missing"`
	MissingShare float64 `json:"missing_share" yaml:"missing_share"`
}

// MissingTable reports null counts and shares per column, in column order.
func MissingTable(t *table.Table) []MissingRow {
	out := make([]MissingRow, 0, t.NumCols())
	for _, c := range t.Columns() {
		n := 0
		for _, v := range c.Values {
			if v.Null {
				n++
			}
		}
		out = append(out, MissingRow{Column: c.Name, Missing: n, MissingShare: missingShare(n, t.NumRows())})
	}
	return out
}

// missingShare is shared with Summarize so both reports agree exactly.
func missingShare(missing, rows int) float64 {
	if rows == 0 {
		return 0
	}
	return float64(missing) / float64(rows)
}
