package analysis

import "github.com/KaramelBytes/eda-cli/internal/table"

// Thresholds of the quality heuristics.
const (
	MinRows         = 100
	MaxColumns      = 100
	MaxMissingShare = 0.3
	// FlagPenalty is subtracted from the score for every raised flag.
	FlagPenalty = 0.1
)

// Flags are the heuristic data-quality indicators of one table.
type Flags struct {
	TooFewRows         bool     `json:"too_few_rows" yaml:"too_few_rows"`
	TooManyColumns     bool     `json:"too_many_columns" yaml:"too_many_columns"`
	TooManyMissing     bool     `json:"too_many_missing" yaml:"too_many_missing"`
	HasConstantColumns bool     `json:"has_constant_columns" yaml:"has_constant_columns"`
	ConstantColumns    []string `json:"constant_columns" yaml:"constant_columns"`
	QualityScore       float64  `json:"quality_score" yaml:"quality_score"`
}

// Raised returns how many boolean flags are set.
func (f Flags) Raised() int {
	n := 0
	for _, b := range []bool{f.TooFewRows, f.TooManyColumns, f.TooManyMissing, f.HasConstantColumns} {
		if b {
			n++
		}
	}
	return n
}

// ComputeQualityFlags derives the flags and score from a table and its two
// reports. An empty missing report never raises TooManyMissing.
func ComputeQualityFlags(t *table.Table, summary []ColumnSummary, missing []MissingRow) Flags {
	f := Flags{
		TooFewRows:      t.NumRows() < MinRows,
		TooManyColumns:  t.NumCols() > MaxColumns,
		ConstantColumns: []string{},
	}
	if len(missing) > 0 {
		worst := missing[0].MissingShare
		for _, m := range missing[1:] {
			if m.MissingShare > worst {
				worst = m.MissingShare
			}
		}
		f.TooManyMissing = worst > MaxMissingShare
	}
	for _, s := range summary {
		if s.Unique <= 1 {
			f.ConstantColumns = append(f.ConstantColumns, s.Name)
		}
	}
	f.HasConstantColumns = len(f.ConstantColumns) > 0
	f.QualityScore = clampScore(1.0 - FlagPenalty*float64(f.Raised()))
	return f
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// Simplified thresholds for pre-aggregated statistics.
const (
	AggregateMinRows         = 20
	AggregateMaxColumns      = 200
	AggregateMaxMissingShare = 0.3
	aggregateFlaggedScore    = 0.6
)

// AggregateStats are dataset counts computed elsewhere.
type AggregateStats struct {
	NRows        int     `json:"n_rows"`
	NCols        int     `json:"n_cols"`
	MissingShare float64 `json:"missing_share"`
}

// AggregateFlags are the flags the aggregate check can raise.
type AggregateFlags struct {
	TooFewRows     bool `json:"too_few_rows"`
	TooManyColumns bool `json:"too_many_columns"`
	TooManyMissing bool `json:"too_many_missing"`
}

// AggregateResult is the verdict of CheckAggregates.
type AggregateResult struct {
	OKForModel   bool
	QualityScore float64
	Flags        AggregateFlags
}

// CheckAggregates applies a threshold check to counts without a table.
// The score is 1.0 when nothing is flagged and 0.6 otherwise.
func CheckAggregates(a AggregateStats) AggregateResult {
	f := AggregateFlags{
		TooFewRows:     a.NRows < AggregateMinRows,
		TooManyColumns: a.NCols > AggregateMaxColumns,
		TooManyMissing: a.MissingShare > AggregateMaxMissingShare,
	}
	ok := !(f.TooFewRows || f.TooManyColumns || f.TooManyMissing)
	score := 1.0
	if !ok {
		score = aggregateFlaggedScore
	}
	return AggregateResult{OKForModel: ok, QualityScore: score, Flags: f}
}
