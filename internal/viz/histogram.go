package viz

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/eda-cli/internal/table"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DefaultBins is the number of histogram bins when none is configured.
const DefaultBins = 30

// renderers caps how many PNGs are drawn at once.
const renderers = 4

// Histograms writes hist_<column>.png into dir for every numeric column
// with at least one finite value and a finite value range. It returns the
// written paths in column order.
func Histograms(ctx context.Context, t *table.Table, dir string, bins int) ([]string, error) {
	if bins <= 0 {
		bins = DefaultBins
	}
	cols := t.Columns()
	paths := make([]string, len(cols))
	used := make(map[string]struct{})

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(renderers)
	for i, c := range cols {
		if !c.Kind.IsNumeric() {
			continue
		}
		vals := finiteValues(c)
		if len(vals) == 0 || !binnable(vals) {
			continue
		}
		path := filepath.Join(dir, uniqueName(FileName(c.Name), used))
		paths[i] = path
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("histogram %s: %v", c.Name, r)
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			return renderHistogram(c.Name, vals, bins, path)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := paths[:0]
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

func renderHistogram(title string, vals plotter.Values, bins int, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return fmt.Errorf("histogram %s: %w", title, err)
	}
	p.Add(h)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save histogram %s: %w", title, err)
	}
	return nil
}

func finiteValues(c table.Column) plotter.Values {
	var out plotter.Values
	for _, v := range c.Values {
		if v.Null || math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			continue
		}
		out = append(out, v.Num)
	}
	return out
}

// uniqueName returns name, or name with the first free _2, _3... suffix,
// and marks the result as used.
func uniqueName(name string, used map[string]struct{}) string {
	base := strings.TrimSuffix(name, ".png")
	out := name
	for n := 2; ; n++ {
		if _, taken := used[out]; !taken {
			break
		}
		out = fmt.Sprintf("%s_%d.png", base, n)
	}
	used[out] = struct{}{}
	return out
}

// binnable reports whether the value range fits in a float64. Bin widths
// over an overflowing range are not finite.
func binnable(vals plotter.Values) bool {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return !math.IsInf(hi-lo, 0)
}

// FileName maps a column name to a safe histogram file name.
func FileName(column string) string {
	var b strings.Builder
	for _, r := range column {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), ".")
	if name == "" {
		name = "column"
	}
	return "hist_" + name + ".png"
}
