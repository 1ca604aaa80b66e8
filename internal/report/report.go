// Package report writes the on-disk artifacts of an analysis run.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
	"github.com/KaramelBytes/eda-cli/internal/table"
	"github.com/KaramelBytes/eda-cli/internal/viz"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Artifact file names inside an output directory.
const (
	SummaryFile  = "summary.csv"
	MissingFile  = "missing.csv"
	FlagsFile    = "flags.json"
	MarkdownFile = "report.md"
	HTMLFile     = "report.html"
)

// Options controls which artifacts are produced.
type Options struct {
	// HistogramBins is passed to the histogram renderer; 0 uses its default.
	HistogramBins int
	// SkipHistograms disables PNG rendering.
	SkipHistograms bool
}

// Result lists what Write produced.
type Result struct {
	Dir        string
	Files      []string
	Histograms []string
}

// Write creates dir and stores the summary, missing report, flags, a
// Markdown and HTML rendering and the histograms of rep.
func Write(ctx context.Context, rep *analysis.Report, t *table.Table, dir string, opt Options) (*Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	res := &Result{Dir: dir}

	summary, err := SummaryCSV(rep.Summary)
	if err != nil {
		return nil, err
	}
	missing, err := MissingCSV(rep.Missing)
	if err != nil {
		return nil, err
	}
	flags, err := PrettyJSON(rep.Flags)
	if err != nil {
		return nil, err
	}
	md := []byte(rep.Markdown())

	for _, f := range []struct {
		name string
		data []byte
	}{
		{SummaryFile, summary},
		{MissingFile, missing},
		{FlagsFile, flags},
		{MarkdownFile, md},
		{HTMLFile, renderHTML(rep.Name, md)},
	} {
		path := filepath.Join(dir, f.name)
		if err := SafeWriteFile(path, f.data); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
		res.Files = append(res.Files, path)
	}

	if !opt.SkipHistograms {
		paths, err := viz.Histograms(ctx, t, dir, opt.HistogramBins)
		if err != nil {
			return nil, fmt.Errorf("render histograms: %w", err)
		}
		res.Histograms = paths
	}
	return res, nil
}

// SummaryCSV encodes column summaries; absent statistics are empty cells.
func SummaryCSV(rows []analysis.ColumnSummary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"name", "dtype", "non_null", "missing", "missing_share", "unique", "is_numeric", "min", "max", "mean", "std"})
	for _, s := range rows {
		_ = w.Write([]string{
			s.Name,
			s.Kind.String(),
			strconv.Itoa(s.NonNull),
			strconv.Itoa(s.Missing),
			formatFloat(s.MissingShare),
			strconv.Itoa(s.Unique),
			strconv.FormatBool(s.IsNumeric),
			formatOptional(s.Min),
			formatOptional(s.Max),
			formatOptional(s.Mean),
			formatOptional(s.Std),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode summary csv: %w", err)
	}
	return buf.Bytes(), nil
}

// MissingCSV encodes the missing-value report.
func MissingCSV(rows []analysis.MissingRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"column", "missing", "missing_share"})
	for _, m := range rows {
		_ = w.Write([]string{m.Column, strconv.Itoa(m.Missing), formatFloat(m.MissingShare)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode missing csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func renderHTML(title string, md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML(md, p, r)
}
