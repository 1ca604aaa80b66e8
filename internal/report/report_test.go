package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
	"github.com/KaramelBytes/eda-cli/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzed(t *testing.T, body string) (*analysis.Report, *table.Table) {
	t.Helper()
	tb, err := table.LoadReader("orders.csv", strings.NewReader(body), table.DefaultOptions())
	require.NoError(t, err)
	rep, err := analysis.Analyze(tb)
	require.NoError(t, err)
	return rep, tb
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWrite_AllArtifacts(t *testing.T) {
	rep, tb := analyzed(t, "a,b,city\n1,1,x\n1,,y\n1,2,\n")
	dir := filepath.Join(t.TempDir(), "out", "nested")

	res, err := Write(context.Background(), rep, tb, dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, dir, res.Dir)
	assert.Len(t, res.Files, 5)
	assert.Equal(t, []string{filepath.Join(dir, "hist_a.png"), filepath.Join(dir, "hist_b.png")}, res.Histograms)

	for _, name := range []string{SummaryFile, MissingFile, FlagsFile, MarkdownFile, HTMLFile, "hist_a.png", "hist_b.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(filepath.Join(dir, "hist_city.png"))
	assert.True(t, os.IsNotExist(err))

	summary := readCSV(t, filepath.Join(dir, SummaryFile))
	require.Len(t, summary, 4)
	assert.Equal(t, []string{"name", "dtype", "non_null", "missing", "missing_share", "unique", "is_numeric", "min", "max", "mean", "std"}, summary[0])
	assert.Equal(t, []string{"a", "integer", "3", "0", "0", "1", "true", "1", "1", "1", "0"}, summary[1])
	assert.Equal(t, "string", summary[3][1])
	assert.Equal(t, []string{"", "", "", ""}, summary[3][7:], "non-numeric stats are empty")

	missing := readCSV(t, filepath.Join(dir, MissingFile))
	assert.Equal(t, []string{"column", "missing", "missing_share"}, missing[0])
	assert.Equal(t, []string{"b", "1", "0.3333333333333333"}, missing[2])

	raw, err := os.ReadFile(filepath.Join(dir, FlagsFile))
	require.NoError(t, err)
	var flags analysis.Flags
	require.NoError(t, json.Unmarshal(raw, &flags))
	assert.Equal(t, rep.Flags, flags)

	html, err := os.ReadFile(filepath.Join(dir, HTMLFile))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<title>orders.csv</title>")
	assert.Contains(t, string(html), "QUALITY FLAGS")
}

func TestWrite_SkipHistograms(t *testing.T) {
	rep, tb := analyzed(t, "a\n1\n2\n")
	dir := t.TempDir()

	res, err := Write(context.Background(), rep, tb, dir, Options{SkipHistograms: true})
	require.NoError(t, err)
	assert.Empty(t, res.Histograms)
	_, err = os.Stat(filepath.Join(dir, "hist_a.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestSafeWriteFile_LeavesNoTemp(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.json")
	require.NoError(t, SafeWriteFile(p, []byte("{}")))
	_, err := os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err))

	err = SafeWriteFile(filepath.Join(t.TempDir(), "missing", "x.json"), []byte("{}"))
	assert.Error(t, err)
}
