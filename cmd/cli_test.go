package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/eda-cli/internal/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag to its default so invocations in one
// process do not leak state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestCLI_Overview(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := writeFile(t, filepath.Join(home, "data.csv"), "a,b\n1,x\n2,\n3,z\n")

	out := runCmd(t, "overview", p)
	for _, want := range []string{"Rows: 3\n", "Columns: 2\n", "missing_share", "integer", "string"} {
		if !strings.Contains(out, want) {
			t.Fatalf("overview output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_OverviewDelimiterAndDecimal(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := writeFile(t, filepath.Join(home, "eu.csv"), "price;qty\n0,5;1\n1,25;2\n")

	out := runCmd(t, "overview", p, "--delimiter", ";", "--decimal", "comma")
	if !strings.Contains(out, "float") || !strings.Contains(out, "0.875") {
		t.Fatalf("expected float column with mean 0.875:\n%s", out)
	}
}

func TestCLI_ReportSingleFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := writeFile(t, filepath.Join(home, "data.csv"), "a,b,name\n1,1,x\n1,,y\n1,2,z\n")
	outDir := filepath.Join(home, "reports")

	out := runCmd(t, "report", p, "--out-dir", outDir)
	if !strings.Contains(out, "[1/1] Processing data.csv...") {
		t.Fatalf("missing progress line:\n%s", out)
	}
	if !strings.Contains(out, "✓ Report ready: "+outDir) {
		t.Fatalf("missing ready line:\n%s", out)
	}
	if !strings.Contains(out, `"constant_columns": [`) {
		t.Fatalf("missing flags JSON:\n%s", out)
	}
	for _, name := range []string{"summary.csv", "missing.csv", "flags.json", "report.md", "report.html", "hist_a.png", "hist_b.png"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "hist_name.png")); !os.IsNotExist(err) {
		t.Fatalf("unexpected histogram for string column: %v", err)
	}
}

func TestCLI_ReportBatchCollidingNames(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	csv := "col1,col2\nA,1\nB,2\nC,3\n"
	writeFile(t, filepath.Join(home, "d1", "metrics.csv"), csv)
	writeFile(t, filepath.Join(home, "d2", "metrics.csv"), csv)
	outDir := filepath.Join(home, "out")

	out := runCmd(t, "report", filepath.Join(home, "d*", "metrics.csv"), "-o", outDir, "--no-histograms", "-q")
	if strings.Contains(out, "Processing") {
		t.Fatalf("quiet run printed progress:\n%s", out)
	}
	for _, dir := range []string{"metrics", "metrics__2"} {
		if _, err := os.Stat(filepath.Join(outDir, dir, "flags.json")); err != nil {
			t.Fatalf("missing report in %s: %v", dir, err)
		}
		if _, err := os.Stat(filepath.Join(outDir, dir, "hist_col2.png")); !os.IsNotExist(err) {
			t.Fatalf("histograms written despite --no-histograms")
		}
	}
}

func TestCLI_ReportOutDirFromConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	outDir := filepath.Join(home, "configured")
	cfgPath := writeFile(t, filepath.Join(home, "eda.yaml"), "out_dir: "+outDir+"\n")
	p := writeFile(t, filepath.Join(home, "data.csv"), "a\n1\n2\n")

	runCmd(t, "--config", cfgPath, "report", p, "--no-histograms")
	if _, err := os.Stat(filepath.Join(outDir, "summary.csv")); err != nil {
		t.Fatalf("report not written to configured out_dir: %v", err)
	}
}

func TestCLI_ReportNoMatch(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := execute(t, "report", filepath.Join(t.TempDir(), "*.csv"))
	if err == nil || !strings.Contains(err.Error(), "no input files matched") {
		t.Fatalf("expected no-match error, got %v", err)
	}
}

func TestCLI_FlagsFormats(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := writeFile(t, filepath.Join(home, "data.csv"), "a,b\n1,1\n1,\n1,2\n")

	out := runCmd(t, "flags", p)
	for _, want := range []string{`"too_few_rows": true`, `"too_many_missing": true`, `"constant_columns": [`, `"quality_score": 0.7`} {
		if !strings.Contains(out, want) {
			t.Fatalf("json output missing %q:\n%s", want, out)
		}
	}

	out = runCmd(t, "flags", p, "--format", "yaml")
	for _, want := range []string{"too_few_rows: true", "has_constant_columns: true", "constant_columns:\n    - a", "quality_score: 0.7"} {
		if !strings.Contains(out, want) {
			t.Fatalf("yaml output missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "flags", p, "--format", "xml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestCLI_EmptyTable(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := writeFile(t, filepath.Join(home, "header.csv"), "a,b\n")

	_, err := execute(t, "flags", p)
	if !errors.Is(err, table.ErrEmptyTable) {
		t.Fatalf("expected ErrEmptyTable, got %v", err)
	}
}

func TestCLI_BadIngestFlags(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	p := writeFile(t, filepath.Join(home, "data.csv"), "a\n1\n")

	if _, err := execute(t, "overview", p, "--delimiter", "#"); err == nil {
		t.Fatalf("expected error for unsupported delimiter")
	}
	if _, err := execute(t, "overview", p, "--decimal", "x"); err == nil {
		t.Fatalf("expected error for unsupported decimal")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfgPath := filepath.Join(home, "cfg", "eda.yaml")

	runCmd(t, "--config", cfgPath, "config", "set", "histogram_bins", "12")
	runCmd(t, "--config", cfgPath, "config", "set", "delimiter", ";")
	out := runCmd(t, "--config", cfgPath, "config", "show")
	if !strings.Contains(out, "histogram_bins: 12\n") || !strings.Contains(out, `delimiter: ";"`) {
		t.Fatalf("config show did not reflect saved values:\n%s", out)
	}

	if _, err := execute(t, "--config", cfgPath, "config", "set", "histogram_bins", "0"); err == nil {
		t.Fatalf("expected error for non-positive bins")
	}
	if _, err := execute(t, "--config", cfgPath, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestOutputDirs(t *testing.T) {
	got := outputDirs("out", []string{"a/data.csv"})
	if len(got) != 1 || got[0] != "out" {
		t.Fatalf("single input should write to out, got %v", got)
	}
	got = outputDirs("out", []string{"a/data.csv", "b/data.xlsx", "c/other.csv"})
	want := []string{
		filepath.Join("out", "data"),
		filepath.Join("out", "data__2"),
		filepath.Join("out", "other"),
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("outputDirs[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	got = outputDirs("out", []string{"d1/metrics.csv", "d2/metrics.csv", "metrics__2.csv"})
	want = []string{
		filepath.Join("out", "metrics"),
		filepath.Join("out", "metrics__2"),
		filepath.Join("out", "metrics__2__2"),
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("outputDirs[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestServeConfig_DotEnvReachesLogger(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"EDA_LOG_LEVEL", "EDA_LOG_FORMAT", "EDA_LISTEN_ADDR"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	envPath := writeFile(t, filepath.Join(home, ".env"), "EDA_LOG_LEVEL=debug\nEDA_LOG_FORMAT=json\nEDA_LISTEN_ADDR=:9100\n")

	resetFlags(rootCmd)
	cfgFile, svEnv, svAddr = "", envPath, ""
	t.Cleanup(func() { svEnv = ".env" })

	c, err := loadServeConfig()
	if err != nil {
		t.Fatalf("load serve config: %v", err)
	}
	if c.ListenAddr != ":9100" {
		t.Fatalf("listen_addr = %s, want :9100", c.ListenAddr)
	}
	if cfg != c || cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Fatalf("logging config not rebuilt from .env: %+v", cfg)
	}
}
