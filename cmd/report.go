package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
	"github.com/KaramelBytes/eda-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	rpIngest       ingestFlags
	rpOutDir       string
	rpBins         int
	rpNoHistograms bool
	rpQuiet        bool
)

var reportCmd = &cobra.Command{
	Use:   "report <files...>",
	Short: "Write summary, missing-value, flag and histogram reports for one or more datasets",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		c := currentConfig()
		outDir := rpOutDir
		if outDir == "" {
			outDir = c.OutDir
		}
		bins := c.HistogramBins
		if cmd.Flags().Changed("bins") {
			if rpBins <= 0 {
				return fmt.Errorf("--bins must be positive")
			}
			bins = rpBins
		}
		opt := report.Options{HistogramBins: bins, SkipHistograms: rpNoHistograms}

		out := cmd.OutOrStdout()
		dirs := outputDirs(outDir, files)
		total := len(files)
		for i, path := range files {
			if !rpQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := loadTable(path, &rpIngest)
			if err != nil {
				return err
			}
			rep, err := analysis.Analyze(t)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			res, err := report.Write(cmd.Context(), rep, t, dirs[i], opt)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			appLog.Info().
				Str("report_id", rep.ID).
				Str("dir", res.Dir).
				Int("histograms", len(res.Histograms)).
				Float64("quality_score", rep.Flags.QualityScore).
				Msg("report written")

			flags, err := encodeFlags(rep.Flags, "json")
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Report ready: %s\n", res.Dir)
			fmt.Fprint(out, string(flags))
		}
		return nil
	},
}

// expandInputs resolves glob patterns, keeps literal paths that exist and
// drops duplicates.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// outputDirs maps each input to its report directory. A single input
// writes straight into outDir; several inputs get one subdirectory each,
// named after the file and suffixed __2, __3... on collisions.
func outputDirs(outDir string, files []string) []string {
	if len(files) == 1 {
		return []string{outDir}
	}
	dirs := make([]string, len(files))
	used := map[string]struct{}{}
	for i, path := range files {
		base := filepath.Base(path)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		if stem == "" {
			stem = "dataset"
		}
		name := stem
		for n := 2; ; n++ {
			if _, taken := used[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s__%d", stem, n)
		}
		used[name] = struct{}{}
		dirs[i] = filepath.Join(outDir, name)
	}
	return dirs
}

func init() {
	rootCmd.AddCommand(reportCmd)
	rpIngest.bind(reportCmd)
	reportCmd.Flags().StringVarP(&rpOutDir, "out-dir", "o", "", "output directory (default from config: reports)")
	reportCmd.Flags().IntVar(&rpBins, "bins", 0, "histogram bins (default from config: 30)")
	reportCmd.Flags().BoolVar(&rpNoHistograms, "no-histograms", false, "skip PNG histograms")
	reportCmd.Flags().BoolVarP(&rpQuiet, "quiet", "q", false, "suppress progress output")
}
