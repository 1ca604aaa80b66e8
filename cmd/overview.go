package cmd

import (
	"fmt"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var ovIngest ingestFlags

var overviewCmd = &cobra.Command{
	Use:   "overview <file>",
	Short: "Print row and column counts and the per-column summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0], &ovIngest)
		if err != nil {
			return err
		}
		rep, err := analysis.Analyze(t)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Rows: %s\n", humanize.Comma(int64(rep.Rows)))
		fmt.Fprintf(out, "Columns: %s\n", humanize.Comma(int64(rep.Cols)))
		if rep.Truncated {
			fmt.Fprintln(out, "⚠ Input truncated by --max-rows")
		}
		return rep.WriteTable(out)
	},
}

func init() {
	rootCmd.AddCommand(overviewCmd)
	ovIngest.bind(overviewCmd)
}
