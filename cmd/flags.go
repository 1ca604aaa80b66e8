package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	flIngest ingestFlags
	flFormat string
)

var flagsCmd = &cobra.Command{
	Use:   "flags <file>",
	Short: "Print the data-quality flags and score of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimSpace(flFormat))
		if format != "json" && format != "yaml" {
			return fmt.Errorf("unsupported --format: %s (use json|yaml)", flFormat)
		}
		t, err := loadTable(args[0], &flIngest)
		if err != nil {
			return err
		}
		rep, err := analysis.Analyze(t)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		b, err := encodeFlags(rep.Flags, format)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

func encodeFlags(f analysis.Flags, format string) ([]byte, error) {
	if format == "yaml" {
		b, err := yaml.Marshal(f)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return b, nil
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return append(b, '\n'), nil
}

func init() {
	rootCmd.AddCommand(flagsCmd)
	flIngest.bind(flagsCmd)
	flagsCmd.Flags().StringVar(&flFormat, "format", "json", "output format: json|yaml")
}
