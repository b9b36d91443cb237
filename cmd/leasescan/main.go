// Package main implements leasescan, an offline lease risk scanner.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gonkalabs/termsplain/internal/flags"
	"github.com/gonkalabs/termsplain/internal/report"
)

var (
	rulesFile string
	noColor   bool
	asJSON    bool

	version = "dev"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "leasescan",
		Short: "Scan lease text for risky clauses",
		Long: `leasescan runs the termsplain rule set over a lease and prints every
risk flag it finds with a short evidence snippet.

No network access is needed; summaries and explanations are served by the
termsplain API.`,
		Version:       version,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&rulesFile, "rules", "", "YAML rule file (default: built-in rules)")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newScanCmd(), newRulesCmd())
	return root
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [file]",
		Short: "Scan a lease file or stdin",
		Long: `Scan a lease file or stdin and print the detected risk flags.

Examples:
  # Scan a file
  leasescan scan lease.txt

  # Scan from stdin
  pbpaste | leasescan scan -

  # Machine-readable output with a custom rule file
  leasescan scan --json --rules my-rules.yaml lease.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScan,
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output findings as JSON")
	return cmd
}

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List detection rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rs, err := loadRules()
			if err != nil {
				return err
			}
			return report.NewFormatter(noColor).Rules(cmd.OutOrStdout(), rs)
		},
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	rs, err := loadRules()
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open lease: %w", err)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read lease: %w", err)
	}

	findings := rs.Detect(string(data))
	if asJSON {
		return report.JSON(cmd.OutOrStdout(), findings)
	}
	return report.NewFormatter(noColor).Findings(cmd.OutOrStdout(), findings)
}

func loadRules() (*flags.RuleSet, error) {
	if rulesFile == "" {
		return flags.DefaultRules(), nil
	}
	return flags.LoadRules(rulesFile)
}
