package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/deck-insight/internal/charts"
	"github.com/ramonehamilton/deck-insight/internal/meta"
)

var (
	metaChartPath string
	metaOpenChart bool
)

// metaCmd summarizes a format's meta
var metaCmd = &cobra.Command{
	Use:   "meta <format>",
	Short: "Summarize the meta of a format",
	Long: `Fetch the format's metagame listing and print the top decks, trends
and color distribution. Use --chart to also write an HTML bar chart.`,
	Args: cobra.ExactArgs(1),
	RunE: runMeta,
}

func init() {
	metaCmd.Flags().StringVar(&metaChartPath, "chart", "", "write an HTML meta share chart to this path")
	metaCmd.Flags().BoolVar(&metaOpenChart, "open", false, "open the chart in a browser")
}

func runMeta(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	analysis := a.Analyzer.AnalyzeFormat(cmd.Context(), args[0])
	out := cmd.OutOrStdout()
	printAnalysis(out, analysis)

	if analysis.Degraded {
		return fmt.Errorf("meta source failed: %w", analysis.SourceErr)
	}

	if metaChartPath != "" {
		err := charts.WriteFile(metaChartPath, func(w io.Writer) error {
			return charts.RenderMetaShare(w, analysis, charts.DefaultChartConfig())
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Chart written to %s\n", metaChartPath)
		if metaOpenChart {
			return charts.OpenInBrowser(metaChartPath)
		}
	}
	return nil
}

func printAnalysis(out io.Writer, analysis *meta.Analysis) {
	fmt.Fprintf(out, "Meta: %s\n", analysis.Format)
	for _, line := range analysis.Summary {
		fmt.Fprintf(out, "  %s\n", line)
	}
	for i, d := range analysis.TopDecks {
		fmt.Fprintf(out, "  %2d. %-30s %6.2f%%  tier %d\n", i+1, d.Name, d.Share, d.Tier)
	}
	if len(analysis.Trends.Emerging) > 0 {
		fmt.Fprintf(out, "Emerging: %v\n", analysis.Trends.Emerging)
	}
}
