package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/deck-insight/internal/meta"
	"github.com/ramonehamilton/deck-insight/internal/patterns"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string   // Chart title
	Subtitle   string   // Chart subtitle
	SeriesName string   // Legend name of the single series
	Width      string   // Chart width (e.g., "900px")
	Height     string   // Chart height (e.g., "500px")
	Theme      string   // Chart theme
	ShowLegend bool     // Show legend
	ShowLabels bool     // Print values on bars
	Colors     []string // Custom colors
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		SeriesName: "Share",
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// DataPoint represents a single bar.
type DataPoint struct {
	Label string
	Value float64
}

// RenderBar writes an interactive bar chart page to w.
func RenderBar(w io.Writer, data []DataPoint, config ChartConfig) error {
	if len(config.Colors) == 0 {
		config.Colors = DefaultChartConfig().Colors
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
		charts.WithColorsOpts(opts.Colors{
			config.Colors[0],
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: 30, Interval: "0"},
		}),
	)

	xLabels := make([]string, len(data))
	yData := make([]opts.BarData, len(data))
	for i, point := range data {
		xLabels[i] = point.Label
		yData[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(xLabels).
		AddSeries(config.SeriesName, yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(config.ShowLabels),
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// MetaSharePoints converts ranked meta decks to bar data using the
// normalized share.
func MetaSharePoints(analysis *meta.Analysis) []DataPoint {
	if analysis == nil {
		return nil
	}
	points := make([]DataPoint, len(analysis.TopDecks))
	for i, d := range analysis.TopDecks {
		points[i] = DataPoint{Label: d.Name, Value: d.Share}
	}
	return points
}

// RenderMetaShare renders the normalized meta share of each top deck.
func RenderMetaShare(w io.Writer, analysis *meta.Analysis, config ChartConfig) error {
	if analysis == nil {
		return fmt.Errorf("no analysis to chart")
	}
	if config.Title == "" {
		config.Title = fmt.Sprintf("%s meta share", analysis.Format)
	}
	if config.Subtitle == "" && analysis.Source != "" {
		config.Subtitle = "Source: " + analysis.Source
	}
	config.SeriesName = "Meta share (%)"
	return RenderBar(w, MetaSharePoints(analysis), config)
}

// RenderFrequencies renders ranked frequency entries, such as a user's
// color combinations.
func RenderFrequencies(w io.Writer, entries []patterns.RankedEntry, config ChartConfig) error {
	points := make([]DataPoint, len(entries))
	for i, e := range entries {
		points[i] = DataPoint{Label: e.Name, Value: float64(e.Count)}
	}
	if config.SeriesName == "" {
		config.SeriesName = "Count"
	}
	return RenderBar(w, points, config)
}

// WriteFile renders with fn into a file at outputPath.
func WriteFile(outputPath string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	return fn(f)
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
