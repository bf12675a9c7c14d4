package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/deck-insight/internal/deck"
	"github.com/ramonehamilton/deck-insight/internal/metrics"
)

var (
	validateFormat string
	validateSize   int
	validateMono   bool
	validateDedupe bool
)

// validateCmd checks a decklist file
var validateCmd = &cobra.Command{
	Use:   "validate <file|->",
	Short: "Validate a decklist",
	Long: `Validate a decklist against a format preset (commander, brawl,
oathbreaker). Use "-" to read the list from stdin.

With --dedupe the deduplicated list is printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateFormat, "format", "", "format preset (default from config)")
	validateCmd.Flags().IntVar(&validateSize, "size", 0, "expected deck size (overrides the preset)")
	validateCmd.Flags().BoolVar(&validateMono, "mono", false, "deck is mono-colored (raises the land warning threshold)")
	validateCmd.Flags().BoolVar(&validateDedupe, "dedupe", false, "print the list with duplicates removed")
}

func readDeckList(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read decklist: %w", err)
	}
	return string(data), nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	text, err := readDeckList(cmd, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if validateDedupe {
		fmt.Fprintln(out, deck.FormatDeckList(deck.RemoveDuplicates(deck.ParseDeckList(text))))
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format := validateFormat
	if format == "" {
		format = cfg.Validation.DefaultFormat
	}
	preset, known := deck.PresetFor(format)
	if !known {
		fmt.Fprintf(out, "Unknown format %q, using %s rules\n", format, preset.Name)
	}
	opts := preset.Options(validateMono)
	if validateSize > 0 {
		opts.ExpectedSize = validateSize
	}

	result := deck.ValidateDeckList(text, opts)
	metrics.RecordValidation(result.IsValid)
	printValidation(out, result)

	if !result.IsValid {
		return fmt.Errorf("decklist is not valid for %s", preset.Name)
	}
	return nil
}

func printValidation(out io.Writer, result *deck.ValidationResult) {
	fmt.Fprintf(out, "Cards: %d (%d unique), lands: %d\n", result.TotalCards, result.UniqueCards, result.LandCount)
	for _, e := range result.Errors {
		fmt.Fprintf(out, "  ✗ %s\n", e)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "  ! %s\n", w)
	}
	if result.IsValid {
		fmt.Fprintln(out, "  ✓ valid")
	}
}
