package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/deck-insight/internal/profile"
)

var profileSource string

// profileCmd prints insights for a player
var profileCmd = &cobra.Command{
	Use:   "profile <username>",
	Short: "Profile a player from their public decks",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfile,
}

func init() {
	profileCmd.Flags().StringVar(&profileSource, "source", "moxfield", "profile site: moxfield or archidekt")
}

func runProfile(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.RestoreKnowledge(cmd.Context()); err != nil {
		a.Logger.Warn("Failed to restore knowledge base", "error", err)
	}

	var report *profile.Report
	switch profileSource {
	case "moxfield":
		report, err = a.Profiles.AnalyzeUser(cmd.Context(), args[0])
	case "archidekt":
		report, err = a.Profiles.AnalyzeCoarseUser(cmd.Context(), args[0])
	default:
		return fmt.Errorf("unknown profile source %q", profileSource)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s): %d decks\n", args[0], report.Source, report.DeckCount)
	fmt.Fprintln(out, "Insights:")
	for _, line := range report.Insights {
		fmt.Fprintf(out, "  - %s\n", line)
	}
	fmt.Fprintln(out, "Recommendations:")
	for _, line := range report.Recommendations {
		fmt.Fprintf(out, "  - %s\n", line)
	}

	if report.Decks != nil {
		a.Knowledge.Remember(args[0], report.Decks)
		if err := a.PersistKnowledge(cmd.Context()); err != nil {
			a.Logger.Warn("Failed to save knowledge base", "error", err)
		}
	}
	return nil
}
