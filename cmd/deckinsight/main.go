// Command deckinsight validates decklists and analyzes Magic: The Gathering
// metas, player profiles and build histories.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/deck-insight/internal/app"
	"github.com/ramonehamilton/deck-insight/internal/config"
)

var (
	// Global flags
	configPath string
	debug      bool
	dbPath     string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "deckinsight",
	Short: "Decklist validation and deck-building insights",
	Long: `deckinsight validates singleton decklists, summarizes format metas,
profiles players from their public decks and recommends what to build next.

Run "deckinsight serve" to expose everything over a REST API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.deck-insight/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "snapshot database path (overrides config)")

	rootCmd.AddCommand(
		validateCmd,
		metaCmd,
		profileCmd,
		serveCmd,
		watchCmd,
		migrateCmd,
		knowledgeCmd,
	)
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if debug {
		cfg.App.DebugMode = true
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	return cfg, nil
}

// loadApp wires the application. Callers must Close it.
func loadApp() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, app.NewLogger(cfg), nil)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
