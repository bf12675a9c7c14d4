package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/deck-insight/internal/storage"
)

var migrateDown bool

// migrateCmd applies schema migrations to the snapshot database
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply snapshot database migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "roll back every migration")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Storage.DBPath == "" {
		return errors.New("no database configured: set storage.db_path or pass --db")
	}

	mm, err := storage.NewMigrationManager(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer mm.Close()

	if migrateDown {
		err = mm.Down()
	} else {
		err = mm.Up()
	}
	if err != nil {
		return err
	}

	version, dirty, err := mm.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Schema version: none")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d (dirty: %v)\n", version, dirty)
	return nil
}
