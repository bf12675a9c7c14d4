package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/deck-insight/internal/storage"
)

// knowledgeCmd moves the knowledge base in and out of snapshot files
var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Export or import the knowledge base",
	Long: `Export or import the knowledge base of profiled players.

Files are encrypted when storage.snapshot_passphrase is set.`,
}

var knowledgeExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the stored knowledge base to a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runKnowledgeExport,
}

var knowledgeImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a knowledge base file into the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runKnowledgeImport,
}

func init() {
	knowledgeCmd.AddCommand(knowledgeExportCmd, knowledgeImportCmd)
}

func runKnowledgeExport(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	users, err := a.RestoreKnowledge(cmd.Context())
	if err != nil {
		return err
	}
	data, err := a.Knowledge.Export()
	if err != nil {
		return err
	}
	if err := storage.WriteSnapshotFile(args[0], data, a.EncryptionConfig()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d players to %s\n", users, args[0])
	return nil
}

func runKnowledgeImport(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Snapshots == nil {
		return fmt.Errorf("no database configured: set storage.db_path or pass --db")
	}

	data, err := storage.ReadSnapshotFile(args[0], a.EncryptionConfig())
	if err != nil {
		return err
	}
	users := a.Knowledge.Import(data)
	if err := a.PersistKnowledge(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d players from %s\n", users, args[0])
	return nil
}
