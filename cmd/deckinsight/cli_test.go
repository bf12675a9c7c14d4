package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/deck-insight/internal/storage"
)

// testCmd returns a bare command with captured output, plus a config file
// path in a temp dir. Globals are reset when the test ends.
func testCmd(t *testing.T, configTOML string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	configPath = filepath.Join(dir, "config.toml")
	if configTOML != "" {
		require.NoError(t, os.WriteFile(configPath, []byte(configTOML), 0o600))
	}
	t.Cleanup(func() {
		configPath, dbPath, debug = "", "", false
		validateFormat, validateSize, validateMono, validateDedupe = "", 0, false, false
	})

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func writeDeck(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600))
	return path
}

func TestRunValidate_Valid(t *testing.T) {
	cmd, out := testCmd(t, "")
	validateSize = 3

	path := writeDeck(t, "1 Sol Ring", "1 Arcane Signet", "1 Command Tower")
	require.NoError(t, runValidate(cmd, []string{path}))
	assert.Contains(t, out.String(), "Cards: 3 (3 unique)")
	assert.Contains(t, out.String(), "✓ valid")
}

func TestRunValidate_Invalid(t *testing.T) {
	cmd, out := testCmd(t, "[validation]\ndefault_format = \"brawl\"\n")

	path := writeDeck(t, "2 Sol Ring")
	err := runValidate(cmd, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brawl")
	assert.Contains(t, out.String(), "✗")
}

func TestRunValidate_Stdin(t *testing.T) {
	cmd, out := testCmd(t, "")
	validateSize = 1
	cmd.SetIn(strings.NewReader("1 Sol Ring\n"))

	require.NoError(t, runValidate(cmd, []string{"-"}))
	assert.Contains(t, out.String(), "Cards: 1")
}

func TestRunValidate_Dedupe(t *testing.T) {
	cmd, out := testCmd(t, "")
	validateDedupe = true

	path := writeDeck(t, "2 Sol Ring", "1 Sol Ring", "3 Forest")
	require.NoError(t, runValidate(cmd, []string{path}))
	assert.Equal(t, "1x Sol Ring\n3x Forest\n", out.String())
}

func TestRunValidate_MissingFile(t *testing.T) {
	cmd, _ := testCmd(t, "")
	assert.Error(t, runValidate(cmd, []string{filepath.Join(t.TempDir(), "nope.txt")}))
}

func TestRunMigrate(t *testing.T) {
	cmd, out := testCmd(t, "")

	assert.Error(t, runMigrate(cmd, nil), "migrate without a database should fail")

	dbPath = filepath.Join(t.TempDir(), "deck-insight.db")
	require.NoError(t, runMigrate(cmd, nil))
	assert.Contains(t, out.String(), "Schema version: 1")
}

func TestRunKnowledge_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := fmt.Sprintf("[storage]\ndb_path = %q\nsnapshot_passphrase = \"hunter2\"\n", filepath.Join(dir, "kb.db"))
	cmd, out := testCmd(t, cfg)

	enc := storage.DefaultEncryptionConfig("hunter2")
	in := filepath.Join(dir, "in.snap")
	payload := `[{"username":"alice","decks":[{"name":"Goblins","format":"commander","colorIdentity":["R"]}]}]`
	require.NoError(t, storage.WriteSnapshotFile(in, []byte(payload), enc))

	require.NoError(t, runKnowledgeImport(cmd, []string{in}))
	assert.Contains(t, out.String(), "Imported 1 players")

	exported := filepath.Join(dir, "out.snap")
	require.NoError(t, runKnowledgeExport(cmd, []string{exported}))
	assert.Contains(t, out.String(), "Exported 1 players")

	raw, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.True(t, storage.IsEncrypted(raw))

	data, err := storage.ReadSnapshotFile(exported, enc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Goblins")
}

func TestRunKnowledgeImport_RequiresDatabase(t *testing.T) {
	cmd, _ := testCmd(t, "")
	path := filepath.Join(t.TempDir(), "kb.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))

	assert.Error(t, runKnowledgeImport(cmd, []string{path}))
}

func TestRootCommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"validate", "meta", "profile", "serve", "watch", "migrate", "knowledge"} {
		assert.Contains(t, names, want)
	}
}
