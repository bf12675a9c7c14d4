package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// testEncryptionConfig uses cheap Argon2 parameters so tests stay fast.
func testEncryptionConfig(passphrase string) *EncryptionConfig {
	return &EncryptionConfig{Passphrase: passphrase, Argon2Time: 1, Argon2Memory: 1024, Argon2Threads: 1}
}

func TestEncryptDecryptData(t *testing.T) {
	tests := []struct {
		name       string
		plaintext  string
		passphrase string
	}{
		{name: "history export", plaintext: `[{"commander":"Krenko","timestamp":"2024-01-01T00:00:00Z"}]`, passphrase: "test-passphrase"},
		{name: "empty", plaintext: "", passphrase: "test-passphrase"},
		{name: "special characters", plaintext: `[{"commander":"Jötun Grunt"}]`, passphrase: "pässphrase"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testEncryptionConfig(tt.passphrase)

			encrypted, err := EncryptData([]byte(tt.plaintext), config)
			if err != nil {
				t.Fatalf("EncryptData() error = %v", err)
			}
			if tt.plaintext != "" && bytes.Contains(encrypted, []byte(tt.plaintext)) {
				t.Error("ciphertext contains plaintext")
			}

			decrypted, err := DecryptData(encrypted, config)
			if err != nil {
				t.Fatalf("DecryptData() error = %v", err)
			}
			if string(decrypted) != tt.plaintext {
				t.Errorf("DecryptData() = %q, want %q", decrypted, tt.plaintext)
			}
		})
	}
}

func TestDecryptDataWrongPassphrase(t *testing.T) {
	encrypted, err := EncryptData([]byte("secret"), testEncryptionConfig("right"))
	if err != nil {
		t.Fatalf("EncryptData() error = %v", err)
	}
	if _, err := DecryptData(encrypted, testEncryptionConfig("wrong")); err == nil {
		t.Error("DecryptData() with wrong passphrase should fail")
	}
}

func TestDecryptDataCorrupted(t *testing.T) {
	config := testEncryptionConfig("pass")
	encrypted, err := EncryptData([]byte("secret data"), config)
	if err != nil {
		t.Fatalf("EncryptData() error = %v", err)
	}

	encrypted[len(encrypted)-1] ^= 0xFF
	if _, err := DecryptData(encrypted, config); err == nil {
		t.Error("DecryptData() on corrupted data should fail")
	}
	if _, err := DecryptData([]byte("short"), config); err == nil {
		t.Error("DecryptData() on short data should fail")
	}
}

func TestEncryptDataNoPassphrase(t *testing.T) {
	if _, err := EncryptData([]byte("x"), &EncryptionConfig{}); err == nil {
		t.Error("EncryptData() without passphrase should fail")
	}
	if _, err := EncryptData([]byte("x"), nil); err == nil {
		t.Error("EncryptData() with nil config should fail")
	}
}

func TestSnapshotFile_Encrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "history.snap")
	payload := []byte(`[{"commander":"Krenko"}]`)
	config := testEncryptionConfig("hunter2")

	if err := WriteSnapshotFile(path, payload, config); err != nil {
		t.Fatalf("WriteSnapshotFile() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !IsEncrypted(raw) {
		t.Fatal("snapshot file should carry the magic header")
	}

	got, err := ReadSnapshotFile(path, config)
	if err != nil {
		t.Fatalf("ReadSnapshotFile() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("ReadSnapshotFile() = %s, want %s", got, payload)
	}

	if _, err := ReadSnapshotFile(path, nil); !errors.Is(err, ErrPassphraseRequired) {
		t.Errorf("expected ErrPassphraseRequired, got %v", err)
	}
}

func TestSnapshotFile_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	payload := []byte(`[]`)

	if err := WriteSnapshotFile(path, payload, nil); err != nil {
		t.Fatalf("WriteSnapshotFile() error = %v", err)
	}

	got, err := ReadSnapshotFile(path, testEncryptionConfig("unused"))
	if err != nil {
		t.Fatalf("ReadSnapshotFile() error = %v", err)
	}
	if string(got) != "[]" {
		t.Errorf("ReadSnapshotFile() = %s", got)
	}
}

func TestReadSnapshotFile_Missing(t *testing.T) {
	if _, err := ReadSnapshotFile(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Error("expected error for missing file")
	}
}
