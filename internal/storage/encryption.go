package storage

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

const (
	// SnapshotMagicHeader marks an encrypted snapshot file.
	SnapshotMagicHeader = "DKINSNP1"

	// Default Argon2 parameters (RFC 9106 recommendations)
	defaultArgon2Time    = 1
	defaultArgon2Memory  = 64 * 1024 // 64 MB
	defaultArgon2Threads = 4
	argon2KeyLen         = 32 // AES-256

	saltLength = 32
)

// ErrPassphraseRequired is returned when reading an encrypted snapshot
// without a passphrase.
var ErrPassphraseRequired = errors.New("snapshot is encrypted: passphrase required")

// EncryptionConfig holds the passphrase and Argon2id cost parameters.
type EncryptionConfig struct {
	Passphrase string

	// Argon2Time is the number of iterations. Default: 1
	Argon2Time uint32

	// Argon2Memory is the memory cost in KB. Default: 64 MB
	Argon2Memory uint32

	// Argon2Threads is the parallelism. Default: 4
	Argon2Threads uint8
}

// DefaultEncryptionConfig returns encryption config with secure defaults.
func DefaultEncryptionConfig(passphrase string) *EncryptionConfig {
	return &EncryptionConfig{
		Passphrase:    passphrase,
		Argon2Time:    defaultArgon2Time,
		Argon2Memory:  defaultArgon2Memory,
		Argon2Threads: defaultArgon2Threads,
	}
}

func (c *EncryptionConfig) enabled() bool {
	return c != nil && c.Passphrase != ""
}

func (c *EncryptionConfig) gcm(salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(c.Passphrase), salt, c.Argon2Time, c.Argon2Memory, c.Argon2Threads, argon2KeyLen)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// EncryptData seals plaintext with AES-256-GCM under an Argon2id key.
// Output layout: salt || nonce || ciphertext+tag.
func EncryptData(plaintext []byte, config *EncryptionConfig) ([]byte, error) {
	if !config.enabled() {
		return nil, fmt.Errorf("encryption config with passphrase required")
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := config.gcm(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, saltLength+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// DecryptData reverses EncryptData.
func DecryptData(encrypted []byte, config *EncryptionConfig) ([]byte, error) {
	if !config.enabled() {
		return nil, ErrPassphraseRequired
	}
	if len(encrypted) < saltLength {
		return nil, fmt.Errorf("encrypted data too short")
	}

	gcm, err := config.gcm(encrypted[:saltLength])
	if err != nil {
		return nil, err
	}

	rest := encrypted[saltLength:]
	if len(rest) < gcm.NonceSize()+gcm.Overhead() {
		return nil, fmt.Errorf("encrypted data too short")
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong passphrase or corrupted data): %w", err)
	}
	return plaintext, nil
}

// WriteSnapshotFile writes data to path, encrypted when config carries a
// passphrase and as-is otherwise.
func WriteSnapshotFile(path string, data []byte, config *EncryptionConfig) error {
	out := data
	if config.enabled() {
		encrypted, err := EncryptData(data, config)
		if err != nil {
			return fmt.Errorf("encryption failed: %w", err)
		}
		out = append([]byte(SnapshotMagicHeader), encrypted...)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

// ReadSnapshotFile reads a file written by WriteSnapshotFile. Plain files
// are returned unchanged regardless of config.
func ReadSnapshotFile(path string, config *EncryptionConfig) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	if !IsEncrypted(data) {
		return data, nil
	}

	plaintext, err := DecryptData(data[len(SnapshotMagicHeader):], config)
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

// IsEncrypted reports whether data starts with the snapshot magic header.
func IsEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, []byte(SnapshotMagicHeader))
}
