// Package artifactfs persists uploaded archive bytes to a local
// directory tree keyed by storage key, mirroring the reference
// implementation's storage::fs module (write_bytes/read_bytes against
// an artifact_storage_root).
package artifactfs

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteBytes writes data to root/storageKey, creating parent
// directories as needed, and returns the full path written.
func WriteBytes(root, storageKey string, data []byte) (string, error) {
	fullPath := filepath.Join(root, filepath.FromSlash(storageKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("artifactfs: create parent dirs for %s: %w", storageKey, err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("artifactfs: write %s: %w", storageKey, err)
	}
	return fullPath, nil
}

// ReadBytes reads root/storageKey back.
func ReadBytes(root, storageKey string) ([]byte, error) {
	fullPath := filepath.Join(root, filepath.FromSlash(storageKey))
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("artifactfs: read %s: %w", storageKey, err)
	}
	return data, nil
}
