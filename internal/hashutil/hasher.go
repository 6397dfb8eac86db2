package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// SHA256Hasher hashes file contents.
// Files that are not local yet fall back to hashing the path string, so a candidate
// that has not been hydrated still gets a stable dedupe key.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a content hasher
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// Hash returns the hex sha256 of the file at path, or of path itself when the file is absent
func (SHA256Hasher) Hash(path string) (string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return String(path), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// String returns the hex sha256 of s
func String(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
