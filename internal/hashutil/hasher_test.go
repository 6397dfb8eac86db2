package hashutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSHA256Hasher(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jpg")
	b := filepath.Join(dir, "b.jpg")
	c := filepath.Join(dir, "c.jpg")
	os.WriteFile(a, []byte("same bytes"), 0o644)
	os.WriteFile(b, []byte("same bytes"), 0o644)
	os.WriteFile(c, []byte("other bytes"), 0o644)

	h := NewSHA256Hasher()
	hash := func(p string) string {
		t.Helper()
		v, err := h.Hash(p)
		if err != nil {
			t.Fatalf("Hash(%s) error = %v", p, err)
		}
		return v
	}

	if hash(a) != hash(b) {
		t.Error("identical contents should hash equal")
	}
	if hash(a) == hash(c) {
		t.Error("different contents should hash differently")
	}

	missing := filepath.Join(dir, "missing.jpg")
	if got, want := hash(missing), String(missing); got != want {
		t.Errorf("missing file hash = %s, want path hash %s", got, want)
	}
}
