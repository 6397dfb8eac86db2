package favorites

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileSet(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name    string
		content string
		want    []string
		wantErr bool
	}{
		{"missing file", "", nil, false},
		{"two favorites", `{"favorites": ["/w/a.jpg", "/w/b.jpg"]}`, []string{"/w/a.jpg", "/w/b.jpg"}, false},
		{"unclean paths", `{"favorites": ["/w//nature/./a.jpg", "/w/x/../b.jpg", ""]}`, []string{"/w/nature/a.jpg", "/w/b.jpg"}, false},
		{"home relative", `{"favorites": ["~/Pictures/a.jpg"]}`, []string{filepath.Join(home, "Pictures", "a.jpg")}, false},
		{"corrupt file", `{"favorites": [`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "favorites.json")
			if tt.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}

			set, err := NewFile(zap.NewNop(), path).Set()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, set, len(tt.want))
			for _, p := range tt.want {
				assert.Contains(t, set, p)
			}
		})
	}
}
