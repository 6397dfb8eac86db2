package history

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAppendBoundsHistory(t *testing.T) {
	l := NewLog(zap.NewNop(), filepath.Join(t.TempDir(), "history.json"))
	l.now = func() time.Time { return time.UnixMilli(1700000000000) }

	for i := 0; i < MaxEntries+5; i++ {
		require.NoError(t, l.Append("nature", []domain.Assignment{{Output: "DP-1", Path: fmt.Sprintf("/w/%d.jpg", i)}}))
	}

	entries, err := l.Entries()
	require.NoError(t, err)
	require.Len(t, entries, MaxEntries)
	assert.Equal(t, "/w/5.jpg", entries[0].Path)
	assert.Equal(t, fmt.Sprintf("/w/%d.jpg", MaxEntries+4), entries[len(entries)-1].Path)
	assert.Equal(t, Entry{Timestamp: 1700000000000, Pack: "nature", Output: "DP-1", Path: "/w/5.jpg"}, entries[0])
}

func TestAppendEmptyIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	l := NewLog(zap.NewNop(), path)

	require.NoError(t, l.Append("nature", nil))
	assert.NoFileExists(t, path)
}
