package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const mb = 1024 * 1024

type staticFavorites map[string]struct{}

func (f staticFavorites) Set() (map[string]struct{}, error) { return f, nil }

type brokenFavorites struct{}

func (brokenFavorites) Set() (map[string]struct{}, error) {
	return nil, errors.New("favorites: decode failed")
}

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T, maxMB int, favs staticFavorites) *Ledger {
	t.Helper()
	if favs == nil {
		favs = staticFavorites{}
	}
	l := NewLedger(zap.NewNop(), config.CacheConfig{
		Dir:           t.TempDir(),
		DownloadDir:   t.TempDir(),
		MaxMB:         maxMB,
		DefaultTTLSec: 3600,
	}, favs)
	l.now = func() time.Time { return baseTime }
	return l
}

// writeImage creates a small file standing in for a downloaded wallpaper
func writeImage(t *testing.T, l *Ledger, pack, name string) string {
	t.Helper()
	path := filepath.Join(l.DownloadDir(), pack, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("image"), 0o644))
	return path
}

func addEntry(t *testing.T, l *Ledger, key, path string, size uint64, age time.Duration, ttl uint64) {
	t.Helper()
	require.NoError(t, l.AddOrUpdate(domain.CacheEntry{
		Key:        key,
		LocalPath:  path,
		SizeBytes:  size,
		AddedAt:    baseTime.Add(-age),
		TTLSeconds: ttl,
	}))
}

func TestPruneBudgetKeepsFavorite(t *testing.T) {
	favs := staticFavorites{}
	l := newTestLedger(t, 150, favs)

	fav := writeImage(t, l, "nature", "fav.jpg")
	favs[fav] = struct{}{}
	older := writeImage(t, l, "nature", "older.jpg")
	newer := writeImage(t, l, "nature", "newer.jpg")

	addEntry(t, l, "fav", fav, 100*mb, 3*time.Minute, 3600)
	addEntry(t, l, "older", older, 100*mb, 2*time.Minute, 3600)
	addEntry(t, l, "newer", newer, 100*mb, 1*time.Minute, 3600)

	res, err := l.Prune()
	require.NoError(t, err)
	assert.Equal(t, PruneResult{Removed: 2, Remaining: 1}, res)

	assert.FileExists(t, fav)
	assert.NoFileExists(t, older)
	assert.NoFileExists(t, newer)

	entries, err := l.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fav", entries[0].Key)
}

func TestPruneBudgetEvictsOldestFirst(t *testing.T) {
	l := newTestLedger(t, 250, nil)

	a := writeImage(t, l, "p", "a.jpg")
	b := writeImage(t, l, "p", "b.jpg")
	c := writeImage(t, l, "p", "c.jpg")
	// inserted out of age order on purpose
	addEntry(t, l, "b", b, 100*mb, 2*time.Minute, 3600)
	addEntry(t, l, "c", c, 100*mb, 1*time.Minute, 3600)
	addEntry(t, l, "a", a, 100*mb, 3*time.Minute, 3600)

	res, err := l.Prune()
	require.NoError(t, err)
	assert.Equal(t, PruneResult{Removed: 1, Remaining: 2}, res)
	assert.NoFileExists(t, a)
	assert.FileExists(t, b)
	assert.FileExists(t, c)
}

func TestPruneIsIdempotent(t *testing.T) {
	l := newTestLedger(t, 150, nil)
	for i, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		p := writeImage(t, l, "p", name)
		addEntry(t, l, name, p, 100*mb, time.Duration(3-i)*time.Minute, 3600)
	}

	first, err := l.Prune()
	require.NoError(t, err)
	assert.Equal(t, 2, first.Removed)

	second, err := l.Prune()
	require.NoError(t, err)
	assert.Equal(t, PruneResult{Removed: 0, Remaining: first.Remaining}, second)
}

func TestPruneOnlyFavoritesOverBudget(t *testing.T) {
	favs := staticFavorites{}
	l := newTestLedger(t, 50, favs)
	for _, name := range []string{"a.jpg", "b.jpg"} {
		p := writeImage(t, l, "p", name)
		favs[p] = struct{}{}
		addEntry(t, l, name, p, 100*mb, time.Minute, 3600)
	}

	res, err := l.Prune()
	require.NoError(t, err)
	assert.Equal(t, PruneResult{Removed: 0, Remaining: 2}, res)
}

func TestPruneExpiryUsesEntryTTL(t *testing.T) {
	favs := staticFavorites{}
	l := newTestLedger(t, 1024, favs)

	short := writeImage(t, l, "p", "short.jpg")
	long := writeImage(t, l, "p", "long.jpg")
	favExpired := writeImage(t, l, "p", "fav.jpg")
	favs[favExpired] = struct{}{}

	addEntry(t, l, "short", short, mb, 2*time.Minute, 60)
	addEntry(t, l, "long", long, mb, 2*time.Minute, 3600)
	addEntry(t, l, "fav", favExpired, mb, 2*time.Minute, 60)

	res, err := l.Prune()
	require.NoError(t, err)
	assert.Equal(t, PruneResult{Removed: 1, Remaining: 2}, res)
	assert.NoFileExists(t, short)
	assert.FileExists(t, long)
	assert.FileExists(t, favExpired)
}

func TestPruneKeepsHugeTTL(t *testing.T) {
	l := newTestLedger(t, 1024, nil)

	keep := writeImage(t, l, "nature", "keep.jpg")
	addEntry(t, l, "keep", keep, mb, time.Minute, 9999999999)

	res, err := l.Prune()
	require.NoError(t, err)
	assert.Equal(t, PruneResult{Removed: 0, Remaining: 1}, res)
	assert.FileExists(t, keep)
}

func TestPruneAbortsOnUnreadableFavorites(t *testing.T) {
	l := NewLedger(zap.NewNop(), config.CacheConfig{
		Dir:           t.TempDir(),
		DownloadDir:   t.TempDir(),
		MaxMB:         1,
		DefaultTTLSec: 60,
	}, brokenFavorites{})
	l.now = func() time.Time { return baseTime }

	img := writeImage(t, l, "p", "a.jpg")
	addEntry(t, l, "a", img, 2*mb, 2*time.Hour, 60)

	_, err := l.Prune()
	require.Error(t, err)
	_, err = l.PrunePack("p")
	require.Error(t, err)
	_, err = l.HardPruneAll()
	require.Error(t, err)
	_, err = l.HardPrunePack("p")
	require.Error(t, err)

	assert.FileExists(t, img)
	entries, err := l.Entries()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPruneDropsStaleEntries(t *testing.T) {
	l := newTestLedger(t, 1024, nil)
	addEntry(t, l, "gone", filepath.Join(l.DownloadDir(), "p", "gone.jpg"), mb, time.Minute, 3600)

	res, err := l.Prune()
	require.NoError(t, err)
	assert.Equal(t, PruneResult{Removed: 1, Remaining: 0}, res)
}

func TestPruneEmptyLedger(t *testing.T) {
	l := newTestLedger(t, 1, nil)

	res, err := l.Prune()
	require.NoError(t, err)
	assert.Equal(t, PruneResult{}, res)
}

func TestPrunePackLeavesOtherPacks(t *testing.T) {
	l := newTestLedger(t, 150, nil)

	n1 := writeImage(t, l, "nature", "1.jpg")
	n2 := writeImage(t, l, "nature", "2.jpg")
	c1 := writeImage(t, l, "cities", "1.jpg")
	c2 := writeImage(t, l, "cities", "2.jpg")
	addEntry(t, l, "n1", n1, 100*mb, 4*time.Minute, 3600)
	addEntry(t, l, "n2", n2, 100*mb, 3*time.Minute, 3600)
	addEntry(t, l, "c1", c1, 100*mb, 2*time.Minute, 3600)
	addEntry(t, l, "c2", c2, 100*mb, 1*time.Minute, 3600)

	res, err := l.PrunePack("Nature")
	require.NoError(t, err)
	assert.Equal(t, PruneResult{Removed: 1, Remaining: 1}, res)
	assert.NoFileExists(t, n1)
	assert.FileExists(t, n2)
	assert.FileExists(t, c1)
	assert.FileExists(t, c2)

	usage, err := l.Usage()
	require.NoError(t, err)
	assert.Equal(t, 3, usage.Items)
}

func TestAddOrUpdateUpsertsByKey(t *testing.T) {
	l := newTestLedger(t, 100, nil)

	require.NoError(t, l.AddOrUpdate(domain.CacheEntry{Key: "k", LocalPath: "/a.jpg", SizeBytes: 10}))
	require.NoError(t, l.AddOrUpdate(domain.CacheEntry{Key: "k", LocalPath: "/b.jpg", SizeBytes: 20, TTLSeconds: 5}))

	entries, err := l.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/b.jpg", entries[0].LocalPath)
	assert.Equal(t, uint64(20), entries[0].SizeBytes)
	assert.Equal(t, uint64(5), entries[0].TTLSeconds)
	assert.True(t, entries[0].AddedAt.Equal(baseTime))

	require.NoError(t, l.AddOrUpdate(domain.CacheEntry{Key: "other", LocalPath: "/c.jpg"}))
	entries, err = l.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(3600), entries[1].TTLSeconds, "zero TTL takes the default")
}

func TestCorruptIndexLoadsEmpty(t *testing.T) {
	l := newTestLedger(t, 100, nil)
	require.NoError(t, os.WriteFile(l.indexPath, []byte("not json"), 0o644))

	entries, err := l.Entries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHardPruneAll(t *testing.T) {
	favs := staticFavorites{}
	l := newTestLedger(t, 1024, favs)

	fav := writeImage(t, l, "nature", "fav.png")
	favs[fav] = struct{}{}
	n1 := writeImage(t, l, "nature", "1.jpg")
	c1 := writeImage(t, l, "cities", filepath.Join("deep", "1.webp"))
	notes := filepath.Join(l.DownloadDir(), "cities", "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("keep"), 0o644))

	addEntry(t, l, "fav", fav, mb, time.Minute, 3600)
	addEntry(t, l, "n1", n1, mb, time.Minute, 3600)
	addEntry(t, l, "outside", "/elsewhere/x.jpg", mb, time.Minute, 3600)

	res, err := l.HardPruneAll()
	require.NoError(t, err)
	assert.Equal(t, HardPruneResult{RemovedFiles: 2, KeptFavorites: 1, RemainingIndex: 2}, res)

	assert.FileExists(t, fav)
	assert.NoFileExists(t, n1)
	assert.NoFileExists(t, c1)
	assert.FileExists(t, notes)
	assert.NoDirExists(t, filepath.Join(l.DownloadDir(), "cities", "deep"))
	assert.DirExists(t, l.DownloadDir())

	again, err := l.HardPruneAll()
	require.NoError(t, err)
	assert.Equal(t, 0, again.RemovedFiles)
}

func TestHardPrunePack(t *testing.T) {
	l := newTestLedger(t, 1024, nil)

	n1 := writeImage(t, l, "my-pack", "1.jpg")
	c1 := writeImage(t, l, "cities", "1.jpg")
	addEntry(t, l, "n1", n1, mb, time.Minute, 3600)
	addEntry(t, l, "c1", c1, mb, time.Minute, 3600)

	res, err := l.HardPrunePack("My_Pack")
	require.NoError(t, err)
	assert.Equal(t, HardPruneResult{RemovedFiles: 1, RemainingIndex: 1}, res)
	assert.NoFileExists(t, n1)
	assert.FileExists(t, c1)
	assert.DirExists(t, filepath.Join(l.DownloadDir(), "my-pack"))

	unknown, err := l.HardPrunePack("missing")
	require.NoError(t, err)
	assert.Equal(t, HardPruneResult{RemainingIndex: 1}, unknown)
}

func TestWithin(t *testing.T) {
	tests := []struct {
		dir, path string
		want      bool
	}{
		{"/w/nature", "/w/nature/a.jpg", true},
		{"/w/nature", "/w/nature/sub/a.jpg", true},
		{"/w/nature", "/w/nature-2/a.jpg", false},
		{"/w/nature", "/w/nature", false},
		{"/w/nature", "/w/other/a.jpg", false},
	}
	for _, tt := range tests {
		if got := within(tt.dir, tt.path); got != tt.want {
			t.Errorf("within(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}
