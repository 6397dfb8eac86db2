package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"github.com/KitotsuMolina/Kitowall/internal/lockfile"
	"go.uber.org/zap"
)

const indexFileName = "index.json"

// Ledger is the index of wallpapers materialized on disk.
// It owns eviction: TTL expiry, the size budget and favorite protection.
// Every mutation runs under the index file lock as load, mutate, save.
type Ledger struct {
	logger      *zap.Logger
	indexPath   string
	downloadDir string
	maxBytes    uint64
	defaultTTL  uint64
	favorites   domain.Favorites
	now         func() time.Time
}

// NewLedger creates a ledger backed by <cache.dir>/index.json
func NewLedger(logger *zap.Logger, cfg config.CacheConfig, favorites domain.Favorites) *Ledger {
	return &Ledger{
		logger:      logger,
		indexPath:   filepath.Join(cfg.Dir, indexFileName),
		downloadDir: filepath.Clean(cfg.DownloadDir),
		maxBytes:    cfg.MaxBytes(),
		defaultTTL:  uint64(cfg.DefaultTTLSec),
		favorites:   favorites,
		now:         time.Now,
	}
}

// DownloadDir returns the managed directory hydrated files live under
func (l *Ledger) DownloadDir() string {
	return l.downloadDir
}

// indexFile is the on-disk shape of the ledger
type indexFile struct {
	Entries []indexRecord `json:"entries"`
}

type indexRecord struct {
	Key       string `json:"key"`
	LocalPath string `json:"localPath"`
	SizeBytes uint64 `json:"sizeBytes"`
	AddedAt   int64  `json:"addedAt"` // epoch millis
	TTLSec    uint64 `json:"ttlSec"`
}

func (r indexRecord) entry() domain.CacheEntry {
	return domain.CacheEntry{
		Key:        r.Key,
		LocalPath:  r.LocalPath,
		SizeBytes:  r.SizeBytes,
		AddedAt:    time.UnixMilli(r.AddedAt),
		TTLSeconds: r.TTLSec,
	}
}

func recordOf(e domain.CacheEntry) indexRecord {
	return indexRecord{
		Key:       e.Key,
		LocalPath: e.LocalPath,
		SizeBytes: e.SizeBytes,
		AddedAt:   e.AddedAt.UnixMilli(),
		TTLSec:    e.TTLSeconds,
	}
}

// load reads the index. A missing or corrupt file yields an empty ledger.
func (l *Ledger) load() []domain.CacheEntry {
	var idx indexFile
	if _, err := lockfile.ReadJSON(l.indexPath, &idx); err != nil {
		l.logger.Warn("Cache index unreadable, starting empty",
			zap.String("path", l.indexPath),
			zap.Error(err))
		return nil
	}

	entries := make([]domain.CacheEntry, 0, len(idx.Entries))
	for _, r := range idx.Entries {
		if r.Key == "" || r.LocalPath == "" {
			continue
		}
		entries = append(entries, r.entry())
	}
	return entries
}

func (l *Ledger) save(entries []domain.CacheEntry) error {
	idx := indexFile{Entries: make([]indexRecord, 0, len(entries))}
	for _, e := range entries {
		idx.Entries = append(idx.Entries, recordOf(e))
	}
	if _, err := lockfile.WriteJSON(l.indexPath, idx); err != nil {
		return fmt.Errorf("failed to save cache index: %w", err)
	}
	return nil
}

// update runs fn over the current entries under the index lock and persists the result
func (l *Ledger) update(fn func([]domain.CacheEntry) []domain.CacheEntry) error {
	lock, err := lockfile.Acquire(l.indexPath)
	if err != nil {
		return err
	}
	defer lock.Release()

	return l.save(fn(l.load()))
}

// AddOrUpdate upserts entry by key.
// A zero TTL takes the ledger default and a zero AddedAt takes the current time.
func (l *Ledger) AddOrUpdate(entry domain.CacheEntry) error {
	if entry.TTLSeconds == 0 {
		entry.TTLSeconds = l.defaultTTL
	}
	if entry.AddedAt.IsZero() {
		entry.AddedAt = l.now()
	}

	return l.update(func(entries []domain.CacheEntry) []domain.CacheEntry {
		for i := range entries {
			if entries[i].Key == entry.Key {
				entries[i] = entry
				return entries
			}
		}
		return append(entries, entry)
	})
}

// Entries returns a snapshot of the ledger
func (l *Ledger) Entries() ([]domain.CacheEntry, error) {
	lock, err := lockfile.Acquire(l.indexPath)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	return l.load(), nil
}

// Usage summarizes what the ledger currently accounts for
type Usage struct {
	Items int    `json:"items"`
	Bytes uint64 `json:"bytes"`
}

// Usage returns the number of indexed entries and their total size
func (l *Ledger) Usage() (Usage, error) {
	entries, err := l.Entries()
	if err != nil {
		return Usage{}, err
	}
	return Usage{Items: len(entries), Bytes: totalSize(entries)}, nil
}

// removeFile deletes path, logging instead of failing
func (l *Ledger) removeFile(path string) bool {
	err := os.Remove(path)
	if err == nil {
		return true
	}
	if !os.IsNotExist(err) {
		l.logger.Warn("Failed to delete cached file",
			zap.String("path", path),
			zap.Error(err))
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func totalSize(entries []domain.CacheEntry) uint64 {
	var sum uint64
	for _, e := range entries {
		sum += e.SizeBytes
	}
	return sum
}
