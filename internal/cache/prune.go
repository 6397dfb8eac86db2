package cache

import (
	"slices"
	"time"

	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"go.uber.org/zap"
)

// PruneResult reports what a prune pass did
type PruneResult struct {
	Removed   int `json:"removed"`
	Remaining int `json:"remaining"`
}

// Prune evicts expired entries, then the oldest entries until the size budget holds.
// Favorites are never evicted; if only favorites remain the budget is left exceeded.
func (l *Ledger) Prune() (PruneResult, error) {
	var res PruneResult
	favs, err := l.favorites.Set()
	if err != nil {
		return PruneResult{}, err
	}

	err = l.update(func(entries []domain.CacheEntry) []domain.CacheEntry {
		kept, removed := l.pruneEntries(entries, favs, l.now())
		res = PruneResult{Removed: removed, Remaining: len(kept)}
		return kept
	})
	if err != nil {
		return PruneResult{}, err
	}

	l.logger.Info("Cache pruned",
		zap.Int("removed", res.Removed),
		zap.Int("remaining", res.Remaining))
	return res, nil
}

// PrunePack runs the same two phases over the entries stored under one pack's directory.
// Entries of other packs are left alone and not counted.
func (l *Ledger) PrunePack(pack string) (PruneResult, error) {
	var res PruneResult
	favs, err := l.favorites.Set()
	if err != nil {
		return PruneResult{}, err
	}
	dir := l.packDir(pack)

	err = l.update(func(entries []domain.CacheEntry) []domain.CacheEntry {
		var inPack, others []domain.CacheEntry
		for _, e := range entries {
			if within(dir, e.LocalPath) {
				inPack = append(inPack, e)
			} else {
				others = append(others, e)
			}
		}

		kept, removed := l.pruneEntries(inPack, favs, l.now())
		res = PruneResult{Removed: removed, Remaining: len(kept)}
		return append(others, kept...)
	})
	if err != nil {
		return PruneResult{}, err
	}

	l.logger.Info("Pack cache pruned",
		zap.String("pack", pack),
		zap.String("dir", dir),
		zap.Int("removed", res.Removed),
		zap.Int("remaining", res.Remaining))
	return res, nil
}

// pruneEntries applies expiry then the size budget.
// The returned slice is ordered oldest first.
func (l *Ledger) pruneEntries(entries []domain.CacheEntry, favs map[string]struct{}, now time.Time) ([]domain.CacheEntry, int) {
	kept, removed := l.expire(entries, favs, now)
	kept, evicted := l.enforceBudget(kept, favs)
	return kept, removed + evicted
}

// expire drops non-favorite entries past their own TTL, and entries whose file is gone
func (l *Ledger) expire(entries []domain.CacheEntry, favs map[string]struct{}, now time.Time) ([]domain.CacheEntry, int) {
	kept := make([]domain.CacheEntry, 0, len(entries))
	removed := 0

	for _, e := range entries {
		if _, fav := favs[e.LocalPath]; fav {
			kept = append(kept, e)
			continue
		}
		if !fileExists(e.LocalPath) {
			l.logger.Debug("Dropping stale cache entry", zap.String("path", e.LocalPath))
			removed++
			continue
		}
		if e.Expired(now) {
			l.removeFile(e.LocalPath)
			removed++
			continue
		}
		kept = append(kept, e)
	}
	return kept, removed
}

// enforceBudget evicts the oldest non-favorites until the total fits maxBytes.
// Skipping favorites while walking oldest first evicts the same set as rotating
// favorites to the tail of the queue.
func (l *Ledger) enforceBudget(entries []domain.CacheEntry, favs map[string]struct{}) ([]domain.CacheEntry, int) {
	slices.SortStableFunc(entries, func(a, b domain.CacheEntry) int {
		return a.AddedAt.Compare(b.AddedAt)
	})

	total := totalSize(entries)
	if total <= l.maxBytes {
		return entries, 0
	}

	kept := make([]domain.CacheEntry, 0, len(entries))
	evicted := 0
	for _, e := range entries {
		_, fav := favs[e.LocalPath]
		if fav || total <= l.maxBytes {
			kept = append(kept, e)
			continue
		}
		l.removeFile(e.LocalPath)
		total -= e.SizeBytes
		evicted++
	}

	if total > l.maxBytes {
		l.logger.Warn("Cache over budget with only favorites left",
			zap.Uint64("totalBytes", total),
			zap.Uint64("maxBytes", l.maxBytes))
	}
	return kept, evicted
}
