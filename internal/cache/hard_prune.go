package cache

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"go.uber.org/zap"
)

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".webp": {}, ".bmp": {}, ".gif": {},
}

// IsImageFile reports whether path has a wallpaper image extension
func IsImageFile(path string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// HardPruneResult reports what a hard prune did
type HardPruneResult struct {
	RemovedFiles   int `json:"removedFiles"`
	KeptFavorites  int `json:"keptFavorites"`
	RemainingIndex int `json:"remainingIndex"`
}

// HardPruneAll deletes every non-favorite image under the download directory,
// regardless of TTL or budget, then drops dangling entries and empty directories.
func (l *Ledger) HardPruneAll() (HardPruneResult, error) {
	return l.hardPrune(l.downloadDir)
}

// HardPrunePack is HardPruneAll restricted to one pack's directory.
// An unknown pack directory removes nothing.
func (l *Ledger) HardPrunePack(pack string) (HardPruneResult, error) {
	dir, ok := l.resolvePackDir(pack)
	if !ok {
		entries, err := l.Entries()
		if err != nil {
			return HardPruneResult{}, err
		}
		l.logger.Info("No download directory for pack", zap.String("pack", pack))
		return HardPruneResult{RemainingIndex: len(entries)}, nil
	}
	return l.hardPrune(dir)
}

func (l *Ledger) hardPrune(root string) (HardPruneResult, error) {
	var res HardPruneResult
	favs, err := l.favorites.Set()
	if err != nil {
		return HardPruneResult{}, err
	}

	err = l.update(func(entries []domain.CacheEntry) []domain.CacheEntry {
		for _, file := range listImages(root) {
			if _, fav := favs[file]; fav {
				res.KeptFavorites++
				continue
			}
			if l.removeFile(file) {
				res.RemovedFiles++
			}
		}

		kept := entries[:0]
		for _, e := range entries {
			if !within(root, e.LocalPath) || fileExists(e.LocalPath) {
				kept = append(kept, e)
			}
		}
		res.RemainingIndex = len(kept)
		return kept
	})
	if err != nil {
		return HardPruneResult{}, err
	}

	removeEmptyDirs(root)

	l.logger.Info("Hard prune finished",
		zap.String("dir", root),
		zap.Int("removedFiles", res.RemovedFiles),
		zap.Int("keptFavorites", res.KeptFavorites),
		zap.Int("remainingIndex", res.RemainingIndex))
	return res, nil
}

// listImages walks root and returns image files; unreadable subtrees are skipped
func listImages(root string) []string {
	var out []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && IsImageFile(path) {
			out = append(out, path)
		}
		return nil
	})
	return out
}

// removeEmptyDirs removes empty directories below root, keeping root itself.
// It reports whether dir ended up empty.
func removeEmptyDirs(dir string) bool {
	children, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	empty := true
	for _, child := range children {
		full := filepath.Join(dir, child.Name())
		if child.IsDir() && removeEmptyDirs(full) {
			if os.Remove(full) == nil {
				continue
			}
		}
		empty = false
	}
	return empty
}

// packDir returns the pack's download directory, resolved if it exists
func (l *Ledger) packDir(pack string) string {
	if dir, ok := l.resolvePackDir(pack); ok {
		return dir
	}
	return filepath.Join(l.downloadDir, config.NormalizePackName(pack))
}

// resolvePackDir finds <downloadDir>/<pack>, matching directory names by normalized form
func (l *Ledger) resolvePackDir(pack string) (string, bool) {
	direct := filepath.Join(l.downloadDir, pack)
	if info, err := os.Stat(direct); err == nil && info.IsDir() {
		return direct, true
	}

	children, err := os.ReadDir(l.downloadDir)
	if err != nil {
		return "", false
	}
	target := config.NormalizePackName(pack)
	for _, child := range children {
		if child.IsDir() && config.NormalizePackName(child.Name()) == target {
			return filepath.Join(l.downloadDir, child.Name()), true
		}
	}
	return "", false
}

// within reports whether path lies strictly below dir
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
