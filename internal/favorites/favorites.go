package favorites

import (
	"fmt"
	"path/filepath"

	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/KitotsuMolina/Kitowall/internal/lockfile"
	"go.uber.org/zap"
)

// File is the read-only view of favorites.json
type File struct {
	logger *zap.Logger
	path   string
}

type favoritesFile struct {
	Favorites []string `json:"favorites"`
}

// NewFile creates a favorites reader for path
func NewFile(logger *zap.Logger, path string) *File {
	return &File{logger: logger, path: path}
}

// List returns the favorite paths in file order, expanded and cleaned.
// A missing file is an empty list; a file that exists but cannot be decoded is an error.
func (f *File) List() ([]string, error) {
	var data favoritesFile
	if _, err := lockfile.ReadJSON(f.path, &data); err != nil {
		f.logger.Warn("Favorites unreadable",
			zap.String("path", f.path),
			zap.Error(err))
		return nil, fmt.Errorf("favorites: %w", err)
	}

	out := make([]string, 0, len(data.Favorites))
	for _, p := range data.Favorites {
		if p == "" {
			continue
		}
		out = append(out, filepath.Clean(config.ExpandHome(p)))
	}
	return out, nil
}

// Set returns the favorites keyed by path. It re-reads the file on every call.
func (f *File) Set() (map[string]struct{}, error) {
	list, err := f.List()
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(list))
	for _, p := range list {
		set[p] = struct{}{}
	}
	return set, nil
}
