package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/KitotsuMolina/Kitowall/internal/cache"
	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"github.com/KitotsuMolina/Kitowall/internal/hashutil"
	"go.uber.org/zap"
)

// Local serves every image found under a set of folders.
// Its files are the user's own and never enter the cache ledger.
type Local struct {
	logger *zap.Logger
	name   string
	paths  []string
}

// NewLocal creates a local folder source
func NewLocal(logger *zap.Logger, name string, cfg config.PackConfig) *Local {
	return &Local{
		logger: logger.With(zap.String("pack", name), zap.String("source", config.PackLocal)),
		name:   name,
		paths:  cfg.Paths,
	}
}

// Name returns the pack name
func (l *Local) Name() string {
	return l.name
}

// ListCandidates scans the configured folders recursively
func (l *Local) ListCandidates(ctx context.Context) ([]domain.Candidate, error) {
	var out []domain.Candidate
	for _, root := range l.paths {
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d == nil {
					l.logger.Debug("Skipping unreadable folder", zap.String("path", path), zap.Error(err))
				}
				return nil
			}
			if d.Type().IsRegular() && cache.IsImageFile(path) {
				out = append(out, domain.Candidate{
					ID:            hashutil.String("local:" + path),
					Source:        config.PackLocal,
					URL:           "file://" + path,
					LocalPathHint: path,
				})
			}
			return nil
		})
	}
	return out, nil
}

// Refresh rescans the folders
func (l *Local) Refresh(ctx context.Context) (int, error) {
	c, err := l.ListCandidates(ctx)
	return len(c), err
}

// Hydrate only checks that the file is still there
func (l *Local) Hydrate(ctx context.Context, c domain.Candidate) (domain.HydrateResult, error) {
	info, err := os.Stat(c.LocalPathHint)
	if err != nil {
		return domain.HydrateResult{}, err
	}
	return domain.HydrateResult{LocalPath: c.LocalPathHint, SizeBytes: uint64(info.Size())}, nil
}

// Status reports how many images the folders hold
func (l *Local) Status(ctx context.Context) (domain.SourceStatus, error) {
	c, _ := l.ListCandidates(ctx)
	st := domain.SourceStatus{OK: len(c) > 0, Candidates: len(c)}
	if !st.OK {
		st.LastError = "no images found in configured paths"
	}
	return st, nil
}
