package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/KitotsuMolina/Kitowall/internal/cache"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"github.com/KitotsuMolina/Kitowall/internal/hashutil"
	"github.com/KitotsuMolina/Kitowall/internal/lockfile"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// indexFile is the per-pack candidate index at <cache.dir>/indexes/<pack>.json
type indexFile struct {
	UpdatedAt  int64              `json:"updatedAt"` // epoch millis
	Candidates []domain.Candidate `json:"candidates"`
}

// remote is the shared machinery of sources that download their images.
// Candidates are listed from a local index that Refresh rebuilds through build.
type remote struct {
	logger    *zap.Logger
	name      string
	kind      string
	indexPath string
	packDir   string
	fetcher   domain.Fetcher
	verifier  domain.ImageVerifier
	build     func(ctx context.Context) ([]domain.Candidate, error)
	now       func() time.Time

	downloads singleflight.Group

	mu        sync.Mutex
	lastError string
}

func newRemote(logger *zap.Logger, name, kind string, dirs Dirs, fetcher domain.Fetcher, verifier domain.ImageVerifier) *remote {
	return &remote{
		logger:    logger.With(zap.String("pack", name), zap.String("source", kind)),
		name:      name,
		kind:      kind,
		indexPath: filepath.Join(dirs.CacheDir, "indexes", name+".json"),
		packDir:   filepath.Join(dirs.DownloadDir, name),
		fetcher:   fetcher,
		verifier:  verifier,
		now:       time.Now,
	}
}

// Name returns the pack name
func (r *remote) Name() string {
	return r.name
}

// ListCandidates reads the index without touching the network
func (r *remote) ListCandidates(ctx context.Context) ([]domain.Candidate, error) {
	idx, err := r.readIndex()
	if err != nil {
		return nil, err
	}
	for i := range idx.Candidates {
		idx.Candidates[i].LocalPathHint = r.localPathFor(idx.Candidates[i])
	}
	return idx.Candidates, nil
}

// Refresh rebuilds the index from the remote
func (r *remote) Refresh(ctx context.Context) (int, error) {
	r.logger.Info("Refreshing index")

	candidates, err := r.build(ctx)
	if err != nil {
		r.setError(err)
		return 0, fmt.Errorf("refresh %s: %w", r.name, err)
	}
	for i := range candidates {
		candidates[i].LocalPathHint = r.localPathFor(candidates[i])
	}

	lock, err := lockfile.Acquire(r.indexPath)
	if err != nil {
		return 0, err
	}
	defer lock.Release()

	idx := indexFile{UpdatedAt: r.now().UnixMilli(), Candidates: candidates}
	if _, err := lockfile.WriteJSON(r.indexPath, idx); err != nil {
		r.setError(err)
		return 0, err
	}

	r.setError(nil)
	r.logger.Info("Index refreshed", zap.Int("candidates", len(candidates)))
	return len(candidates), nil
}

// Hydrate downloads c unless its file already exists.
// Concurrent hydrations of the same path share one download.
func (r *remote) Hydrate(ctx context.Context, c domain.Candidate) (domain.HydrateResult, error) {
	path := c.LocalPathHint
	if path == "" {
		path = r.localPathFor(c)
	}

	if info, err := os.Stat(path); err == nil {
		return domain.HydrateResult{
			LocalPath:  path,
			SizeBytes:  uint64(info.Size()),
			TTLSeconds: c.TTLSeconds,
		}, nil
	}

	v, err, _ := r.downloads.Do(path, func() (any, error) {
		return r.download(ctx, c, path)
	})
	if err != nil {
		r.setError(err)
		return domain.HydrateResult{}, err
	}
	return v.(domain.HydrateResult), nil
}

func (r *remote) download(ctx context.Context, c domain.Candidate, path string) (domain.HydrateResult, error) {
	r.logger.Debug("Downloading wallpaper", zap.String("url", c.URL))

	data, err := r.fetcher.Fetch(ctx, c.URL)
	if err != nil {
		return domain.HydrateResult{}, fmt.Errorf("download %s: %w", c.URL, err)
	}

	w, h, err := r.verifier.Verify(data)
	if err != nil {
		return domain.HydrateResult{}, fmt.Errorf("verify %s: %w", c.URL, err)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return domain.HydrateResult{}, err
	}

	r.logger.Info("Wallpaper downloaded",
		zap.String("path", path),
		zap.Int("bytes", len(data)))

	return domain.HydrateResult{
		LocalPath:  path,
		SizeBytes:  uint64(len(data)),
		TTLSeconds: c.TTLSeconds,
		Downloaded: true,
		Width:      w,
		Height:     h,
	}, nil
}

// Status reports index freshness and the last error
func (r *remote) Status(ctx context.Context) (domain.SourceStatus, error) {
	idx, err := r.readIndex()
	if err != nil {
		return domain.SourceStatus{LastError: err.Error()}, nil
	}

	st := domain.SourceStatus{Candidates: len(idx.Candidates)}
	if idx.UpdatedAt > 0 {
		st.LastRefresh = time.UnixMilli(idx.UpdatedAt)
	}

	r.mu.Lock()
	st.LastError = r.lastError
	r.mu.Unlock()
	st.OK = st.LastError == ""
	return st, nil
}

func (r *remote) readIndex() (indexFile, error) {
	var idx indexFile
	if _, err := lockfile.ReadJSON(r.indexPath, &idx); err != nil {
		return indexFile{}, err
	}
	return idx, nil
}

func (r *remote) setError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		r.lastError = ""
		return
	}
	r.lastError = err.Error()
}

// localPathFor maps a candidate to <downloadDir>/<pack>/<sha256(id)><ext>
func (r *remote) localPathFor(c domain.Candidate) string {
	return filepath.Join(r.packDir, hashutil.String(c.ID)+extensionOf(c.URL))
}

// extensionOf returns the image extension of a URL path, defaulting to .jpg
func extensionOf(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(filepath.Ext(p))
	if !cache.IsImageFile("x" + ext) {
		return ".jpg"
	}
	return ext
}

// candidateID derives the stable id of the i-th candidate of a pack
func candidateID(pack, u string, i int) string {
	return hashutil.String(fmt.Sprintf("%s:%s:%d", pack, u, i))
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
