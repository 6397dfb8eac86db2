package source

import (
	"math/rand/v2"
	"slices"

	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"go.uber.org/zap"
)

// Dirs locates the cache folders remote sources write to
type Dirs struct {
	CacheDir    string
	DownloadDir string
}

// DirsFrom extracts the source directories from the cache configuration
func DirsFrom(c config.CacheConfig) Dirs {
	return Dirs{CacheDir: c.Dir, DownloadDir: c.DownloadDir}
}

// Registry holds one Source per configured pack
type Registry struct {
	logger  *zap.Logger
	sources map[string]domain.Source
	names   []string
}

// NewRegistry builds the sources of every configured pack
func NewRegistry(logger *zap.Logger, cfg *config.Config, fetcher domain.Fetcher, verifier domain.ImageVerifier) *Registry {
	r := &Registry{
		logger:  logger,
		sources: make(map[string]domain.Source, len(cfg.Packs)),
	}
	dirs := DirsFrom(cfg.Cache)

	for name, pack := range cfg.Packs {
		var src domain.Source
		switch pack.Type {
		case config.PackLocal:
			src = NewLocal(logger, name, pack)
		case config.PackStaticURL:
			src = NewStaticURL(logger, name, pack, dirs, fetcher, verifier)
		case config.PackGenericJSON:
			src = NewGenericJSON(logger, name, pack, dirs, fetcher, verifier)
		default:
			logger.Warn("Unsupported pack type", zap.String("pack", name), zap.String("type", pack.Type))
			continue
		}
		r.sources[name] = src
		r.names = append(r.names, name)
	}
	slices.Sort(r.names)

	logger.Debug("Source registry built", zap.Strings("packs", r.names))
	return r
}

// Source returns the source for a pack name in any spelling
func (r *Registry) Source(name string) (domain.Source, bool) {
	src, ok := r.sources[config.NormalizePackName(name)]
	return src, ok
}

// Names lists the registered packs in sorted order
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Random picks a pack uniformly
func (r *Registry) Random(rng *rand.Rand) (domain.Source, bool) {
	if len(r.names) == 0 {
		return nil, false
	}
	return r.sources[r.names[rng.IntN(len(r.names))]], true
}
