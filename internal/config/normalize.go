package config

import (
	"regexp"
	"strings"

	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"go.uber.org/zap"
)

var (
	separatorRun = regexp.MustCompile(`[\s_]+`)
	invalidChars = regexp.MustCompile(`[^a-z0-9-]`)
	dashRun      = regexp.MustCompile(`-+`)
)

// NormalizePackName lowercases name, turns whitespace and underscores into dashes
// and strips everything outside [a-z0-9-].
func NormalizePackName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = separatorRun.ReplaceAllString(n, "-")
	n = invalidChars.ReplaceAllString(n, "")
	return dashRun.ReplaceAllString(n, "-")
}

// normalize repairs out-of-range values in place.
// Invalid packs are dropped with a warning instead of failing the whole config.
func (c *Config) normalize(logger *zap.Logger) {
	if c.Mode != ModeManual && c.Mode != ModeRotate {
		c.Mode = defaultMode
	}
	if c.RotationIntervalSeconds <= 0 {
		c.RotationIntervalSeconds = defaultRotationInterval
	}

	if c.Transition.Type == "" {
		c.Transition.Type = "center"
	}
	if c.Transition.FPS <= 0 {
		c.Transition.FPS = 60
	}
	if c.Transition.Duration <= 0 {
		c.Transition.Duration = 0.7
	}

	if c.Selection.PerOutputCooldown < 0 {
		c.Selection.PerOutputCooldown = defaultPerOutputCD
	}
	if c.Selection.GlobalCooldown < 0 {
		c.Selection.GlobalCooldown = defaultGlobalCD
	}

	if c.Cache.Dir == "" {
		c.Cache.Dir = defaultCacheDir
	}
	if c.Cache.DownloadDir == "" {
		c.Cache.DownloadDir = defaultDownloadDir
	}
	if c.Cache.MaxMB <= 0 {
		c.Cache.MaxMB = defaultMaxMB
	}
	if c.Cache.DefaultTTLSec <= 0 {
		c.Cache.DefaultTTLSec = defaultTTLSec
	}
	c.Cache.Dir = ExpandHome(c.Cache.Dir)
	c.Cache.DownloadDir = ExpandHome(c.Cache.DownloadDir)

	if c.StateDir == "" {
		c.StateDir = defaultStateDir
	}
	c.StateDir = ExpandHome(c.StateDir)
	if c.Metrics.Textfile != "" {
		c.Metrics.Textfile = ExpandHome(c.Metrics.Textfile)
	}

	switch c.Pool.Dedupe {
	case domain.DedupePath, domain.DedupeURL, domain.DedupeHash:
	default:
		c.Pool.Dedupe = domain.DedupePath
	}
	sources := make([]PoolSourceConfig, 0, len(c.Pool.Sources))
	for _, s := range c.Pool.Sources {
		s.Name = NormalizePackName(s.Name)
		if s.Name == "" {
			continue
		}
		if s.Weight < 1 {
			s.Weight = 1
		}
		if s.MaxCandidates < 0 {
			s.MaxCandidates = 0
		}
		sources = append(sources, s)
	}
	c.Pool.Sources = sources

	packs := make(map[string]PackConfig, len(c.Packs))
	for raw, p := range c.Packs {
		name := NormalizePackName(raw)
		if name == "" {
			logger.Warn("Dropping pack with empty name", zap.String("raw", raw))
			continue
		}
		p.normalize()
		if err := p.Validate(); err != nil {
			logger.Warn("Dropping invalid pack",
				zap.String("pack", name),
				zap.String("type", p.Type),
				zap.Error(err))
			continue
		}
		packs[name] = p
	}
	c.Packs = packs
}

func (p *PackConfig) normalize() {
	p.Type = strings.TrimSpace(p.Type)
	p.URL = strings.TrimSpace(p.URL)
	p.URLs = trimAll(p.URLs)
	p.Paths = trimAll(p.Paths)
	for i, path := range p.Paths {
		p.Paths[i] = ExpandHome(path)
	}

	if p.Count < 0 {
		p.Count = 0
	}
	if p.Type == PackGenericJSON && p.CandidateLimit <= 0 {
		p.CandidateLimit = defaultCandidateLimit
	}
	if p.TTLSec < 0 {
		p.TTLSec = 0
	}
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
