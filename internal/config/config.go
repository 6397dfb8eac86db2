package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/KitotsuMolina/Kitowall/internal/apperr"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultMode             = ModeManual
	defaultRotationInterval = 1800
	defaultCacheDir         = "~/.cache/kitowall"
	defaultDownloadDir      = "~/Pictures/Wallpapers"
	defaultStateDir         = "~/.local/state/kitowall"
	defaultMaxMB            = 2048
	defaultTTLSec           = 604800
	defaultPerOutputCD      = 10
	defaultGlobalCD         = 20
	defaultCandidateLimit   = 50

	// MaxPackCandidates bounds count and candidateLimit of a single pack
	MaxPackCandidates = 1000

	envPrefix = "KITOWALL"
)

// Rotation modes
const (
	ModeManual = "manual"
	ModeRotate = "rotate"
)

// Pack types
const (
	PackLocal       = "local"
	PackStaticURL   = "static_url"
	PackGenericJSON = "generic_json"
)

// Config is the user configuration of kitowall
type Config struct {
	Mode                    string                 `mapstructure:"mode" json:"mode"`
	RotationIntervalSeconds int                    `mapstructure:"rotation_interval_seconds" json:"rotation_interval_seconds"`
	Transition              domain.Transition      `mapstructure:"transition" json:"transition"`
	Selection               domain.SelectionConfig `mapstructure:"selection" json:"selection"`
	Cache                   CacheConfig            `mapstructure:"cache" json:"cache"`
	Pool                    PoolConfig             `mapstructure:"pool" json:"pool"`
	Packs                   map[string]PackConfig  `mapstructure:"packs" json:"packs"`
	StateDir                string                 `mapstructure:"stateDir" json:"stateDir"`
	Notify                  NotifyConfig           `mapstructure:"notify" json:"notify"`
	Metrics                 MetricsConfig          `mapstructure:"metrics" json:"metrics"`
}

// CacheConfig bounds the on-disk wallpaper cache
type CacheConfig struct {
	Dir           string `mapstructure:"dir" json:"dir"`
	DownloadDir   string `mapstructure:"downloadDir" json:"downloadDir"`
	MaxMB         int    `mapstructure:"maxMB" json:"maxMB"`
	DefaultTTLSec int    `mapstructure:"defaultTtlSec" json:"defaultTtlSec"`
}

// MaxBytes returns the size budget in bytes
func (c CacheConfig) MaxBytes() uint64 {
	return uint64(c.MaxMB) * 1024 * 1024
}

// PoolConfig describes the aggregated pool
type PoolConfig struct {
	Enabled bool               `mapstructure:"enabled" json:"enabled"`
	Dedupe  domain.DedupeMode  `mapstructure:"dedupe" json:"dedupe"`
	Sources []PoolSourceConfig `mapstructure:"sources" json:"sources"`
}

// PoolSourceConfig is one pool entry as written by the user
type PoolSourceConfig struct {
	Name          string `mapstructure:"name" json:"name"`
	Weight        int    `mapstructure:"weight" json:"weight,omitempty"`
	MaxCandidates int    `mapstructure:"maxCandidates" json:"maxCandidates,omitempty"`
}

// PoolSources converts the configured entries to domain pool sources
func (p PoolConfig) PoolSources() []domain.PoolSource {
	out := make([]domain.PoolSource, 0, len(p.Sources))
	for _, s := range p.Sources {
		out = append(out, domain.PoolSource{Name: s.Name, Weight: s.Weight, MaxCandidates: s.MaxCandidates})
	}
	return out
}

// PackConfig is the union of the settings of every pack type
type PackConfig struct {
	Type string `mapstructure:"type" json:"type"`

	// local
	Paths []string `mapstructure:"paths" json:"paths,omitempty"`

	// static_url
	URL             string   `mapstructure:"url" json:"url,omitempty"`
	URLs            []string `mapstructure:"urls" json:"urls,omitempty"`
	DifferentImages bool     `mapstructure:"differentImages" json:"differentImages,omitempty"`
	Count           int      `mapstructure:"count" json:"count,omitempty"`

	// generic_json
	Endpoint       string `mapstructure:"endpoint" json:"endpoint,omitempty"`
	ImagePath      string `mapstructure:"imagePath" json:"imagePath,omitempty"`
	ImagePrefix    string `mapstructure:"imagePrefix" json:"imagePrefix,omitempty"`
	CandidateLimit int    `mapstructure:"candidateLimit" json:"candidateLimit,omitempty"`
	AuthorNamePath string `mapstructure:"authorNamePath" json:"authorNamePath,omitempty"`
	PostPath       string `mapstructure:"postPath" json:"postPath,omitempty"`

	// shared by remote packs
	AuthorName string `mapstructure:"authorName" json:"authorName,omitempty"`
	AuthorURL  string `mapstructure:"authorUrl" json:"authorUrl,omitempty"`
	PostURL    string `mapstructure:"postUrl" json:"postUrl,omitempty"`
	TTLSec     int    `mapstructure:"ttlSec" json:"ttlSec,omitempty"`
}

// NotifyConfig toggles desktop notifications
type NotifyConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

// MetricsConfig configures metric export
type MetricsConfig struct {
	// Textfile is a node_exporter textfile collector path; empty disables the export
	Textfile string `mapstructure:"textfile" json:"textfile,omitempty"`
}

// StatePath returns the rotation state file
func (c *Config) StatePath() string { return filepath.Join(c.StateDir, "state.json") }

// FavoritesPath returns the favorites file
func (c *Config) FavoritesPath() string { return filepath.Join(c.StateDir, "favorites.json") }

// HistoryPath returns the history file
func (c *Config) HistoryPath() string { return filepath.Join(c.StateDir, "history.json") }

// DefaultPath returns ~/.config/kitowall/config.json
func DefaultPath() string {
	return ExpandHome("~/.config/kitowall/config.json")
}

// Load reads the config file at path (DefaultPath when empty), applies KITOWALL_* env
// overrides, then normalizes and validates the result.
// A missing file yields the defaults.
func Load(logger *zap.Logger, path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, apperr.Wrap(apperr.CodeConfigInvalid,
				"failed to read config file "+path,
				"fix the JSON syntax or remove the file to fall back to defaults",
				err)
		}
		logger.Info("Config file not found, using defaults", zap.String("path", path))
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperr.Wrap(apperr.CodeConfigInvalid,
			"failed to decode config", "check value types against the documented keys", err)
	}

	cfg.normalize(logger)

	if err := cfg.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.CodeConfigInvalid, "invalid configuration", err.Error(), err)
	}

	logger.Debug("Configuration loaded",
		zap.String("path", path),
		zap.String("mode", cfg.Mode),
		zap.Int("packs", len(cfg.Packs)),
		zap.Bool("pool", cfg.Pool.Enabled))

	return cfg, nil
}

// Default returns a normalized configuration with no packs
func Default() *Config {
	cfg := &Config{}
	cfg.normalize(zap.NewNop())
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", defaultMode)
	v.SetDefault("rotation_interval_seconds", defaultRotationInterval)
	v.SetDefault("transition.type", "center")
	v.SetDefault("transition.fps", 60)
	v.SetDefault("transition.duration", 0.7)
	v.SetDefault("selection.perOutputCooldown", defaultPerOutputCD)
	v.SetDefault("selection.globalCooldown", defaultGlobalCD)
	v.SetDefault("selection.avoidSameTickDuplicates", true)
	v.SetDefault("cache.dir", defaultCacheDir)
	v.SetDefault("cache.downloadDir", defaultDownloadDir)
	v.SetDefault("cache.maxMB", defaultMaxMB)
	v.SetDefault("cache.defaultTtlSec", defaultTTLSec)
	v.SetDefault("pool.enabled", false)
	v.SetDefault("pool.dedupe", string(domain.DedupePath))
	v.SetDefault("stateDir", defaultStateDir)
	v.SetDefault("notify.enabled", false)
	v.SetDefault("metrics.textfile", "")
}

// ExpandHome expands a leading ~ and environment variables
func ExpandHome(path string) string {
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}
