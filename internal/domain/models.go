package domain

import "time"

// RecentLimit caps every recency queue kept in the rotation state.
const RecentLimit = 10

// Candidate is one wallpaper known to a source
type Candidate struct {
	// ID is a stable content-derived hash (e.g. sha256 of source+url)
	ID string `json:"id"`
	// Source is the tag of the source kind that produced the candidate
	Source string `json:"source"`
	// URL is where the image can be fetched from (file:// for local files)
	URL string `json:"url"`
	// LocalPathHint is where the image lives, or will live once hydrated
	LocalPathHint string `json:"localPath"`
	// TTLSeconds overrides the cache default when non-zero
	TTLSeconds uint64 `json:"ttlSec,omitempty"`
	// Metadata is descriptive only and never used for identity
	Metadata CandidateMeta `json:"metadata,omitempty"`
}

// CandidateMeta holds optional descriptive data about a candidate
type CandidateMeta struct {
	Author    string `json:"author,omitempty"`
	AuthorURL string `json:"authorUrl,omitempty"`
	PageURL   string `json:"pageUrl,omitempty"`
	Rating    string `json:"rating,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// CacheEntry records one file materialized by the cache ledger
type CacheEntry struct {
	Key        string
	LocalPath  string
	SizeBytes  uint64
	AddedAt    time.Time
	TTLSeconds uint64
}

// Expired reports whether the entry outlived its own TTL at now.
// The comparison runs in whole seconds so TTLs beyond time.Duration's range never wrap.
func (e CacheEntry) Expired(now time.Time) bool {
	age := now.Sub(e.AddedAt)
	if age <= 0 {
		return false
	}
	secs := uint64(age / time.Second)
	if secs != e.TTLSeconds {
		return secs > e.TTLSeconds
	}
	return age%time.Second > 0
}

// DedupeMode selects how the pool aggregator detects duplicate images
type DedupeMode string

const (
	// DedupePath treats two candidates as the same when their local paths match
	DedupePath DedupeMode = "path"
	// DedupeURL treats two candidates as the same when their remote URLs match
	DedupeURL DedupeMode = "url"
	// DedupeHash treats two candidates as the same when their file contents hash equal
	DedupeHash DedupeMode = "hash"
)

// PoolSource is one entry of the aggregated pool configuration
type PoolSource struct {
	Name          string
	Weight        int
	MaxCandidates int // 0 means unlimited
}

// SelectionConfig tunes the cooldown-based selection engine
type SelectionConfig struct {
	PerOutputCooldown       int  `mapstructure:"perOutputCooldown" json:"perOutputCooldown"`
	GlobalCooldown          int  `mapstructure:"globalCooldown" json:"globalCooldown"`
	AvoidSameTickDuplicates bool `mapstructure:"avoidSameTickDuplicates" json:"avoidSameTickDuplicates"`
}

// OutputPick is the image chosen for one output during a tick
type OutputPick struct {
	Output string `json:"output"`
	Path   string `json:"path"`
	// Level is the relaxation level that produced the pick
	Level string `json:"level"`
}

// Assignment is a resolved local file to show on an output
type Assignment struct {
	Output string `json:"output"`
	Path   string `json:"path"`
}

// Transition describes the animation used by the wallpaper setter
type Transition struct {
	Type     string  `mapstructure:"type" json:"type"`
	FPS      int     `mapstructure:"fps" json:"fps"`
	Duration float64 `mapstructure:"duration" json:"duration"`
	Angle    *int    `mapstructure:"angle" json:"angle,omitempty"`
	Pos      string  `mapstructure:"pos" json:"pos,omitempty"`
}

// HydrateResult describes a candidate materialized on disk
type HydrateResult struct {
	LocalPath  string
	SizeBytes  uint64
	TTLSeconds uint64
	// Downloaded is false when the file was already present
	Downloaded bool
	Width      int
	Height     int
}

// SourceStatus summarizes the health of a source
type SourceStatus struct {
	OK          bool      `json:"ok"`
	Candidates  int       `json:"candidates"`
	LastRefresh time.Time `json:"lastRefresh,omitzero"`
	LastError   string    `json:"lastError,omitempty"`
}
