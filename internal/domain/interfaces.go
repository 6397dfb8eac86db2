package domain

import "context"

// Source is the capability every wallpaper pack implements.
// Local folders, static URLs and remote JSON APIs differ only behind this interface.
//
//go:generate mockgen -destination=mocks/source_mock.go -package=mocks github.com/KitotsuMolina/Kitowall/internal/domain Source
type Source interface {
	// Name returns the normalized pack name
	Name() string

	// ListCandidates returns the candidates currently known to the source.
	// It must not touch the network.
	ListCandidates(ctx context.Context) ([]Candidate, error)

	// Refresh rebuilds the source index and returns the number of candidates
	Refresh(ctx context.Context) (int, error)

	// Hydrate materializes the candidate at its LocalPathHint
	Hydrate(ctx context.Context, c Candidate) (HydrateResult, error)

	// Status reports index freshness and the last error seen
	Status(ctx context.Context) (SourceStatus, error)
}

// Fetcher retrieves remote content
type Fetcher interface {
	// Fetch returns the bytes of an image URL
	Fetch(ctx context.Context, url string) ([]byte, error)
	// FetchJSON returns the body of a JSON document URL
	FetchJSON(ctx context.Context, url string) ([]byte, error)
}

// ImageVerifier checks that downloaded bytes are a usable image
type ImageVerifier interface {
	// Verify returns the image dimensions or an error if the data is unusable
	Verify(data []byte) (width, height int, err error)
}

// Applier hands resolved wallpapers to the external setter
//
//go:generate mockgen -destination=mocks/applier_mock.go -package=mocks github.com/KitotsuMolina/Kitowall/internal/domain Applier
type Applier interface {
	Apply(ctx context.Context, assignments []Assignment) error
}

// OutputDetector lists the display outputs currently connected
//
//go:generate mockgen -destination=mocks/output_detector_mock.go -package=mocks github.com/KitotsuMolina/Kitowall/internal/domain OutputDetector
type OutputDetector interface {
	Outputs(ctx context.Context) ([]string, error)
}

// ContentHasher computes the dedupe key used by the hash dedupe mode
type ContentHasher interface {
	Hash(path string) (string, error)
}

// Favorites exposes the user-marked paths that eviction must protect
type Favorites interface {
	// Set returns the current favorites keyed by cleaned absolute path.
	// An error means the favorites exist but could not be read.
	Set() (map[string]struct{}, error)
}

// Notifier announces a finished rotation to the user
type Notifier interface {
	Notify(ctx context.Context, summary, body string) error
}
