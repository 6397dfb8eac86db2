package source

import (
	"context"
	"errors"

	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"go.uber.org/zap"
)

// StaticURL serves wallpapers from one or more fixed URLs.
// With differentImages, each of count slots gets its own id so a random-image
// endpoint yields distinct files.
type StaticURL struct {
	*remote
	cfg config.PackConfig
}

// NewStaticURL creates a static_url source
func NewStaticURL(logger *zap.Logger, name string, cfg config.PackConfig, dirs Dirs, fetcher domain.Fetcher, verifier domain.ImageVerifier) *StaticURL {
	s := &StaticURL{cfg: cfg}
	s.remote = newRemote(logger, name, config.PackStaticURL, dirs, fetcher, verifier)
	s.remote.build = s.candidates
	return s
}

func (s *StaticURL) candidates(ctx context.Context) ([]domain.Candidate, error) {
	list := s.cfg.URLs
	if len(list) == 0 && s.cfg.URL != "" {
		list = []string{s.cfg.URL}
	}
	if len(list) == 0 {
		return nil, errors.New("missing url")
	}

	count := 1
	if s.cfg.DifferentImages {
		count = s.cfg.Count
		if count <= 0 {
			count = len(list)
		}
	}

	out := make([]domain.Candidate, 0, count)
	for i := range count {
		u := list[i%len(list)]
		out = append(out, domain.Candidate{
			ID:         candidateID(s.name, u, i),
			Source:     config.PackStaticURL,
			URL:        u,
			TTLSeconds: uint64(s.cfg.TTLSec),
			Metadata: domain.CandidateMeta{
				Author:    s.cfg.AuthorName,
				AuthorURL: s.cfg.AuthorURL,
				PageURL:   s.cfg.PostURL,
			},
		})
	}
	return out, nil
}
