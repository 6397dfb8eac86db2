package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// GenericJSON lists wallpapers from any JSON API.
// imagePath is a gjson path resolving to a URL or an array of URLs.
type GenericJSON struct {
	*remote
	cfg config.PackConfig
}

// NewGenericJSON creates a generic_json source
func NewGenericJSON(logger *zap.Logger, name string, cfg config.PackConfig, dirs Dirs, fetcher domain.Fetcher, verifier domain.ImageVerifier) *GenericJSON {
	g := &GenericJSON{cfg: cfg}
	g.remote = newRemote(logger, name, config.PackGenericJSON, dirs, fetcher, verifier)
	g.remote.build = g.candidates
	return g
}

func (g *GenericJSON) candidates(ctx context.Context) ([]domain.Candidate, error) {
	if g.cfg.Endpoint == "" || g.cfg.ImagePath == "" {
		return nil, errors.New("missing endpoint or imagePath")
	}

	data, err := g.fetcher.FetchJSON(ctx, g.cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("endpoint %s did not return valid JSON", g.cfg.Endpoint)
	}

	target := gjson.GetBytes(data, g.cfg.ImagePath)
	if !target.Exists() {
		return nil, fmt.Errorf("imagePath %q matched nothing", g.cfg.ImagePath)
	}

	values := []gjson.Result{target}
	if target.IsArray() {
		values = target.Array()
	}

	meta := domain.CandidateMeta{
		Author:    g.cfg.AuthorName,
		AuthorURL: g.cfg.AuthorURL,
		PageURL:   g.cfg.PostURL,
	}
	if g.cfg.AuthorNamePath != "" {
		meta.Author = gjson.GetBytes(data, g.cfg.AuthorNamePath).String()
	}
	if g.cfg.PostPath != "" {
		meta.PageURL = gjson.GetBytes(data, g.cfg.PostPath).String()
	}

	limit := g.cfg.CandidateLimit
	if limit <= 0 {
		limit = len(values)
	}
	seen := map[string]struct{}{}
	out := make([]domain.Candidate, 0, min(len(values), limit))
	for _, v := range values {
		if v.Type != gjson.String && v.Type != gjson.Number {
			continue
		}
		u := g.cfg.ImagePrefix + v.String()
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}

		out = append(out, domain.Candidate{
			ID:         candidateID(g.name, u, len(out)),
			Source:     config.PackGenericJSON,
			URL:        u,
			TTLSeconds: uint64(g.cfg.TTLSec),
			Metadata:   meta,
		})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}
