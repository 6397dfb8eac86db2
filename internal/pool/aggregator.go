package pool

import (
	"context"

	"github.com/KitotsuMolina/Kitowall/internal/apperr"
	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PoolName is the reserved pack name that selects the aggregated pool
const PoolName = "pool"

const listConcurrency = 4

// SourceLookup resolves configured pack names to sources
type SourceLookup interface {
	Source(name string) (domain.Source, bool)
}

// Aggregator merges the candidates of several sources into one pool
type Aggregator struct {
	logger  *zap.Logger
	cfg     config.PoolConfig
	sources SourceLookup
	hasher  domain.ContentHasher
}

// NewAggregator creates a pool aggregator
func NewAggregator(logger *zap.Logger, cfg config.PoolConfig, sources SourceLookup, hasher domain.ContentHasher) *Aggregator {
	return &Aggregator{logger: logger, cfg: cfg, sources: sources, hasher: hasher}
}

// Enabled reports whether the aggregated pool can be used
func (a *Aggregator) Enabled() bool {
	return a.cfg.Enabled && len(a.cfg.Sources) > 0
}

// sourceResult is what one source contributed to an aggregation pass
type sourceResult struct {
	spec       domain.PoolSource
	source     domain.Source
	candidates []domain.Candidate
}

// Aggregate builds the combined pool.
// Sources are merged in declaration order and the first source to claim a dedupe key wins.
// A failing source counts as zero candidates and never blocks the others.
func (a *Aggregator) Aggregate(ctx context.Context) (*Pool, error) {
	if !a.Enabled() {
		return nil, apperr.PoolNotEnabled()
	}

	specs := a.cfg.PoolSources()
	results := make([]sourceResult, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for i, spec := range specs {
		results[i].spec = spec
		if spec.Name == PoolName {
			continue
		}
		src, ok := a.sources.Source(spec.Name)
		if !ok {
			a.logger.Warn("Pool source is not a configured pack", zap.String("source", spec.Name))
			continue
		}
		results[i].source = src
		g.Go(func() error {
			results[i].candidates = a.candidatesOf(gctx, src)
			return nil
		})
	}
	g.Wait()

	p := newPool()
	seen := map[string]struct{}{}
	for _, r := range results {
		p.Stats[r.spec.Name] = len(r.candidates)
		if r.source == nil {
			continue
		}

		limit := len(r.candidates)
		if r.spec.MaxCandidates > 0 && r.spec.MaxCandidates < limit {
			limit = r.spec.MaxCandidates
		}
		weight := max(r.spec.Weight, 1)

		for _, c := range r.candidates[:limit] {
			key := a.dedupeKey(c)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			p.add(c.LocalPathHint, weight, r.source, c)
		}
	}

	a.logger.Debug("Pool aggregated",
		zap.Int("entries", p.Len()),
		zap.String("dedupe", string(a.cfg.Dedupe)),
		zap.Any("stats", p.Stats))
	return p, nil
}

// Single builds the pool of one source, refreshing it first if it is empty
func (a *Aggregator) Single(ctx context.Context, src domain.Source) *Pool {
	p := newPool()
	candidates := a.candidatesOf(ctx, src)
	p.Stats[src.Name()] = len(candidates)
	for _, c := range candidates {
		p.add(c.LocalPathHint, 1, src, c)
	}
	return p
}

// candidatesOf lists the usable candidates of src.
// An empty source is refreshed once so a wiped cache heals itself.
func (a *Aggregator) candidatesOf(ctx context.Context, src domain.Source) []domain.Candidate {
	candidates, err := src.ListCandidates(ctx)
	if err != nil {
		a.logger.Warn("Failed to list candidates", zap.String("source", src.Name()), zap.Error(err))
		candidates = nil
	}

	if len(candidates) == 0 {
		if _, err := src.Refresh(ctx); err != nil {
			a.logger.Warn("Failed to refresh source", zap.String("source", src.Name()), zap.Error(err))
			return nil
		}
		if candidates, err = src.ListCandidates(ctx); err != nil {
			a.logger.Warn("Failed to list candidates after refresh", zap.String("source", src.Name()), zap.Error(err))
			return nil
		}
	}

	usable := candidates[:0:0]
	for _, c := range candidates {
		if c.LocalPathHint != "" {
			usable = append(usable, c)
		}
	}
	return usable
}

// dedupeKey returns the identity of c under the configured dedupe mode
func (a *Aggregator) dedupeKey(c domain.Candidate) string {
	switch a.cfg.Dedupe {
	case domain.DedupeURL:
		if c.URL != "" {
			return "url:" + c.URL
		}
	case domain.DedupeHash:
		h, err := a.hasher.Hash(c.LocalPathHint)
		if err == nil {
			return "hash:" + h
		}
		a.logger.Debug("Hash dedupe fell back to path",
			zap.String("path", c.LocalPathHint),
			zap.Error(err))
	}
	return "path:" + c.LocalPathHint
}
