package engine

import (
	"context"
	"fmt"

	"github.com/KitotsuMolina/Kitowall/internal/apperr"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"github.com/KitotsuMolina/Kitowall/internal/pool"
	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// hydrated is a pick whose file is on disk
type hydrated struct {
	pick   domain.OutputPick
	result domain.HydrateResult
}

type hydration struct {
	candidate domain.Candidate
	result    domain.HydrateResult
	err       error
}

// HydrateReport summarizes a hydrate command
type HydrateReport struct {
	Pack       string   `json:"pack"`
	Requested  int      `json:"requested"`
	Downloaded int      `json:"downloaded"`
	Cached     int      `json:"cached"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// hydratePicks materializes every pick concurrently.
// Failed picks are dropped; the tick fails only when none succeeded.
func (e *Engine) hydratePicks(ctx context.Context, p *pool.Pool, picks []domain.OutputPick) ([]hydrated, []string, error) {
	sources := make([]domain.Source, len(picks))
	candidates := make([]domain.Candidate, len(picks))
	for i, pick := range picks {
		src, c, ok := p.Lookup(pick.Path)
		if !ok {
			return nil, nil, fmt.Errorf("pick %s has no owning source", pick.Path)
		}
		sources[i], candidates[i] = src, c
	}

	results := e.hydrateAll(ctx, sources, candidates)

	var (
		out    []hydrated
		failed []string
		errs   error
	)
	for i, r := range results {
		if r.err != nil {
			e.logger.Warn("Failed to hydrate pick",
				zap.String("output", picks[i].Output),
				zap.String("path", picks[i].Path),
				zap.Error(r.err))
			failed = append(failed, picks[i].Output)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", picks[i].Output, r.err))
			continue
		}
		out = append(out, hydrated{pick: picks[i], result: r.result})
	}

	if len(out) == 0 {
		return nil, nil, apperr.HydrationFailure(errs)
	}
	return out, failed, nil
}

// hydrateAll runs the hydrations concurrently and then records downloads in the ledger
func (e *Engine) hydrateAll(ctx context.Context, sources []domain.Source, candidates []domain.Candidate) []hydration {
	results := make([]hydration, len(candidates))

	var g errgroup.Group
	g.SetLimit(max(len(candidates), 1))
	for i := range candidates {
		results[i].candidate = candidates[i]
		g.Go(func() error {
			results[i].result, results[i].err = sources[i].Hydrate(ctx, candidates[i])
			return nil
		})
	}
	g.Wait()

	for _, r := range results {
		switch {
		case r.err != nil:
			e.metrics.HydrationsTotal.WithLabelValues("failed").Inc()
		case r.result.Downloaded:
			e.metrics.HydrationsTotal.WithLabelValues("downloaded").Inc()
			e.record(r)
		default:
			e.metrics.HydrationsTotal.WithLabelValues("cached").Inc()
		}
	}
	return results
}

// record adds a download to the cache ledger
func (e *Engine) record(r hydration) {
	entry := domain.CacheEntry{
		Key:        r.candidate.ID,
		LocalPath:  r.result.LocalPath,
		SizeBytes:  r.result.SizeBytes,
		AddedAt:    e.now(),
		TTLSeconds: r.result.TTLSeconds,
	}
	if err := e.ledger.AddOrUpdate(entry); err != nil {
		e.logger.Warn("Failed to record cache entry", zap.String("path", entry.LocalPath), zap.Error(err))
		return
	}
	e.logger.Debug("Cache entry recorded",
		zap.String("path", entry.LocalPath),
		zap.String("size", humanize.IBytes(entry.SizeBytes)))
}

// Hydrate downloads up to count distinct candidates of pack without applying them.
// It fails only when nothing could be hydrated.
func (e *Engine) Hydrate(ctx context.Context, pack string, count int) (*HydrateReport, error) {
	count = max(count, 1)

	p, name, err := e.resolvePool(ctx, pack)
	if err != nil {
		return nil, err
	}
	if p.Len() == 0 {
		return nil, apperr.NoImagesForPack(name)
	}

	var (
		sources    []domain.Source
		candidates []domain.Candidate
		seen       = map[string]struct{}{}
	)
	for _, path := range p.Paths {
		if len(candidates) >= count {
			break
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		src, c, _ := p.Lookup(path)
		sources = append(sources, src)
		candidates = append(candidates, c)
	}

	report := &HydrateReport{Pack: name, Requested: len(candidates)}
	var errs error
	for _, r := range e.hydrateAll(ctx, sources, candidates) {
		switch {
		case r.err != nil:
			report.Failed++
			report.Errors = append(report.Errors, r.err.Error())
			errs = multierr.Append(errs, r.err)
		case r.result.Downloaded:
			report.Downloaded++
		default:
			report.Cached++
		}
	}

	if report.Downloaded+report.Cached == 0 {
		return nil, apperr.HydrationFailure(errs)
	}

	e.logger.Info("Hydration complete",
		zap.String("pack", name),
		zap.Int("downloaded", report.Downloaded),
		zap.Int("cached", report.Cached),
		zap.Int("failed", report.Failed))
	return report, nil
}
