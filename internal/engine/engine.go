package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/KitotsuMolina/Kitowall/internal/apperr"
	"github.com/KitotsuMolina/Kitowall/internal/cache"
	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"github.com/KitotsuMolina/Kitowall/internal/history"
	"github.com/KitotsuMolina/Kitowall/internal/metrics"
	"github.com/KitotsuMolina/Kitowall/internal/pool"
	"github.com/KitotsuMolina/Kitowall/internal/selection"
	"github.com/KitotsuMolina/Kitowall/internal/state"
	"go.uber.org/zap"
)

// Sources resolves configured packs
type Sources interface {
	Source(name string) (domain.Source, bool)
	Random(rng *rand.Rand) (domain.Source, bool)
}

// Result describes one finished rotation
type Result struct {
	Pack    string              `json:"pack"`
	Outputs []string            `json:"outputs"`
	Picks   []domain.OutputPick `json:"picks"`
	// Failed lists the outputs whose pick could not be hydrated
	Failed []string `json:"failed,omitempty"`
}

// Engine orchestrates the wallpaper rotation.
// One tick detects outputs, resolves a pool, selects, hydrates, applies and commits.
// Concurrent Rotate calls are serialized by the state file lock; the pack and
// selection random sources are each guarded by their owner.
type Engine struct {
	logger     *zap.Logger
	detector   domain.OutputDetector
	sources    Sources
	aggregator *pool.Aggregator
	selector   *selection.Engine
	ledger     *cache.Ledger
	applier    domain.Applier
	store      *state.Store
	history    *history.Log
	notifier   domain.Notifier
	metrics    *metrics.Metrics
	now        func() time.Time

	mu  sync.Mutex // guards rng, the random pack source
	rng *rand.Rand
}

// Deps groups the collaborators of the engine
type Deps struct {
	Detector   domain.OutputDetector
	Sources    Sources
	Aggregator *pool.Aggregator
	Selector   *selection.Engine
	Ledger     *cache.Ledger
	Applier    domain.Applier
	Store      *state.Store
	History    *history.Log
	Notifier   domain.Notifier
	Metrics    *metrics.Metrics
	Rand       *rand.Rand
}

// NewEngine creates a new orchestration engine
func NewEngine(logger *zap.Logger, d Deps) *Engine {
	return &Engine{
		logger:     logger,
		detector:   d.Detector,
		sources:    d.Sources,
		aggregator: d.Aggregator,
		selector:   d.Selector,
		ledger:     d.Ledger,
		applier:    d.Applier,
		store:      d.Store,
		history:    d.History,
		notifier:   d.Notifier,
		metrics:    d.Metrics,
		rng:        d.Rand,
		now:        time.Now,
	}
}

// Rotate performs one tick for pack.
// An empty pack uses the aggregated pool when enabled and a random pack otherwise.
func (e *Engine) Rotate(ctx context.Context, pack string) (res *Result, err error) {
	start := e.now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(apperr.CodeOf(err))
			if outcome == "" {
				outcome = "error"
			}
		}
		e.metrics.TicksTotal.WithLabelValues(outcome).Inc()
		e.metrics.TickDuration.Observe(e.now().Sub(start).Seconds())
	}()

	outputs, err := e.detector.Outputs(ctx)
	if err != nil {
		return nil, apperr.NoOutputs(err)
	}
	if len(outputs) == 0 {
		return nil, apperr.NoOutputs(nil)
	}

	var applied []domain.Assignment
	err = e.store.Update(func(st *state.State) error {
		st.CleanupDisconnectedOutputs(outputs)

		p, name, err := e.resolvePool(ctx, pack)
		if err != nil {
			return err
		}
		if p.Len() == 0 {
			return apperr.NoImagesForPack(name)
		}

		picks := e.selector.Select(outputs, p.Paths, st)
		if len(picks) == 0 {
			return apperr.NoSelectionPossible(name)
		}

		ready, failed, err := e.hydratePicks(ctx, p, picks)
		if err != nil {
			return err
		}

		assignments := make([]domain.Assignment, 0, len(ready))
		for _, h := range ready {
			assignments = append(assignments, domain.Assignment{Output: h.pick.Output, Path: h.result.LocalPath})
		}
		if err := e.applier.Apply(ctx, assignments); err != nil {
			return err
		}

		now := e.now()
		for _, h := range ready {
			st.Commit(h.pick.Output, h.pick.Path, now)
			e.metrics.PicksTotal.WithLabelValues(h.pick.Level).Inc()
		}
		st.SetPack(name, now)

		applied = assignments
		res = &Result{Pack: name, Outputs: outputs, Failed: failed}
		for _, h := range ready {
			res.Picks = append(res.Picks, domain.OutputPick{Output: h.pick.Output, Path: h.result.LocalPath, Level: h.pick.Level})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Rotation complete",
		zap.String("pack", res.Pack),
		zap.Int("outputs", len(outputs)),
		zap.Int("applied", len(applied)))

	e.afterRotate(ctx, res.Pack, applied)
	return res, nil
}

// afterRotate runs the best-effort follow-ups of a successful tick
func (e *Engine) afterRotate(ctx context.Context, pack string, applied []domain.Assignment) {
	if err := e.history.Append(pack, applied); err != nil {
		e.logger.Warn("Failed to append history", zap.Error(err))
	}

	if usage, err := e.ledger.Usage(); err == nil {
		e.metrics.SetCacheUsage(usage.Items, usage.Bytes)
	}

	lines := make([]string, 0, len(applied))
	for _, a := range applied {
		lines = append(lines, fmt.Sprintf("%s: %s", a.Output, a.Path))
	}
	if err := e.notifier.Notify(ctx, "Wallpaper rotated ("+pack+")", strings.Join(lines, "\n")); err != nil {
		e.logger.Warn("Failed to send notification", zap.Error(err))
	}
}

// resolvePool builds the pool a tick draws from and returns its display name
func (e *Engine) resolvePool(ctx context.Context, pack string) (*pool.Pool, string, error) {
	name := config.NormalizePackName(pack)

	switch {
	case name == pool.PoolName:
		p, err := e.aggregator.Aggregate(ctx)
		return p, pool.PoolName, err

	case name != "":
		src, ok := e.sources.Source(name)
		if !ok {
			return nil, "", apperr.PackNotFound(pack)
		}
		return e.aggregator.Single(ctx, src), src.Name(), nil

	case e.aggregator.Enabled():
		p, err := e.aggregator.Aggregate(ctx)
		return p, pool.PoolName, err
	}

	e.mu.Lock()
	src, ok := e.sources.Random(e.rng)
	e.mu.Unlock()
	if !ok {
		return nil, "", apperr.PoolNotEnabled()
	}
	e.logger.Debug("Picked random pack", zap.String("pack", src.Name()))
	return e.aggregator.Single(ctx, src), src.Name(), nil
}
