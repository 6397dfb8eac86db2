package main

import (
	"math/rand/v2"

	"github.com/KitotsuMolina/Kitowall/internal/cache"
	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"github.com/KitotsuMolina/Kitowall/internal/engine"
	"github.com/KitotsuMolina/Kitowall/internal/executor"
	"github.com/KitotsuMolina/Kitowall/internal/favorites"
	"github.com/KitotsuMolina/Kitowall/internal/fetcher"
	"github.com/KitotsuMolina/Kitowall/internal/hashutil"
	"github.com/KitotsuMolina/Kitowall/internal/history"
	"github.com/KitotsuMolina/Kitowall/internal/metrics"
	"github.com/KitotsuMolina/Kitowall/internal/monitor"
	"github.com/KitotsuMolina/Kitowall/internal/notify"
	"github.com/KitotsuMolina/Kitowall/internal/pool"
	"github.com/KitotsuMolina/Kitowall/internal/processor"
	"github.com/KitotsuMolina/Kitowall/internal/selection"
	"github.com/KitotsuMolina/Kitowall/internal/source"
	"github.com/KitotsuMolina/Kitowall/internal/state"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// AppOptions is the application graph shared by every command.
// The *zap.Logger and *config.Config are supplied by the caller.
var AppOptions = fx.Options(
	fx.Provide(
		fx.Annotate(fetcher.NewHTTPFetcher, fx.As(new(domain.Fetcher))),
		fx.Annotate(processor.NewImageVerifier, fx.As(new(domain.ImageVerifier))),
		fx.Annotate(hashutil.NewSHA256Hasher, fx.As(new(domain.ContentHasher))),
		fx.Annotate(monitor.NewDetector, fx.As(new(domain.OutputDetector))),
		newApplier,
		fx.Annotate(newNotifier, fx.As(new(domain.Notifier))),
		fx.Annotate(newFavorites, fx.As(new(domain.Favorites))),
		fx.Annotate(source.NewRegistry,
			fx.As(new(pool.SourceLookup)),
			fx.As(new(engine.Sources)),
		),
		newLedger,
		newAggregator,
		newSelector,
		newStore,
		newHistory,
		metrics.New,
		newEngine,
	),
)

// newApplier returns the platform applier behind the interface since its concrete type varies by OS
func newApplier(logger *zap.Logger, cfg *config.Config) domain.Applier {
	return executor.NewApplier(logger, cfg.Transition)
}

func newNotifier(logger *zap.Logger, cfg *config.Config) *notify.DesktopNotifier {
	return notify.NewDesktopNotifier(logger, cfg.Notify)
}

func newFavorites(logger *zap.Logger, cfg *config.Config) *favorites.File {
	return favorites.NewFile(logger, cfg.FavoritesPath())
}

func newLedger(logger *zap.Logger, cfg *config.Config, favs domain.Favorites) *cache.Ledger {
	return cache.NewLedger(logger, cfg.Cache, favs)
}

func newAggregator(logger *zap.Logger, cfg *config.Config, sources pool.SourceLookup, hasher domain.ContentHasher) *pool.Aggregator {
	return pool.NewAggregator(logger, cfg.Pool, sources, hasher)
}

func newSelector(logger *zap.Logger, cfg *config.Config) *selection.Engine {
	return selection.NewEngine(logger, cfg.Selection, newRand())
}

func newStore(logger *zap.Logger, cfg *config.Config) *state.Store {
	return state.NewStore(logger, cfg.StatePath())
}

func newHistory(logger *zap.Logger, cfg *config.Config) *history.Log {
	return history.NewLog(logger, cfg.HistoryPath())
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

type engineParams struct {
	fx.In

	Logger     *zap.Logger
	Detector   domain.OutputDetector
	Sources    engine.Sources
	Aggregator *pool.Aggregator
	Selector   *selection.Engine
	Ledger     *cache.Ledger
	Applier    domain.Applier
	Store      *state.Store
	History    *history.Log
	Notifier   domain.Notifier
	Metrics    *metrics.Metrics
}

func newEngine(p engineParams) *engine.Engine {
	return engine.NewEngine(p.Logger, engine.Deps{
		Detector:   p.Detector,
		Sources:    p.Sources,
		Aggregator: p.Aggregator,
		Selector:   p.Selector,
		Ledger:     p.Ledger,
		Applier:    p.Applier,
		Store:      p.Store,
		History:    p.History,
		Notifier:   p.Notifier,
		Metrics:    p.Metrics,
		Rand:       newRand(),
	})
}
