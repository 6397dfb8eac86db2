package main

import (
	"github.com/KitotsuMolina/Kitowall/internal/cache"
	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"github.com/KitotsuMolina/Kitowall/internal/engine"
	"github.com/KitotsuMolina/Kitowall/internal/metrics"
	"github.com/KitotsuMolina/Kitowall/internal/pool"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// deps is what one-shot commands pull out of the graph
type deps struct {
	fx.In

	Logger     *zap.Logger
	Config     *config.Config
	Engine     *engine.Engine
	Ledger     *cache.Ledger
	Aggregator *pool.Aggregator
	Detector   domain.OutputDetector
	Metrics    *metrics.Metrics
}

// runCommand builds the graph, runs fn and exports metrics afterwards
func runCommand(fn func(d deps) error) error {
	logger, cfg, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	var d deps
	app := fx.New(
		AppOptions,
		fx.Supply(logger, cfg),
		fx.NopLogger,
		fx.Invoke(func(in deps) { d = in }),
	)
	if err := app.Err(); err != nil {
		return err
	}

	runErr := fn(d)
	exportMetrics(d)
	return runErr
}

// exportMetrics writes the metrics textfile when one is configured
func exportMetrics(d deps) {
	if d.Config.Metrics.Textfile == "" {
		return
	}
	if usage, err := d.Ledger.Usage(); err == nil {
		d.Metrics.SetCacheUsage(usage.Items, usage.Bytes)
	}
	if err := d.Metrics.WriteTextfile(d.Config.Metrics.Textfile); err != nil {
		d.Logger.Warn("Failed to export metrics", zap.Error(err))
	}
}
