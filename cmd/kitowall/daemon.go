package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/KitotsuMolina/Kitowall/internal/engine"
	"github.com/KitotsuMolina/Kitowall/internal/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// daemonOptions holds the daemon command flags
type daemonOptions struct {
	MetricsAddr string
	Pack        string
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Rotate wallpapers every rotation_interval_seconds until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("metrics-addr")
		pack, _ := cmd.Flags().GetString("pack")

		logger, cfg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		app := fx.New(
			AppOptions,
			fx.Supply(logger, cfg, daemonOptions{MetricsAddr: addr, Pack: pack}),
			fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
				return &fxevent.ZapLogger{Logger: log}
			}),
			fx.Provide(newScheduler),
			fx.Invoke(registerHooks),
		)

		// Handle graceful shutdown
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := app.Start(ctx); err != nil {
			return err
		}

		<-ctx.Done()

		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		return app.Stop(stopCtx)
	},
}

func newScheduler(logger *zap.Logger, e *engine.Engine, cfg *config.Config, opts daemonOptions) *engine.Scheduler {
	return engine.NewScheduler(logger, e, cfg.RotationIntervalSeconds, opts.Pack)
}

// registerHooks sets up application lifecycle hooks
func registerHooks(lc fx.Lifecycle, logger *zap.Logger, s *engine.Scheduler, m *metrics.Metrics, cfg *config.Config, opts daemonOptions) {
	if opts.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		server := &http.Server{Addr: opts.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("Metrics server failed", zap.Error(err))
					}
				}()
				logger.Info("Metrics server listening", zap.String("addr", opts.MetricsAddr))
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return server.Shutdown(ctx)
			},
		})
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Kitowall daemon started")
			return s.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			err := s.Stop(ctx)
			if cfg.Metrics.Textfile != "" {
				if werr := m.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
					logger.Warn("Failed to export metrics", zap.Error(werr))
				}
			}
			return err
		},
	})
}

func init() {
	daemonCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9477)")
	addPackFlag(daemonCmd.Flags(), "pack to rotate from (default: pool when enabled, else a random pack)")

	rootCmd.AddCommand(daemonCmd)
}
