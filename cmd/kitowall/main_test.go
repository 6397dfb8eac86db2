package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/KitotsuMolina/Kitowall/internal/apperr"
	"github.com/KitotsuMolina/Kitowall/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Cache.Dir = filepath.Join(dir, "cache")
	cfg.Cache.DownloadDir = filepath.Join(dir, "dl")
	cfg.StateDir = filepath.Join(dir, "state")
	return cfg
}

// TestAppGraphValidity verifies that the dependency graph is resolvable.
// This test will fail if you forget an fx.Provide for a required interface.
func TestAppGraphValidity(t *testing.T) {
	err := fx.ValidateApp(
		AppOptions,
		fx.Supply(zap.NewNop(), testConfig(t)),
		fx.Invoke(func(deps) {}),
	)
	if err != nil {
		t.Errorf("Dependency graph is not valid: %v", err)
	}
}

// TestDaemonGraphValidity verifies the daemon additions on top of the shared graph
func TestDaemonGraphValidity(t *testing.T) {
	err := fx.ValidateApp(
		AppOptions,
		fx.Supply(zap.NewNop(), testConfig(t), daemonOptions{}),
		fx.Provide(newScheduler),
		fx.Invoke(registerHooks),
	)
	if err != nil {
		t.Errorf("Dependency graph is not valid: %v", err)
	}
}

// TestNewLogger specifically verifies the logger configuration
func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{false, true} {
		logger, err := newLogger(debug)
		if err != nil {
			t.Fatalf("Failed to create logger: %v", err)
		}
		if logger == nil {
			t.Fatal("Logger should not be nil")
		}
		logger.Info("Test logger initialization")
	}
}

// TestEndToEndStartup tries a real startup/stop of the daemon graph
func TestEndToEndStartup(t *testing.T) {
	cfg := testConfig(t)
	cfg.RotationIntervalSeconds = 3600

	app := fx.New(
		AppOptions,
		fx.Supply(zap.NewNop(), cfg, daemonOptions{}),
		fx.Provide(newScheduler),
		fx.Invoke(registerHooks),
		fx.NopLogger,
	)

	if err := app.Start(t.Context()); err != nil {
		t.Fatalf("App failed to start: %v", err)
	}
	if err := app.Stop(t.Context()); err != nil {
		t.Fatalf("App failed to stop: %v", err)
	}
}

func TestErrorOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errorOutput
	}{
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: errorOutput{Code: "ERROR", Message: "boom"},
		},
		{
			name: "coded error",
			err:  apperr.PackNotFound("nature"),
			want: errorOutput{
				Code:    "PACK_NOT_FOUND",
				Message: "pack not found: nature",
				Hint:    "list configured packs under `packs` in the config file",
			},
		},
		{
			name: "wrapped coded error",
			err:  errors.Join(errors.New("tick"), apperr.NoOutputs(errors.New("hyprctl"))),
			want: errorOutput{
				Code:    "NO_OUTPUTS",
				Message: "no outputs detected: hyprctl",
				Hint:    "make sure hyprctl or swww can reach the running compositor",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorOf(tt.err); got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
