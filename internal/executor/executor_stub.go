//go:build !linux
// +build !linux

package executor

import (
	"context"
	"errors"

	"github.com/KitotsuMolina/Kitowall/internal/apperr"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"go.uber.org/zap"
)

// StubApplier is a placeholder for unsupported platforms (Windows, macOS, BSD)
type StubApplier struct {
	logger *zap.Logger
}

// NewApplier creates a stub applier for unsupported platforms
func NewApplier(logger *zap.Logger, transition domain.Transition) *StubApplier {
	logger.Warn("Wallpaper setting is not yet implemented for this platform")
	return &StubApplier{logger: logger}
}

// Apply returns an error indicating the platform is not supported
func (a *StubApplier) Apply(ctx context.Context, assignments []domain.Assignment) error {
	return apperr.ApplyFailed(errors.New("wallpaper setting not implemented for this platform"))
}
