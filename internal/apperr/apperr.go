package apperr

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable error identifier
type Code string

const (
	// Configuration errors
	CodePoolNotEnabled Code = "POOL_NOT_ENABLED"
	CodePackNotFound   Code = "PACK_NOT_FOUND"
	CodeConfigInvalid  Code = "CONFIG_INVALID"

	// Pool and selection errors
	CodeNoImagesForPack     Code = "NO_IMAGES_FOR_PACK"
	CodeNoSelectionPossible Code = "NO_SELECTION_POSSIBLE"
	CodeNoOutputs           Code = "NO_OUTPUTS"

	// Runtime errors
	CodeHydrationFailure Code = "HYDRATION_FAILURE"
	CodeApplyFailed      Code = "APPLY_FAILED"
	CodeStateIO          Code = "STATE_IO"
)

// Error is a user-visible failure with a remediation hint
type Error struct {
	Code    Code
	Message string
	Hint    string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error carrying the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates an Error without a cause
func New(code Code, message, hint string) *Error {
	return &Error{Code: code, Message: message, Hint: hint}
}

// Wrap creates an Error around cause
func Wrap(code Code, message, hint string, cause error) *Error {
	return &Error{Code: code, Message: message, Hint: hint, Cause: cause}
}

// CodeOf extracts the code of err, or "" when err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Sentinels for errors.Is checks.
var (
	ErrPoolNotEnabled      = New(CodePoolNotEnabled, "pool is not enabled or has no sources", "")
	ErrNoImagesForPack     = New(CodeNoImagesForPack, "no images for pack", "")
	ErrNoSelectionPossible = New(CodeNoSelectionPossible, "no images could be selected", "")
	ErrHydrationFailure    = New(CodeHydrationFailure, "hydration failed", "")
	ErrNoOutputs           = New(CodeNoOutputs, "no outputs detected", "")
	ErrPackNotFound        = New(CodePackNotFound, "pack not found", "")
)

// PoolNotEnabled reports an aggregated pool request against a disabled or empty pool configuration.
func PoolNotEnabled() *Error {
	return New(CodePoolNotEnabled,
		"pool is not enabled or has no sources",
		"set pool.enabled=true and list at least one source under pool.sources")
}

// NoImagesForPack reports a pack (or the aggregated pool) that resolved to zero candidates.
func NoImagesForPack(pack string) *Error {
	return New(CodeNoImagesForPack,
		fmt.Sprintf("no images found for pack: %s", pack),
		fmt.Sprintf("run `kitowall pool-status --refresh` or `kitowall hydrate %s`", pack))
}

// NoSelectionPossible reports an empty selection over a non-empty pool.
func NoSelectionPossible(pack string) *Error {
	return New(CodeNoSelectionPossible,
		fmt.Sprintf("no images could be selected for outputs (pack: %s)", pack),
		"this should not happen with a non-empty pool; please report it with your state file")
}

// HydrationFailure reports that every pick of a tick failed to materialize.
func HydrationFailure(cause error) *Error {
	return Wrap(CodeHydrationFailure,
		"could not download any selected wallpaper",
		"check network access and `kitowall pool-status` for per-source errors",
		cause)
}

// NoOutputs reports that no display output could be detected.
func NoOutputs(cause error) *Error {
	return Wrap(CodeNoOutputs,
		"no outputs detected",
		"make sure hyprctl or swww can reach the running compositor",
		cause)
}

// PackNotFound reports an unknown pack name.
func PackNotFound(name string) *Error {
	return New(CodePackNotFound,
		fmt.Sprintf("pack not found: %s", name),
		"list configured packs under `packs` in the config file")
}

// ApplyFailed reports that the wallpaper setter rejected the assignments.
func ApplyFailed(cause error) *Error {
	return Wrap(CodeApplyFailed,
		"failed to apply wallpapers",
		"install swww (recommended) or one of hyprpaper, swaybg, gsettings, feh, nitrogen",
		cause)
}
