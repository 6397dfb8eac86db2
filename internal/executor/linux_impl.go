//go:build linux
// +build linux

package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/KitotsuMolina/Kitowall/internal/apperr"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"go.uber.org/zap"
)

const (
	_swwwStartAttempts = 10
	_swwwStartDelay    = 150 * time.Millisecond
)

// WallpaperCommand represents a wallpaper setter that shows one image on every output
type WallpaperCommand struct {
	Name   string
	Binary string
	Args   []string // %s will be replaced with image path
}

var (
	// Ordered list of global setters to try when swww is missing (highest priority first)
	wallpaperCommands = []WallpaperCommand{
		// Hyprland - hyprpaper
		{Name: "hyprpaper", Binary: "hyprctl", Args: []string{"hyprpaper", "wallpaper", ",%s"}},
		// swaybg (Sway/Wayland)
		{Name: "swaybg", Binary: "swaybg", Args: []string{"-i", "%s", "-m", "fill"}},
		// GNOME (dark theme)
		{Name: "gnome", Binary: "gsettings", Args: []string{"set", "org.gnome.desktop.background", "picture-uri-dark", "file://%s"}},
		// Generic X11 - feh
		{Name: "feh", Binary: "feh", Args: []string{"--bg-fill", "%s"}},
		// Generic X11 - nitrogen
		{Name: "nitrogen", Binary: "nitrogen", Args: []string{"--set-zoom-fill", "%s"}},
	}
)

// RunFunc executes an external command and returns its combined output
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// LinuxApplier hands assignments to the wallpaper setter.
// swww gets one image per output; every other setter shows the first image everywhere.
type LinuxApplier struct {
	logger     *zap.Logger
	transition domain.Transition
	run        RunFunc
	startSwww  func() error
	hasBinary  func(string) bool
	sleep      func(time.Duration)
}

// NewApplier creates a new platform-specific wallpaper applier (Linux implementation)
func NewApplier(logger *zap.Logger, transition domain.Transition) *LinuxApplier {
	return &LinuxApplier{
		logger:     logger,
		transition: transition,
		run:        runCommand,
		startSwww:  startSwwwDaemon,
		hasBinary:  commandExists,
		sleep:      time.Sleep,
	}
}

// Apply sets the wallpapers of the given assignments
func (a *LinuxApplier) Apply(ctx context.Context, assignments []domain.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	if a.hasBinary("swww") {
		if err := a.applySwww(ctx, assignments); err != nil {
			return apperr.ApplyFailed(err)
		}
		return nil
	}

	cmd := a.detectCommand()
	if cmd.Binary == "" {
		return apperr.ApplyFailed(errors.New("no supported wallpaper command found on this system"))
	}
	if err := a.applyGlobal(ctx, cmd, assignments[0].Path); err != nil {
		return apperr.ApplyFailed(err)
	}
	return nil
}

func (a *LinuxApplier) applySwww(ctx context.Context, assignments []domain.Assignment) error {
	if err := a.ensureSwwwRunning(ctx); err != nil {
		return err
	}

	for _, as := range assignments {
		args := swwwArgs(as, a.transition)
		a.logger.Debug("Setting wallpaper",
			zap.String("command", "swww"),
			zap.Strings("args", args))

		if _, err := a.run(ctx, "swww", args...); err != nil {
			return fmt.Errorf("swww failed on %s: %w", as.Output, err)
		}

		a.logger.Info("Wallpaper set successfully",
			zap.String("output", as.Output),
			zap.String("path", as.Path))
	}
	return nil
}

// ensureSwwwRunning starts swww-daemon when swww cannot reach it
func (a *LinuxApplier) ensureSwwwRunning(ctx context.Context) error {
	if _, err := a.run(ctx, "swww", "query"); err == nil {
		return nil
	}

	a.logger.Info("Starting swww-daemon")
	if err := a.startSwww(); err != nil {
		return fmt.Errorf("failed to start swww-daemon: %w", err)
	}

	for range _swwwStartAttempts {
		if _, err := a.run(ctx, "swww", "query"); err == nil {
			return nil
		}
		a.sleep(_swwwStartDelay)
	}
	return errors.New("swww-daemon did not become ready")
}

func swwwArgs(as domain.Assignment, t domain.Transition) []string {
	args := []string{
		"img",
		"-o", as.Output,
		as.Path,
		"--transition-type", t.Type,
		"--transition-fps", strconv.Itoa(t.FPS),
		"--transition-duration", strconv.FormatFloat(t.Duration, 'f', -1, 64),
	}
	if t.Angle != nil {
		args = append(args, "--transition-angle", strconv.Itoa(*t.Angle))
	}
	if t.Pos != "" {
		args = append(args, "--transition-pos", t.Pos)
	}
	return args
}

// detectCommand analyzes the environment to choose the best global setter
func (a *LinuxApplier) detectCommand() WallpaperCommand {
	desktop := os.Getenv("XDG_CURRENT_DESKTOP")
	hyprland := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")

	a.logger.Debug("Detecting wallpaper command",
		zap.String("desktop", desktop),
		zap.String("hyprland", hyprland))

	prefer := func(name string) bool {
		switch {
		case hyprland != "":
			return name == "hyprpaper"
		case strings.Contains(strings.ToLower(desktop), "gnome"):
			return name == "gnome"
		}
		return false
	}

	for _, cmd := range wallpaperCommands {
		if prefer(cmd.Name) && a.hasBinary(cmd.Binary) {
			return cmd
		}
	}

	// Fallback: try all commands in order
	for _, cmd := range wallpaperCommands {
		if a.hasBinary(cmd.Binary) {
			a.logger.Info("Using fallback wallpaper command", zap.String("name", cmd.Name))
			return cmd
		}
	}

	return WallpaperCommand{}
}

func (a *LinuxApplier) applyGlobal(ctx context.Context, cmd WallpaperCommand, imagePath string) error {
	args := make([]string, len(cmd.Args))
	for i, arg := range cmd.Args {
		args[i] = strings.ReplaceAll(arg, "%s", imagePath)
	}

	a.logger.Debug("Setting wallpaper",
		zap.String("command", cmd.Binary),
		zap.Strings("args", args))

	if out, err := a.run(ctx, cmd.Binary, args...); err != nil {
		return fmt.Errorf("failed to set wallpaper with %s: %w (output: %s)", cmd.Name, err, string(out))
	}

	a.logger.Info("Wallpaper set successfully",
		zap.String("command", cmd.Name),
		zap.String("path", imagePath))
	return nil
}

// commandExists checks if a binary exists in PATH
func commandExists(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// startSwwwDaemon launches swww-daemon detached from this process
func startSwwwDaemon() error {
	cmd := exec.Command("swww-daemon")
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
