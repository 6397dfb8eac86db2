package monitor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const _commandTimeout = 5 * time.Second

// RunFunc executes an external command and returns its stdout
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Detector finds the connected outputs.
// It asks Hyprland first, then swww, and finally enumerates displays directly.
type Detector struct {
	logger   *zap.Logger
	run      RunFunc
	displays func() []string
}

// NewDetector creates a detector backed by the real system commands
func NewDetector(logger *zap.Logger) *Detector {
	return &Detector{
		logger:   logger,
		run:      runCommand,
		displays: screenOutputs,
	}
}

// Outputs returns the names of the connected outputs.
// An empty list is not an error here; callers decide whether it is fatal.
func (d *Detector) Outputs(ctx context.Context) ([]string, error) {
	strategies := []struct {
		name string
		fn   func(context.Context) ([]string, error)
	}{
		{"hyprctl", d.fromHyprctl},
		{"hyprctl-instances", d.fromHyprctlInstances},
		{"swww", d.fromSwww},
	}

	for _, s := range strategies {
		outputs, err := s.fn(ctx)
		if err != nil {
			d.logger.Debug("Output detection strategy failed", zap.String("strategy", s.name), zap.Error(err))
			continue
		}
		if len(outputs) > 0 {
			d.logger.Debug("Outputs detected", zap.String("strategy", s.name), zap.Strings("outputs", outputs))
			return outputs, nil
		}
	}

	outputs := d.displays()
	if len(outputs) > 0 {
		d.logger.Info("Falling back to display enumeration", zap.Strings("outputs", outputs))
	}
	return outputs, nil
}

func (d *Detector) fromHyprctl(ctx context.Context) ([]string, error) {
	out, err := d.run(ctx, "hyprctl", "monitors", "-j")
	if err != nil {
		return nil, err
	}
	return monitorNames(out)
}

// fromHyprctlInstances retries hyprctl against each running instance,
// for callers started outside the Hyprland session environment.
func (d *Detector) fromHyprctlInstances(ctx context.Context) ([]string, error) {
	out, err := d.run(ctx, "hyprctl", "instances", "-j")
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(out) {
		return nil, errors.New("hyprctl instances returned invalid JSON")
	}

	instances := []string{"0"}
	for _, sig := range gjson.GetBytes(out, "#.instance").Array() {
		if s := strings.TrimSpace(sig.String()); s != "" {
			instances = append(instances, s)
		}
	}

	for _, inst := range instances {
		out, err := d.run(ctx, "hyprctl", "--instance", inst, "monitors", "-j")
		if err != nil {
			continue
		}
		if names, err := monitorNames(out); err == nil && len(names) > 0 {
			return names, nil
		}
	}
	return nil, nil
}

func (d *Detector) fromSwww(ctx context.Context) ([]string, error) {
	out, err := d.run(ctx, "swww", "query")
	if err != nil {
		return nil, err
	}
	return parseSwwwQuery(out), nil
}

func monitorNames(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("hyprctl returned invalid JSON")
	}
	var names []string
	for _, n := range gjson.GetBytes(data, "#.name").Array() {
		if s := strings.TrimSpace(n.String()); s != "" {
			names = append(names, s)
		}
	}
	return names, nil
}

// parseSwwwQuery extracts output names from lines like "DP-1: 2560x1440, scale: 1, ...".
// Newer swww versions prefix each line with ": ".
func parseSwwwQuery(data []byte) []string {
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimPrefix(strings.TrimSpace(line), ": ")
		if idx := strings.Index(line, ":"); idx > 0 {
			names = append(names, strings.TrimSpace(line[:idx]))
		}
	}
	return names
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, _commandTimeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w (%s)", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
