//go:build linux
// +build linux

package executor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/KitotsuMolina/Kitowall/internal/apperr"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"go.uber.org/zap"
)

type recorder struct {
	calls   []string
	failing map[string]int // command prefix -> remaining failures
}

func (r *recorder) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	call := name + " " + strings.Join(args, " ")
	r.calls = append(r.calls, call)
	for prefix, n := range r.failing {
		if strings.HasPrefix(call, prefix) && n != 0 {
			r.failing[prefix] = n - 1
			return []byte("boom"), errors.New("exit status 1")
		}
	}
	return nil, nil
}

func newTestApplier(r *recorder, binaries ...string) *LinuxApplier {
	angle := 30
	a := NewApplier(zap.NewNop(), domain.Transition{Type: "wipe", FPS: 60, Duration: 0.7, Angle: &angle, Pos: "center"})
	a.run = r.run
	a.startSwww = func() error { return nil }
	a.sleep = func(time.Duration) {}
	a.hasBinary = func(b string) bool {
		for _, x := range binaries {
			if x == b {
				return true
			}
		}
		return false
	}
	return a
}

func TestApplySwwwPerOutput(t *testing.T) {
	r := &recorder{}
	a := newTestApplier(r, "swww")

	err := a.Apply(context.Background(), []domain.Assignment{
		{Output: "DP-1", Path: "/w/a.png"},
		{Output: "HDMI-A-1", Path: "/w/b.png"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []string{
		"swww query",
		"swww img -o DP-1 /w/a.png --transition-type wipe --transition-fps 60 --transition-duration 0.7 --transition-angle 30 --transition-pos center",
		"swww img -o HDMI-A-1 /w/b.png --transition-type wipe --transition-fps 60 --transition-duration 0.7 --transition-angle 30 --transition-pos center",
	}
	if strings.Join(r.calls, "\n") != strings.Join(want, "\n") {
		t.Errorf("Unexpected calls:\n%s", strings.Join(r.calls, "\n"))
	}
}

func TestApplySwwwStartsDaemon(t *testing.T) {
	r := &recorder{failing: map[string]int{"swww query": 2}}
	a := newTestApplier(r, "swww")

	started := false
	a.startSwww = func() error { started = true; return nil }

	if err := a.Apply(context.Background(), []domain.Assignment{{Output: "DP-1", Path: "/a.png"}}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !started {
		t.Error("Expected swww-daemon to be started")
	}
}

func TestApplySwwwDaemonNeverReady(t *testing.T) {
	r := &recorder{failing: map[string]int{"swww query": -1}}
	a := newTestApplier(r, "swww")

	err := a.Apply(context.Background(), []domain.Assignment{{Output: "DP-1", Path: "/a.png"}})
	if apperr.CodeOf(err) != apperr.CodeApplyFailed {
		t.Errorf("Expected APPLY_FAILED, got %v", err)
	}
}

func TestApplyGlobalFallback(t *testing.T) {
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")
	t.Setenv("XDG_CURRENT_DESKTOP", "")

	r := &recorder{}
	a := newTestApplier(r, "feh")

	err := a.Apply(context.Background(), []domain.Assignment{
		{Output: "DP-1", Path: "/w/first.png"},
		{Output: "DP-2", Path: "/w/second.png"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(r.calls) != 1 || r.calls[0] != "feh --bg-fill /w/first.png" {
		t.Errorf("Unexpected calls: %v", r.calls)
	}
}

func TestDetectCommand(t *testing.T) {
	tests := []struct {
		name     string
		desktop  string
		hypr     string
		binaries []string
		want     string
	}{
		{"hyprland prefers hyprpaper", "", "sig", []string{"feh", "hyprctl"}, "hyprpaper"},
		{"gnome prefers gsettings", "ubuntu:GNOME", "", []string{"swaybg", "gsettings"}, "gnome"},
		{"fallback order", "", "", []string{"nitrogen", "swaybg"}, "swaybg"},
		{"nothing", "", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CURRENT_DESKTOP", tt.desktop)
			t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", tt.hypr)

			a := newTestApplier(&recorder{}, tt.binaries...)
			if got := a.detectCommand().Name; got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestApplyNoSetter(t *testing.T) {
	a := newTestApplier(&recorder{})
	err := a.Apply(context.Background(), []domain.Assignment{{Output: "DP-1", Path: "/a.png"}})
	if apperr.CodeOf(err) != apperr.CodeApplyFailed {
		t.Errorf("Expected APPLY_FAILED, got %v", err)
	}
}
