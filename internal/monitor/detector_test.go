package monitor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type fakeRunner map[string]string

func (f fakeRunner) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	key := name + " " + strings.Join(args, " ")
	out, ok := f[key]
	if !ok {
		return nil, errors.New("command failed: " + key)
	}
	return []byte(out), nil
}

func newTestDetector(runner fakeRunner, displays ...string) *Detector {
	return &Detector{
		logger:   zap.NewNop(),
		run:      runner.run,
		displays: func() []string { return displays },
	}
}

func TestOutputs(t *testing.T) {
	tests := []struct {
		name     string
		runner   fakeRunner
		displays []string
		want     []string
	}{
		{
			name:   "hyprctl",
			runner: fakeRunner{"hyprctl monitors -j": `[{"id":0,"name":"DP-1"},{"id":1,"name":"HDMI-A-1"}]`},
			want:   []string{"DP-1", "HDMI-A-1"},
		},
		{
			name: "hyprctl instance fallback",
			runner: fakeRunner{
				"hyprctl monitors -j":                    `[]`,
				"hyprctl instances -j":                   `[{"instance":"abc_123"}]`,
				"hyprctl --instance abc_123 monitors -j": `[{"name":"eDP-1"}]`,
			},
			want: []string{"eDP-1"},
		},
		{
			name:   "swww fallback",
			runner: fakeRunner{"swww query": ": DP-2: 2560x1440, scale: 1, currently displaying: image: /a.png\nDP-3: 1920x1080\n"},
			want:   []string{"DP-2", "DP-3"},
		},
		{
			name:     "display enumeration",
			runner:   fakeRunner{},
			displays: []string{"display-0-1920x1080"},
			want:     []string{"display-0-1920x1080"},
		},
		{
			name:   "nothing",
			runner: fakeRunner{"hyprctl monitors -j": `not json`},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDetector(tt.runner, tt.displays...)
			got, err := d.Outputs(context.Background())
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseSwwwQuery(t *testing.T) {
	got := parseSwwwQuery([]byte("\n  DP-1: 1920x1080, scale: 1\nno separator line\n"))
	if len(got) != 1 || got[0] != "DP-1" {
		t.Errorf("Expected [DP-1], got %v", got)
	}
}
