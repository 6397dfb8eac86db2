package state

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestPushRecent(t *testing.T) {
	tests := []struct {
		name  string
		queue []string
		value string
		limit int
		want  []string
	}{
		{"empty", nil, "a", 3, []string{"a"}},
		{"append", []string{"a", "b"}, "c", 3, []string{"a", "b", "c"}},
		{"moves existing to tail", []string{"a", "b", "c"}, "a", 3, []string{"b", "c", "a"}},
		{"drops oldest over limit", []string{"a", "b", "c"}, "d", 3, []string{"b", "c", "d"}},
		{"already newest", []string{"a", "b"}, "b", 3, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pushRecent(tt.queue, tt.value, tt.limit))
		})
	}
}

func TestCommit(t *testing.T) {
	st := New()
	now := time.UnixMilli(1700000000000)

	st.Commit("DP-1", "/w/a.jpg", now)
	st.Commit("DP-2", "/w/b.jpg", now)
	st.Commit("DP-1", "/w/c.jpg", now)

	assert.Equal(t, map[string]string{"DP-1": "/w/c.jpg", "DP-2": "/w/b.jpg"}, st.LastAssigned)
	assert.Equal(t, []string{"/w/a.jpg", "/w/c.jpg"}, st.RecentFor("DP-1"))
	assert.Equal(t, []string{"/w/a.jpg", "/w/b.jpg", "/w/c.jpg"}, st.RecentGlobal)
	assert.Equal(t, int64(1700000000000), st.LastUpdated)
}

func TestCommitKeepsQueuesBounded(t *testing.T) {
	st := New()
	rng := rand.New(rand.NewPCG(1, 2))
	outputs := []string{"DP-1", "DP-2", "HDMI-A-1"}

	for i := 0; i < 500; i++ {
		out := outputs[rng.IntN(len(outputs))]
		st.Commit(out, fmt.Sprintf("/w/%d.jpg", rng.IntN(40)), time.Now())

		assert.LessOrEqual(t, len(st.RecentGlobal), domain.RecentLimit)
		for o, q := range st.RecentByOutput {
			assert.LessOrEqual(t, len(q), domain.RecentLimit, "output %s", o)
		}
	}
}

func TestCleanupDisconnectedOutputs(t *testing.T) {
	st := New()
	st.Commit("DP-1", "/w/a.jpg", time.Now())
	st.Commit("DP-2", "/w/b.jpg", time.Now())
	st.RecentGlobal = make([]string, 15)

	st.CleanupDisconnectedOutputs([]string{"DP-1", "HDMI-A-1"})

	assert.Equal(t, map[string]string{"DP-1": "/w/a.jpg"}, st.LastAssigned)
	assert.NotContains(t, st.RecentByOutput, "DP-2")
	assert.Contains(t, st.RecentByOutput, "DP-1")
	assert.Equal(t, []string{"DP-1", "HDMI-A-1"}, st.LastOutputs)
	assert.Len(t, st.RecentGlobal, domain.RecentLimit)
}
