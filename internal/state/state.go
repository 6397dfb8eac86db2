package state

import (
	"slices"
	"time"

	"github.com/KitotsuMolina/Kitowall/internal/config"
	"github.com/KitotsuMolina/Kitowall/internal/domain"
)

// State is the persisted rotation memory.
// Recency queues are most-recently-used lists capped at domain.RecentLimit, newest last.
type State struct {
	Mode           string              `json:"mode"`
	CurrentPack    string              `json:"currentPack"`
	LastOutputs    []string            `json:"lastOutputs"`
	LastAssigned   map[string]string   `json:"lastAssigned"`
	RecentByOutput map[string][]string `json:"recentByOutput"`
	RecentGlobal   []string            `json:"recentGlobal"`
	LastUpdated    int64               `json:"lastUpdated"` // epoch millis
}

// New returns an empty state
func New() *State {
	return &State{
		Mode:           config.ModeManual,
		LastOutputs:    []string{},
		LastAssigned:   map[string]string{},
		RecentByOutput: map[string][]string{},
		RecentGlobal:   []string{},
	}
}

// RecentFor returns the recency queue of output, oldest first
func (s *State) RecentFor(output string) []string {
	return s.RecentByOutput[output]
}

// Global returns the global recency queue, oldest first
func (s *State) Global() []string {
	return s.RecentGlobal
}

// CleanupDisconnectedOutputs forgets every output not in current.
// It must run before selection so a vanished monitor never affects cooldowns.
func (s *State) CleanupDisconnectedOutputs(current []string) {
	s.ensureShape()

	for out := range s.LastAssigned {
		if !slices.Contains(current, out) {
			delete(s.LastAssigned, out)
		}
	}
	for out := range s.RecentByOutput {
		if !slices.Contains(current, out) {
			delete(s.RecentByOutput, out)
		}
	}
	s.LastOutputs = slices.Clone(current)
	if s.LastOutputs == nil {
		s.LastOutputs = []string{}
	}

	s.Trim()
}

// Commit records path as applied to output at now
func (s *State) Commit(output, path string, now time.Time) {
	s.ensureShape()

	s.LastAssigned[output] = path
	s.RecentByOutput[output] = pushRecent(s.RecentByOutput[output], path, domain.RecentLimit)
	s.RecentGlobal = pushRecent(s.RecentGlobal, path, domain.RecentLimit)
	s.LastUpdated = now.UnixMilli()

	s.Trim()
}

// SetPack records the pack the last rotation drew from
func (s *State) SetPack(pack string, now time.Time) {
	s.CurrentPack = pack
	s.LastUpdated = now.UnixMilli()
}

// Trim re-truncates every recency queue to domain.RecentLimit
func (s *State) Trim() {
	s.ensureShape()
	s.RecentGlobal = lastN(s.RecentGlobal, domain.RecentLimit)
	for out, q := range s.RecentByOutput {
		s.RecentByOutput[out] = lastN(q, domain.RecentLimit)
	}
}

func (s *State) ensureShape() {
	if s.LastAssigned == nil {
		s.LastAssigned = map[string]string{}
	}
	if s.RecentByOutput == nil {
		s.RecentByOutput = map[string][]string{}
	}
	if s.RecentGlobal == nil {
		s.RecentGlobal = []string{}
	}
	if s.LastOutputs == nil {
		s.LastOutputs = []string{}
	}
	for out, q := range s.RecentByOutput {
		if q == nil {
			s.RecentByOutput[out] = []string{}
		}
	}
}

// pushRecent moves value to the tail of queue and caps it to limit
func pushRecent(queue []string, value string, limit int) []string {
	next := make([]string, 0, len(queue)+1)
	for _, v := range queue {
		if v != value {
			next = append(next, v)
		}
	}
	next = append(next, value)
	return lastN(next, limit)
}

// lastN returns at most the last n elements of q
func lastN(q []string, n int) []string {
	if n <= 0 {
		return []string{}
	}
	if len(q) > n {
		return slices.Clone(q[len(q)-n:])
	}
	return q
}
