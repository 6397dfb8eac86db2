package selection

import (
	"math/rand/v2"
	"sync"

	"github.com/KitotsuMolina/Kitowall/internal/domain"
	"go.uber.org/zap"
)

// Recency is the read-only state the engine consults
type Recency interface {
	RecentFor(output string) []string
	Global() []string
}

// Engine assigns one pool path per output, avoiding recently shown images.
// Select is safe for concurrent use.
type Engine struct {
	logger *zap.Logger
	cfg    domain.SelectionConfig

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewEngine creates a selection engine. rng picks the scan offset of each tick.
func NewEngine(logger *zap.Logger, cfg domain.SelectionConfig, rng *rand.Rand) *Engine {
	return &Engine{logger: logger, cfg: cfg, rng: rng}
}

// Select returns at most one pick per output, in output order.
// An empty pool yields no picks.
func (e *Engine) Select(outputs []string, pool []string, recent Recency) []domain.OutputPick {
	if len(pool) == 0 {
		return nil
	}

	bannedGlobal := toSet(tail(recent.Global(), e.cfg.GlobalCooldown))
	used := make(map[string]struct{}, len(outputs))
	start := e.offset(len(pool))

	picks := make([]domain.OutputPick, 0, len(outputs))
	for _, out := range outputs {
		c := constraints{
			bannedOutput:   toSet(tail(recent.RecentFor(out), e.cfg.PerOutputCooldown)),
			bannedGlobal:   bannedGlobal,
			usedThisTick:   used,
			avoidTickDupes: e.cfg.AvoidSameTickDuplicates,
		}

		path, level, ok := scan(pool, start, c)
		if !ok {
			continue
		}

		if level != LevelStrict {
			e.logger.Debug("Selection relaxed",
				zap.String("output", out),
				zap.Stringer("level", level))
		}
		used[path] = struct{}{}
		picks = append(picks, domain.OutputPick{Output: out, Path: path, Level: level.String()})
	}
	return picks
}

// scan walks the pool from start, wrapping around, and returns the first path allowed
// by the strictest level that has any match
func scan(pool []string, start int, c constraints) (string, Level, bool) {
	for _, level := range Levels {
		for i := range pool {
			p := pool[(start+i)%len(pool)]
			if level.allows(p, c) {
				return p, level, true
			}
		}
	}
	return "", 0, false
}

// tail returns the last n elements of q
func tail(q []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if len(q) > n {
		return q[len(q)-n:]
	}
	return q
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

func (e *Engine) offset(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.IntN(n)
}
