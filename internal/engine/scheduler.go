package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs a rotation tick on a fixed interval
type Scheduler struct {
	logger   *zap.Logger
	engine   *Engine
	interval time.Duration
	pack     string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a scheduler ticking every intervalSeconds (at least one second)
func NewScheduler(logger *zap.Logger, engine *Engine, intervalSeconds int, pack string) *Scheduler {
	return &Scheduler{
		logger:   logger,
		engine:   engine,
		interval: time.Duration(max(intervalSeconds, 1)) * time.Second,
		pack:     pack,
	}
}

// Start launches the rotation loop in a goroutine.
// It returns immediately (non-blocking).
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	// fx start contexts expire once startup completes
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.Info("Scheduler starting...", zap.Duration("interval", s.interval))
	go s.runLoop(loopCtx, s.done)
	return nil
}

func (s *Scheduler) runLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler loop stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one rotation; failures are logged and the loop keeps going
func (s *Scheduler) tick(ctx context.Context) {
	res, err := s.engine.Rotate(ctx, s.pack)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("Rotation failed", zap.Error(err))
		return
	}
	s.logger.Debug("Scheduled rotation done", zap.String("pack", res.Pack), zap.Int("picks", len(res.Picks)))
}

// Stop cancels the loop and waits for the running tick to finish
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}

	s.logger.Info("Scheduler stopping...")
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
