package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-actions/errors"
	"github.com/johnquangdev/meeting-actions/internal/domain/repositories"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/metrics"
	"github.com/johnquangdev/meeting-actions/pkg/jobcontext"
)

// SweepResult reports one retry pass
type SweepResult struct {
	Attempted int `json:"attempted"`
	Repaired  int `json:"repaired"`
}

// Scanner repairs tasks left without a recommendation by transient
// failures. It is safe to run arbitrarily often and concurrently with
// itself and with direct generation triggers; the engine's idempotency
// guard carries all the correctness weight.
type Scanner struct {
	tasks        repositories.TaskRepository
	participants repositories.ParticipantRepository
	engine       *Engine
	logger       *zap.Logger

	sweepEvery   time.Duration
	sweepTimeout time.Duration

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewScanner creates a new retry scanner
func NewScanner(
	tasks repositories.TaskRepository,
	participants repositories.ParticipantRepository,
	engine *Engine,
	sweepEvery, sweepTimeout time.Duration,
	logger *zap.Logger,
) *Scanner {
	if sweepEvery <= 0 {
		sweepEvery = 5 * time.Minute
	}
	return &Scanner{
		tasks:        tasks,
		participants: participants,
		engine:       engine,
		sweepEvery:   sweepEvery,
		sweepTimeout: sweepTimeout,
		logger:       logger,
	}
}

// RetryMissing re-drives recommendation generation for every pending task,
// optionally scoped to one meeting. The roster is fetched once up front as
// shared context; per-task failures are logged and never abort the sweep.
func (s *Scanner) RetryMissing(ctx context.Context, meetingID *uuid.UUID) (SweepResult, error) {
	result := SweepResult{}

	pending, err := s.tasks.ListPending(ctx, meetingID)
	if err != nil {
		return result, apperrors.ErrPersistenceFailed("list pending tasks", err)
	}
	if len(pending) == 0 {
		return result, nil
	}

	// Warm the roster once so per-task generation doesn't refetch it.
	if _, err := s.participants.ListAll(ctx); err != nil {
		return result, apperrors.ErrPersistenceFailed("list participants", err)
	}

	for _, task := range pending {
		result.Attempted++
		outcome, _, err := s.engine.Generate(ctx, task.ID)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("retry failed for task",
					zap.String("task_id", task.ID.String()),
					zap.Error(err),
				)
			}
			continue
		}
		if outcome == OutcomeGenerated || outcome == OutcomeAlreadyDone || outcome == OutcomeSkipped {
			result.Repaired++
		}
	}

	metrics.RecordSweep(result.Repaired)
	if s.logger != nil {
		s.logger.Info("🔁 Retry sweep finished",
			zap.Int("attempted", result.Attempted),
			zap.Int("repaired", result.Repaired),
		)
	}
	return result, nil
}

// Start launches the background sweep loop
func (s *Scanner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})

	s.wg.Add(1)
	go s.sweepLoop()

	if s.logger != nil {
		s.logger.Info("🚀 Retry scanner started",
			zap.Duration("interval", s.sweepEvery),
		)
	}
}

// Stop signals the sweep loop to exit and waits for it
func (s *Scanner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	if s.logger != nil {
		s.logger.Info("🛑 Retry scanner stopped")
	}
}

func (s *Scanner) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runSweep()
		}
	}
}

func (s *Scanner) runSweep() {
	ctx, cancel := jobcontext.JobBegin(context.Background(), uuid.New(), "recommendation_sweep", 0, s.sweepTimeout)
	defer cancel()

	err := jobcontext.JobEnd(ctx, func(ctx context.Context) error {
		_, err := s.RetryMissing(ctx, nil)
		return err
	})
	if err != nil && s.logger != nil {
		s.logger.Error("sweep failed", zap.Error(err))
	}
}
