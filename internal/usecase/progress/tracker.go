package progress

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-actions/errors"
	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	"github.com/johnquangdev/meeting-actions/internal/domain/repositories"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultWatchCeiling = 15 * time.Minute

	// emptyStreakLimit is how many consecutive polls may sit in the
	// awaiting-tasks stage before the meeting is treated as having no
	// action items at all.
	emptyStreakLimit = 3
)

// WatchOutcome tells the caller why polling stopped
type WatchOutcome string

const (
	// WatchOutcomeComplete means every task has its recommendation
	WatchOutcomeComplete WatchOutcome = "complete"
	// WatchOutcomeEmpty means analysis finished and no tasks appeared
	WatchOutcomeEmpty WatchOutcome = "empty"
	// WatchOutcomeDeadline means the wall-clock ceiling was hit; the caller
	// should check manually
	WatchOutcomeDeadline WatchOutcome = "deadline"
)

// Tracker answers "has this meeting finished processing?" from fresh counts.
// There is no job-status record to consult; every call re-reads the data.
type Tracker struct {
	meetings repositories.MeetingRepository
	tasks    repositories.TaskRepository
	recs     repositories.RecommendationRepository
	logger   *zap.Logger

	pollInterval time.Duration
	watchCeiling time.Duration
}

// NewTracker creates a tracker. Non-positive intervals fall back to the
// defaults (3s poll, 15m ceiling).
func NewTracker(
	meetings repositories.MeetingRepository,
	tasks repositories.TaskRepository,
	recs repositories.RecommendationRepository,
	pollInterval, watchCeiling time.Duration,
	logger *zap.Logger,
) *Tracker {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	if watchCeiling <= 0 {
		watchCeiling = defaultWatchCeiling
	}
	return &Tracker{
		meetings:     meetings,
		tasks:        tasks,
		recs:         recs,
		logger:       logger,
		pollInterval: pollInterval,
		watchCeiling: watchCeiling,
	}
}

// Snapshot derives the current progress from four fresh counts
func (t *Tracker) Snapshot(ctx context.Context, meetingID uuid.UUID) (*entities.PipelineProgress, error) {
	meeting, err := t.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed("get meeting", err)
	}
	if meeting == nil {
		return nil, apperrors.ErrMeetingNotFound(meetingID.String())
	}

	taskCount, err := t.tasks.CountByMeeting(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed("count tasks", err)
	}
	recCount, err := t.recs.CountByMeeting(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed("count recommendations", err)
	}

	progress := entities.DeriveProgress(meeting.HasTranscript(), meeting.HasSummary(), int(taskCount), int(recCount))
	return &progress, nil
}

// Watch polls until the meeting is terminal or the wall-clock ceiling is
// hit. The ceiling is a hard cancellation: after it, the caller is told to
// check manually, never retried. A meeting that sits in the awaiting-tasks
// stage for several consecutive polls is treated as terminal with zero
// tasks.
func (t *Tracker) Watch(ctx context.Context, meetingID uuid.UUID) (WatchOutcome, *entities.PipelineProgress, error) {
	deadline := time.NewTimer(t.watchCeiling)
	defer deadline.Stop()
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	emptyStreak := 0
	var last *entities.PipelineProgress

	for {
		progress, err := t.Snapshot(ctx, meetingID)
		if err != nil {
			return WatchOutcomeDeadline, last, err
		}
		last = progress

		if progress.IsComplete {
			return WatchOutcomeComplete, progress, nil
		}

		if progress.Stage == entities.StageAwaitingTasks {
			emptyStreak++
			if emptyStreak >= emptyStreakLimit {
				if t.logger != nil {
					t.logger.Info("meeting produced no tasks, treating as terminal",
						zap.String("meeting_id", meetingID.String()),
					)
				}
				return WatchOutcomeEmpty, progress, nil
			}
		} else {
			emptyStreak = 0
		}

		select {
		case <-ctx.Done():
			return WatchOutcomeDeadline, last, ctx.Err()
		case <-deadline.C:
			if t.logger != nil {
				t.logger.Warn("progress watch hit the wall-clock ceiling",
					zap.String("meeting_id", meetingID.String()),
					zap.Duration("ceiling", t.watchCeiling),
				)
			}
			return WatchOutcomeDeadline, last, nil
		case <-ticker.C:
		}
	}
}
