package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-actions/errors"
	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	"github.com/johnquangdev/meeting-actions/internal/domain/repositories"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/metrics"
)

const recommendationSystemPrompt = `You are a meeting assistant that writes one practical recommendation for how to best carry out a task.
If a recommendation would genuinely help, include concrete next steps, and when contacting someone by email makes sense, include a short email draft.
If the task is trivial or self-explanatory, say no recommendation is warranted.
Respond with JSON only: {"valuable": true|false, "recommendation": "...", "email_draft": "..."}`

// Outcome describes what Generate did for a task
type Outcome string

const (
	OutcomeGenerated   Outcome = "generated"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeAlreadyDone Outcome = "already_done"
)

// Engine produces at most one recommendation per task, safely under
// concurrent and duplicate triggers. The recommendation row is the
// authoritative idempotency signal; the task's recommendation_state is a
// fast-path cache on top of it.
type Engine struct {
	meetings repositories.MeetingRepository
	tasks    repositories.TaskRepository
	recs     repositories.RecommendationRepository
	llm      LLM
	parser   *Parser
	logger   *zap.Logger
}

// NewEngine creates a new recommendation engine
func NewEngine(
	meetings repositories.MeetingRepository,
	tasks repositories.TaskRepository,
	recs repositories.RecommendationRepository,
	llm LLM,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		meetings: meetings,
		tasks:    tasks,
		recs:     recs,
		llm:      llm,
		parser:   NewParser(),
		logger:   logger,
	}
}

// Generate runs the guarded generation sequence for one task:
// state check, row-exists repair, backend call, insert-or-noop, then the
// state flag last. A crash between insert and flag leaves a row the next
// caller detects and repairs without a second backend call.
func (e *Engine) Generate(ctx context.Context, taskID uuid.UUID) (Outcome, *entities.Recommendation, error) {
	task, err := e.tasks.GetByID(ctx, taskID)
	if err != nil {
		return "", nil, apperrors.ErrPersistenceFailed("get task", err)
	}
	if task == nil {
		return "", nil, apperrors.ErrTaskNotFound(taskID.String())
	}

	switch task.RecommendationState {
	case entities.RecommendationDone:
		rec, err := e.recs.GetByTaskID(ctx, taskID)
		if err != nil {
			return "", nil, apperrors.ErrPersistenceFailed("get recommendation", err)
		}
		return OutcomeAlreadyDone, rec, nil
	case entities.RecommendationSkipped:
		return OutcomeSkipped, nil, nil
	}

	// Repair path: a row without the flag means a previous run crashed
	// between insert and flag update.
	existing, err := e.recs.GetByTaskID(ctx, taskID)
	if err != nil {
		return "", nil, apperrors.ErrPersistenceFailed("get recommendation", err)
	}
	if existing != nil {
		if err := e.tasks.UpdateRecommendationState(ctx, taskID, entities.RecommendationDone); err != nil {
			return "", nil, apperrors.ErrPersistenceFailed("update recommendation state", err)
		}
		if e.logger != nil {
			e.logger.Info("🔧 Repaired dangling recommendation flag",
				zap.String("task_id", taskID.String()),
			)
		}
		return OutcomeAlreadyDone, existing, nil
	}

	prompt := e.buildPrompt(ctx, task)
	response, err := inferWithRetry(ctx, e.llm, "recommendation", recommendationSystemPrompt, prompt, 0.4, 1200)
	if err != nil {
		// Flag stays pending so the retry scanner revisits the task.
		return "", nil, apperrors.ErrRecommendationFailed(taskID.String(), err)
	}

	result, err := e.parser.ParseRecommendation(response)
	if err != nil {
		return "", nil, apperrors.ErrRecommendationFailed(taskID.String(), err)
	}

	if !result.Valuable {
		if err := e.tasks.UpdateRecommendationState(ctx, taskID, entities.RecommendationSkipped); err != nil {
			return "", nil, apperrors.ErrPersistenceFailed("update recommendation state", err)
		}
		metrics.RecommendationsSkipped.Inc()
		return OutcomeSkipped, nil, nil
	}

	var emailDraft *string
	if result.EmailDraft != "" {
		emailDraft = &result.EmailDraft
	}
	rec := entities.NewRecommendation(taskID, result.Recommendation, emailDraft)

	inserted, err := e.recs.InsertIfAbsent(ctx, rec)
	if err != nil {
		return "", nil, apperrors.ErrPersistenceFailed("insert recommendation", err)
	}
	if err := e.tasks.UpdateRecommendationState(ctx, taskID, entities.RecommendationDone); err != nil {
		return "", nil, apperrors.ErrPersistenceFailed("update recommendation state", err)
	}

	if !inserted {
		// A concurrent caller won the insert race; return their row.
		winner, err := e.recs.GetByTaskID(ctx, taskID)
		if err != nil {
			return "", nil, apperrors.ErrPersistenceFailed("get recommendation", err)
		}
		return OutcomeAlreadyDone, winner, nil
	}

	metrics.RecommendationsGenerated.Inc()
	if e.logger != nil {
		e.logger.Info("💡 Recommendation generated",
			zap.String("task_id", taskID.String()),
			zap.Bool("has_email_draft", emailDraft != nil),
		)
	}
	return OutcomeGenerated, rec, nil
}

func (e *Engine) buildPrompt(ctx context.Context, task *entities.Task) string {
	var b strings.Builder
	b.WriteString("Task: ")
	b.WriteString(task.Description)
	b.WriteString("\n")

	if len(task.Assignees) > 0 {
		names := make([]string, 0, len(task.Assignees))
		for _, a := range task.Assignees {
			names = append(names, a.Name)
		}
		b.WriteString("Assigned to: ")
		b.WriteString(strings.Join(names, ", "))
		b.WriteString("\n")
	}

	if task.MeetingID != nil {
		meeting, err := e.meetings.GetByID(ctx, *task.MeetingID)
		if err == nil && meeting != nil {
			if meeting.HasSummary() {
				b.WriteString("\nMeeting summary:\n")
				b.WriteString(*meeting.Summary)
				b.WriteString("\n")
			} else if meeting.HasTranscript() {
				b.WriteString("\nMeeting transcript:\n")
				b.WriteString(*meeting.Transcript)
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}
