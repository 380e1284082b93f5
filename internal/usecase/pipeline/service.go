package pipeline

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-actions/errors"
	"github.com/johnquangdev/meeting-actions/internal/domain/repositories"
)

const processingSystemPrompt = `You are a meeting assistant that prepares raw speech-to-text output for downstream processing.
Clean the transcript: fix obvious transcription mistakes, remove filler words, keep speaker attributions.
Then write a narrative summary of the meeting.
Respond with JSON only: {"cleaned_transcript": "...", "summary": "..."}`

// Service drives the full meeting pipeline: clean and summarize the raw
// transcript, extract tasks, then fan recommendation generation out per
// task with bounded concurrency.
type Service struct {
	meetings  repositories.MeetingRepository
	extractor *Extractor
	engine    *Engine
	llm       LLM
	parser    *Parser
	logger    *zap.Logger

	// Worker pool: limit concurrent recommendation calls
	semaphore chan struct{}
}

// NewService creates the pipeline service
func NewService(
	meetings repositories.MeetingRepository,
	extractor *Extractor,
	engine *Engine,
	llm LLM,
	logger *zap.Logger,
) *Service {
	return &Service{
		meetings:  meetings,
		extractor: extractor,
		engine:    engine,
		llm:       llm,
		parser:    NewParser(),
		logger:    logger,
		semaphore: make(chan struct{}, 2),
	}
}

// ProcessTranscript runs the whole pipeline for a meeting whose raw
// transcript has just arrived. Recommendation failures are left to the
// retry scanner; they never fail the call.
func (s *Service) ProcessTranscript(ctx context.Context, meetingID uuid.UUID, rawTranscript string) error {
	if err := s.meetings.SaveRawTranscript(ctx, meetingID, rawTranscript); err != nil {
		return apperrors.ErrPersistenceFailed("save raw transcript", err)
	}

	response, err := inferWithRetry(ctx, s.llm, "processing", processingSystemPrompt, rawTranscript, 0.3, 8000)
	if err != nil {
		return apperrors.ErrInferenceFailed(err)
	}

	transcript, summary, err := s.parser.ParseProcessed(response)
	if err != nil {
		return apperrors.ErrParseFailed(err)
	}

	if err := s.meetings.SaveProcessed(ctx, meetingID, transcript, summary); err != nil {
		return apperrors.ErrPersistenceFailed("save processed transcript", err)
	}

	taskIDs, err := s.extractor.ExtractTasks(ctx, meetingID)
	if err != nil {
		return err
	}

	s.fanOutRecommendations(ctx, taskIDs)
	return nil
}

// fanOutRecommendations generates recommendations for the given tasks with
// bounded concurrency. Each task's failure is isolated.
func (s *Service) fanOutRecommendations(ctx context.Context, taskIDs []uuid.UUID) {
	var wg sync.WaitGroup
	for _, taskID := range taskIDs {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			s.semaphore <- struct{}{}
			defer func() { <-s.semaphore }()

			if _, _, err := s.engine.Generate(ctx, id); err != nil {
				if s.logger != nil {
					s.logger.Warn("recommendation generation failed, scanner will retry",
						zap.String("task_id", id.String()),
						zap.Error(err),
					)
				}
			}
		}(taskID)
	}
	wg.Wait()
}
