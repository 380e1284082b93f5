package handler

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-actions/errors"
	dto "github.com/johnquangdev/meeting-actions/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-actions/internal/domain/repositories"
	"github.com/johnquangdev/meeting-actions/internal/usecase/pipeline"
	pkgai "github.com/johnquangdev/meeting-actions/pkg/ai"
)

// processTimeout bounds one webhook-triggered pipeline run
const processTimeout = 10 * time.Minute

// TranscriptWebhookHandler receives transcription completion callbacks
type TranscriptWebhookHandler struct {
	meetings    repositories.MeetingRepository
	transcriber *pkgai.Transcriber
	svc         *pipeline.Service
	secret      string
	logger      *zap.Logger
}

// NewTranscriptWebhookHandler creates the webhook handler
func NewTranscriptWebhookHandler(
	meetings repositories.MeetingRepository,
	transcriber *pkgai.Transcriber,
	svc *pipeline.Service,
	secret string,
	logger *zap.Logger,
) *TranscriptWebhookHandler {
	return &TranscriptWebhookHandler{
		meetings:    meetings,
		transcriber: transcriber,
		svc:         svc,
		secret:      secret,
		logger:      logger,
	}
}

// HandleAssemblyAIWebhook processes an AssemblyAI completion callback. The
// pipeline runs in the background; the webhook is acknowledged immediately
// so the provider does not retry a slow run.
// @Summary      AssemblyAI webhook
// @Description  Receives transcription completion events and starts the meeting pipeline
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /webhooks/assemblyai [post]
func (h *TranscriptWebhookHandler) HandleAssemblyAIWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	// AssemblyAI signs requests in a header; try common header names
	signature := c.Request().Header.Get("x-assemblyai-signature")
	if signature == "" {
		signature = c.Request().Header.Get("Authorization")
	}
	if h.secret != "" && !pkgai.VerifyHMAC(h.secret, body, signature) {
		if h.logger != nil {
			h.logger.Warn("webhook signature rejected")
		}
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}

	var payload dto.TranscriptWebhookRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	if payload.Status != "completed" {
		if h.logger != nil {
			h.logger.Warn("transcription did not complete",
				zap.String("transcript_id", payload.TranscriptID),
				zap.String("status", payload.Status),
			)
		}
		return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ignored"})
	}

	meeting, err := h.meetings.GetByTranscriptJobID(c.Request().Context(), payload.TranscriptID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrPersistenceFailed("lookup meeting by job", err))
	}
	if meeting == nil {
		if h.logger != nil {
			h.logger.Warn("no meeting for transcript job", zap.String("transcript_id", payload.TranscriptID))
		}
		return HandleSuccess(h.logger, c, map[string]interface{}{"status": "unknown_job"})
	}

	// The payload carries no text; fetch the finished transcript
	rawTranscript, err := h.transcriber.Fetch(c.Request().Context(), payload.TranscriptID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrTranscriptionFailed(err))
	}

	meetingID := meeting.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		if err := h.svc.ProcessTranscript(ctx, meetingID, rawTranscript); err != nil {
			if h.logger != nil {
				h.logger.Error("pipeline run failed",
					zap.String("meeting_id", meetingID.String()),
					zap.Error(err),
				)
			}
		}
	}()

	if h.logger != nil {
		h.logger.Info("🎬 Pipeline started from webhook",
			zap.String("meeting_id", meetingID.String()),
			zap.String("transcript_id", payload.TranscriptID),
		)
	}
	return HandleSuccess(h.logger, c, map[string]interface{}{"status": "processing"})
}
