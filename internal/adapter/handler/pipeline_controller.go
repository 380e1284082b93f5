package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-actions/errors"
	dto "github.com/johnquangdev/meeting-actions/internal/adapter/dto/meeting"
	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	"github.com/johnquangdev/meeting-actions/internal/domain/repositories"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/email"
	"github.com/johnquangdev/meeting-actions/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-actions/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-actions/internal/usecase/progress"
	pkgai "github.com/johnquangdev/meeting-actions/pkg/ai"
)

// audioURLExpiry is how long the transcription service can fetch the
// uploaded audio through the presigned URL
const audioURLExpiry = 24 * time.Hour

// PipelineController exposes the meeting pipeline over HTTP
type PipelineController struct {
	meetings    repositories.MeetingRepository
	tasks       repositories.TaskRepository
	recs        repositories.RecommendationRepository
	extractor   *pipeline.Extractor
	engine      *pipeline.Engine
	scanner     *pipeline.Scanner
	tracker     *progress.Tracker
	counter     *progress.PendingCounter
	storage     *storage.MinIOClient
	transcriber *pkgai.Transcriber
	sender      *email.Sender
	logger      *zap.Logger
}

// NewPipelineController creates the pipeline controller
func NewPipelineController(
	meetings repositories.MeetingRepository,
	tasks repositories.TaskRepository,
	recs repositories.RecommendationRepository,
	extractor *pipeline.Extractor,
	engine *pipeline.Engine,
	scanner *pipeline.Scanner,
	tracker *progress.Tracker,
	counter *progress.PendingCounter,
	minioClient *storage.MinIOClient,
	transcriber *pkgai.Transcriber,
	sender *email.Sender,
	logger *zap.Logger,
) *PipelineController {
	return &PipelineController{
		meetings:    meetings,
		tasks:       tasks,
		recs:        recs,
		extractor:   extractor,
		engine:      engine,
		scanner:     scanner,
		tracker:     tracker,
		counter:     counter,
		storage:     minioClient,
		transcriber: transcriber,
		sender:      sender,
		logger:      logger,
	}
}

// CreateMeeting registers a new meeting
// @Summary      Create meeting
// @Description  Creates a meeting record that audio can be uploaded to
// @Tags         Meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.CreateMeetingRequest  true  "Meeting title"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Router       /meetings [post]
func (pc *PipelineController) CreateMeeting(c echo.Context) error {
	var req dto.CreateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(pc.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(pc.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	meeting := entities.NewMeeting(req.Title)
	if err := pc.meetings.Create(c.Request().Context(), meeting); err != nil {
		return HandleError(pc.logger, c, errors.ErrPersistenceFailed("create meeting", err))
	}

	return HandleSuccess(pc.logger, c, dto.FromMeeting(meeting))
}

// GetMeeting returns one meeting
// @Summary      Get meeting
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /meetings/{id} [get]
func (pc *PipelineController) GetMeeting(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	meeting, err := pc.meetings.GetByID(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrPersistenceFailed("get meeting", err))
	}
	if meeting == nil {
		return HandleError(pc.logger, c, errors.ErrMeetingNotFound(meetingID.String()))
	}

	return HandleSuccess(pc.logger, c, dto.FromMeeting(meeting))
}

// UploadAudio stores a meeting recording and submits it for transcription
// @Summary      Upload meeting audio
// @Description  Uploads an audio file to object storage and submits it to the transcription service; the pipeline continues via webhook
// @Tags         Meetings
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Meeting ID (UUID)"
// @Param        audio  formData  file    true  "Audio file"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]interface{}
// @Failure      404    {object}  map[string]interface{}
// @Router       /meetings/{id}/audio [post]
func (pc *PipelineController) UploadAudio(c echo.Context) error {
	ctx := c.Request().Context()

	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	meeting, err := pc.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrPersistenceFailed("get meeting", err))
	}
	if meeting == nil {
		return HandleError(pc.logger, c, errors.ErrMeetingNotFound(meetingID.String()))
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrInvalidArgument("missing audio file"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrInvalidPayload())
	}
	defer file.Close()

	objectKey := fmt.Sprintf("meetings/%s/audio-%d", meetingID, time.Now().UTC().Unix())
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := pc.storage.UploadAudio(ctx, objectKey, file, fileHeader.Size, contentType); err != nil {
		return HandleError(pc.logger, c, errors.ErrStorageFailed("upload audio", err))
	}

	audioURL, err := pc.storage.GetFileURL(ctx, objectKey, audioURLExpiry)
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrStorageFailed("presign audio", err))
	}

	jobID, err := pc.transcriber.Submit(ctx, audioURL)
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrTranscriptionFailed(err))
	}

	if err := pc.meetings.SetAudioObject(ctx, meetingID, objectKey, jobID); err != nil {
		return HandleError(pc.logger, c, errors.ErrPersistenceFailed("save audio reference", err))
	}

	if pc.logger != nil {
		pc.logger.Info("🎙️ Audio submitted for transcription",
			zap.String("meeting_id", meetingID.String()),
			zap.String("transcript_job_id", jobID),
		)
	}

	return HandleSuccess(pc.logger, c, dto.UploadAudioResponse{
		MeetingID:       meetingID.String(),
		ObjectKey:       objectKey,
		TranscriptJobID: jobID,
	})
}

// ExtractTasks runs task extraction for a meeting
// @Summary      Extract tasks
// @Description  Runs action-item extraction on the meeting transcript; the batch is all-or-nothing
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}  "No transcript yet"
// @Router       /meetings/{id}/extract [post]
func (pc *PipelineController) ExtractTasks(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	taskIDs, err := pc.extractor.ExtractTasks(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(pc.logger, c, err)
	}

	ids := make([]string, 0, len(taskIDs))
	for _, id := range taskIDs {
		ids = append(ids, id.String())
	}
	return HandleSuccess(pc.logger, c, dto.ExtractResponse{MeetingID: meetingID.String(), TaskIDs: ids})
}

// ListTasks returns every task of a meeting
// @Summary      List meeting tasks
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  map[string]interface{}
// @Router       /meetings/{id}/tasks [get]
func (pc *PipelineController) ListTasks(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	tasks, err := pc.tasks.ListByMeeting(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrPersistenceFailed("list tasks", err))
	}

	resp := make([]*dto.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, dto.FromTask(task))
	}
	return HandleSuccess(pc.logger, c, resp)
}

// GenerateRecommendation triggers recommendation generation for one task
// @Summary      Generate recommendation
// @Description  Produces at most one recommendation per task; duplicate triggers return the existing one
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID (UUID)"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /tasks/{id}/recommendation [post]
func (pc *PipelineController) GenerateRecommendation(c echo.Context) error {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrInvalidArgument("invalid task id"))
	}

	outcome, rec, err := pc.engine.Generate(c.Request().Context(), taskID)
	if err != nil {
		return HandleError(pc.logger, c, err)
	}

	resp := dto.GenerateOutcomeResponse{Outcome: string(outcome)}
	if rec != nil {
		resp.Recommendation = dto.FromRecommendation(rec)
	}
	return HandleSuccess(pc.logger, c, resp)
}

// RetryRecommendations sweeps tasks still awaiting a recommendation
// @Summary      Retry missing recommendations
// @Description  Re-runs recommendation generation for pending tasks; scoped to one meeting when meeting_id is given
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      dto.RetryRequest  false  "Optional meeting scope"
// @Success      200      {object}  map[string]interface{}
// @Router       /recommendations/retry [post]
func (pc *PipelineController) RetryRecommendations(c echo.Context) error {
	var req dto.RetryRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(pc.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(pc.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	var meetingID *uuid.UUID
	if req.MeetingID != nil {
		id, err := uuid.Parse(*req.MeetingID)
		if err != nil {
			return HandleError(pc.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
		}
		meetingID = &id
	}

	result, err := pc.scanner.RetryMissing(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(pc.logger, c, err)
	}

	return HandleSuccess(pc.logger, c, dto.RetryResponse{Attempted: result.Attempted, Repaired: result.Repaired})
}

// GetProgress reports pipeline progress for a meeting
// @Summary      Get pipeline progress
// @Description  Derives progress from the meeting's current data; there is no job-status record
// @Tags         Meetings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Meeting ID (UUID)"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /meetings/{id}/progress [get]
func (pc *PipelineController) GetProgress(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	snapshot, err := pc.tracker.Snapshot(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(pc.logger, c, err)
	}

	return HandleSuccess(pc.logger, c, snapshot)
}

// StreamPendingTasks streams the live pending-task count as server-sent events
// @Summary      Stream pending task count
// @Description  Pushes the number of tasks still awaiting a recommendation whenever it changes
// @Tags         Tasks
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200  {string}  string
// @Router       /tasks/pending/stream [get]
func (pc *PipelineController) StreamPendingTasks(c echo.Context) error {
	ctx := c.Request().Context()

	counts, unsubscribe, err := pc.counter.Subscribe(ctx)
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrPersistenceFailed("subscribe pending counter", err))
	}
	defer unsubscribe()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	for {
		select {
		case <-ctx.Done():
			return nil
		case count, ok := <-counts:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintf(resp, "data: %d\n\n", count); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}

// SendRecommendationEmail sends a task's stored email draft
// @Summary      Send recommendation email
// @Description  Sends the stored email draft of a task's recommendation to the task's first assignee
// @Tags         Tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID (UUID)"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}  "No email draft or no assignee"
// @Router       /tasks/{id}/email [post]
func (pc *PipelineController) SendRecommendationEmail(c echo.Context) error {
	ctx := c.Request().Context()

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrInvalidArgument("invalid task id"))
	}

	task, err := pc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrPersistenceFailed("get task", err))
	}
	if task == nil {
		return HandleError(pc.logger, c, errors.ErrTaskNotFound(taskID.String()))
	}
	if len(task.Assignees) == 0 {
		return HandleError(pc.logger, c, errors.ErrInvalidArgument("task has no assignee to email"))
	}

	rec, err := pc.recs.GetByTaskID(ctx, taskID)
	if err != nil {
		return HandleError(pc.logger, c, errors.ErrPersistenceFailed("get recommendation", err))
	}
	if rec == nil || rec.EmailDraft == nil || *rec.EmailDraft == "" {
		return HandleError(pc.logger, c, errors.ErrInvalidArgument("task has no email draft"))
	}

	recipient := task.Assignees[0].Email
	subject := fmt.Sprintf("Action item: %s", task.Description)
	if err := pc.sender.Send(recipient, subject, *rec.EmailDraft); err != nil {
		return HandleError(pc.logger, c, errors.ErrEmailFailed(err))
	}

	return HandleSuccess(pc.logger, c, dto.EmailResponse{TaskID: taskID.String(), SentTo: recipient})
}
