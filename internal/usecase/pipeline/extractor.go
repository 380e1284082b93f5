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
	"github.com/johnquangdev/meeting-actions/pkg/normalize"
)

const extractionSystemPrompt = `You are a meeting assistant that extracts action items from cleaned meeting transcripts.
Group all actions about the same subject, recipient or tool into a single task.
Keep each description under 200 characters.
Assign only names drawn from the provided participant roster (the alias table lists known spelling variants).
If an assignment is not unambiguous, leave assigned_names empty. Never guess.
Respond with JSON only: {"tasks": [{"description": "...", "assigned_names": ["..."]}]}`

// Extractor turns a cleaned transcript into a minimal, deduplicated set of
// assigned tasks. Extraction is all-or-nothing: a malformed batch persists
// zero rows.
type Extractor struct {
	meetings     repositories.MeetingRepository
	participants repositories.ParticipantRepository
	tasks        repositories.TaskRepository
	llm          LLM
	parser       *Parser
	logger       *zap.Logger
}

// NewExtractor creates a new extractor
func NewExtractor(
	meetings repositories.MeetingRepository,
	participants repositories.ParticipantRepository,
	tasks repositories.TaskRepository,
	llm LLM,
	logger *zap.Logger,
) *Extractor {
	return &Extractor{
		meetings:     meetings,
		participants: participants,
		tasks:        tasks,
		llm:          llm,
		parser:       NewParser(),
		logger:       logger,
	}
}

// ExtractTasks extracts and persists tasks for a meeting, returning the new
// task ids
func (x *Extractor) ExtractTasks(ctx context.Context, meetingID uuid.UUID) ([]uuid.UUID, error) {
	meeting, err := x.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed("get meeting", err)
	}
	if meeting == nil {
		return nil, apperrors.ErrMeetingNotFound(meetingID.String())
	}
	if !meeting.HasTranscript() {
		return nil, apperrors.ErrTranscriptMissing(meetingID.String())
	}

	roster, err := x.participants.ListAll(ctx)
	if err != nil {
		return nil, apperrors.ErrPersistenceFailed("list participants", err)
	}

	prompt := buildExtractionPrompt(*meeting.Transcript, roster)
	response, err := inferWithRetry(ctx, x.llm, "extraction", extractionSystemPrompt, prompt, 0.2, 2000)
	if err != nil {
		return nil, apperrors.ErrExtractionFailed(meetingID.String(), err)
	}

	extracted, err := x.parser.ParseTaskList(response)
	if err != nil {
		return nil, apperrors.ErrExtractionFailed(meetingID.String(), err)
	}

	tasks := make([]*entities.Task, 0, len(extracted))
	for _, item := range extracted {
		task := entities.NewTask(&meeting.ID, item.Description)
		task.Assignees = x.resolveAssignees(item.AssignedNames, roster)
		tasks = append(tasks, task)
	}

	if err := x.tasks.CreateBatch(ctx, tasks); err != nil {
		return nil, apperrors.ErrPersistenceFailed("create tasks", err)
	}

	metrics.TasksExtracted.Add(float64(len(tasks)))
	if x.logger != nil {
		x.logger.Info("✅ Tasks extracted",
			zap.String("meeting_id", meetingID.String()),
			zap.Int("count", len(tasks)),
		)
	}

	ids := make([]uuid.UUID, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	return ids, nil
}

// resolveAssignees maps model-returned names to roster participants. A name
// that resolves to zero or multiple participants is dropped with a warning,
// never guessed.
func (x *Extractor) resolveAssignees(names []string, roster []*entities.Participant) []entities.Participant {
	assignees := make([]entities.Participant, 0, len(names))
	for _, name := range names {
		matches := matchParticipant(name, roster)
		if len(matches) == 1 {
			assignees = append(assignees, *matches[0])
			continue
		}
		if x.logger != nil {
			x.logger.Warn("dropping unresolvable assignee name",
				zap.String("name", name),
				zap.Int("candidates", len(matches)),
			)
		}
	}
	return assignees
}

// matchParticipant finds roster entries whose name or alias folds to the
// given name. Falls back to a first-name match when nothing folds exactly.
func matchParticipant(name string, roster []*entities.Participant) []*entities.Participant {
	folded := normalize.Fold(name)
	if folded == "" {
		return nil
	}

	var exact []*entities.Participant
	for _, p := range roster {
		for _, candidate := range p.AllNames() {
			if normalize.Fold(candidate) == folded {
				exact = append(exact, p)
				break
			}
		}
	}
	if len(exact) > 0 {
		return exact
	}

	var partial []*entities.Participant
	for _, p := range roster {
		first, _, _ := strings.Cut(normalize.Fold(p.Name), " ")
		if first == folded {
			partial = append(partial, p)
		}
	}
	return partial
}

func buildExtractionPrompt(transcript string, roster []*entities.Participant) string {
	var b strings.Builder
	b.WriteString("Participant roster:\n")
	for _, p := range roster {
		b.WriteString("- ")
		b.WriteString(p.Name)
		if len(p.Aliases) > 0 {
			b.WriteString(" (also known as: ")
			b.WriteString(strings.Join(p.Aliases, ", "))
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	b.WriteString("\nTranscript:\n")
	b.WriteString(transcript)
	return b.String()
}
