package pipeline

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	pkgai "github.com/johnquangdev/meeting-actions/pkg/ai"
)

func rosterFixture() []*entities.Participant {
	alice := &entities.Participant{ID: entities.NewMeeting("x").ID, Name: "Alice Dupont", Email: "alice@example.com"}
	alice.Aliases = []string{"Alice D."}
	bob := &entities.Participant{ID: entities.NewMeeting("y").ID, Name: "Benoît Martin", Email: "benoit@example.com"}
	return []*entities.Participant{alice, bob}
}

func newTestExtractor(llm *fakeLLM, roster []*entities.Participant) (*Extractor, *fakeMeetingRepo, *fakeTaskRepo) {
	meetings := newFakeMeetingRepo()
	tasks := newFakeTaskRepo()
	extractor := NewExtractor(meetings, &fakeParticipantRepo{roster: roster}, tasks, llm, nil)
	return extractor, meetings, tasks
}

func seedMeeting(t *testing.T, meetings *fakeMeetingRepo) *entities.Meeting {
	t.Helper()
	meeting := entities.NewMeeting("supplier sync")
	transcript := "Alice will contact the supplier. Benoit prepares the slides."
	summary := "Discussed supplier follow-up."
	meeting.Transcript = &transcript
	meeting.Summary = &summary
	require.NoError(t, meetings.Create(context.Background(), meeting))
	return meeting
}

func TestExtractTasks_ResolvesRosterVariants(t *testing.T) {
	llm := &fakeLLM{response: `{"tasks": [
		{"description": "Contact the supplier about delivery dates", "assigned_names": ["Alice D."]},
		{"description": "Prepare the slides", "assigned_names": ["benoit martin"]}
	]}`}
	extractor, meetings, tasks := newTestExtractor(llm, rosterFixture())
	meeting := seedMeeting(t, meetings)

	ids, err := extractor.ExtractTasks(context.Background(), meeting.ID)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	first, _ := tasks.GetByID(context.Background(), ids[0])
	require.Len(t, first.Assignees, 1)
	assert.Equal(t, "Alice Dupont", first.Assignees[0].Name)

	// Diacritic-insensitive match on the full name
	second, _ := tasks.GetByID(context.Background(), ids[1])
	require.Len(t, second.Assignees, 1)
	assert.Equal(t, "Benoît Martin", second.Assignees[0].Name)
}

func TestExtractTasks_DropsUnresolvableNames(t *testing.T) {
	llm := &fakeLLM{response: `{"tasks": [
		{"description": "Order new laptops", "assigned_names": ["Charlie"]}
	]}`}
	extractor, meetings, tasks := newTestExtractor(llm, rosterFixture())
	meeting := seedMeeting(t, meetings)

	ids, err := extractor.ExtractTasks(context.Background(), meeting.ID)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	task, _ := tasks.GetByID(context.Background(), ids[0])
	assert.Empty(t, task.Assignees)
}

func TestExtractTasks_MalformedOutputPersistsNothing(t *testing.T) {
	llm := &fakeLLM{response: `I could not find any tasks, sorry!`}
	extractor, meetings, tasks := newTestExtractor(llm, rosterFixture())
	meeting := seedMeeting(t, meetings)

	_, err := extractor.ExtractTasks(context.Background(), meeting.ID)
	require.Error(t, err)

	pending, _ := tasks.ListPending(context.Background(), nil)
	assert.Empty(t, pending)
}

func TestExtractTasks_BackendFailure(t *testing.T) {
	llm := &fakeLLM{err: &pkgai.InferenceError{Status: http.StatusBadRequest, Message: "nope"}}
	extractor, meetings, tasks := newTestExtractor(llm, rosterFixture())
	meeting := seedMeeting(t, meetings)

	_, err := extractor.ExtractTasks(context.Background(), meeting.ID)
	require.Error(t, err)

	pending, _ := tasks.ListPending(context.Background(), nil)
	assert.Empty(t, pending)
}

func TestExtractTasks_MissingTranscript(t *testing.T) {
	llm := &fakeLLM{}
	extractor, meetings, _ := newTestExtractor(llm, rosterFixture())

	meeting := entities.NewMeeting("no transcript yet")
	require.NoError(t, meetings.Create(context.Background(), meeting))

	_, err := extractor.ExtractTasks(context.Background(), meeting.ID)
	require.Error(t, err)
	assert.Equal(t, 0, llm.callCount())
}

func TestParseTaskList_Fenced(t *testing.T) {
	parser := NewParser()

	tasks, err := parser.ParseTaskList("```json\n{\"tasks\": [{\"description\": \"Do the thing\", \"assigned_names\": []}]}\n```")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Do the thing", tasks[0].Description)
}

func TestParseTaskList_EmptyDescriptionFailsBatch(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParseTaskList(`{"tasks": [{"description": "", "assigned_names": []}]}`)
	require.Error(t, err)
}
