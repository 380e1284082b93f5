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

const valuableResponse = `{"valuable": true, "recommendation": "Call the supplier and confirm delivery dates.", "email_draft": "Hello, could you confirm the delivery dates?"}`

func newTestEngine(llm *fakeLLM) (*Engine, *fakeTaskRepo, *fakeRecRepo) {
	meetings := newFakeMeetingRepo()
	tasks := newFakeTaskRepo()
	recs := newFakeRecRepo()
	engine := NewEngine(meetings, tasks, recs, llm, nil)
	return engine, tasks, recs
}

func TestGenerate_TwiceYieldsOneRow(t *testing.T) {
	llm := &fakeLLM{response: valuableResponse}
	engine, tasks, recs := newTestEngine(llm)

	task := entities.NewTask(nil, "contact the supplier")
	require.NoError(t, tasks.Create(context.Background(), task))

	outcome, rec, err := engine.Generate(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeGenerated, outcome)
	require.NotNil(t, rec)

	outcome, rec, err = engine.Generate(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyDone, outcome)
	require.NotNil(t, rec)

	assert.Equal(t, 1, recs.rowCount())
	assert.Equal(t, 1, llm.callCount())

	stored, _ := tasks.GetByID(context.Background(), task.ID)
	assert.Equal(t, entities.RecommendationDone, stored.RecommendationState)
}

func TestGenerate_SkipWhenNotValuable(t *testing.T) {
	llm := &fakeLLM{response: `{"valuable": false, "recommendation": ""}`}
	engine, tasks, recs := newTestEngine(llm)

	task := entities.NewTask(nil, "say thanks in the channel")
	require.NoError(t, tasks.Create(context.Background(), task))

	outcome, rec, err := engine.Generate(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Nil(t, rec)
	assert.Equal(t, 0, recs.rowCount())

	stored, _ := tasks.GetByID(context.Background(), task.ID)
	assert.Equal(t, entities.RecommendationSkipped, stored.RecommendationState)

	// Skipped tasks never reach the backend again
	outcome, _, err = engine.Generate(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Equal(t, 1, llm.callCount())
}

func TestGenerate_RepairsDanglingRow(t *testing.T) {
	llm := &fakeLLM{response: valuableResponse}
	engine, tasks, recs := newTestEngine(llm)

	task := entities.NewTask(nil, "book the demo room")
	require.NoError(t, tasks.Create(context.Background(), task))

	// Simulate a crash between row insert and flag update: the row exists
	// but the task is still pending.
	existing := entities.NewRecommendation(task.ID, "already persisted", nil)
	inserted, err := recs.InsertIfAbsent(context.Background(), existing)
	require.NoError(t, err)
	require.True(t, inserted)

	outcome, rec, err := engine.Generate(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyDone, outcome)
	require.NotNil(t, rec)
	assert.Equal(t, "already persisted", rec.RecommendationText)

	// No backend call happened; the flag was repaired.
	assert.Equal(t, 0, llm.callCount())
	stored, _ := tasks.GetByID(context.Background(), task.ID)
	assert.Equal(t, entities.RecommendationDone, stored.RecommendationState)
}

func TestGenerate_BackendFailureLeavesPending(t *testing.T) {
	llm := &fakeLLM{err: &pkgai.InferenceError{Status: http.StatusBadRequest, Message: "bad prompt"}}
	engine, tasks, recs := newTestEngine(llm)

	task := entities.NewTask(nil, "prepare the quarterly report")
	require.NoError(t, tasks.Create(context.Background(), task))

	_, _, err := engine.Generate(context.Background(), task.ID)
	require.Error(t, err)

	assert.Equal(t, 0, recs.rowCount())
	stored, _ := tasks.GetByID(context.Background(), task.ID)
	assert.Equal(t, entities.RecommendationPending, stored.RecommendationState)
}

func TestGenerate_TaskNotFound(t *testing.T) {
	llm := &fakeLLM{response: valuableResponse}
	engine, _, _ := newTestEngine(llm)

	_, _, err := engine.Generate(context.Background(), entities.NewTask(nil, "ghost").ID)
	require.Error(t, err)
}
