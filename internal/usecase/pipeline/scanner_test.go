package pipeline

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
	pkgai "github.com/johnquangdev/meeting-actions/pkg/ai"
)

func TestRetryMissing_Converges(t *testing.T) {
	llm := &fakeLLM{response: valuableResponse}
	engine, tasks, recs := newTestEngine(llm)
	participants := &fakeParticipantRepo{}
	scanner := NewScanner(tasks, participants, engine, time.Minute, time.Minute, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, tasks.Create(context.Background(), entities.NewTask(nil, "pending task")))
	}

	result, err := scanner.RetryMissing(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Attempted)
	assert.Equal(t, 3, result.Repaired)
	assert.Equal(t, 3, recs.rowCount())

	pending, _ := tasks.ListPending(context.Background(), nil)
	assert.Empty(t, pending)

	// Roster was fetched once for the whole sweep
	assert.Equal(t, 1, participants.listCalls)
}

func TestRetryMissing_ContinuesOnError(t *testing.T) {
	llm := &fakeLLM{fn: func(_, user string) (string, error) {
		if strings.Contains(user, "poison") {
			return "", &pkgai.InferenceError{Status: http.StatusBadRequest, Message: "bad"}
		}
		return valuableResponse, nil
	}}
	engine, tasks, _ := newTestEngine(llm)
	scanner := NewScanner(tasks, &fakeParticipantRepo{}, engine, time.Minute, time.Minute, nil)

	require.NoError(t, tasks.Create(context.Background(), entities.NewTask(nil, "poison task")))
	require.NoError(t, tasks.Create(context.Background(), entities.NewTask(nil, "healthy task")))

	result, err := scanner.RetryMissing(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 1, result.Repaired)

	// The failing task stays pending for the next sweep
	pending, _ := tasks.ListPending(context.Background(), nil)
	require.Len(t, pending, 1)
	assert.Contains(t, pending[0].Description, "poison")
}

func TestRetryMissing_ScopedToMeeting(t *testing.T) {
	llm := &fakeLLM{response: valuableResponse}
	engine, tasks, _ := newTestEngine(llm)
	scanner := NewScanner(tasks, &fakeParticipantRepo{}, engine, time.Minute, time.Minute, nil)

	meetingID := entities.NewMeeting("weekly sync").ID
	inMeeting := entities.NewTask(&meetingID, "task in meeting")
	outside := entities.NewTask(nil, "task outside")
	require.NoError(t, tasks.Create(context.Background(), inMeeting))
	require.NoError(t, tasks.Create(context.Background(), outside))

	result, err := scanner.RetryMissing(context.Background(), &meetingID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempted)

	stored, _ := tasks.GetByID(context.Background(), outside.ID)
	assert.Equal(t, entities.RecommendationPending, stored.RecommendationState)
}

func TestScanner_StartStop(t *testing.T) {
	llm := &fakeLLM{response: valuableResponse}
	engine, tasks, _ := newTestEngine(llm)
	scanner := NewScanner(tasks, &fakeParticipantRepo{}, engine, 10*time.Millisecond, time.Second, nil)

	scanner.Start()
	// Starting twice is a no-op
	scanner.Start()
	time.Sleep(30 * time.Millisecond)
	scanner.Stop()
	// Stopping twice is a no-op
	scanner.Stop()
}
