package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
)

type fakeMeetingRepo struct {
	mu       sync.Mutex
	meetings map[uuid.UUID]*entities.Meeting
}

func newFakeMeetingRepo() *fakeMeetingRepo {
	return &fakeMeetingRepo{meetings: make(map[uuid.UUID]*entities.Meeting)}
}

func (r *fakeMeetingRepo) Create(_ context.Context, m *entities.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meetings[m.ID] = m
	return nil
}

func (r *fakeMeetingRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meetings[id], nil
}

func (r *fakeMeetingRepo) GetByTranscriptJobID(_ context.Context, _ string) (*entities.Meeting, error) {
	return nil, nil
}

func (r *fakeMeetingRepo) SetAudioObject(_ context.Context, _ uuid.UUID, _, _ string) error {
	return nil
}

func (r *fakeMeetingRepo) SaveRawTranscript(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

func (r *fakeMeetingRepo) SaveProcessed(_ context.Context, id uuid.UUID, transcript, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.meetings[id]; ok {
		m.Transcript = &transcript
		m.Summary = &summary
	}
	return nil
}

func (r *fakeMeetingRepo) UpdateSummary(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*entities.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*entities.Task)}
}

func (r *fakeTaskRepo) CreateBatch(_ context.Context, tasks []*entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range tasks {
		r.tasks[t.ID] = t
	}
	return nil
}

func (r *fakeTaskRepo) Create(_ context.Context, task *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = task
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks[id], nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = task
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) ListPending(_ context.Context, meetingID *uuid.UUID) ([]*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*entities.Task
	for _, t := range r.tasks {
		if t.RecommendationState != entities.RecommendationPending {
			continue
		}
		if meetingID != nil && (t.MeetingID == nil || *t.MeetingID != *meetingID) {
			continue
		}
		pending = append(pending, t)
	}
	return pending, nil
}

func (r *fakeTaskRepo) ListByMeeting(_ context.Context, meetingID uuid.UUID) ([]*entities.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var tasks []*entities.Task
	for _, t := range r.tasks {
		if t.MeetingID != nil && *t.MeetingID == meetingID {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (r *fakeTaskRepo) CountByMeeting(_ context.Context, meetingID uuid.UUID) (int64, error) {
	tasks, _ := r.ListByMeeting(context.Background(), meetingID)
	return int64(len(tasks)), nil
}

func (r *fakeTaskRepo) UpdateRecommendationState(_ context.Context, taskID uuid.UUID, state entities.RecommendationState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[taskID]; ok {
		t.RecommendationState = state
	}
	return nil
}

type fakeRecRepo struct {
	mu   sync.Mutex
	recs map[uuid.UUID]*entities.Recommendation
}

func newFakeRecRepo() *fakeRecRepo {
	return &fakeRecRepo{recs: make(map[uuid.UUID]*entities.Recommendation)}
}

func (r *fakeRecRepo) InsertIfAbsent(_ context.Context, rec *entities.Recommendation) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.recs[rec.TodoID]; exists {
		return false, nil
	}
	r.recs[rec.TodoID] = rec
	return true, nil
}

func (r *fakeRecRepo) Upsert(_ context.Context, rec *entities.Recommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[rec.TodoID] = rec
	return nil
}

func (r *fakeRecRepo) GetByTaskID(_ context.Context, taskID uuid.UUID) (*entities.Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recs[taskID], nil
}

func (r *fakeRecRepo) CountByMeeting(_ context.Context, _ uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.recs)), nil
}

type fixture struct {
	tracker  *Tracker
	meetings *fakeMeetingRepo
	tasks    *fakeTaskRepo
	recs     *fakeRecRepo
	meeting  *entities.Meeting
}

func newFixture(t *testing.T, pollInterval, ceiling time.Duration) *fixture {
	t.Helper()
	meetings := newFakeMeetingRepo()
	tasks := newFakeTaskRepo()
	recs := newFakeRecRepo()
	meeting := entities.NewMeeting("planning")
	require.NoError(t, meetings.Create(context.Background(), meeting))
	return &fixture{
		tracker:  NewTracker(meetings, tasks, recs, pollInterval, ceiling, nil),
		meetings: meetings,
		tasks:    tasks,
		recs:     recs,
		meeting:  meeting,
	}
}

func (f *fixture) finishAnalysis(t *testing.T) {
	t.Helper()
	require.NoError(t, f.meetings.SaveProcessed(context.Background(), f.meeting.ID, "cleaned", "summary"))
}

func (f *fixture) addTasks(t *testing.T, n int, withRecommendation bool) {
	t.Helper()
	for i := 0; i < n; i++ {
		task := entities.NewTask(&f.meeting.ID, "task")
		require.NoError(t, f.tasks.Create(context.Background(), task))
		if withRecommendation {
			_, err := f.recs.InsertIfAbsent(context.Background(), entities.NewRecommendation(task.ID, "do it", nil))
			require.NoError(t, err)
		}
	}
}

func (f *fixture) recommendRemaining(t *testing.T) {
	t.Helper()
	tasks, err := f.tasks.ListByMeeting(context.Background(), f.meeting.ID)
	require.NoError(t, err)
	for _, task := range tasks {
		_, err := f.recs.InsertIfAbsent(context.Background(), entities.NewRecommendation(task.ID, "do it", nil))
		require.NoError(t, err)
	}
}

func TestSnapshot_AllRecommendationsDone(t *testing.T) {
	f := newFixture(t, 0, 0)
	f.finishAnalysis(t)
	f.addTasks(t, 3, true)

	progress, err := f.tracker.Snapshot(context.Background(), f.meeting.ID)
	require.NoError(t, err)

	assert.Equal(t, 100, progress.ProgressPercentage)
	assert.True(t, progress.IsComplete)
	assert.Equal(t, entities.StageComplete, progress.Stage)
}

func TestSnapshot_PartialRecommendations(t *testing.T) {
	f := newFixture(t, 0, 0)
	f.finishAnalysis(t)
	f.addTasks(t, 2, true)
	f.addTasks(t, 1, false)

	progress, err := f.tracker.Snapshot(context.Background(), f.meeting.ID)
	require.NoError(t, err)

	assert.False(t, progress.IsComplete)
	assert.GreaterOrEqual(t, progress.ProgressPercentage, 75)
	assert.Less(t, progress.ProgressPercentage, 100)
}

func TestSnapshot_Monotonic(t *testing.T) {
	f := newFixture(t, 0, 0)

	last := -1
	read := func() {
		progress, err := f.tracker.Snapshot(context.Background(), f.meeting.ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, progress.ProgressPercentage, last)
		last = progress.ProgressPercentage
	}

	read()
	f.finishAnalysis(t)
	read()
	f.addTasks(t, 2, false)
	read()
	f.addTasks(t, 1, true)
	read()
	f.addTasks(t, 2, true)
	read()
	f.recommendRemaining(t)
	read()
	assert.Equal(t, 100, last)
}

func TestSnapshot_UnknownMeeting(t *testing.T) {
	f := newFixture(t, 0, 0)

	_, err := f.tracker.Snapshot(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestWatch_CompletesWhenRecommendationsLand(t *testing.T) {
	f := newFixture(t, 5*time.Millisecond, time.Second)
	f.finishAnalysis(t)
	f.addTasks(t, 2, false)

	go func() {
		time.Sleep(20 * time.Millisecond)
		tasks, _ := f.tasks.ListByMeeting(context.Background(), f.meeting.ID)
		for _, task := range tasks {
			_, _ = f.recs.InsertIfAbsent(context.Background(), entities.NewRecommendation(task.ID, "done", nil))
		}
	}()

	outcome, progress, err := f.tracker.Watch(context.Background(), f.meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, WatchOutcomeComplete, outcome)
	assert.True(t, progress.IsComplete)
}

func TestWatch_ZeroTasksIsTerminal(t *testing.T) {
	f := newFixture(t, 5*time.Millisecond, time.Second)
	f.finishAnalysis(t)

	outcome, progress, err := f.tracker.Watch(context.Background(), f.meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, WatchOutcomeEmpty, outcome)
	assert.Equal(t, entities.StageAwaitingTasks, progress.Stage)
	assert.Equal(t, 0, progress.TaskCount)
}

func TestWatch_CeilingIsHardStop(t *testing.T) {
	f := newFixture(t, 5*time.Millisecond, 30*time.Millisecond)
	f.finishAnalysis(t)
	// One pending task that never gets a recommendation
	f.addTasks(t, 1, false)

	start := time.Now()
	outcome, progress, err := f.tracker.Watch(context.Background(), f.meeting.ID)
	require.NoError(t, err)

	assert.Equal(t, WatchOutcomeDeadline, outcome)
	assert.False(t, progress.IsComplete)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
