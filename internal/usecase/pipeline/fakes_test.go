package pipeline

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-actions/internal/domain/entities"
)

type fakeLLM struct {
	mu       sync.Mutex
	calls    int
	response string
	err      error
	// fn, when set, overrides response/err per call
	fn func(system, user string) (string, error)
}

func (f *fakeLLM) Infer(_ context.Context, system, user string, _ float64, _ int) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(system, user)
	}
	return f.response, f.err
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

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

func (r *fakeMeetingRepo) GetByTranscriptJobID(_ context.Context, jobID string) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.meetings {
		if m.TranscriptJobID != nil && *m.TranscriptJobID == jobID {
			return m, nil
		}
	}
	return nil, nil
}

func (r *fakeMeetingRepo) SetAudioObject(_ context.Context, id uuid.UUID, objectKey, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.meetings[id]; ok {
		m.AudioObjectKey = &objectKey
		m.TranscriptJobID = &jobID
	}
	return nil
}

func (r *fakeMeetingRepo) SaveRawTranscript(_ context.Context, id uuid.UUID, raw string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.meetings[id]; ok {
		m.RawTranscript = &raw
	}
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

func (r *fakeMeetingRepo) UpdateSummary(_ context.Context, id uuid.UUID, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.meetings[id]; ok {
		m.Summary = &summary
	}
	return nil
}

type fakeParticipantRepo struct {
	roster    []*entities.Participant
	listCalls int
}

func (r *fakeParticipantRepo) ListAll(_ context.Context) ([]*entities.Participant, error) {
	r.listCalls++
	return r.roster, nil
}

func (r *fakeParticipantRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Participant, error) {
	for _, p := range r.roster {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*entities.Task
	// batchErr, when set, fails CreateBatch
	batchErr error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*entities.Task)}
}

func (r *fakeTaskRepo) CreateBatch(_ context.Context, tasks []*entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.batchErr != nil {
		return r.batchErr
	}
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
	recs map[uuid.UUID]*entities.Recommendation // keyed by todo_id
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

func (r *fakeRecRepo) rowCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recs)
}
