package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-memory Store. It backs development runs without a
// database and the test suites.
type Memory struct {
	mu           sync.RWMutex
	applications map[string]*Application
	feedback     map[string]*Feedback
	learning     map[string]*LearningRecord
	candidates   map[string]*CandidateProfile
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		applications: make(map[string]*Application),
		feedback:     make(map[string]*Feedback),
		learning:     make(map[string]*LearningRecord),
		candidates:   make(map[string]*CandidateProfile),
	}
}

func (m *Memory) SaveApplication(_ context.Context, app *Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = time.Now()
	}
	stored := *app
	m.applications[app.ID] = &stored
	return nil
}

func (m *Memory) ApplicationByID(_ context.Context, id string) (*Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, ok := m.applications[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *app
	return &copied, nil
}

func (m *Memory) Applications(_ context.Context) ([]*Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	apps := make([]*Application, 0, len(m.applications))
	for _, app := range m.applications {
		copied := *app
		apps = append(apps, &copied)
	}
	sortApplications(apps)
	return apps, nil
}

func (m *Memory) ApplicationsByCandidate(_ context.Context, candidateID string) ([]*Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var apps []*Application
	for _, app := range m.applications {
		if app.CandidateID == candidateID {
			copied := *app
			apps = append(apps, &copied)
		}
	}
	sortApplications(apps)
	return apps, nil
}

func (m *Memory) PendingApplications(_ context.Context) ([]*Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var apps []*Application
	for _, app := range m.applications {
		if app.Status == StatusPending {
			copied := *app
			apps = append(apps, &copied)
		}
	}
	sortApplications(apps)
	return apps, nil
}

func (m *Memory) UpdateApplicationStatus(_ context.Context, id, status, recruiterID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.applications[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	app.Status = status
	app.RecruiterID = recruiterID
	app.ReviewedAt = &now
	return nil
}

func (m *Memory) SaveFeedback(_ context.Context, fb *Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now()
	}
	stored := *fb
	m.feedback[fb.ID] = &stored
	return nil
}

func (m *Memory) FeedbackByApplication(_ context.Context, applicationID string) (*Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, fb := range m.feedback {
		if fb.ApplicationID == applicationID {
			copied := *fb
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FeedbackByCandidate(_ context.Context, candidateID string) ([]*Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Feedback
	for _, fb := range m.feedback {
		if fb.CandidateID == candidateID {
			copied := *fb
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) SaveLearningRecord(_ context.Context, rec *LearningRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	stored := *rec
	m.learning[rec.ID] = &stored
	return nil
}

func (m *Memory) LearningRecordsByCandidate(_ context.Context, candidateID string) ([]*LearningRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*LearningRecord
	for _, rec := range m.learning {
		if rec.CandidateID == candidateID {
			copied := *rec
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateCandidateProfile(_ context.Context, cp *CandidateProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp.UpdatedAt = time.Now()
	stored := *cp
	m.candidates[cp.CandidateID] = &stored
	return nil
}

func (m *Memory) CandidateProfileByID(_ context.Context, candidateID string) (*CandidateProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cp, ok := m.candidates[candidateID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *cp
	return &copied, nil
}

func sortApplications(apps []*Application) {
	sort.Slice(apps, func(i, j int) bool { return apps[i].AppliedAt.After(apps[j].AppliedAt) })
}
