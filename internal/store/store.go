// Package store persists applications, recruiter feedback and learning
// records. Two implementations are provided: a Postgres-backed store for
// deployments and an in-memory store for development and tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/prasukj7-arch/internmatch/internal/catalog"
	"github.com/prasukj7-arch/internmatch/internal/profile"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Application statuses.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Recruiter decisions. They double as the terminal application statuses.
const (
	DecisionAccepted = StatusAccepted
	DecisionRejected = StatusRejected
)

// Application records a candidate applying for an internship, with a
// snapshot of both the profile and the posting as they were at apply time.
// The snapshots keep feedback processing stable across catalog reloads.
type Application struct {
	ID           string          `gorm:"primaryKey" json:"id"`
	CandidateID  string          `gorm:"index" json:"candidate_id"`
	InternshipID string          `json:"internship_id"`
	Company      string          `json:"company_name"`
	Title        string          `json:"internship_title"`
	Profile      profile.Profile `gorm:"serializer:json" json:"candidate_profile"`
	Posting      catalog.Posting `gorm:"serializer:json" json:"internship_details"`
	Status       string          `gorm:"index" json:"status"`
	RecruiterID  string          `json:"recruiter_id,omitempty"`
	AppliedAt    time.Time       `json:"applied_at"`
	ReviewedAt   *time.Time      `json:"reviewed_at,omitempty"`
}

// Feedback is a recruiter's review of an application.
type Feedback struct {
	ID                  string    `gorm:"primaryKey" json:"id"`
	ApplicationID       string    `gorm:"index" json:"application_id"`
	CandidateID         string    `gorm:"index" json:"candidate_id"`
	RecruiterID         string    `json:"recruiter_id"`
	Decision            string    `json:"decision"`
	Text                string    `json:"feedback_text"`
	Strengths           []string  `gorm:"serializer:json" json:"strengths"`
	AreasForImprovement []string  `gorm:"serializer:json" json:"areas_for_improvement"`
	SkillGaps           []string  `gorm:"serializer:json" json:"skill_gaps"`
	Score               int       `json:"recommendation_score"`
	CreatedAt           time.Time `json:"created_at"`
}

// LearningRecord is the audit trail of one feedback pass through the
// learner: the reward applied and the scores before and after.
type LearningRecord struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	CandidateID       string    `gorm:"index" json:"candidate_id"`
	ApplicationID     string    `json:"application_id"`
	FeedbackID        string    `json:"feedback_id"`
	OriginalScore     float64   `json:"original_recommendation_score"`
	FeedbackScore     int       `json:"feedback_score"`
	Reward            float64   `json:"reward"`
	Decision          string    `json:"decision"`
	SkillImprovements []string  `gorm:"serializer:json" json:"skill_improvements"`
	CreatedAt         time.Time `json:"created_at"`
}

// CandidateProfile is the evolving view of a candidate, updated as
// recruiter feedback accumulates.
type CandidateProfile struct {
	CandidateID         string          `gorm:"primaryKey" json:"candidate_id"`
	Profile             profile.Profile `gorm:"serializer:json" json:"profile"`
	SkillGaps           []string        `gorm:"serializer:json" json:"skill_gaps_identified"`
	Strengths           []string        `gorm:"serializer:json" json:"strengths_identified"`
	AreasForImprovement []string        `gorm:"serializer:json" json:"areas_for_improvement"`
	UpdatedAt           time.Time       `json:"last_updated"`
}

// Store is the persistence boundary. Implementations must be safe for
// concurrent use.
type Store interface {
	SaveApplication(ctx context.Context, app *Application) error
	ApplicationByID(ctx context.Context, id string) (*Application, error)
	Applications(ctx context.Context) ([]*Application, error)
	ApplicationsByCandidate(ctx context.Context, candidateID string) ([]*Application, error)
	PendingApplications(ctx context.Context) ([]*Application, error)
	UpdateApplicationStatus(ctx context.Context, id, status, recruiterID string) error

	SaveFeedback(ctx context.Context, fb *Feedback) error
	FeedbackByApplication(ctx context.Context, applicationID string) (*Feedback, error)
	FeedbackByCandidate(ctx context.Context, candidateID string) ([]*Feedback, error)

	SaveLearningRecord(ctx context.Context, rec *LearningRecord) error
	LearningRecordsByCandidate(ctx context.Context, candidateID string) ([]*LearningRecord, error)

	UpdateCandidateProfile(ctx context.Context, cp *CandidateProfile) error
	CandidateProfileByID(ctx context.Context, candidateID string) (*CandidateProfile, error)
}
