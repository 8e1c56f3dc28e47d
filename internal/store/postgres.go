package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Postgres is the database-backed Store.
type Postgres struct {
	db *gorm.DB
}

// NewPostgres connects to the database and migrates the schema.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := db.AutoMigrate(&Application{}, &Feedback{}, &LearningRecord{}, &CandidateProfile{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &Postgres{db: db}, nil
}

func (p *Postgres) SaveApplication(ctx context.Context, app *Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = time.Now()
	}
	return p.db.WithContext(ctx).Create(app).Error
}

func (p *Postgres) ApplicationByID(ctx context.Context, id string) (*Application, error) {
	var app Application
	if err := p.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &app, nil
}

func (p *Postgres) Applications(ctx context.Context) ([]*Application, error) {
	var apps []*Application
	err := p.db.WithContext(ctx).
		Order("applied_at DESC").
		Find(&apps).Error
	return apps, err
}

func (p *Postgres) ApplicationsByCandidate(ctx context.Context, candidateID string) ([]*Application, error) {
	var apps []*Application
	err := p.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("applied_at DESC").
		Find(&apps).Error
	return apps, err
}

func (p *Postgres) PendingApplications(ctx context.Context) ([]*Application, error) {
	var apps []*Application
	err := p.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("applied_at DESC").
		Find(&apps).Error
	return apps, err
}

func (p *Postgres) UpdateApplicationStatus(ctx context.Context, id, status, recruiterID string) error {
	res := p.db.WithContext(ctx).Model(&Application{}).Where("id = ?", id).Updates(map[string]any{
		"status":       status,
		"recruiter_id": recruiterID,
		"reviewed_at":  time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SaveFeedback(ctx context.Context, fb *Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now()
	}
	return p.db.WithContext(ctx).Create(fb).Error
}

func (p *Postgres) FeedbackByApplication(ctx context.Context, applicationID string) (*Feedback, error) {
	var fb Feedback
	if err := p.db.WithContext(ctx).First(&fb, "application_id = ?", applicationID).Error; err != nil {
		return nil, translateErr(err)
	}
	return &fb, nil
}

func (p *Postgres) FeedbackByCandidate(ctx context.Context, candidateID string) ([]*Feedback, error) {
	var out []*Feedback
	err := p.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (p *Postgres) SaveLearningRecord(ctx context.Context, rec *LearningRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	return p.db.WithContext(ctx).Create(rec).Error
}

func (p *Postgres) LearningRecordsByCandidate(ctx context.Context, candidateID string) ([]*LearningRecord, error) {
	var out []*LearningRecord
	err := p.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (p *Postgres) UpdateCandidateProfile(ctx context.Context, cp *CandidateProfile) error {
	cp.UpdatedAt = time.Now()
	return p.db.WithContext(ctx).Save(cp).Error
}

func (p *Postgres) CandidateProfileByID(ctx context.Context, candidateID string) (*CandidateProfile, error) {
	var cp CandidateProfile
	if err := p.db.WithContext(ctx).First(&cp, "candidate_id = ?", candidateID).Error; err != nil {
		return nil, translateErr(err)
	}
	return &cp, nil
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
