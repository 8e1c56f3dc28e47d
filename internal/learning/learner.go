// Package learning adjusts recommendation scores from recruiter feedback.
// Each review nudges per-skill, per-company, per-location and per-sector
// weights, which then blend into an improved score for every posting.
package learning

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/prasukj7-arch/internmatch/internal/catalog"
	"github.com/prasukj7-arch/internmatch/internal/profile"
	"github.com/prasukj7-arch/internmatch/internal/store"
)

const (
	learningRate = 0.1
	// discountFactor is reserved for multi-step credit assignment.
	discountFactor = 0.9

	neutralWeight = 0.5

	skillBlend    = 0.4
	companyBlend  = 0.2
	locationBlend = 0.2
	sectorBlend   = 0.2

	// A skill the candidate lacks still contributes a fraction of its
	// learned weight, so gaps in high-value skills hurt more.
	missingSkillFactor = 0.3
)

// Learner holds the weight tables and applies feedback to them. It is safe
// for concurrent use.
type Learner struct {
	mu            sync.RWMutex
	skillWeights  map[string]float64
	companyPrefs  map[string]float64
	locationPrefs map[string]float64
	sectorPrefs   map[string]float64
	processed     int

	store  store.Store
	logger *zap.Logger
}

// NewLearner returns a learner with empty weight tables.
func NewLearner(st store.Store, logger *zap.Logger) *Learner {
	return &Learner{
		skillWeights:  make(map[string]float64),
		companyPrefs:  make(map[string]float64),
		locationPrefs: make(map[string]float64),
		sectorPrefs:   make(map[string]float64),
		store:         st,
		logger:        logger,
	}
}

// Reward converts a recruiter decision and 1-10 score into a signed reward.
// Acceptances with high scores reward the most; rejections with low scores
// penalize the most.
func Reward(decision string, score int) float64 {
	if decision == store.DecisionAccepted {
		return 1.0 * (float64(score) / 10.0)
	}
	return -0.5 * (float64(10-score) / 10.0)
}

// ProcessFeedback folds one recruiter review into the weight tables and
// records the learning pass. It reports whether the feedback was applied;
// a missing application is not fatal, it just yields false.
func (l *Learner) ProcessFeedback(ctx context.Context, fb *store.Feedback) bool {
	app, err := l.store.ApplicationByID(ctx, fb.ApplicationID)
	if err != nil {
		l.logger.Error("application not found for feedback",
			zap.String("application_id", fb.ApplicationID), zap.Error(err))
		return false
	}

	if fb.CandidateID == "" {
		fb.CandidateID = app.CandidateID
	}

	reward := Reward(fb.Decision, fb.Score)

	record := &store.LearningRecord{
		CandidateID:       app.CandidateID,
		ApplicationID:     app.ID,
		FeedbackID:        fb.ID,
		OriginalScore:     skillOverlap(&app.Profile, &app.Posting),
		FeedbackScore:     fb.Score,
		Reward:            reward,
		Decision:          fb.Decision,
		SkillImprovements: fb.AreasForImprovement,
	}
	if err := l.store.SaveLearningRecord(ctx, record); err != nil {
		l.logger.Warn("learning record not persisted", zap.Error(err))
	}

	l.apply(&app.Posting, reward, fb.SkillGaps, fb.Strengths)

	if err := l.updateCandidateProfile(ctx, app, fb); err != nil {
		l.logger.Warn("candidate profile not updated",
			zap.String("candidate_id", app.CandidateID), zap.Error(err))
	}

	l.logger.Info("feedback processed",
		zap.String("application_id", app.ID),
		zap.String("decision", fb.Decision),
		zap.Int("score", fb.Score),
		zap.Float64("reward", reward))
	return true
}

func (l *Learner) apply(posting *catalog.Posting, reward float64, skillGaps, strengths []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, skill := range skillGaps {
		l.skillWeights[strings.ToLower(skill)] += learningRate * reward
	}
	// Strengths move at half rate: they confirm rather than correct.
	for _, skill := range strengths {
		l.skillWeights[strings.ToLower(skill)] += learningRate * reward * 0.5
	}

	if company := strings.ToLower(posting.Company); company != "" {
		l.companyPrefs[company] += learningRate * reward
	}
	if location := strings.ToLower(posting.Location); location != "" {
		l.locationPrefs[location] += learningRate * reward
	}
	if sector := strings.ToLower(posting.Sector); sector != "" {
		l.sectorPrefs[sector] += learningRate * reward
	}
	l.processed++
}

func (l *Learner) updateCandidateProfile(ctx context.Context, app *store.Application, fb *store.Feedback) error {
	cp, err := l.store.CandidateProfileByID(ctx, app.CandidateID)
	if err != nil {
		cp = &store.CandidateProfile{CandidateID: app.CandidateID, Profile: app.Profile}
	}

	skills := strings.Split(cp.Profile.Skills, ", ")
	for _, strength := range fb.Strengths {
		if !containsFold(skills, strength) {
			skills = append(skills, strength)
		}
	}
	cp.Profile.Skills = strings.Join(skills, ", ")
	cp.SkillGaps = fb.SkillGaps
	cp.Strengths = fb.Strengths
	cp.AreasForImprovement = fb.AreasForImprovement

	return l.store.UpdateCandidateProfile(ctx, cp)
}

// ScoredPosting pairs a posting with its learned score.
type ScoredPosting struct {
	Posting        *catalog.Posting
	Score          float64
	SkillAlignment float64
	Confidence     string
}

// ScoreImproved blends learned weights into a score in [0, 1] for one
// posting.
func (l *Learner) ScoreImproved(p *profile.Profile, posting *catalog.Posting) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.scoreLocked(p, posting)
}

func (l *Learner) scoreLocked(p *profile.Profile, posting *catalog.Posting) float64 {
	candidateSkills := p.SkillList()
	requiredSkills := lowered(posting.SkillList())

	skillScore := neutralWeight
	if len(requiredSkills) > 0 {
		var sum float64
		for _, skill := range requiredSkills {
			if containsFold(candidateSkills, skill) {
				sum += weightOr(l.skillWeights, skill, 1.0)
			} else {
				sum += weightOr(l.skillWeights, skill, neutralWeight) * missingSkillFactor
			}
		}
		skillScore = sum / float64(len(requiredSkills))
	}

	companyScore := weightOr(l.companyPrefs, strings.ToLower(posting.Company), neutralWeight)
	locationScore := weightOr(l.locationPrefs, strings.ToLower(posting.Location), neutralWeight)
	sectorScore := weightOr(l.sectorPrefs, strings.ToLower(posting.Sector), neutralWeight)

	final := skillScore*skillBlend +
		companyScore*companyBlend +
		locationScore*locationBlend +
		sectorScore*sectorBlend

	return clamp01(final)
}

// RankImproved scores the whole catalog and returns the top n postings by
// learned score. Ties keep catalog order.
func (l *Learner) RankImproved(p *profile.Profile, c *catalog.Catalog, n int) []ScoredPosting {
	l.mu.RLock()
	defer l.mu.RUnlock()

	scored := make([]ScoredPosting, 0, c.Len())
	for _, posting := range c.Postings {
		alignment := skillOverlap(p, posting)
		scored = append(scored, ScoredPosting{
			Posting:        posting,
			Score:          l.scoreLocked(p, posting),
			SkillAlignment: alignment,
			Confidence:     l.confidenceLocked(alignment),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if n < len(scored) {
		scored = scored[:n]
	}
	return scored
}

// HasSignal reports whether any feedback has shaped the weight tables yet.
// Callers fall back to the standard recommendation path on a cold start.
func (l *Learner) HasSignal() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.processed > 0
}

func (l *Learner) confidenceLocked(alignment float64) string {
	switch {
	case alignment > 0.8 && l.processed > 3:
		return "high"
	case alignment > 0.6 && l.processed > 1:
		return "medium"
	default:
		return "low"
	}
}

type state struct {
	SkillWeights  map[string]float64 `json:"skill_weights"`
	CompanyPrefs  map[string]float64 `json:"company_preferences"`
	LocationPrefs map[string]float64 `json:"location_preferences"`
	SectorPrefs   map[string]float64 `json:"sector_preferences"`
	Processed     int                `json:"processed"`
}

// Snapshot serializes the weight tables, for persistence across restarts.
func (l *Learner) Snapshot() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return json.Marshal(state{
		SkillWeights:  l.skillWeights,
		CompanyPrefs:  l.companyPrefs,
		LocationPrefs: l.locationPrefs,
		SectorPrefs:   l.sectorPrefs,
		Processed:     l.processed,
	})
}

// Restore replaces the weight tables with a previous Snapshot.
func (l *Learner) Restore(data []byte) error {
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.skillWeights = orEmpty(s.SkillWeights)
	l.companyPrefs = orEmpty(s.CompanyPrefs)
	l.locationPrefs = orEmpty(s.LocationPrefs)
	l.sectorPrefs = orEmpty(s.SectorPrefs)
	l.processed = s.Processed
	return nil
}

func skillOverlap(p *profile.Profile, posting *catalog.Posting) float64 {
	candidateSkills := p.SkillList()
	requiredSkills := lowered(posting.SkillList())
	if len(requiredSkills) == 0 || len(candidateSkills) == 0 {
		return neutralWeight
	}

	overlap := 0
	for _, skill := range requiredSkills {
		if containsFold(candidateSkills, skill) {
			overlap++
		}
	}
	return float64(overlap) / float64(len(requiredSkills))
}

func weightOr(weights map[string]float64, key string, fallback float64) float64 {
	if w, ok := weights[key]; ok {
		return w
	}
	return fallback
}

func lowered(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strings.ToLower(item)
	}
	return out
}

func containsFold(items []string, target string) bool {
	for _, item := range items {
		if strings.EqualFold(strings.TrimSpace(item), target) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func orEmpty(m map[string]float64) map[string]float64 {
	if m == nil {
		return make(map[string]float64)
	}
	return m
}
