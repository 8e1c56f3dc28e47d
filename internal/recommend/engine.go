// Package recommend ranks internship postings for a candidate profile.
//
// The engine folds over an ordered list of ranking tiers: a generative
// re-ranker backed by an external model, a similarity-only ranking over the
// TF-IDF index, and a static emergency list. Each tier's failure falls
// through to the next; only the exhaustion of every tier is an error, and
// the terminal tier performs no I/O so that is exceedingly rare.
package recommend

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/prasukj7-arch/internmatch/internal/catalog"
	"github.com/prasukj7-arch/internmatch/internal/logger"
	"github.com/prasukj7-arch/internmatch/internal/profile"
	"github.com/prasukj7-arch/internmatch/internal/similarity"
)

// Methods that can produce a result, recorded for monitoring and tests.
const (
	MethodPrimary   = "primary"
	MethodBackup    = "backup"
	MethodEmergency = "emergency_fallback"
)

const (
	// DefaultCount is the number of recommendations returned when the
	// caller does not ask for a specific amount.
	DefaultCount = 5

	// primaryPoolSize is how many similar postings are offered to the
	// generative re-ranker.
	primaryPoolSize = 15

	maxHighlightSkills = 5
)

// ErrExhausted is returned only when every ranking tier has failed.
var ErrExhausted = errors.New("all ranking tiers failed")

// Recommendation is one ranked output item.
type Recommendation struct {
	Rank                   int      `json:"rank"`
	Company                string   `json:"company"`
	Title                  string   `json:"title"`
	MatchScore             int      `json:"match_score"`
	Reasoning              string   `json:"reasoning"`
	SkillsToHighlight      []string `json:"skills_to_highlight"`
	Location               string   `json:"location"`
	Sector                 string   `json:"sector"`
	OpportunitiesAvailable int      `json:"opportunities_available"`
}

// Result is the outcome of one recommendation request.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	Method          string           `json:"method"`
	FallbackUsed    bool             `json:"fallback_used"`
	TotalAnalyzed   int              `json:"total_analyzed"`
}

// Attempt is a single ranking tier. Run either produces a full ranked list
// or an error, which the engine treats as a signal to fall through to the
// next tier, never as a request failure.
type Attempt interface {
	Name() string
	Method() string
	Run(ctx context.Context, req *request) ([]Recommendation, error)
}

// request carries the per-call state shared by all tiers.
type request struct {
	profile   *profile.Profile
	formatted string
	count     int
	catalog   *catalog.Catalog
	index     *similarity.Index
}

// snapshot pairs a loaded catalog with the index fitted over it. Reloads
// build a new snapshot and swap the pointer; readers never see a catalog
// and an index from different loads.
type snapshot struct {
	catalog *catalog.Catalog
	index   *similarity.Index
}

// Engine orchestrates the tiered ranking over the current catalog snapshot.
type Engine struct {
	current  atomic.Pointer[snapshot]
	attempts []Attempt
	logger   *zap.Logger
}

// NewEngine fits a similarity index over the catalog and assembles the tier
// chain. A nil generator disables the primary tier (the chain then starts
// at the similarity tier, exactly as when the generative collaborator is
// unavailable at request time).
func NewEngine(c *catalog.Catalog, generative Attempt, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}

	attempts := make([]Attempt, 0, 3)
	if generative != nil {
		attempts = append(attempts, generative)
	}
	attempts = append(attempts, &similarityAttempt{}, &emergencyAttempt{})

	e := &Engine{
		attempts: attempts,
		logger:   log,
	}
	e.Reload(c)

	return e
}

// Reload swaps in a freshly loaded catalog and a new index fitted over it.
// In-flight requests keep using the snapshot they started with.
func (e *Engine) Reload(c *catalog.Catalog) {
	e.current.Store(&snapshot{
		catalog: c,
		index:   similarity.Build(c.SearchableTexts()),
	})
}

// Catalog returns the currently loaded catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.current.Load().catalog
}

// Recommend produces a best-effort ranked list for the candidate. The
// profile must already be validated; n <= 0 falls back to DefaultCount.
func (e *Engine) Recommend(ctx context.Context, p *profile.Profile, n int) (*Result, error) {
	if n <= 0 {
		n = DefaultCount
	}

	snap := e.current.Load()
	req := &request{
		profile:   p,
		formatted: p.Format(),
		count:     n,
		catalog:   snap.catalog,
		index:     snap.index,
	}

	for i, attempt := range e.attempts {
		recs, err := attempt.Run(ctx, req)
		if err != nil {
			e.logger.Warn("ranking tier failed, falling through",
				zap.String(logger.FieldTier, attempt.Name()),
				zap.Error(err),
			)
			continue
		}

		method := attempt.Method()
		e.logger.Info("recommendations generated",
			zap.String(logger.FieldMethod, method),
			zap.String(logger.FieldTier, attempt.Name()),
			zap.Int("count", len(recs)),
			zap.Int("analyzed", snap.catalog.Len()),
			zap.Bool("fallback_used", i > 0 || method != MethodPrimary),
		)

		return &Result{
			Recommendations: recs,
			Method:          method,
			FallbackUsed:    method != MethodPrimary,
			TotalAnalyzed:   snap.catalog.Len(),
		}, nil
	}

	return nil, ErrExhausted
}

// GenerativeStatus reports whether a primary tier is configured and, when
// it is, the state of its circuit breaker.
func (e *Engine) GenerativeStatus() (bool, string) {
	for _, attempt := range e.attempts {
		if reporter, ok := attempt.(interface{ BreakerState() string }); ok {
			return true, reporter.BreakerState()
		}
	}
	return false, ""
}

// clampScore keeps a match score inside the documented [0,100] percentage
// range.
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// capSkills limits a highlight list to the documented maximum.
func capSkills(skills []string) []string {
	if len(skills) > maxHighlightSkills {
		return skills[:maxHighlightSkills]
	}
	return skills
}
