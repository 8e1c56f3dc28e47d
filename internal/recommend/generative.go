package recommend

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/prasukj7-arch/internmatch/internal/ai"
	"github.com/prasukj7-arch/internmatch/internal/catalog"
	"github.com/prasukj7-arch/internmatch/internal/utils"
)

//go:embed prompt.md
var promptTemplate string

const (
	// defaultRequestTimeout bounds the single generative call per request.
	defaultRequestTimeout = 30 * time.Second

	defaultMaxLogLength = 200

	// breakerThreshold consecutive generative failures open the breaker so
	// requests skip straight to the similarity tier for breakerCooldown.
	breakerThreshold = 3
	breakerCooldown  = time.Minute
)

// GenerativeConfig tunes the primary tier.
type GenerativeConfig struct {
	RequestTimeout time.Duration
	MaxLogLength   int
}

// generativeAttempt is the primary tier: a generative re-ranking of the
// most similar postings.
type generativeAttempt struct {
	generator ai.Generator
	breaker   *gobreaker.CircuitBreaker[[]Recommendation]
	timeout   time.Duration
	maxLogLen int
	logger    *zap.Logger
}

// NewGenerativeAttempt builds the primary ranking tier around the provided
// generator. Returns nil when no generator is configured, which drops the
// tier from the chain entirely.
func NewGenerativeAttempt(generator ai.Generator, cfg GenerativeConfig, logger *zap.Logger) Attempt {
	if generator == nil {
		return nil
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	breaker := gobreaker.NewCircuitBreaker[[]Recommendation](gobreaker.Settings{
		Name:    "generative-reranker",
		Timeout: breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("generative breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &generativeAttempt{
		generator: generator,
		breaker:   breaker,
		timeout:   cfg.RequestTimeout,
		maxLogLen: cfg.MaxLogLength,
		logger:    logger,
	}
}

func (a *generativeAttempt) Name() string { return "generative" }

func (a *generativeAttempt) Method() string { return MethodPrimary }

// BreakerState exposes the circuit breaker state for status reporting.
func (a *generativeAttempt) BreakerState() string {
	return a.breaker.State().String()
}

func (a *generativeAttempt) Run(ctx context.Context, req *request) ([]Recommendation, error) {
	hits := req.index.Query(req.formatted, primaryPoolSize)
	if len(hits) == 0 {
		return nil, errors.New("no candidate postings for generative re-ranking")
	}

	pool := make([]*catalog.Posting, len(hits))
	for i, hit := range hits {
		pool[i] = req.catalog.Postings[hit.Doc]
	}

	prompt := buildPrompt(req.formatted, pool)

	a.logger.Debug("generative re-rank request",
		zap.String("model", a.generator.Model()),
		zap.Int("pool_size", len(pool)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	recs, err := a.breaker.Execute(func() ([]Recommendation, error) {
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()

		raw, err := a.generator.GenerateContent(callCtx, prompt)
		if err != nil {
			return nil, err
		}

		a.logger.Debug("generative re-rank response",
			zap.Int("response_length", utf8.RuneCountInString(raw)),
			zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
		)

		return parseRecommendations(raw)
	})
	if err != nil {
		return nil, err
	}

	if len(recs) > req.count {
		recs = recs[:req.count]
	}
	attachPostingDetails(recs, pool)

	return recs, nil
}

// buildPrompt embeds the candidate profile and the key fields of the
// candidate postings into the prompt template.
func buildPrompt(formattedProfile string, pool []*catalog.Posting) string {
	var b strings.Builder
	for i, p := range pool {
		fmt.Fprintf(&b, "INTERNSHIP %d:\n", i+1)
		fmt.Fprintf(&b, "Company: %s\n", p.Company)
		fmt.Fprintf(&b, "Title: %s\n", p.Title)
		fmt.Fprintf(&b, "Sector: %s\n", p.Sector)
		fmt.Fprintf(&b, "Area/Field: %s\n", p.AreaField)
		fmt.Fprintf(&b, "Description: %s\n", p.Description)
		fmt.Fprintf(&b, "Location: %s, %s\n", p.Location, p.State)
		fmt.Fprintf(&b, "Required Skills: %s\n", p.Skills)
		fmt.Fprintf(&b, "Qualification: %s\n", p.Qualification)
		fmt.Fprintf(&b, "Course: %s\n", p.Course)
		fmt.Fprintf(&b, "Specialization: %s\n", p.Specialization)
		fmt.Fprintf(&b, "Benefits: %s\n", p.Benefits)
		fmt.Fprintf(&b, "Opportunities Available: %d\n", p.Opportunities)
		b.WriteString("---\n")
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{CANDIDATE_PROFILE}}", formattedProfile)
	return strings.ReplaceAll(prompt, "{{INTERNSHIPS}}", strings.TrimSpace(b.String()))
}

// attachPostingDetails joins model output back to catalog postings by
// company and title so location, sector and opportunity counts come from
// the catalog rather than the model.
func attachPostingDetails(recs []Recommendation, pool []*catalog.Posting) {
	for i := range recs {
		for _, p := range pool {
			if strings.EqualFold(recs[i].Company, p.Company) && strings.EqualFold(recs[i].Title, p.Title) {
				recs[i].Location = p.Location
				recs[i].Sector = p.Sector
				recs[i].OpportunitiesAvailable = p.Opportunities
				if len(recs[i].SkillsToHighlight) == 0 {
					recs[i].SkillsToHighlight = capSkills(p.SkillList())
				}
				break
			}
		}
	}
}
