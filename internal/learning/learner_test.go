package learning

import (
	"context"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/prasukj7-arch/internmatch/internal/catalog"
	"github.com/prasukj7-arch/internmatch/internal/profile"
	"github.com/prasukj7-arch/internmatch/internal/store"
)

func TestReward(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		decision string
		score    int
		want     float64
	}{
		{"accepted top score", store.DecisionAccepted, 10, 1.0},
		{"accepted mid score", store.DecisionAccepted, 5, 0.5},
		{"accepted low score", store.DecisionAccepted, 1, 0.1},
		{"rejected low score", store.DecisionRejected, 1, -0.45},
		{"rejected mid score", store.DecisionRejected, 5, -0.25},
		{"rejected high score", store.DecisionRejected, 10, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Reward(tc.decision, tc.score)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Reward(%q, %d) = %v, want %v", tc.decision, tc.score, got, tc.want)
			}
		})
	}
}

func seedApplication(t *testing.T, st store.Store) *store.Application {
	t.Helper()

	app := &store.Application{
		CandidateID:  "cand-1",
		InternshipID: "PMIS-2025-1",
		Company:      "Acme",
		Title:        "Data Intern",
		Profile:      profile.Profile{Name: "A", Education: "B.Tech", Skills: "Python"},
		Posting: catalog.Posting{
			ID: "PMIS-2025-1", Company: "Acme", Title: "Data Intern",
			Sector: "Tech", Location: "Bangalore", Skills: "Python, SQL",
		},
		Status: store.StatusPending,
	}
	if err := st.SaveApplication(context.Background(), app); err != nil {
		t.Fatalf("seeding application: %v", err)
	}
	return app
}

func TestProcessFeedbackUnknownApplication(t *testing.T) {
	t.Parallel()

	l := NewLearner(store.NewMemory(), zap.NewNop())
	ok := l.ProcessFeedback(context.Background(), &store.Feedback{ApplicationID: "missing"})
	if ok {
		t.Fatal("feedback for an unknown application must not be applied")
	}
	if l.HasSignal() {
		t.Fatal("failed feedback must not shape the weights")
	}
}

func TestProcessFeedbackUpdatesWeights(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	l := NewLearner(st, zap.NewNop())
	app := seedApplication(t, st)

	ok := l.ProcessFeedback(context.Background(), &store.Feedback{
		ApplicationID: app.ID,
		Decision:      store.DecisionAccepted,
		Score:         10,
		Strengths:     []string{"Python"},
		SkillGaps:     []string{"SQL"},
	})
	if !ok {
		t.Fatal("feedback should have been applied")
	}
	if !l.HasSignal() {
		t.Fatal("expected learned signal after feedback")
	}

	// Learned weights start at learning_rate * reward on first touch, then
	// accumulate. A second pass of the same feedback must raise the score.
	p := &profile.Profile{Name: "A", Education: "B.Tech", Skills: "Python, SQL"}
	posting := &catalog.Posting{Company: "Acme", Sector: "Tech", Location: "Bangalore", Skills: "Python, SQL"}
	first := l.ScoreImproved(p, posting)

	l.ProcessFeedback(context.Background(), &store.Feedback{
		ApplicationID: app.ID,
		Decision:      store.DecisionAccepted,
		Score:         10,
		Strengths:     []string{"Python"},
		SkillGaps:     []string{"SQL"},
	})
	if second := l.ScoreImproved(p, posting); second <= first {
		t.Fatalf("repeated positive feedback must raise the score: first=%v second=%v", first, second)
	}

	records, err := st.LearningRecordsByCandidate(context.Background(), "cand-1")
	if err != nil || len(records) != 2 {
		t.Fatalf("expected 2 learning records, got %d (%v)", len(records), err)
	}
	if records[0].Reward != 1.0 {
		t.Fatalf("expected reward 1.0, got %v", records[0].Reward)
	}
}

func TestProcessFeedbackIsNotIdempotent(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	l := NewLearner(st, zap.NewNop())
	app := seedApplication(t, st)

	fb := store.Feedback{
		ApplicationID: app.ID,
		Decision:      store.DecisionAccepted,
		Score:         10,
		SkillGaps:     []string{"Python"},
	}

	p := &profile.Profile{Name: "A", Education: "B.Tech", Skills: "Go"}
	posting := &catalog.Posting{Company: "Acme", Skills: "Python"}

	var scores []float64
	for i := 0; i < 3; i++ {
		copied := fb
		copied.ID = ""
		l.ProcessFeedback(context.Background(), &copied)
		scores = append(scores, l.ScoreImproved(p, posting))
	}

	if !(scores[0] < scores[1] && scores[1] < scores[2]) {
		t.Fatalf("repeated positive feedback must keep raising the score: %v", scores)
	}
}

func TestProcessFeedbackRejectionLowersScore(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	l := NewLearner(st, zap.NewNop())
	app := seedApplication(t, st)

	p := &profile.Profile{Name: "A", Education: "B.Tech", Skills: "Python, SQL"}
	posting := &catalog.Posting{Company: "Acme", Sector: "Tech", Location: "Bangalore", Skills: "Python"}

	before := l.ScoreImproved(p, posting)

	l.ProcessFeedback(context.Background(), &store.Feedback{
		ApplicationID: app.ID,
		Decision:      store.DecisionRejected,
		Score:         2,
		SkillGaps:     []string{"Python"},
	})

	after := l.ScoreImproved(p, posting)
	if after >= before {
		t.Fatalf("negative feedback must lower the score: before=%v after=%v", before, after)
	}
}

func TestScoreImprovedColdStart(t *testing.T) {
	t.Parallel()

	l := NewLearner(store.NewMemory(), zap.NewNop())

	p := &profile.Profile{Name: "A", Education: "B.Tech", Skills: "Python, SQL"}
	posting := &catalog.Posting{Company: "Acme", Sector: "Tech", Location: "Bangalore", Skills: "Python, SQL"}

	// Full skill match, neutral preferences everywhere else:
	// 0.4*1.0 + 0.2*0.5 + 0.2*0.5 + 0.2*0.5 = 0.7.
	got := l.ScoreImproved(p, posting)
	if math.Abs(got-0.7) > 1e-9 {
		t.Fatalf("cold-start score = %v, want 0.7", got)
	}

	if l.HasSignal() {
		t.Fatal("fresh learner must report no signal")
	}
}

func TestScoreImprovedMissingSkillPenalty(t *testing.T) {
	t.Parallel()

	l := NewLearner(store.NewMemory(), zap.NewNop())

	p := &profile.Profile{Name: "A", Education: "B.Tech", Skills: "Python"}
	posting := &catalog.Posting{Skills: "Python, Kubernetes"}

	// Matched skill contributes 1.0, missing one 0.5*0.3. Skill score is
	// their mean; preferences stay neutral.
	want := 0.4*((1.0+0.15)/2) + 0.2*0.5*3
	got := l.ScoreImproved(p, posting)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("score = %v, want %v", got, want)
	}
}

func TestScoreImprovedNoRequiredSkills(t *testing.T) {
	t.Parallel()

	l := NewLearner(store.NewMemory(), zap.NewNop())

	p := &profile.Profile{Name: "A", Education: "B.Tech", Skills: "Python"}
	got := l.ScoreImproved(p, &catalog.Posting{Company: "Acme"})

	// Everything neutral: 0.4*0.5 + 3*0.2*0.5 = 0.5.
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("score = %v, want 0.5", got)
	}
}

func TestScoreImprovedClamped(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	l := NewLearner(st, zap.NewNop())
	app := seedApplication(t, st)

	for i := 0; i < 50; i++ {
		l.ProcessFeedback(context.Background(), &store.Feedback{
			ApplicationID: app.ID,
			Decision:      store.DecisionAccepted,
			Score:         10,
			SkillGaps:     []string{"Python"},
		})
	}

	p := &profile.Profile{Name: "A", Education: "B.Tech", Skills: "Python"}
	posting := &catalog.Posting{Company: "Acme", Sector: "Tech", Location: "Bangalore", Skills: "Python"}

	got := l.ScoreImproved(p, posting)
	if got < 0 || got > 1 {
		t.Fatalf("score must stay in [0, 1], got %v", got)
	}
	if got != 1.0 {
		t.Fatalf("heavily reinforced match should saturate at 1.0, got %v", got)
	}
}

func TestRankImproved(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	l := NewLearner(st, zap.NewNop())
	app := seedApplication(t, st)

	c := catalog.NewCatalog([]*catalog.Posting{
		{ID: "PMIS-2025-1", Company: "Acme", Sector: "Tech", Location: "Bangalore", Skills: "Python, SQL"},
		{ID: "PMIS-2025-2", Company: "Globex", Sector: "Media", Location: "Mumbai", Skills: "Photoshop"},
		{ID: "PMIS-2025-3", Company: "Initech", Sector: "Tech", Location: "Pune", Skills: "Python"},
	})

	for i := 0; i < 10; i++ {
		l.ProcessFeedback(context.Background(), &store.Feedback{
			ApplicationID: app.ID,
			Decision:      store.DecisionAccepted,
			Score:         10,
			Strengths:     []string{"Python"},
		})
	}

	p := &profile.Profile{Name: "A", Education: "B.Tech", Skills: "Python, SQL"}
	ranked := l.RankImproved(p, c, 2)

	if len(ranked) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ranked))
	}
	if ranked[0].Posting.ID != "PMIS-2025-1" {
		t.Fatalf("expected the reinforced posting first, got %s", ranked[0].Posting.ID)
	}
	if ranked[0].Score < ranked[1].Score {
		t.Fatalf("results must be sorted by score: %v, %v", ranked[0].Score, ranked[1].Score)
	}
	if ranked[0].Confidence == "" {
		t.Fatal("expected a confidence level")
	}
}

func TestSnapshotRestore(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	l := NewLearner(st, zap.NewNop())
	app := seedApplication(t, st)

	l.ProcessFeedback(context.Background(), &store.Feedback{
		ApplicationID: app.ID,
		Decision:      store.DecisionAccepted,
		Score:         8,
		SkillGaps:     []string{"Kubernetes"},
	})

	p := &profile.Profile{Name: "A", Education: "B.Tech", Skills: "Kubernetes"}
	posting := &catalog.Posting{Company: "Acme", Sector: "Tech", Location: "Bangalore", Skills: "Kubernetes"}
	want := l.ScoreImproved(p, posting)

	data, err := l.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	restored := NewLearner(store.NewMemory(), zap.NewNop())
	if err := restored.Restore(data); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if got := restored.ScoreImproved(p, posting); got != want {
		t.Fatalf("restored score = %v, want %v", got, want)
	}
	if !restored.HasSignal() {
		t.Fatal("restored learner must keep its signal")
	}
}

func TestUpdatesCandidateProfileWithStrengths(t *testing.T) {
	t.Parallel()

	st := store.NewMemory()
	l := NewLearner(st, zap.NewNop())
	app := seedApplication(t, st)

	l.ProcessFeedback(context.Background(), &store.Feedback{
		ApplicationID: app.ID,
		Decision:      store.DecisionAccepted,
		Score:         9,
		Strengths:     []string{"SQL"},
		SkillGaps:     []string{"Docker"},
	})

	cp, err := st.CandidateProfileByID(context.Background(), "cand-1")
	if err != nil {
		t.Fatalf("candidate profile: %v", err)
	}
	if cp.Profile.Skills != "Python, SQL" {
		t.Fatalf("strengths must merge into skills, got %q", cp.Profile.Skills)
	}
	if len(cp.SkillGaps) != 1 || cp.SkillGaps[0] != "Docker" {
		t.Fatalf("unexpected skill gaps: %v", cp.SkillGaps)
	}
}
