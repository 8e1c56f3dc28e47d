package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/prasukj7-arch/internmatch/internal/catalog"
	"github.com/prasukj7-arch/internmatch/internal/learning"
	"github.com/prasukj7-arch/internmatch/internal/recommend"
	"github.com/prasukj7-arch/internmatch/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	c := catalog.NewCatalog([]*catalog.Posting{
		{
			ID: "PMIS-2025-1", Company: "Acme", Title: "Data Intern",
			Sector: "Tech", Skills: "Python, SQL", Location: "Bangalore",
			State: "Karnataka", Opportunities: 3,
			Description: "Data pipelines with Python and SQL",
		},
		{
			ID: "PMIS-2025-2", Company: "Globex", Title: "Marketing Intern",
			Sector: "Media", Skills: "Photoshop", Location: "Mumbai",
			State: "Maharashtra", Opportunities: 1,
			Description: "Campaigns and branding",
		},
	})

	st := store.NewMemory()
	engine := recommend.NewEngine(c, nil, zap.NewNop())
	learner := learning.NewLearner(st, zap.NewNop())

	return New(engine, learner, st, zap.NewNop())
}

func doJSON(t *testing.T, s *Server, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response: %v", err)
	}
	resp.Body.Close()

	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decoding response %q: %v", raw, err)
		}
	}
	return resp, decoded
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	resp, body := doJSON(t, s, http.MethodGet, "/api/health", nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if body["status"] != "healthy" {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["total_internships"].(float64) != 2 {
		t.Fatalf("unexpected internship count: %v", body)
	}
}

func TestSystemStatus(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	resp, body := doJSON(t, s, http.MethodGet, "/api/system-status", nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if body["generative_available"] != false {
		t.Fatalf("generative tier should be off: %v", body)
	}
	if body["backup_available"] != true {
		t.Fatalf("backup tier must always be available: %v", body)
	}
	if body["recommendation_method"] != recommend.MethodBackup {
		t.Fatalf("unexpected method: %v", body)
	}
}

func TestInternshipsFiltering(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	resp, body := doJSON(t, s, http.MethodGet, "/api/internships?sector=Tech", nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if body["total"].(float64) != 1 {
		t.Fatalf("expected one Tech internship: %v", body)
	}

	internships := body["internships"].([]any)
	first := internships[0].(map[string]any)
	if first["company"] != "Acme" {
		t.Fatalf("unexpected internship: %v", first)
	}

	filters := body["filters"].(map[string]any)
	if len(filters["states"].([]any)) != 2 {
		t.Fatalf("expected both states in filter options: %v", filters)
	}
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	resp, body := doJSON(t, s, http.MethodPost, "/api/recommend", map[string]any{
		"name":      "A",
		"education": "B.Tech",
		"skills":    "Python",
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d (%v)", resp.StatusCode, body)
	}
	if body["method"] != recommend.MethodBackup {
		t.Fatalf("expected backup method without a generator: %v", body)
	}
	if body["fallback_used"] != true {
		t.Fatalf("expected fallback_used: %v", body)
	}

	recs := body["recommendations"].([]any)
	if len(recs) == 0 {
		t.Fatal("expected recommendations")
	}
	first := recs[0].(map[string]any)
	if first["rank"].(float64) != 1 {
		t.Fatalf("expected rank 1 first: %v", first)
	}
}

func TestRecommendRejectsInvalidProfile(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	resp, body := doJSON(t, s, http.MethodPost, "/api/recommend", map[string]any{
		"name": "A",
	})

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%v)", resp.StatusCode, body)
	}
	if body["fields"] == nil {
		t.Fatalf("expected field errors: %v", body)
	}
}

func TestApplyReviewFeedbackFlow(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	// Apply.
	resp, body := doJSON(t, s, http.MethodPost, "/api/apply", map[string]any{
		"internship_id": "PMIS-2025-1",
		"candidate_id":  "cand-1",
		"candidate_profile": map[string]any{
			"name":      "A",
			"education": "B.Tech",
			"skills":    "Python",
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("apply failed: %d (%v)", resp.StatusCode, body)
	}
	applicationID := body["application_id"].(string)
	if applicationID == "" || body["status"] != store.StatusPending {
		t.Fatalf("unexpected apply response: %v", body)
	}

	// The application shows up for recruiters.
	resp, body = doJSON(t, s, http.MethodGet, "/api/recruiter/applications", nil)
	if resp.StatusCode != http.StatusOK || body["total"].(float64) != 1 {
		t.Fatalf("expected one pending application: %d (%v)", resp.StatusCode, body)
	}

	// Review.
	resp, body = doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/recruiter/application/%s/review", applicationID),
		map[string]any{
			"decision":             "accepted",
			"feedback_text":        "great fit",
			"strengths":            []string{"Python"},
			"skill_gaps":           []string{"SQL"},
			"recommendation_score": 9,
		})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("review failed: %d (%v)", resp.StatusCode, body)
	}
	if body["learning_applied"] != true {
		t.Fatalf("expected learning to apply: %v", body)
	}
	if body["feedback_id"] == "" {
		t.Fatalf("expected a feedback id: %v", body)
	}

	// Feedback history reflects the review.
	resp, body = doJSON(t, s, http.MethodGet, "/api/candidate/feedback-history/cand-1", nil)
	if resp.StatusCode != http.StatusOK || body["total_feedback"].(float64) != 1 {
		t.Fatalf("expected one feedback record: %d (%v)", resp.StatusCode, body)
	}

	// Learning summary reflects the review.
	resp, body = doJSON(t, s, http.MethodGet, "/api/learning-summary/cand-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary failed: %d (%v)", resp.StatusCode, body)
	}
	summary := body["learning_summary"].(map[string]any)
	if summary["total_applications"].(float64) != 1 {
		t.Fatalf("unexpected summary: %v", summary)
	}
}

func TestReviewUnknownApplication(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	resp, _ := doJSON(t, s, http.MethodPost, "/api/recruiter/application/missing/review", map[string]any{
		"decision": "accepted",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestReviewRejectsBadDecision(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	resp, _ := doJSON(t, s, http.MethodPost, "/api/recruiter/application/any/review", map[string]any{
		"decision": "maybe",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestApplyUnknownInternship(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	resp, _ := doJSON(t, s, http.MethodPost, "/api/apply", map[string]any{
		"internship_id": "missing",
		"candidate_id":  "cand-1",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestImprovedRecommendationsColdStart(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	resp, body := doJSON(t, s, http.MethodPost, "/api/improved-recommendations", map[string]any{
		"name":      "A",
		"education": "B.Tech",
		"skills":    "Python",
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d (%v)", resp.StatusCode, body)
	}
	if body["learning_applied"] != false {
		t.Fatalf("cold start must fall back to the standard chain: %v", body)
	}
	if body["method"] != recommend.MethodBackup {
		t.Fatalf("unexpected method: %v", body)
	}
}

func TestImprovedRecommendationsAfterFeedback(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	_, body := doJSON(t, s, http.MethodPost, "/api/apply", map[string]any{
		"internship_id": "PMIS-2025-1",
		"candidate_id":  "cand-1",
		"candidate_profile": map[string]any{
			"name":      "A",
			"education": "B.Tech",
			"skills":    "Python",
		},
	})
	applicationID := body["application_id"].(string)

	doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/recruiter/application/%s/review", applicationID),
		map[string]any{
			"decision":             "accepted",
			"recommendation_score": 10,
			"strengths":            []string{"Python"},
		})

	resp, body := doJSON(t, s, http.MethodPost, "/api/improved-recommendations", map[string]any{
		"name":         "A",
		"education":    "B.Tech",
		"skills":       "Python",
		"candidate_id": "cand-1",
	})

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d (%v)", resp.StatusCode, body)
	}
	if body["learning_applied"] != true {
		t.Fatalf("expected learned recommendations: %v", body)
	}
	if body["method"] != "Reinforcement_Learning_Enhanced" {
		t.Fatalf("unexpected method: %v", body)
	}

	recs := body["recommendations"].([]any)
	if len(recs) != 2 {
		t.Fatalf("expected the whole catalog ranked: %v", recs)
	}
	first := recs[0].(map[string]any)
	if first["confidence_level"] == "" {
		t.Fatalf("expected a confidence level: %v", first)
	}
	score := first["match_score"].(float64)
	if score < 0 || score > 100 {
		t.Fatalf("match score out of range: %v", score)
	}
}

func TestApplicationFeedback(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	resp, _ := doJSON(t, s, http.MethodGet, "/api/candidate/feedback/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for an unreviewed application, got %d", resp.StatusCode)
	}

	_, body := doJSON(t, s, http.MethodPost, "/api/apply", map[string]any{
		"internship_id": "PMIS-2025-1",
		"candidate_id":  "cand-1",
		"candidate_profile": map[string]any{
			"name":      "A",
			"education": "B.Tech",
			"skills":    "Python",
		},
	})
	applicationID := body["application_id"].(string)

	doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/recruiter/application/%s/review", applicationID),
		map[string]any{
			"decision":             "accepted",
			"feedback_text":        "solid",
			"recommendation_score": 8,
		})

	resp, body = doJSON(t, s, http.MethodGet, "/api/candidate/feedback/"+applicationID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("feedback lookup failed: %d (%v)", resp.StatusCode, body)
	}

	fb := body["feedback"].(map[string]any)
	if fb["application_id"] != applicationID {
		t.Fatalf("feedback for the wrong application: %v", fb)
	}
	if fb["decision"] != "accepted" || fb["recommendation_score"].(float64) != 8 {
		t.Fatalf("unexpected feedback: %v", fb)
	}
}

func TestRecruiterDashboard(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	resp, body := doJSON(t, s, http.MethodGet, "/api/recruiter/dashboard", nil)
	if resp.StatusCode != http.StatusOK || body["total_applications"].(float64) != 0 {
		t.Fatalf("expected an empty dashboard: %d (%v)", resp.StatusCode, body)
	}

	profile := map[string]any{"name": "A", "education": "B.Tech", "skills": "Python"}
	var firstID string
	for i, internship := range []string{"PMIS-2025-1", "PMIS-2025-2"} {
		_, body := doJSON(t, s, http.MethodPost, "/api/apply", map[string]any{
			"internship_id":     internship,
			"candidate_id":      "cand-1",
			"candidate_profile": profile,
		})
		if i == 0 {
			firstID = body["application_id"].(string)
		}
	}

	doJSON(t, s, http.MethodPost,
		fmt.Sprintf("/api/recruiter/application/%s/review", firstID),
		map[string]any{"decision": "accepted", "recommendation_score": 9})

	resp, body = doJSON(t, s, http.MethodGet, "/api/recruiter/dashboard", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard failed: %d (%v)", resp.StatusCode, body)
	}
	if body["total_applications"].(float64) != 2 {
		t.Fatalf("unexpected total: %v", body)
	}
	if body["pending_applications"].(float64) != 1 || body["accepted_applications"].(float64) != 1 {
		t.Fatalf("unexpected status counts: %v", body)
	}

	byCompany := body["applications_by_company"].(map[string]any)
	if byCompany["Acme"].(float64) != 1 || byCompany["Globex"].(float64) != 1 {
		t.Fatalf("unexpected company counts: %v", byCompany)
	}
	if len(body["recent_applications"].([]any)) != 2 {
		t.Fatalf("unexpected recent applications: %v", body)
	}
}
