package server

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/prasukj7-arch/internmatch/internal/profile"
	"github.com/prasukj7-arch/internmatch/internal/recommend"
)

type recommendRequest struct {
	profile.Profile
	NumRecommendations int `json:"num_recommendations"`
}

func (s *Server) handleRecommend(c *fiber.Ctx) error {
	var req recommendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
	}

	if err := req.Validate(); err != nil {
		var verr *profile.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "invalid candidate profile",
				"fields": verr.Fields,
			})
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	count := req.NumRecommendations
	if count <= 0 {
		count = recommend.DefaultCount
	}

	result, err := s.engine.Recommend(c.UserContext(), &req.Profile, count)
	if err != nil {
		s.logger.Error("recommendation failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "no recommendations available")
	}

	return c.JSON(fiber.Map{
		"recommendations": result.Recommendations,
		"method":          result.Method,
		"fallback_used":   result.FallbackUsed,
		"total_analyzed":  result.TotalAnalyzed,
	})
}

type improvedRequest struct {
	profile.Profile
	CandidateID        string `json:"candidate_id"`
	NumRecommendations int    `json:"num_recommendations"`
}

type improvedRecommendation struct {
	Rank                   int      `json:"rank"`
	Company                string   `json:"company"`
	Title                  string   `json:"title"`
	MatchScore             int      `json:"match_score"`
	Reasoning              string   `json:"reasoning"`
	SkillsToHighlight      []string `json:"skills_to_highlight"`
	Location               string   `json:"location"`
	Sector                 string   `json:"sector"`
	OpportunitiesAvailable int      `json:"opportunities_available"`
	ConfidenceLevel        string   `json:"confidence_level"`
	SkillAlignment         float64  `json:"skill_alignment"`
}

func (s *Server) handleImprovedRecommendations(c *fiber.Ctx) error {
	var req improvedRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
	}

	if err := req.Validate(); err != nil {
		var verr *profile.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "invalid candidate profile",
				"fields": verr.Fields,
			})
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	count := req.NumRecommendations
	if count <= 0 {
		count = recommend.DefaultCount
	}

	catalog := s.engine.Catalog()

	// Cold start: without any processed feedback the learned weights are
	// all defaults, so the standard chain gives better answers.
	if !s.learner.HasSignal() {
		result, err := s.engine.Recommend(c.UserContext(), &req.Profile, count)
		if err != nil {
			s.logger.Error("fallback recommendation failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "no recommendations available")
		}
		return c.JSON(fiber.Map{
			"recommendations":  result.Recommendations,
			"method":           result.Method,
			"learning_applied": false,
			"total_analyzed":   result.TotalAnalyzed,
		})
	}

	ranked := s.learner.RankImproved(&req.Profile, catalog, count)

	recs := make([]improvedRecommendation, 0, len(ranked))
	for i, sp := range ranked {
		skills := sp.Posting.SkillList()
		if len(skills) > 5 {
			skills = skills[:5]
		}
		recs = append(recs, improvedRecommendation{
			Rank:                   i + 1,
			Company:                sp.Posting.Company,
			Title:                  sp.Posting.Title,
			MatchScore:             int(sp.Score * 100),
			Reasoning:              fmt.Sprintf("AI-optimized recommendation based on learning from feedback (Score: %.2f)", sp.Score),
			SkillsToHighlight:      skills,
			Location:               sp.Posting.Location,
			Sector:                 sp.Posting.Sector,
			OpportunitiesAvailable: sp.Posting.Opportunities,
			ConfidenceLevel:        sp.Confidence,
			SkillAlignment:         sp.SkillAlignment,
		})
	}

	return c.JSON(fiber.Map{
		"recommendations":  recs,
		"method":           "Reinforcement_Learning_Enhanced",
		"learning_applied": true,
		"total_analyzed":   catalog.Len(),
	})
}
