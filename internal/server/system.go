package server

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/prasukj7-arch/internmatch/internal/catalog"
	"github.com/prasukj7-arch/internmatch/internal/recommend"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":            "healthy",
		"total_internships": s.engine.Catalog().Len(),
	})
}

func (s *Server) handleSystemStatus(c *fiber.Ctx) error {
	cat := s.engine.Catalog()
	opts := cat.Options()

	generativeEnabled, breakerState := s.engine.GenerativeStatus()

	method := recommend.MethodBackup
	if generativeEnabled {
		method = recommend.MethodPrimary
	}

	return c.JSON(fiber.Map{
		"generative_available":  generativeEnabled,
		"breaker_state":         breakerState,
		"backup_available":      true,
		"learning_active":       s.learner.HasSignal(),
		"total_internships":     cat.Len(),
		"unique_states":         len(opts.States),
		"unique_sectors":        len(opts.Sectors),
		"recommendation_method": method,
	})
}

func (s *Server) handleInternships(c *fiber.Ctx) error {
	cat := s.engine.Catalog()

	limit := c.QueryInt("limit", catalog.DefaultFilterLimit)
	filter := catalog.Filter{
		Search:         c.Query("search"),
		State:          c.Query("state"),
		Sector:         c.Query("sector"),
		Specialization: c.Query("specialization"),
		Limit:          limit,
	}

	postings := cat.Apply(filter)
	s.logger.Debug("internships listed",
		zap.Int("matched", len(postings)),
		zap.Int("catalog", cat.Len()))

	return c.JSON(fiber.Map{
		"internships": postings,
		"filters":     cat.Options(),
		"total":       len(postings),
	})
}

func (s *Server) handleLearningSummary(c *fiber.Ctx) error {
	candidateID := c.Params("candidate_id")

	summary, err := s.learner.Summary(c.UserContext(), candidateID)
	if err != nil {
		s.logger.Error("learning summary failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to build learning summary")
	}

	return c.JSON(fiber.Map{
		"candidate_id":     candidateID,
		"learning_summary": summary,
	})
}
