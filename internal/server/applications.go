package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/prasukj7-arch/internmatch/internal/profile"
	"github.com/prasukj7-arch/internmatch/internal/store"
)

const maxRecentApplications = 20

type applyRequest struct {
	InternshipID     string          `json:"internship_id"`
	CandidateID      string          `json:"candidate_id"`
	CandidateProfile profile.Profile `json:"candidate_profile"`
}

func (s *Server) handleApply(c *fiber.Ctx) error {
	var req applyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
	}

	if req.InternshipID == "" || req.CandidateID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing internship_id or candidate_id")
	}

	posting := s.engine.Catalog().ByID(req.InternshipID)
	if posting == nil {
		return fiber.NewError(fiber.StatusNotFound, "internship not found")
	}

	app := &store.Application{
		CandidateID:  req.CandidateID,
		InternshipID: posting.ID,
		Company:      posting.Company,
		Title:        posting.Title,
		Profile:      req.CandidateProfile,
		Posting:      *posting,
		Status:       store.StatusPending,
	}
	if err := s.store.SaveApplication(c.UserContext(), app); err != nil {
		s.logger.Error("application not saved", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to save application")
	}

	s.logger.Info("application submitted",
		zap.String("application_id", app.ID),
		zap.String("internship_id", posting.ID),
		zap.String("candidate_id", req.CandidateID))

	return c.JSON(fiber.Map{
		"message":        "Application submitted successfully",
		"application_id": app.ID,
		"internship_id":  posting.ID,
		"candidate_id":   req.CandidateID,
		"status":         app.Status,
	})
}

func (s *Server) handlePendingApplications(c *fiber.Ctx) error {
	apps, err := s.store.PendingApplications(c.UserContext())
	if err != nil {
		s.logger.Error("pending applications lookup failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load applications")
	}
	return c.JSON(fiber.Map{
		"applications": apps,
		"total":        len(apps),
	})
}

func (s *Server) handleCandidateApplications(c *fiber.Ctx) error {
	candidateID := c.Params("candidate_id")

	apps, err := s.store.ApplicationsByCandidate(c.UserContext(), candidateID)
	if err != nil {
		s.logger.Error("candidate applications lookup failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load applications")
	}
	return c.JSON(fiber.Map{
		"applications": apps,
		"total":        len(apps),
	})
}

type reviewRequest struct {
	Decision            string   `json:"decision"`
	FeedbackText        string   `json:"feedback_text"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
	SkillGaps           []string `json:"skill_gaps"`
	RecommendationScore int      `json:"recommendation_score"`
	RecruiterID         string   `json:"recruiter_id"`
}

func (s *Server) handleReview(c *fiber.Ctx) error {
	// Copied because it outlives the request: fiber params alias the
	// recycled fasthttp buffer and this ID is persisted in the store.
	applicationID := utils.CopyString(c.Params("id"))

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request payload")
	}

	if req.Decision != store.DecisionAccepted && req.Decision != store.DecisionRejected {
		return fiber.NewError(fiber.StatusBadRequest, "invalid decision, must be 'accepted' or 'rejected'")
	}
	if req.RecruiterID == "" {
		req.RecruiterID = defaultRecruiterID
	}

	ctx := c.UserContext()

	app, err := s.store.ApplicationByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "application not found")
		}
		s.logger.Error("application lookup failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load application")
	}

	if err := s.store.UpdateApplicationStatus(ctx, applicationID, req.Decision, req.RecruiterID); err != nil {
		s.logger.Error("application status not updated", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update application status")
	}

	fb := &store.Feedback{
		ApplicationID:       applicationID,
		CandidateID:         app.CandidateID,
		RecruiterID:         req.RecruiterID,
		Decision:            req.Decision,
		Text:                req.FeedbackText,
		Strengths:           req.Strengths,
		AreasForImprovement: req.AreasForImprovement,
		SkillGaps:           req.SkillGaps,
		Score:               req.RecommendationScore,
	}
	if err := s.store.SaveFeedback(ctx, fb); err != nil {
		s.logger.Error("feedback not saved", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to save feedback")
	}

	applied := s.learner.ProcessFeedback(ctx, fb)

	s.logger.Info("application reviewed",
		zap.String("application_id", applicationID),
		zap.String("decision", req.Decision),
		zap.Bool("learning_applied", applied))

	return c.JSON(fiber.Map{
		"message":          "Application reviewed",
		"application_id":   applicationID,
		"decision":         req.Decision,
		"feedback_id":      fb.ID,
		"learning_applied": applied,
	})
}

func (s *Server) handleApplicationFeedback(c *fiber.Ctx) error {
	applicationID := c.Params("application_id")

	fb, err := s.store.FeedbackByApplication(c.UserContext(), applicationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no feedback found for this application")
		}
		s.logger.Error("application feedback lookup failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load feedback")
	}
	return c.JSON(fiber.Map{"feedback": fb})
}

func (s *Server) handleRecruiterDashboard(c *fiber.Ctx) error {
	apps, err := s.store.Applications(c.UserContext())
	if err != nil {
		s.logger.Error("dashboard applications lookup failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load applications")
	}

	var pending, accepted, rejected int
	byCompany := make(map[string]int)
	for _, app := range apps {
		switch app.Status {
		case store.StatusPending:
			pending++
		case store.StatusAccepted:
			accepted++
		case store.StatusRejected:
			rejected++
		}
		byCompany[app.Company]++
	}

	recent := apps
	if len(recent) > maxRecentApplications {
		recent = recent[:maxRecentApplications]
	}

	return c.JSON(fiber.Map{
		"total_applications":      len(apps),
		"pending_applications":    pending,
		"accepted_applications":   accepted,
		"rejected_applications":   rejected,
		"applications_by_company": byCompany,
		"recent_applications":     recent,
	})
}

func (s *Server) handleFeedbackHistory(c *fiber.Ctx) error {
	candidateID := c.Params("candidate_id")

	history, err := s.store.FeedbackByCandidate(c.UserContext(), candidateID)
	if err != nil {
		s.logger.Error("feedback history lookup failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load feedback history")
	}
	return c.JSON(fiber.Map{
		"feedback_history": history,
		"total_feedback":   len(history),
	})
}
