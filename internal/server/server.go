// Package server exposes the recommendation engine, the feedback learner
// and the application store over HTTP.
package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/prasukj7-arch/internmatch/internal/learning"
	"github.com/prasukj7-arch/internmatch/internal/recommend"
	"github.com/prasukj7-arch/internmatch/internal/store"
)

const defaultRecruiterID = "recruiter-001"

// Server is the HTTP surface of the recommendation system.
type Server struct {
	app     *fiber.App
	engine  *recommend.Engine
	learner *learning.Learner
	store   store.Store
	logger  *zap.Logger
}

// New builds the fiber app with all routes registered.
func New(engine *recommend.Engine, learner *learning.Learner, st store.Store, logger *zap.Logger) *Server {
	s := &Server{
		engine:  engine,
		learner: learner,
		store:   st,
		logger:  logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "internmatch",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		ErrorHandler: s.errorHandler,
	})

	s.app.Use(recover.New())
	s.app.Use(s.requestLogger)
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := s.app.Group("/api")

	api.Get("/health", s.handleHealth)
	api.Get("/system-status", s.handleSystemStatus)
	api.Get("/internships", s.handleInternships)

	api.Post("/recommend", s.handleRecommend)
	api.Post("/improved-recommendations", s.handleImprovedRecommendations)
	api.Post("/apply", s.handleApply)

	api.Get("/recruiter/applications", s.handlePendingApplications)
	api.Get("/recruiter/dashboard", s.handleRecruiterDashboard)
	api.Post("/recruiter/application/:id/review", s.handleReview)

	api.Get("/candidate/applications/:candidate_id", s.handleCandidateApplications)
	api.Get("/candidate/feedback/:application_id", s.handleApplicationFeedback)
	api.Get("/candidate/feedback-history/:candidate_id", s.handleFeedbackHistory)
	api.Get("/learning-summary/:candidate_id", s.handleLearningSummary)

	return s
}

// Listen serves requests until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Info("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)))
	return err
}
