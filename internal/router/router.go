package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/twistedwarden/esmv2-sub001/internal/config"
	"github.com/twistedwarden/esmv2-sub001/internal/handler"
	"github.com/twistedwarden/esmv2-sub001/internal/middleware"
	"github.com/twistedwarden/esmv2-sub001/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ScheduleHandler    *handler.ScheduleHandler
	EvaluationHandler  *handler.EvaluationHandler
	EndorsementHandler *handler.EndorsementHandler
	InterviewerHandler *handler.InterviewerHandler
	ActivityHandler    *handler.ActivityHandler
	OutcomeFeedHandler *handler.OutcomeFeedHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	staffOnly := middleware.RequireRole("admin", "coordinator", "interviewer")
	coordinatorOnly := middleware.RequireRole("admin", "coordinator")

	if deps.ScheduleHandler != nil {
		schedules := api.Group("/schedules", jwtMiddleware, staffOnly,
			middleware.RateLimit("schedules", 30, time.Minute))
		deps.ScheduleHandler.Register(schedules)
	}

	if deps.EvaluationHandler != nil {
		evaluations := api.Group("/evaluations", jwtMiddleware, staffOnly,
			middleware.RateLimit("evaluations", 30, time.Minute))
		deps.EvaluationHandler.Register(evaluations)
	}

	if deps.EndorsementHandler != nil {
		endorsements := api.Group("/endorsements", jwtMiddleware, coordinatorOnly,
			middleware.RateLimit("endorsements", 30, time.Minute))
		deps.EndorsementHandler.Register(endorsements)
	}

	if deps.InterviewerHandler != nil {
		interviewers := api.Group("/interviewers", jwtMiddleware, staffOnly)
		deps.InterviewerHandler.Register(interviewers)
	}

	if deps.ActivityHandler != nil {
		activity := api.Group("/activity", jwtMiddleware, coordinatorOnly)
		deps.ActivityHandler.Register(activity)
	}

	if deps.OutcomeFeedHandler != nil {
		outcomes := api.Group("/outcomes", jwtMiddleware, staffOnly)
		deps.OutcomeFeedHandler.Register(outcomes)
	}
}
