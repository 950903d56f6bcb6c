package recipeapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"recipe-planner/internal/auth"
	"recipe-planner/internal/metrics"
)

const (
	headerRequestID = "X-Request-ID"
	localRequestID  = "request_id"
	localLogger     = "logger"
)

// requestID tags every request with an id, reusing one sent by the caller.
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(headerRequestID, id)
		c.Locals(localRequestID, id)
		c.Locals(localLogger, log.WithFields(log.Fields{
			"request_id": id,
			"method":     c.Method(),
			"path":       c.Path(),
		}))
		return c.Next()
	}
}

func requestLogger(c *fiber.Ctx) log.FieldLogger {
	if l, ok := c.Locals(localLogger).(log.FieldLogger); ok {
		return l
	}
	return log.StandardLogger()
}

// requireToken rejects requests without a valid bearer token.
func requireToken(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}
		subject, err := auth.Verify(secret, token)
		if err != nil {
			requestLogger(c).WithError(err).Warn("Rejected token")
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}
		c.Locals("subject", subject)
		return c.Next()
	}
}

// recordMetrics stores method, matched route, status and latency of every
// request. Recording failures are logged and never fail the request.
func recordMetrics(rec MetricsRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		id, _ := c.Locals(localRequestID).(string)
		m := metrics.RequestMetric{
			RequestID: id,
			Method:    c.Method(),
			Route:     c.Route().Path,
			Status:    status,
			LatencyMS: time.Since(start).Milliseconds(),
			Timestamp: start,
		}
		if recErr := rec.Record(m); recErr != nil {
			requestLogger(c).WithError(recErr).Warn("Failed to record request metric")
		}
		return err
	}
}
