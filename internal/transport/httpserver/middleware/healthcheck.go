// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"go.uber.org/zap"
)

const probeTimeout = 2 * time.Second

// Probe reports whether a dependency can serve traffic.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// NewHealthCheck creates a Fiber healthcheck middleware with Kubernetes-style endpoints.
//
// Endpoints:
//   - GET /livez  - Liveness probe (app is running)
//   - GET /readyz - Readiness probe (every probe passes)
//
// This middleware should be registered BEFORE other routes.
func NewHealthCheck(logger *zap.Logger, probes ...Probe) fiber.Handler {
	return healthcheck.New(healthcheck.Config{
		LivenessEndpoint: "/livez",
		LivenessProbe: func(_ *fiber.Ctx) bool {
			return true
		},

		ReadinessEndpoint: "/readyz",
		ReadinessProbe: func(c *fiber.Ctx) bool {
			ctx, cancel := context.WithTimeout(c.UserContext(), probeTimeout)
			defer cancel()

			for _, p := range probes {
				if err := p.Check(ctx); err != nil {
					logger.Warn("readiness probe failed",
						zap.String("probe", p.Name),
						zap.Error(err),
					)
					return false
				}
			}

			return true
		},
	})
}
