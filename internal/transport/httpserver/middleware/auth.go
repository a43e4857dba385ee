package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"content-scoring-service/internal/transport/httpserver/dto"
)

// UserIDHeader carries the authenticated user, set by the gateway in front of the service.
const UserIDHeader = "X-User-ID"

const userIDKey = "user_id"

// RequireUser rejects requests without an acting user and stores it for handlers.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(UserIDHeader))
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: UserIDHeader + " header is required",
				Code:  "UNAUTHENTICATED",
			})
		}

		c.Locals(userIDKey, userID)

		return c.Next()
	}
}

// RequireAdmin allows only the listed users through. It must run after RequireUser.
// An empty list locks the route for everyone.
func RequireAdmin(adminIDs []string) fiber.Handler {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := admins[UserID(c)]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: "admin access required",
				Code:  "FORBIDDEN",
			})
		}

		return c.Next()
	}
}

// UserID returns the acting user set by RequireUser.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}
