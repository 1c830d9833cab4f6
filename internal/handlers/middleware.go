package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/compresso/storefront/pkg/httpx"
)

const (
	userIDHeader   = "X-User-ID"
	userRoleHeader = "X-User-Role"

	localUserID = "userID"
)

// RequireUser expects the authenticated user id from the upstream auth
// collaborator. The core never issues sessions itself.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(userIDHeader)
		if raw == "" {
			return httpx.UnauthorizedResponse(c, "Missing user identity")
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			return httpx.UnauthorizedResponse(c, "Invalid user identity")
		}

		c.Locals(localUserID, userID)
		return c.Next()
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(userRoleHeader) != "admin" {
			return httpx.ForbiddenResponse(c, "Admin access required")
		}
		return c.Next()
	}
}

func userIDFrom(c *fiber.Ctx) (uuid.UUID, bool) {
	userID, ok := c.Locals(localUserID).(uuid.UUID)
	return userID, ok
}
