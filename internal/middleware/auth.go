package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rentnest/rentnest-server/internal/auth"
)

const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// JWTAuth verifies the bearer token and stores identity in request locals.
// Handlers read identity from there only; there is no ambient session state.
func JWTAuth(tm *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization"})
		}
		claims, err := tm.Verify(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		c.Locals(LocalUserID, claims.Subject)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	h := c.Get("Authorization")
	if h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	// websocket clients cannot set headers from the browser
	return c.Query("token")
}

// UserID returns the authenticated user's ID, or "".
func UserID(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocalUserID).(string); ok {
		return v
	}
	return ""
}

// Role returns the authenticated user's role claim, or "".
func Role(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocalRole).(string); ok {
		return v
	}
	return ""
}
