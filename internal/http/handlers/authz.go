package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"basket/internal/domain"
	applog "basket/internal/log"
	"basket/internal/token"
)

const localClaims = "claims"

// bearer returns the token from "Authorization: Bearer <token>".
func bearer(c *fiber.Ctx) string {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func requireKind(tokens *token.Issuer, kind token.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := tokens.Parse(bearer(c))
		if err == nil && claims.Kind != kind {
			err = domain.Forbidden("Invalid token")
		}
		if err != nil {
			return deny(c, "access.denied."+string(kind), err)
		}
		c.Locals(applog.LocalSubject, claims.Subject)
		c.Locals(localClaims, claims)
		return c.Next()
	}
}

// RequireUser admits requests carrying a valid shopper token.
func RequireUser(tokens *token.Issuer) fiber.Handler { return requireKind(tokens, token.KindUser) }

// RequireAdmin admits requests carrying a valid admin token.
func RequireAdmin(tokens *token.Issuer) fiber.Handler { return requireKind(tokens, token.KindAdmin) }

// RequireCapability must run after RequireAdmin. The role in the token
// decides what the admin may do.
func RequireCapability(want domain.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, _ := c.Locals(localClaims).(*token.Claims)
		if claims == nil || !claims.Role.Can(want) {
			msg := "Permission denied"
			if want == domain.CapManageAdmins {
				msg = "Super admin or God access required"
			}
			return deny(c, "access.denied.capability", domain.Forbidden("%s", msg))
		}
		return c.Next()
	}
}

func deny(c *fiber.Ctx, action string, err error) error {
	applog.Security(c, action, map[string]any{"reason": err.Error()})
	return c.Status(statusOf(err)).JSON(fiber.Map{"message": err.Error()})
}

// subject is the authenticated user or admin id.
func subject(c *fiber.Ctx) string {
	s, _ := c.Locals(applog.LocalSubject).(string)
	return s
}
