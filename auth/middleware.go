package auth

import (
	"bank-lab/contract"
	"bank-lab/domain"
	"bank-lab/errors"
	"fmt"
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// IdentityKey is the fiber local holding the verified domain.Identity.
const IdentityKey = "identity"

// Protected requires an "Authorization: Bearer <token>" header and stores the
// verified identity for downstream handlers.
func Protected(verifier contract.IdentityVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return fmt.Errorf("%w: missing bearer token", errors.ErrInvalidToken)
		}
		identity, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			return err
		}
		c.Locals(IdentityKey, identity)
		return c.Next()
	}
}

// RequireRole must run after Protected.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFrom(c)
		if !ok || !identity.HasRole(role) {
			return errors.ErrForbidden
		}
		return c.Next()
	}
}

// WebSocketGuard authenticates a live connection with the "token" query
// parameter before the upgrade: an invalid token never gets a session.
func WebSocketGuard(verifier contract.IdentityVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		identity, err := verifier.Verify(c.Query("token"))
		if err != nil {
			return err
		}
		c.Locals(IdentityKey, identity)
		return c.Next()
	}
}

// UpgradeOnly lets anonymous WebSocket upgrades through and nothing else.
func UpgradeOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	}
}

func IdentityFrom(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(IdentityKey).(domain.Identity)
	return identity, ok
}
