package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/core/guard"
	"storefront-sync/internal/core/services"
	"storefront-sync/internal/pkg/response"
)

// SessionView is the part of the session store the guard reads
type SessionView interface {
	FetchIdentity(ctx context.Context) error
	Snapshot() services.SessionSnapshot
}

// Restore starts identity restoration for a persisted token before the
// guard looks at the session. It runs at most once per credential.
func Restore(c *fiber.Ctx, session SessionView) services.SessionSnapshot {
	snap := session.Snapshot()
	if snap.IsAuthenticated && snap.Identity == nil && !snap.Loading {
		_ = session.FetchIdentity(c.UserContext())
		snap = session.Snapshot()
	}
	return snap
}

// RequireRole gates a route group on the session. An empty role admits
// any authenticated identity.
func RequireRole(session SessionView, role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := Restore(c, session)
		out := guard.Evaluate(snap.Guard(), role)

		switch out.Decision {
		case guard.RenderChildren:
			c.Locals("identity", snap.Identity)
			return c.Next()
		case guard.RenderLoading:
			return response.Loading(c)
		default:
			return c.Redirect(out.Location, fiber.StatusFound)
		}
	}
}

// Identity returns the identity admitted by RequireRole
func Identity(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("identity").(*domain.User)
	return u
}
