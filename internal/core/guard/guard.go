// Package guard decides what a role-gated view renders from session state.
package guard

import "storefront-sync/internal/core/domain"

// Decision is the outcome kind of a guard check
type Decision int

const (
	RenderChildren Decision = iota
	RenderLoading
	RedirectLogin
	RedirectDashboard
)

func (d Decision) String() string {
	switch d {
	case RenderChildren:
		return "render"
	case RenderLoading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectDashboard:
		return "redirect_dashboard"
	}
	return "unknown"
}

// LoginPath is where unauthenticated visitors are sent
const LoginPath = "/login"

// Outcome is a decision plus the redirect target, if any
type Outcome struct {
	Decision Decision
	Location string
}

// Session is the slice of session state the guard reads
type Session struct {
	IsAuthenticated bool
	Identity        *domain.User
	Loading         bool
}

// Decide applies the access table. The order of checks matters: a missing
// identity while loading must show a placeholder, never a login redirect.
func Decide(isAuthenticated bool, identity *domain.User, loading bool, required domain.Role) Outcome {
	if !isAuthenticated {
		return Outcome{Decision: RedirectLogin, Location: LoginPath}
	}
	if identity == nil {
		if loading {
			return Outcome{Decision: RenderLoading}
		}
		// session restore failed
		return Outcome{Decision: RedirectLogin, Location: LoginPath}
	}
	if required != "" && identity.Role != required {
		return Outcome{Decision: RedirectDashboard, Location: DashboardPath(identity.Role)}
	}
	return Outcome{Decision: RenderChildren}
}

// Evaluate is Decide over a session snapshot
func Evaluate(s Session, required domain.Role) Outcome {
	return Decide(s.IsAuthenticated, s.Identity, s.Loading, required)
}

// DashboardPath returns the dashboard root for role
func DashboardPath(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return "/admin"
	case domain.RoleDelivery:
		return "/delivery"
	default:
		return "/customer"
	}
}

// Landing resolves the generic /dashboard entry point
func Landing(s Session) string {
	if !s.IsAuthenticated {
		return LoginPath
	}
	if s.Identity == nil {
		return DashboardPath(domain.RoleCustomer)
	}
	return DashboardPath(s.Identity.Role)
}
