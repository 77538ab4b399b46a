package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront-sync/internal/core/domain"
)

func TestDecideTable(t *testing.T) {
	admin := &domain.User{ID: "u1", Role: domain.RoleAdmin}
	agent := &domain.User{ID: "u9", Role: domain.RoleDelivery}

	tests := []struct {
		name     string
		authed   bool
		identity *domain.User
		loading  bool
		required domain.Role
		want     Outcome
	}{
		{"anonymous", false, nil, false, domain.RoleAdmin, Outcome{RedirectLogin, "/login"}},
		{"anonymous while loading", false, nil, true, "", Outcome{RedirectLogin, "/login"}},
		{"restoring", true, nil, true, domain.RoleAdmin, Outcome{RenderLoading, ""}},
		{"restore failed", true, nil, false, domain.RoleAdmin, Outcome{RedirectLogin, "/login"}},
		{"role matches", true, admin, false, domain.RoleAdmin, Outcome{RenderChildren, ""}},
		{"no role required", true, agent, true, "", Outcome{RenderChildren, ""}},
		{"role mismatch", true, agent, false, domain.RoleAdmin, Outcome{RedirectDashboard, "/delivery"}},
		{"admin on customer view", true, admin, false, domain.RoleCustomer, Outcome{RedirectDashboard, "/admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.authed, tt.identity, tt.loading, tt.required)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLanding(t *testing.T) {
	assert.Equal(t, "/login", Landing(Session{}))
	assert.Equal(t, "/customer", Landing(Session{IsAuthenticated: true}))
	assert.Equal(t, "/delivery", Landing(Session{
		IsAuthenticated: true,
		Identity:        &domain.User{Role: domain.RoleDelivery},
	}))
}
