package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-sync/internal/core/domain"
)

func directory() []domain.User {
	return []domain.User{
		{ID: "u1", Email: "a@x.com", Role: domain.RoleCustomer, IsActive: true},
		{ID: "u8", Email: "d1@x.com", Role: domain.RoleDelivery, IsActive: false},
		{ID: "u9", Email: "d2@x.com", Role: domain.RoleDelivery, IsActive: true},
	}
}

func TestDeliveryAgentsAreActiveDeliveryUsers(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodGet, "/users", directory())
	s := NewUserStore(gw)

	require.NoError(t, s.List(context.Background()))

	agents := s.DeliveryAgents()
	require.Len(t, agents, 1)
	assert.Equal(t, "u9", agents[0].ID)
	assert.Len(t, s.Users(), 3)
}

func TestBlockAndUnblockPatchLocally(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodGet, "/users", directory())
	gw.reply(http.MethodPut, "/users/u9/block", nil)
	gw.reply(http.MethodPut, "/users/u8/unblock", nil)
	s := NewUserStore(gw)
	require.NoError(t, s.List(context.Background()))

	require.NoError(t, s.Block(context.Background(), "u9"))
	require.NoError(t, s.Unblock(context.Background(), "u8"))

	snap := s.Snapshot()
	assert.False(t, snap.Users[2].IsActive)
	assert.True(t, snap.Users[1].IsActive)
	require.Len(t, snap.DeliveryAgents, 1)
	assert.Equal(t, "u8", snap.DeliveryAgents[0].ID)
	assert.Equal(t, 1, gw.count(http.MethodGet, "/users"))
}

func TestBlockFailureRecordsMessage(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodGet, "/users", directory())
	gw.fail(http.MethodPut, "/users/u1/block", http.StatusForbidden, "")
	s := NewUserStore(gw)
	require.NoError(t, s.List(context.Background()))

	require.Error(t, s.Block(context.Background(), "u1"))

	assert.Equal(t, "Failed to block user", s.Error())
	assert.True(t, s.Users()[0].IsActive)
}
