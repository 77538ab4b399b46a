package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/core/guard"
	"storefront-sync/internal/core/lifecycle"
)

func authResponse(token, refresh string, user domain.User) domain.AuthResponse {
	return domain.AuthResponse{Token: token, RefreshToken: refresh, User: user}
}

var alice = domain.User{ID: "u1", Email: "a@x.com", Role: domain.RoleCustomer, IsActive: true}

func TestLoginAuthenticatesAndPersists(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodPost, "/auth/login", authResponse("T", "R", alice))
	persist := &memoryPersistence{}
	s := NewSessionStore(context.Background(), gw, persist)

	require.NoError(t, s.Login(context.Background(), "a@x.com", "secret1"))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "T", s.AccessToken())
	assert.Equal(t, alice.Email, s.Identity().Email)
	assert.Equal(t, StateAuthenticated, s.State())
	assert.False(t, s.Loading())
	assert.Empty(t, s.Error())
	assert.Equal(t, &domain.Credential{AccessToken: "T", RefreshToken: "R"}, persist.stored())
}

func TestLoginFailureRecordsServerMessage(t *testing.T) {
	gw := newFakeGateway()
	gw.fail(http.MethodPost, "/auth/login", http.StatusUnauthorized, "Invalid credentials")
	persist := &memoryPersistence{}
	s := NewSessionStore(context.Background(), gw, persist)

	err := s.Login(context.Background(), "a@x.com", "wrong")

	require.Error(t, err)
	assert.True(t, domain.IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "Invalid credentials", s.Error())
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, persist.stored())
}

func TestLoginFailureWithoutMessageUsesFallback(t *testing.T) {
	gw := newFakeGateway()
	gw.on(http.MethodPost, "/auth/login", func(call) (any, error) {
		return nil, &domain.NetworkError{Method: http.MethodPost, Path: "/auth/login", Err: errors.New("refused")}
	})
	s := NewSessionStore(context.Background(), gw, &memoryPersistence{})

	require.Error(t, s.Login(context.Background(), "a@x.com", "secret1"))
	assert.Equal(t, "Login failed", s.Error())
}

func TestLoginRejectsHalfCredentialPair(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodPost, "/auth/login", authResponse("T", "", alice))
	persist := &memoryPersistence{}
	s := NewSessionStore(context.Background(), gw, persist)

	err := s.Login(context.Background(), "a@x.com", "secret1")

	assert.ErrorIs(t, err, domain.ErrInvalidCredentialPair)
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.Identity())
	assert.Zero(t, persist.saves)
}

func TestLoginSucceedsWhenPersistenceFails(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodPost, "/auth/login", authResponse("T", "R", alice))
	persist := &memoryPersistence{saveErr: errors.New("disk full")}
	s := NewSessionStore(context.Background(), gw, persist)

	require.NoError(t, s.Login(context.Background(), "a@x.com", "secret1"))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, 1, persist.saves)
}

func TestSignupUsesSignupEndpoint(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodPost, "/auth/signup", authResponse("T", "R", alice))
	s := NewSessionStore(context.Background(), gw, &memoryPersistence{})

	require.NoError(t, s.Signup(context.Background(), "a@x.com", "secret1"))
	assert.Equal(t, 1, gw.count(http.MethodPost, "/auth/signup"))
	assert.Equal(t, domain.RoleCustomer, s.Identity().Role)
}

func TestRestoreFetchesIdentityOnce(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodGet, "/auth/profile", alice)
	persist := &memoryPersistence{cred: &domain.Credential{AccessToken: "T", RefreshToken: "R"}}
	s := NewSessionStore(context.Background(), gw, persist)

	assert.Equal(t, StateRestoring, s.State())
	assert.True(t, s.IsAuthenticated())
	assert.Nil(t, s.Identity())

	require.NoError(t, s.FetchIdentity(context.Background()))
	require.NoError(t, s.FetchIdentity(context.Background()))

	assert.Equal(t, 1, gw.count(http.MethodGet, "/auth/profile"))
	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, "u1", s.Identity().ID)
}

func TestFailedRestoreIsNotRetried(t *testing.T) {
	gw := newFakeGateway()
	gw.fail(http.MethodGet, "/auth/profile", http.StatusUnauthorized, "Invalid token")
	persist := &memoryPersistence{cred: &domain.Credential{AccessToken: "T", RefreshToken: "R"}}
	s := NewSessionStore(context.Background(), gw, persist)

	require.Error(t, s.FetchIdentity(context.Background()))
	require.NoError(t, s.FetchIdentity(context.Background()))

	assert.Equal(t, 1, gw.count(http.MethodGet, "/auth/profile"))
	out := guard.Evaluate(s.Snapshot().Guard(), domain.RoleCustomer)
	assert.Equal(t, guard.RedirectLogin, out.Decision)
}

func TestFetchIdentityWithoutTokenIsNoop(t *testing.T) {
	gw := newFakeGateway()
	s := NewSessionStore(context.Background(), gw, &memoryPersistence{})

	require.NoError(t, s.FetchIdentity(context.Background()))
	assert.Zero(t, gw.total())
}

func TestIncompleteSavedPairIsDiscarded(t *testing.T) {
	persist := &memoryPersistence{cred: &domain.Credential{AccessToken: "T"}}
	s := NewSessionStore(context.Background(), newFakeGateway(), persist)

	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, StateAnonymous, s.State())
	assert.Nil(t, persist.stored())
}

func TestLogoutRedirectsGuardToLogin(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodPost, "/auth/login", authResponse("T", "R", alice))
	persist := &memoryPersistence{}
	s := NewSessionStore(context.Background(), gw, persist)
	require.NoError(t, s.Login(context.Background(), "a@x.com", "secret1"))

	require.NoError(t, s.Logout(context.Background()))

	assert.Equal(t, "", s.AccessToken())
	assert.Nil(t, s.Identity())
	assert.Nil(t, persist.stored())
	out := guard.Evaluate(s.Snapshot().Guard(), domain.RoleCustomer)
	assert.Equal(t, guard.RedirectLogin, out.Decision)
	assert.Equal(t, guard.LoginPath, out.Location)
}

func TestLoginResponseAfterLogoutIsDiscarded(t *testing.T) {
	gw := newFakeGateway()
	release := make(chan struct{})
	started := make(chan struct{})
	gw.on(http.MethodPost, "/auth/login", func(call) (any, error) {
		close(started)
		<-release
		return authResponse("T", "R", alice), nil
	})
	persist := &memoryPersistence{}
	s := NewSessionStore(context.Background(), gw, persist)

	done := make(chan error, 1)
	go func() { done <- s.Login(context.Background(), "a@x.com", "secret1") }()
	<-started
	assert.Equal(t, StateAuthenticating, s.State())
	require.NoError(t, s.Logout(context.Background()))
	close(release)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, lifecycle.ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("login did not return")
	}
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, persist.stored())
}

func TestRefreshRequiresRefreshToken(t *testing.T) {
	s := NewSessionStore(context.Background(), newFakeGateway(), &memoryPersistence{})
	assert.ErrorIs(t, s.Refresh(context.Background()), domain.ErrNotAuthenticated)
}

func TestRefreshReplacesCredentialPair(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodPost, "/auth/login", authResponse("T1", "R1", alice))
	gw.on(http.MethodPost, "/auth/refresh", func(c call) (any, error) {
		body := c.Body.(refreshRequest)
		assert.Equal(t, "R1", body.RefreshToken)
		return authResponse("T2", "R2", alice), nil
	})
	persist := &memoryPersistence{}
	s := NewSessionStore(context.Background(), gw, persist)
	require.NoError(t, s.Login(context.Background(), "a@x.com", "secret1"))

	require.NoError(t, s.Refresh(context.Background()))

	assert.Equal(t, domain.Credential{AccessToken: "T2", RefreshToken: "R2"}, s.Credential())
	assert.Equal(t, "T2", persist.stored().AccessToken)
}

func TestUpdateIdentityReplacesIdentity(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodPost, "/auth/login", authResponse("T", "R", alice))
	updated := alice
	updated.Address = "1 Main St"
	gw.reply(http.MethodPut, "/auth/profile", updated)
	s := NewSessionStore(context.Background(), gw, &memoryPersistence{})
	require.NoError(t, s.Login(context.Background(), "a@x.com", "secret1"))

	addr := "1 Main St"
	require.NoError(t, s.UpdateIdentity(context.Background(), domain.ProfileUpdate{Address: &addr}))
	assert.Equal(t, "1 Main St", s.Identity().Address)
}

func TestChangePasswordKeepsIdentity(t *testing.T) {
	gw := newFakeGateway()
	gw.reply(http.MethodPost, "/auth/login", authResponse("T", "R", alice))
	gw.fail(http.MethodPut, "/auth/password", http.StatusBadRequest, "Current password is incorrect")
	s := NewSessionStore(context.Background(), gw, &memoryPersistence{})
	require.NoError(t, s.Login(context.Background(), "a@x.com", "secret1"))

	require.Error(t, s.ChangePassword(context.Background(), "bad", "newpass"))
	assert.Equal(t, "Current password is incorrect", s.Error())
	assert.Equal(t, "u1", s.Identity().ID)
}

func TestAnonymousProfileWritesAreRejected(t *testing.T) {
	gw := newFakeGateway()
	s := NewSessionStore(context.Background(), gw, &memoryPersistence{})

	assert.ErrorIs(t, s.UpdateIdentity(context.Background(), domain.ProfileUpdate{}), domain.ErrNotAuthenticated)
	assert.ErrorIs(t, s.ChangePassword(context.Background(), "a", "b"), domain.ErrNotAuthenticated)
	assert.Zero(t, gw.total())
}
