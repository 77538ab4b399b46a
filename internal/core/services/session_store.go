package services

import (
	"context"
	"log"
	"net/http"
	"sync"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/core/guard"
	"storefront-sync/internal/core/lifecycle"
)

// SessionState is the authentication state of the client
type SessionState string

const (
	StateAnonymous      SessionState = "anonymous"
	StateAuthenticating SessionState = "authenticating"
	StateRestoring      SessionState = "restoring"
	StateAuthenticated  SessionState = "authenticated"
)

const (
	opAuth     = "auth"
	opProfile  = "profile"
	opUpdate   = "updateProfile"
	opPassword = "password"
)

// SessionSnapshot is a consistent copy of session state
type SessionSnapshot struct {
	State           SessionState `json:"state"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	Identity        *domain.User `json:"identity"`
	Loading         bool         `json:"loading"`
	Error           string       `json:"error,omitempty"`
}

// Guard returns the fields the access guard reads
func (s SessionSnapshot) Guard() guard.Session {
	return guard.Session{
		IsAuthenticated: s.IsAuthenticated,
		Identity:        s.Identity,
		Loading:         s.Loading,
	}
}

// credentialsRequest is the login and signup payload
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// SessionStore owns the identity and the credential pair
type SessionStore struct {
	gw      Gateway
	persist SessionPersistence

	mu             sync.RWMutex
	cred           domain.Credential
	identity       *domain.User
	ops            *lifecycle.Tracker
	errMsg         string
	authenticating int
	restoreTried   bool
}

// NewSessionStore creates a session store and reads persisted credentials
// once. A stored token means the session starts out authenticated with an
// unknown identity (restoring).
func NewSessionStore(ctx context.Context, gw Gateway, persist SessionPersistence) *SessionStore {
	s := &SessionStore{
		gw:      gw,
		persist: persist,
		ops:     lifecycle.NewTracker(),
	}

	cred, err := persist.Load(ctx)
	switch {
	case err != nil:
		log.Printf("⚠️ Warning: failed to load saved session: %v", err)
	case cred == nil:
	case !cred.Complete():
		log.Println("⚠️ Warning: discarding incomplete saved credential pair")
		if err := persist.Clear(ctx); err != nil {
			log.Printf("⚠️ Warning: failed to clear saved session: %v", err)
		}
	default:
		s.cred = *cred
		log.Println("🔄 Saved session found, identity will be restored")
	}
	return s
}

// Login authenticates with email and password
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, "/auth/login", credentialsRequest{Email: email, Password: password}, "Login failed")
}

// Signup registers a new customer account and authenticates it.
// Confirm-password checks belong to the caller.
func (s *SessionStore) Signup(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, "/auth/signup", credentialsRequest{Email: email, Password: password}, "Signup failed")
}

// Refresh exchanges the refresh token for a new credential pair
func (s *SessionStore) Refresh(ctx context.Context) error {
	s.mu.RLock()
	refreshToken := s.cred.RefreshToken
	s.mu.RUnlock()
	if refreshToken == "" {
		return domain.ErrNotAuthenticated
	}
	return s.authenticate(ctx, "/auth/refresh", refreshRequest{RefreshToken: refreshToken}, "Token refresh failed")
}

func (s *SessionStore) authenticate(ctx context.Context, path string, body any, fallback string) error {
	s.mu.Lock()
	tk := s.ops.Begin(opAuth)
	s.errMsg = ""
	s.authenticating++
	s.mu.Unlock()

	var resp domain.AuthResponse
	err := s.gw.Request(ctx, http.MethodPost, path, body, nil, &resp)
	if err == nil && !resp.Credential().Complete() {
		err = domain.ErrInvalidCredentialPair
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticating--

	if !s.ops.Finish(tk, err) {
		if err != nil {
			return err
		}
		return lifecycle.ErrSuperseded
	}
	if err != nil {
		s.errMsg = domain.Message(err, fallback)
		return err
	}

	cred := resp.Credential()
	if perr := s.persist.Save(ctx, cred); perr != nil {
		log.Printf("⚠️ Warning: failed to persist session: %v", perr)
	}
	user := resp.User
	s.cred = cred
	s.identity = &user
	s.restoreTried = true

	log.Printf("✅ Session authenticated: %s (%s)", user.Email, user.Role)
	return nil
}

// FetchIdentity restores the identity behind a persisted token. It fires at
// most once per credential: it is a no-op when there is no token, when the
// identity is known, or when a restore is already running or has failed.
func (s *SessionStore) FetchIdentity(ctx context.Context) error {
	s.mu.Lock()
	if s.cred.AccessToken == "" || s.identity != nil || s.restoreTried {
		s.mu.Unlock()
		return nil
	}
	s.restoreTried = true
	tk := s.ops.Begin(opProfile)
	s.mu.Unlock()

	var user domain.User
	err := s.gw.Request(ctx, http.MethodGet, "/auth/profile", nil, nil, &user)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ops.Finish(tk, err) {
		if err != nil {
			return err
		}
		return lifecycle.ErrSuperseded
	}
	if err != nil {
		s.errMsg = domain.Message(err, "Failed to fetch profile")
		log.Printf("❌ Session restore failed: %v", err)
		return err
	}
	s.identity = &user
	log.Printf("✅ Session restored: %s (%s)", user.Email, user.Role)
	return nil
}

// UpdateIdentity applies a partial profile update and replaces the identity
func (s *SessionStore) UpdateIdentity(ctx context.Context, update domain.ProfileUpdate) error {
	s.mu.Lock()
	if s.cred.AccessToken == "" {
		s.mu.Unlock()
		return domain.ErrNotAuthenticated
	}
	tk := s.ops.Begin(opUpdate)
	s.errMsg = ""
	s.mu.Unlock()

	var user domain.User
	err := s.gw.Request(ctx, http.MethodPut, "/auth/profile", update, nil, &user)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ops.Finish(tk, err) {
		if err != nil {
			return err
		}
		return lifecycle.ErrSuperseded
	}
	if err != nil {
		s.errMsg = domain.Message(err, "Failed to update profile")
		return err
	}
	s.identity = &user
	return nil
}

// ChangePassword changes the account password; the identity is untouched
func (s *SessionStore) ChangePassword(ctx context.Context, current, next string) error {
	s.mu.Lock()
	if s.cred.AccessToken == "" {
		s.mu.Unlock()
		return domain.ErrNotAuthenticated
	}
	tk := s.ops.Begin(opPassword)
	s.errMsg = ""
	s.mu.Unlock()

	err := s.gw.Request(ctx, http.MethodPut, "/auth/password",
		changePasswordRequest{CurrentPassword: current, NewPassword: next}, nil, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ops.Finish(tk, err) && err != nil {
		s.errMsg = domain.Message(err, "Failed to change password")
	}
	return err
}

// Logout forgets identity and credentials in memory and in persistence.
// Responses to requests issued before logout are discarded.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cred = domain.Credential{}
	s.identity = nil
	s.errMsg = ""
	s.restoreTried = false
	s.ops.Reset()

	if err := s.persist.Clear(ctx); err != nil {
		log.Printf("⚠️ Warning: failed to clear saved session: %v", err)
		return err
	}
	log.Println("✅ Session cleared")
	return nil
}

// AccessToken returns the current bearer token
func (s *SessionStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.AccessToken
}

// Credential returns the current credential pair
func (s *SessionStore) Credential() domain.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred
}

// IsAuthenticated is true whenever an access token is present, even before
// the identity is known
func (s *SessionStore) IsAuthenticated() bool {
	return s.AccessToken() != ""
}

// Identity returns a copy of the current identity, nil if unknown
func (s *SessionStore) Identity() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.identity)
}

// Loading reports whether any session request is in flight
func (s *SessionStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ops.Busy()
}

// Error returns the last recorded error message
func (s *SessionStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// ClearError resets the recorded error
func (s *SessionStore) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// State returns the current session state
func (s *SessionStore) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state()
}

func (s *SessionStore) state() SessionState {
	switch {
	case s.authenticating > 0:
		return StateAuthenticating
	case s.cred.AccessToken == "":
		return StateAnonymous
	case s.identity == nil:
		return StateRestoring
	default:
		return StateAuthenticated
	}
}

// Snapshot returns a consistent copy of the session
func (s *SessionStore) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionSnapshot{
		State:           s.state(),
		IsAuthenticated: s.cred.AccessToken != "",
		Identity:        copyUser(s.identity),
		Loading:         s.ops.Busy(),
		Error:           s.errMsg,
	}
}

func copyUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
