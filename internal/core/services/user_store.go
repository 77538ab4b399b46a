package services

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/core/lifecycle"
)

const (
	opListUsers = "users"
	opBlock     = "block"
)

// UserSnapshot is a consistent copy of the user directory
type UserSnapshot struct {
	Users          []domain.User `json:"users"`
	DeliveryAgents []domain.User `json:"deliveryAgents"`
	Loading        bool          `json:"loading"`
	Error          string        `json:"error,omitempty"`
}

// UserStore is the admin view of every account
type UserStore struct {
	gw Gateway

	mu     sync.RWMutex
	users  []domain.User
	ops    *lifecycle.Tracker
	errMsg string
}

// NewUserStore creates a user directory store
func NewUserStore(gw Gateway) *UserStore {
	return &UserStore{gw: gw, ops: lifecycle.NewTracker()}
}

// List loads every user (admin)
func (s *UserStore) List(ctx context.Context) error {
	s.mu.Lock()
	tk := s.ops.Begin(opListUsers)
	s.errMsg = ""
	s.mu.Unlock()

	var users []domain.User
	err := s.gw.Request(ctx, http.MethodGet, "/users", nil, nil, &users)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ops.Finish(tk, err) {
		if err != nil {
			return err
		}
		return lifecycle.ErrSuperseded
	}
	if err != nil {
		s.errMsg = domain.Message(err, "Failed to fetch users")
		return err
	}
	s.users = users
	return nil
}

// Block deactivates an account
func (s *UserStore) Block(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

// Unblock reactivates an account
func (s *UserStore) Unblock(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

func (s *UserStore) setActive(ctx context.Context, id string, active bool) error {
	action, fallback := "block", "Failed to block user"
	if active {
		action, fallback = "unblock", "Failed to unblock user"
	}

	s.mu.Lock()
	tk := s.ops.Begin(opBlock)
	s.errMsg = ""
	s.mu.Unlock()

	err := s.gw.Request(ctx, http.MethodPut, "/users/"+url.PathEscape(id)+"/"+action, nil, nil, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops.Finish(tk, err)
	if err != nil {
		s.errMsg = domain.Message(err, fallback)
		return err
	}
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].IsActive = active
		}
	}
	return nil
}

// Users returns a copy of the directory
func (s *UserStore) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.User(nil), s.users...)
}

// DeliveryAgents returns the active users with the delivery role
func (s *UserStore) DeliveryAgents() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deliveryAgents(s.users)
}

// Reset forgets the directory (used on logout)
func (s *UserStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = nil
	s.errMsg = ""
	s.ops.Reset()
}

// Loading reports whether any directory request is in flight
func (s *UserStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ops.Busy()
}

// Error returns the last recorded error message
func (s *UserStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Snapshot returns a consistent copy of the directory
func (s *UserStore) Snapshot() UserSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return UserSnapshot{
		Users:          append([]domain.User(nil), s.users...),
		DeliveryAgents: deliveryAgents(s.users),
		Loading:        s.ops.Busy(),
		Error:          s.errMsg,
	}
}

func deliveryAgents(users []domain.User) []domain.User {
	agents := make([]domain.User, 0)
	for _, u := range users {
		if u.Role == domain.RoleDelivery && u.IsActive {
			agents = append(agents, u)
		}
	}
	return agents
}
