package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/pkg/jwt"
)

// Refresher is the part of the session the keeper drives
type Refresher interface {
	AccessToken() string
	Refresh(ctx context.Context) error
}

// SessionKeeper refreshes the credential pair on a schedule, shortly
// before the access token expires. Expired sessions are never detected
// from 401 responses; this job is the only refresh trigger.
type SessionKeeper struct {
	session  Refresher
	schedule string
	leeway   time.Duration
	timeout  time.Duration
	now      func() time.Time

	cron *cron.Cron
}

// NewSessionKeeper creates a keeper; schedule uses cron spec syntax
// (e.g. "@every 1m")
func NewSessionKeeper(session Refresher, schedule string, leeway time.Duration) *SessionKeeper {
	return &SessionKeeper{
		session:  session,
		schedule: schedule,
		leeway:   leeway,
		timeout:  30 * time.Second,
		now:      time.Now,
		cron:     cron.New(),
	}
}

// Start registers the refresh job and launches the scheduler
func (k *SessionKeeper) Start() error {
	if _, err := k.cron.AddFunc(k.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), k.timeout)
		defer cancel()
		if _, err := k.Check(ctx); err != nil {
			log.Printf("❌ Session refresh failed: %v", err)
		}
	}); err != nil {
		return err
	}
	k.cron.Start()
	log.Printf("🚀 SessionKeeper started (%s, leeway %s)", k.schedule, k.leeway)
	return nil
}

// Stop halts the scheduler and waits for a running job
func (k *SessionKeeper) Stop() {
	<-k.cron.Stop().Done()
	log.Println("🛑 SessionKeeper stopped")
}

// Check refreshes the session when its access token is about to expire.
// It reports whether a refresh was performed.
func (k *SessionKeeper) Check(ctx context.Context) (bool, error) {
	token := k.session.AccessToken()
	if token == "" {
		return false, nil
	}
	if !jwt.ExpiresWithin(token, k.leeway, k.now()) {
		return false, nil
	}

	log.Println("🔄 Access token expiring, refreshing session")
	if err := k.session.Refresh(ctx); err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
