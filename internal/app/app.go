// Package app assembles the stores from configuration for the dashboard
// server and the command line client.
package app

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"storefront-sync/internal/adapters/gateway"
	"storefront-sync/internal/adapters/persistence/session"
	"storefront-sync/internal/config"
	"storefront-sync/internal/core/services"
)

// Runtime is a wired client
type Runtime struct {
	Config  *config.Config
	Gateway *gateway.Client
	Stores  *services.Stores
}

// New connects the session backend, builds the gateway and the stores,
// and binds the gateway's bearer token to the session
func New(ctx context.Context, cfg *config.Config, opts ...gateway.Option) (*Runtime, error) {
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return nil, err
	}

	persist, err := session.Open(cfg.Session, db)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	base := []gateway.Option{gateway.WithTimeout(cfg.API.Timeout)}
	if cfg.API.RateLimit > 0 {
		base = append(base, gateway.WithRateLimit(rate.Limit(cfg.API.RateLimit), cfg.API.RateBurst))
	}
	gw := gateway.New(cfg.API.BaseURL, append(base, opts...)...)

	stores := services.NewStores(ctx, gw, persist, gateway.EncodeQuery)
	gw.SetTokenSource(stores.Session)

	return &Runtime{Config: cfg, Gateway: gw, Stores: stores}, nil
}

// Keeper returns a session keeper for the configured refresh schedule
func (r *Runtime) Keeper() *services.SessionKeeper {
	return services.NewSessionKeeper(r.Stores.Session, r.Config.Refresh.Schedule, r.Config.Refresh.Leeway)
}

// Close releases the session database, if any
func (r *Runtime) Close() error {
	return config.CloseDatabase()
}
