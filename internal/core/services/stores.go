package services

import "context"

// Stores bundles the client stores that share one gateway and session.
// It only wires them; no store observes another.
type Stores struct {
	Session *SessionStore
	Catalog *CatalogStore
	Cart    *CartStore
	Orders  *OrderStore
	Users   *UserStore
}

// NewStores builds every store over gw. Persisted credentials are loaded
// once, here. The caller binds gw's bearer token to the returned Session.
func NewStores(ctx context.Context, gw Gateway, persist SessionPersistence, encode QueryEncoder) *Stores {
	return &Stores{
		Session: NewSessionStore(ctx, gw, persist),
		Catalog: NewCatalogStore(gw, encode),
		Cart:    NewCartStore(gw),
		Orders:  NewOrderStore(gw),
		Users:   NewUserStore(gw),
	}
}

// Logout ends the session and forgets every per-user collection
func (s *Stores) Logout(ctx context.Context) error {
	err := s.Session.Logout(ctx)
	s.Cart.Reset()
	s.Orders.Reset()
	s.Users.Reset()
	return err
}
