// Package apiserver is an in-memory fiber implementation of the storefront
// REST API. Tests drive the real gateway client against it through
// Transport, which calls fiber.App.Test so no socket is opened.
package apiserver

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/pkg/jwt"
	"storefront-sync/internal/pkg/password"
)

// BaseURL is the API prefix the server answers under
const BaseURL = "http://storefront.test/api"

type account struct {
	user domain.User
	hash string
}

// Server holds the API state
type Server struct {
	app *fiber.App

	// AccessTTL is the lifetime of issued access tokens
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	secret        string
	refreshSecret string

	mu       sync.Mutex
	accounts map[string]*account
	byEmail  map[string]string
	products []domain.Product
	carts    map[string][]domain.OrderLine
	orders   []domain.Order
}

// New creates a server with an empty store
func New() *Server {
	s := &Server{
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		secret:        "apiserver-access",
		refreshSecret: "apiserver-refresh",
		accounts:      make(map[string]*account),
		byEmail:       make(map[string]string),
		carts:         make(map[string][]domain.OrderLine),
	}

	s.app = fiber.New(fiber.Config{
		Immutable: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	s.routes()
	return s
}

// App exposes the fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

type roundTripper struct {
	app *fiber.App
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt.app.Test(req, -1)
}

// Transport returns a RoundTripper that serves requests in-process
func (s *Server) Transport() http.RoundTripper {
	return roundTripper{app: s.app}
}

// AddUser seeds an active account
func (s *Server) AddUser(email, pass string, role domain.Role) domain.User {
	hash, err := password.Hash(pass, bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	now := time.Now()
	u := domain.User{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(email),
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[u.ID] = &account{user: u, hash: hash}
	s.byEmail[u.Email] = u.ID
	return u
}

// AddProduct seeds a product; an empty ID is generated
func (s *Server) AddProduct(p domain.Product) domain.Product {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = p.CreatedAt

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, p)
	return p
}

// AddOrder seeds an order as stored
func (s *Server) AddOrder(o domain.Order) domain.Order {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, o)
	return o
}

// Order returns the stored order
func (s *Server) Order(id string) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.orderIndex(id); i >= 0 {
		return s.joinOrder(s.orders[i]), true
	}
	return domain.Order{}, false
}

// CartLines returns the stored cart of a user
func (s *Server) CartLines(userID string) []domain.OrderLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.OrderLine(nil), s.carts[userID]...)
}

// IssueTokens returns a fresh credential pair for a seeded user
func (s *Server) IssueTokens(userID string) (domain.Credential, error) {
	s.mu.Lock()
	acc, ok := s.accounts[userID]
	s.mu.Unlock()
	if !ok {
		return domain.Credential{}, fiber.ErrNotFound
	}
	return s.issue(acc.user)
}

func (s *Server) issue(u domain.User) (domain.Credential, error) {
	access, err := jwt.GenerateAccessToken(u.ID, u.Email, string(u.Role), s.secret, s.AccessTTL)
	if err != nil {
		return domain.Credential{}, err
	}
	refresh, err := jwt.GenerateRefreshToken(u.ID, uuid.NewString(), s.refreshSecret, s.RefreshTTL)
	if err != nil {
		return domain.Credential{}, err
	}
	return domain.Credential{AccessToken: access, RefreshToken: refresh}, nil
}

// authRequired validates the bearer token and stores the caller in locals
func (s *Server) authRequired(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authorization header required"})
	}
	claims, err := jwt.ValidateAccessToken(token, s.secret)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	s.mu.Lock()
	acc, ok := s.accounts[claims.UserID]
	s.mu.Unlock()
	if !ok || !acc.user.IsActive {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Account is deactivated"})
	}

	c.Locals("userId", claims.UserID)
	c.Locals("role", domain.Role(claims.Role))
	return c.Next()
}

func requireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if r, _ := c.Locals("role").(domain.Role); r != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
		}
		return c.Next()
	}
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("userId").(string)
	return id
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// callers hold mu
func (s *Server) productIndex(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

// callers hold mu
func (s *Server) orderIndex(id string) int {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i
		}
	}
	return -1
}

// joinOrder attaches current product snapshots to the order lines; the
// stored total is never touched. Callers hold mu.
func (s *Server) joinOrder(o domain.Order) domain.Order {
	items := make([]domain.CartItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = domain.CartItem{ProductID: item.ProductID, Quantity: item.Quantity}
		if j := s.productIndex(item.ProductID); j >= 0 {
			p := s.products[j]
			items[i].Product = &p
		}
	}
	o.Items = items
	return o
}
