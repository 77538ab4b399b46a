package domain

import "time"

// Role represents user role in the storefront
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleDelivery Role = "delivery"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleDelivery:
		return true
	}
	return false
}

// User is the authenticated identity as returned by the API
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileUpdate is a partial identity update (PUT /auth/profile)
type ProfileUpdate struct {
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
}

// Credential is the access/refresh token pair.
// Both fields are set or both are empty.
type Credential struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Complete reports whether both tokens are present
func (c Credential) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// IsZero reports whether neither token is present
func (c Credential) IsZero() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// AuthResponse is returned by login, signup and refresh
type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// Credential extracts the token pair from the response
func (a AuthResponse) Credential() Credential {
	return Credential{AccessToken: a.Token, RefreshToken: a.RefreshToken}
}

// Product is a catalog entry
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Images      []string  `json:"images"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateProductRequest is the admin payload for POST /products
type CreateProductRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Images      []string `json:"images"`
	Category    string   `json:"category"`
}

// UpdateProductRequest is the admin payload for PUT /products/:id
type UpdateProductRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	Images      []string `json:"images,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

// ProductQuery holds catalog listing parameters
type ProductQuery struct {
	Page      int    `json:"page" schema:"page,omitempty"`
	Limit     int    `json:"limit" schema:"limit,omitempty"`
	Category  string `json:"category,omitempty" schema:"category,omitempty"`
	Search    string `json:"search,omitempty" schema:"search,omitempty"`
	SortBy    string `json:"sortBy" schema:"sortBy,omitempty"`
	SortOrder string `json:"sortOrder" schema:"sortOrder,omitempty"`
}

// ProductPage is the GET /products response
type ProductPage struct {
	Products   []Product `json:"products"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Categories []string  `json:"categories"`
}

// CartItem is a product-quantity line. Product is a best-effort join
// and may be nil when the referenced product no longer exists.
type CartItem struct {
	ProductID string   `json:"productId"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// Cart is the GET /cart response
type Cart struct {
	Items []CartItem `json:"items"`
	Total int        `json:"total"`
}

// Order is a placed order. Total is fixed by the server at creation.
type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"userId"`
	Items      []CartItem  `json:"items"`
	Total      float64     `json:"total"`
	Status     OrderStatus `json:"status"`
	Address    string      `json:"address"`
	AssignedTo string      `json:"assignedTo,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// OrderLine is one requested line in a new order
type OrderLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest is the POST /orders payload
type CreateOrderRequest struct {
	Items   []OrderLine `json:"items"`
	Address string      `json:"address"`
}
