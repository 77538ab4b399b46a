package apiserver

import (
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/pkg/jwt"
	"storefront-sync/internal/pkg/pagination"
	"storefront-sync/internal/pkg/password"
)

func (s *Server) routes() {
	api := s.app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", s.signup)
	auth.Post("/login", s.login)
	auth.Post("/refresh", s.refresh)
	auth.Get("/profile", s.authRequired, s.getProfile)
	auth.Put("/profile", s.authRequired, s.updateProfile)
	auth.Put("/password", s.authRequired, s.changePassword)

	api.Get("/products", s.listProducts)
	api.Get("/products/:id", s.getProduct)
	api.Post("/products", s.authRequired, requireRole(domain.RoleAdmin), s.createProduct)
	api.Put("/products/:id", s.authRequired, requireRole(domain.RoleAdmin), s.updateProduct)
	api.Delete("/products/:id", s.authRequired, requireRole(domain.RoleAdmin), s.deleteProduct)

	cart := api.Group("/cart", s.authRequired)
	cart.Get("/", s.getCart)
	cart.Post("/", s.addToCart)
	cart.Delete("/", s.clearCart)
	cart.Put("/:productId", s.updateCartItem)
	cart.Delete("/:productId", s.removeFromCart)

	orders := api.Group("/orders", s.authRequired)
	orders.Post("/", s.createOrder)
	orders.Get("/", s.ownOrders)
	orders.Get("/all", requireRole(domain.RoleAdmin), s.allOrders)
	orders.Get("/:id", s.getOrder)
	orders.Put("/:id/status", requireRole(domain.RoleAdmin), s.updateOrderStatus)
	orders.Put("/:id/assign/:deliveryId", requireRole(domain.RoleAdmin), s.assignOrder)

	delivery := api.Group("/delivery", s.authRequired, requireRole(domain.RoleDelivery))
	delivery.Get("/orders", s.assignedOrders)
	delivery.Put("/orders/:id/delivered", s.markDelivered)

	users := api.Group("/users", s.authRequired, requireRole(domain.RoleAdmin))
	users.Get("/", s.listUsers)
	users.Put("/:id/block", s.setActive(false))
	users.Put("/:id/unblock", s.setActive(true))
}

// ---- auth ----

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) authResponse(c *fiber.Ctx, status int, u domain.User) error {
	cred, err := s.issue(u)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to generate token")
	}
	return c.Status(status).JSON(domain.AuthResponse{Token: cred.AccessToken, RefreshToken: cred.RefreshToken, User: u})
}

func (s *Server) signup(c *fiber.Ctx) error {
	var req credentialsBody
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || len(req.Password) < password.MinLength {
		return fail(c, fiber.StatusBadRequest, "Email and a password of at least 6 characters are required")
	}

	s.mu.Lock()
	_, exists := s.byEmail[email]
	s.mu.Unlock()
	if exists {
		return fail(c, fiber.StatusBadRequest, "User already exists")
	}

	u := s.AddUser(email, req.Password, domain.RoleCustomer)
	return s.authResponse(c, fiber.StatusCreated, u)
}

func (s *Server) login(c *fiber.Ctx) error {
	var req credentialsBody
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	s.mu.Lock()
	acc, ok := s.accounts[s.byEmail[strings.ToLower(req.Email)]]
	s.mu.Unlock()
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if !acc.user.IsActive {
		return fail(c, fiber.StatusUnauthorized, "Account is deactivated")
	}
	if !password.Verify(req.Password, acc.hash) {
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	return s.authResponse(c, fiber.StatusOK, acc.user)
}

func (s *Server) refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	claims, err := jwt.ValidateRefreshToken(req.RefreshToken, s.refreshSecret)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid refresh token")
	}

	s.mu.Lock()
	acc, ok := s.accounts[claims.UserID]
	s.mu.Unlock()
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "User not found")
	}
	if !acc.user.IsActive {
		return fail(c, fiber.StatusUnauthorized, "Account is deactivated")
	}
	return s.authResponse(c, fiber.StatusOK, acc.user)
}

func (s *Server) getProfile(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[userID(c)]
	if !ok {
		return fail(c, fiber.StatusNotFound, "User not found")
	}
	return c.JSON(acc.user)
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	var req domain.ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[userID(c)]
	if !ok {
		return fail(c, fiber.StatusNotFound, "User not found")
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if other, taken := s.byEmail[email]; taken && other != acc.user.ID {
			return fail(c, fiber.StatusBadRequest, "Email already in use")
		}
		delete(s.byEmail, acc.user.Email)
		acc.user.Email = email
		s.byEmail[email] = acc.user.ID
	}
	if req.Address != nil {
		acc.user.Address = *req.Address
	}
	acc.user.UpdatedAt = time.Now()
	return c.JSON(acc.user)
}

func (s *Server) changePassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[userID(c)]
	if !ok {
		return fail(c, fiber.StatusNotFound, "User not found")
	}
	if !password.Verify(req.CurrentPassword, acc.hash) {
		return fail(c, fiber.StatusBadRequest, "Current password is incorrect")
	}
	hash, err := password.Hash(req.NewPassword, bcrypt.MinCost)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to hash password")
	}
	acc.hash = hash
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// ---- products ----

func (s *Server) listProducts(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	category := c.Query("category")
	search := strings.ToLower(c.Query("search"))
	sortBy := c.Query("sortBy", "createdAt")
	asc := c.Query("sortOrder", "desc") == "asc"

	s.mu.Lock()
	matched := make([]domain.Product, 0, len(s.products))
	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, p := range s.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
		if category != "" && p.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title+" "+p.Description), search) {
			continue
		}
		matched = append(matched, p)
	}
	s.mu.Unlock()

	less := func(a, b domain.Product) bool {
		switch sortBy {
		case "price":
			return a.Price < b.Price
		case "title":
			return a.Title < b.Title
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if asc {
			return less(matched[i], matched[j])
		}
		return less(matched[j], matched[i])
	})
	sort.Strings(categories)

	start := (params.Page - 1) * params.Limit
	end := start + params.Limit
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}

	return c.JSON(domain.ProductPage{
		Products:   matched[start:end],
		Total:      int64(len(matched)),
		Page:       params.Page,
		Limit:      params.Limit,
		Categories: categories,
	})
}

func (s *Server) getProduct(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(c.Params("id"))
	if i < 0 {
		return fail(c, fiber.StatusNotFound, "Product not found")
	}
	return c.JSON(s.products[i])
}

func (s *Server) createProduct(c *fiber.Ctx) error {
	var req domain.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	p := s.AddProduct(domain.Product{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Images:      req.Images,
		Category:    req.Category,
	})
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (s *Server) updateProduct(c *fiber.Ctx) error {
	var req domain.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(c.Params("id"))
	if i < 0 {
		return fail(c, fiber.StatusNotFound, "Product not found")
	}
	p := &s.products[i]
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Images != nil {
		p.Images = req.Images
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	p.UpdatedAt = time.Now()
	return c.JSON(*p)
}

func (s *Server) deleteProduct(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(c.Params("id"))
	if i < 0 {
		return fail(c, fiber.StatusNotFound, "Product not found")
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// ---- cart ----

func (s *Server) getCart(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.CartItem, 0)
	for _, line := range s.carts[userID(c)] {
		i := s.productIndex(line.ProductID)
		if i < 0 {
			continue
		}
		p := s.products[i]
		items = append(items, domain.CartItem{ProductID: line.ProductID, Quantity: line.Quantity, Product: &p})
	}
	return c.JSON(domain.Cart{Items: items, Total: len(items)})
}

func (s *Server) addToCart(c *fiber.Ctx) error {
	var req domain.OrderLine
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.productIndex(req.ProductID)
	if i < 0 {
		return fail(c, fiber.StatusNotFound, "Product not found")
	}

	uid := userID(c)
	lines := s.carts[uid]
	for j := range lines {
		if lines[j].ProductID == req.ProductID {
			if s.products[i].Stock < lines[j].Quantity+req.Quantity {
				return fail(c, fiber.StatusBadRequest, "Insufficient stock")
			}
			lines[j].Quantity += req.Quantity
			return c.JSON(fiber.Map{"message": "Item added to cart"})
		}
	}
	if s.products[i].Stock < req.Quantity {
		return fail(c, fiber.StatusBadRequest, "Insufficient stock")
	}
	s.carts[uid] = append(lines, domain.OrderLine{ProductID: req.ProductID, Quantity: req.Quantity})
	return c.JSON(fiber.Map{"message": "Item added to cart"})
}

func (s *Server) updateCartItem(c *fiber.Ctx) error {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	productID := c.Params("productId")

	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[userID(c)]
	for j := range lines {
		if lines[j].ProductID != productID {
			continue
		}
		if i := s.productIndex(productID); i >= 0 && s.products[i].Stock < req.Quantity {
			return fail(c, fiber.StatusBadRequest, "Insufficient stock")
		}
		lines[j].Quantity = req.Quantity
		return c.JSON(fiber.Map{"message": "Cart item updated"})
	}
	return fail(c, fiber.StatusNotFound, "Item not found in cart")
}

func (s *Server) removeFromCart(c *fiber.Ctx) error {
	productID := c.Params("productId")

	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(c)
	kept := s.carts[uid][:0]
	for _, line := range s.carts[uid] {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	s.carts[uid] = kept
	return c.JSON(fiber.Map{"message": "Item removed from cart"})
}

func (s *Server) clearCart(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID(c))
	return c.JSON(fiber.Map{"message": "Cart cleared"})
}

// ---- orders ----

func (s *Server) createOrder(c *fiber.Ctx) error {
	var req domain.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if len(req.Items) == 0 {
		return fail(c, fiber.StatusBadRequest, "Order has no items")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range req.Items {
		i := s.productIndex(item.ProductID)
		if i < 0 {
			return fail(c, fiber.StatusBadRequest, "Product not found: "+item.ProductID)
		}
		if s.products[i].Stock < item.Quantity {
			return fail(c, fiber.StatusBadRequest, "Insufficient stock for product: "+s.products[i].Title)
		}
		total = total.Add(decimal.NewFromFloat(s.products[i].Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	for _, item := range req.Items {
		s.products[s.productIndex(item.ProductID)].Stock -= item.Quantity
	}

	items := make([]domain.CartItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.CartItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	now := time.Now()
	order := domain.Order{
		ID:        uuid.NewString(),
		UserID:    userID(c),
		Items:     items,
		Total:     total.Round(2).InexactFloat64(),
		Status:    domain.OrderPending,
		Address:   req.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.orders = append(s.orders, order)
	delete(s.carts, userID(c))

	return c.Status(fiber.StatusCreated).JSON(s.joinOrder(order))
}

func (s *Server) collect(keep func(domain.Order) bool) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Order, 0)
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, s.joinOrder(o))
		}
	}
	return out
}

func (s *Server) ownOrders(c *fiber.Ctx) error {
	uid := userID(c)
	return c.JSON(s.collect(func(o domain.Order) bool { return o.UserID == uid }))
}

func (s *Server) allOrders(c *fiber.Ctx) error {
	return c.JSON(s.collect(func(domain.Order) bool { return true }))
}

func (s *Server) assignedOrders(c *fiber.Ctx) error {
	uid := userID(c)
	return c.JSON(s.collect(func(o domain.Order) bool { return o.AssignedTo == uid }))
}

func (s *Server) getOrder(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.orderIndex(c.Params("id"))
	role, _ := c.Locals("role").(domain.Role)
	if i < 0 || (s.orders[i].UserID != userID(c) && role != domain.RoleAdmin) {
		return fail(c, fiber.StatusNotFound, "Order not found")
	}
	return c.JSON(s.joinOrder(s.orders[i]))
}

func (s *Server) updateOrderStatus(c *fiber.Ctx) error {
	var req struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil || !req.Status.Valid() {
		return fail(c, fiber.StatusBadRequest, "Invalid status")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.orderIndex(c.Params("id"))
	if i < 0 {
		return fail(c, fiber.StatusNotFound, "Order not found")
	}
	s.orders[i].Status = req.Status
	s.orders[i].UpdatedAt = time.Now()
	return c.JSON(fiber.Map{"message": "Order status updated"})
}

func (s *Server) assignOrder(c *fiber.Ctx) error {
	agentID := c.Params("deliveryId")

	s.mu.Lock()
	defer s.mu.Unlock()
	agent, ok := s.accounts[agentID]
	if !ok || agent.user.Role != domain.RoleDelivery {
		return fail(c, fiber.StatusBadRequest, "Invalid delivery agent")
	}
	i := s.orderIndex(c.Params("id"))
	if i < 0 {
		return fail(c, fiber.StatusNotFound, "Order not found")
	}
	s.orders[i].AssignedTo = agentID
	s.orders[i].UpdatedAt = time.Now()
	return c.JSON(fiber.Map{"message": "Order assigned"})
}

func (s *Server) markDelivered(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.orderIndex(c.Params("id"))
	if i < 0 || s.orders[i].AssignedTo != userID(c) {
		return fail(c, fiber.StatusNotFound, "Order not found or not assigned to you")
	}
	s.orders[i].Status = domain.OrderDelivered
	s.orders[i].UpdatedAt = time.Now()
	return c.JSON(fiber.Map{"message": "Order marked as delivered"})
}

// ---- users ----

func (s *Server) listUsers(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]domain.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		users = append(users, acc.user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return c.JSON(users)
}

func (s *Server) setActive(active bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		acc, ok := s.accounts[c.Params("id")]
		if !ok {
			return fail(c, fiber.StatusNotFound, "User not found")
		}
		acc.user.IsActive = active
		acc.user.UpdatedAt = time.Now()
		if active {
			return c.JSON(fiber.Map{"message": "User unblocked"})
		}
		return c.JSON(fiber.Map{"message": "User blocked"})
	}
}
