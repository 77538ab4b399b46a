package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"storefront-sync/internal/app"
	"storefront-sync/internal/config"
	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/core/services"
	"storefront-sync/internal/pkg/password"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "storefront",
		Usage: "Storefront client for customers, admins and delivery agents",
		Commands: []*cli.Command{
			loginCommand(),
			signupCommand(),
			logoutCommand(),
			whoamiCommand(),
			refreshCommand(),
			productsCommand(),
			cartCommand(),
			checkoutCommand(),
			ordersCommand(),
			usersCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}

// withStores loads configuration and runs fn against freshly wired stores.
// The session is restored from the configured backend.
func withStores(ctx context.Context, fn func(ctx context.Context, s *services.Stores) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	rt, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt.Stores)
}

// failed turns a store error into the message the store recorded
func failed(err error, fallback string) error {
	if err == nil {
		return nil
	}
	return errors.New(domain.Message(err, fallback))
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "output raw JSON"}
}

func requireArg(c *cli.Command, i int, name string) (string, error) {
	v := c.Args().Get(i)
	if v == "" {
		return "", fmt.Errorf("missing argument: %s", name)
	}
	return v, nil
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and keep the session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
				if err := s.Session.Login(ctx, c.String("email"), c.String("password")); err != nil {
					return failed(err, "Login failed")
				}
				u := s.Session.Identity()
				fmt.Printf("logged in as %s (%s)\n", u.Email, u.Role)
				return nil
			})
		},
	}
}

func signupCommand() *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "Create a customer account and log in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true},
			&cli.StringFlag{Name: "confirm", Required: true, Usage: "password confirmation"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := password.ValidateNew(c.String("password"), c.String("confirm")); err != nil {
				return failed(err, "Invalid password")
			}
			return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
				if err := s.Session.Signup(ctx, c.String("email"), c.String("password")); err != nil {
					return failed(err, "Signup failed")
				}
				fmt.Printf("signed up as %s\n", s.Session.Identity().Email)
				return nil
			})
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the saved session",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
				if err := s.Logout(ctx); err != nil {
					return failed(err, "Logout failed")
				}
				fmt.Println("logged out")
				return nil
			})
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the current identity",
		Flags: []cli.Flag{jsonFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
				if !s.Session.IsAuthenticated() {
					fmt.Println("not logged in")
					return nil
				}
				if err := s.Session.FetchIdentity(ctx); err != nil {
					return failed(err, "Failed to fetch profile")
				}
				if c.Bool("json") {
					return printJSON(s.Session.Identity())
				}
				printUser(s.Session.Identity())
				return nil
			})
		},
	}
}

func refreshCommand() *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Exchange the refresh token for a new pair",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
				if err := s.Session.Refresh(ctx); err != nil {
					return failed(err, "Token refresh failed")
				}
				fmt.Println("session refreshed")
				return nil
			})
		},
	}
}

func productsCommand() *cli.Command {
	return &cli.Command{
		Name:  "products",
		Usage: "Browse and manage the catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List a page of products",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.IntFlag{Name: "limit", Value: 12},
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "search"},
					&cli.StringFlag{Name: "sort-by", Value: "createdAt"},
					&cli.StringFlag{Name: "sort-order", Value: "desc"},
					jsonFlag(),
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					q := domain.ProductQuery{
						Page:      int(c.Int("page")),
						Limit:     int(c.Int("limit")),
						Category:  c.String("category"),
						Search:    c.String("search"),
						SortBy:    c.String("sort-by"),
						SortOrder: c.String("sort-order"),
					}
					return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
						if err := s.Catalog.List(ctx, q); err != nil {
							return failed(err, "Failed to fetch products")
						}
						if c.Bool("json") {
							return printJSON(s.Catalog.Snapshot())
						}
						printProducts(s.Catalog.Snapshot())
						return nil
					})
				},
			},
			{
				Name:      "show",
				Usage:     "Show one product",
				ArgsUsage: "<product-id>",
				Flags:     []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, 0, "product-id")
					if err != nil {
						return err
					}
					return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
						if err := s.Catalog.GetByID(ctx, id); err != nil {
							return failed(err, "Failed to fetch product")
						}
						if c.Bool("json") {
							return printJSON(s.Catalog.Current())
						}
						printProduct(s.Catalog.Current())
						return nil
					})
				},
			},
			{
				Name:  "create",
				Usage: "Create a product (admin)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "description"},
					&cli.FloatFlag{Name: "price", Required: true},
					&cli.IntFlag{Name: "stock"},
					&cli.StringFlag{Name: "category"},
					&cli.StringSliceFlag{Name: "image"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					req := domain.CreateProductRequest{
						Title:       c.String("title"),
						Description: c.String("description"),
						Price:       c.Float("price"),
						Stock:       int(c.Int("stock")),
						Category:    c.String("category"),
						Images:      c.StringSlice("image"),
					}
					return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
						p, err := s.Catalog.Create(ctx, req)
						if err != nil {
							return failed(err, "Failed to create product")
						}
						printProduct(p)
						return nil
					})
				},
			},
			{
				Name:      "update",
				Usage:     "Edit a product (admin); only given flags change",
				ArgsUsage: "<product-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title"},
					&cli.StringFlag{Name: "description"},
					&cli.FloatFlag{Name: "price"},
					&cli.IntFlag{Name: "stock"},
					&cli.StringFlag{Name: "category"},
					&cli.StringSliceFlag{Name: "image"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, 0, "product-id")
					if err != nil {
						return err
					}
					var req domain.UpdateProductRequest
					if c.IsSet("title") {
						v := c.String("title")
						req.Title = &v
					}
					if c.IsSet("description") {
						v := c.String("description")
						req.Description = &v
					}
					if c.IsSet("price") {
						v := c.Float("price")
						req.Price = &v
					}
					if c.IsSet("stock") {
						v := int(c.Int("stock"))
						req.Stock = &v
					}
					if c.IsSet("category") {
						v := c.String("category")
						req.Category = &v
					}
					if c.IsSet("image") {
						req.Images = c.StringSlice("image")
					}
					return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
						p, err := s.Catalog.Update(ctx, id, req)
						if err != nil {
							return failed(err, "Failed to update product")
						}
						printProduct(p)
						return nil
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a product (admin)",
				ArgsUsage: "<product-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, 0, "product-id")
					if err != nil {
						return err
					}
					return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
						if err := s.Catalog.Delete(ctx, id); err != nil {
							return failed(err, "Failed to delete product")
						}
						fmt.Printf("deleted %s\n", id)
						return nil
					})
				},
			},
		},
	}
}

func cartCommand() *cli.Command {
	showCart := func(c *cli.Command, s *services.Stores) error {
		if c.Bool("json") {
			return printJSON(s.Cart.Snapshot())
		}
		printCart(s.Cart.Snapshot())
		return nil
	}

	return &cli.Command{
		Name:  "cart",
		Usage: "Manage the shopping cart",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the cart",
				Flags: []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
						if err := s.Cart.Fetch(ctx); err != nil {
							return failed(err, "Failed to fetch cart")
						}
						return showCart(c, s)
					})
				},
			},
			{
				Name:      "add",
				Usage:     "Add a product",
				ArgsUsage: "<product-id>",
				Flags:     []cli.Flag{&cli.IntFlag{Name: "qty", Value: 1}, jsonFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, 0, "product-id")
					if err != nil {
						return err
					}
					return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
						if err := s.Cart.Add(ctx, id, int(c.Int("qty"))); err != nil {
							return failed(err, "Failed to add to cart")
						}
						return showCart(c, s)
					})
				},
			},
			{
				Name:      "set",
				Usage:     "Set the quantity of a line; 0 removes it",
				ArgsUsage: "<product-id>",
				Flags:     []cli.Flag{&cli.IntFlag{Name: "qty", Required: true}, jsonFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, 0, "product-id")
					if err != nil {
						return err
					}
					return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
						if err := s.Cart.SetQuantity(ctx, id, int(c.Int("qty"))); err != nil {
							return failed(err, "Failed to update cart item")
						}
						return showCart(c, s)
					})
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a line",
				ArgsUsage: "<product-id>",
				Flags:     []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, 0, "product-id")
					if err != nil {
						return err
					}
					return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
						if err := s.Cart.Remove(ctx, id); err != nil {
							return failed(err, "Failed to remove from cart")
						}
						return showCart(c, s)
					})
				},
			},
			{
				Name:  "clear",
				Usage: "Empty the cart",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
						if err := s.Cart.Clear(ctx); err != nil {
							return failed(err, "Failed to clear cart")
						}
						fmt.Println("cart cleared")
						return nil
					})
				},
			},
		},
	}
}

func checkoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "checkout",
		Usage: "Place an order for the cart",
		Flags: []cli.Flag{&cli.StringFlag{Name: "address", Required: true}, jsonFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
				order, err := app.Checkout(ctx, s.Cart, s.Orders, c.String("address"))
				if err != nil {
					return failed(err, "Failed to place order")
				}

				if c.Bool("json") {
					return printJSON(order)
				}
				printOrder(order)
				return nil
			})
		},
	}
}

func ordersCommand() *cli.Command {
	list := func(name, usage string, fetch func(*services.OrderStore, context.Context) error, read func(*services.OrderStore) []domain.Order) *cli.Command {
		return &cli.Command{
			Name:  name,
			Usage: usage,
			Flags: []cli.Flag{jsonFlag()},
			Action: func(ctx context.Context, c *cli.Command) error {
				return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
					if err := fetch(s.Orders, ctx); err != nil {
						return failed(err, "Failed to fetch orders")
					}
					if c.Bool("json") {
						return printJSON(read(s.Orders))
					}
					printOrders(read(s.Orders))
					return nil
				})
			},
		}
	}

	return &cli.Command{
		Name:  "orders",
		Usage: "Track and manage orders",
		Commands: []*cli.Command{
			list("list", "List your orders", (*services.OrderStore).FetchOwn, (*services.OrderStore).Own),
			list("all", "List every order (admin)", (*services.OrderStore).FetchAll, (*services.OrderStore).All),
			list("assigned", "List orders assigned to you (delivery)", (*services.OrderStore).FetchAssigned, (*services.OrderStore).Assigned),
			{
				Name:      "show",
				Usage:     "Show one order",
				ArgsUsage: "<order-id>",
				Flags:     []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, 0, "order-id")
					if err != nil {
						return err
					}
					return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
						if err := s.Orders.Get(ctx, id); err != nil {
							return failed(err, "Failed to fetch order")
						}
						if c.Bool("json") {
							return printJSON(s.Orders.Current())
						}
						printOrder(s.Orders.Current())
						return nil
					})
				},
			},
			{
				Name:      "status",
				Usage:     "Move an order to a new status (admin)",
				ArgsUsage: "<order-id> <pending|shipped|delivered|cancelled>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, 0, "order-id")
					if err != nil {
						return err
					}
					status, err := requireArg(c, 1, "status")
					if err != nil {
						return err
					}
					return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
						// load the order so the transition is checked locally
						if err := s.Orders.Get(ctx, id); err != nil {
							return failed(err, "Failed to fetch order")
						}
						if err := s.Orders.UpdateStatus(ctx, id, domain.OrderStatus(status)); err != nil {
							return failed(err, "Failed to update order status")
						}
						fmt.Printf("order %s is now %s\n", id, status)
						return nil
					})
				},
			},
			{
				Name:      "assign",
				Usage:     "Assign an order to a delivery agent (admin)",
				ArgsUsage: "<order-id> <agent-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, 0, "order-id")
					if err != nil {
						return err
					}
					agent, err := requireArg(c, 1, "agent-id")
					if err != nil {
						return err
					}
					return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
						if err := s.Orders.Get(ctx, id); err != nil {
							return failed(err, "Failed to fetch order")
						}
						if err := s.Orders.Assign(ctx, id, agent); err != nil {
							return failed(err, "Failed to assign order")
						}
						fmt.Printf("order %s assigned to %s\n", id, agent)
						return nil
					})
				},
			},
			{
				Name:      "delivered",
				Usage:     "Mark an assigned order delivered (delivery)",
				ArgsUsage: "<order-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireArg(c, 0, "order-id")
					if err != nil {
						return err
					}
					return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
						if err := s.Orders.FetchAssigned(ctx); err != nil {
							return failed(err, "Failed to fetch orders")
						}
						if err := s.Orders.MarkDelivered(ctx, id); err != nil {
							return failed(err, "Failed to mark order as delivered")
						}
						fmt.Printf("order %s delivered\n", id)
						return nil
					})
				},
			},
		},
	}
}

func usersCommand() *cli.Command {
	setActive := func(name, usage, fallback string, apply func(*services.UserStore, context.Context, string) error) *cli.Command {
		return &cli.Command{
			Name:      name,
			Usage:     usage,
			ArgsUsage: "<user-id>",
			Action: func(ctx context.Context, c *cli.Command) error {
				id, err := requireArg(c, 0, "user-id")
				if err != nil {
					return err
				}
				return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
					if err := apply(s.Users, ctx, id); err != nil {
						return failed(err, fallback)
					}
					fmt.Printf("user %s %sed\n", id, name)
					return nil
				})
			},
		}
	}

	return &cli.Command{
		Name:  "users",
		Usage: "Manage accounts (admin)",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List accounts",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "delivery", Usage: "only active delivery agents"},
					jsonFlag(),
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withStores(ctx, func(ctx context.Context, s *services.Stores) error {
						if err := s.Users.List(ctx); err != nil {
							return failed(err, "Failed to fetch users")
						}
						users := s.Users.Users()
						if c.Bool("delivery") {
							users = s.Users.DeliveryAgents()
						}
						if c.Bool("json") {
							return printJSON(users)
						}
						printUsers(users)
						return nil
					})
				},
			},
			setActive("block", "Deactivate an account", "Failed to block user", (*services.UserStore).Block),
			setActive("unblock", "Reactivate an account", "Failed to unblock user", (*services.UserStore).Unblock),
		},
	}
}
