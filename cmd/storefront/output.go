package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/core/services"
)

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printKV(rows [][2]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
	_ = w.Flush()
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println("no results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printUser(u *domain.User) {
	if u == nil {
		fmt.Println("not logged in")
		return
	}
	printKV([][2]string{
		{"id", u.ID},
		{"email", u.Email},
		{"role", string(u.Role)},
		{"active", strconv.FormatBool(u.IsActive)},
		{"address", orDash(u.Address)},
	})
}

func printProducts(snap services.CatalogSnapshot) {
	rows := make([][]string, 0, len(snap.Products))
	for _, p := range snap.Products {
		rows = append(rows, []string{p.ID, p.Title, orDash(p.Category), formatPrice(p.Price), strconv.Itoa(p.Stock)})
	}
	printTable([]string{"ID", "TITLE", "CATEGORY", "PRICE", "STOCK"}, rows)
	m := snap.Pagination
	fmt.Printf("page %d of %d, %d products\n", m.Page, m.TotalPages, m.Total)
}

func printProduct(p *domain.Product) {
	if p == nil {
		fmt.Println("no product")
		return
	}
	printKV([][2]string{
		{"id", p.ID},
		{"title", p.Title},
		{"description", orDash(p.Description)},
		{"category", orDash(p.Category)},
		{"price", formatPrice(p.Price)},
		{"stock", strconv.Itoa(p.Stock)},
		{"images", orDash(strings.Join(p.Images, ", "))},
	})
}

func printCart(snap services.CartSnapshot) {
	rows := make([][]string, 0, len(snap.Items))
	for _, item := range snap.Items {
		title := "-"
		if item.Product != nil {
			title = item.Product.Title
		}
		rows = append(rows, []string{
			item.ProductID,
			title,
			strconv.Itoa(item.Quantity),
			item.UnitPrice().StringFixed(2),
			item.LineTotal().StringFixed(2),
		})
	}
	printTable([]string{"PRODUCT", "TITLE", "QTY", "PRICE", "TOTAL"}, rows)
	fmt.Printf("%d items, subtotal %s\n", snap.Count, snap.Subtotal.StringFixed(2))
}

func printOrders(orders []domain.Order) {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			o.ID,
			string(o.Status),
			formatPrice(o.Total),
			strconv.Itoa(len(o.Items)),
			orDash(o.AssignedTo),
			formatTime(o.CreatedAt),
		})
	}
	printTable([]string{"ID", "STATUS", "TOTAL", "LINES", "ASSIGNED_TO", "CREATED_AT"}, rows)
}

func printOrder(o *domain.Order) {
	if o == nil {
		fmt.Println("no order")
		return
	}
	printKV([][2]string{
		{"id", o.ID},
		{"status", string(o.Status)},
		{"total", formatPrice(o.Total)},
		{"address", o.Address},
		{"assigned_to", orDash(o.AssignedTo)},
		{"created_at", formatTime(o.CreatedAt)},
		{"updated_at", formatTime(o.UpdatedAt)},
	})
	rows := make([][]string, 0, len(o.Items))
	for _, item := range o.Items {
		title := "-"
		if item.Product != nil {
			title = item.Product.Title
		}
		rows = append(rows, []string{item.ProductID, title, strconv.Itoa(item.Quantity)})
	}
	printTable([]string{"PRODUCT", "TITLE", "QTY"}, rows)
}

func printUsers(users []domain.User) {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.ID, u.Email, string(u.Role), strconv.FormatBool(u.IsActive), formatTime(u.CreatedAt)})
	}
	printTable([]string{"ID", "EMAIL", "ROLE", "ACTIVE", "CREATED_AT"}, rows)
}
