package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/utafrali/productconsole/internal/domain"
	"github.com/utafrali/productconsole/pkg/pagination"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.RFC3339)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printProducts(w io.Writer, products []domain.Product) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, "No products found.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tSKU\tPRICE\tSTOCK\tCATEGORY\tSTATUS")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			p.ID, p.Name, p.SKU,
			domain.FormatPrice(p.Price, p.Currency),
			p.StockQuantity,
			orDash(domain.CategoryLabel(p.Category)),
			activeLabel(p.IsActive),
		)
	}
	return tw.Flush()
}

func printProduct(w io.Writer, p domain.Product) error {
	tw := newTable(w)
	rows := [][2]string{
		{"ID", p.ID},
		{"Name", p.Name},
		{"SKU", p.SKU},
		{"Price", domain.FormatPrice(p.Price, p.Currency)},
		{"Stock", strconv.Itoa(p.StockQuantity)},
		{"Category", orDash(domain.CategoryLabel(p.Category))},
		{"Brand", orDash(p.Brand)},
		{"Description", orDash(p.Description)},
		{"Images", orDash(strings.Join(p.Images, ", "))},
		{"Status", activeLabel(p.IsActive)},
		{"Created", formatTime(p.CreatedAt)},
		{"Updated", formatTime(p.UpdatedAt)},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}

func printProductPage(w io.Writer, p pagination.Page[domain.Product]) error {
	if len(p.Data) > 0 {
		if err := printProducts(w, p.Data); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Page %d of %d (%d products)\n", p.Page, p.TotalPages, p.Total)
	return err
}
