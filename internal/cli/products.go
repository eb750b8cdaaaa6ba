package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/utafrali/productconsole/internal/domain"
	"github.com/utafrali/productconsole/internal/schema"
	"github.com/utafrali/productconsole/internal/store"
	"github.com/utafrali/productconsole/pkg/pagination"
	"github.com/utafrali/productconsole/pkg/validator"
)

// emit writes v as JSON or renders it with table.
func (c *console) emit(cmd *cobra.Command, v any, table func(io.Writer) error) error {
	if c.output == OutputJSON {
		return writeJSON(cmd.OutOrStdout(), v)
	}
	return table(cmd.OutOrStdout())
}

// failed turns the error the store recorded into a command error.
func failed(st *store.Store) error {
	msg := st.Snapshot().Error
	if msg == "" {
		msg = "request failed"
	}
	return errors.New(msg)
}

func (c *console) listCommand() *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			paged := cmd.Flags().Changed("page") || cmd.Flags().Changed("limit")
			params, err := pagination.NewParams(page, limit)
			if err != nil {
				return &exitError{code: ExitUsage, err: err}
			}

			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			st := a.Store()
			if !st.FetchProducts(cmd.Context()) {
				return failed(st)
			}
			products := st.Snapshot().Products
			if !paged {
				return c.emit(cmd, products, func(w io.Writer) error { return printProducts(w, products) })
			}

			p := pagination.Paginate(products, params)
			return c.emit(cmd, p, func(w io.Writer) error { return printProductPage(w, p) })
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	cmd.Flags().IntVar(&limit, "limit", pagination.DefaultLimit, fmt.Sprintf("products per page (max %d)", pagination.MaxLimit))
	return cmd
}

func (c *console) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			st := a.Store()
			if !st.FetchProduct(cmd.Context(), args[0]) {
				return failed(st)
			}
			return c.emitSelected(cmd, st, args[0])
		},
	}
}

// emitSelected prints the selected product, or a short notice when the API
// returned no content.
func (c *console) emitSelected(cmd *cobra.Command, st *store.Store, id string) error {
	p := st.Snapshot().SelectedProduct
	if p == nil {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Product %s returned no content.\n", id)
		return err
	}
	return c.emit(cmd, p, func(w io.Writer) error { return printProduct(w, *p) })
}

// productFlags are the field flags shared by create and update.
type productFlags struct {
	file        string
	name        string
	description string
	sku         string
	price       float64
	stock       float64
	category    string
	images      []string
	clearImages bool
	brand       string
	currency    string
}

func (f *productFlags) bind(cmd *cobra.Command, partial bool) {
	fs := cmd.Flags()
	fs.StringVarP(&f.file, "file", "f", "", "read the product as JSON from a file (- for stdin)")
	fs.StringVar(&f.name, "name", "", "product name")
	fs.StringVar(&f.description, "description", "", "product description")
	fs.StringVar(&f.sku, "sku", "", "stock keeping unit (A-Z, 0-9, - and _)")
	fs.Float64Var(&f.price, "price", 0, "unit price")
	fs.Float64Var(&f.stock, "stock", 0, "stock quantity")
	fs.StringVar(&f.category, "category", "", "category slug or label")
	fs.StringArrayVar(&f.images, "image", nil, fmt.Sprintf("image URL (repeatable, up to %d)", domain.MaxImages))
	fs.StringVar(&f.brand, "brand", "", "brand name")
	fs.StringVar(&f.currency, "currency", "", "price currency (USD, EUR, INR, RUB)")
	if partial {
		fs.BoolVar(&f.clearImages, "clear-images", false, "remove all images")
	}
}

// input builds the candidate payload from --file, then the flags that were
// set on the command line.
func (f *productFlags) input(cmd *cobra.Command) (schema.ProductInput, error) {
	var in schema.ProductInput
	if f.file != "" {
		if err := readProductFile(cmd, f.file, &in); err != nil {
			return in, err
		}
	}

	fs := cmd.Flags()
	str := func(flag, v string, dst **string) {
		if fs.Changed(flag) {
			*dst = &v
		}
	}
	num := func(flag string, v float64, dst **float64) {
		if fs.Changed(flag) {
			*dst = &v
		}
	}
	str("name", f.name, &in.Name)
	str("description", f.description, &in.Description)
	str("sku", f.sku, &in.SKU)
	num("price", f.price, &in.Price)
	num("stock", f.stock, &in.StockQuantity)
	str("category", domain.ResolveCategory(f.category), &in.Category)
	str("brand", f.brand, &in.Brand)
	str("currency", f.currency, &in.Currency)
	if fs.Changed("image") {
		in.Images = append([]string{}, f.images...)
	}
	if f.clearImages {
		in.Images = []string{}
	}
	return in, nil
}

func readProductFile(cmd *cobra.Command, path string, in *schema.ProductInput) error {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		file, err := os.Open(path)
		if err != nil {
			return usageErrorf("open product file: %w", err)
		}
		defer file.Close()
		r = file
	}
	if err := validator.DecodeJSON(r, in); err != nil {
		return usageErrorf("read product file %s: %w", path, err)
	}
	return nil
}

func (c *console) createCommand() *cobra.Command {
	var flags productFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Example: `  productctl create --name "Desk Lamp" --sku LAMP-01 --price 24.99 --stock 10 --category furniture
  productctl create --file lamp.json`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := flags.input(cmd)
			if err != nil {
				return err
			}
			req, err := schema.CreateProduct(in)
			if err != nil {
				return err
			}

			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			st := a.Store()
			before := len(st.Snapshot().Products)
			if !st.CreateProduct(cmd.Context(), req) {
				return failed(st)
			}

			products := st.Snapshot().Products
			if len(products) == before {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Product created.")
				return err
			}
			created := products[len(products)-1]
			return c.emit(cmd, created, func(w io.Writer) error { return printProduct(w, created) })
		},
	}
	flags.bind(cmd, false)
	return cmd
}

func (c *console) updateCommand() *cobra.Command {
	var flags productFlags
	cmd := &cobra.Command{
		Use:     "update <id>",
		Short:   "Change fields of a product",
		Example: `  productctl update 42 --price 19.99 --image https://cdn.example.com/lamp.png`,
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := flags.input(cmd)
			if err != nil {
				return err
			}
			req, err := schema.UpdateProduct(in)
			if err != nil {
				return err
			}
			if req.IsEmpty() {
				return usageErrorf("nothing to update: set at least one field flag or --file")
			}

			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			st := a.Store()
			// Load first so the updated product is selected and kept in sync.
			if !st.FetchProduct(cmd.Context(), args[0]) {
				return failed(st)
			}
			if !st.UpdateProduct(cmd.Context(), args[0], req) {
				return failed(st)
			}
			return c.emitSelected(cmd, st, args[0])
		},
	}
	flags.bind(cmd, true)
	return cmd
}

func (c *console) stockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stock <id> <quantity>",
		Short: "Set the stock quantity of a product",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return validator.Violations{{
					Field: "quantity", Tag: "number", Message: "Quantity must be a number",
				}}.Err()
			}
			update, err := schema.StockUpdate(schema.StockInput{Quantity: &q})
			if err != nil {
				return err
			}

			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			st := a.Store()
			if !st.FetchProduct(cmd.Context(), args[0]) {
				return failed(st)
			}
			if !st.UpdateStock(cmd.Context(), args[0], update) {
				return failed(st)
			}
			return c.emitSelected(cmd, st, args[0])
		},
	}
}

func (c *console) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			st := a.Store()
			if !st.DeleteProduct(cmd.Context(), args[0]) {
				return failed(st)
			}
			result := struct {
				ID      string `json:"id"`
				Deleted bool   `json:"deleted"`
			}{ID: args[0], Deleted: true}
			return c.emit(cmd, result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted product %s.\n", args[0])
				return err
			})
		},
	}
}
