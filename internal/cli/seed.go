package cli

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/utafrali/productconsole/internal/domain"
	"github.com/utafrali/productconsole/internal/schema"
	"github.com/utafrali/productconsole/internal/store"
)

// Sample data for seeding.
var (
	seedAdjectives = []string{"Classic", "Compact", "Deluxe", "Everyday", "Modern", "Portable", "Premium", "Rugged"}
	seedNouns      = []string{"Backpack", "Blender", "Desk Lamp", "Headphones", "Kettle", "Notebook", "Speaker", "Water Bottle"}
	seedBrands     = []string{"Acme", "Northwind", "Contoso", "Globex", "Initech"}
)

// sampleProduct builds the i-th sample product. The same index always gives
// the same product.
func sampleProduct(prefix string, i int) schema.ProductInput {
	name := fmt.Sprintf("%s %s %d",
		seedAdjectives[i%len(seedAdjectives)],
		seedNouns[(i/len(seedAdjectives))%len(seedNouns)],
		i+1,
	)
	sku := fmt.Sprintf("%s-%05d", prefix, i+1)
	price, _ := decimal.NewFromInt(int64(499 + (i*1237)%99500)).Div(decimal.NewFromInt(100)).Float64()
	stock := float64((i * 7) % 250)
	category := domain.Categories[i%len(domain.Categories)].Value
	currency := domain.Currencies[i%len(domain.Currencies)].Value
	brand := seedBrands[i%len(seedBrands)]
	description := fmt.Sprintf("Sample %s for demos and load tests.", strings.ToLower(name))

	return schema.ProductInput{
		Name:          &name,
		Description:   &description,
		SKU:           &sku,
		Price:         &price,
		StockQuantity: &stock,
		Category:      &category,
		Images:        []string{},
		Brand:         &brand,
		Currency:      &currency,
	}
}

func (c *console) seedCommand() *cobra.Command {
	var (
		count       int
		concurrency int
		prefix      string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create sample products",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return usageErrorf("--count must be at least 1")
			}
			if concurrency < 1 {
				return usageErrorf("--concurrency must be at least 1")
			}

			reqs := make([]domain.CreateProductRequest, count)
			for i := range reqs {
				req, err := schema.CreateProduct(sampleProduct(prefix, i))
				if err != nil {
					return err
				}
				reqs[i] = req
			}

			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			st := a.Store()

			// Keep the first recorded error; a later success clears State.Error.
			var (
				mu       sync.Mutex
				firstErr string
				failures atomic.Int64
			)
			unsubscribe := st.Subscribe(func(s store.State) {
				mu.Lock()
				defer mu.Unlock()
				if firstErr == "" && s.Error != "" {
					firstErr = s.Error
				}
			})
			defer unsubscribe()

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(concurrency)
			for _, req := range reqs {
				g.Go(func() error {
					if !st.CreateProduct(ctx, req) {
						failures.Add(1)
					}
					return nil
				})
			}
			_ = g.Wait()

			created := len(st.Snapshot().Products)
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d of %d products.\n", created, count)
			if n := failures.Load(); n > 0 {
				mu.Lock()
				defer mu.Unlock()
				return fmt.Errorf("%d products failed, first error: %s", n, firstErr)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of products to create")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "requests in flight")
	cmd.Flags().StringVar(&prefix, "sku-prefix", "SEED", "SKU prefix")
	return cmd
}
