package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"olistdw/internal/clean"
	"olistdw/internal/config"
	"olistdw/internal/fetch"
	"olistdw/internal/metrics"
	"olistdw/internal/model"
	csvio "olistdw/internal/parser/csv"
	"olistdw/internal/table"
	"olistdw/internal/warehouse"
	"olistdw/internal/warehouse/postgres"
	"olistdw/internal/warehouse/sqlite"
)

// Raw extract file names, as the fetcher leaves them in the raw area.
const (
	rawCustomers   = "olist_customers_dataset.csv"
	rawOrders      = "olist_orders_dataset.csv"
	rawOrderItems  = "olist_order_items_dataset.csv"
	rawPayments    = "olist_order_payments_dataset.csv"
	rawProducts    = "olist_products_dataset.csv"
	rawTranslation = "product_category_name_translation.csv"
)

// Cleaned and modeled file names.
const (
	cleanedCustomers  = "customers_cleaned.csv"
	cleanedOrders     = "orders_cleaned.csv"
	cleanedOrderItems = "order_items_cleaned.csv"
	cleanedPayments   = "payments_cleaned.csv"
	cleanedProducts   = "products_cleaned.csv"

	aggregatedOrderItems = "order_items_aggregated.csv"
	aggregatedPayments   = "payments_aggregated.csv"
	factOrdersFile       = "fact_orders.csv"
	dimDateFile          = "dim_date.csv"
)

// Stages assembles the full dependency-ordered stage list for a run.
func Stages(cfg config.Pipeline, log *zap.Logger) []Stage {
	raw := func(name string) string { return filepath.Join(cfg.Paths.RawDir, name) }
	processed := func(name string) string { return filepath.Join(cfg.Paths.ProcessedDir, name) }
	modeled := func(name string) string { return filepath.Join(cfg.Paths.ModeledDir, name) }

	job := cfg.Job

	// cleanStage wraps the load → clean → store shape shared by the
	// single-input cleaners.
	cleanStage := func(stage, in, out string, fn func(table.Table) (table.Table, error)) Stage {
		return Stage{
			Name:  stage,
			Needs: []string{"fetch_raw"},
			Run: func(ctx context.Context) error {
				t, err := csvio.ReadFile(raw(in), csvio.Options{})
				if err != nil {
					return err
				}
				metrics.RecordRows(job, stage, "read", int64(t.Len()))
				cleaned, err := fn(t)
				if err != nil {
					return err
				}
				metrics.RecordRows(job, stage, "kept", int64(cleaned.Len()))
				return csvio.WriteFile(processed(out), cleaned)
			},
		}
	}

	stages := []Stage{
		{
			Name: "fetch_raw",
			Run: func(ctx context.Context) error {
				f := fetch.New(fetch.Config{
					URL:        cfg.Fetch.URL,
					Timeout:    time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
					MaxRetries: cfg.Fetch.MaxRetries,
				}, log)
				_, err := f.Ensure(ctx, cfg.Paths.RawDir)
				return err
			},
		},

		cleanStage("clean_customers", rawCustomers, cleanedCustomers, clean.Customers),
		{
			Name:  "clean_products",
			Needs: []string{"fetch_raw"},
			Run: func(ctx context.Context) error {
				products, err := csvio.ReadFile(raw(rawProducts), csvio.Options{})
				if err != nil {
					return err
				}
				translation, err := csvio.ReadFile(raw(rawTranslation), csvio.Options{})
				if err != nil {
					return err
				}
				metrics.RecordRows(job, "clean_products", "read", int64(products.Len()))
				cleaned, err := clean.Products(products, translation)
				if err != nil {
					return err
				}
				metrics.RecordRows(job, "clean_products", "kept", int64(cleaned.Len()))
				return csvio.WriteFile(processed(cleanedProducts), cleaned)
			},
		},
		cleanStage("clean_orders", rawOrders, cleanedOrders, clean.Orders),
		cleanStage("clean_order_items", rawOrderItems, cleanedOrderItems, clean.OrderItems),
		cleanStage("clean_payments", rawPayments, cleanedPayments, clean.Payments),

		{
			Name:  "aggregate_order_items",
			Needs: []string{"clean_order_items"},
			Run: func(ctx context.Context) error {
				items, err := csvio.ReadFile(processed(cleanedOrderItems), csvio.Options{})
				if err != nil {
					return err
				}
				agg := model.AggregateOrderItems(items)
				metrics.RecordRows(job, "aggregate_order_items", "written", int64(agg.Len()))
				return csvio.WriteFile(modeled(aggregatedOrderItems), agg)
			},
		},
		{
			Name:  "aggregate_payments",
			Needs: []string{"clean_payments"},
			Run: func(ctx context.Context) error {
				payments, err := csvio.ReadFile(processed(cleanedPayments), csvio.Options{})
				if err != nil {
					return err
				}
				agg := model.AggregatePayments(payments)
				metrics.RecordRows(job, "aggregate_payments", "written", int64(agg.Len()))
				return csvio.WriteFile(modeled(aggregatedPayments), agg)
			},
		},

		{
			Name:  "build_fact_orders",
			Needs: []string{"clean_orders", "aggregate_order_items", "aggregate_payments"},
			Run: func(ctx context.Context) error {
				orders, err := csvio.ReadFile(processed(cleanedOrders), csvio.Options{})
				if err != nil {
					return err
				}
				itemsAgg, err := csvio.ReadFile(modeled(aggregatedOrderItems), csvio.Options{})
				if err != nil {
					return err
				}
				paymentsAgg, err := csvio.ReadFile(modeled(aggregatedPayments), csvio.Options{})
				if err != nil {
					return err
				}
				fact, err := model.BuildFactOrders(orders, itemsAgg, paymentsAgg)
				if err != nil {
					return err
				}
				metrics.RecordRows(job, "build_fact_orders", "written", int64(fact.Len()))
				return csvio.WriteFile(modeled(factOrdersFile), fact)
			},
		},
		{
			Name:  "build_dim_date",
			Needs: []string{"build_fact_orders"},
			Run: func(ctx context.Context) error {
				fact, err := csvio.ReadFile(modeled(factOrdersFile), csvio.Options{})
				if err != nil {
					return err
				}
				dim, err := model.BuildDateDimension(fact)
				if err != nil {
					return err
				}
				metrics.RecordRows(job, "build_dim_date", "written", int64(dim.Len()))
				return csvio.WriteFile(modeled(dimDateFile), dim)
			},
		},
	}

	if cfg.Warehouse.Kind != "" && cfg.Warehouse.Kind != "none" {
		stages = append(stages, Stage{
			Name:  "publish_warehouse",
			Needs: []string{"build_fact_orders", "build_dim_date"},
			Run: func(ctx context.Context) error {
				repo, err := openWarehouse(ctx, cfg.Warehouse)
				if err != nil {
					return err
				}
				defer repo.Close()

				for _, pub := range []struct{ table, file string }{
					{"fact_orders", modeled(factOrdersFile)},
					{"dim_date", modeled(dimDateFile)},
				} {
					t, err := csvio.ReadFile(pub.file, csvio.Options{})
					if err != nil {
						return err
					}
					if err := warehouse.Publish(ctx, repo, pub.table, t); err != nil {
						return err
					}
					metrics.RecordRows(job, "publish_warehouse", "written", int64(t.Len()))
				}
				return nil
			},
		})
	}

	return stages
}

// openWarehouse is a test seam; tests can point it at a fake.
var openWarehouse = func(ctx context.Context, cfg config.Warehouse) (warehouse.Repository, error) {
	switch cfg.Kind {
	case "sqlite":
		return sqlite.New(ctx, cfg.DSN)
	case "postgres":
		return postgres.New(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown warehouse kind %q", cfg.Kind)
	}
}
