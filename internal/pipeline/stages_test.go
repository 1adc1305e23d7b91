package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olistdw/internal/config"
	csvio "olistdw/internal/parser/csv"
	"olistdw/internal/table"
)

func testConfig(t *testing.T) config.Pipeline {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Job = "test"
	cfg.Paths.RawDir = filepath.Join(dir, "raw")
	cfg.Paths.ProcessedDir = filepath.Join(dir, "processed")
	cfg.Paths.ModeledDir = filepath.Join(dir, "modeled")
	return cfg
}

func writeRaw(t *testing.T, cfg config.Pipeline, name string, tb table.Table) {
	t.Helper()
	require.NoError(t, csvio.WriteFile(filepath.Join(cfg.Paths.RawDir, name), tb))
}

// seedRawArea writes a minimal but complete set of extracts: one
// delivered order with two items paid by card and voucher.
func seedRawArea(t *testing.T, cfg config.Pipeline) {
	t.Helper()

	customers := table.New("customer_id", "customer_unique_id", "customer_zip_code_prefix", "customer_city", "customer_state")
	customers.Append(table.Record{"customer_id": "c1", "customer_unique_id": "u1", "customer_zip_code_prefix": "14409", "customer_city": "Franca", "customer_state": "sp"})
	writeRaw(t, cfg, "olist_customers_dataset.csv", customers)

	orders := table.New("order_id", "customer_id", "order_status",
		"order_purchase_timestamp", "order_approved_at", "order_delivered_carrier_date",
		"order_delivered_customer_date", "order_estimated_delivery_date")
	orders.Append(table.Record{
		"order_id": "o1", "customer_id": "c1", "order_status": "delivered",
		"order_purchase_timestamp":      "2017-10-02 10:56:33",
		"order_approved_at":             "2017-10-02 11:07:15",
		"order_delivered_carrier_date":  "2017-10-04 19:55:00",
		"order_delivered_customer_date": "2017-10-10 21:25:13",
		"order_estimated_delivery_date": "2017-10-18 00:00:00",
	})
	writeRaw(t, cfg, "olist_orders_dataset.csv", orders)

	items := table.New("order_id", "order_item_id", "product_id", "seller_id", "shipping_limit_date", "price", "freight_value")
	items.Append(table.Record{"order_id": "o1", "order_item_id": "1", "product_id": "p1", "seller_id": "s1", "shipping_limit_date": "2017-10-06 11:07:15", "price": "10.00", "freight_value": "2.00"})
	items.Append(table.Record{"order_id": "o1", "order_item_id": "2", "product_id": "p1", "seller_id": "s1", "shipping_limit_date": "2017-10-06 11:07:15", "price": "5.00", "freight_value": "1.00"})
	writeRaw(t, cfg, "olist_order_items_dataset.csv", items)

	payments := table.New("order_id", "payment_sequential", "payment_type", "payment_installments", "payment_value")
	payments.Append(table.Record{"order_id": "o1", "payment_sequential": "1", "payment_type": "credit_card", "payment_installments": "1", "payment_value": "16.00"})
	payments.Append(table.Record{"order_id": "o1", "payment_sequential": "2", "payment_type": "voucher", "payment_installments": "1", "payment_value": "2.00"})
	writeRaw(t, cfg, "olist_order_payments_dataset.csv", payments)

	products := table.New("product_id", "product_category_name", "product_name_lenght", "product_description_lenght", "product_photos_qty", "product_weight_g", "product_length_cm", "product_height_cm", "product_width_cm")
	products.Append(table.Record{"product_id": "p1", "product_category_name": "perfumaria", "product_name_lenght": "40", "product_description_lenght": "268", "product_photos_qty": "4", "product_weight_g": "500", "product_length_cm": "19", "product_height_cm": "8", "product_width_cm": "13"})
	writeRaw(t, cfg, "olist_products_dataset.csv", products)

	translation := table.New("product_category_name", "product_category_name_english")
	translation.Append(table.Record{"product_category_name": "perfumaria", "product_category_name_english": "perfumery"})
	writeRaw(t, cfg, "product_category_name_translation.csv", translation)
}

func TestStagesDeclareValidOrder(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, checkOrder(Stages(cfg, nil)))

	cfg.Warehouse.Kind = "sqlite"
	cfg.Warehouse.DSN = "warehouse.db"
	stages := Stages(cfg, nil)
	require.NoError(t, checkOrder(stages))
	assert.Equal(t, "publish_warehouse", stages[len(stages)-1].Name)
}

func TestStagesOmitPublishWithoutWarehouse(t *testing.T) {
	for _, s := range Stages(testConfig(t), nil) {
		assert.NotEqual(t, "publish_warehouse", s.Name)
	}
}

// Full run over a seeded raw area, fetch skipping the download because
// the extracts are already in place.
func TestStagesEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	seedRawArea(t, cfg)

	err := NewRunner(cfg.Job, nil).Run(context.Background(), Stages(cfg, nil))
	require.NoError(t, err)

	fact, err := csvio.ReadFile(filepath.Join(cfg.Paths.ModeledDir, "fact_orders.csv"), csvio.Options{})
	require.NoError(t, err)
	require.Equal(t, 1, fact.Len())

	r := fact.Rows[0]
	assert.Equal(t, "o1", r["order_id"])
	assert.Equal(t, "2", r["order_items_count"])
	assert.Equal(t, "15", r["order_items_total_value"])
	assert.Equal(t, "3", r["order_freight_total"])
	assert.Equal(t, "18", r["order_payment_total"])
	assert.Equal(t, "2", r["payment_methods_count"])
	assert.Equal(t, "true", r["used_voucher"])
	assert.Equal(t, "8", r["delivery_duration_days"])

	dim, err := csvio.ReadFile(filepath.Join(cfg.Paths.ModeledDir, "dim_date.csv"), csvio.Options{})
	require.NoError(t, err)
	// One order on 2017-10-02; the range collapses to a single day.
	require.Equal(t, 1, dim.Len())
	assert.Equal(t, "2017-10-02", dim.Rows[0]["date"])

	processed, err := csvio.ReadFile(filepath.Join(cfg.Paths.ProcessedDir, "customers_cleaned.csv"), csvio.Options{})
	require.NoError(t, err)
	assert.Equal(t, "SP", processed.Rows[0]["customer_state"])
}
