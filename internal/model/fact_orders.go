package model

import (
	"github.com/shopspring/decimal"

	"olistdw/internal/table"
)

// FactColumns is the fixed projection of the fact table, in output
// order. Anything else computed upstream is dropped on the way out.
var FactColumns = []string{
	"order_id",
	"customer_id",
	"order_status",
	"order_purchase_timestamp",
	"delivery_duration_days",
	"delivery_delay_days",
	"order_items_count",
	"order_items_total_value",
	"order_freight_total",
	"order_payment_total",
	"payment_methods_count",
	"used_voucher",
}

// BuildFactOrders assembles the order-grain fact table: cleaned orders
// left-merged with the items aggregate, then with the payments
// aggregate, on order_id. Orders with no items or no payments are
// retained, with zero counts and totals and used_voucher false: an
// absent aggregate is a real "nothing", not missing data.
//
// The two counts are coerced to integers and the purchase timestamp is
// re-parsed defensively, since the inputs may have round-tripped through
// CSV between stages. The output carries exactly FactColumns, one row
// per surviving order.
func BuildFactOrders(orders, itemsAgg, paymentsAgg table.Table) (table.Table, error) {
	items := indexByOrderID(itemsAgg)
	payments := indexByOrderID(paymentsAgg)

	zero := decimal.Zero

	out := table.New(FactColumns...)
	for _, o := range orders.Rows {
		id, _ := table.String(o["order_id"])

		row := table.Record{
			"order_id":                 id,
			"customer_id":              o["customer_id"],
			"order_status":             o["order_status"],
			"order_purchase_timestamp": timestampCell(o["order_purchase_timestamp"]),
			"delivery_duration_days":   o["delivery_duration_days"],
			"delivery_delay_days":      o["delivery_delay_days"],
			"order_items_count":        int64(0),
			"order_items_total_value":  zero,
			"order_freight_total":      zero,
			"order_payment_total":      zero,
			"payment_methods_count":    int64(0),
			"used_voucher":             false,
		}

		if agg, ok := items[id]; ok {
			row["order_items_count"] = intCell(agg["order_items_count"])
			row["order_items_total_value"] = decimalCell(agg["order_items_total_value"], zero)
			row["order_freight_total"] = decimalCell(agg["order_freight_total"], zero)
		}
		if agg, ok := payments[id]; ok {
			row["order_payment_total"] = decimalCell(agg["order_payment_total"], zero)
			row["payment_methods_count"] = intCell(agg["payment_methods_count"])
			if b, ok := table.Bool(agg["used_voucher"]); ok {
				row["used_voucher"] = b
			}
		}

		out.Append(row)
	}
	return out, nil
}

// indexByOrderID maps an order-grain aggregate by its key. Aggregates
// are produced one row per order_id, so a plain map suffices.
func indexByOrderID(t table.Table) map[string]table.Record {
	idx := make(map[string]table.Record, t.Len())
	for _, r := range t.Rows {
		if id, ok := table.String(r["order_id"]); ok {
			idx[id] = r
		}
	}
	return idx
}

// timestampCell re-coerces a purchase timestamp that may have become a
// string across a stage boundary; unparsable stays absent.
func timestampCell(v any) any {
	if t, ok := table.Time(v); ok {
		return t
	}
	return nil
}

// intCell coerces an aggregate count to int64, defaulting to 0.
func intCell(v any) int64 {
	if i, ok := table.Int(v); ok {
		return i
	}
	return 0
}

// decimalCell coerces an aggregate sum to decimal, falling back to def.
func decimalCell(v any, def decimal.Decimal) decimal.Decimal {
	if d, ok := table.Decimal(v); ok {
		return d
	}
	return def
}
