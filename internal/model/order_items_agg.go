// Package model builds the order-grain aggregates, the fact_orders
// table, and the dim_date calendar dimension from cleaned extracts.
//
// The aggregators assume their input already passed the corresponding
// cleaner and do not re-validate. All money arithmetic is exact decimal;
// a sum over line items equals the sum a reconciliation query would
// produce, digit for digit.
package model

import (
	"sort"

	"github.com/shopspring/decimal"

	"olistdw/internal/table"
)

// itemsAgg accumulates one order's line items.
type itemsAgg struct {
	count   int64
	value   decimal.Decimal
	freight decimal.Decimal
}

// AggregateOrderItems collapses cleaned line items to one row per
// order_id, with the line count and exact sums of price and freight.
// Output rows are sorted by order_id so the aggregate is deterministic
// regardless of input order.
func AggregateOrderItems(items table.Table) table.Table {
	groups := make(map[string]*itemsAgg)
	for _, r := range items.Rows {
		id, ok := table.String(r["order_id"])
		if !ok {
			continue
		}
		g := groups[id]
		if g == nil {
			g = &itemsAgg{}
			groups[id] = g
		}
		g.count++
		if price, ok := table.Decimal(r["price"]); ok {
			g.value = g.value.Add(price)
		}
		if freight, ok := table.Decimal(r["freight_value"]); ok {
			g.freight = g.freight.Add(freight)
		}
	}

	out := table.New("order_id", "order_items_count", "order_items_total_value", "order_freight_total")
	for _, id := range sortedKeys(groups) {
		g := groups[id]
		out.Append(table.Record{
			"order_id":                id,
			"order_items_count":       g.count,
			"order_items_total_value": g.value,
			"order_freight_total":     g.freight,
		})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
