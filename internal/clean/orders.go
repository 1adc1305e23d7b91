package clean

import (
	"olistdw/internal/schema"
	"olistdw/internal/table"
)

// The five temporal columns of the orders extract, and the adjacent
// pairs that must be chronologically ordered when both sides are
// present. The estimated delivery date is not part of the chain; it is
// a promise, not an event.
var (
	orderTimestampColumns = []string{
		"order_purchase_timestamp",
		"order_approved_at",
		"order_delivered_carrier_date",
		"order_delivered_customer_date",
		"order_estimated_delivery_date",
	}

	orderChronologyPairs = [][2]string{
		{"order_purchase_timestamp", "order_approved_at"},
		{"order_approved_at", "order_delivered_carrier_date"},
		{"order_delivered_carrier_date", "order_delivered_customer_date"},
	}
)

var ordersContract = schema.Contract{
	Dataset: "orders",
	Required: append([]string{
		"order_id",
		"customer_id",
		"order_status",
	}, orderTimestampColumns...),
}

// deliveredStatus is the only order status that survives cleaning; the
// fact table models completed orders only.
const deliveredStatus = "delivered"

// Orders validates and cleans the raw orders extract.
//
// Timestamps are coerced (unparsable to absent), undelivered orders are
// dropped, and rows whose event chain runs backwards (any adjacent pair
// with both sides present and the earlier one later) are masked out.
// Two derived day-granularity columns are appended:
//
//	delivery_duration_days = delivered_customer − purchase
//	delivery_delay_days    = delivered_customer − estimated_delivery
//
// The delay is signed; negative means an early delivery. Rows without a
// non-negative duration are dropped last, which also removes rows whose
// purchase or delivery timestamp failed to parse.
func Orders(raw table.Table) (table.Table, error) {
	if err := ordersContract.Validate(raw); err != nil {
		return table.Table{}, err
	}

	out := table.Table{Columns: raw.Columns, Rows: make([]table.Record, 0, raw.Len())}
	for _, r := range raw.Rows {
		if s, _ := table.String(r["order_status"]); s != deliveredStatus {
			continue
		}

		nr := cloneRecord(r)
		for _, col := range orderTimestampColumns {
			nr[col] = timestampOrAbsent(r[col])
		}

		if invalidChronology(nr) {
			continue
		}

		if d, ok := table.DaysBetween(nr["order_delivered_customer_date"], nr["order_purchase_timestamp"]); ok {
			nr["delivery_duration_days"] = d
		} else {
			nr["delivery_duration_days"] = nil
		}
		if d, ok := table.DaysBetween(nr["order_delivered_customer_date"], nr["order_estimated_delivery_date"]); ok {
			nr["delivery_delay_days"] = d
		} else {
			nr["delivery_delay_days"] = nil
		}

		// Residual guard after the sequence check: an absent duration
		// fails the comparison and drops the row.
		if d, ok := table.Int(nr["delivery_duration_days"]); !ok || d < 0 {
			continue
		}

		out.Rows = append(out.Rows, nr)
	}

	out = out.WithColumn("delivery_duration_days")
	out = out.WithColumn("delivery_delay_days")
	return out, nil
}

// invalidChronology ORs the "(both present) AND (earlier > later)"
// condition across the adjacent event pairs. Absent sides never mask a
// row.
func invalidChronology(r table.Record) bool {
	for _, pair := range orderChronologyPairs {
		if table.After(r[pair[0]], r[pair[1]]) {
			return true
		}
	}
	return false
}
