package model

import (
	"github.com/shopspring/decimal"

	"olistdw/internal/table"
)

// voucherPaymentType is the normalized payment type the used_voucher
// flag looks for.
const voucherPaymentType = "voucher"

// UsedVoucher reports whether any payment type in the collection is the
// voucher literal. The cleaner has already lower-cased the types and
// blanked not_defined, so absent entries never match.
func UsedVoucher(paymentTypes []string) bool {
	for _, t := range paymentTypes {
		if t == voucherPaymentType {
			return true
		}
	}
	return false
}

type paymentsAgg struct {
	total decimal.Decimal
	count int64
	types []string
}

// AggregatePayments collapses cleaned payments to one row per order_id:
// the exact payment total, the number of payment rows, and the voucher
// flag. Output rows are sorted by order_id.
func AggregatePayments(payments table.Table) table.Table {
	groups := make(map[string]*paymentsAgg)
	for _, r := range payments.Rows {
		id, ok := table.String(r["order_id"])
		if !ok {
			continue
		}
		g := groups[id]
		if g == nil {
			g = &paymentsAgg{}
			groups[id] = g
		}
		g.count++
		if v, ok := table.Decimal(r["payment_value"]); ok {
			g.total = g.total.Add(v)
		}
		if t, ok := table.String(r["payment_type"]); ok {
			g.types = append(g.types, t)
		}
	}

	out := table.New("order_id", "order_payment_total", "payment_methods_count", "used_voucher")
	for _, id := range sortedKeys(groups) {
		g := groups[id]
		out.Append(table.Record{
			"order_id":              id,
			"order_payment_total":   g.total,
			"payment_methods_count": g.count,
			"used_voucher":          UsedVoucher(g.types),
		})
	}
	return out
}
