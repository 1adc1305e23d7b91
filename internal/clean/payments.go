package clean

import (
	"strings"

	"olistdw/internal/schema"
	"olistdw/internal/table"
)

var paymentsContract = schema.Contract{
	Dataset: "payments",
	Required: []string{
		"order_id",
		"payment_sequential",
		"payment_type",
		"payment_installments",
		"payment_value",
	},
}

// notDefinedPaymentType is the source literal for an unrecorded payment
// method. It is mapped to an absent cell, not to the "unknown" label
// the products cleaner uses, because an unrecorded payment type is a
// data-quality signal, not a category, and folding it into a label would
// silently change payment-type aggregates.
const notDefinedPaymentType = "not_defined"

// Payments validates and cleans the raw order payments extract.
//
// Rows with negative values or installment counts are dropped; zero
// installments stay (orders paid in full). The payment type is trimmed
// and lower-cased before the not_defined substitution, so the voucher
// predicate downstream always sees the normalized literal.
func Payments(raw table.Table) (table.Table, error) {
	if err := paymentsContract.Validate(raw); err != nil {
		return table.Table{}, err
	}

	out := table.Table{Columns: raw.Columns, Rows: make([]table.Record, 0, raw.Len())}
	for _, r := range raw.Rows {
		value, okV := table.Decimal(r["payment_value"])
		installments, okI := table.Int(r["payment_installments"])
		if !okV || !okI || value.IsNegative() || installments < 0 {
			continue
		}

		nr := cloneRecord(r)
		nr["payment_value"] = value
		nr["payment_installments"] = installments
		nr["payment_sequential"] = intOrAbsent(r["payment_sequential"])

		if s, ok := table.String(r["payment_type"]); ok {
			typ := strings.ToLower(strings.TrimSpace(s))
			if typ == notDefinedPaymentType {
				nr["payment_type"] = nil
			} else {
				nr["payment_type"] = typ
			}
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, nil
}
