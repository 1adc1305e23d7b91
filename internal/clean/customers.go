package clean

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"olistdw/internal/schema"
	"olistdw/internal/table"
)

var customersContract = schema.Contract{
	Dataset: "customers",
	Required: []string{
		"customer_id",
		"customer_unique_id",
		"customer_zip_code_prefix",
		"customer_city",
		"customer_state",
	},
}

// Customers validates and normalizes the raw customers extract.
//
// customer_id uniqueness is enforced with an IntegrityError: later joins
// assume the customer key identifies exactly one row. City names are
// trimmed and lower-cased, state codes trimmed and upper-cased, using
// Portuguese casing rules since the extract is Brazilian.
func Customers(raw table.Table) (table.Table, error) {
	if err := customersContract.Validate(raw); err != nil {
		return table.Table{}, err
	}
	if err := schema.UniqueColumn("customers", "customer_id", raw); err != nil {
		return table.Table{}, err
	}

	lower := cases.Lower(language.BrazilianPortuguese)
	upper := cases.Upper(language.BrazilianPortuguese)

	out := table.Table{Columns: raw.Columns, Rows: make([]table.Record, 0, raw.Len())}
	for _, r := range raw.Rows {
		nr := cloneRecord(r)
		if s, ok := table.String(r["customer_city"]); ok {
			nr["customer_city"] = lower.String(strings.TrimSpace(s))
		}
		if s, ok := table.String(r["customer_state"]); ok {
			nr["customer_state"] = upper.String(strings.TrimSpace(s))
		}
		out.Rows = append(out.Rows, nr)
	}
	return out, nil
}
