package clean

import (
	"olistdw/internal/schema"
	"olistdw/internal/table"
)

var orderItemsContract = schema.Contract{
	Dataset: "order_items",
	Required: []string{
		"order_id",
		"order_item_id",
		"product_id",
		"seller_id",
		"shipping_limit_date",
		"price",
		"freight_value",
	},
}

// OrderItems validates and cleans the raw order line items.
//
// Rows keep their line-item grain. Price and freight are parsed to exact
// decimals; rows where either is negative or unparsable are dropped.
// Zero is kept: free items and shipping promotions are real data. The
// shipping limit date is coerced to a timestamp, unparsable to absent,
// never an error.
func OrderItems(raw table.Table) (table.Table, error) {
	if err := orderItemsContract.Validate(raw); err != nil {
		return table.Table{}, err
	}

	out := table.Table{Columns: raw.Columns, Rows: make([]table.Record, 0, raw.Len())}
	for _, r := range raw.Rows {
		price, okP := table.Decimal(r["price"])
		freight, okF := table.Decimal(r["freight_value"])
		if !okP || !okF || price.IsNegative() || freight.IsNegative() {
			continue
		}

		nr := cloneRecord(r)
		nr["price"] = price
		nr["freight_value"] = freight
		nr["shipping_limit_date"] = timestampOrAbsent(r["shipping_limit_date"])
		out.Rows = append(out.Rows, nr)
	}
	return out, nil
}
