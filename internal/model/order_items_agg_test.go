package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olistdw/internal/table"
)

func itemsInput(rows ...table.Record) table.Table {
	t := table.New("order_id", "order_item_id", "price", "freight_value")
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

func TestAggregateOrderItems(t *testing.T) {
	in := itemsInput(
		table.Record{"order_id": "B", "order_item_id": "1", "price": "30.00", "freight_value": "5.00"},
		table.Record{"order_id": "A", "order_item_id": "1", "price": "10.00", "freight_value": "2.00"},
		table.Record{"order_id": "A", "order_item_id": "2", "price": "5.00", "freight_value": "1.00"},
	)

	out := AggregateOrderItems(in)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, []string{"order_id", "order_items_count", "order_items_total_value", "order_freight_total"}, out.Columns)

	// Sorted by order_id regardless of input order.
	a := out.Rows[0]
	require.Equal(t, "A", a["order_id"])
	assert.Equal(t, int64(2), a["order_items_count"])
	assert.True(t, a["order_items_total_value"].(decimal.Decimal).Equal(decimal.RequireFromString("15.00")))
	assert.True(t, a["order_freight_total"].(decimal.Decimal).Equal(decimal.RequireFromString("3.00")))

	b := out.Rows[1]
	require.Equal(t, "B", b["order_id"])
	assert.Equal(t, int64(1), b["order_items_count"])
}

func TestAggregateOrderItemsExactCents(t *testing.T) {
	// 0.10 added ten times must be exactly 1, not 0.9999999999999999.
	rows := make([]table.Record, 0, 10)
	for i := 0; i < 10; i++ {
		rows = append(rows, table.Record{"order_id": "A", "price": "0.10", "freight_value": "0.00"})
	}
	out := AggregateOrderItems(itemsInput(rows...))
	require.Equal(t, 1, out.Len())
	assert.True(t, out.Rows[0]["order_items_total_value"].(decimal.Decimal).Equal(decimal.NewFromInt(1)))
}

func TestAggregateOrderItemsEmptyInput(t *testing.T) {
	out := AggregateOrderItems(itemsInput())
	assert.Equal(t, 0, out.Len())
	assert.Len(t, out.Columns, 4)
}
