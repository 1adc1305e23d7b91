package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olistdw/internal/table"
)

func paymentsFixture(rows ...table.Record) table.Table {
	t := table.New(
		"order_id",
		"payment_sequential",
		"payment_type",
		"payment_installments",
		"payment_value",
	)
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

func payment(order, typ, value, installments string) table.Record {
	return table.Record{
		"order_id":             order,
		"payment_sequential":   "1",
		"payment_type":         typ,
		"payment_installments": installments,
		"payment_value":        value,
	}
}

func TestPaymentsNormalizesType(t *testing.T) {
	out, err := Payments(paymentsFixture(payment("A", "  Credit_Card ", "99.33", "8")))
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "credit_card", out.Rows[0]["payment_type"])
	assert.Equal(t, int64(8), out.Rows[0]["payment_installments"])
}

func TestPaymentsNotDefinedBecomesAbsent(t *testing.T) {
	out, err := Payments(paymentsFixture(payment("A", "not_defined", "10.00", "1")))
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Nil(t, out.Rows[0]["payment_type"])
}

func TestPaymentsFilters(t *testing.T) {
	tests := []struct {
		name                string
		value, installments string
		kept                bool
	}{
		{"positive", "10.00", "1", true},
		{"zero value kept", "0.00", "1", true},
		{"zero installments kept", "10.00", "0", true},
		{"negative value", "-5.00", "1", false},
		{"negative installments", "10.00", "-1", false},
		{"unparsable value", "x", "1", false},
		{"unparsable installments", "10.00", "x", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Payments(paymentsFixture(payment("A", "voucher", tc.value, tc.installments)))
			require.NoError(t, err)
			if tc.kept {
				assert.Equal(t, 1, out.Len())
			} else {
				assert.Equal(t, 0, out.Len())
			}
		})
	}
}

func TestPaymentsSequentialCoercion(t *testing.T) {
	r := payment("A", "boleto", "10.00", "1")
	r["payment_sequential"] = ""

	out, err := Payments(paymentsFixture(r))
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Nil(t, out.Rows[0]["payment_sequential"])
}
