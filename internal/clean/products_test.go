package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olistdw/internal/table"
)

func productsFixture(rows ...table.Record) table.Table {
	t := table.New(
		"product_id",
		"product_category_name",
		"product_name_lenght",
		"product_description_lenght",
		"product_photos_qty",
		"product_weight_g",
		"product_length_cm",
		"product_height_cm",
		"product_width_cm",
	)
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

func translationFixture(pairs ...[2]string) table.Table {
	t := table.New("product_category_name", "product_category_name_english")
	for _, p := range pairs {
		t.Append(table.Record{
			"product_category_name":         p[0],
			"product_category_name_english": p[1],
		})
	}
	return t
}

func product(id, category string) table.Record {
	return table.Record{
		"product_id":                 id,
		"product_category_name":      category,
		"product_name_lenght":        "40",
		"product_description_lenght": "268",
		"product_photos_qty":         "4",
		"product_weight_g":           "500",
		"product_length_cm":          "19",
		"product_height_cm":          "8",
		"product_width_cm":           "13",
	}
}

func TestProductsTranslatesCategory(t *testing.T) {
	out, err := Products(
		productsFixture(product("p1", "perfumaria")),
		translationFixture([2]string{"perfumaria", "perfumery"}),
	)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "perfumery", out.Rows[0]["product_category_name_english"])
	assert.Equal(t, "product_category_name_english", out.Columns[len(out.Columns)-1])
}

func TestProductsMissingCategoryBecomesUnknown(t *testing.T) {
	out, err := Products(
		productsFixture(product("p1", "")),
		translationFixture(),
	)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "unknown", out.Rows[0]["product_category_name"])
	assert.Equal(t, "unknown", out.Rows[0]["product_category_name_english"])
}

func TestProductsUntranslatedCategoryGetsUnknownEnglish(t *testing.T) {
	out, err := Products(
		productsFixture(product("p1", "bebidas")),
		translationFixture([2]string{"perfumaria", "perfumery"}),
	)
	require.NoError(t, err)
	assert.Equal(t, "bebidas", out.Rows[0]["product_category_name"])
	assert.Equal(t, "unknown", out.Rows[0]["product_category_name_english"])
}

func TestProductsFirstTranslationWins(t *testing.T) {
	out, err := Products(
		productsFixture(product("p1", "perfumaria")),
		translationFixture(
			[2]string{"perfumaria", "perfumery"},
			[2]string{"perfumaria", "cosmetics"},
		),
	)
	require.NoError(t, err)
	assert.Equal(t, "perfumery", out.Rows[0]["product_category_name_english"])
}

func TestProductsDimensionFilter(t *testing.T) {
	tests := []struct {
		name  string
		col   string
		value string
		kept  bool
	}{
		{"all positive", "product_weight_g", "500", true},
		{"zero weight", "product_weight_g", "0", false},
		{"missing height", "product_height_cm", "", false},
		{"negative width", "product_width_cm", "-3", false},
		{"unparsable length", "product_length_cm", "abc", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := product("p1", "perfumaria")
			r[tc.col] = tc.value

			out, err := Products(productsFixture(r), translationFixture())
			require.NoError(t, err)
			if tc.kept {
				assert.Equal(t, 1, out.Len())
			} else {
				assert.Equal(t, 0, out.Len())
			}
		})
	}
}

func TestProductsMetadataDefaultsToZero(t *testing.T) {
	r := product("p1", "perfumaria")
	r["product_photos_qty"] = ""

	out, err := Products(productsFixture(r), translationFixture())
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, int64(0), out.Rows[0]["product_photos_qty"])
	assert.Equal(t, int64(40), out.Rows[0]["product_name_lenght"])
}

func TestProductsTranslationContract(t *testing.T) {
	_, err := Products(productsFixture(), table.New("product_category_name"))
	assert.Error(t, err)
}
