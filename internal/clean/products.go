package clean

import (
	"olistdw/internal/schema"
	"olistdw/internal/table"
)

// unknownCategory labels products whose category is missing in the
// source or has no English translation.
const unknownCategory = "unknown"

var (
	productDimensionColumns = []string{
		"product_weight_g",
		"product_length_cm",
		"product_height_cm",
		"product_width_cm",
	}

	productMetadataColumns = []string{
		"product_name_lenght",
		"product_description_lenght",
		"product_photos_qty",
	}

	productsContract = schema.Contract{
		Dataset: "products",
		Required: []string{
			"product_id",
			"product_category_name",
			"product_name_lenght",
			"product_description_lenght",
			"product_photos_qty",
			"product_weight_g",
			"product_length_cm",
			"product_height_cm",
			"product_width_cm",
		},
	}

	categoryTranslationContract = schema.Contract{
		Dataset: "category translation",
		Required: []string{
			"product_category_name",
			"product_category_name_english",
		},
	}
)

// Products validates and cleans the raw products extract, enriched with
// English category names from the translation lookup.
//
// Both inputs get their own contract check. A row survives only if all
// four physical dimension columns are present and strictly positive,
// one filter over the whole set rather than per column. Missing categories
// become "unknown" before the lookup, missing metadata counts become 0,
// and categories without a translation (including "unknown" itself) get
// the English name "unknown" as well.
//
// The translation table is a pure lookup source: it is not key-checked,
// and when a category repeats the first mapping wins.
func Products(raw, translation table.Table) (table.Table, error) {
	if err := productsContract.Validate(raw); err != nil {
		return table.Table{}, err
	}
	if err := categoryTranslationContract.Validate(translation); err != nil {
		return table.Table{}, err
	}

	english := make(map[string]string, translation.Len())
	for _, r := range translation.Rows {
		name, okN := table.String(r["product_category_name"])
		eng, okE := table.String(r["product_category_name_english"])
		if !okN || !okE {
			continue
		}
		if _, exists := english[name]; !exists {
			english[name] = eng
		}
	}

	out := table.Table{Columns: raw.Columns, Rows: make([]table.Record, 0, raw.Len())}
	for _, r := range raw.Rows {
		if !validDimensions(r) {
			continue
		}

		nr := cloneRecord(r)
		for _, col := range productDimensionColumns {
			if f, ok := table.Float(r[col]); ok {
				nr[col] = f
			}
		}

		category, ok := table.String(r["product_category_name"])
		if !ok || category == "" {
			category = unknownCategory
		}
		nr["product_category_name"] = category

		for _, col := range productMetadataColumns {
			if v, ok := table.Int(r[col]); ok {
				nr[col] = v
			} else {
				nr[col] = int64(0)
			}
		}

		if eng, ok := english[category]; ok {
			nr["product_category_name_english"] = eng
		} else {
			nr["product_category_name_english"] = unknownCategory
		}

		out.Rows = append(out.Rows, nr)
	}

	return out.WithColumn("product_category_name_english"), nil
}

// validDimensions requires every physical dimension to be present and
// strictly positive. A zero weight is as impossible as a missing one.
func validDimensions(r table.Record) bool {
	for _, col := range productDimensionColumns {
		f, ok := table.Float(r[col])
		if !ok || f <= 0 {
			return false
		}
	}
	return true
}
