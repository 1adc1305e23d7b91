package model

import (
	"fmt"
	"time"

	"olistdw/internal/table"
)

// DateDimensionColumns is the fixed column order of dim_date.
var DateDimensionColumns = []string{
	"date",
	"day",
	"day_name",
	"month",
	"month_name",
	"year",
	"year_month",
	"day_of_week",
	"is_weekend",
}

// BuildDateDimension derives a contiguous calendar dimension spanning
// the fact table's observed purchase-date range, one row per day from
// the earliest to the latest date inclusive, gap-free even on days with
// no orders.
//
// day_of_week is ISO style (Monday=1 … Sunday=7) and is_weekend flags
// Saturday and Sunday. The date column itself is date-only.
//
// A fact table with zero valid purchase timestamps has no observable
// range; that is a fatal error, consistent with the pipeline's
// fail-fast policy, rather than a silently empty dimension.
func BuildDateDimension(fact table.Table) (table.Table, error) {
	var minT, maxT time.Time
	seen := false
	for _, r := range fact.Rows {
		ts, ok := table.Time(r["order_purchase_timestamp"])
		if !ok {
			continue
		}
		if !seen || ts.Before(minT) {
			minT = ts
		}
		if !seen || ts.After(maxT) {
			maxT = ts
		}
		seen = true
	}
	if !seen {
		return table.Table{}, fmt.Errorf("date dimension: fact table has no valid order_purchase_timestamp values")
	}

	start := table.DateOf(minT).Time()
	end := table.DateOf(maxT).Time()

	out := table.New(DateDimensionColumns...)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dow := isoWeekday(d.Weekday())
		out.Append(table.Record{
			"date":        table.DateOf(d),
			"day":         int64(d.Day()),
			"day_name":    d.Weekday().String(),
			"month":       int64(d.Month()),
			"month_name":  d.Month().String(),
			"year":        int64(d.Year()),
			"year_month":  fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month())),
			"day_of_week": dow,
			"is_weekend":  dow >= 6,
		})
	}
	return out, nil
}

// isoWeekday maps Go's Sunday-based weekday onto Monday=1 … Sunday=7.
func isoWeekday(wd time.Weekday) int64 {
	if wd == time.Sunday {
		return 7
	}
	return int64(wd)
}
