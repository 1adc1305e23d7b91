// Package clean implements the per-entity cleaners of the pipeline.
//
// Every cleaner has the same shape: validate the dataset's column
// contract, apply the entity's row-level filters and normalizations, and
// return a new table. Cleaners never mutate their input, never log, and
// never recover: schema and integrity violations are returned
// immediately and the stage runner is the sole recovery boundary.
//
// Malformed timestamps and numerics are not errors. They are coerced to
// absent cells, which then fail every "both present AND ..." comparison
// downstream, so bad rows fall out of the data instead of aborting the
// run.
package clean

import "olistdw/internal/table"

// cloneRecord copies a row so a cleaner can normalize cells without
// touching the input table.
func cloneRecord(r table.Record) table.Record {
	nr := make(table.Record, len(r))
	for k, v := range r {
		nr[k] = v
	}
	return nr
}

// timestampOrAbsent coerces a raw cell to a time.Time, or to absent when
// the cell is empty or unparsable.
func timestampOrAbsent(v any) any {
	if t, ok := table.Time(v); ok {
		return t
	}
	return nil
}

// decimalOrAbsent coerces a raw cell to an exact decimal, or to absent.
func decimalOrAbsent(v any) any {
	if d, ok := table.Decimal(v); ok {
		return d
	}
	return nil
}

// intOrAbsent coerces a raw cell to an int64, or to absent.
func intOrAbsent(v any) any {
	if i, ok := table.Int(v); ok {
		return i
	}
	return nil
}
