// Package csv reads and writes the delimited stage-boundary files of the
// pipeline as table.Table values. Reading is tolerant of real-world
// extracts (UTF-8 BOM, stray leading spaces, unescaped quotes); writing
// is strict: a header row plus every row's cells in the table's declared
// column order, with no implicit reordering.
package csv

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"olistdw/internal/table"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Options configures the reader. All fields are optional; zero values
// get sensible defaults.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing ASCII space from each cell.
	TrimSpace bool
}

// ReadTable parses delimited text into a table. The first row is the
// header and becomes the column order. Every cell is read as a string;
// typing is the cleaners' concern, not the parser's. Rows whose width
// differs from the header are an error: stage outputs are machine
// written and a ragged row means a corrupt file, not messy source data.
func ReadTable(r io.Reader, opt Options) (table.Table, error) {
	cr := csv.NewReader(bufio.NewReaderSize(r, 64*1024))
	cr.Comma = ','
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return table.Table{}, fmt.Errorf("read header: empty input")
	}
	if err != nil {
		return table.Table{}, fmt.Errorf("read header: %w", err)
	}

	cols := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		cols[i] = h
	}

	t := table.New(cols...)
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return table.Table{}, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) != len(cols) {
			return table.Table{}, fmt.Errorf("line %d: %d fields, header has %d", line, len(rec), len(cols))
		}
		row := make(table.Record, len(cols))
		for i, c := range cols {
			v := rec[i]
			if opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			row[c] = v
		}
		t.Append(row)
	}
	return t, nil
}

// ReadFile opens path and reads it with ReadTable.
func ReadFile(path string, opt Options) (table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return table.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	t, err := ReadTable(f, opt)
	if err != nil {
		return table.Table{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteTable emits the table as delimited text: header row first, then
// each row's cells in the table's column order. Absent cells become
// empty fields.
func WriteTable(w io.Writer, t table.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			rec[i] = FormatCell(row[c])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to path, creating parent directories as
// needed. The write goes through a temp file renamed into place so a
// failed stage never leaves a truncated output behind.
func WriteFile(path string, t table.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteTable(tmp, t); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// FormatCell renders a cell in its canonical textual encoding.
func FormatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case decimal.Decimal:
		return t.String()
	case time.Time:
		return t.Format(table.TimestampLayout)
	case table.Date:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
