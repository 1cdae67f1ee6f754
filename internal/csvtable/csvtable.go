// Package csvtable stores rows in a flat CSV file with a required header row.
// Rows are appended one at a time; the file is never rewritten.
package csvtable

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrHeaderMismatch is returned when the file's header lacks a required column.
var ErrHeaderMismatch = errors.New("csv header mismatch")

// Table is a CSV file whose first row names the columns.
type Table struct {
	path    string
	columns []string
}

// New returns a table stored at path with the given columns.
func New(path string, columns ...string) *Table {
	return &Table{path: path, columns: columns}
}

// Path returns the file backing the table.
func (t *Table) Path() string {
	return t.path
}

// Ensure creates the file with only a header row if it does not exist yet
// (or is empty).
func (t *Table) Ensure() error {
	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating table directory: %w", err)
		}
	}
	f, err := os.OpenFile(t.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", t.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", t.path, err)
	}
	if info.Size() > 0 {
		return nil
	}
	if _, err := f.Write(encodeRow(t.columns)); err != nil {
		return fmt.Errorf("writing header to %s: %w", t.path, err)
	}
	return nil
}

func encodeRow(row []string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(row) // writes to a bytes.Buffer cannot fail
	w.Flush()
	return buf.Bytes()
}

// columnIndex maps each required column to its position in header.
func (t *Table) columnIndex(header []string) ([]int, error) {
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	idx := make([]int, len(t.columns))
	for i, col := range t.columns {
		pos := slices.Index(header, col)
		if pos < 0 {
			return nil, fmt.Errorf("%w: %s has no %q column (header %v)", ErrHeaderMismatch, t.path, col, header)
		}
		idx[i] = pos
	}
	return idx, nil
}

// ReadAll returns every data row with values ordered like the table's columns.
// Columns may appear in any order in the file; extra columns are ignored.
// An empty file is an empty table.
func (t *Table) ReadAll() ([][]string, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", t.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", t.path, err)
	}
	idx, err := t.columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", t.path, err)
		}
		row := make([]string, len(idx))
		for i, pos := range idx {
			row[i] = record[pos]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Append adds one row, given in the table's column order, creating the file
// with a header first if needed.
func (t *Table) Append(values ...string) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("append to %s: got %d values for %d columns", t.path, len(values), len(t.columns))
	}
	if err := t.Ensure(); err != nil {
		return err
	}

	f, err := os.OpenFile(t.path, os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", t.path, err)
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil {
		return fmt.Errorf("reading header of %s: %w", t.path, err)
	}
	idx, err := t.columnIndex(header)
	if err != nil {
		return err
	}

	// Lay the values out in the file's own column order.
	record := make([]string, len(header))
	for i, pos := range idx {
		record[pos] = values[i]
	}

	line := encodeRow(record)
	if !endsWithNewline(f) {
		line = append([]byte("\n"), line...)
	}
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("appending to %s: %w", t.path, err)
	}
	return nil
}

// endsWithNewline reports whether the last byte of f is a newline, so a
// hand-edited file missing its trailing newline does not swallow the next row.
func endsWithNewline(f *os.File) bool {
	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return true
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return true
	}
	return last[0] == '\n'
}
