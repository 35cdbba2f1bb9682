// Package results keeps the per-session table of counted images and exports
// it to an Excel workbook or a CSV file.
package results

import (
	"sync"
	"time"
)

// Header is the first row of a new export file.
var Header = []string{"name", "cell_count", "median_size"}

// Record is one counted image.
type Record struct {
	Name       string    `json:"name"`
	CellCount  int       `json:"cell_count"`
	MedianSize float64   `json:"median_size"`
	CountedAt  time.Time `json:"counted_at"`
}

// DefaultName labels a record counted at t when the caller gives no name.
func DefaultName(t time.Time) string {
	return "At " + t.Format("150405")
}

// DefaultFileName is the export file name used when the caller gives none.
func DefaultFileName(t time.Time) string {
	return "At_" + t.Format("200601021504") + ".xlsx"
}

// Table is a concurrency-safe, append-only list of records.
type Table struct {
	mu      sync.Mutex
	records []Record
	now     func() time.Time
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{now: time.Now}
}

// Add appends a record. An empty name is replaced by DefaultName and a zero
// CountedAt by the current time. The stored record is returned.
func (t *Table) Add(r Record) Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r.CountedAt.IsZero() {
		r.CountedAt = t.now()
	}
	if r.Name == "" {
		r.Name = DefaultName(r.CountedAt)
	}
	t.records = append(t.records, r)
	return r
}

// List returns a copy of the records in insertion order.
func (t *Table) List() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Record(nil), t.records...)
}

// Len reports the number of records.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Clear removes every record and returns how many were dropped.
func (t *Table) Clear() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.records)
	t.records = nil
	return n
}
