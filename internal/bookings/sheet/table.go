// Package sheet converts between booking tables and single-sheet xlsx
// workbooks.
//
// Row 1 of the sheet holds the column keys; each following row is one
// booking. Columns are the union of every key seen, in first-seen order.
package sheet

import "bookingsheet/pkg/model"

// Table is an ordered set of bookings together with the column keys they use.
type Table struct {
	columns []string
	index   map[string]int
	rows    []*model.Booking
}

func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Append adds b as the last row and extends the columns with any keys not
// seen before. A booking without a single non-null value has no row
// representation: its keys still become columns but no row is added, and
// Append reports false.
func (t *Table) Append(b *model.Booking) bool {
	if b == nil {
		return false
	}
	for _, key := range b.Keys() {
		t.addColumn(key)
	}
	if !hasValue(b) {
		return false
	}
	t.rows = append(t.rows, b)
	return true
}

func hasValue(b *model.Booking) bool {
	for _, field := range b.Fields() {
		if field.Value != nil {
			return true
		}
	}
	return false
}

func (t *Table) addColumn(key string) {
	if _, ok := t.index[key]; ok {
		return
	}
	t.index[key] = len(t.columns)
	t.columns = append(t.columns, key)
}

func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *Table) Rows() []*model.Booking {
	out := make([]*model.Booking, len(t.rows))
	copy(out, t.rows)
	return out
}

func (t *Table) Len() int {
	return len(t.rows)
}

// ColumnsWith reports how many columns the table would have after
// appending b.
func (t *Table) ColumnsWith(b *model.Booking) int {
	n := len(t.columns)
	for _, key := range b.Keys() {
		if _, ok := t.index[key]; !ok {
			n++
		}
	}
	return n
}
