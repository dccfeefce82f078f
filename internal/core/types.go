package core

import "strings"

// Unknown is the sentinel substituted for missing or invalid text data.
const Unknown = "unknown"

// Kind identifies the variant held by a raw Value.
type Kind int

const (
	KindAbsent Kind = iota // column or key not present in the source
	KindNull               // explicitly empty (empty CSV cell, JSON null)
	KindString
	KindNumber
	KindBool
)

// Value is a single raw cell as read from a source. The literal text is
// retained for every present kind so coercion can re-parse it.
type Value struct {
	Kind Kind
	Text string
}

// Absent is the zero Value.
var Absent = Value{}

// Null returns an explicitly empty value.
func Null() Value { return Value{Kind: KindNull} }

// String returns a text value.
func String(s string) Value { return Value{Kind: KindString, Text: s} }

// Number returns a numeric value from its literal representation.
func Number(lit string) Value { return Value{Kind: KindNumber, Text: lit} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	if b {
		return Value{Kind: KindBool, Text: "true"}
	}
	return Value{Kind: KindBool, Text: "false"}
}

// Missing reports whether v carries no value.
func (v Value) Missing() bool {
	return v.Kind == KindAbsent || v.Kind == KindNull
}

// IsString reports whether v is a text value.
func (v Value) IsString() bool {
	return v.Kind == KindString
}

// Row is one raw record keyed by column name.
type Row map[string]Value

// Get returns the value stored under col, or Absent.
func (r Row) Get(col string) Value {
	if v, ok := r[col]; ok {
		return v
	}
	return Absent
}

// RawTable is an untyped table: an ordered column list plus rows.
type RawTable struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (t RawTable) Len() int {
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t RawTable) Empty() bool {
	return len(t.Rows) == 0
}

// HasColumn reports whether col is part of the table's column set.
func (t RawTable) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can rewrite rows freely.
func (t RawTable) Clone() RawTable {
	out := RawTable{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// FieldType represents the declared type of a canonical column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInteger
	FieldNumeric
	FieldDate
)

// String returns the lowercase type name.
func (ft FieldType) String() string {
	switch ft {
	case FieldText:
		return "text"
	case FieldInteger:
		return "int64"
	case FieldNumeric:
		return "float64"
	case FieldDate:
		return "date"
	default:
		return "unknown"
	}
}

// Column is one named, typed column of a canonical table.
type Column struct {
	Name string
	Type FieldType
}

// Record is one canonical row. Cell i has the concrete Go type implied by
// Columns[i].Type: string, int64, float64 or pgtype.Date (Valid=false is a
// null date).
type Record []any

// Table is a normalized entity table with a fixed column set.
type Table struct {
	Name    string
	Columns []Column
	Records []Record
}

// Len returns the number of records.
func (t Table) Len() int {
	return len(t.Records)
}

// Empty reports whether the table has no records.
func (t Table) Empty() bool {
	return len(t.Records) == 0
}

// ColumnNames returns the column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// Cell returns the value of column name in record i, or nil if the column
// does not exist.
func (t Table) Cell(i int, name string) any {
	idx := t.ColumnIndex(name)
	if idx < 0 || i < 0 || i >= len(t.Records) {
		return nil
	}
	return t.Records[i][idx]
}
