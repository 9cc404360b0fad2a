package model

import "time"

// ValueKind discriminates the scalar variants a table cell can hold.
type ValueKind int

const (
	KindNil ValueKind = iota
	KindNum
	KindText
	KindTime
)

// Value is a single table cell or mapping value.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Time time.Time
}

// Num wraps a float64 as a Value.
func Num(v float64) Value { return Value{Kind: KindNum, Num: v} }

// Text wraps a string as a Value.
func Text(s string) Value { return Value{Kind: KindText, Str: s} }

// TimeOf wraps a time.Time as a Value.
func TimeOf(t time.Time) Value { return Value{Kind: KindTime, Time: t} }

// ColumnType is the declared type of a table column or index.
type ColumnType int

const (
	ColAny ColumnType = iota
	ColNumber
	ColText
	ColTime
)

// Column is a named, typed slice of cell values.
type Column struct {
	Name   string
	Type   ColumnType
	Values []Value
}

// Table is a column-major table with a typed row index.
// All columns have exactly len(Index) values.
type Table struct {
	Name      string
	IndexName string
	IndexType ColumnType
	Index     []Value
	Columns   []Column
}

// Rows returns the number of rows in the table.
func (t *Table) Rows() int {
	if t == nil {
		return 0
	}
	return len(t.Index)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return t.Rows() == 0 }

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	cp := &Table{
		Name:      t.Name,
		IndexName: t.IndexName,
		IndexType: t.IndexType,
		Index:     append([]Value(nil), t.Index...),
		Columns:   make([]Column, len(t.Columns)),
	}
	for i, c := range t.Columns {
		cp.Columns[i] = Column{
			Name:   c.Name,
			Type:   c.Type,
			Values: append([]Value(nil), c.Values...),
		}
	}
	return cp
}

// DatasetKind discriminates the shapes the data provider can return.
type DatasetKind int

const (
	DatasetEmpty DatasetKind = iota
	DatasetTable
	DatasetMapping
)

// MapEntry preserves key order for mapping-shaped payloads.
type MapEntry struct {
	Key   string
	Value Value
}

// Dataset is the closed set of shapes a fetched dataset can take:
// absent, tabular, or a single key-to-value mapping (company info).
type Dataset struct {
	Kind    DatasetKind
	Table   *Table
	Mapping []MapEntry
}

// EmptyDataset returns the absent-data variant.
func EmptyDataset() Dataset { return Dataset{Kind: DatasetEmpty} }

// TableDataset wraps a table. A nil or empty table collapses to the empty variant.
func TableDataset(t *Table) Dataset {
	if t.Empty() {
		return EmptyDataset()
	}
	return Dataset{Kind: DatasetTable, Table: t}
}

// MappingDataset wraps ordered key/value pairs.
func MappingDataset(entries []MapEntry) Dataset {
	if len(entries) == 0 {
		return EmptyDataset()
	}
	return Dataset{Kind: DatasetMapping, Mapping: entries}
}
