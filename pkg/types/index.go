package types

import (
	"errors"
	"fmt"
)

// IndexKind is the closed set of index variants.
type IndexKind int

// Index kinds.
const (
	MapIndex IndexKind = iota + 1
	ReduceIndex
)

// String returns the kind name.
func (k IndexKind) String() string {
	switch k {
	case MapIndex:
		return "map"
	case ReduceIndex:
		return "reduce"
	default:
		return fmt.Sprintf("IndexKind(%d)", int(k))
	}
}

// Field is one named column value of an index row.
type Field struct {
	Name  string
	Value any
}

// Index is a derived row stored in the table named by Name. ID is assigned by
// the database when the row is inserted.
type Index struct {
	ID     int64
	Name   string
	Kind   IndexKind
	Fields []Field
}

// NewMapIndex returns a map index value for the table name.
func NewMapIndex(name string, fields ...Field) *Index {
	return &Index{Name: name, Kind: MapIndex, Fields: fields}
}

// NewReduceIndex returns a reduce index value for the table name.
func NewReduceIndex(name string, fields ...Field) *Index {
	return &Index{Name: name, Kind: ReduceIndex, Fields: fields}
}

// Index contract errors.
var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrIndexKindUnknown  = errors.New("unknown index kind")
	ErrReservedColumn    = errors.New("column name is reserved")
	ErrMapIndexDocuments = errors.New("map index must be associated with exactly one document")
	ErrIndexNotPersisted = errors.New("index has no identity")
	ErrMapIndexRemoval   = errors.New("map index cannot remove documents on update")
)

// ValidIdentifier reports whether name may be used as a table or column name.
func ValidIdentifier(name string) bool {
	return name != "" && namePattern.MatchString(name)
}

// Validate checks the index name, kind and field names.
func (ix *Index) Validate() error {
	if !ValidIdentifier(ix.Name) {
		return fmt.Errorf("index name %q: %w", ix.Name, ErrInvalidIdentifier)
	}
	if ix.Kind != MapIndex && ix.Kind != ReduceIndex {
		return fmt.Errorf("index %s: %w", ix.Name, ErrIndexKindUnknown)
	}
	for _, f := range ix.Fields {
		if !ValidIdentifier(f.Name) {
			return fmt.Errorf("index %s field %q: %w", ix.Name, f.Name, ErrInvalidIdentifier)
		}
		if f.Name == ColumnID || f.Name == ColumnDocumentID {
			return fmt.Errorf("index %s field %s: %w", ix.Name, f.Name, ErrReservedColumn)
		}
	}
	return nil
}

// Columns returns the field names in order.
func (ix *Index) Columns() []string {
	cols := make([]string, len(ix.Fields))
	for i, f := range ix.Fields {
		cols[i] = f.Name
	}
	return cols
}

// Values returns the field values in order.
func (ix *Index) Values() []any {
	vals := make([]any, len(ix.Fields))
	for i, f := range ix.Fields {
		vals[i] = f.Value
	}
	return vals
}
