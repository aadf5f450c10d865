package types

import "errors"

// ColumnType is the portable type of a table column. A Dialect maps it to
// its native type name.
type ColumnType int

// Portable column types.
const (
	TypeInt ColumnType = iota + 1
	TypeBigInt
	TypeBool
	TypeText
	TypeString
	TypeFloat
	TypeDateTime
	TypeBinary
)

// DefaultStringLength is used for TypeString columns declared without a length.
const DefaultStringLength = 255

// Dialect errors.
var (
	ErrDialectUnknown     = errors.New("unknown dialect")
	ErrUnsupportedType    = errors.New("column type not supported by dialect")
	ErrUnsupportedCommand = errors.New("schema command not supported by dialect")
)

// Dialect captures the rules of one RDBMS that SQL text generation depends on.
// Identifiers are the only strings ever concatenated into statements; values
// are always bound through Parameter placeholders.
type Dialect interface {
	// Name returns the dialect name, equal to the driver name it serves.
	Name() string

	// QuoteForTableName quotes a table or constraint name.
	QuoteForTableName(name string) string

	// QuoteForColumnName quotes a column name.
	QuoteForColumnName(name string) string

	// Parameter returns the placeholder for the 1-based bind position.
	Parameter(position int) string

	// IdentitySelectString is appended, followed by the quoted identity
	// column, to an insert so that it returns the generated identity. An
	// empty string means the driver's LastInsertId reports it instead.
	IdentitySelectString() string

	// IdentityColumnString is the full column definition suffix of an
	// auto-generated primary key.
	IdentityColumnString() string

	// CascadeConstraintsString is appended to DROP TABLE. An empty string
	// means dependent foreign keys must be dropped explicitly first.
	CascadeConstraintsString() string

	// SupportsAlterForeignKey reports whether foreign keys can be added or
	// dropped on an existing table.
	SupportsAlterForeignKey() bool

	// ColumnType returns the native type name for a portable type.
	ColumnType(t ColumnType, length int) (string, error)

	// DefaultValuesInsert is the insert body used when no column is given.
	DefaultValuesInsert() string

	// DropForeignKeySQL returns the statement removing a foreign key.
	DropForeignKeySQL(table, name string) string

	// DropIndexSQL returns the statement removing a secondary index.
	DropIndexSQL(table, name string) string
}
