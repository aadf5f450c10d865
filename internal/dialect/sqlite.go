package dialect

import "github.com/mesh-intelligence/pantry/pkg/types"

// Compile-time interface check.
var _ types.Dialect = SQLite{}

// SQLite is the dialect of SQLite 3.35 or later (RETURNING support).
// SQLite cannot add or drop foreign keys on an existing table: the builder
// declares them inside CREATE TABLE and the interpreter renders standalone
// foreign key commands to no statements.
type SQLite struct{}

var sqliteTypes = typeNames{
	types.TypeInt:      "INTEGER",
	types.TypeBigInt:   "INTEGER",
	types.TypeBool:     "BOOLEAN",
	types.TypeText:     "TEXT",
	types.TypeFloat:    "REAL",
	types.TypeDateTime: "DATETIME",
	types.TypeBinary:   "BLOB",
}

func (SQLite) Name() string { return types.DriverSQLite }

func (SQLite) QuoteForTableName(name string) string { return quote(name, `"`, `"`) }

func (SQLite) QuoteForColumnName(name string) string { return quote(name, `"`, `"`) }

func (SQLite) Parameter(int) string { return "?" }

func (SQLite) IdentitySelectString() string { return "RETURNING" }

func (SQLite) IdentityColumnString() string { return "INTEGER PRIMARY KEY AUTOINCREMENT" }

func (SQLite) CascadeConstraintsString() string { return "" }

func (SQLite) SupportsAlterForeignKey() bool { return false }

func (SQLite) ColumnType(t types.ColumnType, length int) (string, error) {
	return sqliteTypes.lookup("sqlite", t, length, "VARCHAR")
}

func (SQLite) DefaultValuesInsert() string { return "DEFAULT VALUES" }

// DropForeignKeySQL returns an empty statement; see SupportsAlterForeignKey.
func (SQLite) DropForeignKeySQL(table, name string) string { return "" }

func (d SQLite) DropIndexSQL(table, name string) string {
	return "DROP INDEX " + d.QuoteForTableName(name)
}
