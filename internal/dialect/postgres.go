package dialect

import (
	"strconv"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

var _ types.Dialect = Postgres{}

// Postgres is the PostgreSQL dialect.
type Postgres struct{}

var postgresTypes = typeNames{
	types.TypeInt:      "INTEGER",
	types.TypeBigInt:   "BIGINT",
	types.TypeBool:     "BOOLEAN",
	types.TypeText:     "TEXT",
	types.TypeFloat:    "DOUBLE PRECISION",
	types.TypeDateTime: "TIMESTAMP",
	types.TypeBinary:   "BYTEA",
}

func (Postgres) Name() string { return types.DriverPostgres }

func (Postgres) QuoteForTableName(name string) string { return quote(name, `"`, `"`) }

func (Postgres) QuoteForColumnName(name string) string { return quote(name, `"`, `"`) }

func (Postgres) Parameter(position int) string { return "$" + strconv.Itoa(position) }

func (Postgres) IdentitySelectString() string { return "RETURNING" }

func (Postgres) IdentityColumnString() string { return "BIGSERIAL PRIMARY KEY" }

func (Postgres) CascadeConstraintsString() string { return " CASCADE" }

func (Postgres) SupportsAlterForeignKey() bool { return true }

func (Postgres) ColumnType(t types.ColumnType, length int) (string, error) {
	return postgresTypes.lookup("postgres", t, length, "VARCHAR")
}

func (Postgres) DefaultValuesInsert() string { return "DEFAULT VALUES" }

func (d Postgres) DropForeignKeySQL(table, name string) string {
	return "ALTER TABLE " + d.QuoteForTableName(table) + " DROP CONSTRAINT " + d.QuoteForTableName(name)
}

func (d Postgres) DropIndexSQL(table, name string) string {
	return "DROP INDEX " + d.QuoteForTableName(name)
}
