package dialect

import "github.com/mesh-intelligence/pantry/pkg/types"

var _ types.Dialect = MySQL{}

// MySQL is the MySQL / MariaDB dialect. It has no RETURNING clause; the
// generated identity comes from the driver's LastInsertId.
type MySQL struct{}

var mysqlTypes = typeNames{
	types.TypeInt:      "INT",
	types.TypeBigInt:   "BIGINT",
	types.TypeBool:     "BIT",
	types.TypeText:     "LONGTEXT",
	types.TypeFloat:    "DOUBLE",
	types.TypeDateTime: "DATETIME",
	types.TypeBinary:   "LONGBLOB",
}

func (MySQL) Name() string { return types.DriverMySQL }

func (MySQL) QuoteForTableName(name string) string { return quote(name, "`", "`") }

func (MySQL) QuoteForColumnName(name string) string { return quote(name, "`", "`") }

func (MySQL) Parameter(int) string { return "?" }

func (MySQL) IdentitySelectString() string { return "" }

func (MySQL) IdentityColumnString() string { return "BIGINT AUTO_INCREMENT PRIMARY KEY" }

func (MySQL) CascadeConstraintsString() string { return "" }

func (MySQL) SupportsAlterForeignKey() bool { return true }

func (MySQL) ColumnType(t types.ColumnType, length int) (string, error) {
	return mysqlTypes.lookup("mysql", t, length, "VARCHAR")
}

func (MySQL) DefaultValuesInsert() string { return "() VALUES ()" }

func (d MySQL) DropForeignKeySQL(table, name string) string {
	return "ALTER TABLE " + d.QuoteForTableName(table) + " DROP FOREIGN KEY " + d.QuoteForTableName(name)
}

func (d MySQL) DropIndexSQL(table, name string) string {
	return "DROP INDEX " + d.QuoteForTableName(name) + " ON " + d.QuoteForTableName(table)
}
