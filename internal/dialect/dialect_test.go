package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func TestFor(t *testing.T) {
	tests := []struct {
		driver  string
		want    string
		wantErr error
	}{
		{driver: "sqlite", want: "sqlite"},
		{driver: "SQLite", want: "sqlite"},
		{driver: "postgres", want: "postgres"},
		{driver: "pgx", want: "postgres"},
		{driver: "mysql", want: "mysql"},
		{driver: "oracle", wantErr: types.ErrDialectUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := For(tt.driver)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}

	assert.Equal(t, []string{"mysql", "pgx", "postgres", "sqlite"}, Names())
}

func TestQuoting(t *testing.T) {
	tests := []struct {
		name    string
		dialect types.Dialect
		in      string
		want    string
	}{
		{name: "sqlite plain", dialect: SQLite{}, in: "tp_Document", want: `"tp_Document"`},
		{name: "sqlite embedded quote", dialect: SQLite{}, in: `a"b`, want: `"a""b"`},
		{name: "postgres plain", dialect: Postgres{}, in: "Id", want: `"Id"`},
		{name: "mysql plain", dialect: MySQL{}, in: "Id", want: "`Id`"},
		{name: "mysql embedded backtick", dialect: MySQL{}, in: "a`b", want: "`a``b`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.QuoteForTableName(tt.in))
			assert.Equal(t, tt.want, tt.dialect.QuoteForColumnName(tt.in))
		})
	}
}

func TestParameter(t *testing.T) {
	assert.Equal(t, "?", SQLite{}.Parameter(3))
	assert.Equal(t, "?", MySQL{}.Parameter(3))
	assert.Equal(t, "$3", Postgres{}.Parameter(3))
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		dialect       types.Dialect
		identity      string
		cascade       string
		alterFK       bool
		defaultValues string
	}{
		{dialect: SQLite{}, identity: "RETURNING", cascade: "", alterFK: false, defaultValues: "DEFAULT VALUES"},
		{dialect: Postgres{}, identity: "RETURNING", cascade: " CASCADE", alterFK: true, defaultValues: "DEFAULT VALUES"},
		{dialect: MySQL{}, identity: "", cascade: "", alterFK: true, defaultValues: "() VALUES ()"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			assert.Equal(t, tt.identity, tt.dialect.IdentitySelectString())
			assert.Equal(t, tt.cascade, tt.dialect.CascadeConstraintsString())
			assert.Equal(t, tt.alterFK, tt.dialect.SupportsAlterForeignKey())
			assert.Equal(t, tt.defaultValues, tt.dialect.DefaultValuesInsert())
			assert.NotEmpty(t, tt.dialect.IdentityColumnString())
		})
	}
}

func TestColumnType(t *testing.T) {
	tests := []struct {
		name    string
		dialect types.Dialect
		typ     types.ColumnType
		length  int
		want    string
	}{
		{name: "sqlite bigint", dialect: SQLite{}, typ: types.TypeBigInt, want: "INTEGER"},
		{name: "sqlite text", dialect: SQLite{}, typ: types.TypeText, want: "TEXT"},
		{name: "sqlite string default length", dialect: SQLite{}, typ: types.TypeString, want: "VARCHAR(255)"},
		{name: "postgres string", dialect: Postgres{}, typ: types.TypeString, length: 64, want: "VARCHAR(64)"},
		{name: "postgres binary", dialect: Postgres{}, typ: types.TypeBinary, want: "BYTEA"},
		{name: "mysql text", dialect: MySQL{}, typ: types.TypeText, want: "LONGTEXT"},
		{name: "mysql bool", dialect: MySQL{}, typ: types.TypeBool, want: "BIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.dialect.ColumnType(tt.typ, tt.length)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := SQLite{}.ColumnType(types.ColumnType(99), 0)
	assert.ErrorIs(t, err, types.ErrUnsupportedType)
}

func TestDropStatements(t *testing.T) {
	assert.Equal(t, "", SQLite{}.DropForeignKeySQL("tp_Widget", "tp_FK_Widget"))
	assert.Equal(t, `ALTER TABLE "tp_Widget" DROP CONSTRAINT "tp_FK_Widget"`, Postgres{}.DropForeignKeySQL("tp_Widget", "tp_FK_Widget"))
	assert.Equal(t, "ALTER TABLE `tp_Widget` DROP FOREIGN KEY `tp_FK_Widget`", MySQL{}.DropForeignKeySQL("tp_Widget", "tp_FK_Widget"))

	assert.Equal(t, `DROP INDEX "IDX_Color"`, SQLite{}.DropIndexSQL("Widget", "IDX_Color"))
	assert.Equal(t, "DROP INDEX `IDX_Color` ON `Widget`", MySQL{}.DropIndexSQL("Widget", "IDX_Color"))
}
