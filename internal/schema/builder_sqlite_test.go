package schema

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/pantry/internal/dialect"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "schema.db")+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestSQLiteCreateTableIgnoresExisting(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	opts := Options{TablePrefix: "tp_"}

	b := NewBuilder(ctx, db, dialect.SQLite{}, opts).CreateDocumentTable()
	require.NoError(t, b.Err())

	_, err := db.Exec(`INSERT INTO "tp_Document" ("Id", "Type", "Content") VALUES (1, 'T', 'c')`)
	require.NoError(t, err)

	opts.ErrorPolicy = IgnoreErrors
	b = NewBuilder(ctx, db, dialect.SQLite{}, opts).
		CreateTable(types.DocumentTable, func(t *CreateTableCommand) {
			t.Column("Id", types.TypeBigInt, PrimaryKey())
		})
	require.NoError(t, b.Err())
	assert.Len(t, b.Suppressed(), 1)

	var content string
	require.NoError(t, db.QueryRow(`SELECT "Content" FROM "tp_Document" WHERE "Id" = 1`).Scan(&content))
	assert.Equal(t, "c", content)

	opts.ErrorPolicy = ThrowOnError
	b = NewBuilder(ctx, db, dialect.SQLite{}, opts).CreateDocumentTable()
	assert.Error(t, b.Err())
}

func TestSQLiteIndexTablesLifecycle(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	b := NewBuilder(ctx, tx, dialect.SQLite{}, Options{TablePrefix: "tp_"}).
		CreateDocumentTable().
		CreateMapIndexTable("Widget", func(t *CreateTableCommand) {
			t.Column("Color", types.TypeString, WithLength(32))
		}).
		CreateReduceIndexTable("Score", func(t *CreateTableCommand) {
			t.Column("Player", types.TypeString).Column("Total", types.TypeInt, WithDefault(0))
		})
	require.NoError(t, b.Err())
	require.NoError(t, tx.Commit())

	assert.Equal(t, []string{"tp_Document", "tp_Score", "tp_Score_tp_Document", "tp_Widget"}, tableNames(t, db))

	b = NewBuilder(ctx, db, dialect.SQLite{}, Options{TablePrefix: "tp_"}).
		AlterTable("Widget", func(t *AlterTableCommand) {
			t.AddColumn("Size", types.TypeInt).CreateIndex("IDX_Widget_Color", "Color")
		}).
		DropMapIndexTable("Widget").
		DropReduceIndexTable("Score")
	require.NoError(t, b.Err())

	assert.Equal(t, []string{"tp_Document"}, tableNames(t, db))

	b = NewBuilder(ctx, db, dialect.SQLite{}, Options{TablePrefix: "tp_"}).DropDocumentTable()
	require.NoError(t, b.Err())
	assert.Empty(t, tableNames(t, db))
}

// foreignKeys returns "column->table.column" for each foreign key of table.
func foreignKeys(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query(`SELECT "from", "table", "to" FROM pragma_foreign_key_list(?) ORDER BY "from"`, table)
	require.NoError(t, err)
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var from, dest, to string
		require.NoError(t, rows.Scan(&from, &dest, &to))
		keys = append(keys, from+"->"+dest+"."+to)
	}
	require.NoError(t, rows.Err())
	return keys
}

func TestSQLiteIndexTablesEnforceForeignKeys(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	b := NewBuilder(ctx, db, dialect.SQLite{}, Options{TablePrefix: "tp_"}).
		CreateDocumentTable().
		CreateMapIndexTable("Widget", nil).
		CreateReduceIndexTable("Score", nil)
	require.NoError(t, b.Err())

	assert.Equal(t, []string{"DocumentId->tp_Document.Id"}, foreignKeys(t, db, "tp_Widget"))
	assert.Equal(t, []string{"DocumentId->tp_Document.Id", "ScoreId->tp_Score.Id"}, foreignKeys(t, db, "tp_Score_tp_Document"))

	_, err := db.Exec(`INSERT INTO "tp_Score" DEFAULT VALUES`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO "tp_Score_tp_Document" ("ScoreId", "DocumentId") VALUES (1, 7)`)
	assert.ErrorContains(t, err, "FOREIGN KEY constraint failed")
	_, err = db.Exec(`INSERT INTO "tp_Widget" ("DocumentId") VALUES (7)`)
	assert.ErrorContains(t, err, "FOREIGN KEY constraint failed")
}
