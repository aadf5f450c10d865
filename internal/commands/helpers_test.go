package commands

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/pantry/internal/dialect"
	"github.com/mesh-intelligence/pantry/internal/schema"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

const testPrefix = "tp_"

// setupDB creates a SQLite database that enforces foreign keys, with the
// document table, the Widget map index (Color) and the Score reduce index
// (Player, Total).
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "commands.db")+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	b := schema.NewBuilder(context.Background(), db, dialect.SQLite{}, schema.Options{TablePrefix: testPrefix}).
		CreateDocumentTable().
		CreateMapIndexTable("Widget", func(t *schema.CreateTableCommand) {
			t.Column("Color", types.TypeString)
		}).
		CreateReduceIndexTable("Score", func(t *schema.CreateTableCommand) {
			t.Column("Player", types.TypeString).Column("Total", types.TypeInt)
		})
	require.NoError(t, b.Err())
	return db
}

// runBatch executes cmds as one batch in a committed transaction.
func runBatch(t *testing.T, db *sql.DB, d types.Dialect, cmds ...types.Command) error {
	t.Helper()
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	batch := NewBatch()
	batch.Enqueue(cmds...)
	if err := batch.Execute(ctx, tx, d, 5*time.Second, nil); err != nil {
		require.NoError(t, tx.Rollback())
		return err
	}
	require.NoError(t, tx.Commit())
	return nil
}

// createDocuments returns commands inserting one document per id.
func createDocuments(ids ...int64) []types.Command {
	cmds := make([]types.Command, len(ids))
	for i, id := range ids {
		cmds[i] = NewCreateDocumentCommand(&types.Document{ID: id, Type: "Game"}, testPrefix, types.Collection{})
	}
	return cmds
}

// runInOrder executes cmds in the given order, bypassing the batch sort, and
// rolls back.
func runInOrder(t *testing.T, db *sql.DB, cmds ...types.Command) error {
	t.Helper()
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	for _, cmd := range cmds {
		if err := cmd.Execute(ctx, tx, dialect.SQLite{}, 5*time.Second, nil); err != nil {
			return err
		}
	}
	return nil
}

func count(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

// bridgeRows returns the (ScoreId, DocumentId) pairs ordered by DocumentId.
func bridgeRows(t *testing.T, db *sql.DB) [][2]int64 {
	t.Helper()
	rows, err := db.Query(`SELECT "ScoreId", "DocumentId" FROM "tp_Score_tp_Document" ORDER BY "DocumentId"`)
	require.NoError(t, err)
	defer rows.Close()

	var pairs [][2]int64
	for rows.Next() {
		var p [2]int64
		require.NoError(t, rows.Scan(&p[0], &p[1]))
		pairs = append(pairs, p)
	}
	require.NoError(t, rows.Err())
	return pairs
}

// lastInsertIDDialect is SQLite without RETURNING, exercising the
// LastInsertId path used by MySQL.
type lastInsertIDDialect struct {
	dialect.SQLite
}

func (lastInsertIDDialect) IdentitySelectString() string { return "" }
