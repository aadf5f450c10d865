// Package commands implements the units of work that keep documents and their
// index tables in sync inside one transaction, and the Batch that orders and
// runs them.
package commands

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// bridgeChunkSize bounds the rows of one multi-row bridge statement so the
// bind parameter count stays under every dialect's limit.
const bridgeChunkSize = 250

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return ctx, func() {}
}

// execute traces and runs one statement under the timeout.
func execute(ctx context.Context, q types.Querier, timeout time.Duration, logger *zap.Logger, statement string, args ...any) (sql.Result, error) {
	logger.Debug("executing statement", zap.String("sql", statement))
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	return q.ExecContext(ctx, statement, args...)
}

// insertIdentity inserts the index fields into table and returns the
// generated Id.
func insertIdentity(ctx context.Context, q types.Querier, d types.Dialect, timeout time.Duration, logger *zap.Logger, table string, ix *types.Index) (int64, error) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(d.QuoteForTableName(table))
	if len(ix.Fields) == 0 {
		sb.WriteString(" ")
		sb.WriteString(d.DefaultValuesInsert())
	} else {
		sb.WriteString(" (")
		sb.WriteString(quoteColumns(d, ix.Columns()))
		sb.WriteString(") VALUES (")
		sb.WriteString(placeholders(d, 1, len(ix.Fields)))
		sb.WriteString(")")
	}

	selectIdentity := d.IdentitySelectString()
	if selectIdentity == "" {
		res, err := execute(ctx, q, timeout, logger, sb.String(), ix.Values()...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	sb.WriteString(" ")
	sb.WriteString(selectIdentity)
	sb.WriteString(" ")
	sb.WriteString(d.QuoteForColumnName(types.ColumnID))
	statement := sb.String()

	logger.Debug("executing statement", zap.String("sql", statement))
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	var id int64
	if err := q.QueryRowContext(ctx, statement, ix.Values()...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// insertBridgeRows links the index row to each document, in chunks.
func insertBridgeRows(ctx context.Context, q types.Querier, d types.Dialect, timeout time.Duration, logger *zap.Logger, bridge, indexName string, indexID int64, documentIDs []int64) error {
	head := "INSERT INTO " + d.QuoteForTableName(bridge) + " (" +
		quoteColumns(d, []string{types.BridgeIndexColumn(indexName), types.ColumnDocumentID}) + ") VALUES "

	for start := 0; start < len(documentIDs); start += bridgeChunkSize {
		chunk := documentIDs[start:min(start+bridgeChunkSize, len(documentIDs))]

		rows := make([]string, len(chunk))
		args := make([]any, 0, 2*len(chunk))
		for i, documentID := range chunk {
			rows[i] = "(" + placeholders(d, 2*i+1, 2) + ")"
			args = append(args, indexID, documentID)
		}
		if _, err := execute(ctx, q, timeout, logger, head+strings.Join(rows, ", "), args...); err != nil {
			return err
		}
	}
	return nil
}

// deleteBridgeRows unlinks the index row from each document, in chunks.
func deleteBridgeRows(ctx context.Context, q types.Querier, d types.Dialect, timeout time.Duration, logger *zap.Logger, bridge, indexName string, indexID int64, documentIDs []int64) error {
	for start := 0; start < len(documentIDs); start += bridgeChunkSize {
		chunk := documentIDs[start:min(start+bridgeChunkSize, len(documentIDs))]

		statement := "DELETE FROM " + d.QuoteForTableName(bridge) +
			" WHERE " + d.QuoteForColumnName(types.BridgeIndexColumn(indexName)) + " = " + d.Parameter(1) +
			" AND " + d.QuoteForColumnName(types.ColumnDocumentID) + " IN (" + placeholders(d, 2, len(chunk)) + ")"
		if _, err := execute(ctx, q, timeout, logger, statement, append([]any{indexID}, int64Args(chunk)...)...); err != nil {
			return err
		}
	}
	return nil
}

func quoteColumns(d types.Dialect, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteForColumnName(c)
	}
	return strings.Join(quoted, ", ")
}

// placeholders returns n comma-separated parameters starting at position first.
func placeholders(d types.Dialect, first, n int) string {
	params := make([]string, n)
	for i := range params {
		params[i] = d.Parameter(first + i)
	}
	return strings.Join(params, ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func checkTable(name string) error {
	if !types.ValidIdentifier(name) {
		return fmt.Errorf("table %q: %w", name, types.ErrInvalidIdentifier)
	}
	return nil
}
