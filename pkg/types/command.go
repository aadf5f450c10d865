package types

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// Execution orders of the standard commands. Lower values run first; a
// document row is inserted before any index row referencing it and removed
// after every index row referencing it.
const (
	OrderCreateDocument = 0
	OrderDeleteIndex    = 1
	OrderUpdate         = 2
	OrderDeleteDocument = 4
)

// Querier is the connection or transaction a command runs on. *sql.Tx,
// *sql.DB and *sql.Conn satisfy it.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Command is one unit of work of a batch. Commands of a batch share a single
// transaction and run sequentially by ascending ExecutionOrder.
type Command interface {
	// ExecutionOrder returns the priority of the command.
	ExecutionOrder() int

	// Execute runs the command's statements on q, each bounded by timeout,
	// tracing every rendered statement to logger.
	Execute(ctx context.Context, q Querier, d Dialect, timeout time.Duration, logger *zap.Logger) error
}
