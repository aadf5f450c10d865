package commands

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Batch collects commands and runs them on one transaction in ascending
// ExecutionOrder, ties broken by enqueue order. A Batch is not safe for
// concurrent use.
type Batch struct {
	id       string
	commands []types.Command
}

// NewBatch returns an empty batch with a fresh correlation id.
func NewBatch() *Batch {
	return &Batch{id: generateUUID()}
}

// generateUUID generates a UUID v7, falling back to v4.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// ID returns the correlation id attached to the batch's log entries.
func (b *Batch) ID() string { return b.id }

// Enqueue appends commands to the batch.
func (b *Batch) Enqueue(cmds ...types.Command) {
	b.commands = append(b.commands, cmds...)
}

// Len returns the number of queued commands.
func (b *Batch) Len() int { return len(b.commands) }

// Commands returns the queued commands in execution order.
func (b *Batch) Commands() []types.Command {
	sorted := slices.Clone(b.commands)
	slices.SortStableFunc(sorted, func(x, y types.Command) int {
		return cmp.Compare(x.ExecutionOrder(), y.ExecutionOrder())
	})
	return sorted
}

// Reset empties the batch.
func (b *Batch) Reset() {
	b.commands = nil
}

// Execute runs the commands in execution order on q and stops at the first
// failure. Rolling back q is the caller's responsibility.
func (b *Batch) Execute(ctx context.Context, q types.Querier, d types.Dialect, timeout time.Duration, logger *zap.Logger) error {
	logger = nopIfNil(logger).With(zap.String("batch", b.id))

	cmds := b.Commands()
	for i, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("batch %s: %w", b.id, err)
		}
		if err := cmd.Execute(ctx, q, d, timeout, logger); err != nil {
			return fmt.Errorf("batch %s command %d (%T): %w", b.id, i, cmd, err)
		}
	}
	logger.Debug("batch executed", zap.Int("commands", len(cmds)))
	return nil
}
