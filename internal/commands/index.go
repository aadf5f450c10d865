package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

var (
	_ types.Command = (*CreateIndexCommand)(nil)
	_ types.Command = (*UpdateIndexCommand)(nil)
	_ types.Command = (*DeleteMapIndexCommand)(nil)
	_ types.Command = (*DeleteReduceIndexCommand)(nil)
)

// CreateIndexCommand inserts a map or reduce index row and links it to the
// newly associated documents. The generated identity is written back to
// Index.ID so later commands of the batch observe it.
type CreateIndexCommand struct {
	Index            *types.Index
	AddedDocumentIDs []int64
	TablePrefix      string
	Collection       types.Collection
}

// NewCreateIndexCommand returns a command inserting ix. A map index must be
// given exactly one document id.
func NewCreateIndexCommand(ix *types.Index, addedDocumentIDs []int64, tablePrefix string, collection types.Collection) *CreateIndexCommand {
	return &CreateIndexCommand{
		Index:            ix,
		AddedDocumentIDs: addedDocumentIDs,
		TablePrefix:      tablePrefix,
		Collection:       collection,
	}
}

func (*CreateIndexCommand) ExecutionOrder() int { return types.OrderUpdate }

func (c *CreateIndexCommand) Execute(ctx context.Context, q types.Querier, d types.Dialect, timeout time.Duration, logger *zap.Logger) error {
	if err := c.Index.Validate(); err != nil {
		return err
	}
	logger = nopIfNil(logger).With(zap.String("index", c.Index.Name), zap.Stringer("kind", c.Index.Kind))
	table := c.TablePrefix + c.Index.Name

	switch c.Index.Kind {
	case types.MapIndex:
		if len(c.AddedDocumentIDs) != 1 {
			return fmt.Errorf("index %s has %d documents: %w", c.Index.Name, len(c.AddedDocumentIDs), types.ErrMapIndexDocuments)
		}

		id, err := insertIdentity(ctx, q, d, timeout, logger, table, c.Index)
		if err != nil {
			return fmt.Errorf("inserting map index %s: %w", c.Index.Name, err)
		}
		c.Index.ID = id

		// The document reference is set separately; binding a generated
		// identity and a foreign key in one statement is not portable.
		if err := setMapDocument(ctx, q, d, timeout, logger, table, id, c.AddedDocumentIDs[0]); err != nil {
			return fmt.Errorf("linking map index %s: %w", c.Index.Name, err)
		}

	case types.ReduceIndex:
		id, err := insertIdentity(ctx, q, d, timeout, logger, table, c.Index)
		if err != nil {
			return fmt.Errorf("inserting reduce index %s: %w", c.Index.Name, err)
		}
		c.Index.ID = id

		bridge := c.TablePrefix + c.Collection.BridgeTable(c.Index.Name, c.TablePrefix)
		if err := insertBridgeRows(ctx, q, d, timeout, logger, bridge, c.Index.Name, id, c.AddedDocumentIDs); err != nil {
			return fmt.Errorf("linking reduce index %s: %w", c.Index.Name, err)
		}
	}
	return nil
}

// UpdateIndexCommand overwrites the fields of a persisted index row with
// values the caller has already recomputed, and applies membership changes.
//
// For a reduce index, removed documents are unlinked before added documents
// are linked. For a map index, Added may hold one document id that replaces
// the row's DocumentId; Removed must be empty since a map row is deleted
// with DeleteMapIndexCommand instead.
type UpdateIndexCommand struct {
	Index              *types.Index
	AddedDocumentIDs   []int64
	RemovedDocumentIDs []int64
	TablePrefix        string
	Collection         types.Collection
}

// NewUpdateIndexCommand returns a command updating the persisted ix.
func NewUpdateIndexCommand(ix *types.Index, added, removed []int64, tablePrefix string, collection types.Collection) *UpdateIndexCommand {
	return &UpdateIndexCommand{
		Index:              ix,
		AddedDocumentIDs:   added,
		RemovedDocumentIDs: removed,
		TablePrefix:        tablePrefix,
		Collection:         collection,
	}
}

func (*UpdateIndexCommand) ExecutionOrder() int { return types.OrderUpdate }

func (c *UpdateIndexCommand) Execute(ctx context.Context, q types.Querier, d types.Dialect, timeout time.Duration, logger *zap.Logger) error {
	if err := c.Index.Validate(); err != nil {
		return err
	}
	if c.Index.ID == 0 {
		return fmt.Errorf("updating index %s: %w", c.Index.Name, types.ErrIndexNotPersisted)
	}
	if c.Index.Kind == types.MapIndex {
		if len(c.RemovedDocumentIDs) > 0 {
			return fmt.Errorf("updating index %s: %w", c.Index.Name, types.ErrMapIndexRemoval)
		}
		if len(c.AddedDocumentIDs) > 1 {
			return fmt.Errorf("index %s has %d documents: %w", c.Index.Name, len(c.AddedDocumentIDs), types.ErrMapIndexDocuments)
		}
	}

	logger = nopIfNil(logger).With(zap.String("index", c.Index.Name), zap.Stringer("kind", c.Index.Kind))
	table := c.TablePrefix + c.Index.Name

	if len(c.Index.Fields) > 0 {
		sets := make([]string, len(c.Index.Fields))
		for i, f := range c.Index.Fields {
			sets[i] = d.QuoteForColumnName(f.Name) + " = " + d.Parameter(i+1)
		}
		statement := "UPDATE " + d.QuoteForTableName(table) + " SET " + strings.Join(sets, ", ") +
			" WHERE " + d.QuoteForColumnName(types.ColumnID) + " = " + d.Parameter(len(sets)+1)
		if _, err := execute(ctx, q, timeout, logger, statement, append(c.Index.Values(), c.Index.ID)...); err != nil {
			return fmt.Errorf("updating index %s: %w", c.Index.Name, err)
		}
	}

	switch c.Index.Kind {
	case types.MapIndex:
		if len(c.AddedDocumentIDs) == 1 {
			if err := setMapDocument(ctx, q, d, timeout, logger, table, c.Index.ID, c.AddedDocumentIDs[0]); err != nil {
				return fmt.Errorf("linking map index %s: %w", c.Index.Name, err)
			}
		}

	case types.ReduceIndex:
		bridge := c.TablePrefix + c.Collection.BridgeTable(c.Index.Name, c.TablePrefix)
		if err := deleteBridgeRows(ctx, q, d, timeout, logger, bridge, c.Index.Name, c.Index.ID, c.RemovedDocumentIDs); err != nil {
			return fmt.Errorf("unlinking reduce index %s: %w", c.Index.Name, err)
		}
		if err := insertBridgeRows(ctx, q, d, timeout, logger, bridge, c.Index.Name, c.Index.ID, c.AddedDocumentIDs); err != nil {
			return fmt.Errorf("linking reduce index %s: %w", c.Index.Name, err)
		}
	}
	return nil
}

// DeleteMapIndexCommand removes the rows of a map index owned by the given
// documents. It runs before document deletions.
type DeleteMapIndexCommand struct {
	IndexName   string
	DocumentIDs []int64
	TablePrefix string
}

// NewDeleteMapIndexCommand returns a command removing the map rows of the
// documents.
func NewDeleteMapIndexCommand(indexName string, documentIDs []int64, tablePrefix string) *DeleteMapIndexCommand {
	return &DeleteMapIndexCommand{IndexName: indexName, DocumentIDs: documentIDs, TablePrefix: tablePrefix}
}

func (*DeleteMapIndexCommand) ExecutionOrder() int { return types.OrderDeleteIndex }

func (c *DeleteMapIndexCommand) Execute(ctx context.Context, q types.Querier, d types.Dialect, timeout time.Duration, logger *zap.Logger) error {
	table := c.TablePrefix + c.IndexName
	if err := checkTable(table); err != nil {
		return err
	}
	logger = nopIfNil(logger).With(zap.String("index", c.IndexName))

	for start := 0; start < len(c.DocumentIDs); start += bridgeChunkSize {
		chunk := c.DocumentIDs[start:min(start+bridgeChunkSize, len(c.DocumentIDs))]
		statement := "DELETE FROM " + d.QuoteForTableName(table) +
			" WHERE " + d.QuoteForColumnName(types.ColumnDocumentID) + " IN (" + placeholders(d, 1, len(chunk)) + ")"
		if _, err := execute(ctx, q, timeout, logger, statement, int64Args(chunk)...); err != nil {
			return fmt.Errorf("deleting map index %s: %w", c.IndexName, err)
		}
	}
	return nil
}

// DeleteReduceIndexCommand removes a reduce index row together with its
// bridge rows, bridge rows first.
type DeleteReduceIndexCommand struct {
	Index       *types.Index
	TablePrefix string
	Collection  types.Collection
}

// NewDeleteReduceIndexCommand returns a command removing the persisted ix.
func NewDeleteReduceIndexCommand(ix *types.Index, tablePrefix string, collection types.Collection) *DeleteReduceIndexCommand {
	return &DeleteReduceIndexCommand{Index: ix, TablePrefix: tablePrefix, Collection: collection}
}

func (*DeleteReduceIndexCommand) ExecutionOrder() int { return types.OrderDeleteIndex }

func (c *DeleteReduceIndexCommand) Execute(ctx context.Context, q types.Querier, d types.Dialect, timeout time.Duration, logger *zap.Logger) error {
	if err := c.Index.Validate(); err != nil {
		return err
	}
	if c.Index.ID == 0 {
		return fmt.Errorf("deleting index %s: %w", c.Index.Name, types.ErrIndexNotPersisted)
	}
	logger = nopIfNil(logger).With(zap.String("index", c.Index.Name))

	bridge := c.TablePrefix + c.Collection.BridgeTable(c.Index.Name, c.TablePrefix)
	statement := "DELETE FROM " + d.QuoteForTableName(bridge) +
		" WHERE " + d.QuoteForColumnName(types.BridgeIndexColumn(c.Index.Name)) + " = " + d.Parameter(1)
	if _, err := execute(ctx, q, timeout, logger, statement, c.Index.ID); err != nil {
		return fmt.Errorf("unlinking reduce index %s: %w", c.Index.Name, err)
	}

	statement = "DELETE FROM " + d.QuoteForTableName(c.TablePrefix+c.Index.Name) +
		" WHERE " + d.QuoteForColumnName(types.ColumnID) + " = " + d.Parameter(1)
	if _, err := execute(ctx, q, timeout, logger, statement, c.Index.ID); err != nil {
		return fmt.Errorf("deleting reduce index %s: %w", c.Index.Name, err)
	}
	return nil
}

func setMapDocument(ctx context.Context, q types.Querier, d types.Dialect, timeout time.Duration, logger *zap.Logger, table string, indexID, documentID int64) error {
	statement := "UPDATE " + d.QuoteForTableName(table) +
		" SET " + d.QuoteForColumnName(types.ColumnDocumentID) + " = " + d.Parameter(1) +
		" WHERE " + d.QuoteForColumnName(types.ColumnID) + " = " + d.Parameter(2)
	_, err := execute(ctx, q, timeout, logger, statement, documentID, indexID)
	return err
}
