package commands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Compile-time interface checks.
var (
	_ types.Command = (*CreateDocumentCommand)(nil)
	_ types.Command = (*UpdateDocumentCommand)(nil)
	_ types.Command = (*DeleteDocumentCommand)(nil)
)

// documentCommand holds what every document command needs to address the
// document table.
type documentCommand struct {
	Document    *types.Document
	TablePrefix string
	Collection  types.Collection
}

func (c documentCommand) table() string {
	return c.TablePrefix + c.Collection.DocumentTable()
}

// CreateDocumentCommand inserts a document under its caller-assigned Id.
type CreateDocumentCommand struct {
	documentCommand
}

// NewCreateDocumentCommand returns a command inserting doc.
func NewCreateDocumentCommand(doc *types.Document, tablePrefix string, collection types.Collection) *CreateDocumentCommand {
	return &CreateDocumentCommand{documentCommand{Document: doc, TablePrefix: tablePrefix, Collection: collection}}
}

func (*CreateDocumentCommand) ExecutionOrder() int { return types.OrderCreateDocument }

func (c *CreateDocumentCommand) Execute(ctx context.Context, q types.Querier, d types.Dialect, timeout time.Duration, logger *zap.Logger) error {
	table := c.table()
	if err := checkTable(table); err != nil {
		return err
	}
	statement := "INSERT INTO " + d.QuoteForTableName(table) +
		" (" + quoteColumns(d, []string{types.ColumnID, types.ColumnTypeName, types.ColumnContent}) + ")" +
		" VALUES (" + placeholders(d, 1, 3) + ")"

	_, err := execute(ctx, q, timeout, nopIfNil(logger), statement, c.Document.ID, c.Document.Type, c.Document.Content)
	if err != nil {
		return fmt.Errorf("inserting document %d: %w", c.Document.ID, err)
	}
	return nil
}

// UpdateDocumentCommand overwrites the content of a document. It performs no
// concurrency check.
type UpdateDocumentCommand struct {
	documentCommand
}

// NewUpdateDocumentCommand returns a command overwriting doc's content.
func NewUpdateDocumentCommand(doc *types.Document, tablePrefix string, collection types.Collection) *UpdateDocumentCommand {
	return &UpdateDocumentCommand{documentCommand{Document: doc, TablePrefix: tablePrefix, Collection: collection}}
}

func (*UpdateDocumentCommand) ExecutionOrder() int { return types.OrderUpdate }

func (c *UpdateDocumentCommand) Execute(ctx context.Context, q types.Querier, d types.Dialect, timeout time.Duration, logger *zap.Logger) error {
	table := c.table()
	if err := checkTable(table); err != nil {
		return err
	}
	statement := "UPDATE " + d.QuoteForTableName(table) +
		" SET " + d.QuoteForColumnName(types.ColumnContent) + " = " + d.Parameter(1) +
		" WHERE " + d.QuoteForColumnName(types.ColumnID) + " = " + d.Parameter(2)

	_, err := execute(ctx, q, timeout, nopIfNil(logger), statement, c.Document.Content, c.Document.ID)
	if err != nil {
		return fmt.Errorf("updating document %d: %w", c.Document.ID, err)
	}
	return nil
}

// DeleteDocumentCommand removes a document. It runs after the index deletions
// of the same batch.
type DeleteDocumentCommand struct {
	documentCommand
}

// NewDeleteDocumentCommand returns a command removing doc.
func NewDeleteDocumentCommand(doc *types.Document, tablePrefix string, collection types.Collection) *DeleteDocumentCommand {
	return &DeleteDocumentCommand{documentCommand{Document: doc, TablePrefix: tablePrefix, Collection: collection}}
}

func (*DeleteDocumentCommand) ExecutionOrder() int { return types.OrderDeleteDocument }

func (c *DeleteDocumentCommand) Execute(ctx context.Context, q types.Querier, d types.Dialect, timeout time.Duration, logger *zap.Logger) error {
	table := c.table()
	if err := checkTable(table); err != nil {
		return err
	}
	statement := "DELETE FROM " + d.QuoteForTableName(table) +
		" WHERE " + d.QuoteForColumnName(types.ColumnID) + " = " + d.Parameter(1)

	if _, err := execute(ctx, q, timeout, nopIfNil(logger), statement, c.Document.ID); err != nil {
		return fmt.Errorf("deleting document %d: %w", c.Document.ID, err)
	}
	return nil
}
