package commands

import "github.com/mesh-intelligence/pantry/pkg/types"

// Factory builds commands bound to one table prefix and collection.
type Factory struct {
	TablePrefix string
	Collection  types.Collection
}

// CreateDocument returns a command inserting doc.
func (f Factory) CreateDocument(doc *types.Document) *CreateDocumentCommand {
	return NewCreateDocumentCommand(doc, f.TablePrefix, f.Collection)
}

// UpdateDocument returns a command overwriting doc's content.
func (f Factory) UpdateDocument(doc *types.Document) *UpdateDocumentCommand {
	return NewUpdateDocumentCommand(doc, f.TablePrefix, f.Collection)
}

// DeleteDocument returns a command removing doc.
func (f Factory) DeleteDocument(doc *types.Document) *DeleteDocumentCommand {
	return NewDeleteDocumentCommand(doc, f.TablePrefix, f.Collection)
}

// CreateIndex returns a command inserting ix linked to the documents.
func (f Factory) CreateIndex(ix *types.Index, documentIDs ...int64) *CreateIndexCommand {
	return NewCreateIndexCommand(ix, documentIDs, f.TablePrefix, f.Collection)
}

// UpdateIndex returns a command updating ix and its membership.
func (f Factory) UpdateIndex(ix *types.Index, added, removed []int64) *UpdateIndexCommand {
	return NewUpdateIndexCommand(ix, added, removed, f.TablePrefix, f.Collection)
}

// DeleteMapIndex returns a command removing the map rows of the documents.
func (f Factory) DeleteMapIndex(indexName string, documentIDs ...int64) *DeleteMapIndexCommand {
	return NewDeleteMapIndexCommand(indexName, documentIDs, f.TablePrefix)
}

// DeleteReduceIndex returns a command removing ix and its bridge rows.
func (f Factory) DeleteReduceIndex(ix *types.Index) *DeleteReduceIndexCommand {
	return NewDeleteReduceIndexCommand(ix, f.TablePrefix, f.Collection)
}
