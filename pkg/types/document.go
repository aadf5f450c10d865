package types

// Document is the stored form of one logical object: a type discriminator and
// an opaque serialized payload. ID is allocated by the caller before the row
// exists so that index commands in the same batch can reference it.
type Document struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Fixed column names of the document table.
const (
	ColumnID         = "Id"
	ColumnTypeName   = "Type"
	ColumnContent    = "Content"
	ColumnDocumentID = "DocumentId"
)
