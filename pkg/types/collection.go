package types

// DocumentTable is the base name of the table holding documents.
const DocumentTable = "Document"

// Collection is the explicit naming context for one logical collection of
// documents. The zero value is the default collection.
type Collection struct {
	Name string
}

// DocumentTable returns the unprefixed document table name of the collection.
func (c Collection) DocumentTable() string {
	if c.Name == "" {
		return DocumentTable
	}
	return c.Name + "_" + DocumentTable
}

// BridgeTable returns the unprefixed name of the table linking rows of the
// reduce index to documents. The document part carries the table prefix, so
// with prefix "tp_" the physical bridge of "Score" is "tp_Score_tp_Document".
func (c Collection) BridgeTable(indexName, prefix string) string {
	return indexName + "_" + prefix + c.DocumentTable()
}

// BridgeIndexColumn returns the bridge column referencing the index row.
func BridgeIndexColumn(indexName string) string {
	return indexName + ColumnID
}
