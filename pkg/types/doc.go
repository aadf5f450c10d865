// Package types defines the Document and Index entities, the Dialect and
// Command contracts, configuration, and standard errors shared by the Pantry
// command pipeline and schema builder.
//
// Documents hold an opaque serialized payload. Indexes are derived rows kept
// in their own tables: a map index row belongs to exactly one document, a
// reduce index row aggregates a group of documents linked through a bridge
// table.
package types
