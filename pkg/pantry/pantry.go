// Package pantry is the public entry point of the document store. It opens a
// Store for a Config and re-exports the types callers need to build
// documents, indexes and migrations, while keeping implementation details
// internal.
package pantry

import (
	"context"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/internal/commands"
	"github.com/mesh-intelligence/pantry/internal/schema"
	"github.com/mesh-intelligence/pantry/internal/store"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Version is the release version of the module.
const Version = "0.1.0"

// Re-exported types.
type (
	Store       = store.Store
	Factory     = commands.Factory
	Config      = types.Config
	Document    = types.Document
	Index       = types.Index
	Field       = types.Field
	Command     = types.Command
	Builder     = schema.Builder
	ErrorPolicy = schema.ErrorPolicy
)

// Schema error policies.
const (
	ThrowOnError = schema.ThrowOnError
	IgnoreErrors = schema.IgnoreErrors
)

// Open creates a store and attaches it to the database named by config. The
// caller must Detach the returned store.
//
// Example:
//
//	s, err := pantry.Open(ctx, pantry.Config{
//	    Driver:      types.DriverSQLite,
//	    DataDir:     ".pantry-db",
//	    TablePrefix: "tp_",
//	}, logger)
//	defer s.Detach()
func Open(ctx context.Context, config Config, logger *zap.Logger) (*Store, error) {
	s := store.NewStore(logger)
	if err := s.Attach(ctx, config); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMapIndex returns a map index row with the given fields.
func NewMapIndex(name string, fields ...Field) *Index {
	return types.NewMapIndex(name, fields...)
}

// NewReduceIndex returns a reduce index row with the given fields.
func NewReduceIndex(name string, fields ...Field) *Index {
	return types.NewReduceIndex(name, fields...)
}
