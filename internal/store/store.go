// Package store binds the command pipeline and the schema builder to a
// database/sql connection. It opens the database named by the Config,
// scopes every batch and migration to one transaction, and rolls back on
// failure.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/pantry/internal/commands"
	"github.com/mesh-intelligence/pantry/internal/dialect"
	"github.com/mesh-intelligence/pantry/internal/schema"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// SQLiteFileName is the database file created under DataDir when no
// DataSource is configured.
const SQLiteFileName = "pantry.db"

// Store owns the connection pool and the naming context of one collection.
type Store struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	dialect  types.Dialect
	logger   *zap.Logger
}

// NewStore creates a detached store; call Attach with a Config to open it.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logger: logger}
}

// Attach validates config, opens the database and ensures the document table
// exists. Returns ErrAlreadyAttached if already attached.
func (s *Store) Attach(ctx context.Context, config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	d, err := dialect.For(config.Driver)
	if err != nil {
		return err
	}

	dsn, err := dataSource(config)
	if err != nil {
		return err
	}

	if !slices.Contains(sql.Drivers(), config.Driver) {
		return fmt.Errorf("%s is not registered with database/sql, import its driver: %w", config.Driver, types.ErrDriverUnknown)
	}

	db, err := sql.Open(config.Driver, dsn)
	if err != nil {
		return fmt.Errorf("opening %s database: %w", config.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("connecting to %s database: %w", config.Driver, err)
	}

	s.db = db
	s.dialect = d
	s.config = config

	// Creating an existing document table fails; that failure is ignored.
	if err := s.migrateLocked(ctx, schema.IgnoreErrors, func(b *schema.Builder) {
		b.CreateDocumentTable()
	}); err != nil {
		db.Close()
		s.db = nil
		return fmt.Errorf("ensuring document table: %w", err)
	}

	s.attached = true
	s.logger.Info("store attached",
		zap.String("driver", config.Driver),
		zap.String("table_prefix", config.TablePrefix),
		zap.String("document_table", config.TablePrefix+config.CollectionContext().DocumentTable()))
	return nil
}

// Detach closes the database. Detach is idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
		s.db = nil
	}
	s.attached = false
	return nil
}

// Dialect returns the dialect of the attached database.
func (s *Store) Dialect() types.Dialect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dialect
}

// DB returns the underlying pool, or nil when detached.
func (s *Store) DB() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// Commands returns a factory of commands bound to the store's prefix and
// collection.
func (s *Store) Commands() commands.Factory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return commands.Factory{TablePrefix: s.config.TablePrefix, Collection: s.config.CollectionContext()}
}

// Commit runs cmds as one batch in a single transaction. The transaction is
// rolled back if any command fails.
func (s *Store) Commit(ctx context.Context, cmds ...types.Command) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return types.ErrStoreDetached
	}

	batch := commands.NewBatch()
	batch.Enqueue(cmds...)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := batch.Execute(ctx, tx, s.dialect, s.config.CommandTimeout, s.logger); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch %s: %w", batch.ID(), err)
	}
	return nil
}

// Migrate runs fn against a schema builder bound to one transaction. Under
// ThrowOnError the first failure rolls the transaction back and is returned.
func (s *Store) Migrate(ctx context.Context, policy schema.ErrorPolicy, fn func(*schema.Builder)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return types.ErrStoreDetached
	}
	return s.migrateLocked(ctx, policy, fn)
}

// migrateLocked expects s.mu to be held and s.db to be open.
func (s *Store) migrateLocked(ctx context.Context, policy schema.ErrorPolicy, fn func(*schema.Builder)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	b := schema.NewBuilder(ctx, tx, s.dialect, schema.Options{
		TablePrefix: s.config.TablePrefix,
		Collection:  s.config.CollectionContext(),
		Timeout:     s.config.CommandTimeout,
		Logger:      s.logger,
		ErrorPolicy: policy,
	})
	fn(b)
	if err := b.Err(); err != nil {
		return err
	}
	for _, err := range b.Suppressed() {
		s.logger.Debug("ignored schema error", zap.Error(err))
	}
	return tx.Commit()
}

// sqlitePragmas are applied to every SQLite connection.
const sqlitePragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// dataSource returns the DSN for config. SQLite without a DataSource gets a
// file under DataDir. Every SQLite DSN enforces foreign keys.
func dataSource(config types.Config) (string, error) {
	if config.DataSource != "" {
		if config.Driver != types.DriverSQLite || strings.Contains(config.DataSource, "foreign_keys") {
			return config.DataSource, nil
		}
		sep := "?"
		if strings.Contains(config.DataSource, "?") {
			sep = "&"
		}
		return config.DataSource + sep + "_pragma=foreign_keys(1)", nil
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dataDir, SQLiteFileName) + "?" + sqlitePragmas, nil
}
