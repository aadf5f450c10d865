package types

import (
	"errors"
	"regexp"
	"time"
)

// Config holds the connection and naming parameters used by the store.
type Config struct {
	// Driver selects both the database/sql driver and the SQL dialect.
	// Only the SQLite driver is linked in; callers using postgres or mysql
	// must blank-import a driver registered under that name.
	Driver string `json:"driver" yaml:"driver"`

	// DataSource is passed to sql.Open. For SQLite it may be left empty,
	// in which case the database lives at DataDir/pantry.db.
	DataSource string `json:"data_source" yaml:"data_source"`
	DataDir    string `json:"data_dir" yaml:"data_dir"`

	// TablePrefix is prepended to every table and foreign key name.
	TablePrefix string `json:"table_prefix" yaml:"table_prefix"`

	// CommandTimeout bounds each statement. Zero means no bound.
	CommandTimeout time.Duration `json:"command_timeout" yaml:"command_timeout"`

	// Collection names the document collection; empty is the default one.
	Collection string `json:"collection" yaml:"collection"`
}

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config validation errors.
var (
	ErrDriverEmpty        = errors.New("driver must not be empty")
	ErrDriverUnknown      = errors.New("unknown driver")
	ErrInvalidTablePrefix = errors.New("table prefix may only contain letters, digits and underscores")
	ErrInvalidTimeout     = errors.New("command timeout must not be negative")
	ErrInvalidCollection  = errors.New("collection may only contain letters, digits and underscores")
	ErrDataSourceRequired = errors.New("data source is required for this driver")
)

// knownDrivers lists the drivers that Validate accepts.
var knownDrivers = map[string]bool{
	DriverSQLite:   true,
	DriverPostgres: true,
	DriverMySQL:    true,
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Driver == "" {
		return ErrDriverEmpty
	}
	if !knownDrivers[c.Driver] {
		return ErrDriverUnknown
	}
	if c.Driver != DriverSQLite && c.DataSource == "" {
		return ErrDataSourceRequired
	}
	if !namePattern.MatchString(c.TablePrefix) {
		return ErrInvalidTablePrefix
	}
	if !namePattern.MatchString(c.Collection) {
		return ErrInvalidCollection
	}
	if c.CommandTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// CollectionContext returns the collection the config points at.
func (c Config) CollectionContext() Collection {
	return Collection{Name: c.Collection}
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)
