// Package dialect implements the SQL dialects Pantry renders statements for.
// Each dialect captures identifier quoting, bind placeholders, identity
// retrieval, constraint cascading and the native column types of one RDBMS.
package dialect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// registry maps driver names to dialect constructors.
var registry = map[string]func() types.Dialect{
	types.DriverSQLite:   func() types.Dialect { return SQLite{} },
	types.DriverPostgres: func() types.Dialect { return Postgres{} },
	"pgx":                func() types.Dialect { return Postgres{} },
	types.DriverMySQL:    func() types.Dialect { return MySQL{} },
}

// For returns the dialect serving the database/sql driver name.
// Returns ErrDialectUnknown for unregistered drivers.
func For(driver string) (types.Dialect, error) {
	newDialect, ok := registry[strings.ToLower(driver)]
	if !ok {
		return nil, fmt.Errorf("driver %q: %w", driver, types.ErrDialectUnknown)
	}
	return newDialect(), nil
}

// Names lists the registered driver names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// quote wraps name in the open/close characters, doubling any embedded
// closing character.
func quote(name, open, close string) string {
	return open + strings.ReplaceAll(name, close, close+close) + close
}

// typeNames is the per-dialect native name of each portable column type.
// TypeString is handled separately because it carries a length.
type typeNames map[types.ColumnType]string

func (tn typeNames) lookup(dialect string, t types.ColumnType, length int, varchar string) (string, error) {
	if t == types.TypeString {
		if length <= 0 {
			length = types.DefaultStringLength
		}
		return fmt.Sprintf("%s(%d)", varchar, length), nil
	}
	name, ok := tn[t]
	if !ok {
		return "", fmt.Errorf("%s type %d: %w", dialect, int(t), types.ErrUnsupportedType)
	}
	return name, nil
}
