package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Interpreter renders schema commands into dialect-specific SQL statements.
type Interpreter struct {
	dialect types.Dialect
}

// NewInterpreter returns an interpreter for the dialect.
func NewInterpreter(d types.Dialect) *Interpreter {
	return &Interpreter{dialect: d}
}

// CreateSQL renders cmd into zero or more statements to run in order.
// A command the dialect cannot express as DDL, such as adding a foreign key
// on SQLite, renders to no statements.
func (in *Interpreter) CreateSQL(cmd Command) ([]string, error) {
	switch c := cmd.(type) {
	case *CreateTableCommand:
		return in.createTable(c)
	case *AlterTableCommand:
		return in.alterTable(c)
	case *DropTableCommand:
		if err := checkIdentifiers(c.Name); err != nil {
			return nil, err
		}
		return []string{"DROP TABLE " + in.dialect.QuoteForTableName(c.Name) + in.dialect.CascadeConstraintsString()}, nil
	case *CreateForeignKeyCommand:
		return in.createForeignKey(c)
	case *DropForeignKeyCommand:
		if err := checkIdentifiers(c.SrcTable, c.Name); err != nil {
			return nil, err
		}
		if !in.dialect.SupportsAlterForeignKey() {
			return nil, nil
		}
		return []string{in.dialect.DropForeignKeySQL(c.SrcTable, c.Name)}, nil
	default:
		return nil, fmt.Errorf("%T: %w", cmd, types.ErrUnsupportedCommand)
	}
}

func (in *Interpreter) createTable(c *CreateTableCommand) ([]string, error) {
	if err := checkIdentifiers(c.Name); err != nil {
		return nil, err
	}
	if len(c.Columns) == 0 {
		return nil, fmt.Errorf("table %s has no columns: %w", c.Name, types.ErrUnsupportedCommand)
	}

	var defs, keys []string
	for _, col := range c.Columns {
		def, err := in.columnDefinition(col)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", c.Name, err)
		}
		defs = append(defs, def)
		if col.PrimaryKey && !col.Identity {
			keys = append(keys, in.dialect.QuoteForColumnName(col.Name))
		}
	}
	if len(keys) > 0 {
		defs = append(defs, "PRIMARY KEY ("+strings.Join(keys, ", ")+")")
	}
	for _, fk := range c.ForeignKeys {
		def, err := in.foreignKeyClause(fk.Name, fk.Columns, fk.DestTable, fk.DestColumns)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", c.Name, err)
		}
		defs = append(defs, def)
	}

	return []string{"CREATE TABLE " + in.dialect.QuoteForTableName(c.Name) + " (" + strings.Join(defs, ", ") + ")"}, nil
}

func (in *Interpreter) columnDefinition(col *Column) (string, error) {
	if err := checkIdentifiers(col.Name); err != nil {
		return "", err
	}
	name := in.dialect.QuoteForColumnName(col.Name)
	if col.Identity {
		return name + " " + in.dialect.IdentityColumnString(), nil
	}

	typ, err := in.dialect.ColumnType(col.Type, col.Length)
	if err != nil {
		return "", fmt.Errorf("column %s: %w", col.Name, err)
	}

	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString(" ")
	sb.WriteString(typ)
	if col.NotNull {
		sb.WriteString(" NOT NULL")
	}
	if col.Unique {
		sb.WriteString(" UNIQUE")
	}
	if col.HasDefault {
		lit, err := literal(col.Default)
		if err != nil {
			return "", fmt.Errorf("column %s: %w", col.Name, err)
		}
		sb.WriteString(" DEFAULT ")
		sb.WriteString(lit)
	}
	return sb.String(), nil
}

func (in *Interpreter) alterTable(c *AlterTableCommand) ([]string, error) {
	if err := checkIdentifiers(c.Name); err != nil {
		return nil, err
	}
	table := in.dialect.QuoteForTableName(c.Name)

	statements := make([]string, 0, len(c.Actions))
	for _, a := range c.Actions {
		switch a.kind {
		case alterAddColumn:
			if a.column.Identity {
				return nil, fmt.Errorf("add identity column %s to %s: %w", a.column.Name, c.Name, types.ErrUnsupportedCommand)
			}
			def, err := in.columnDefinition(a.column)
			if err != nil {
				return nil, fmt.Errorf("table %s: %w", c.Name, err)
			}
			statements = append(statements, "ALTER TABLE "+table+" ADD COLUMN "+def)
		case alterDropColumn:
			if err := checkIdentifiers(a.name); err != nil {
				return nil, err
			}
			statements = append(statements, "ALTER TABLE "+table+" DROP COLUMN "+in.dialect.QuoteForColumnName(a.name))
		case alterRenameColumn:
			if err := checkIdentifiers(a.name, a.newName); err != nil {
				return nil, err
			}
			statements = append(statements, "ALTER TABLE "+table+" RENAME COLUMN "+
				in.dialect.QuoteForColumnName(a.name)+" TO "+in.dialect.QuoteForColumnName(a.newName))
		case alterCreateIndex:
			if err := checkIdentifiers(append([]string{a.name}, a.columns...)...); err != nil {
				return nil, err
			}
			if len(a.columns) == 0 {
				return nil, fmt.Errorf("index %s has no columns: %w", a.name, types.ErrUnsupportedCommand)
			}
			statements = append(statements, "CREATE INDEX "+in.dialect.QuoteForTableName(a.name)+" ON "+table+
				" ("+in.quoteColumns(a.columns)+")")
		case alterDropIndex:
			if err := checkIdentifiers(a.name); err != nil {
				return nil, err
			}
			statements = append(statements, in.dialect.DropIndexSQL(c.Name, a.name))
		}
	}
	return statements, nil
}

func (in *Interpreter) createForeignKey(c *CreateForeignKeyCommand) ([]string, error) {
	if err := checkIdentifiers(c.SrcTable); err != nil {
		return nil, err
	}
	clause, err := in.foreignKeyClause(c.Name, c.SrcColumns, c.DestTable, c.DestColumns)
	if err != nil {
		return nil, err
	}
	if !in.dialect.SupportsAlterForeignKey() {
		return nil, nil
	}
	return []string{"ALTER TABLE " + in.dialect.QuoteForTableName(c.SrcTable) + " ADD " + clause}, nil
}

// foreignKeyClause renders CONSTRAINT name FOREIGN KEY (...) REFERENCES ...,
// shared by ALTER TABLE and inline table definitions.
func (in *Interpreter) foreignKeyClause(name string, columns []string, destTable string, destColumns []string) (string, error) {
	names := append([]string{name, destTable}, columns...)
	if err := checkIdentifiers(append(names, destColumns...)...); err != nil {
		return "", err
	}
	if len(columns) == 0 || len(columns) != len(destColumns) {
		return "", fmt.Errorf("foreign key %s column mismatch: %w", name, types.ErrUnsupportedCommand)
	}
	return "CONSTRAINT " + in.dialect.QuoteForTableName(name) +
		" FOREIGN KEY (" + in.quoteColumns(columns) + ")" +
		" REFERENCES " + in.dialect.QuoteForTableName(destTable) +
		" (" + in.quoteColumns(destColumns) + ")", nil
}

func (in *Interpreter) quoteColumns(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = in.dialect.QuoteForColumnName(c)
	}
	return strings.Join(quoted, ", ")
}

func checkIdentifiers(names ...string) error {
	for _, n := range names {
		if !types.ValidIdentifier(n) {
			return fmt.Errorf("%q: %w", n, types.ErrInvalidIdentifier)
		}
	}
	return nil
}

// literal renders a column default. DDL cannot bind parameters, so strings
// are quoted with embedded quotes doubled.
func literal(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'", nil
	case bool:
		if x {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(x), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("default of type %T: %w", v, types.ErrUnsupportedType)
	}
}
