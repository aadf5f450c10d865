package schema

import "github.com/mesh-intelligence/pantry/pkg/types"

// Command is an abstract DDL command. The Interpreter renders it to SQL.
// The set of commands is closed.
type Command interface {
	isSchemaCommand()
}

// Column describes one column of a table definition.
type Column struct {
	Name       string
	Type       types.ColumnType
	Length     int
	PrimaryKey bool
	Identity   bool
	NotNull    bool
	Unique     bool
	Default    any
	HasDefault bool
}

// ColumnOption configures a Column.
type ColumnOption func(*Column)

// PrimaryKey marks the column as part of the primary key.
func PrimaryKey() ColumnOption { return func(c *Column) { c.PrimaryKey = true } }

// Identity marks the column as the auto-generated primary key.
func Identity() ColumnOption { return func(c *Column) { c.Identity = true } }

// NotNull rejects NULL values.
func NotNull() ColumnOption { return func(c *Column) { c.NotNull = true } }

// Unique adds a unique constraint on the column.
func Unique() ColumnOption { return func(c *Column) { c.Unique = true } }

// WithLength sets the length of a TypeString column.
func WithLength(n int) ColumnOption { return func(c *Column) { c.Length = n } }

// WithDefault sets the column default. Supported values are strings,
// booleans, integers and floats.
func WithDefault(v any) ColumnOption {
	return func(c *Column) {
		c.Default = v
		c.HasDefault = true
	}
}

func newColumn(name string, t types.ColumnType, opts []ColumnOption) *Column {
	c := &Column{Name: name, Type: t}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ForeignKey is a foreign key declared inside a table definition, for
// dialects that cannot add one to an existing table.
type ForeignKey struct {
	Name        string
	Columns     []string
	DestTable   string
	DestColumns []string
}

// CreateTableCommand creates a table.
type CreateTableCommand struct {
	Name        string
	Columns     []*Column
	ForeignKeys []*ForeignKey
}

// NewCreateTableCommand returns an empty table definition.
func NewCreateTableCommand(name string) *CreateTableCommand {
	return &CreateTableCommand{Name: name}
}

// Column appends a column and returns the command for chaining.
func (c *CreateTableCommand) Column(name string, t types.ColumnType, opts ...ColumnOption) *CreateTableCommand {
	c.Columns = append(c.Columns, newColumn(name, t, opts))
	return c
}

// ForeignKey appends an inline foreign key and returns the command for
// chaining. Names are used as given.
func (c *CreateTableCommand) ForeignKey(name string, columns []string, destTable string, destColumns []string) *CreateTableCommand {
	c.ForeignKeys = append(c.ForeignKeys, &ForeignKey{
		Name:        name,
		Columns:     columns,
		DestTable:   destTable,
		DestColumns: destColumns,
	})
	return c
}

func (*CreateTableCommand) isSchemaCommand() {}

// alterKind enumerates the actions of an AlterTableCommand.
type alterKind int

const (
	alterAddColumn alterKind = iota + 1
	alterDropColumn
	alterRenameColumn
	alterCreateIndex
	alterDropIndex
)

// AlterAction is one change of an AlterTableCommand.
type AlterAction struct {
	kind    alterKind
	column  *Column
	name    string
	newName string
	columns []string
}

// AlterTableCommand changes an existing table. Index names receive the
// table prefix the command was created with.
type AlterTableCommand struct {
	Name    string
	Actions []AlterAction
	prefix  string
}

// NewAlterTableCommand returns an empty alteration of the table.
func NewAlterTableCommand(name, tablePrefix string) *AlterTableCommand {
	return &AlterTableCommand{Name: name, prefix: tablePrefix}
}

// AddColumn adds a column.
func (c *AlterTableCommand) AddColumn(name string, t types.ColumnType, opts ...ColumnOption) *AlterTableCommand {
	c.Actions = append(c.Actions, AlterAction{kind: alterAddColumn, column: newColumn(name, t, opts)})
	return c
}

// DropColumn removes a column.
func (c *AlterTableCommand) DropColumn(name string) *AlterTableCommand {
	c.Actions = append(c.Actions, AlterAction{kind: alterDropColumn, name: name})
	return c
}

// RenameColumn renames a column.
func (c *AlterTableCommand) RenameColumn(name, newName string) *AlterTableCommand {
	c.Actions = append(c.Actions, AlterAction{kind: alterRenameColumn, name: name, newName: newName})
	return c
}

// CreateIndex adds a secondary index over the columns.
func (c *AlterTableCommand) CreateIndex(indexName string, columns ...string) *AlterTableCommand {
	c.Actions = append(c.Actions, AlterAction{kind: alterCreateIndex, name: c.prefix + indexName, columns: columns})
	return c
}

// DropIndex removes a secondary index.
func (c *AlterTableCommand) DropIndex(indexName string) *AlterTableCommand {
	c.Actions = append(c.Actions, AlterAction{kind: alterDropIndex, name: c.prefix + indexName})
	return c
}

func (*AlterTableCommand) isSchemaCommand() {}

// DropTableCommand drops a table.
type DropTableCommand struct {
	Name string
}

func (*DropTableCommand) isSchemaCommand() {}

// CreateForeignKeyCommand adds a foreign key from SrcTable to DestTable.
type CreateForeignKeyCommand struct {
	Name        string
	SrcTable    string
	SrcColumns  []string
	DestTable   string
	DestColumns []string
}

func (*CreateForeignKeyCommand) isSchemaCommand() {}

// DropForeignKeyCommand removes a foreign key of SrcTable.
type DropForeignKeyCommand struct {
	SrcTable string
	Name     string
}

func (*DropForeignKeyCommand) isSchemaCommand() {}
