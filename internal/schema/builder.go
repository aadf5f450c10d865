// Package schema builds and executes the DDL that the document and index
// commands depend on: the document table, map and reduce index tables, reduce
// bridge tables and their foreign keys. Every table and constraint name is
// prefixed with the configured table prefix.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Execer runs a statement. *sql.Tx satisfies it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ErrorPolicy decides what a failed builder operation does to the chain.
type ErrorPolicy int

const (
	// ThrowOnError keeps the first failure in Err and skips every later
	// operation of the chain.
	ThrowOnError ErrorPolicy = iota

	// IgnoreErrors records the failure in Suppressed and continues with the
	// next operation, so repeated "ensure schema" chains stay idempotent on
	// dialects without conditional DDL.
	IgnoreErrors
)

// Options configures a Builder.
type Options struct {
	TablePrefix string
	Collection  types.Collection
	Timeout     time.Duration
	Logger      *zap.Logger
	ErrorPolicy ErrorPolicy
}

// Builder is a fluent DDL orchestrator scoped to one migration. Every
// operation returns the builder; check Err once the chain is done.
type Builder struct {
	ctx         context.Context
	exec        Execer
	dialect     types.Dialect
	interpreter *Interpreter
	prefix      string
	collection  types.Collection
	timeout     time.Duration
	logger      *zap.Logger
	policy      ErrorPolicy

	err        error
	suppressed error
}

// NewBuilder returns a builder executing on exec, typically the migration's
// transaction.
func NewBuilder(ctx context.Context, exec Execer, d types.Dialect, opts Options) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		ctx:         ctx,
		exec:        exec,
		dialect:     d,
		interpreter: NewInterpreter(d),
		prefix:      opts.TablePrefix,
		collection:  opts.Collection,
		timeout:     opts.Timeout,
		logger:      logger.With(zap.String("dialect", d.Name())),
		policy:      opts.ErrorPolicy,
	}
}

// TablePrefix returns the prefix applied to every name.
func (b *Builder) TablePrefix() string { return b.prefix }

// Dialect returns the bound dialect.
func (b *Builder) Dialect() types.Dialect { return b.dialect }

// Err returns the failure that halted the chain under ThrowOnError.
func (b *Builder) Err() error { return b.err }

// Suppressed returns the failures ignored under IgnoreErrors.
func (b *Builder) Suppressed() []error { return multierr.Errors(b.suppressed) }

// CreateDocumentTable creates the collection's document table with a
// caller-assigned Id and an index on Type.
func (b *Builder) CreateDocumentTable() *Builder {
	documentTable := b.collection.DocumentTable()
	return b.CreateTable(documentTable, func(t *CreateTableCommand) {
		t.Column(types.ColumnID, types.TypeBigInt, PrimaryKey(), NotNull()).
			Column(types.ColumnTypeName, types.TypeString, NotNull()).
			Column(types.ColumnContent, types.TypeText)
	}).AlterTable(documentTable, func(t *AlterTableCommand) {
		t.CreateIndex("IDX_"+documentTable+"_"+types.ColumnTypeName, types.ColumnTypeName)
	})
}

// DropDocumentTable drops the collection's document table.
func (b *Builder) DropDocumentTable() *Builder {
	return b.DropTable(b.collection.DocumentTable())
}

// CreateMapIndexTable creates a map index table with an identity Id and a
// DocumentId referencing the document table, then applies columns.
func (b *Builder) CreateMapIndexTable(name string, columns func(*CreateTableCommand)) *Builder {
	documentTable := b.collection.DocumentTable()
	return b.createTableWithKeys(name, func(t *CreateTableCommand) {
		t.Column(types.ColumnID, types.TypeBigInt, PrimaryKey(), Identity(), NotNull()).
			Column(types.ColumnDocumentID, types.TypeBigInt)
		if columns != nil {
			columns(t)
		}
	}, CreateForeignKeyCommand{
		Name: mapForeignKey(name), SrcColumns: []string{types.ColumnDocumentID},
		DestTable: documentTable, DestColumns: []string{types.ColumnID},
	})
}

// CreateReduceIndexTable creates a reduce index table with an identity Id,
// applies columns, and creates the bridge table linking index rows to
// documents with one foreign key to each side.
func (b *Builder) CreateReduceIndexTable(name string, columns func(*CreateTableCommand)) *Builder {
	documentTable := b.collection.DocumentTable()
	bridge := b.collection.BridgeTable(name, b.prefix)
	indexColumn := types.BridgeIndexColumn(name)

	return b.CreateTable(name, func(t *CreateTableCommand) {
		t.Column(types.ColumnID, types.TypeBigInt, Identity(), NotNull())
		if columns != nil {
			columns(t)
		}
	}).createTableWithKeys(bridge, func(t *CreateTableCommand) {
		t.Column(indexColumn, types.TypeBigInt, NotNull()).
			Column(types.ColumnDocumentID, types.TypeBigInt, NotNull())
	}, CreateForeignKeyCommand{
		Name: bridgeIndexForeignKey(bridge), SrcColumns: []string{indexColumn},
		DestTable: name, DestColumns: []string{types.ColumnID},
	}, CreateForeignKeyCommand{
		Name: bridgeDocumentForeignKey(bridge), SrcColumns: []string{types.ColumnDocumentID},
		DestTable: documentTable, DestColumns: []string{types.ColumnID},
	})
}

// createTableWithKeys creates the table and its outgoing foreign keys. Key
// names and destination tables are unprefixed. Dialects that cannot add a
// constraint to an existing table get the keys inside CREATE TABLE.
func (b *Builder) createTableWithKeys(name string, columns func(*CreateTableCommand), keys ...CreateForeignKeyCommand) *Builder {
	inline := !b.dialect.SupportsAlterForeignKey()
	b.CreateTable(name, func(t *CreateTableCommand) {
		columns(t)
		if !inline {
			return
		}
		for _, k := range keys {
			t.ForeignKey(b.prefixed(k.Name), k.SrcColumns, b.prefixed(k.DestTable), k.DestColumns)
		}
	})
	if inline {
		return b
	}
	for _, k := range keys {
		b.CreateForeignKey(k.Name, name, k.SrcColumns, k.DestTable, k.DestColumns)
	}
	return b
}

// DropMapIndexTable drops a map index table. Without cascading drops the
// foreign key is removed first.
func (b *Builder) DropMapIndexTable(name string) *Builder {
	if b.dialect.CascadeConstraintsString() == "" {
		b.DropForeignKey(name, mapForeignKey(name))
	}
	return b.DropTable(name)
}

// DropReduceIndexTable drops the bridge table and the reduce index table.
// Without cascading drops both bridge foreign keys are removed first.
func (b *Builder) DropReduceIndexTable(name string) *Builder {
	bridge := b.collection.BridgeTable(name, b.prefix)
	if b.dialect.CascadeConstraintsString() == "" {
		b.DropForeignKey(bridge, bridgeIndexForeignKey(bridge)).
			DropForeignKey(bridge, bridgeDocumentForeignKey(bridge))
	}
	return b.DropTable(bridge).DropTable(name)
}

// CreateTable creates the prefixed table described by table.
func (b *Builder) CreateTable(name string, table func(*CreateTableCommand)) *Builder {
	return b.run("create table "+name, func() error {
		cmd := NewCreateTableCommand(b.prefixed(name))
		if table != nil {
			table(cmd)
		}
		return b.execute(cmd)
	})
}

// AlterTable applies the changes described by table to the prefixed table.
func (b *Builder) AlterTable(name string, table func(*AlterTableCommand)) *Builder {
	return b.run("alter table "+name, func() error {
		cmd := NewAlterTableCommand(b.prefixed(name), b.prefix)
		if table != nil {
			table(cmd)
		}
		return b.execute(cmd)
	})
}

// DropTable drops the prefixed table.
func (b *Builder) DropTable(name string) *Builder {
	return b.run("drop table "+name, func() error {
		return b.execute(&DropTableCommand{Name: b.prefixed(name)})
	})
}

// CreateForeignKey adds a foreign key; the key and both tables are prefixed.
func (b *Builder) CreateForeignKey(name, srcTable string, srcColumns []string, destTable string, destColumns []string) *Builder {
	return b.run("create foreign key "+name, func() error {
		return b.execute(&CreateForeignKeyCommand{
			Name:        b.prefixed(name),
			SrcTable:    b.prefixed(srcTable),
			SrcColumns:  srcColumns,
			DestTable:   b.prefixed(destTable),
			DestColumns: destColumns,
		})
	})
}

// DropForeignKey removes a foreign key of srcTable.
func (b *Builder) DropForeignKey(srcTable, name string) *Builder {
	return b.run("drop foreign key "+name, func() error {
		return b.execute(&DropForeignKeyCommand{SrcTable: b.prefixed(srcTable), Name: b.prefixed(name)})
	})
}

// run applies the error policy to one operation.
func (b *Builder) run(op string, fn func() error) *Builder {
	if b.err != nil {
		return b
	}
	if err := fn(); err != nil {
		err = fmt.Errorf("%s: %w", op, err)
		if b.policy == ThrowOnError {
			b.err = err
			return b
		}
		b.logger.Debug("schema operation failed, continuing", zap.Error(err))
		b.suppressed = multierr.Append(b.suppressed, err)
	}
	return b
}

// execute renders cmd and runs the statements in order.
func (b *Builder) execute(cmd Command) error {
	statements, err := b.interpreter.CreateSQL(cmd)
	if err != nil {
		return err
	}
	for _, statement := range statements {
		b.logger.Debug("executing schema statement", zap.String("sql", statement))
		if err := b.execStatement(statement); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) execStatement(statement string) error {
	ctx := b.ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	_, err := b.exec.ExecContext(ctx, statement)
	return err
}

func (b *Builder) prefixed(name string) string {
	return b.prefix + name
}

func mapForeignKey(indexName string) string {
	return "FK_" + indexName
}

func bridgeIndexForeignKey(bridge string) string {
	return "FK_" + bridge + "_" + types.ColumnID
}

func bridgeDocumentForeignKey(bridge string) string {
	return "FK_" + bridge + "_" + types.ColumnDocumentID
}
