package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/internal/dialect"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

func TestInterpreterCreateTable(t *testing.T) {
	tests := []struct {
		name    string
		dialect types.Dialect
		cmd     *CreateTableCommand
		want    string
	}{
		{
			name:    "sqlite identity and default",
			dialect: dialect.SQLite{},
			cmd: NewCreateTableCommand("Widget").
				Column("Id", types.TypeBigInt, PrimaryKey(), Identity(), NotNull()).
				Column("DocumentId", types.TypeBigInt).
				Column("Color", types.TypeString, WithLength(32), NotNull(), WithDefault("red")),
			want: `CREATE TABLE "Widget" ("Id" INTEGER PRIMARY KEY AUTOINCREMENT, "DocumentId" INTEGER, "Color" VARCHAR(32) NOT NULL DEFAULT 'red')`,
		},
		{
			name:    "postgres document table",
			dialect: dialect.Postgres{},
			cmd: NewCreateTableCommand("Document").
				Column("Id", types.TypeBigInt, PrimaryKey(), NotNull()).
				Column("Type", types.TypeString, NotNull()).
				Column("Content", types.TypeText),
			want: `CREATE TABLE "Document" ("Id" BIGINT NOT NULL, "Type" VARCHAR(255) NOT NULL, "Content" TEXT, PRIMARY KEY ("Id"))`,
		},
		{
			name:    "mysql composite key and unique",
			dialect: dialect.MySQL{},
			cmd: NewCreateTableCommand("Pair").
				Column("A", types.TypeInt, PrimaryKey()).
				Column("B", types.TypeInt, PrimaryKey()).
				Column("Code", types.TypeString, Unique(), WithDefault("it's")).
				Column("Active", types.TypeBool, WithDefault(true)),
			want: "CREATE TABLE `Pair` (`A` INT, `B` INT, `Code` VARCHAR(255) UNIQUE DEFAULT 'it''s', `Active` BIT DEFAULT 1, PRIMARY KEY (`A`, `B`))",
		},
		{
			name:    "inline foreign key after primary key",
			dialect: dialect.SQLite{},
			cmd: NewCreateTableCommand("Link").
				Column("Id", types.TypeBigInt, PrimaryKey()).
				Column("DocumentId", types.TypeBigInt, NotNull()).
				ForeignKey("FK_Link", []string{"DocumentId"}, "Document", []string{"Id"}),
			want: `CREATE TABLE "Link" ("Id" INTEGER, "DocumentId" INTEGER NOT NULL, PRIMARY KEY ("Id"), ` +
				`CONSTRAINT "FK_Link" FOREIGN KEY ("DocumentId") REFERENCES "Document" ("Id"))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewInterpreter(tt.dialect).CreateSQL(tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, got)
		})
	}
}

func TestInterpreterAlterTable(t *testing.T) {
	cmd := NewAlterTableCommand("tp_Widget", "tp_").
		AddColumn("Size", types.TypeInt, WithDefault(0)).
		RenameColumn("Color", "Colour").
		CreateIndex("IDX_Widget_Size", "Size", "Colour").
		DropIndex("IDX_Old").
		DropColumn("Legacy")

	got, err := NewInterpreter(dialect.SQLite{}).CreateSQL(cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`ALTER TABLE "tp_Widget" ADD COLUMN "Size" INTEGER DEFAULT 0`,
		`ALTER TABLE "tp_Widget" RENAME COLUMN "Color" TO "Colour"`,
		`CREATE INDEX "tp_IDX_Widget_Size" ON "tp_Widget" ("Size", "Colour")`,
		`DROP INDEX "tp_IDX_Old"`,
		`ALTER TABLE "tp_Widget" DROP COLUMN "Legacy"`,
	}, got)
}

func TestInterpreterForeignKeys(t *testing.T) {
	create := &CreateForeignKeyCommand{
		Name:        "tp_FK_Widget",
		SrcTable:    "tp_Widget",
		SrcColumns:  []string{"DocumentId"},
		DestTable:   "tp_Document",
		DestColumns: []string{"Id"},
	}
	drop := &DropForeignKeyCommand{SrcTable: "tp_Widget", Name: "tp_FK_Widget"}

	tests := []struct {
		name       string
		dialect    types.Dialect
		wantCreate []string
		wantDrop   []string
	}{
		{
			name:    "sqlite renders nothing",
			dialect: dialect.SQLite{},
		},
		{
			name:       "postgres",
			dialect:    dialect.Postgres{},
			wantCreate: []string{`ALTER TABLE "tp_Widget" ADD CONSTRAINT "tp_FK_Widget" FOREIGN KEY ("DocumentId") REFERENCES "tp_Document" ("Id")`},
			wantDrop:   []string{`ALTER TABLE "tp_Widget" DROP CONSTRAINT "tp_FK_Widget"`},
		},
		{
			name:       "mysql",
			dialect:    dialect.MySQL{},
			wantCreate: []string{"ALTER TABLE `tp_Widget` ADD CONSTRAINT `tp_FK_Widget` FOREIGN KEY (`DocumentId`) REFERENCES `tp_Document` (`Id`)"},
			wantDrop:   []string{"ALTER TABLE `tp_Widget` DROP FOREIGN KEY `tp_FK_Widget`"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewInterpreter(tt.dialect)

			got, err := in.CreateSQL(create)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreate, got)

			got, err = in.CreateSQL(drop)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDrop, got)
		})
	}
}

func TestInterpreterDropTable(t *testing.T) {
	got, err := NewInterpreter(dialect.Postgres{}).CreateSQL(&DropTableCommand{Name: "Widget"})
	require.NoError(t, err)
	assert.Equal(t, []string{`DROP TABLE "Widget" CASCADE`}, got)

	got, err = NewInterpreter(dialect.MySQL{}).CreateSQL(&DropTableCommand{Name: "Widget"})
	require.NoError(t, err)
	assert.Equal(t, []string{"DROP TABLE `Widget`"}, got)
}

func TestInterpreterRejects(t *testing.T) {
	in := NewInterpreter(dialect.SQLite{})

	tests := []struct {
		name    string
		cmd     Command
		wantErr error
	}{
		{
			name:    "table name with quote",
			cmd:     NewCreateTableCommand(`Widget"`).Column("Id", types.TypeInt),
			wantErr: types.ErrInvalidIdentifier,
		},
		{
			name:    "table without columns",
			cmd:     NewCreateTableCommand("Widget"),
			wantErr: types.ErrUnsupportedCommand,
		},
		{
			name:    "unknown column type",
			cmd:     NewCreateTableCommand("Widget").Column("X", types.ColumnType(42)),
			wantErr: types.ErrUnsupportedType,
		},
		{
			name:    "unsupported default",
			cmd:     NewCreateTableCommand("Widget").Column("X", types.TypeInt, WithDefault([]int{1})),
			wantErr: types.ErrUnsupportedType,
		},
		{
			name:    "add identity column",
			cmd:     NewAlterTableCommand("Widget", "").AddColumn("Id", types.TypeBigInt, Identity()),
			wantErr: types.ErrUnsupportedCommand,
		},
		{
			name:    "index without columns",
			cmd:     NewAlterTableCommand("Widget", "").CreateIndex("IDX_Empty"),
			wantErr: types.ErrUnsupportedCommand,
		},
		{
			name: "foreign key column mismatch",
			cmd: &CreateForeignKeyCommand{
				Name: "FK", SrcTable: "A", SrcColumns: []string{"X", "Y"}, DestTable: "B", DestColumns: []string{"Id"},
			},
			wantErr: types.ErrUnsupportedCommand,
		},
		{
			name: "inline foreign key without columns",
			cmd: NewCreateTableCommand("Link").
				Column("DocumentId", types.TypeBigInt).
				ForeignKey("FK_Link", nil, "Document", nil),
			wantErr: types.ErrUnsupportedCommand,
		},
		{
			name: "inline foreign key with bad table",
			cmd: NewCreateTableCommand("Link").
				Column("DocumentId", types.TypeBigInt).
				ForeignKey("FK_Link", []string{"DocumentId"}, "bad table", []string{"Id"}),
			wantErr: types.ErrInvalidIdentifier,
		},
		{
			name:    "drop table with empty name",
			cmd:     &DropTableCommand{},
			wantErr: types.ErrInvalidIdentifier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := in.CreateSQL(tt.cmd)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
