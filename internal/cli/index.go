package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/schema"
	"github.com/mesh-intelligence/pantry/pkg/pantry"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// columnTypes maps the names accepted by --column to portable types.
var columnTypes = map[string]types.ColumnType{
	"int":      types.TypeInt,
	"bigint":   types.TypeBigInt,
	"bool":     types.TypeBool,
	"text":     types.TypeText,
	"string":   types.TypeString,
	"float":    types.TypeFloat,
	"datetime": types.TypeDateTime,
	"binary":   types.TypeBinary,
}

// columnSpec is one parsed --column value.
type columnSpec struct {
	name   string
	typ    types.ColumnType
	length int
}

// parseColumn parses NAME:TYPE[:LENGTH].
func parseColumn(s string) (columnSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return columnSpec{}, fmt.Errorf("column %q: want NAME:TYPE[:LENGTH]", s)
	}
	if !types.ValidIdentifier(parts[0]) {
		return columnSpec{}, fmt.Errorf("column %q: %w", s, types.ErrInvalidIdentifier)
	}
	if parts[0] == types.ColumnID || parts[0] == types.ColumnDocumentID {
		return columnSpec{}, fmt.Errorf("column %q: %w", s, types.ErrReservedColumn)
	}
	typ, ok := columnTypes[strings.ToLower(parts[1])]
	if !ok {
		return columnSpec{}, fmt.Errorf("column %q: unknown type %q", s, parts[1])
	}
	spec := columnSpec{name: parts[0], typ: typ}
	if len(parts) == 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil || n <= 0 {
			return columnSpec{}, fmt.Errorf("column %q: invalid length %q", s, parts[2])
		}
		spec.length = n
	}
	return spec, nil
}

func parseColumns(values []string) ([]columnSpec, error) {
	specs := make([]columnSpec, 0, len(values))
	for _, v := range values {
		spec, err := parseColumn(v)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// applyColumns returns a table callback adding specs as nullable columns.
func applyColumns(specs []columnSpec) func(*schema.CreateTableCommand) {
	return func(t *schema.CreateTableCommand) {
		for _, c := range specs {
			var opts []schema.ColumnOption
			if c.length > 0 {
				opts = append(opts, schema.WithLength(c.length))
			}
			t.Column(c.name, c.typ, opts...)
		}
	}
}

func newIndexCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Create and drop map and reduce index tables",
	}
	cmd.AddCommand(
		newIndexCreateCmd(a, "create-map", "Create a map index table linked to one document per row",
			func(b *pantry.Builder, name string, columns func(*schema.CreateTableCommand)) {
				b.CreateMapIndexTable(name, columns)
			}),
		newIndexCreateCmd(a, "create-reduce", "Create a reduce index table and its document bridge table",
			func(b *pantry.Builder, name string, columns func(*schema.CreateTableCommand)) {
				b.CreateReduceIndexTable(name, columns)
			}),
		newIndexDropCmd(a, "drop-map", "Drop a map index table", (*pantry.Builder).DropMapIndexTable),
		newIndexDropCmd(a, "drop-reduce", "Drop a reduce index table and its bridge table", (*pantry.Builder).DropReduceIndexTable),
	)
	return cmd
}

func newIndexCreateCmd(a *app, use, short string, create func(*pantry.Builder, string, func(*schema.CreateTableCommand))) *cobra.Command {
	var columns []string

	cmd := &cobra.Command{
		Use:   use + " NAME",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !types.ValidIdentifier(name) {
				return userError("index name %q: %w", name, types.ErrInvalidIdentifier)
			}
			specs, err := parseColumns(columns)
			if err != nil {
				return userError("%w", err)
			}
			if err := a.migrate(cmd, pantry.ThrowOnError, func(b *pantry.Builder) {
				create(b, name, applyColumns(specs))
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created index %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&columns, "column", nil, "index column as NAME:TYPE[:LENGTH] (repeatable)")
	return cmd
}

func newIndexDropCmd(a *app, use, short string, drop func(*pantry.Builder, string) *pantry.Builder) *cobra.Command {
	return &cobra.Command{
		Use:   use + " NAME",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := a.migrate(cmd, pantry.ThrowOnError, func(b *pantry.Builder) {
				drop(b, name)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dropped index %s\n", name)
			return nil
		},
	}
}
