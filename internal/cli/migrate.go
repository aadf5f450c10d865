package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/pkg/pantry"
)

func newMigrateCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Ensure the document table of the configured collection exists",
		Long: "Create the document table. Without --strict a table that already exists\n" +
			"is left untouched.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy := pantry.IgnoreErrors
			if strict {
				policy = pantry.ThrowOnError
			}
			if err := a.migrate(cmd, policy, func(b *pantry.Builder) {
				b.CreateDocumentTable()
			}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Document table ready")
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail if the document table already exists")
	return cmd
}

// migrate attaches a store, runs fn in one schema transaction and detaches.
func (a *app) migrate(cmd *cobra.Command, policy pantry.ErrorPolicy, fn func(*pantry.Builder)) error {
	s, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Detach()

	if err := s.Migrate(cmd.Context(), policy, fn); err != nil {
		return userError("migrate: %w", err)
	}
	return nil
}
