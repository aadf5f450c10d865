package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/pkg/pantry"
)

func newDocCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Create, update and delete documents",
	}
	cmd.AddCommand(newDocCreateCmd(a), newDocUpdateCmd(a), newDocDeleteCmd(a))
	return cmd
}

func newDocCreateCmd(a *app) *cobra.Command {
	var doc pantry.Document

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Insert a document with a caller-assigned id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if doc.ID <= 0 {
				return userError("--id is required")
			}
			if doc.Type == "" {
				return userError("--type is required")
			}
			if err := a.commit(cmd, func(f pantry.Factory) pantry.Command {
				return f.CreateDocument(&doc)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created document %d\n", doc.ID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&doc.ID, "id", 0, "document id")
	cmd.Flags().StringVar(&doc.Type, "type", "", "document type name")
	cmd.Flags().StringVar(&doc.Content, "content", "", "serialized document content")
	return cmd
}

func newDocUpdateCmd(a *app) *cobra.Command {
	var doc pantry.Document

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Overwrite the content of a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if doc.ID <= 0 {
				return userError("--id is required")
			}
			if err := a.commit(cmd, func(f pantry.Factory) pantry.Command {
				return f.UpdateDocument(&doc)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated document %d\n", doc.ID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&doc.ID, "id", 0, "document id")
	cmd.Flags().StringVar(&doc.Content, "content", "", "serialized document content")
	return cmd
}

func newDocDeleteCmd(a *app) *cobra.Command {
	var doc pantry.Document

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if doc.ID <= 0 {
				return userError("--id is required")
			}
			if err := a.commit(cmd, func(f pantry.Factory) pantry.Command {
				return f.DeleteDocument(&doc)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted document %d\n", doc.ID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&doc.ID, "id", 0, "document id")
	return cmd
}

// commit attaches a store, commits the command built by build and detaches.
func (a *app) commit(cmd *cobra.Command, build func(pantry.Factory) pantry.Command) error {
	s, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Detach()

	if err := s.Commit(cmd.Context(), build(s.Commands())); err != nil {
		return userError("%w", err)
	}
	return nil
}
