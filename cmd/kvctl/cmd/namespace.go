package cmd

import (
	"github.com/spf13/cobra"
)

func (a *app) newNamespaceCmd() *cobra.Command {
	namespaceCmd := &cobra.Command{
		Use:     "namespace",
		Aliases: []string{"ns"},
		Short:   "Manage namespaces",
	}

	namespaceCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List namespaces",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				names, err := a.client.ListNamespaces(cmd.Context())
				if err != nil {
					return err
				}
				return a.printer(cmd).print(names, namesTable("NAMESPACE", names))
			},
		},
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create a namespace",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.client.CreateNamespace(cmd.Context(), args[0]); err != nil {
					return err
				}
				return a.printer(cmd).message("namespace %s created", args[0])
			},
		},
		&cobra.Command{
			Use:   "delete NAME",
			Short: "Delete a namespace",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.client.DeleteNamespace(cmd.Context(), args[0]); err != nil {
					return err
				}
				return a.printer(cmd).message("namespace %s deleted", args[0])
			},
		},
	)

	return namespaceCmd
}
