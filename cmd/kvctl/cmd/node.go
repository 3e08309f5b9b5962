package cmd

import (
	"github.com/spf13/cobra"

	"kvctl.io/kvctl/models"
)

// nodeScope holds the flags locating a shard.
type nodeScope struct {
	shardScope
	shard string
}

func (s *nodeScope) register(cmd *cobra.Command) {
	s.shardScope.register(cmd)
	cmd.Flags().StringVarP(&s.shard, "shard", "s", "", "Shard index")
	_ = cmd.MarkFlagRequired("shard")
}

func (a *app) newNodeCmd() *cobra.Command {
	nodeCmd := &cobra.Command{
		Use:   "node",
		Short: "Manage the nodes of a shard",
	}

	nodeCmd.AddCommand(
		a.newNodeListCmd(),
		a.newNodeCreateCmd(),
		a.newNodeDeleteCmd(),
	)
	return nodeCmd
}

func (a *app) newNodeListCmd() *cobra.Command {
	var scope nodeScope
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := a.client.ListNodes(cmd.Context(), scope.namespace, scope.cluster, scope.shard)
			if err != nil {
				return err
			}
			return a.printer(cmd).print(nodes, nodesTable(nodes))
		},
	}
	scope.register(cmd)
	return cmd
}

func (a *app) newNodeCreateCmd() *cobra.Command {
	var (
		scope nodeScope
		req   models.NodeCreateRequest
	)
	cmd := &cobra.Command{
		Use:   "create ADDR",
		Short: "Add a node to a shard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Addr = args[0]
			if err := a.client.CreateNode(cmd.Context(), scope.namespace, scope.cluster, scope.shard, req); err != nil {
				return err
			}
			return a.printer(cmd).message("node %s added to shard %s as %s", req.Addr, scope.shard, req.Role)
		},
	}
	scope.register(cmd)
	cmd.Flags().StringVar(&req.Role, "role", models.RoleSlave, "Node role: master or slave")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password used to reach the node")
	return cmd
}

func (a *app) newNodeDeleteCmd() *cobra.Command {
	var scope nodeScope
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a node from a shard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteNode(cmd.Context(), scope.namespace, scope.cluster, scope.shard, args[0]); err != nil {
				return err
			}
			return a.printer(cmd).message("node %s deleted", args[0])
		},
	}
	scope.register(cmd)
	return cmd
}
