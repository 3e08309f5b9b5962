package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"kvctl.io/kvctl/internal/config"
	"kvctl.io/kvctl/models"
)

// shardScope holds the flags locating a cluster.
type shardScope struct {
	namespace string
	cluster   string
}

func (s *shardScope) register(cmd *cobra.Command) {
	addNamespaceFlag(cmd, &s.namespace)
	cmd.Flags().StringVarP(&s.cluster, "cluster", "c", "", "Cluster name")
	_ = cmd.MarkFlagRequired("cluster")
}

func (a *app) newShardCmd() *cobra.Command {
	shardCmd := &cobra.Command{
		Use:   "shard",
		Short: "Manage the shards of a cluster",
	}

	shardCmd.AddCommand(
		a.newShardListCmd(),
		a.newShardGetCmd(),
		a.newShardCreateCmd(),
		a.newShardDeleteCmd(),
	)
	return shardCmd
}

func (a *app) newShardListCmd() *cobra.Command {
	var scope shardScope
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List shards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shards, err := a.client.ListShards(cmd.Context(), scope.namespace, scope.cluster)
			if err != nil {
				return err
			}
			return a.printer(cmd).print(shards, shardsTable(shards))
		},
	}
	scope.register(cmd)
	return cmd
}

func (a *app) newShardGetCmd() *cobra.Command {
	var scope shardScope
	cmd := &cobra.Command{
		Use:   "get INDEX",
		Short: "Show a shard and its nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shard, err := a.client.GetShard(cmd.Context(), scope.namespace, scope.cluster, args[0])
			if err != nil {
				return err
			}

			p := a.printer(cmd)
			if p.format == config.OutputTable {
				fmt.Fprintf(p.w, "Shard %s slots: %s\n\n", args[0], cell(shard, "slot_ranges"))
			}
			return p.print(shard, nodesTable(objects(shard["nodes"])))
		},
	}
	scope.register(cmd)
	return cmd
}

func (a *app) newShardCreateCmd() *cobra.Command {
	var (
		scope shardScope
		req   models.ShardCreateRequest
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a shard built from node addresses",
		Long: `Add a shard built from node addresses.

The first node becomes the shard master. The new shard serves no slots
until some are migrated to it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.CreateShard(cmd.Context(), scope.namespace, scope.cluster, req); err != nil {
				return err
			}
			return a.printer(cmd).message("shard created in cluster %s", scope.cluster)
		},
	}
	scope.register(cmd)
	cmd.Flags().StringSliceVar(&req.Nodes, "nodes", nil, "Comma-separated node addresses (host:port)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password used to reach the nodes")
	_ = cmd.MarkFlagRequired("nodes")
	return cmd
}

func (a *app) newShardDeleteCmd() *cobra.Command {
	var scope shardScope
	cmd := &cobra.Command{
		Use:   "delete INDEX",
		Short: "Delete a shard that serves no slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteShard(cmd.Context(), scope.namespace, scope.cluster, args[0]); err != nil {
				return err
			}
			return a.printer(cmd).message("shard %s deleted from cluster %s", args[0], scope.cluster)
		},
	}
	scope.register(cmd)
	return cmd
}

// objects converts a decoded JSON list into opaque objects, skipping non-objects.
func objects(v any) []models.Object {
	items, _ := v.([]any)
	out := make([]models.Object, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, models.Object(obj))
		}
	}
	return out
}
