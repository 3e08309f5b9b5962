package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kvctl.io/kvctl/internal/config"
	"kvctl.io/kvctl/internal/logging"
	"kvctl.io/kvctl/models"
)

// addNamespaceFlag registers the required -n/--namespace flag.
func addNamespaceFlag(cmd *cobra.Command, namespace *string) {
	cmd.Flags().StringVarP(namespace, "namespace", "n", "", "Namespace name")
	_ = cmd.MarkFlagRequired("namespace")
}

func (a *app) newClusterCmd() *cobra.Command {
	clusterCmd := &cobra.Command{
		Use:   "cluster",
		Short: "Manage clusters",
	}

	clusterCmd.AddCommand(
		a.newClusterListCmd(),
		a.newClusterGetCmd(),
		a.newClusterCreateCmd(),
		a.newClusterDeleteCmd(),
		a.newClusterImportCmd(),
		a.newClusterMigrateCmd(),
	)
	return clusterCmd
}

func (a *app) newClusterListCmd() *cobra.Command {
	var namespace string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clusters in a namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.client.ListClusters(cmd.Context(), namespace)
			if err != nil {
				return err
			}
			return a.printer(cmd).print(names, namesTable("CLUSTER", names))
		},
	}
	addNamespaceFlag(cmd, &namespace)
	return cmd
}

func (a *app) newClusterGetCmd() *cobra.Command {
	var namespace string
	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Show a cluster and its shards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cluster, err := a.client.GetCluster(cmd.Context(), namespace, args[0])
			if err != nil {
				return err
			}

			p := a.printer(cmd)
			if p.format == config.OutputTable {
				fmt.Fprintf(p.w, "Cluster %s (version %d)\n\n", cluster.Name, cluster.Version)
			}
			return p.print(cluster, shardsTable(cluster.Shards))
		},
	}
	addNamespaceFlag(cmd, &namespace)
	return cmd
}

func (a *app) newClusterCreateCmd() *cobra.Command {
	var (
		namespace string
		req       models.ClusterCreateRequest
	)
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a cluster from node addresses",
		Long: `Create a cluster from node addresses.

Nodes are grouped into shards of --replicas nodes each; the first node of
every group becomes the shard master.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]
			ctx := clusterContext(cmd.Context(), namespace, req.Name)
			logging.FromContext(ctx).Debug("Creating cluster",
				zap.Int("nodes", len(req.Nodes)),
				zap.Int("replicas", req.Replicas))

			if err := a.client.CreateCluster(ctx, namespace, req); err != nil {
				return err
			}
			return a.printer(cmd).message("cluster %s created in namespace %s", req.Name, namespace)
		},
	}
	addNamespaceFlag(cmd, &namespace)
	cmd.Flags().StringSliceVar(&req.Nodes, "nodes", nil, "Comma-separated node addresses (host:port)")
	cmd.Flags().IntVar(&req.Replicas, "replicas", 1, "Nodes per shard, master included")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password used to reach the nodes")
	_ = cmd.MarkFlagRequired("nodes")
	return cmd
}

func (a *app) newClusterDeleteCmd() *cobra.Command {
	var namespace string
	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteCluster(cmd.Context(), namespace, args[0]); err != nil {
				return err
			}
			return a.printer(cmd).message("cluster %s deleted", args[0])
		},
	}
	addNamespaceFlag(cmd, &namespace)
	return cmd
}

func (a *app) newClusterImportCmd() *cobra.Command {
	var (
		namespace string
		req       models.ClusterImportRequest
	)
	cmd := &cobra.Command{
		Use:   "import NAME",
		Short: "Import a running cluster from its nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.ImportCluster(cmd.Context(), namespace, args[0], req); err != nil {
				return err
			}
			return a.printer(cmd).message("cluster %s imported into namespace %s", args[0], namespace)
		},
	}
	addNamespaceFlag(cmd, &namespace)
	cmd.Flags().StringSliceVar(&req.Nodes, "nodes", nil, "Comma-separated node addresses (host:port)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password used to reach the nodes")
	_ = cmd.MarkFlagRequired("nodes")
	return cmd
}

func (a *app) newClusterMigrateCmd() *cobra.Command {
	var (
		namespace    string
		target, slot int
		slotOnly     bool
	)
	cmd := &cobra.Command{
		Use:   "migrate NAME",
		Short: "Move a slot to another shard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.MigrateSlot(cmd.Context(), namespace, args[0], target, slot, slotOnly); err != nil {
				return err
			}
			return a.printer(cmd).message("slot %d of cluster %s moved to shard %d", slot, args[0], target)
		},
	}
	addNamespaceFlag(cmd, &namespace)
	cmd.Flags().IntVar(&target, "target", 0, "Index of the destination shard")
	cmd.Flags().IntVar(&slot, "slot", 0, "Slot number to migrate")
	cmd.Flags().BoolVar(&slotOnly, "slot-only", false, "Change slot ownership without migrating data")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("slot")
	return cmd
}

// clusterContext scopes the context logger to one cluster.
func clusterContext(ctx context.Context, namespace, cluster string) context.Context {
	return logging.AddFields(ctx,
		zap.String(logging.FieldNamespace, namespace),
		zap.String(logging.FieldCluster, cluster))
}
