package models

// Cluster represents a managed group of shards inside a namespace.
type Cluster struct {
	// Name is the cluster name, unique within its namespace
	Name string `json:"name"`

	// Version is incremented by the server on every topology change
	Version int64 `json:"version"`

	// Shards is the server-defined shard collection, returned as-is
	Shards []Object `json:"shards"`
}

// NamespaceCreateRequest represents the request body for creating a namespace.
type NamespaceCreateRequest struct {
	Namespace string `json:"namespace"`
}

// ClusterCreateRequest represents the request body for creating a new cluster.
type ClusterCreateRequest struct {
	// Name is the desired cluster name (required)
	Name string `json:"name"`

	// Nodes is the list of node addresses (host:port) making up the cluster
	Nodes []string `json:"nodes"`

	// Replicas is the number of nodes per shard, master included
	Replicas int `json:"replicas"`

	// Password is the credential the controller uses to reach the nodes
	Password string `json:"password"`
}

// ClusterImportRequest represents the request body for importing an existing
// cluster topology from running nodes.
type ClusterImportRequest struct {
	Nodes    []string `json:"nodes"`
	Password string   `json:"password"`
}

// MigrateSlotRequest represents the request body for moving a slot to another shard.
type MigrateSlotRequest struct {
	// Target is the index of the destination shard
	Target int `json:"target"`

	// Slot is the slot number to migrate
	Slot int `json:"slot"`

	// SlotOnly moves the slot ownership without migrating the data
	SlotOnly bool `json:"slot_only"`
}
