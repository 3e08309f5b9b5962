// Package models provides shared data structures for kvctl.
//
// This package contains the request and response shapes of the Kvrocks
// controller REST API. The client SDK, the CLI and the in-memory fake
// controller used in tests all import it, so the wire names live in one place.
//
// The models in this package represent:
//   - Namespaces: Top-level groupings of clusters
//   - Clusters: Managed groups of shards
//   - Shards: Subsets of a cluster's slots, containing nodes
//   - Nodes: Single Kvrocks instances within a shard
//   - Envelopes: The {"data": ...} / {"error": {...}} response wrappers
//
// Shards and nodes are defined by the server and versioned independently of
// this client, so they are carried as opaque Objects.
package models
