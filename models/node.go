package models

// Node roles understood by the controller.
const (
	// RoleMaster marks the node serving writes for its shard.
	RoleMaster = "master"

	// RoleSlave marks a replica following the shard master.
	RoleSlave = "slave"
)

// NodeCreateRequest represents the request body for adding a node to a shard.
type NodeCreateRequest struct {
	// Addr is the node address in host:port form
	Addr string `json:"addr"`

	// Role is either RoleMaster or RoleSlave
	Role string `json:"role"`

	// Password is the credential used to reach the node
	Password string `json:"password"`
}
