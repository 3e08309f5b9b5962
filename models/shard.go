package models

// ShardCreateRequest represents the request body for adding a shard to a cluster.
type ShardCreateRequest struct {
	// Nodes is the list of node addresses; the first one becomes the master
	Nodes []string `json:"nodes"`

	// Password is the credential used to reach the nodes
	Password string `json:"password"`
}

// Object is an opaque server-defined JSON object such as a shard or a node.
type Object map[string]any

// String returns the value stored under key formatted as a string, or "" if absent.
func (o Object) String(key string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return formatInt(int64(val))
		}
		return formatFloat(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return formatAny(val)
	}
}
