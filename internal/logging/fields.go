// Package logging provides structured logging utilities for kvctl.
package logging

// Standard field names for consistent logging across the client and CLI.
const (
	// FieldRequestID is the id sent in the X-Request-ID header of each call.
	FieldRequestID = "request_id"

	// FieldOperation identifies the API operation being performed (e.g. "list_shards").
	FieldOperation = "operation"

	// FieldMethod is the HTTP method of a request.
	FieldMethod = "method"

	// FieldPath is the URL path of an HTTP request.
	FieldPath = "path"

	// FieldStatusCode is the HTTP status code of a response.
	FieldStatusCode = "status_code"

	// FieldDuration is the duration of an operation in milliseconds.
	FieldDuration = "duration_ms"

	// FieldNamespace is the namespace a call is scoped to.
	FieldNamespace = "namespace"

	// FieldCluster is the cluster a call is scoped to.
	FieldCluster = "cluster"

	// FieldShard is the shard index a call is scoped to.
	FieldShard = "shard"

	// FieldNodeID is the node a call is scoped to.
	FieldNodeID = "node_id"

	// FieldError is the normalized error message.
	FieldError = "error"

	// FieldComponent identifies the component generating the log.
	FieldComponent = "component"
)
