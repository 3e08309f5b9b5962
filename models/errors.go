package models

import (
	"encoding/json"
	"errors"
)

// Common error types shared by the fake controller and its callers.
// Each maps to one HTTP status in the controller's error envelope.

var (
	// ErrNamespaceNotFound indicates the requested namespace does not exist.
	// HTTP equivalent: 404 Not Found
	ErrNamespaceNotFound = errors.New("namespace not found")

	// ErrClusterNotFound indicates the requested cluster does not exist.
	// HTTP equivalent: 404 Not Found
	ErrClusterNotFound = errors.New("cluster not found")

	// ErrShardNotFound indicates the requested shard does not exist.
	// HTTP equivalent: 404 Not Found
	ErrShardNotFound = errors.New("shard not found")

	// ErrNodeNotFound indicates the requested node does not exist.
	// HTTP equivalent: 404 Not Found
	ErrNodeNotFound = errors.New("node not found")

	// ErrAlreadyExists indicates a resource with this name already exists.
	// HTTP equivalent: 409 Conflict
	ErrAlreadyExists = errors.New("the entry already existed")

	// ErrInvalidRequest indicates the request body or parameters are invalid.
	// HTTP equivalent: 400 Bad Request
	ErrInvalidRequest = errors.New("invalid request")
)

// ErrorBody is the payload of the "error" member of a failed response.
type ErrorBody struct {
	Message string `json:"message"`
}

// ErrorResponse represents the controller's error envelope: {"error": {"message": "..."}}.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Envelope is the controller's success envelope: {"data": ...}.
// Data stays raw so callers can distinguish an absent member from an explicit null.
type Envelope struct {
	Data json.RawMessage `json:"data"`
}

// HasData reports whether the envelope carries a data member that is not null.
func (e Envelope) HasData() bool {
	return len(e.Data) > 0 && string(e.Data) != "null"
}
