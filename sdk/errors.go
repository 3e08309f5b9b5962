package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
)

// UnknownErrorMessage is returned by Message when a failure carries no usable text.
const UnknownErrorMessage = "Unknown error"

// ErrInvalidConfig indicates the client configuration is invalid or incomplete.
var ErrInvalidConfig = errors.New("invalid client configuration")

// TransportError is returned when the request could not be completed or the
// controller answered with a non-2xx status.
type TransportError struct {
	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int

	// Body is the raw response body, if any.
	Body []byte

	// Err is the underlying network error when no response was received.
	Err error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("Request failed with status code %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// EnvelopeError is returned when a 2xx response body does not satisfy the
// operation's success condition. Raw holds the decoded-as-is response body.
type EnvelopeError struct {
	Raw json.RawMessage
}

func (e *EnvelopeError) Error() string {
	if msg := envelopeMessage(e.Raw); msg != "" {
		return msg
	}
	return UnknownErrorMessage
}

// Message converts any failure returned by the client into a single
// human-readable string. A nil error yields "".
//
// Priority: the controller's error.message in a transport error body, then the
// transport error itself, then a generic error's text, then error.message or
// message inside an envelope error. Empty results become UnknownErrorMessage.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var (
		message      string
		transportErr *TransportError
		envelopeErr  *EnvelopeError
	)

	switch {
	case errors.As(err, &transportErr):
		message = nestedString(transportErr.Body, "error", "message")
		if message == "" {
			message = transportErr.Error()
		}
	case errors.As(err, &envelopeErr):
		message = envelopeMessage(envelopeErr.Raw)
	default:
		message = err.Error()
	}

	if message == "" {
		return UnknownErrorMessage
	}
	return message
}

func envelopeMessage(raw json.RawMessage) string {
	if msg := nestedString(raw, "error", "message"); msg != "" {
		return msg
	}
	return nestedString(raw, "message")
}

// nestedString walks a JSON object along keys and returns the string found
// there, or "" if the body is not an object or the value is not a string.
func nestedString(raw []byte, keys ...string) string {
	if len(raw) == 0 {
		return ""
	}

	var current any
	if err := json.Unmarshal(raw, &current); err != nil {
		return ""
	}

	for _, key := range keys {
		obj, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current = obj[key]
	}

	s, _ := current.(string)
	return s
}
