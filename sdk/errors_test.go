package sdk

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
		{
			name: "transport error with controller message",
			err: &TransportError{
				StatusCode: 404,
				Body:       []byte(`{"error":{"message":"namespace not found"}}`),
			},
			want: "namespace not found",
		},
		{
			name: "transport error without body",
			err:  &TransportError{StatusCode: 500},
			want: "Request failed with status code 500",
		},
		{
			name: "transport error with non-JSON body",
			err:  &TransportError{StatusCode: 502, Body: []byte("bad gateway")},
			want: "Request failed with status code 502",
		},
		{
			name: "transport error with empty message",
			err: &TransportError{
				StatusCode: 400,
				Body:       []byte(`{"error":{"message":""}}`),
			},
			want: "Request failed with status code 400",
		},
		{
			name: "transport error with non-string message",
			err: &TransportError{
				StatusCode: 400,
				Body:       []byte(`{"error":{"message":42}}`),
			},
			want: "Request failed with status code 400",
		},
		{
			name: "network failure",
			err:  &TransportError{Err: errors.New("dial tcp 127.0.0.1:9379: connect: connection refused")},
			want: "dial tcp 127.0.0.1:9379: connect: connection refused",
		},
		{
			name: "wrapped transport error",
			err: fmt.Errorf("create namespace: %w", &TransportError{
				StatusCode: 409,
				Body:       []byte(`{"error":{"message":"the entry already existed"}}`),
			}),
			want: "the entry already existed",
		},
		{
			name: "envelope error with error.message",
			err:  &EnvelopeError{Raw: []byte(`{"error":{"message":"X"}}`)},
			want: "X",
		},
		{
			name: "envelope error with top-level message",
			err:  &EnvelopeError{Raw: []byte(`{"message":"slot is migrating"}`)},
			want: "slot is migrating",
		},
		{
			name: "envelope error prefers error.message",
			err:  &EnvelopeError{Raw: []byte(`{"error":{"message":"inner"},"message":"outer"}`)},
			want: "inner",
		},
		{
			name: "envelope error without message",
			err:  &EnvelopeError{Raw: []byte(`{"error":{}}`)},
			want: UnknownErrorMessage,
		},
		{
			name: "envelope error with empty body",
			err:  &EnvelopeError{},
			want: UnknownErrorMessage,
		},
		{
			name: "generic error",
			err:  context.DeadlineExceeded,
			want: "context deadline exceeded",
		},
		{
			name: "generic error with empty text",
			err:  errors.New(""),
			want: UnknownErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	err := &TransportError{Err: context.Canceled}
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, (&TransportError{StatusCode: 500}).Unwrap())
}

func TestEnvelopeError_Error(t *testing.T) {
	assert.Equal(t, "boom", (&EnvelopeError{Raw: []byte(`{"message":"boom"}`)}).Error())
	assert.Equal(t, UnknownErrorMessage, (&EnvelopeError{Raw: []byte(`{"data":null}`)}).Error())
}
