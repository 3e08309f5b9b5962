package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HeaderRequestID carries the per-call id generated by the client.
const HeaderRequestID = "X-Request-ID"

// maxResponseBody caps how much of a response body is read.
const maxResponseBody = 32 << 20

// Response is a completed 2xx exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs one request against the controller.
// Implementations return *TransportError for network failures and non-2xx statuses.
type Transport interface {
	Do(ctx context.Context, method, path string, body any) (*Response, error)
}

// HTTPTransport is the net/http implementation of Transport.
type HTTPTransport struct {
	// BaseURL is the controller root, e.g. "http://127.0.0.1:9379".
	BaseURL string

	// HTTPClient is the HTTP client used for requests.
	HTTPClient *http.Client
}

type requestIDKey struct{}

// WithRequestID attaches a request id that HTTPTransport sends as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored by WithRequestID, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Do implements Transport.
func (t *HTTPTransport) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if id := RequestIDFromContext(ctx); id != "" {
		req.Header.Set(HeaderRequestID, id)
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer drainAndCloseBody(resp)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: data}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// drainAndCloseBody reads and closes the response body to ensure connection reuse.
func drainAndCloseBody(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}
