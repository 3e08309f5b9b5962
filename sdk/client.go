package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"kvctl.io/kvctl/internal/logging"
	"kvctl.io/kvctl/internal/metrics"
	"kvctl.io/kvctl/models"
)

// apiPrefix is prepended to every resource path.
const apiPrefix = "/api/v1"

// Client is the SDK client for the Kvrocks controller REST API.
// Every method issues exactly one request; the client keeps no per-call state
// and is safe for concurrent use.
type Client struct {
	transport Transport
	logger    *zap.Logger
	metrics   *metrics.Client
	limiter   *rate.Limiter
}

// NewClient creates a new SDK client with the given configuration.
func NewClient(config ClientConfig) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client := &Client{
		transport: config.Transport,
		logger:    config.Logger.With(zap.String(logging.FieldComponent, "sdk")),
		metrics:   config.Metrics,
	}
	if config.RateLimit > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.Burst)
	}
	return client, nil
}

// successRule decides whether a 2xx envelope means the mutation succeeded.
type successRule int

const (
	// dataPresent: success when the envelope has a non-null data member.
	dataPresent successRule = iota

	// dataAbsent: success when data is missing or null. Deletes answer 204
	// with no body, and node creation answers with a null data member.
	dataAbsent
)

// call describes one API request.
type call struct {
	operation string
	method    string
	path      string
	body      any
	fields    []zap.Field
	requestID string
}

// resourcePath joins escaped segments under the API prefix.
func resourcePath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return apiPrefix + "/" + strings.Join(escaped, "/")
}

// send performs the request and decodes the envelope. The returned raw body is
// kept for EnvelopeError; a body that is empty or not a JSON object decodes to
// an envelope without data.
func (c *Client) send(ctx context.Context, op call) (models.Envelope, json.RawMessage, error) {
	ctx = WithRequestID(ctx, op.requestID)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return models.Envelope{}, nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	resp, err := c.transport.Do(ctx, op.method, op.path, op.body)
	if err != nil {
		return models.Envelope{}, nil, err
	}

	var envelope models.Envelope
	if len(resp.Body) > 0 {
		// Non-object bodies leave the envelope empty.
		_ = json.Unmarshal(resp.Body, &envelope)
	}

	return envelope, json.RawMessage(resp.Body), nil
}

// finish records metrics and logs the outcome of one call.
func (c *Client) finish(op call, start time.Time, err error) {
	elapsed := time.Since(start)

	outcome := metrics.OutcomeSuccess
	var (
		transportErr *TransportError
		envelopeErr  *EnvelopeError
	)
	switch {
	case err == nil:
	case errors.As(err, &transportErr):
		outcome = metrics.OutcomeTransportError
	case errors.As(err, &envelopeErr):
		outcome = metrics.OutcomeEnvelopeError
	default:
		outcome = metrics.OutcomeClientError
	}
	c.metrics.Observe(op.operation, outcome, elapsed)

	fields := append([]zap.Field{
		zap.String(logging.FieldOperation, op.operation),
		zap.String(logging.FieldRequestID, op.requestID),
		zap.String(logging.FieldMethod, op.method),
		zap.String(logging.FieldPath, op.path),
		zap.Int64(logging.FieldDuration, elapsed.Milliseconds()),
	}, op.fields...)
	if transportErr != nil && transportErr.StatusCode != 0 {
		fields = append(fields, zap.Int(logging.FieldStatusCode, transportErr.StatusCode))
	}

	if err != nil {
		c.logger.Warn("API call failed", append(fields, zap.String(logging.FieldError, Message(err)))...)
		return
	}
	c.logger.Debug("API call completed", fields...)
}

// mutate runs a create/delete style call and applies the success rule.
func (c *Client) mutate(ctx context.Context, op call, rule successRule) (err error) {
	op.requestID = uuid.NewString()
	start := time.Now()
	defer func() { c.finish(op, start, err) }()

	envelope, raw, err := c.send(ctx, op)
	if err != nil {
		return err
	}
	// A literal null body has no data member to inspect.
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return &EnvelopeError{Raw: raw}
	}

	ok := envelope.HasData()
	if rule == dataAbsent {
		ok = !ok
	}
	if !ok {
		return &EnvelopeError{Raw: raw}
	}
	return nil
}

// fetchField runs a GET and decodes data.<field> into a T, returning empty when
// the field is absent or null. On failure empty is returned with the error.
func fetchField[T any](ctx context.Context, c *Client, op call, field string, empty T) (result T, err error) {
	op.requestID = uuid.NewString()
	start := time.Now()
	defer func() { c.finish(op, start, err) }()

	envelope, raw, err := c.send(ctx, op)
	if err != nil {
		return empty, err
	}
	if !envelope.HasData() {
		return empty, &EnvelopeError{Raw: raw}
	}

	// A data member that is not an object has no fields.
	var data map[string]json.RawMessage
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return empty, nil
	}

	value, ok := data[field]
	if !ok || string(value) == "null" {
		return empty, nil
	}

	if err := json.Unmarshal(value, &result); err != nil {
		return empty, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return result, nil
}

// ============================================================================
// Namespace Methods
// ============================================================================

// ListNamespaces returns the names of all namespaces.
// A response without data.namespaces yields an empty list.
func (c *Client) ListNamespaces(ctx context.Context) ([]string, error) {
	op := call{
		operation: "list_namespaces",
		method:    http.MethodGet,
		path:      resourcePath("namespaces"),
	}
	return fetchField(ctx, c, op, "namespaces", []string{})
}

// CreateNamespace creates a namespace with the given name.
func (c *Client) CreateNamespace(ctx context.Context, name string) error {
	op := call{
		operation: "create_namespace",
		method:    http.MethodPost,
		path:      resourcePath("namespaces"),
		body:      models.NamespaceCreateRequest{Namespace: name},
		fields:    []zap.Field{zap.String(logging.FieldNamespace, name)},
	}
	return c.mutate(ctx, op, dataPresent)
}

// DeleteNamespace removes a namespace.
func (c *Client) DeleteNamespace(ctx context.Context, name string) error {
	op := call{
		operation: "delete_namespace",
		method:    http.MethodDelete,
		path:      resourcePath("namespaces", name),
		fields:    []zap.Field{zap.String(logging.FieldNamespace, name)},
	}
	return c.mutate(ctx, op, dataAbsent)
}

// ============================================================================
// Cluster Methods
// ============================================================================

// CreateCluster creates a cluster in namespace from the given node addresses,
// grouping them into shards of req.Replicas nodes.
func (c *Client) CreateCluster(ctx context.Context, namespace string, req models.ClusterCreateRequest) error {
	op := call{
		operation: "create_cluster",
		method:    http.MethodPost,
		path:      resourcePath("namespaces", namespace, "clusters"),
		body:      req,
		fields: []zap.Field{
			zap.String(logging.FieldNamespace, namespace),
			zap.String(logging.FieldCluster, req.Name),
		},
	}
	return c.mutate(ctx, op, dataPresent)
}

// ListClusters returns the names of the clusters in namespace.
func (c *Client) ListClusters(ctx context.Context, namespace string) ([]string, error) {
	op := call{
		operation: "list_clusters",
		method:    http.MethodGet,
		path:      resourcePath("namespaces", namespace, "clusters"),
		fields:    []zap.Field{zap.String(logging.FieldNamespace, namespace)},
	}
	return fetchField(ctx, c, op, "clusters", []string{})
}

// GetCluster returns data.cluster for the named cluster, or an empty Cluster
// if the field is absent.
func (c *Client) GetCluster(ctx context.Context, namespace, cluster string) (*models.Cluster, error) {
	op := call{
		operation: "get_cluster",
		method:    http.MethodGet,
		path:      resourcePath("namespaces", namespace, "clusters", cluster),
		fields: []zap.Field{
			zap.String(logging.FieldNamespace, namespace),
			zap.String(logging.FieldCluster, cluster),
		},
	}
	return fetchField(ctx, c, op, "cluster", &models.Cluster{})
}

// DeleteCluster removes a cluster from namespace.
func (c *Client) DeleteCluster(ctx context.Context, namespace, cluster string) error {
	op := call{
		operation: "delete_cluster",
		method:    http.MethodDelete,
		path:      resourcePath("namespaces", namespace, "clusters", cluster),
		fields: []zap.Field{
			zap.String(logging.FieldNamespace, namespace),
			zap.String(logging.FieldCluster, cluster),
		},
	}
	return c.mutate(ctx, op, dataAbsent)
}

// ImportCluster registers an already running cluster by probing its nodes.
func (c *Client) ImportCluster(ctx context.Context, namespace, cluster string, req models.ClusterImportRequest) error {
	op := call{
		operation: "import_cluster",
		method:    http.MethodPost,
		path:      resourcePath("namespaces", namespace, "clusters", cluster, "import"),
		body:      req,
		fields: []zap.Field{
			zap.String(logging.FieldNamespace, namespace),
			zap.String(logging.FieldCluster, cluster),
		},
	}
	return c.mutate(ctx, op, dataPresent)
}

// MigrateSlot moves slot to the shard at index target. With slotOnly set only
// the slot ownership changes and no data is migrated.
func (c *Client) MigrateSlot(ctx context.Context, namespace, cluster string, target, slot int, slotOnly bool) error {
	op := call{
		operation: "migrate_slot",
		method:    http.MethodPost,
		path:      resourcePath("namespaces", namespace, "clusters", cluster, "migrate"),
		body: models.MigrateSlotRequest{
			Target:   target,
			Slot:     slot,
			SlotOnly: slotOnly,
		},
		fields: []zap.Field{
			zap.String(logging.FieldNamespace, namespace),
			zap.String(logging.FieldCluster, cluster),
			zap.Int("slot", slot),
			zap.Int("target", target),
		},
	}
	return c.mutate(ctx, op, dataPresent)
}

// ============================================================================
// Shard Methods
// ============================================================================

// CreateShard adds a shard built from req.Nodes to a cluster.
func (c *Client) CreateShard(ctx context.Context, namespace, cluster string, req models.ShardCreateRequest) error {
	op := call{
		operation: "create_shard",
		method:    http.MethodPost,
		path:      resourcePath("namespaces", namespace, "clusters", cluster, "shards"),
		body:      req,
		fields: []zap.Field{
			zap.String(logging.FieldNamespace, namespace),
			zap.String(logging.FieldCluster, cluster),
		},
	}
	return c.mutate(ctx, op, dataPresent)
}

// GetShard returns data.shard as an opaque object, empty if absent.
func (c *Client) GetShard(ctx context.Context, namespace, cluster, shard string) (models.Object, error) {
	op := call{
		operation: "get_shard",
		method:    http.MethodGet,
		path:      resourcePath("namespaces", namespace, "clusters", cluster, "shards", shard),
		fields: []zap.Field{
			zap.String(logging.FieldNamespace, namespace),
			zap.String(logging.FieldCluster, cluster),
			zap.String(logging.FieldShard, shard),
		},
	}
	return fetchField(ctx, c, op, "shard", models.Object{})
}

// ListShards returns data.shards, empty if absent.
func (c *Client) ListShards(ctx context.Context, namespace, cluster string) ([]models.Object, error) {
	op := call{
		operation: "list_shards",
		method:    http.MethodGet,
		path:      resourcePath("namespaces", namespace, "clusters", cluster, "shards"),
		fields: []zap.Field{
			zap.String(logging.FieldNamespace, namespace),
			zap.String(logging.FieldCluster, cluster),
		},
	}
	return fetchField(ctx, c, op, "shards", []models.Object{})
}

// DeleteShard removes a shard from a cluster.
func (c *Client) DeleteShard(ctx context.Context, namespace, cluster, shard string) error {
	op := call{
		operation: "delete_shard",
		method:    http.MethodDelete,
		path:      resourcePath("namespaces", namespace, "clusters", cluster, "shards", shard),
		fields: []zap.Field{
			zap.String(logging.FieldNamespace, namespace),
			zap.String(logging.FieldCluster, cluster),
			zap.String(logging.FieldShard, shard),
		},
	}
	return c.mutate(ctx, op, dataAbsent)
}

// ============================================================================
// Node Methods
// ============================================================================

// CreateNode adds a node to a shard.
//
// Unlike the other create calls, success is a response whose data member is
// absent or null; a response carrying data is reported as a failure.
func (c *Client) CreateNode(ctx context.Context, namespace, cluster, shard string, req models.NodeCreateRequest) error {
	op := call{
		operation: "create_node",
		method:    http.MethodPost,
		path:      resourcePath("namespaces", namespace, "clusters", cluster, "shards", shard, "nodes"),
		body:      req,
		fields: []zap.Field{
			zap.String(logging.FieldNamespace, namespace),
			zap.String(logging.FieldCluster, cluster),
			zap.String(logging.FieldShard, shard),
		},
	}
	return c.mutate(ctx, op, dataAbsent)
}

// ListNodes returns data.nodes, empty if absent.
func (c *Client) ListNodes(ctx context.Context, namespace, cluster, shard string) ([]models.Object, error) {
	op := call{
		operation: "list_nodes",
		method:    http.MethodGet,
		path:      resourcePath("namespaces", namespace, "clusters", cluster, "shards", shard, "nodes"),
		fields: []zap.Field{
			zap.String(logging.FieldNamespace, namespace),
			zap.String(logging.FieldCluster, cluster),
			zap.String(logging.FieldShard, shard),
		},
	}
	return fetchField(ctx, c, op, "nodes", []models.Object{})
}

// DeleteNode removes a node from a shard.
func (c *Client) DeleteNode(ctx context.Context, namespace, cluster, shard, nodeID string) error {
	op := call{
		operation: "delete_node",
		method:    http.MethodDelete,
		path:      resourcePath("namespaces", namespace, "clusters", cluster, "shards", shard, "nodes", nodeID),
		fields: []zap.Field{
			zap.String(logging.FieldNamespace, namespace),
			zap.String(logging.FieldCluster, cluster),
			zap.String(logging.FieldShard, shard),
			zap.String(logging.FieldNodeID, nodeID),
		},
	}
	return c.mutate(ctx, op, dataAbsent)
}
