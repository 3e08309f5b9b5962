package fakecontroller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvctl.io/kvctl/models"
)

// do sends one request straight to the router and decodes the JSON body, if any.
func do(t *testing.T, ctrl *Controller, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ctrl.Handler().ServeHTTP(rec, req)

	if rec.Body.Len() == 0 {
		return rec.Code, nil
	}
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	return rec.Code, decoded
}

func errorMessage(t *testing.T, body map[string]any) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "missing error envelope: %v", body)
	msg, _ := errObj["message"].(string)
	return msg
}

func seedCluster(t *testing.T, ctrl *Controller) {
	t.Helper()
	status, _ := do(t, ctrl, http.MethodPost, "/api/v1/namespaces", models.NamespaceCreateRequest{Namespace: "ns1"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = do(t, ctrl, http.MethodPost, "/api/v1/namespaces/ns1/clusters", models.ClusterCreateRequest{
		Name:     "c1",
		Nodes:    []string{"127.0.0.1:6666", "127.0.0.1:6667", "127.0.0.1:6668", "127.0.0.1:6669"},
		Replicas: 2,
		Password: "secret",
	})
	require.Equal(t, http.StatusCreated, status)
}

func TestController_Namespaces(t *testing.T) {
	ctrl := New(nil)

	status, body := do(t, ctrl, http.MethodGet, "/api/v1/namespaces", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"namespaces": []any{}}, body["data"])

	status, body = do(t, ctrl, http.MethodPost, "/api/v1/namespaces", models.NamespaceCreateRequest{Namespace: "ns1"})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "created", body["data"])

	status, body = do(t, ctrl, http.MethodPost, "/api/v1/namespaces", models.NamespaceCreateRequest{Namespace: "ns1"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, models.ErrAlreadyExists.Error(), errorMessage(t, body))

	status, body = do(t, ctrl, http.MethodDelete, "/api/v1/namespaces/ns1", nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Nil(t, body)

	status, body = do(t, ctrl, http.MethodDelete, "/api/v1/namespaces/ns1", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.ErrNamespaceNotFound.Error(), errorMessage(t, body))
}

func TestController_CreateClusterValidation(t *testing.T) {
	ctrl := New(nil)
	do(t, ctrl, http.MethodPost, "/api/v1/namespaces", models.NamespaceCreateRequest{Namespace: "ns1"})

	tests := []struct {
		name string
		req  models.ClusterCreateRequest
		want int
	}{
		{name: "missing name", req: models.ClusterCreateRequest{Nodes: []string{"a:1"}, Replicas: 1}, want: http.StatusBadRequest},
		{name: "no nodes", req: models.ClusterCreateRequest{Name: "c", Replicas: 1}, want: http.StatusBadRequest},
		{name: "zero replicas", req: models.ClusterCreateRequest{Name: "c", Nodes: []string{"a:1"}}, want: http.StatusBadRequest},
		{name: "not a multiple", req: models.ClusterCreateRequest{Name: "c", Nodes: []string{"a:1", "b:1", "c:1"}, Replicas: 2}, want: http.StatusBadRequest},
		{name: "duplicate node", req: models.ClusterCreateRequest{Name: "c", Nodes: []string{"a:1", "a:1"}, Replicas: 1}, want: http.StatusBadRequest},
		{name: "valid", req: models.ClusterCreateRequest{Name: "c", Nodes: []string{"a:1"}, Replicas: 1}, want: http.StatusCreated},
		{name: "exists", req: models.ClusterCreateRequest{Name: "c", Nodes: []string{"a:1"}, Replicas: 1}, want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := do(t, ctrl, http.MethodPost, "/api/v1/namespaces/ns1/clusters", tt.req)
			assert.Equal(t, tt.want, status)
		})
	}

	status, _ := do(t, ctrl, http.MethodPost, "/api/v1/namespaces/missing/clusters",
		models.ClusterCreateRequest{Name: "c", Nodes: []string{"a:1"}, Replicas: 1})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestController_ClusterLayout(t *testing.T) {
	ctrl := New(nil)
	seedCluster(t, ctrl)

	status, body := do(t, ctrl, http.MethodGet, "/api/v1/namespaces/ns1/clusters/c1", nil)
	require.Equal(t, http.StatusOK, status)

	cluster := body["data"].(map[string]any)["cluster"].(map[string]any)
	assert.Equal(t, "c1", cluster["name"])
	assert.Equal(t, 1.0, cluster["version"])

	shards := cluster["shards"].([]any)
	require.Len(t, shards, 2)

	first := shards[0].(map[string]any)
	assert.Equal(t, []any{"0-8191"}, first["slot_ranges"])
	nodes := first["nodes"].([]any)
	require.Len(t, nodes, 2)
	assert.Equal(t, models.RoleMaster, nodes[0].(map[string]any)["role"])
	assert.Equal(t, models.RoleSlave, nodes[1].(map[string]any)["role"])

	second := shards[1].(map[string]any)
	assert.Equal(t, []any{"8192-16383"}, second["slot_ranges"])
}

func TestController_MigrateSlot(t *testing.T) {
	ctrl := New(nil)
	seedCluster(t, ctrl)

	status, body := do(t, ctrl, http.MethodPost, "/api/v1/namespaces/ns1/clusters/c1/migrate",
		models.MigrateSlotRequest{Target: 1, Slot: 0, SlotOnly: true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["data"])

	_, body = do(t, ctrl, http.MethodGet, "/api/v1/namespaces/ns1/clusters/c1/shards", nil)
	shards := body["data"].(map[string]any)["shards"].([]any)
	assert.Equal(t, []any{"1-8191"}, shards[0].(map[string]any)["slot_ranges"])
	assert.Equal(t, []any{"0", "8192-16383"}, shards[1].(map[string]any)["slot_ranges"])

	tests := []struct {
		name string
		req  models.MigrateSlotRequest
	}{
		{name: "already owned", req: models.MigrateSlotRequest{Target: 1, Slot: 0}},
		{name: "slot out of range", req: models.MigrateSlotRequest{Target: 0, Slot: SlotCount}},
		{name: "target out of range", req: models.MigrateSlotRequest{Target: 5, Slot: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, ctrl, http.MethodPost, "/api/v1/namespaces/ns1/clusters/c1/migrate", tt.req)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.NotEmpty(t, errorMessage(t, body))
		})
	}
}

func TestController_ShardsAndNodes(t *testing.T) {
	ctrl := New(nil)
	seedCluster(t, ctrl)

	status, body := do(t, ctrl, http.MethodPost, "/api/v1/namespaces/ns1/clusters/c1/shards",
		models.ShardCreateRequest{Nodes: []string{"127.0.0.1:7000"}, Password: "secret"})
	require.Equal(t, http.StatusCreated, status)
	assert.NotNil(t, body["data"])

	status, body = do(t, ctrl, http.MethodPost, "/api/v1/namespaces/ns1/clusters/c1/shards/2/nodes",
		models.NodeCreateRequest{Addr: "127.0.0.1:7001", Role: models.RoleSlave})
	require.Equal(t, http.StatusCreated, status)
	data, present := body["data"]
	assert.True(t, present)
	assert.Nil(t, data)

	status, _ = do(t, ctrl, http.MethodPost, "/api/v1/namespaces/ns1/clusters/c1/shards/2/nodes",
		models.NodeCreateRequest{Addr: "127.0.0.1:7002", Role: models.RoleMaster})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, ctrl, http.MethodPost, "/api/v1/namespaces/ns1/clusters/c1/shards/2/nodes",
		models.NodeCreateRequest{Addr: "127.0.0.1:7001", Role: models.RoleSlave})
	assert.Equal(t, http.StatusConflict, status)

	_, body = do(t, ctrl, http.MethodGet, "/api/v1/namespaces/ns1/clusters/c1/shards/2/nodes", nil)
	nodes := body["data"].(map[string]any)["nodes"].([]any)
	require.Len(t, nodes, 2)
	nodeID := nodes[1].(map[string]any)["id"].(string)

	status, _ = do(t, ctrl, http.MethodDelete, "/api/v1/namespaces/ns1/clusters/c1/shards/2/nodes/"+nodeID, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = do(t, ctrl, http.MethodDelete, "/api/v1/namespaces/ns1/clusters/c1/shards/2/nodes/"+nodeID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// A shard serving slots cannot be removed; the new one serves none.
	status, _ = do(t, ctrl, http.MethodDelete, "/api/v1/namespaces/ns1/clusters/c1/shards/0", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = do(t, ctrl, http.MethodDelete, "/api/v1/namespaces/ns1/clusters/c1/shards/2", nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, ctrl, http.MethodGet, "/api/v1/namespaces/ns1/clusters/c1/shards/2", nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, ctrl, http.MethodGet, "/api/v1/namespaces/ns1/clusters/c1/shards/x", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	_, body = do(t, ctrl, http.MethodGet, "/api/v1/namespaces/ns1/clusters/c1", nil)
	cluster := body["data"].(map[string]any)["cluster"].(map[string]any)
	assert.Equal(t, 5.0, cluster["version"])
}

func TestController_ImportCluster(t *testing.T) {
	ctrl := New(nil)
	do(t, ctrl, http.MethodPost, "/api/v1/namespaces", models.NamespaceCreateRequest{Namespace: "ns1"})

	status, body := do(t, ctrl, http.MethodPost, "/api/v1/namespaces/ns1/clusters/legacy/import",
		models.ClusterImportRequest{Nodes: []string{"10.0.0.1:6666", "10.0.0.2:6666"}, Password: "pw"})
	require.Equal(t, http.StatusCreated, status)
	cluster := body["data"].(map[string]any)["cluster"].(map[string]any)
	shards := cluster["shards"].([]any)
	require.Len(t, shards, 1)
	assert.Equal(t, []any{"0-16383"}, shards[0].(map[string]any)["slot_ranges"])

	status, _ = do(t, ctrl, http.MethodPost, "/api/v1/namespaces/ns1/clusters/legacy/import",
		models.ClusterImportRequest{Nodes: []string{"10.0.0.3:6666"}})
	assert.Equal(t, http.StatusConflict, status)

	status, body = do(t, ctrl, http.MethodGet, "/api/v1/namespaces/ns1/clusters", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"legacy"}, body["data"].(map[string]any)["clusters"])

	status, _ = do(t, ctrl, http.MethodDelete, "/api/v1/namespaces/ns1/clusters/legacy", nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = do(t, ctrl, http.MethodDelete, "/api/v1/namespaces/ns1/clusters/legacy", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestController_RequestIDEcho(t *testing.T) {
	ctrl := New(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/namespaces", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	ctrl.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/namespaces", nil)
	rec = httptest.NewRecorder()
	ctrl.Handler().ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
