package fakecontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kvctl.io/kvctl/models"
)

// Controller serves the controller API from memory.
type Controller struct {
	store  *store
	router *gin.Engine
}

// New creates a Controller. A nil logger disables request logging.
func New(logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	ctrl := &Controller{store: newStore(), router: router}
	ctrl.registerRoutes()
	return ctrl
}

// Handler returns the HTTP handler, ready for httptest.NewServer.
func (ctrl *Controller) Handler() http.Handler {
	return ctrl.router
}

func (ctrl *Controller) registerRoutes() {
	v1 := ctrl.router.Group("/api/v1")

	namespaces := v1.Group("/namespaces")
	namespaces.GET("", ctrl.listNamespaces)
	namespaces.POST("", ctrl.createNamespace)
	namespaces.DELETE("/:namespace", ctrl.deleteNamespace)

	clusters := namespaces.Group("/:namespace/clusters")
	clusters.GET("", ctrl.listClusters)
	clusters.POST("", ctrl.createCluster)
	clusters.GET("/:cluster", ctrl.getCluster)
	clusters.DELETE("/:cluster", ctrl.deleteCluster)
	clusters.POST("/:cluster/import", ctrl.importCluster)
	clusters.POST("/:cluster/migrate", ctrl.migrateSlot)

	shards := clusters.Group("/:cluster/shards")
	shards.GET("", ctrl.listShards)
	shards.POST("", ctrl.createShard)
	shards.GET("/:shard", ctrl.getShard)
	shards.DELETE("/:shard", ctrl.deleteShard)

	nodes := shards.Group("/:shard/nodes")
	nodes.GET("", ctrl.listNodes)
	nodes.POST("", ctrl.createNode)
	nodes.DELETE("/:id", ctrl.deleteNode)
}

// bind decodes the JSON body into req, answering 400 on failure.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, models.ErrInvalidRequest)
		return false
	}
	return true
}

func (ctrl *Controller) listNamespaces(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"namespaces": ctrl.store.listNamespaces()})
}

func (ctrl *Controller) createNamespace(c *gin.Context) {
	var req models.NamespaceCreateRequest
	if !bind(c, &req) {
		return
	}
	if err := ctrl.store.createNamespace(req.Namespace); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, "created")
}

func (ctrl *Controller) deleteNamespace(c *gin.Context) {
	if err := ctrl.store.deleteNamespace(c.Param("namespace")); err != nil {
		respondError(c, err)
		return
	}
	respondNoContent(c)
}

func (ctrl *Controller) listClusters(c *gin.Context) {
	names, err := ctrl.store.listClusters(c.Param("namespace"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"clusters": names})
}

func (ctrl *Controller) createCluster(c *gin.Context) {
	var req models.ClusterCreateRequest
	if !bind(c, &req) {
		return
	}
	cluster, err := ctrl.store.createCluster(c.Param("namespace"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"cluster": cluster})
}

func (ctrl *Controller) getCluster(c *gin.Context) {
	cluster, err := ctrl.store.getCluster(c.Param("namespace"), c.Param("cluster"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"cluster": cluster})
}

func (ctrl *Controller) deleteCluster(c *gin.Context) {
	if err := ctrl.store.deleteCluster(c.Param("namespace"), c.Param("cluster")); err != nil {
		respondError(c, err)
		return
	}
	respondNoContent(c)
}

func (ctrl *Controller) importCluster(c *gin.Context) {
	var req models.ClusterImportRequest
	if !bind(c, &req) {
		return
	}
	cluster, err := ctrl.store.importCluster(c.Param("namespace"), c.Param("cluster"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"cluster": cluster})
}

func (ctrl *Controller) migrateSlot(c *gin.Context) {
	var req models.MigrateSlotRequest
	if !bind(c, &req) {
		return
	}
	if err := ctrl.store.migrateSlot(c.Param("namespace"), c.Param("cluster"), req); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "ok")
}

func (ctrl *Controller) listShards(c *gin.Context) {
	shards, err := ctrl.store.listShards(c.Param("namespace"), c.Param("cluster"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"shards": shards})
}

func (ctrl *Controller) createShard(c *gin.Context) {
	var req models.ShardCreateRequest
	if !bind(c, &req) {
		return
	}
	shard, err := ctrl.store.createShard(c.Param("namespace"), c.Param("cluster"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"shard": shard})
}

func (ctrl *Controller) getShard(c *gin.Context) {
	shard, err := ctrl.store.getShard(c.Param("namespace"), c.Param("cluster"), c.Param("shard"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"shard": shard})
}

func (ctrl *Controller) deleteShard(c *gin.Context) {
	if err := ctrl.store.deleteShard(c.Param("namespace"), c.Param("cluster"), c.Param("shard")); err != nil {
		respondError(c, err)
		return
	}
	respondNoContent(c)
}

func (ctrl *Controller) listNodes(c *gin.Context) {
	nodes, err := ctrl.store.listNodes(c.Param("namespace"), c.Param("cluster"), c.Param("shard"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"nodes": nodes})
}

// createNode answers {"data": null} on success, as the controller does.
func (ctrl *Controller) createNode(c *gin.Context) {
	var req models.NodeCreateRequest
	if !bind(c, &req) {
		return
	}
	if err := ctrl.store.createNode(c.Param("namespace"), c.Param("cluster"), c.Param("shard"), req); err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, nil)
}

func (ctrl *Controller) deleteNode(c *gin.Context) {
	err := ctrl.store.deleteNode(c.Param("namespace"), c.Param("cluster"), c.Param("shard"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondNoContent(c)
}
