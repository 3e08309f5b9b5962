package fakecontroller

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"kvctl.io/kvctl/models"
)

// SlotCount is the size of the keyspace partition, matching Redis Cluster.
const SlotCount = 16384

type node struct {
	ID        string `json:"id"`
	Addr      string `json:"addr"`
	Role      string `json:"role"`
	Password  string `json:"password"`
	CreatedAt int64  `json:"created_at"`
}

type shardView struct {
	Nodes            []node   `json:"nodes"`
	SlotRanges       []string `json:"slot_ranges"`
	ImportSlot       int      `json:"import_slot"`
	MigratingSlot    int      `json:"migrating_slot"`
	TargetShardIndex int      `json:"target_shard_index"`
}

type clusterView struct {
	Name    string      `json:"name"`
	Version int64       `json:"version"`
	Shards  []shardView `json:"shards"`
}

type cluster struct {
	name    string
	version int64
	shards  [][]node
	// owners maps each slot to the index of the shard serving it.
	owners [SlotCount]int
}

// store is the controller state. All methods are safe for concurrent use.
type store struct {
	mu         sync.Mutex
	namespaces map[string]map[string]*cluster
}

func newStore() *store {
	return &store{namespaces: make(map[string]map[string]*cluster)}
}

func newNode(addr, role, password string) node {
	return node{
		ID:        strings.ReplaceAll(uuid.NewString(), "-", ""),
		Addr:      addr,
		Role:      role,
		Password:  password,
		CreatedAt: time.Now().Unix(),
	}
}

// newShard builds a shard whose first node is the master.
func newShard(addrs []string, password string) []node {
	nodes := make([]node, 0, len(addrs))
	for i, addr := range addrs {
		role := models.RoleSlave
		if i == 0 {
			role = models.RoleMaster
		}
		nodes = append(nodes, newNode(addr, role, password))
	}
	return nodes
}

func (s *store) listNamespaces() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.namespaces))
	for name := range s.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *store) createNamespace(name string) error {
	if name == "" {
		return fmt.Errorf("%w: namespace is required", models.ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.namespaces[name]; ok {
		return models.ErrAlreadyExists
	}
	s.namespaces[name] = make(map[string]*cluster)
	return nil
}

func (s *store) deleteNamespace(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.namespaces[name]; !ok {
		return models.ErrNamespaceNotFound
	}
	delete(s.namespaces, name)
	return nil
}

// namespace must be called with s.mu held.
func (s *store) namespace(name string) (map[string]*cluster, error) {
	clusters, ok := s.namespaces[name]
	if !ok {
		return nil, models.ErrNamespaceNotFound
	}
	return clusters, nil
}

// cluster must be called with s.mu held.
func (s *store) cluster(namespace, name string) (*cluster, error) {
	clusters, err := s.namespace(namespace)
	if err != nil {
		return nil, err
	}
	c, ok := clusters[name]
	if !ok {
		return nil, models.ErrClusterNotFound
	}
	return c, nil
}

func (s *store) createCluster(namespace string, req models.ClusterCreateRequest) (clusterView, error) {
	switch {
	case req.Name == "":
		return clusterView{}, fmt.Errorf("%w: cluster name is required", models.ErrInvalidRequest)
	case len(req.Nodes) == 0:
		return clusterView{}, fmt.Errorf("%w: nodes should NOT be empty", models.ErrInvalidRequest)
	case req.Replicas < 1:
		return clusterView{}, fmt.Errorf("%w: replicas should be at least 1", models.ErrInvalidRequest)
	case len(req.Nodes)%req.Replicas != 0:
		return clusterView{}, fmt.Errorf("%w: the number of nodes must be a multiple of replicas", models.ErrInvalidRequest)
	}
	if err := checkDuplicateAddrs(req.Nodes); err != nil {
		return clusterView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clusters, err := s.namespace(namespace)
	if err != nil {
		return clusterView{}, err
	}
	if _, ok := clusters[req.Name]; ok {
		return clusterView{}, models.ErrAlreadyExists
	}

	c := &cluster{name: req.Name, version: 1}
	shardCount := len(req.Nodes) / req.Replicas
	for i := 0; i < shardCount; i++ {
		c.shards = append(c.shards, newShard(req.Nodes[i*req.Replicas:(i+1)*req.Replicas], req.Password))
	}
	for slot := 0; slot < SlotCount; slot++ {
		c.owners[slot] = slot * shardCount / SlotCount
	}

	clusters[req.Name] = c
	return c.view(), nil
}

func (s *store) importCluster(namespace, name string, req models.ClusterImportRequest) (clusterView, error) {
	if len(req.Nodes) == 0 {
		return clusterView{}, fmt.Errorf("%w: nodes should NOT be empty", models.ErrInvalidRequest)
	}
	if err := checkDuplicateAddrs(req.Nodes); err != nil {
		return clusterView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clusters, err := s.namespace(namespace)
	if err != nil {
		return clusterView{}, err
	}
	if _, ok := clusters[name]; ok {
		return clusterView{}, models.ErrAlreadyExists
	}

	// All imported nodes form one shard serving every slot.
	c := &cluster{name: name, version: 1, shards: [][]node{newShard(req.Nodes, req.Password)}}
	clusters[name] = c
	return c.view(), nil
}

func (s *store) listClusters(namespace string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clusters, err := s.namespace(namespace)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(clusters))
	for name := range clusters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *store) getCluster(namespace, name string) (clusterView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.cluster(namespace, name)
	if err != nil {
		return clusterView{}, err
	}
	return c.view(), nil
}

func (s *store) deleteCluster(namespace, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clusters, err := s.namespace(namespace)
	if err != nil {
		return err
	}
	if _, ok := clusters[name]; !ok {
		return models.ErrClusterNotFound
	}
	delete(clusters, name)
	return nil
}

func (s *store) migrateSlot(namespace, name string, req models.MigrateSlotRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.cluster(namespace, name)
	if err != nil {
		return err
	}
	if req.Slot < 0 || req.Slot >= SlotCount {
		return fmt.Errorf("%w: slot %d is out of range", models.ErrInvalidRequest, req.Slot)
	}
	if req.Target < 0 || req.Target >= len(c.shards) {
		return fmt.Errorf("%w: target shard %d is out of range", models.ErrInvalidRequest, req.Target)
	}
	if c.owners[req.Slot] == req.Target {
		return fmt.Errorf("%w: slot %d already belongs to shard %d", models.ErrInvalidRequest, req.Slot, req.Target)
	}

	// Data migration completes immediately; slot_only only changes the owner,
	// which here is the same observable result.
	c.owners[req.Slot] = req.Target
	c.version++
	return nil
}

func (s *store) createShard(namespace, name string, req models.ShardCreateRequest) (shardView, error) {
	if len(req.Nodes) == 0 {
		return shardView{}, fmt.Errorf("%w: nodes should NOT be empty", models.ErrInvalidRequest)
	}
	if err := checkDuplicateAddrs(req.Nodes); err != nil {
		return shardView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.cluster(namespace, name)
	if err != nil {
		return shardView{}, err
	}
	for _, addr := range req.Nodes {
		if c.hasAddr(addr) {
			return shardView{}, fmt.Errorf("%w: node %s", models.ErrAlreadyExists, addr)
		}
	}

	c.shards = append(c.shards, newShard(req.Nodes, req.Password))
	c.version++
	return c.shardView(len(c.shards) - 1), nil
}

func (s *store) listShards(namespace, name string) ([]shardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.cluster(namespace, name)
	if err != nil {
		return nil, err
	}
	return c.view().Shards, nil
}

func (s *store) getShard(namespace, name, shard string) (shardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, index, err := s.shard(namespace, name, shard)
	if err != nil {
		return shardView{}, err
	}
	return c.shardView(index), nil
}

func (s *store) deleteShard(namespace, name, shard string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, index, err := s.shard(namespace, name, shard)
	if err != nil {
		return err
	}
	if len(c.slotRanges(index)) > 0 {
		return fmt.Errorf("%w: shard %d still serves slots", models.ErrInvalidRequest, index)
	}

	c.shards = append(c.shards[:index], c.shards[index+1:]...)
	for slot := range c.owners {
		if c.owners[slot] > index {
			c.owners[slot]--
		}
	}
	c.version++
	return nil
}

func (s *store) createNode(namespace, name, shard string, req models.NodeCreateRequest) error {
	if req.Addr == "" {
		return fmt.Errorf("%w: addr is required", models.ErrInvalidRequest)
	}
	if req.Role != models.RoleMaster && req.Role != models.RoleSlave {
		return fmt.Errorf("%w: invalid node role %q", models.ErrInvalidRequest, req.Role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, index, err := s.shard(namespace, name, shard)
	if err != nil {
		return err
	}
	if c.hasAddr(req.Addr) {
		return fmt.Errorf("%w: node %s", models.ErrAlreadyExists, req.Addr)
	}
	if req.Role == models.RoleMaster {
		for _, n := range c.shards[index] {
			if n.Role == models.RoleMaster {
				return fmt.Errorf("%w: shard %d already has a master", models.ErrInvalidRequest, index)
			}
		}
	}

	c.shards[index] = append(c.shards[index], newNode(req.Addr, req.Role, req.Password))
	c.version++
	return nil
}

func (s *store) listNodes(namespace, name, shard string) ([]node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, index, err := s.shard(namespace, name, shard)
	if err != nil {
		return nil, err
	}
	return c.shardView(index).Nodes, nil
}

func (s *store) deleteNode(namespace, name, shard, nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, index, err := s.shard(namespace, name, shard)
	if err != nil {
		return err
	}
	nodes := c.shards[index]
	for i, n := range nodes {
		if n.ID == nodeID {
			c.shards[index] = append(nodes[:i], nodes[i+1:]...)
			c.version++
			return nil
		}
	}
	return models.ErrNodeNotFound
}

// shard resolves a shard index path segment. Must be called with s.mu held.
func (s *store) shard(namespace, name, shard string) (*cluster, int, error) {
	c, err := s.cluster(namespace, name)
	if err != nil {
		return nil, 0, err
	}
	index, err := strconv.Atoi(shard)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: invalid shard index %q", models.ErrInvalidRequest, shard)
	}
	if index < 0 || index >= len(c.shards) {
		return nil, 0, models.ErrShardNotFound
	}
	return c, index, nil
}

func (c *cluster) hasAddr(addr string) bool {
	for _, nodes := range c.shards {
		for _, n := range nodes {
			if n.Addr == addr {
				return true
			}
		}
	}
	return false
}

// slotRanges renders the slots served by shard index as "start-stop" ranges.
func (c *cluster) slotRanges(index int) []string {
	ranges := []string{}
	start := -1
	for slot := 0; slot <= SlotCount; slot++ {
		owned := slot < SlotCount && c.owners[slot] == index
		switch {
		case owned && start < 0:
			start = slot
		case !owned && start >= 0:
			if start == slot-1 {
				ranges = append(ranges, strconv.Itoa(start))
			} else {
				ranges = append(ranges, fmt.Sprintf("%d-%d", start, slot-1))
			}
			start = -1
		}
	}
	return ranges
}

func (c *cluster) shardView(index int) shardView {
	nodes := make([]node, len(c.shards[index]))
	copy(nodes, c.shards[index])
	return shardView{
		Nodes:            nodes,
		SlotRanges:       c.slotRanges(index),
		ImportSlot:       -1,
		MigratingSlot:    -1,
		TargetShardIndex: -1,
	}
}

func (c *cluster) view() clusterView {
	shards := make([]shardView, 0, len(c.shards))
	for i := range c.shards {
		shards = append(shards, c.shardView(i))
	}
	return clusterView{Name: c.name, Version: c.version, Shards: shards}
}

func checkDuplicateAddrs(addrs []string) error {
	seen := make(map[string]struct{}, len(addrs))
	for _, addr := range addrs {
		if _, ok := seen[addr]; ok {
			return fmt.Errorf("%w: duplicate node %s", models.ErrInvalidRequest, addr)
		}
		seen[addr] = struct{}{}
	}
	return nil
}
