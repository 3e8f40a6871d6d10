package routing

import (
	"hash/fnv"
	"sort"
	"sync"
)

// ringNode is one peer position on the ring.
type ringNode struct {
	hash uint32
	id   string
}

// Ring maps a target name to the group of peers closest to it. Same peers,
// same target, same group: selection is deterministic so tests can predict
// which fake vaults service a request.
type Ring struct {
	mu    sync.RWMutex
	nodes []ringNode
}

// NewRing returns an empty ring.
func NewRing() *Ring {
	return &Ring{}
}

// SetNodes rebuilds the ring with the given peer ids.
func (r *Ring) SetNodes(ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nodes = make([]ringNode, 0, len(ids))
	for _, id := range ids {
		r.nodes = append(r.nodes, ringNode{hash: hashString(id), id: id})
	}
	sort.Slice(r.nodes, func(i, j int) bool {
		return r.nodes[i].hash < r.nodes[j].hash
	})
}

// AddNode inserts one peer, keeping the ring sorted.
func (r *Ring) AddNode(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := ringNode{hash: hashString(id), id: id}
	idx := sort.Search(len(r.nodes), func(i int) bool {
		return r.nodes[i].hash >= n.hash
	})
	r.nodes = append(r.nodes, ringNode{})
	copy(r.nodes[idx+1:], r.nodes[idx:])
	r.nodes[idx] = n
}

// Len returns the number of peers on the ring.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// GroupFor returns up to n distinct peer ids closest to target, walking the
// ring clockwise from the target's hash.
func (r *Ring) GroupFor(target string, n int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.nodes) == 0 || n <= 0 {
		return nil
	}
	if n > len(r.nodes) {
		n = len(r.nodes)
	}

	h := hashString(target)
	start := sort.Search(len(r.nodes), func(i int) bool {
		return r.nodes[i].hash >= h
	})

	group := make([]string, 0, n)
	for i := 0; i < len(r.nodes) && len(group) < n; i++ {
		group = append(group, r.nodes[(start+i)%len(r.nodes)].id)
	}
	return group
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
