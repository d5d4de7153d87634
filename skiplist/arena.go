package skiplist

import "math"

// arena owns every node of a list, header included, and hands out stable
// int32 indices. Freed slots are zeroed and reused by later allocations.
type arena[K, V any] struct {
	nodes []Node[K, V]
	free  []int32
}

func newArena[K, V any](maxLevel int) *arena[K, V] {
	var zeroK K
	var zeroV V
	return &arena[K, V]{
		nodes: []Node[K, V]{newNode(zeroK, zeroV, maxLevel)},
	}
}

func (a *arena[K, V]) node(idx int32) *Node[K, V] {
	return &a.nodes[idx]
}

// next returns the successor of idx at level.
func (a *arena[K, V]) next(idx int32, level int) int32 {
	return a.nodes[idx].forward[level]
}

func (a *arena[K, V]) alloc(key K, value V, level int) int32 {
	n := newNode(key, value, level)
	if last := len(a.free) - 1; last >= 0 {
		idx := a.free[last]
		a.free = a.free[:last]
		a.nodes[idx] = n
		return idx
	}
	if len(a.nodes) >= math.MaxInt32 {
		panic("skiplist: arena exhausted")
	}
	a.nodes = append(a.nodes, n)
	return int32(len(a.nodes) - 1)
}

// release drops the node's key and value so they can be collected.
func (a *arena[K, V]) release(idx int32) {
	a.nodes[idx] = Node[K, V]{}
	a.free = append(a.free, idx)
}

// live is the number of allocated, non-header nodes.
func (a *arena[K, V]) live() int {
	return len(a.nodes) - 1 - len(a.free)
}
