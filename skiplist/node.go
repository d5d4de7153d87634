package skiplist

// nilIndex marks the end of a level. The header lives at this index and is
// never the target of a forward link, so the two meanings cannot collide.
const (
	headerIndex int32 = 0
	nilIndex    int32 = 0
)

// Node 跳表节点
// forward[i] 是第 i 层的后继节点在 arena 中的下标，长度为 level+1
type Node[K, V any] struct {
	key     K
	value   V
	forward []int32
}

func newNode[K, V any](key K, value V, level int) Node[K, V] {
	return Node[K, V]{
		key:     key,
		value:   value,
		forward: make([]int32, level+1),
	}
}

func (n *Node[K, V]) Key() K {
	return n.key
}

func (n *Node[K, V]) Value() V {
	return n.value
}

func (n *Node[K, V]) SetValue(value V) {
	n.value = value
}

// Level is the highest level the node is linked into.
func (n *Node[K, V]) Level() int {
	return len(n.forward) - 1
}
