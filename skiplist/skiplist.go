// This file is an implementation of the skip list data structure.
// Reference: https://oi-wiki.org/ds/skiplist/
// A skip list keeps its elements sorted in a base linked list (level 0) and
// promotes each element to higher "express lane" levels with probability 1/2
// per level. Search, insert and delete walk down from the highest populated
// level, so all three run in expected O(log n) without any rebalancing.
// Nodes live in an arena and link to each other by index.

package skiplist

import (
	"cmp"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/xmh1011/go-skiplist/log"
)

var (
	ErrKeyExists   = errors.New("skiplist: key already exists")
	ErrKeyNotFound = errors.New("skiplist: key not found")
)

type options struct {
	seed   uint64
	seeded bool
}

type Option func(*options)

// WithSeed makes level generation deterministic.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// SkipList is an ordered map from K to V.
// Insert and Delete hold the write lock for the whole descend-and-splice;
// Search, All, Levels and Dump hold the read lock. The single lock is the
// throughput ceiling under concurrent writers.
type SkipList[K cmp.Ordered, V any] struct {
	mu       sync.RWMutex
	maxLevel int
	level    int // 当前最高层，0 <= level <= maxLevel
	size     int
	arena    *arena[K, V]
	rand     *rand.Rand
}

// New creates an empty list whose nodes may span levels 0..maxLevel.
// It panics if maxLevel < 1.
func New[K cmp.Ordered, V any](maxLevel int, opts ...Option) *SkipList[K, V] {
	if maxLevel < 1 {
		panic("skiplist: maxLevel must be positive")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var src rand.Source
	if o.seeded {
		src = rand.NewPCG(o.seed, o.seed)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	return &SkipList[K, V]{
		maxLevel: maxLevel,
		level:    0,
		arena:    newArena[K, V](maxLevel),
		rand:     rand.New(src),
	}
}

// randomLevel 抛硬币决定新节点的层数，结果在 [1, maxLevel] 之间，
// P(level = k) ≈ 2^-k
func (s *SkipList[K, V]) randomLevel() int {
	lv := 1
	for lv < s.maxLevel && s.rand.IntN(2) == 1 {
		lv++
	}
	return lv
}

// descend walks from the top level down to level 0 and returns the last
// node whose key is below key. If update is non-nil, update[i] receives
// the predecessor at level i.
func (s *SkipList[K, V]) descend(key K, update []int32) int32 {
	curr := headerIndex
	for i := s.level; i >= 0; i-- {
		for {
			next := s.arena.next(curr, i)
			if next == nilIndex || !(s.arena.node(next).key < key) {
				break
			}
			curr = next
		}
		if update != nil {
			update[i] = curr
		}
	}
	return curr
}

// Search returns the value stored under key.
func (s *SkipList[K, V]) Search(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prev := s.descend(key, nil)
	if next := s.arena.next(prev, 0); next != nilIndex && s.arena.node(next).key == key {
		return s.arena.node(next).value, true
	}
	var zero V
	return zero, false
}

// Insert adds key if it is absent. An existing key keeps its value and
// ErrKeyExists is returned.
func (s *SkipList[K, V]) Insert(key K, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	update := make([]int32, s.maxLevel+1)
	prev := s.descend(key, update)
	if next := s.arena.next(prev, 0); next != nilIndex && s.arena.node(next).key == key {
		log.Debugf("key %v exists", key)
		return ErrKeyExists
	}

	lv := s.randomLevel()
	if lv > s.level {
		// 新增的层级以 header 作为前驱
		for i := s.level + 1; i <= lv; i++ {
			update[i] = headerIndex
		}
		s.level = lv
	}

	idx := s.arena.alloc(key, value, lv)
	node := s.arena.node(idx)
	for i := 0; i <= lv; i++ {
		pred := s.arena.node(update[i])
		node.forward[i] = pred.forward[i]
		pred.forward[i] = idx
	}
	s.size++

	log.Debugf("inserted key %v at level %d", key, lv)
	return nil
}

// Delete unlinks key from every level it occupies and lowers the list
// level while the top level is empty.
func (s *SkipList[K, V]) Delete(key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	update := make([]int32, s.maxLevel+1)
	prev := s.descend(key, update)
	target := s.arena.next(prev, 0)
	if target == nilIndex || s.arena.node(target).key != key {
		return ErrKeyNotFound
	}

	node := s.arena.node(target)
	for i := 0; i <= s.level; i++ {
		pred := s.arena.node(update[i])
		// 节点占据的层是从 0 开始连续的，某层断开后更高层也不会指向它
		if pred.forward[i] != target {
			break
		}
		pred.forward[i] = node.forward[i]
	}
	s.arena.release(target)

	for s.level > 0 && s.arena.next(headerIndex, s.level) == nilIndex {
		s.level--
	}
	s.size--

	log.Debugf("deleted key %v", key)
	return nil
}

// Size returns the number of elements; the header is not counted.
func (s *SkipList[K, V]) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Level returns the highest populated level.
func (s *SkipList[K, V]) Level() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level
}

func (s *SkipList[K, V]) MaxLevel() int {
	return s.maxLevel
}
