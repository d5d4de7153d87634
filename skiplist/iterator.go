package skiplist

import (
	"iter"

	"github.com/xmh1011/go-skiplist/kv"
)

// All returns an ascending, restartable sequence over level 0.
// The read lock is held while the sequence runs, so the loop body must not
// call Insert or Delete on the same list.
func (s *SkipList[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		s.mu.RLock()
		defer s.mu.RUnlock()

		for curr := s.arena.next(headerIndex, 0); curr != nilIndex; curr = s.arena.next(curr, 0) {
			n := s.arena.node(curr)
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

// Pairs collects All into a slice.
func (s *SkipList[K, V]) Pairs() []kv.Pair[K, V] {
	pairs := make([]kv.Pair[K, V], 0, s.Size())
	for k, v := range s.All() {
		pairs = append(pairs, kv.Pair[K, V]{Key: k, Value: v})
	}
	return pairs
}

// Levels returns the pairs linked at each level, from level 0 up to the
// current level.
func (s *SkipList[K, V]) Levels() [][]kv.Pair[K, V] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	levels := make([][]kv.Pair[K, V], s.level+1)
	for i := 0; i <= s.level; i++ {
		for curr := s.arena.next(headerIndex, i); curr != nilIndex; curr = s.arena.next(curr, i) {
			n := s.arena.node(curr)
			levels[i] = append(levels[i], kv.Pair[K, V]{Key: n.key, Value: n.value})
		}
	}
	return levels
}
