package skiplist

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmh1011/go-skiplist/kv"
)

// checkInvariants walks the arena directly and verifies level ordering,
// empty levels above the current level and the element count.
func checkInvariants[K int | string, V any](t *testing.T, s *SkipList[K, V]) {
	t.Helper()

	for i := 0; i <= s.level; i++ {
		prev := headerIndex
		for curr := s.arena.next(headerIndex, i); curr != nilIndex; curr = s.arena.next(curr, i) {
			require.GreaterOrEqual(t, s.arena.node(curr).Level(), i, "node linked above its own level")
			if prev != headerIndex {
				require.Less(t, s.arena.node(prev).key, s.arena.node(curr).key, "level %d out of order", i)
			}
			prev = curr
		}
	}
	for i := s.level + 1; i <= s.maxLevel; i++ {
		require.Equal(t, nilIndex, s.arena.next(headerIndex, i), "level %d above current level is populated", i)
	}
	if s.level > 0 {
		require.NotEqual(t, nilIndex, s.arena.next(headerIndex, s.level), "current level %d is empty", s.level)
	}

	count := 0
	for curr := s.arena.next(headerIndex, 0); curr != nilIndex; curr = s.arena.next(curr, 0) {
		count++
	}
	require.Equal(t, s.size, count)
	require.Equal(t, s.size, s.arena.live())
}

func TestSkipListScenario(t *testing.T) {
	sl := New[int, string](6, WithSeed(1))

	require.NoError(t, sl.Insert(1, "a"))
	require.NoError(t, sl.Insert(3, "b"))
	require.NoError(t, sl.Insert(7, "c"))
	assert.Equal(t, 3, sl.Size())

	value, found := sl.Search(3)
	assert.True(t, found)
	assert.Equal(t, "b", value)

	_, found = sl.Search(5)
	assert.False(t, found)

	require.NoError(t, sl.Delete(3))
	assert.Equal(t, 2, sl.Size())
	_, found = sl.Search(3)
	assert.False(t, found)

	expected := []kv.Pair[int, string]{{Key: 1, Value: "a"}, {Key: 7, Value: "c"}}
	assert.Equal(t, expected, sl.Pairs())
	checkInvariants(t, sl)
}

func TestSkipListInsertIfAbsent(t *testing.T) {
	sl := New[int, string](6)

	require.NoError(t, sl.Insert(9, "x"))
	err := sl.Insert(9, "y")
	assert.ErrorIs(t, err, ErrKeyExists)

	value, found := sl.Search(9)
	assert.True(t, found)
	assert.Equal(t, "x", value, "existing value must not be overwritten")
	assert.Equal(t, 1, sl.Size())
}

func TestSkipListDeleteMissing(t *testing.T) {
	sl := New[int, string](4)
	assert.ErrorIs(t, sl.Delete(1), ErrKeyNotFound)

	require.NoError(t, sl.Insert(2, "b"))
	assert.ErrorIs(t, sl.Delete(1), ErrKeyNotFound)
	assert.ErrorIs(t, sl.Delete(3), ErrKeyNotFound)
	assert.Equal(t, 1, sl.Size())

	require.NoError(t, sl.Delete(2))
	assert.ErrorIs(t, sl.Delete(2), ErrKeyNotFound)
	assert.Equal(t, 0, sl.Size())
	assert.Equal(t, 0, sl.Level())
}

func TestSkipListStringKeys(t *testing.T) {
	sl := New[string, []byte](8, WithSeed(7))
	pairs := []kv.Pair[string, []byte]{
		{Key: "cherry", Value: []byte("red")},
		{Key: "apple", Value: []byte("fruit")},
		{Key: "banana", Value: []byte("yellow")},
	}
	for _, pair := range pairs {
		require.NoError(t, sl.Insert(pair.Key, pair.Value))
	}

	var keys []string
	for k := range sl.All() {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"apple", "banana", "cherry"}, keys)
	checkInvariants(t, sl)
}

func TestSkipListRandomOperations(t *testing.T) {
	sl := New[int, int](12, WithSeed(42))
	model := make(map[int]int)
	r := rand.New(rand.NewPCG(3, 4))

	for i := 0; i < 5000; i++ {
		key := r.IntN(400)
		switch r.IntN(3) {
		case 0, 1:
			err := sl.Insert(key, i)
			if _, ok := model[key]; ok {
				assert.ErrorIs(t, err, ErrKeyExists)
			} else {
				assert.NoError(t, err)
				model[key] = i
			}
		case 2:
			err := sl.Delete(key)
			if _, ok := model[key]; ok {
				assert.NoError(t, err)
				delete(model, key)
			} else {
				assert.ErrorIs(t, err, ErrKeyNotFound)
			}
		}

		if i%250 == 0 {
			checkInvariants(t, sl)
		}
	}

	checkInvariants(t, sl)
	assert.Equal(t, len(model), sl.Size())
	for key := 0; key < 400; key++ {
		value, found := sl.Search(key)
		expected, ok := model[key]
		assert.Equal(t, ok, found, "key %d", key)
		if ok {
			assert.Equal(t, expected, value, "key %d", key)
		}
	}
}

func TestSkipListLevelShrink(t *testing.T) {
	sl := New[int, int](10, WithSeed(5))
	for i := 0; i < 200; i++ {
		require.NoError(t, sl.Insert(i, i))
	}
	top := sl.Level()
	require.Greater(t, top, 0)

	// 删除最高层的全部节点后，当前层级必须下降
	levels := sl.Levels()
	for _, pair := range levels[top] {
		require.NoError(t, sl.Delete(pair.Key))
	}
	assert.Less(t, sl.Level(), top)
	checkInvariants(t, sl)

	for i := 0; i < 200; i++ {
		_ = sl.Delete(i)
		checkInvariants(t, sl)
	}
	assert.Equal(t, 0, sl.Level())
	assert.Equal(t, 0, sl.Size())
}

func TestSkipListRandomLevel(t *testing.T) {
	sl := New[int, int](16, WithSeed(9))
	const draws = 100000
	counts := make([]int, sl.MaxLevel()+1)
	for i := 0; i < draws; i++ {
		lv := sl.randomLevel()
		require.GreaterOrEqual(t, lv, 1)
		require.LessOrEqual(t, lv, sl.MaxLevel())
		counts[lv]++
	}
	assert.InDelta(t, 0.5, float64(counts[1])/draws, 0.02)
	assert.InDelta(t, 0.25, float64(counts[2])/draws, 0.02)

	capped := New[int, int](1)
	for i := 0; i < 100; i++ {
		assert.Equal(t, 1, capped.randomLevel())
	}
}

func TestSkipListSeedIsDeterministic(t *testing.T) {
	build := func() [][]kv.Pair[int, int] {
		sl := New[int, int](8, WithSeed(11))
		for i := 0; i < 64; i++ {
			require.NoError(t, sl.Insert(i, i))
		}
		return sl.Levels()
	}
	assert.Equal(t, build(), build())
}

func TestNewPanicsOnInvalidMaxLevel(t *testing.T) {
	assert.Panics(t, func() { New[int, int](0) })
	assert.Panics(t, func() { New[int, int](-3) })
	assert.NotPanics(t, func() { New[int, int](1) })
}

func TestArenaReusesReleasedSlots(t *testing.T) {
	sl := New[int, string](4, WithSeed(2))
	for i := 1; i <= 3; i++ {
		require.NoError(t, sl.Insert(i, "v"))
	}
	allocated := len(sl.arena.nodes)

	require.NoError(t, sl.Delete(2))
	require.Len(t, sl.arena.free, 1)
	released := sl.arena.free[0]
	assert.Equal(t, Node[int, string]{}, sl.arena.nodes[released])

	require.NoError(t, sl.Insert(4, "w"))
	assert.Len(t, sl.arena.nodes, allocated)
	assert.Empty(t, sl.arena.free)
	assert.Equal(t, 4, sl.arena.node(released).Key())
	checkInvariants(t, sl)
}

func TestNodeAccessors(t *testing.T) {
	n := newNode(5, "five", 3)
	assert.Equal(t, 5, n.Key())
	assert.Equal(t, "five", n.Value())
	assert.Equal(t, 3, n.Level())
	assert.Len(t, n.forward, 4)

	n.SetValue("cinq")
	assert.Equal(t, "cinq", n.Value())
}

func TestSkipListConcurrentAccess(t *testing.T) {
	sl := New[int, int](16)
	const writers = 8
	const perWriter = 500

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				assert.NoError(t, sl.Insert(base+i, i))
			}
			for i := 0; i < perWriter; i += 2 {
				assert.NoError(t, sl.Delete(base+i))
			}
		}(w * perWriter)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				sl.Search(i)
				prev := -1
				ordered := true
				for k := range sl.All() {
					ordered = ordered && k > prev
					prev = k
				}
				assert.True(t, ordered, "traversal out of order")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter/2, sl.Size())
	checkInvariants(t, sl)
}
