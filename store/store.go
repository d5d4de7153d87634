// Store is a skip list bound to a flat dump file.
// Every DumpFile rewrites the whole file with one "key:value" line per entry;
// LoadFile inserts the file's entries into the list. The file is opened and
// closed within each call and nothing guards it against other writers.
// A bloom filter of inserted keys short-circuits lookups of absent keys.

package store

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"

	"github.com/xmh1011/go-skiplist/bloom"
	"github.com/xmh1011/go-skiplist/kv"
	"github.com/xmh1011/go-skiplist/log"
	"github.com/xmh1011/go-skiplist/skiplist"
	"github.com/xmh1011/go-skiplist/util"
)

const (
	defaultFilterItems = 1024
	filterFPRate       = 0.01
	dumpFileMode       = 0644
)

type Store[K cmp.Ordered, V any] struct {
	path  string
	codec kv.Codec[K, V]
	list  *skiplist.SkipList[K, V]

	filterMu sync.Mutex
	filter   *bloom.Filter
	stale    int // 已删除但仍留在过滤器中的 key 数量
}

// Open creates an empty store for the dump file at path. The file is not
// read until LoadFile is called.
func Open[K cmp.Ordered, V any](path string, maxLevel int, codec kv.Codec[K, V], opts ...skiplist.Option) *Store[K, V] {
	return &Store[K, V]{
		path:   path,
		codec:  codec,
		list:   skiplist.New[K, V](maxLevel, opts...),
		filter: bloom.NewWithEstimates(defaultFilterItems, filterFPRate),
	}
}

func (s *Store[K, V]) Path() string {
	return s.path
}

// List exposes the underlying skip list.
func (s *Store[K, V]) List() *skiplist.SkipList[K, V] {
	return s.list
}

func filterKey[K any](key K) []byte {
	return fmt.Appendf(nil, "%v", key)
}

// Put inserts key if absent; skiplist.ErrKeyExists is returned otherwise.
func (s *Store[K, V]) Put(key K, value V) error {
	if err := s.list.Insert(key, value); err != nil {
		return err
	}
	s.filterMu.Lock()
	s.filter.Add(filterKey(key))
	s.filterMu.Unlock()
	return nil
}

func (s *Store[K, V]) Get(key K) (V, bool) {
	s.filterMu.Lock()
	mayContain := s.filter.Test(filterKey(key))
	s.filterMu.Unlock()
	if !mayContain {
		var zero V
		return zero, false
	}
	return s.list.Search(key)
}

// Delete removes key; skiplist.ErrKeyNotFound is returned if it is absent.
func (s *Store[K, V]) Delete(key K) error {
	if err := s.list.Delete(key); err != nil {
		return err
	}

	s.filterMu.Lock()
	defer s.filterMu.Unlock()
	s.stale++
	if s.stale > s.list.Size() {
		s.rebuildFilterLocked()
	}
	return nil
}

func (s *Store[K, V]) Size() int {
	return s.list.Size()
}

// rebuildFilterLocked resizes the filter for the live keys and drops the
// bits left behind by deletes. Caller holds filterMu.
func (s *Store[K, V]) rebuildFilterLocked() {
	n := max(uint(s.list.Size())*2, defaultFilterItems)
	s.filter = bloom.NewWithEstimates(n, filterFPRate)
	for k := range s.list.All() {
		s.filter.Add(filterKey(k))
	}
	log.Debugf("rebuilt key filter after %d deletes, %d live keys", s.stale, s.list.Size())
	s.stale = 0
}

// DumpFile overwrites the dump file with the current contents.
func (s *Store[K, V]) DumpFile() error {
	if err := util.EnsureParentDir(s.path); err != nil {
		log.Errorf("create store directory for %s failed: %s", s.path, err.Error())
		return fmt.Errorf("create store directory: %w", err)
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, dumpFileMode)
	if err != nil {
		log.Errorf("open dump file %s failed: %s", s.path, err.Error())
		return fmt.Errorf("open dump file: %w", err)
	}

	if err := s.list.Dump(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("dump to %s: %w", s.path, err)
	}
	if err := file.Close(); err != nil {
		log.Errorf("close dump file %s failed: %s", s.path, err.Error())
		return fmt.Errorf("close dump file: %w", err)
	}

	log.WithField("path", s.path).Infof("dumped %d entries", s.list.Size())
	return nil
}

// LoadFile inserts every well-formed line of the dump file. Keys already in
// the store keep their values.
func (s *Store[K, V]) LoadFile() error {
	file, err := os.Open(s.path)
	if err != nil {
		log.Errorf("open dump file %s failed: %s", s.path, err.Error())
		return fmt.Errorf("open dump file: %w", err)
	}
	defer file.Close()

	before := s.list.Size()
	if err := s.list.Restore(file, s.codec); err != nil {
		return fmt.Errorf("load %s: %w", s.path, err)
	}

	s.filterMu.Lock()
	s.rebuildFilterLocked()
	s.filterMu.Unlock()

	log.WithField("path", s.path).Infof("loaded %d entries", s.list.Size()-before)
	return nil
}

// Display renders one table row per level, lowest level first.
func (s *Store[K, V]) Display(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Level", "Entries"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)

	for i, pairs := range s.list.Levels() {
		entries := make([]string, 0, len(pairs))
		for _, p := range pairs {
			entries = append(entries, fmt.Sprintf("%v:%v", p.Key, p.Value))
		}
		table.Append([]string{fmt.Sprintf("Level %d", i), strings.Join(entries, "; ")})
	}
	table.SetFooter([]string{"Size", fmt.Sprintf("%d", s.list.Size())})
	table.Render()
}

// IsExists reports whether err is the insert-if-absent status.
func IsExists(err error) bool {
	return errors.Is(err, skiplist.ErrKeyExists)
}

// IsNotFound reports whether err is the delete-of-absent-key status.
func IsNotFound(err error) bool {
	return errors.Is(err, skiplist.ErrKeyNotFound)
}
