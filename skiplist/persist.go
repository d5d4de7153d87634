package skiplist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xmh1011/go-skiplist/kv"
	"github.com/xmh1011/go-skiplist/log"
)

// Dump writes every entry as a "key:value" line in ascending key order.
func (s *SkipList[K, V]) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for k, v := range s.All() {
		if err := (kv.Pair[K, V]{Key: k, Value: v}).EncodeTo(bw); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		log.Errorf("flush dump failed: %s", err.Error())
		return fmt.Errorf("flush dump: %w", err)
	}
	return nil
}

// Restore inserts every well-formed line of r. Lines that are empty, lack
// a delimiter, have an empty segment or fail to parse are skipped; keys
// already present keep their current value. Only read errors are returned.
func (s *SkipList[K, V]) Restore(r io.Reader, codec kv.Codec[K, V]) error {
	br := bufio.NewReader(r)
	lineNo := 0
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			log.Errorf("read dump line %d failed: %s", lineNo+1, err.Error())
			return fmt.Errorf("read dump line %d: %w", lineNo+1, err)
		}
		if line != "" {
			lineNo++
			s.restoreLine(strings.TrimSuffix(line, "\n"), lineNo, codec)
		}
		if err != nil {
			return nil
		}
	}
}

func (s *SkipList[K, V]) restoreLine(line string, lineNo int, codec kv.Codec[K, V]) {
	pair, ok, err := codec.DecodeLine(line)
	if err != nil {
		log.Warnf("skip dump line %d: %s", lineNo, err.Error())
		return
	}
	if !ok {
		log.Debugf("skip malformed dump line %d: %q", lineNo, line)
		return
	}
	if err := s.Insert(pair.Key, pair.Value); errors.Is(err, ErrKeyExists) {
		log.Debugf("skip duplicate key %v on dump line %d", pair.Key, lineNo)
	}
}
