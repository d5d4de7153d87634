// 定义 kv 键值对和落盘的行格式
// 每条记录占一行，key 与 value 之间用第一个 ':' 分隔
/*
┌─────┬───┬───────┬────┐
│ key │ : │ value │ \n │
└─────┴───┴───────┴────┘
*/

package kv

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xmh1011/go-skiplist/log"
)

// Delimiter separates key and value on a dump line.
const Delimiter = ":"

type Pair[K, V any] struct {
	Key   K
	Value V
}

// EncodeTo writes the pair as a single "key:value\n" line.
func (p Pair[K, V]) EncodeTo(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%v%s%v\n", p.Key, Delimiter, p.Value); err != nil {
		log.Errorf("write pair %v failed: %s", p.Key, err)
		return fmt.Errorf("encode pair: %w", err)
	}
	return nil
}

// SplitLine 按第一个分隔符切分一行。
// 空行、没有分隔符、key 或 value 为空的行返回 ok=false。
func SplitLine(line string) (key, value string, ok bool) {
	line = strings.TrimSuffix(line, "\r")
	if line == "" {
		return "", "", false
	}
	key, value, found := strings.Cut(line, Delimiter)
	if !found || key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}

// Codec turns the text segments of a dump line back into typed values.
type Codec[K, V any] struct {
	ParseKey   func(string) (K, error)
	ParseValue func(string) (V, error)
}

// DecodeLine returns ok=false for lines that should be skipped silently,
// and an error when a segment is present but cannot be parsed.
func (c Codec[K, V]) DecodeLine(line string) (Pair[K, V], bool, error) {
	var pair Pair[K, V]
	keyText, valueText, ok := SplitLine(line)
	if !ok {
		return pair, false, nil
	}

	key, err := c.ParseKey(keyText)
	if err != nil {
		return pair, false, fmt.Errorf("decode key %q: %w", keyText, err)
	}
	value, err := c.ParseValue(valueText)
	if err != nil {
		return pair, false, fmt.Errorf("decode value %q: %w", valueText, err)
	}

	pair.Key, pair.Value = key, value
	return pair, true, nil
}

func ParseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func ParseString(s string) (string, error) {
	return s, nil
}

// IntStringCodec decodes lines such as "19:hello".
func IntStringCodec() Codec[int, string] {
	return Codec[int, string]{ParseKey: ParseInt, ParseValue: ParseString}
}

func StringCodec() Codec[string, string] {
	return Codec[string, string]{ParseKey: ParseString, ParseValue: ParseString}
}
