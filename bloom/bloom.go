// Bloom filter used by the store to answer "definitely absent" without
// descending the skip list. Bits live in a bitset; the k probe positions are
// derived from one 128-bit murmur3 hash by double hashing (h1 + i*h2).

package bloom

import (
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/twmb/murmur3"
)

type Filter struct {
	arraySize uint // m，位数组长度
	hashNum   uint // k，哈希函数个数
	bits      *bitset.BitSet
}

// New creates a filter with m bits and k hash functions. Both are raised
// to at least 1.
func New(m, k uint) *Filter {
	return &Filter{
		arraySize: max(1, m),
		hashNum:   max(1, k),
		bits:      bitset.New(max(1, m)),
	}
}

// NewWithEstimates sizes the filter for n items at false positive rate fp.
func NewWithEstimates(n uint, fp float64) *Filter {
	m, k := EstimateParameters(n, fp)
	return New(m, k)
}

// EstimateParameters returns m and k for n items at false positive rate fp.
func EstimateParameters(n uint, fp float64) (m uint, k uint) {
	m = uint(math.Ceil(-1 * float64(n) * math.Log(fp) / math.Pow(math.Log(2), 2)))
	k = uint(math.Ceil(math.Log(2) * float64(m) / float64(n)))
	return
}

// EstimateFalsePositiveRate is the theoretical rate after n insertions.
func EstimateFalsePositiveRate(m, k, n uint) float64 {
	return math.Pow(1-math.Exp(-float64(k)*float64(n)/float64(m)), float64(k))
}

func (f *Filter) location(h1, h2 uint64, i uint) uint {
	return uint((h1 + uint64(i)*h2) % uint64(f.arraySize))
}

func (f *Filter) Add(data []byte) *Filter {
	h1, h2 := murmur3.Sum128(data)
	for i := uint(0); i < f.hashNum; i++ {
		f.bits.Set(f.location(h1, h2, i))
	}
	return f
}

// Test reports whether data may have been added. False means definitely not.
func (f *Filter) Test(data []byte) bool {
	h1, h2 := murmur3.Sum128(data)
	for i := uint(0); i < f.hashNum; i++ {
		if !f.bits.Test(f.location(h1, h2, i)) {
			return false
		}
	}
	return true
}

// TestAndAdd reports whether data was possibly present, then adds it.
func (f *Filter) TestAndAdd(data []byte) bool {
	present := f.Test(data)
	f.Add(data)
	return present
}

func (f *Filter) ClearAll() *Filter {
	f.bits.ClearAll()
	return f
}

// Cap is the number of bits, m.
func (f *Filter) Cap() uint {
	return f.arraySize
}

// K is the number of hash functions.
func (f *Filter) K() uint {
	return f.hashNum
}

// ApproximatedSize estimates how many distinct items were added.
func (f *Filter) ApproximatedSize() uint32 {
	x := float64(f.bits.Count())
	m := float64(f.arraySize)
	k := float64(f.hashNum)
	return uint32(-1 * m / k * math.Log(1-x/m))
}
