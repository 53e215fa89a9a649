package dict

import (
	"math"
	"math/bits"
)

// hashTable is one generation of the dict: a power-of-two array of chain
// heads. A zero hashTable is unallocated.
type hashTable[K comparable, V any] struct {
	slots []*Entry[K, V]
	size  uint64
	mask  uint64
	used  uint64
}

func (t *hashTable[K, V]) reset() {
	*t = hashTable[K, V]{}
}

// bucket returns the chain head slot for hash.
//
//go:nosplit
func (t *hashTable[K, V]) bucket(hash uint64) **Entry[K, V] {
	return &t.slots[hash&t.mask]
}

// link pushes e at the head of its chain.
func (t *hashTable[K, V]) link(e *Entry[K, V], hash uint64) {
	head := t.bucket(hash)
	e.next = *head
	*head = e
	t.used++
}

// nextPower returns the smallest power of two that is >= size and >=
// minSize. Sizes that do not fit in an int saturate at the largest power of
// two that does.
func nextPower(size uint64, minSize uint64) uint64 {
	if size <= minSize {
		return minSize
	}
	if size >= math.MaxInt64/2 {
		return 1 << 62
	}
	return 1 << bits.Len64(size-1)
}

// isPowerOfTwo reports whether n is a non-zero power of two.
func isPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}
