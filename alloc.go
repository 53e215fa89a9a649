package dict

import "unsafe"

// allocBlockLines is the number of cache lines one entry block spans.
const allocBlockLines = 64

// allocator hands out entries and slot arrays for one dict and keeps a
// byte count of what is in use. Entries are carved from blocks and
// recycled through a free list threaded on Entry.next.
type allocator[K comparable, V any] struct {
	free      *Entry[K, V]
	perBlock  int
	entrySize int
	// limit is the byte budget; 0 means unlimited.
	limit int
	inUse int
}

func newAllocator[K comparable, V any](limit int) allocator[K, V] {
	entrySize := int(unsafe.Sizeof(Entry[K, V]{}))
	return allocator[K, V]{
		perBlock:  max(1, allocBlockLines*int(CacheLineSize)/entrySize),
		entrySize: entrySize,
		limit:     max(0, limit),
	}
}

func (a *allocator[K, V]) reserve(n int) bool {
	if a.limit > 0 && a.inUse+n > a.limit {
		return false
	}
	a.inUse += n
	return true
}

// newEntry returns a zeroed entry, or nil when the limit would be exceeded.
func (a *allocator[K, V]) newEntry() *Entry[K, V] {
	if !a.reserve(a.entrySize) {
		return nil
	}
	if a.free == nil {
		block := make([]Entry[K, V], a.perBlock)
		for i := range block {
			block[i].next = a.free
			a.free = &block[i]
		}
	}
	e := a.free
	a.free = e.next
	e.next = nil
	return e
}

// freeEntry zeroes e, so the GC can collect what its key and value
// reference, and puts it back on the free list.
func (a *allocator[K, V]) freeEntry(e *Entry[K, V]) {
	*e = Entry[K, V]{}
	e.next = a.free
	a.free = e
	a.inUse -= a.entrySize
}

func (a *allocator[K, V]) slotBytes(n int) int {
	return n * int(unsafe.Sizeof((*Entry[K, V])(nil)))
}

// newSlots returns n empty chain heads, or nil when the limit would be
// exceeded.
func (a *allocator[K, V]) newSlots(n int) []*Entry[K, V] {
	if !a.reserve(a.slotBytes(n)) {
		return nil
	}
	return make([]*Entry[K, V], n)
}

func (a *allocator[K, V]) freeSlots(slots []*Entry[K, V]) {
	a.inUse -= a.slotBytes(len(slots))
}

// drop forgets every block. Only valid once no entry is linked anywhere.
func (a *allocator[K, V]) drop() {
	a.free = nil
	a.inUse = 0
}
