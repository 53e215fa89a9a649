package dict

import (
	"fmt"
	"iter"
	"unsafe"
)

// Iterator walks every entry of a Dict: the primary slot array in bucket
// order, then the rehash target if a rehash is running.
//
// A safe iterator (SafeIterator) pauses rehashing until it is released,
// so the caller may add, replace and delete keys while iterating. Entries
// added during the walk may or may not be returned; entries deleted before
// the walk reaches them are not returned.
//
// An unsafe iterator (Iterator) costs nothing while alive but forbids any
// call that may move entries, which includes Find, Add and Delete while a
// rehash is running, and any insertion that starts a growth. Release
// checks a fingerprint of the table layout and panics with an error
// wrapping ErrIteratorContract if it changed.
//
// Both kinds fetch the successor before returning an entry, so deleting
// the entry just returned is always allowed.
type Iterator[K comparable, V any] struct {
	d           *Dict[K, V]
	index       int64
	table       int
	safe        bool
	released    bool
	entry       *Entry[K, V]
	nextEntry   *Entry[K, V]
	fingerprint uint64
}

// Iterator returns an unsafe iterator. The caller must call Release.
func (d *Dict[K, V]) Iterator() *Iterator[K, V] {
	it := &Iterator[K, V]{d: d, index: -1}
	if checkFingerprint {
		it.fingerprint = d.fingerprint()
	}
	return it
}

// SafeIterator returns an iterator that pauses rehashing until Release.
func (d *Dict[K, V]) SafeIterator() *Iterator[K, V] {
	d.pauseRehashing()
	return &Iterator[K, V]{d: d, index: -1, safe: true}
}

// Next returns the next entry, or nil when the walk is over.
func (it *Iterator[K, V]) Next() *Entry[K, V] {
	d := it.d
	for {
		if it.entry == nil {
			t := &d.ht[it.table]
			it.index++
			if it.index >= int64(t.size) {
				if d.IsRehashing() && it.table == 0 {
					it.table++
					it.index = 0
					t = &d.ht[1]
				} else {
					return nil
				}
			}
			it.entry = t.slots[it.index]
		} else {
			it.entry = it.nextEntry
		}

		// The prefetched successor may have been deleted since; deleted
		// entries keep their link, so step over them.
		for it.entry != nil && it.entry.state != entryLinked {
			it.entry = it.entry.next
		}
		if it.entry != nil {
			it.nextEntry = it.entry.next
			return it.entry
		}
	}
}

// Release ends the iteration. For a safe iterator it resumes rehashing;
// for an unsafe one it verifies the fingerprint. Releasing twice is a
// no-op.
func (it *Iterator[K, V]) Release() {
	if it.released {
		return
	}
	it.released = true
	if it.safe {
		it.d.resumeRehashing()
		return
	}
	if checkFingerprint {
		if fp := it.d.fingerprint(); fp != it.fingerprint {
			panic(fmt.Errorf("%w: %#x at creation, %#x at release", ErrIteratorContract, it.fingerprint, fp))
		}
	}
}

// fingerprint mixes the slot array addresses, their sizes and the rehash
// index. Any of them changing means entries may have moved.
func (d *Dict[K, V]) fingerprint() uint64 {
	integers := [5]uint64{
		uint64(uintptr(unsafe.Pointer(unsafe.SliceData(d.ht[0].slots)))),
		d.ht[0].size,
		uint64(uintptr(unsafe.Pointer(unsafe.SliceData(d.ht[1].slots)))),
		d.ht[1].size,
		uint64(d.rehashIdx),
	}

	// hash = mix(mix(mix(int1)+int2)+int3)..., order sensitive.
	var hash uint64
	for _, v := range integers {
		hash += v
		// Thomas Wang's 64 bit integer hash.
		hash = (^hash) + (hash << 21)
		hash = hash ^ (hash >> 24)
		hash = (hash + (hash << 3)) + (hash << 8)
		hash = hash ^ (hash >> 14)
		hash = (hash + (hash << 2)) + (hash << 4)
		hash = hash ^ (hash >> 28)
		hash = hash + (hash << 31)
	}
	return hash
}

// Range calls yield for every entry until it returns false, using a safe
// iterator, so yield may modify the dict.
func (d *Dict[K, V]) Range(yield func(e *Entry[K, V]) bool) {
	it := d.SafeIterator()
	defer it.Release()
	for e := it.Next(); e != nil; e = it.Next() {
		if !yield(e) {
			return
		}
	}
}

// All is the iterator version of Range over keys and values.
func (d *Dict[K, V]) All() iter.Seq2[K, Value[V]] {
	return func(yield func(K, Value[V]) bool) {
		d.Range(func(e *Entry[K, V]) bool {
			return yield(e.key, e.val)
		})
	}
}

// Keys is the iterator version for iterating over all keys.
func (d *Dict[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		d.Range(func(e *Entry[K, V]) bool {
			return yield(e.key)
		})
	}
}
