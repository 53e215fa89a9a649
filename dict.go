package dict

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// Type is the set of behaviors a Dict delegates key and value handling to.
// Hash is required. Every other field may be nil: a nil Dup stores the
// key or value as given, a nil KeyCompare falls back to ==, and nil
// destructors do nothing. privdata is the value passed to New; Hash does
// not receive it and must depend on the key alone.
//
// When KeyCompare is set it is the only key equality the dict uses, which
// makes interface key types holding slices or maps usable. FindEntryByHash
// is the exception: it always compares with ==.
type Type[K comparable, V any] struct {
	Hash          func(key K) uint64
	KeyDup        func(privdata any, key K) K
	ValDup        func(privdata any, val V) V
	KeyCompare    func(privdata any, key1, key2 K) bool
	KeyDestructor func(privdata any, key K)
	ValDestructor func(privdata any, val V)
}

// Dict is a chained hash table that grows and shrinks incrementally.
//
// A Dict keeps two slot arrays. Normally only the first one is allocated.
// When the table needs a new size a second array is allocated and entries
// migrate to it a bucket at a time, piggybacking on lookups and updates,
// so no single call pays for a full rehash. Once the first array is empty
// the second one takes its place.
//
// Key features:
//   - Safe iterators pause migration so callers may mutate while iterating
//   - Unsafe iterators detect structural changes through a fingerprint
//   - Scan walks the table in chunks across resizes with a caller-held cursor
//   - RandomKey, FairRandomKey and SomeKeys sample for eviction policies
//
// A Dict is not safe for concurrent use; one goroutine must own it.
// A Dict must not be copied after first use.
type Dict[K comparable, V any] struct {
	_ noCopy

	typ      Type[K, V]
	privdata any

	ht [2]hashTable[K, V]
	// rehashIdx is the next ht[0] bucket to migrate, -1 when not rehashing.
	rehashIdx int64
	// iterators counts live safe iterators and running scans.
	iterators int
	// deferred holds entries freed while iterators > 0. They keep their
	// next pointer so a prefetched iterator position stays walkable.
	deferred []*Entry[K, V]

	policy Policy
	gate   *ResizeGate
	alloc  allocator[K, V]
	logger *slog.Logger

	totalGrowths uint64
	totalShrinks uint64
}

// New creates an empty Dict. No slot array is allocated until the first
// insertion unless WithPresize is given.
//
// Parameters:
//   - typ: key/value behaviors, typ.Hash must not be nil
//   - privdata: opaque value forwarded to every behavior in typ
//   - options: WithPolicy, WithPresize, WithResizeGate, WithMemoryLimit,
//     WithLogger
//
// New panics if typ.Hash is nil or the policy is invalid.
func New[K comparable, V any](
	typ Type[K, V],
	privdata any,
	options ...func(*Config),
) *Dict[K, V] {
	if typ.Hash == nil {
		panic("dict: Type.Hash is required")
	}

	c := &Config{policy: DefaultPolicy()}
	for _, o := range options {
		o(c)
	}
	if err := c.policy.Validate(); err != nil {
		panic(err)
	}
	if c.gate == nil {
		c.gate = NewResizeGate()
	}

	d := &Dict[K, V]{
		typ:       typ,
		privdata:  privdata,
		rehashIdx: -1,
		policy:    c.policy,
		gate:      c.gate,
		alloc:     newAllocator[K, V](c.memoryLimit),
		logger:    c.logger,
	}
	if c.sizeHint > 0 {
		// A presize that does not fit the memory limit leaves the dict
		// unallocated; the first insertion retries at the initial size.
		_ = d.expand(d.minSizeFor(uint64(c.sizeHint)))
	}
	return d
}

// minSizeFor returns the slot count that holds n entries at the policy's
// resize ratio.
func (d *Dict[K, V]) minSizeFor(n uint64) uint64 {
	return uint64(math.Ceil(float64(n) / d.policy.ResizeRatio))
}

// Size returns the number of entries in the dict.
func (d *Dict[K, V]) Size() int {
	return int(d.ht[0].used + d.ht[1].used)
}

// Slots returns the total number of buckets across both slot arrays.
func (d *Dict[K, V]) Slots() int {
	return int(d.ht[0].size + d.ht[1].size)
}

// IsRehashing reports whether entries are migrating between slot arrays.
func (d *Dict[K, V]) IsRehashing() bool {
	return d.rehashIdx != -1
}

// Hash returns the hash of key under the dict's Type. It has no side
// effects.
func (d *Dict[K, V]) Hash(key K) uint64 {
	return d.typ.Hash(key)
}

// compareKeys leaves equality entirely to KeyCompare when it is set, so
// interface keys holding uncomparable values never reach ==.
func (d *Dict[K, V]) compareKeys(key1, key2 K) bool {
	if d.typ.KeyCompare != nil {
		return d.typ.KeyCompare(d.privdata, key1, key2)
	}
	return key1 == key2
}

func (d *Dict[K, V]) setKey(e *Entry[K, V], key K) {
	if d.typ.KeyDup != nil {
		key = d.typ.KeyDup(d.privdata, key)
	}
	e.key = key
}

func (d *Dict[K, V]) freeKey(e *Entry[K, V]) {
	if d.typ.KeyDestructor != nil {
		d.typ.KeyDestructor(d.privdata, e.key)
	}
}

func (d *Dict[K, V]) freeVal(v Value[V]) {
	if d.typ.ValDestructor != nil && v.kind == KindRef {
		d.typ.ValDestructor(d.privdata, v.ref)
	}
}

// SetVal stores the handle val in e, duplicated through Type.ValDup. The
// previous value is overwritten without running the value destructor; use
// Replace to swap a value and destroy the old one.
func (d *Dict[K, V]) SetVal(e *Entry[K, V], val V) {
	if d.typ.ValDup != nil {
		val = d.typ.ValDup(d.privdata, val)
	}
	e.val = RefValue(val)
}

// rehashStep migrates one bucket unless safe iterators pause rehashing.
func (d *Dict[K, V]) rehashStep() {
	if d.iterators == 0 {
		d.rehash(1)
	}
}

// find looks key up in both slot arrays without side effects.
func (d *Dict[K, V]) find(key K, hash uint64) *Entry[K, V] {
	for table := range d.ht {
		t := &d.ht[table]
		if t.size != 0 {
			for e := *t.bucket(hash); e != nil; e = e.next {
				if d.compareKeys(key, e.key) {
					return e
				}
			}
		}
		if !d.IsRehashing() {
			break
		}
	}
	return nil
}

// Find returns the entry for key, or nil if the key is absent.
// While rehashing it migrates one bucket first.
func (d *Dict[K, V]) Find(key K) *Entry[K, V] {
	if d.Size() == 0 {
		return nil
	}
	if d.IsRehashing() {
		d.rehashStep()
	}
	return d.find(key, d.typ.Hash(key))
}

// FindEntryByHash returns the entry whose key is == key in the bucket
// selected by hash. It uses neither Type.Hash nor Type.KeyCompare and
// performs no rehash step, so it is meant for callers that kept both the
// stored key and its hash and want to get back to the entry cheaply.
func (d *Dict[K, V]) FindEntryByHash(key K, hash uint64) *Entry[K, V] {
	if d.Size() == 0 {
		return nil
	}
	for table := range d.ht {
		t := &d.ht[table]
		if t.size != 0 {
			for e := *t.bucket(hash); e != nil; e = e.next {
				if e.key == key {
					return e
				}
			}
		}
		if !d.IsRehashing() {
			break
		}
	}
	return nil
}

// FetchValue returns the value stored for key, or ErrKeyNotFound.
func (d *Dict[K, V]) FetchValue(key K) (Value[V], error) {
	if e := d.Find(key); e != nil {
		return e.val, nil
	}
	return Value[V]{}, ErrKeyNotFound
}

// AddRaw inserts key with a KindNone value and returns its entry so the
// caller can store any kind of value in place.
//
// If the key already exists AddRaw returns the existing entry together
// with ErrKeyExists. On ErrOutOfMemory it returns nil and the dict is
// unchanged.
func (d *Dict[K, V]) AddRaw(key K) (*Entry[K, V], error) {
	if d.IsRehashing() {
		d.rehashStep()
	}

	hash := d.typ.Hash(key)
	if e := d.find(key, hash); e != nil {
		return e, ErrKeyExists
	}

	e := d.alloc.newEntry()
	if e == nil {
		return nil, ErrOutOfMemory
	}
	if d.ht[0].size == 0 {
		if err := d.expand(d.policy.InitialSize); err != nil {
			d.alloc.freeEntry(e)
			return nil, err
		}
	}

	// New entries go straight to the rehash target so they never need
	// migrating.
	t := &d.ht[0]
	if d.IsRehashing() {
		t = &d.ht[1]
	}
	d.setKey(e, key)
	e.state = entryLinked
	t.link(e, hash)

	d.expandIfNeeded()
	return e, nil
}

// Add inserts key with the handle val. It returns ErrKeyExists if the key
// is present and ErrOutOfMemory if the memory limit refuses the entry.
func (d *Dict[K, V]) Add(key K, val V) error {
	e, err := d.AddRaw(key)
	if err != nil {
		return err
	}
	d.SetVal(e, val)
	return nil
}

// AddOrFind returns the entry for key, inserting an entry with a KindNone
// value if the key is absent. The only possible error is ErrOutOfMemory.
func (d *Dict[K, V]) AddOrFind(key K) (*Entry[K, V], error) {
	e, err := d.AddRaw(key)
	if errors.Is(err, ErrKeyExists) {
		return e, nil
	}
	return e, err
}

// Replace sets the value for key, adding the key if needed. It reports
// whether the key was added. An existing entry keeps its identity: the
// new value is stored first and the old one destroyed afterwards, so
// replacing a value with itself is safe under reference counting.
func (d *Dict[K, V]) Replace(key K, val V) (added bool, err error) {
	e, err := d.AddRaw(key)
	switch {
	case err == nil:
		d.SetVal(e, val)
		return true, nil
	case errors.Is(err, ErrKeyExists):
		old := e.val
		d.SetVal(e, val)
		d.freeVal(old)
		return false, nil
	default:
		return false, err
	}
}

// unlink removes the entry for key from its chain and returns it, or nil.
func (d *Dict[K, V]) unlink(key K) *Entry[K, V] {
	if d.Size() == 0 {
		return nil
	}
	if d.IsRehashing() {
		d.rehashStep()
	}

	hash := d.typ.Hash(key)
	for table := range d.ht {
		t := &d.ht[table]
		if t.size != 0 {
			for ref := t.bucket(hash); *ref != nil; ref = &(*ref).next {
				e := *ref
				if d.compareKeys(key, e.key) {
					// e.next is left as is: a safe iterator may hold e as
					// its prefetched position and walk on from it.
					*ref = e.next
					e.state = entryUnlinked
					t.used--
					return e
				}
			}
		}
		if !d.IsRehashing() {
			break
		}
	}
	return nil
}

// Delete removes key, running the key and value destructors. It returns
// ErrKeyNotFound if the key is absent.
func (d *Dict[K, V]) Delete(key K) error {
	e := d.unlink(key)
	if e == nil {
		return ErrKeyNotFound
	}
	d.FreeUnlinked(e)
	return nil
}

// Unlink removes key from the dict without destroying it and hands the
// entry over to the caller, or returns nil if the key is absent. The
// caller must pass the entry to FreeUnlinked once done with it.
//
// This lets a caller use the value after removing it, for example:
//
//	e := d.Unlink(key)
//	// update other state that refers to e.Val()
//	d.FreeUnlinked(e)
func (d *Dict[K, V]) Unlink(key K) *Entry[K, V] {
	return d.unlink(key)
}

// FreeUnlinked runs the destructors for an entry returned by Unlink and
// releases it. A nil entry is ignored. Passing an entry that is still in
// the dict, or one already freed, panics.
func (d *Dict[K, V]) FreeUnlinked(e *Entry[K, V]) {
	if e == nil {
		return
	}
	if e.state != entryUnlinked {
		panic(fmt.Sprintf("dict: FreeUnlinked on an entry that is not unlinked (state %d)", e.state))
	}
	d.freeKey(e)
	d.freeVal(e.val)
	d.releaseEntry(e)
}

// releaseEntry returns e to the allocator, or parks it while safe
// iterators may still step through it.
func (d *Dict[K, V]) releaseEntry(e *Entry[K, V]) {
	if d.iterators == 0 {
		d.alloc.freeEntry(e)
		return
	}
	var zero K
	e.key = zero
	e.val = Value[V]{}
	e.state = entryFree
	d.deferred = append(d.deferred, e)
}

// pauseRehashing and resumeRehashing bracket safe iteration and scans.
func (d *Dict[K, V]) pauseRehashing() {
	d.iterators++
}

func (d *Dict[K, V]) resumeRehashing() {
	d.iterators--
	if d.iterators == 0 && len(d.deferred) > 0 {
		for i, e := range d.deferred {
			d.alloc.freeEntry(e)
			d.deferred[i] = nil
		}
		d.deferred = d.deferred[:0]
	}
}

// clear destroys every entry of one slot array and frees the array.
func (d *Dict[K, V]) clear(table int, callback func()) {
	t := &d.ht[table]
	for i := uint64(0); i < t.size && t.used > 0; i++ {
		if callback != nil && i&65535 == 0 {
			callback()
		}
		for e := t.slots[i]; e != nil; {
			next := e.next
			e.state = entryUnlinked
			d.FreeUnlinked(e)
			t.used--
			e = next
		}
		t.slots[i] = nil
	}
	d.alloc.freeSlots(t.slots)
	t.reset()
}

// Empty destroys every entry and frees both slot arrays, leaving the dict
// as New returned it. If callback is non-nil it is called every 65536
// buckets, letting a host do other work while a huge dict is emptied.
func (d *Dict[K, V]) Empty(callback func()) {
	d.clear(0, callback)
	d.clear(1, callback)
	d.rehashIdx = -1
}

// Release empties the dict and drops its pooled entry memory.
func (d *Dict[K, V]) Release() {
	d.Empty(nil)
	if d.iterators == 0 {
		d.alloc.drop()
	}
}

// String implement the formatting output interface fmt.Stringer
func (d *Dict[K, V]) String() string {
	return fmt.Sprintf("dict{size: %d, slots: %d, rehashing: %t}", d.Size(), d.Slots(), d.IsRehashing())
}

// noCopy may be added to structs which must not be copied
// after the first use. See https://golang.org/issues/8005.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
