package dict

import (
	"fmt"
	"math/bits"
	"time"
)

// maxTableSize bounds slot array sizes well below what makeslice accepts.
const maxTableSize = 1 << (bits.UintSize/2 + 8)

// expand allocates a slot array for at least size entries. On an
// unallocated dict it becomes ht[0]; otherwise it becomes the rehash
// target and migration starts.
func (d *Dict[K, V]) expand(size uint64) error {
	realSize := nextPower(size, d.policy.InitialSize)
	if realSize == d.ht[0].size {
		return fmt.Errorf("%w: table already has %d slots", ErrInvalidSize, realSize)
	}
	if realSize > maxTableSize {
		return fmt.Errorf("%w: %d slots", ErrOutOfMemory, realSize)
	}

	slots := d.alloc.newSlots(int(realSize))
	if slots == nil {
		return fmt.Errorf("%w: %d slots", ErrOutOfMemory, realSize)
	}
	n := hashTable[K, V]{
		slots: slots,
		size:  realSize,
		mask:  realSize - 1,
	}

	if d.ht[0].size == 0 {
		d.ht[0] = n
		return nil
	}

	if realSize > d.ht[0].size {
		d.totalGrowths++
	} else {
		d.totalShrinks++
	}
	d.ht[1] = n
	d.rehashIdx = 0
	if d.logger != nil {
		d.logger.Debug("dict: rehash started",
			"from", d.ht[0].size, "to", realSize, "used", d.ht[0].used)
	}
	return nil
}

// Expand creates or resizes the table so that it has room for size
// entries, rounded up to a power of two.
//
// Returns:
//   - ErrRehashInProgress if a rehash is running
//   - ErrInvalidSize if size is below the number of stored entries or the
//     table already has that many slots
//   - ErrOutOfMemory if the slot array cannot be allocated
func (d *Dict[K, V]) Expand(size uint64) error {
	if d.IsRehashing() {
		return ErrRehashInProgress
	}
	if d.ht[0].used > size {
		return fmt.Errorf("%w: %d is below the %d stored entries", ErrInvalidSize, size, d.ht[0].used)
	}
	return d.expand(size)
}

// Resize shrinks (or grows) the table to the smallest size that holds the
// current entries at the policy's resize ratio. It is a no-op when the
// table already has that size or is unallocated.
func (d *Dict[K, V]) Resize() error {
	if !d.gate.Enabled() {
		return ErrResizeDisabled
	}
	if d.IsRehashing() {
		return ErrRehashInProgress
	}
	minimal := d.minSizeFor(d.ht[0].used)
	if d.ht[0].size == 0 || nextPower(minimal, d.policy.InitialSize) == d.ht[0].size {
		return nil
	}
	return d.expand(minimal)
}

// NeedsResize reports whether the primary table is larger than the
// initial size and filled below Policy.MinFillPercent, i.e. a Resize
// would free a meaningful amount of memory.
func (d *Dict[K, V]) NeedsResize() bool {
	t := &d.ht[0]
	if d.IsRehashing() || t.size <= d.policy.InitialSize {
		return false
	}
	return float64(t.used)*100/float64(t.size) < d.policy.MinFillPercent
}

// expandIfNeeded starts a growth after an insertion pushed the fill ratio
// over the policy limit. A refused allocation is not an error for the
// insertion: the table stays valid and the next insertion tries again.
func (d *Dict[K, V]) expandIfNeeded() {
	if d.IsRehashing() {
		return
	}
	t := &d.ht[0]
	ratio := float64(t.used) / float64(t.size)
	if ratio <= d.policy.ResizeRatio {
		return
	}
	if !d.gate.Enabled() && ratio <= d.policy.ForceResizeRatio {
		return
	}
	if err := d.expand(max(t.used*2, d.policy.InitialSize)); err != nil && d.logger != nil {
		d.logger.Warn("dict: growth refused", "size", t.size, "used", t.used, "err", err)
	}
}

// rehash performs up to n migration steps and reports whether entries are
// left to move. A step moves one whole bucket; empty buckets do not count
// as steps but at most n*Policy.EmptyVisits of them are skipped per call,
// bounding the work of a call on a sparse table.
func (d *Dict[K, V]) rehash(n int) bool {
	if !d.IsRehashing() {
		return false
	}

	emptyVisits := n * d.policy.EmptyVisits
	old, target := &d.ht[0], &d.ht[1]
	for ; n > 0 && old.used != 0; n-- {
		// old.used != 0 guarantees a non-empty bucket at or past rehashIdx.
		for old.slots[d.rehashIdx] == nil {
			d.rehashIdx++
			emptyVisits--
			if emptyVisits == 0 {
				return true
			}
		}

		e := old.slots[d.rehashIdx]
		for e != nil {
			next := e.next
			target.link(e, d.typ.Hash(e.key))
			old.used--
			e = next
		}
		old.slots[d.rehashIdx] = nil
		d.rehashIdx++
	}

	if old.used == 0 {
		d.finishRehash()
		return false
	}
	return true
}

// finishRehash promotes the rehash target to primary table.
func (d *Dict[K, V]) finishRehash() {
	from := d.ht[0].size
	d.alloc.freeSlots(d.ht[0].slots)
	d.ht[0] = d.ht[1]
	d.ht[1].reset()
	d.rehashIdx = -1
	if d.logger != nil {
		d.logger.Debug("dict: rehash finished", "from", from, "to", d.ht[0].size, "used", d.ht[0].used)
	}
}

// Rehash performs up to n migration steps and reports whether a rehash is
// still in progress afterwards. It does nothing while safe iterators or
// scans pause rehashing.
func (d *Dict[K, V]) Rehash(n int) bool {
	if d.iterators > 0 {
		return d.IsRehashing()
	}
	return d.rehash(n)
}

// RehashFor migrates buckets in batches of Policy.RehashBatch steps until
// the rehash completes or budget has elapsed, checking the clock between
// batches. It returns the number of steps performed. Hosts call it during
// idle time to finish a rehash sooner than normal traffic would.
func (d *Dict[K, V]) RehashFor(budget time.Duration) int {
	if d.iterators > 0 {
		return 0
	}
	start := time.Now()
	rehashes := 0
	for d.IsRehashing() {
		more := d.rehash(d.policy.RehashBatch)
		rehashes += d.policy.RehashBatch
		if !more || time.Since(start) > budget {
			break
		}
	}
	return rehashes
}
