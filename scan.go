package dict

import "math/bits"

// Scan visits the entries of one cursor position and returns the next
// cursor. Start with cursor 0 and call again with the returned value until
// it is 0 again.
//
// Guarantees:
//   - every entry present from the first call to the last one is passed
//     to fn at least once, even if the table grows or shrinks in between
//   - an entry may be passed more than once
//   - entries added or removed during the scan may or may not be visited
//
// The cursor is advanced by incrementing its bit-reversed form. Buckets
// are therefore visited in an order in which every bucket index of a
// larger table extends an index of the smaller table in its high bits, so
// a power-of-two resize between calls never skips unvisited buckets.
//
// Rehashing is paused while fn runs; fn may delete the entry it receives.
func (d *Dict[K, V]) Scan(cursor uint64, fn func(e *Entry[K, V])) uint64 {
	if d.Size() == 0 {
		return 0
	}
	d.pauseRehashing()
	defer d.resumeRehashing()

	v := cursor
	if !d.IsRehashing() {
		t0 := &d.ht[0]
		m0 := t0.mask
		scanBucket(t0, v&m0, fn)

		// Set the unmasked bits so incrementing the reversed cursor
		// operates on the masked bits only.
		v |= ^m0
		v = bits.Reverse64(v)
		v++
		v = bits.Reverse64(v)
		return v
	}

	t0, t1 := &d.ht[0], &d.ht[1]
	// t0 is the smaller table, t1 the larger.
	if t0.size > t1.size {
		t0, t1 = t1, t0
	}
	m0, m1 := t0.mask, t1.mask

	scanBucket(t0, v&m0, fn)

	// Visit every index of the larger table that expands the index of the
	// smaller one.
	for {
		scanBucket(t1, v&m1, fn)

		v |= ^m1
		v = bits.Reverse64(v)
		v++
		v = bits.Reverse64(v)

		// Continue while the bits only the larger mask covers are non-zero.
		if v&(m0^m1) == 0 {
			break
		}
	}
	return v
}

func scanBucket[K comparable, V any](t *hashTable[K, V], idx uint64, fn func(e *Entry[K, V])) {
	for e := t.slots[idx]; e != nil; {
		next := e.next
		fn(e)
		// fn may have deleted next; deleted entries keep their link.
		for next != nil && next.state != entryLinked {
			next = next.next
		}
		e = next
	}
}
