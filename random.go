package dict

import "math/rand/v2"

// someKeysEmptyRun is the run of empty buckets after which SomeKeys jumps
// to a new random position.
const someKeysEmptyRun = 5

// RandomKey returns a random entry, or nil if the dict is empty.
//
// A random non-empty bucket is chosen uniformly among the buckets that can
// hold entries (the not yet migrated part of the primary table plus the
// rehash target), then an entry is chosen uniformly along its chain in a
// single reservoir pass. Entries in short chains are therefore somewhat
// more likely to be returned; see FairRandomKey.
func (d *Dict[K, V]) RandomKey() *Entry[K, V] {
	if d.Size() == 0 {
		return nil
	}
	if d.IsRehashing() {
		d.rehashStep()
	}

	var he *Entry[K, V]
	if d.IsRehashing() {
		// Buckets 0..rehashIdx-1 of ht[0] are known to be empty.
		s0 := d.ht[0].size
		skip := uint64(d.rehashIdx)
		span := s0 + d.ht[1].size - skip
		for he == nil {
			h := skip + rand.Uint64N(span)
			if h >= s0 {
				he = d.ht[1].slots[h-s0]
			} else {
				he = d.ht[0].slots[h]
			}
		}
	} else {
		m := d.ht[0].mask
		for he == nil {
			he = d.ht[0].slots[rand.Uint64()&m]
		}
	}

	var chosen *Entry[K, V]
	n := 0
	for e := he; e != nil; e = e.next {
		n++
		if rand.IntN(n) == 0 {
			chosen = e
		}
	}
	return chosen
}

// SomeKeys samples up to count entries from random locations. It is much
// faster than calling RandomKey count times but the result is neither
// uniform nor guaranteed to hold count entries or to be free of
// duplicates; it suits randomized eviction, not statistics.
//
// It starts at a random bucket and walks consecutive buckets of both
// tables, collecting whole chains, jumping to a new random bucket after a
// run of empty ones, for at most count*Policy.SampleSteps buckets.
func (d *Dict[K, V]) SomeKeys(count int) []*Entry[K, V] {
	if count <= 0 || d.Size() == 0 {
		return nil
	}
	count = min(count, d.Size())
	maxSteps := count * d.policy.SampleSteps

	// Help the rehash in proportion to the work requested.
	for j := 0; j < count && d.IsRehashing(); j++ {
		d.rehashStep()
	}

	tables := 1
	maxMask := d.ht[0].mask
	if d.IsRehashing() {
		tables = 2
		maxMask = max(maxMask, d.ht[1].mask)
	}

	des := make([]*Entry[K, V], 0, count)
	i := rand.Uint64() & maxMask
	emptyLen := 0
	for ; len(des) < count && maxSteps > 0; maxSteps-- {
		for j := 0; j < tables; j++ {
			// Buckets of ht[0] below rehashIdx are empty. When ht[1] is the
			// smaller table and i is past it, jump straight to rehashIdx.
			if tables == 2 && j == 0 && i < uint64(d.rehashIdx) {
				if i >= d.ht[1].size {
					i = uint64(d.rehashIdx)
				} else {
					continue
				}
			}
			t := &d.ht[j]
			if i >= t.size {
				continue
			}
			he := t.slots[i]
			if he == nil {
				emptyLen++
				if emptyLen >= someKeysEmptyRun && emptyLen > count {
					i = rand.Uint64() & maxMask
					emptyLen = 0
				}
				continue
			}
			emptyLen = 0
			for ; he != nil; he = he.next {
				des = append(des, he)
				if len(des) == count {
					return des
				}
			}
		}
		i = (i + 1) & maxMask
	}
	return des
}

// FairRandomKey returns a random entry with a better distribution than
// RandomKey when chain lengths vary: it draws Policy.FairSampleSize
// entries with SomeKeys and picks one of them uniformly, falling back to
// RandomKey when the sample is empty.
func (d *Dict[K, V]) FairRandomKey() *Entry[K, V] {
	entries := d.SomeKeys(d.policy.FairSampleSize)
	if len(entries) == 0 {
		return d.RandomKey()
	}
	return entries[rand.IntN(len(entries))]
}
