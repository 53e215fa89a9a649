/*
Package dict provides an embeddable chained hash table that resizes
incrementally.

A Dict never rehashes all at once. When it needs a new size it allocates a
second slot array and moves entries over one bucket at a time, piggybacking
on lookups and updates, so latency stays flat even for very large tables.
A host can also drive the migration explicitly with Rehash or RehashFor.

Basic usage:

	import "github.com/llxisdsh/dict"

	d := dict.New(dict.StringType[*User](), nil)

	// Insert data
	if err := d.Add("alice", alice); errors.Is(err, dict.ErrKeyExists) {
		// already there
	}

	// Retrieve data
	if e := d.Find("alice"); e != nil {
		fmt.Println("User:", e.Val())
	}

	// Iterate while deleting
	d.Range(func(e *dict.Entry[string, *User]) bool {
		if e.Val().Expired() {
			_ = d.Delete(e.Key())
		}
		return true
	})

	// Walk in chunks, e.g. one call per event loop tick
	var cursor uint64
	for {
		cursor = d.Scan(cursor, func(e *dict.Entry[string, *User]) {
			fmt.Println(e.Key())
		})
		if cursor == 0 {
			break
		}
	}

Features:

  - Type behaviors (hash, dup, compare, destructors) with an opaque privdata
  - Values are a handle or an inline int64, uint64 or float64
  - Incremental growth and explicit shrink (NeedsResize, Resize)
  - Safe iterators that pause migration, unsafe ones guarded by a fingerprint
  - Reverse-binary cursor scan that survives resizes between calls
  - Random sampling: RandomKey, FairRandomKey, SomeKeys
  - Optional memory limit reporting ErrOutOfMemory
  - Tunable Policy, loadable from HuJSON

Implementation Details:

Each slot array has a power-of-two number of buckets and each bucket is a
singly linked chain with new entries pushed at the head. While a rehash
runs, new entries go to the target array and lookups check both arrays.
An insertion starts a growth once the fill ratio exceeds the policy's
resize ratio; with the ResizeGate closed only a fill ratio above the force
ratio does. Entries are carved from cache-line multiple blocks and
recycled through a free list.

A Dict is not safe for concurrent use.

Build tags:

  - dict_opt_nofingerprint disables the unsafe iterator fingerprint check
*/
package dict
