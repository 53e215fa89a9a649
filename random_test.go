package dict

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func requireLive(t *testing.T, d *Dict[string, int], e *Entry[string, int]) {
	t.Helper()
	require.NotNil(t, e)
	require.Equal(t, entryLinked, e.state)
	require.Same(t, e, d.FindEntryByHash(e.Key(), d.Hash(e.Key())))
}

func TestDict_RandomKeyEmpty(t *testing.T) {
	t.Parallel()

	d := newStringDict()
	require.Nil(t, d.RandomKey())
	require.Nil(t, d.FairRandomKey())
	require.Empty(t, d.SomeKeys(10))

	require.NoError(t, d.Add("a", 1))
	require.NoError(t, d.Delete("a"))
	require.Nil(t, d.RandomKey())
}

func TestDict_RandomKeyLiveEntries(t *testing.T) {
	t.Parallel()

	for _, newDict := range []func(...func(*Config)) *Dict[string, int]{
		newStringDict, newBadDict, newTruncDict,
	} {
		d := newDict()
		for i, s := range testData {
			require.NoError(t, d.Add(s, i))
		}
		for i := 0; i < 1000; i++ {
			requireLive(t, d, d.RandomKey())
			requireLive(t, d, d.FairRandomKey())
		}
	}
}

func TestDict_RandomKeyWhileRehashing(t *testing.T) {
	t.Parallel()

	d := newStringDict()
	for i, s := range testData {
		require.NoError(t, d.Add(s, i))
	}
	d.Rehash(1 << 20)
	require.NoError(t, d.Expand(1024))
	// Migrate part of the table, then freeze the layout.
	d.Rehash(16)
	it := d.SafeIterator()
	defer it.Release()
	require.True(t, d.IsRehashing())
	require.NotZero(t, d.ht[0].used)
	require.NotZero(t, d.ht[1].used)

	const draws = 4000
	inOld := 0
	for i := 0; i < draws; i++ {
		e := d.RandomKey()
		requireLive(t, d, e)
		for x := *d.ht[0].bucket(d.Hash(e.Key())); x != nil; x = x.next {
			if x == e {
				inOld++
				break
			}
		}
	}
	require.Positive(t, inOld)
	require.Less(t, inOld, draws)
}

func TestDict_RandomKeyReachesEveryEntry(t *testing.T) {
	t.Parallel()

	d := newStringDict()
	for i, s := range testDataSmall {
		require.NoError(t, d.Add(s, i))
	}
	seen := make(map[string]bool)
	for i := 0; i < 10000 && len(seen) < len(testDataSmall); i++ {
		seen[d.RandomKey().Key()] = true
	}
	require.Len(t, seen, len(testDataSmall))
}

func TestDict_SomeKeys(t *testing.T) {
	t.Parallel()

	d := newStringDict()
	for i, s := range testData[:100] {
		require.NoError(t, d.Add(s, i))
	}
	d.Rehash(1 << 20)

	require.Empty(t, d.SomeKeys(0))
	require.Empty(t, d.SomeKeys(-1))

	for i := 0; i < 100; i++ {
		keys := d.SomeKeys(10)
		require.NotEmpty(t, keys)
		require.LessOrEqual(t, len(keys), 10)
		for _, e := range keys {
			requireLive(t, d, e)
		}
	}

	// Asking for more than the dict holds is capped at its size.
	require.LessOrEqual(t, len(d.SomeKeys(1000)), 100)
}

func TestDict_SomeKeysWhileRehashing(t *testing.T) {
	t.Parallel()

	for _, target := range []uint64{1024, 16} {
		d := newStringDict()
		for i, s := range testData[:100] {
			require.NoError(t, d.Add(s, i))
		}
		d.Rehash(1 << 20)
		for _, s := range testData[16:100] {
			require.NoError(t, d.Delete(s))
		}
		require.NoError(t, d.Expand(target))
		d.Rehash(4)

		it := d.SafeIterator()
		require.True(t, d.IsRehashing())
		for i := 0; i < 100; i++ {
			for _, e := range d.SomeKeys(5) {
				requireLive(t, d, e)
			}
		}
		it.Release()
	}
}
