package dict

import (
	"testing"

	"github.com/google/uuid"
)

func BenchmarkDictFindSmall(b *testing.B) {
	benchmarkDictFind(b, testDataSmall[:])
}

func BenchmarkDictFind(b *testing.B) {
	benchmarkDictFind(b, testData[:])
}

func BenchmarkDictFindLarge(b *testing.B) {
	benchmarkDictFind(b, testDataLarge[:])
}

func benchmarkDictFind(b *testing.B, data []string) {
	b.ReportAllocs()
	d := newStringDict()
	for i := range data {
		_ = d.Add(data[i], i)
	}
	d.Rehash(1 << 30)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = d.Find(data[i%len(data)])
	}
}

func BenchmarkDictAdd(b *testing.B) {
	benchmarkDictAdd(b, testData[:])
}

func BenchmarkDictAddLarge(b *testing.B) {
	benchmarkDictAdd(b, testDataLarge[:])
}

// benchmarkDictAdd measures insertion including incremental growth,
// starting over from an empty dict whenever data runs out.
func benchmarkDictAdd(b *testing.B, data []string) {
	b.ReportAllocs()
	d := newStringDict()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		j := i % len(data)
		if j == 0 {
			d.Empty(nil)
		}
		_ = d.Add(data[j], j)
	}
}

func BenchmarkDictReplaceDelete(b *testing.B) {
	b.ReportAllocs()
	data := testDataLarge[:]
	d := newStringDict()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := data[i%len(data)]
		if i&1 == 0 {
			_, _ = d.Replace(k, i)
		} else {
			_ = d.Delete(data[(i/2)%len(data)])
		}
	}
}

func BenchmarkDictUUIDKeys(b *testing.B) {
	b.ReportAllocs()
	keys := make([]string, 1<<14)
	for i := range keys {
		keys[i] = uuid.NewString()
	}
	d := newStringDict(WithPresize(len(keys)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := keys[i%len(keys)]
		if e := d.Find(k); e == nil {
			_ = d.Add(k, i)
		}
	}
}

func BenchmarkDictSafeIterator(b *testing.B) {
	b.ReportAllocs()
	d := newStringDict()
	for i, s := range testData {
		_ = d.Add(s, i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		it := d.SafeIterator()
		for e := it.Next(); e != nil; e = it.Next() {
		}
		it.Release()
	}
}

func BenchmarkDictScan(b *testing.B) {
	b.ReportAllocs()
	d := newStringDict()
	for i, s := range testDataLarge {
		_ = d.Add(s, i)
	}
	var cursor uint64
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cursor = d.Scan(cursor, func(*Entry[string, int]) {})
	}
}

func BenchmarkDictRandomKey(b *testing.B) {
	b.ReportAllocs()
	d := newStringDict()
	for i, s := range testDataLarge {
		_ = d.Add(s, i)
	}
	d.Rehash(1 << 30)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = d.RandomKey()
	}
}

func BenchmarkDictSomeKeys(b *testing.B) {
	b.ReportAllocs()
	d := newStringDict()
	for i, s := range testDataLarge {
		_ = d.Add(s, i)
	}
	d.Rehash(1 << 30)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = d.SomeKeys(16)
	}
}

func BenchmarkGenStringHash(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = GenStringHash(testData[i%len(testData)])
	}
}
