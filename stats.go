package dict

import (
	"fmt"
	"strings"
)

// statsVectLen is the number of chain lengths the histogram tracks
// individually; longer chains are counted in the last slot.
const statsVectLen = 50

// Stats returns statistics for the Dict. It is an O(N) operation, so it
// should be used only for diagnostics or debugging purposes.
func (d *Dict[K, V]) Stats() *DictStats {
	stats := &DictStats{
		Main:          tableStats(&d.ht[0]),
		Rehashing:     d.IsRehashing(),
		SafeIterators: d.iterators,
		MemoryInUse:   d.alloc.inUse,
		TotalGrowths:  d.totalGrowths,
		TotalShrinks:  d.totalShrinks,
	}
	if d.IsRehashing() {
		rehash := tableStats(&d.ht[1])
		stats.RehashTarget = &rehash
	}
	return stats
}

func tableStats[K comparable, V any](t *hashTable[K, V]) TableStats {
	s := TableStats{
		Size: t.size,
		Used: t.used,
	}
	if t.used == 0 {
		return s
	}

	var totalChainLen uint64
	for i := uint64(0); i < t.size; i++ {
		if t.slots[i] == nil {
			s.ChainLengths[0]++
			continue
		}
		s.NonEmptyBuckets++
		chainLen := 0
		for e := t.slots[i]; e != nil; e = e.next {
			chainLen++
		}
		s.ChainLengths[min(chainLen, statsVectLen-1)]++
		s.MaxChainLen = max(s.MaxChainLen, chainLen)
		totalChainLen += uint64(chainLen)
	}
	s.AvgChainLen = float64(totalChainLen) / float64(s.NonEmptyBuckets)
	return s
}

// DictStats is Dict statistics.
//
// Warning: dict statistics are intended to be used for diagnostic
// purposes, not for production code. This means that breaking changes
// may be introduced into this struct even between minor releases.
type DictStats struct {
	// Main describes the primary slot array.
	Main TableStats
	// RehashTarget describes the slot array entries migrate to, nil when
	// no rehash is running.
	RehashTarget *TableStats
	// Rehashing is true while entries migrate.
	Rehashing bool
	// SafeIterators is the number of live safe iterators and scans
	// pausing the rehash.
	SafeIterators int
	// MemoryInUse is the allocator's byte count for entries and slot
	// arrays.
	MemoryInUse int
	// TotalGrowths is the number of rehashes to a larger table.
	TotalGrowths uint64
	// TotalShrinks is the number of rehashes to a smaller table.
	TotalShrinks uint64
}

// TableStats describes one slot array.
type TableStats struct {
	Size            uint64
	Used            uint64
	NonEmptyBuckets uint64
	MaxChainLen     int
	// AvgChainLen is the average length of non-empty chains.
	AvgChainLen float64
	// ChainLengths[n] is the number of buckets whose chain has n entries,
	// the last slot counting every longer chain. It is left empty for a
	// table with no entries.
	ChainLengths [statsVectLen]uint64
}

// ToString returns string representation of dict stats.
func (s *DictStats) ToString() string {
	var sb strings.Builder
	sb.WriteString("DictStats{\n")
	writeTableStats(&sb, "main hash table", &s.Main)
	if s.RehashTarget != nil {
		writeTableStats(&sb, "rehashing target", s.RehashTarget)
	}
	sb.WriteString(fmt.Sprintf("Rehashing:     %t\n", s.Rehashing))
	sb.WriteString(fmt.Sprintf("SafeIterators: %d\n", s.SafeIterators))
	sb.WriteString(fmt.Sprintf("MemoryInUse:   %d\n", s.MemoryInUse))
	sb.WriteString(fmt.Sprintf("TotalGrowths:  %d\n", s.TotalGrowths))
	sb.WriteString(fmt.Sprintf("TotalShrinks:  %d\n", s.TotalShrinks))
	sb.WriteString("}\n")
	return sb.String()
}

func writeTableStats(sb *strings.Builder, name string, s *TableStats) {
	if s.Used == 0 {
		sb.WriteString(fmt.Sprintf("%s: no stats available for empty dictionaries\n", name))
		return
	}
	sb.WriteString(fmt.Sprintf("%s:\n", name))
	sb.WriteString(fmt.Sprintf(" table size: %d\n", s.Size))
	sb.WriteString(fmt.Sprintf(" number of elements: %d\n", s.Used))
	sb.WriteString(fmt.Sprintf(" different slots: %d\n", s.NonEmptyBuckets))
	sb.WriteString(fmt.Sprintf(" max chain length: %d\n", s.MaxChainLen))
	sb.WriteString(fmt.Sprintf(" avg chain length (counted): %.02f\n", s.AvgChainLen))
	sb.WriteString(fmt.Sprintf(" avg chain length (computed): %.02f\n",
		float64(s.Used)/float64(s.NonEmptyBuckets)))
	sb.WriteString(" Chain length distribution:\n")
	for i, n := range s.ChainLengths {
		if n == 0 {
			continue
		}
		prefix := ""
		if i == statsVectLen-1 {
			prefix = ">= "
		}
		sb.WriteString(fmt.Sprintf("   %s%d: %d (%.02f%%)\n",
			prefix, i, n, float64(n)*100/float64(s.Size)))
	}
}
