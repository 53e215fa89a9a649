package dict

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is the cache line size of the target CPU as reported by
// `golang.org/x/sys/cpu`. Entry blocks are sized in whole cache lines.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})
