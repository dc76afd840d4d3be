package mapkit

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is the unit HashMap bucket arrays are rounded up to.
// It's automatically calculated using the `golang.org/x/sys` package.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

// chainHeaderSize is the footprint of one bucket header (head and tail links).
const chainHeaderSize = unsafe.Sizeof([2]unsafe.Pointer{})

// bucketsPerCacheLine is how many bucket headers share one cache line.
const bucketsPerCacheLine = max(1, int(CacheLineSize/chainHeaderSize))
