// SPDX-License-Identifier: Apache-2.0

// Package arena provides memory arenas for allocation-heavy code paths.
//
// # Fixed arenas
//
// FixedArena manages sub-allocations inside one buffer whose size is chosen at
// creation and never changes. It tracks two ordered block lists, one for
// allocated ranges and one for free ranges, and serves requests first-fit:
//
//	a := arena.NewFixedArena(100)
//	p, err := a.Allocate(30) // offset 0
//	if err != nil {
//	    return err
//	}
//	p, err = a.Resize(p, 50) // grows in place into the free block at offset 30
//	_ = a.Free(p)            // coalesces back to a single free block
//	err = a.Destroy()        // refused while allocations are live
//
// Allocator failures (no fitting block, unknown address, destroy with live
// allocations) are returned as errors wrapping ErrNoSpace, ErrNotAllocated,
// ErrNilAddress or ErrActiveAllocations. Non-positive sizes and nil arenas are
// programming errors and panic.
//
// # Arena interface
//
// FixedArena also implements Arena and FreeingArena, so Allocate, AllocateSlice,
// SliceAppend and Buffer can draw memory from it. SliceAppend and Buffer grow
// their storage with Resize and therefore extend in place whenever the bytes
// after their block are free.
//
// # Thread Safety
//
// Arenas are not safe for concurrent use. NewConcurrentArena wraps any
// FreeingArena behind a mutex.
package arena
