// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"unsafe"
)

const growThreshold = 256

// AllocateSlice creates a slice of type T with a given length and capacity,
// using the provided Arena for memory allocation.
// If the arena is non-nil and has room, it returns a slice with memory allocated from the arena.
// Otherwise, it returns a slice using Go's built-in make function.
func AllocateSlice[T any](a Arena, len, cap int) []T {
	if a != nil {
		var x T
		bufSize := int(unsafe.Sizeof(x)) * cap
		if ptr := (*T)(a.Alloc(uintptr(bufSize), unsafe.Alignof(x))); ptr != nil {
			s := unsafe.Slice(ptr, cap)
			return s[:len]
		}
	}
	return make([]T, len, cap)
}

// SliceAppend appends elements to a slice of type T using a provided Arena
// for memory allocation if needed.
//
// When the arena is a FreeingArena and s was allocated from it, growth goes
// through Resize, so the backing array is extended in place when the bytes
// after it are free. Like realloc, s must not be used after a growing append.
func SliceAppend[T any](a Arena, s []T, data ...T) []T {
	if a == nil {
		return append(s, data...)
	}
	s = growSlice(a, s, len(data))
	s = append(s, data...)
	return s
}

// FreeSlice returns the backing array of s to the arena. It is a no-op for
// arenas that cannot free individual allocations and for empty slices.
func FreeSlice[T any](a Arena, s []T) error {
	fa, ok := a.(FreeingArena)
	if !ok || cap(s) == 0 {
		return nil
	}
	var x T
	if unsafe.Sizeof(x) == 0 {
		return nil
	}
	return fa.Free(unsafe.Pointer(unsafe.SliceData(s)))
}

func growSlice[T any](a Arena, s []T, dataLen int) []T {
	newLen := len(s) + dataLen
	newCap := cap(s)

	if newCap > 0 {
		for newLen > newCap {
			if newCap < growThreshold {
				newCap *= 2
			} else {
				newCap += newCap / 4
			}
		}
	} else {
		newCap = dataLen
	}
	if newCap == cap(s) {
		return s
	}

	var x T
	elemSize := int(unsafe.Sizeof(x))
	fa, freeing := a.(FreeingArena)
	if freeing && cap(s) > 0 && elemSize > 0 {
		old := unsafe.Pointer(unsafe.SliceData(s))
		if ptr, err := fa.Resize(old, newCap*elemSize); err == nil {
			return unsafe.Slice((*T)(ptr), newCap)[:len(s)]
		}
	}

	s2 := AllocateSlice[T](a, len(s), newCap)
	copy(s2, s)
	if freeing && cap(s) > 0 && elemSize > 0 {
		// s may not belong to the arena at all; the error is expected then.
		_ = fa.Free(unsafe.Pointer(unsafe.SliceData(s)))
	}
	return s2
}
