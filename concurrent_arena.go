// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"sync"
	"unsafe"
)

type concurrentArena struct {
	mtx sync.Mutex
	a   FreeingArena
}

// NewConcurrentArena returns an arena that serializes every call to a behind
// one mutex, so that it can be shared between goroutines. Wrapping a nil arena
// yields an arena that never allocates.
func NewConcurrentArena(a FreeingArena) FreeingArena {
	return &concurrentArena{a: a}
}

// Alloc satisfies the Arena interface.
func (c *concurrentArena) Alloc(size, alignment uintptr) unsafe.Pointer {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.a == nil {
		return nil
	}
	return c.a.Alloc(size, alignment)
}

// Free satisfies the FreeingArena interface.
func (c *concurrentArena) Free(ptr unsafe.Pointer) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.a == nil {
		return ErrNotAllocated
	}
	return c.a.Free(ptr)
}

// Resize satisfies the FreeingArena interface.
func (c *concurrentArena) Resize(ptr unsafe.Pointer, size int) (unsafe.Pointer, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.a == nil {
		return nil, ErrNotAllocated
	}
	return c.a.Resize(ptr, size)
}

// Reset satisfies the Arena interface.
func (c *concurrentArena) Reset() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.a != nil {
		c.a.Reset()
	}
}

// Release satisfies the Arena interface.
func (c *concurrentArena) Release() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.a != nil {
		c.a.Release()
	}
}

// Len returns the total number of bytes currently allocated in the arena.
func (c *concurrentArena) Len() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.a == nil {
		return 0
	}
	return c.a.Len()
}

// Cap returns the total capacity of the wrapped arena.
func (c *concurrentArena) Cap() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.a == nil {
		return 0
	}
	return c.a.Cap()
}

// Peak returns the peak number of bytes that have been allocated in the arena.
func (c *concurrentArena) Peak() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.a == nil {
		return 0
	}
	return c.a.Peak()
}
