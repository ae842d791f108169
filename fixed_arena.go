// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"log/slog"
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/wundergraph/go-pool-arena/internal/mmap"
)

// FixedArena manages first-fit sub-allocations inside one buffer whose size is
// fixed at creation. Every byte of the buffer belongs to exactly one block,
// either in the used list or in the free list, and adjacent free blocks are
// always coalesced before a method returns.
//
// A FixedArena is not safe for concurrent use; wrap it with NewConcurrentArena
// when it is shared between goroutines.
type FixedArena struct {
	buf      []byte
	base     unsafe.Pointer
	capacity int

	used   *BlockList
	avail  *BlockList
	aligns map[int]int // start of used block -> alignment requested through Alloc

	active int // live allocations
	peak   int // high-water mark of bytes in use

	log      *slog.Logger
	zero     bool
	useMmap  bool
	unmap    func() error
	released bool
}

var _ FreeingArena = (*FixedArena)(nil)

// NewFixedArena creates an arena of capacity bytes holding a single free block
// [0, capacity). It panics if capacity is not positive.
func NewFixedArena(capacity int, opts ...FixedArenaOption) *FixedArena {
	mustPositive("capacity", capacity)

	a := &FixedArena{
		capacity: capacity,
		used:     NewBlockList(),
		avail:    NewBlockList(),
		aligns:   make(map[int]int),
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}

	switch {
	case a.buf != nil:
		if len(a.buf) != capacity {
			panic(errors.AssertionFailedf("arena: backing buffer holds %d bytes, capacity is %d", len(a.buf), capacity))
		}
	case a.useMmap:
		data, release, err := mmap.Anonymous(capacity)
		if err != nil {
			a.log.Warn("mmap backing unavailable, using heap buffer", "capacity", capacity, "error", err)
			a.buf = make([]byte, capacity)
		} else {
			a.buf, a.unmap = data, release
		}
	default:
		a.buf = make([]byte, capacity)
	}
	a.base = unsafe.Pointer(unsafe.SliceData(a.buf))
	a.avail.Insert(Block{Start: 0, Size: capacity})
	return a
}

// Allocate reserves size bytes from the first free block large enough to hold
// them and returns their address. It panics if size is not positive and
// returns ErrNoSpace when no single free block fits, leaving the arena as it
// was.
func (a *FixedArena) Allocate(size int) (unsafe.Pointer, error) {
	a.mustExist()
	mustPositive("allocation size", size)
	if a.released {
		return nil, ErrReleased
	}

	b, ok := a.allocate(size, 1)
	if !ok {
		a.log.Debug("allocation miss",
			"size", size,
			"free_bytes", a.avail.Bytes(),
			"free_blocks", a.avail.Len())
		return nil, errors.Wrapf(ErrNoSpace, "allocate %d bytes", size)
	}
	return a.addr(b.Start), nil
}

// Free returns the allocation at ptr to the free list and coalesces it with
// its neighbours.
func (a *FixedArena) Free(ptr unsafe.Pointer) error {
	a.mustExist()
	b, err := a.lookup(ptr)
	if err != nil {
		return err
	}
	a.release(b)
	return nil
}

// Resize changes the size of the allocation at ptr to size bytes.
//
// Shrinking always happens in place. Growing first tries to absorb the free
// block that starts right where the allocation ends; otherwise the content is
// moved to a fresh block, at the alignment the allocation was made with, and
// the old one is freed. If no fresh block fits, ErrNoSpace is returned and the
// original allocation is left untouched.
// Resize panics if size is not positive.
func (a *FixedArena) Resize(ptr unsafe.Pointer, size int) (unsafe.Pointer, error) {
	a.mustExist()
	mustPositive("resize size", size)

	b, err := a.lookup(ptr)
	if err != nil {
		return nil, err
	}

	switch {
	case size == b.Size:
		return ptr, nil

	case size < b.Size:
		a.used.Replace(Block{Start: b.Start, Size: size})
		a.avail.Insert(Block{Start: b.Start + size, Size: b.Size - size})
		a.avail.Coalesce()
		return ptr, nil
	}

	extra := size - b.Size
	if next, ok := a.avail.Get(b.End()); ok && next.Size >= extra {
		a.avail.Remove(next.Start)
		if next.Size > extra {
			a.avail.Insert(Block{Start: next.Start + extra, Size: next.Size - extra})
		}
		a.used.Replace(Block{Start: b.Start, Size: size})
		if a.zero {
			clear(a.buf[b.End() : b.Start+size])
		}
		a.trackPeak()
		return ptr, nil
	}

	nb, ok := a.allocate(size, a.alignment(b.Start))
	if !ok {
		a.log.Debug("resize miss",
			"start", b.Start,
			"size", b.Size,
			"new_size", size,
			"free_bytes", a.avail.Bytes())
		return nil, errors.Wrapf(ErrNoSpace, "grow block at offset %d from %d to %d bytes", b.Start, b.Size, size)
	}
	copy(a.buf[nb.Start:nb.Start+b.Size], a.buf[b.Start:b.End()])
	a.release(b)

	a.log.Debug("relocated block",
		"from", b.Start,
		"to", nb.Start,
		"size", b.Size,
		"new_size", size)
	return a.addr(nb.Start), nil
}

// Destroy releases the arena once every allocation has been freed. It returns
// ErrActiveAllocations, changing nothing, while allocations are live.
func (a *FixedArena) Destroy() error {
	a.mustExist()
	if a.released {
		return ErrReleased
	}
	if a.active != 0 {
		a.log.Debug("destroy refused", "active", a.active, "in_use", a.used.Bytes())
		return errors.Wrapf(ErrActiveAllocations, "%d allocations", a.active)
	}

	if a.used.Len() != 0 || a.avail.Len() != 1 {
		return errors.AssertionFailedf("arena: drained arena has %d used and %d free blocks", a.used.Len(), a.avail.Len())
	}
	if front, _ := a.avail.Front(); front != (Block{Start: 0, Size: a.capacity}) {
		return errors.AssertionFailedf("arena: drained arena free block is %s, want 0 [%d]", front, a.capacity)
	}

	a.Release()
	return nil
}

// Bytes returns the allocation at ptr as a byte slice. The slice aliases the
// arena buffer and is valid until the allocation is freed or moved.
func (a *FixedArena) Bytes(ptr unsafe.Pointer) ([]byte, error) {
	a.mustExist()
	b, err := a.lookup(ptr)
	if err != nil {
		return nil, err
	}
	return a.buf[b.Start:b.End():b.End()], nil
}

// Offset returns the offset of ptr from the start of the arena buffer.
func (a *FixedArena) Offset(ptr unsafe.Pointer) (int, bool) {
	if a.released || ptr == nil {
		return 0, false
	}
	return a.offset(ptr)
}

// ActiveCount returns the number of live allocations.
func (a *FixedArena) ActiveCount() int {
	return a.active
}

// Blocks returns the allocated blocks in ascending offset order.
func (a *FixedArena) Blocks() []Block {
	return a.used.Blocks()
}

// FreeBlocks returns the free blocks in ascending offset order.
func (a *FixedArena) FreeBlocks() []Block {
	return a.avail.Blocks()
}

// Alloc satisfies the Arena interface. Unlike Allocate it honours alignment,
// leaving any bytes skipped for alignment in the free list, always hands out
// zeroed memory, and reports failure by returning nil. A zero size, or an
// alignment that is not a power of two or exceeds the capacity, fails.
func (a *FixedArena) Alloc(size, alignment uintptr) unsafe.Pointer {
	if a.released || size == 0 || size > uintptr(a.capacity) {
		return nil
	}
	if alignment == 0 {
		alignment = 1
	}
	if alignment&(alignment-1) != 0 || alignment > uintptr(a.capacity) {
		return nil
	}
	b, ok := a.allocate(int(size), int(alignment))
	if !ok {
		return nil
	}
	if !a.zero {
		clear(a.buf[b.Start:b.End()])
	}
	return a.addr(b.Start)
}

// Reset satisfies the Arena interface. Every allocation is dropped at once and
// the buffer becomes a single free block again.
func (a *FixedArena) Reset() {
	if a.released {
		return
	}
	a.used.Clear()
	a.avail.Clear()
	a.avail.Insert(Block{Start: 0, Size: a.capacity})
	clear(a.aligns)
	a.active = 0
}

// Release satisfies the Arena interface. It drops the buffer regardless of live
// allocations; use Destroy to refuse while allocations are outstanding.
func (a *FixedArena) Release() {
	if a.released {
		return
	}
	a.released = true
	a.used.Clear()
	a.avail.Clear()
	clear(a.aligns)
	a.active = 0
	if a.unmap != nil {
		if err := a.unmap(); err != nil {
			a.log.Warn("unmap arena buffer", "error", err)
		}
		a.unmap = nil
	}
	a.buf = nil
	a.base = nil
}

// Len returns the number of bytes currently allocated.
func (a *FixedArena) Len() int {
	return a.used.Bytes()
}

// Cap returns the fixed capacity of the arena.
func (a *FixedArena) Cap() int {
	return a.capacity
}

// Peak returns the highest number of bytes that were allocated at once.
// It is not reset by Reset.
func (a *FixedArena) Peak() int {
	return a.peak
}

// allocate carves size bytes out of the first free block that can hold them
// at the requested alignment. Bytes skipped for alignment stay free.
func (a *FixedArena) allocate(size, alignment int) (Block, bool) {
	var (
		hit   Block
		pad   int
		found bool
	)
	a.avail.Ascend(func(b Block) bool {
		pad = a.padding(b.Start, alignment)
		if b.Size >= pad+size {
			hit, found = b, true
			return false
		}
		return true
	})
	if !found {
		return Block{}, false
	}

	nb := Block{Start: hit.Start + pad, Size: size}
	a.avail.Remove(hit.Start)
	if pad > 0 {
		a.avail.Insert(Block{Start: hit.Start, Size: pad})
	}
	if rest := hit.Size - pad - size; rest > 0 {
		a.avail.Insert(Block{Start: nb.End(), Size: rest})
	}
	a.used.Insert(nb)
	if alignment > 1 {
		a.aligns[nb.Start] = alignment
	}
	a.active++
	a.trackPeak()

	if a.zero {
		clear(a.buf[nb.Start:nb.End()])
	}
	return nb, true
}

// release moves b from the used list to the free list.
func (a *FixedArena) release(b Block) {
	a.used.Remove(b.Start)
	delete(a.aligns, b.Start)
	a.avail.Insert(b)
	a.avail.Coalesce()
	a.active--
}

func (a *FixedArena) lookup(ptr unsafe.Pointer) (Block, error) {
	if ptr == nil {
		return Block{}, ErrNilAddress
	}
	if a.released {
		return Block{}, ErrReleased
	}
	off, ok := a.offset(ptr)
	if !ok {
		return Block{}, errors.Wrapf(ErrNotAllocated, "address %p outside arena", ptr)
	}
	b, ok := a.used.Get(off)
	if !ok {
		return Block{}, errors.Wrapf(ErrNotAllocated, "offset %d", off)
	}
	return b, nil
}

func (a *FixedArena) addr(off int) unsafe.Pointer {
	return unsafe.Add(a.base, off)
}

func (a *FixedArena) offset(ptr unsafe.Pointer) (int, bool) {
	p, base := uintptr(ptr), uintptr(a.base)
	if p < base || p-base >= uintptr(a.capacity) {
		return 0, false
	}
	return int(p - base), true
}

func (a *FixedArena) padding(start, alignment int) int {
	if alignment <= 1 {
		return 0
	}
	al := uintptr(alignment)
	return int((al - (uintptr(a.base)+uintptr(start))%al) % al)
}

// alignment returns the alignment the used block at start was allocated with.
func (a *FixedArena) alignment(start int) int {
	if al, ok := a.aligns[start]; ok {
		return al
	}
	return 1
}

func (a *FixedArena) trackPeak() {
	if n := a.used.Bytes(); n > a.peak {
		a.peak = n
	}
}

func (a *FixedArena) mustExist() {
	if a == nil {
		panic(errors.AssertionFailedf("arena: nil arena"))
	}
}
