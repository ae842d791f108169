// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"strconv"
)

// Block is a contiguous byte range [Start, Start+Size) inside a fixed arena.
// The address handed to callers is derived from Start and the arena base on
// demand, it is never stored alongside the block.
type Block struct {
	Start int
	Size  int
}

// End returns the first offset past the block.
func (b Block) End() int {
	return b.Start + b.Size
}

// Contains reports whether off lies inside the block.
func (b Block) Contains(off int) bool {
	return off >= b.Start && off < b.End()
}

// String renders the block as "start [size]".
func (b Block) String() string {
	return strconv.Itoa(b.Start) + " [" + strconv.Itoa(b.Size) + "]"
}

func lessBlock(a, b Block) bool {
	return a.Start < b.Start
}
