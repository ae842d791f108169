// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"github.com/cockroachdb/errors"
	"github.com/google/btree"
)

const blockListDegree = 8

// BlockList is an ordered collection of disjoint byte ranges, sorted by start
// offset. A fixed arena keeps one for allocated blocks and one for free blocks.
//
// BlockList is not safe for concurrent use.
type BlockList struct {
	tree  *btree.BTreeG[Block]
	bytes int // sum of all block sizes
}

// NewBlockList creates an empty BlockList.
func NewBlockList() *BlockList {
	return &BlockList{
		tree: btree.NewG[Block](blockListDegree, lessBlock),
	}
}

// Len returns the number of blocks in the list.
func (l *BlockList) Len() int {
	return l.tree.Len()
}

// Bytes returns the total number of bytes covered by the list.
func (l *BlockList) Bytes() int {
	return l.bytes
}

// Insert adds b keeping ascending start order. Ranges in a list are disjoint,
// so inserting a second block with an existing start offset is a caller bug.
func (l *BlockList) Insert(b Block) {
	if _, replaced := l.tree.ReplaceOrInsert(b); replaced {
		panic(errors.AssertionFailedf("arena: block list already holds a block at offset %d", b.Start))
	}
	l.bytes += b.Size
}

// Replace swaps the block starting at b.Start for b. It reports false, leaving
// the list untouched, if no such block exists.
func (l *BlockList) Replace(b Block) bool {
	old, ok := l.tree.Get(Block{Start: b.Start})
	if !ok {
		return false
	}
	l.tree.ReplaceOrInsert(b)
	l.bytes += b.Size - old.Size
	return true
}

// Get returns the block starting at start.
func (l *BlockList) Get(start int) (Block, bool) {
	return l.tree.Get(Block{Start: start})
}

// Remove deletes the block starting at start and returns it. The boolean is
// false when there is no such block.
func (l *BlockList) Remove(start int) (Block, bool) {
	if front, ok := l.tree.Min(); ok && front.Start == start {
		return l.RemoveFront()
	}
	if back, ok := l.tree.Max(); ok && back.Start == start {
		return l.RemoveBack()
	}
	b, ok := l.tree.Delete(Block{Start: start})
	if ok {
		l.bytes -= b.Size
	}
	return b, ok
}

// RemoveFront removes the block with the lowest start offset.
func (l *BlockList) RemoveFront() (Block, bool) {
	b, ok := l.tree.DeleteMin()
	if ok {
		l.bytes -= b.Size
	}
	return b, ok
}

// RemoveBack removes the block with the highest start offset.
func (l *BlockList) RemoveBack() (Block, bool) {
	b, ok := l.tree.DeleteMax()
	if ok {
		l.bytes -= b.Size
	}
	return b, ok
}

// Front returns the block with the lowest start offset.
func (l *BlockList) Front() (Block, bool) {
	return l.tree.Min()
}

// Back returns the block with the highest start offset.
func (l *BlockList) Back() (Block, bool) {
	return l.tree.Max()
}

// Ascend calls fn for every block in ascending start order until fn returns false.
func (l *BlockList) Ascend(fn func(b Block) bool) {
	l.tree.Ascend(btree.ItemIteratorG[Block](fn))
}

// Blocks returns a snapshot of the list in ascending start order.
func (l *BlockList) Blocks() []Block {
	out := make([]Block, 0, l.tree.Len())
	l.tree.Ascend(func(b Block) bool {
		out = append(out, b)
		return true
	})
	return out
}

// FirstFit returns the lowest-offset block whose size is at least size.
func (l *BlockList) FirstFit(size int) (Block, bool) {
	var (
		hit   Block
		found bool
	)
	l.tree.Ascend(func(b Block) bool {
		if b.Size >= size {
			hit, found = b, true
			return false
		}
		return true
	})
	return hit, found
}

// Coalesce makes a single forward pass merging every block that touches or
// overlaps its successor. It returns the number of blocks dropped; running it
// again right away returns 0.
func (l *BlockList) Coalesce() int {
	if l.tree.Len() < 2 {
		return 0
	}

	var (
		merged  []Block
		dropped []int
		cur     Block
		started bool
	)
	l.tree.Ascend(func(next Block) bool {
		if !started {
			cur, started = next, true
			return true
		}
		if cur.End() >= next.Start {
			if next.End() > cur.End() {
				cur.Size = next.End() - cur.Start
			}
			dropped = append(dropped, next.Start)
			return true
		}
		merged = append(merged, cur)
		cur = next
		return true
	})
	if len(dropped) == 0 {
		return 0
	}
	merged = append(merged, cur)

	for _, start := range dropped {
		l.tree.Delete(Block{Start: start})
	}
	l.bytes = 0
	for _, b := range merged {
		l.tree.ReplaceOrInsert(b)
		l.bytes += b.Size
	}
	return len(dropped)
}

// Clear removes every block.
func (l *BlockList) Clear() {
	l.tree.Clear(false)
	l.bytes = 0
}
