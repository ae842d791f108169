// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// Validate checks the arena's structural invariants and returns the first
// violation found:
//   - every offset in [0, Cap()) is covered by exactly one block
//   - no two free blocks touch or overlap
//   - the live allocation count equals the number of used blocks
func (a *FixedArena) Validate() error {
	if a.released {
		if a.used.Len() != 0 || a.avail.Len() != 0 {
			return errors.New("released arena still tracks blocks")
		}
		return nil
	}

	if a.active != a.used.Len() {
		return errors.Newf("active count %d does not match %d used blocks", a.active, a.used.Len())
	}
	for start := range a.aligns {
		if _, ok := a.used.Get(start); !ok {
			return errors.Newf("alignment recorded for offset %d, which is not allocated", start)
		}
	}
	if total := a.used.Bytes() + a.avail.Bytes(); total != a.capacity {
		return errors.Newf("used %d + free %d bytes = %d, capacity is %d", a.used.Bytes(), a.avail.Bytes(), total, a.capacity)
	}

	if err := checkOrdered("used", a.used); err != nil {
		return err
	}
	if err := checkOrdered("free", a.avail); err != nil {
		return err
	}

	prev := -1
	var err error
	a.avail.Ascend(func(b Block) bool {
		if prev >= 0 && prev >= b.Start {
			err = errors.Newf("free block %s touches the previous free block ending at %d", b, prev)
			return false
		}
		prev = b.End()
		return true
	})
	if err != nil {
		return err
	}

	all := append(a.used.Blocks(), a.avail.Blocks()...)
	sort.Slice(all, func(i, j int) bool { return all[i].Start < all[j].Start })
	offset := 0
	for _, b := range all {
		if b.Start != offset {
			return errors.Newf("block %s starts at %d, expected %d", b, b.Start, offset)
		}
		offset = b.End()
	}
	if offset != a.capacity {
		return errors.Newf("blocks end at offset %d, capacity is %d", offset, a.capacity)
	}
	return nil
}

func checkOrdered(name string, l *BlockList) error {
	end := 0
	var err error
	l.Ascend(func(b Block) bool {
		switch {
		case b.Start < 0:
			err = errors.Newf("%s block %s starts before the buffer", errors.Safe(name), b)
		case b.Size <= 0:
			err = errors.Newf("%s block %s has non-positive size", errors.Safe(name), b)
		case b.Start < end:
			err = errors.Newf("%s block %s overlaps the previous block ending at %d", errors.Safe(name), b, end)
		}
		end = b.End()
		return err == nil
	})
	return err
}
