// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Stats is a point-in-time summary of a fixed arena.
type Stats struct {
	Capacity      int     // total bytes managed
	InUse         int     // bytes in allocated blocks
	Free          int     // bytes in free blocks
	Peak          int     // high-water mark of InUse
	Active        int     // live allocations
	FreeBlocks    int     // number of free blocks
	LargestFree   int     // size of the largest free block
	Fragmentation float64 // 1 - LargestFree/Free, 0 when nothing is free
}

// Stats returns a snapshot of the arena's accounting.
func (a *FixedArena) Stats() Stats {
	s := Stats{
		Capacity:   a.capacity,
		InUse:      a.used.Bytes(),
		Free:       a.avail.Bytes(),
		Peak:       a.peak,
		Active:     a.active,
		FreeBlocks: a.avail.Len(),
	}
	a.avail.Ascend(func(b Block) bool {
		if b.Size > s.LargestFree {
			s.LargestFree = b.Size
		}
		return true
	})
	if s.Free > 0 {
		s.Fragmentation = 1 - float64(s.LargestFree)/float64(s.Free)
	}
	return s
}

// WriteActive writes the allocated blocks as "active: start [size], ..." or
// "active: none" when nothing is allocated.
func (a *FixedArena) WriteActive(w io.Writer) error {
	if a.active == 0 {
		return writeLine(w, "active", nil)
	}
	return writeLine(w, "active", a.used)
}

// WriteAvailable writes the free blocks as "available: start [size], ..." or
// "available: none" when the free list is empty.
func (a *FixedArena) WriteAvailable(w io.Writer) error {
	if a.avail.Len() == 0 {
		return writeLine(w, "available", nil)
	}
	return writeLine(w, "available", a.avail)
}

func writeLine(w io.Writer, label string, l *BlockList) error {
	var sb strings.Builder
	sb.WriteString(label)
	sb.WriteString(": ")
	if l == nil {
		sb.WriteString("none")
	} else {
		first := true
		l.Ascend(func(b Block) bool {
			if !first {
				sb.WriteString(", ")
			}
			first = false
			sb.WriteString(b.String())
			return true
		})
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteJSON writes a detailed map of the arena:
//
//	{"capacity":100,"inUse":30,"peak":30,"active":[{"start":0,"size":30}],"available":[{"start":30,"size":70}]}
func (a *FixedArena) WriteJSON(w io.Writer) error {
	jw := jwriter.NewWriter()
	obj := jw.Object()
	obj.Name("capacity").Int(a.capacity)
	obj.Name("inUse").Int(a.used.Bytes())
	obj.Name("peak").Int(a.peak)
	writeBlocksJSON(obj.Name("active"), a.used)
	writeBlocksJSON(obj.Name("available"), a.avail)
	obj.End()

	if err := jw.Error(); err != nil {
		return errors.Wrap(err, "arena: encode json map")
	}
	_, err := w.Write(append(jw.Bytes(), '\n'))
	return err
}

func writeBlocksJSON(jw *jwriter.Writer, l *BlockList) {
	arr := jw.Array()
	l.Ascend(func(b Block) bool {
		o := arr.Object()
		o.Name("start").Int(b.Start)
		o.Name("size").Int(b.Size)
		o.End()
		return true
	})
	arr.End()
}
