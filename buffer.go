// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"io"

	"github.com/cockroachdb/errors"
)

const minRead = 512

// Buffer is a bytes.Buffer-like byte queue whose storage comes from an arena.
// With a FreeingArena such as FixedArena the buffer owns a single block that
// grows through Resize, and Free hands it back.
// If the arena is nil or runs out of space, Go allocation is used instead.
type Buffer struct {
	arena Arena
	buf   []byte
	r     int // read offset
}

// NewArenaBuffer creates a new Buffer backed by the given arena.
func NewArenaBuffer(arena Arena) *Buffer {
	return &Buffer{arena: arena}
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	b.buf = SliceAppend(b.arena, b.buf, p...)
	return len(p), nil
}

// WriteByte appends c to the buffer.
func (b *Buffer) WriteByte(c byte) error {
	b.buf = SliceAppend(b.arena, b.buf, c)
	return nil
}

// WriteString appends s to the buffer.
func (b *Buffer) WriteString(s string) (n int, err error) {
	return b.Write([]byte(s))
}

// ReadFrom implements io.ReaderFrom, reading directly into the spare
// capacity of the arena block until EOF.
func (b *Buffer) ReadFrom(r io.Reader) (n int64, err error) {
	for {
		if cap(b.buf)-len(b.buf) < minRead {
			b.buf = growSlice(b.arena, b.buf, minRead)
		}
		nr, er := r.Read(b.buf[len(b.buf):cap(b.buf)])
		if nr < 0 {
			panic("arena: reader returned negative count from Read")
		}
		b.buf = b.buf[:len(b.buf)+nr]
		n += int64(nr)
		if er == io.EOF {
			return n, nil
		}
		if er != nil {
			return n, er
		}
	}
}

// Read reads up to len(p) unread bytes into p. It returns io.EOF once the
// buffer has been drained.
func (b *Buffer) Read(p []byte) (n int, err error) {
	if b.r >= len(b.buf) {
		b.Reset()
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n = copy(p, b.buf[b.r:])
	b.r += n
	return n, nil
}

// ReadByte reads and returns the next unread byte.
func (b *Buffer) ReadByte() (byte, error) {
	if b.r >= len(b.buf) {
		b.Reset()
		return 0, io.EOF
	}
	c := b.buf[b.r]
	b.r++
	return c, nil
}

// WriteTo implements io.WriterTo, draining the unread portion into w.
func (b *Buffer) WriteTo(w io.Writer) (n int64, err error) {
	if b.Len() == 0 {
		return 0, nil
	}
	m, err := w.Write(b.buf[b.r:])
	b.r += m
	n = int64(m)
	if err == nil && b.Len() > 0 {
		err = io.ErrShortWrite
	}
	if b.Len() == 0 {
		b.Reset()
	}
	return n, err
}

// Bytes returns the unread portion of the buffer. The slice aliases arena
// memory and is valid only until the next buffer modification.
func (b *Buffer) Bytes() []byte {
	return b.buf[b.r:]
}

// String returns the unread portion of the buffer as a string.
func (b *Buffer) String() string {
	return string(b.buf[b.r:])
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.buf) - b.r
}

// Cap returns the capacity of the buffer's storage.
func (b *Buffer) Cap() int {
	return cap(b.buf)
}

// Truncate discards all but the first n unread bytes.
// It panics if n is negative or greater than the length of the buffer.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > b.Len() {
		panic("arena: truncation out of range")
	}
	b.buf = b.buf[:b.r+n]
}

// Reset empties the buffer but keeps its storage for reuse.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.r = 0
}

// Free empties the buffer and returns its storage to the arena. Storage that
// fell back to Go allocation is left to the garbage collector.
func (b *Buffer) Free() error {
	err := FreeSlice(b.arena, b.buf)
	b.buf = nil
	b.r = 0
	if errors.Is(err, ErrNotAllocated) {
		return nil
	}
	return err
}
