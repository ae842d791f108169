// SPDX-License-Identifier: Apache-2.0

package arena

import (
	"log/slog"
)

// FixedArenaOption represents a configuration option for a fixed arena.
type FixedArenaOption func(*FixedArena)

// WithLogger sets the logger used for debug records. A nil logger keeps the
// default, which discards everything.
func WithLogger(l *slog.Logger) FixedArenaOption {
	return func(a *FixedArena) {
		if l != nil {
			a.log = l
		}
	}
}

// WithZeroing clears bytes before they are handed out by Allocate, Alloc and
// in-place growth.
func WithZeroing() FixedArenaOption {
	return func(a *FixedArena) {
		a.zero = true
	}
}

// WithBacking makes the arena manage buf instead of allocating its own buffer.
// len(buf) must equal the arena capacity.
func WithBacking(buf []byte) FixedArenaOption {
	return func(a *FixedArena) {
		a.buf = buf
	}
}

// WithMmap backs the arena with an anonymous memory mapping so that its bytes
// live outside the Go heap. The mapping is removed on Release or Destroy.
// Platforms without mmap fall back to a heap buffer.
func WithMmap() FixedArenaOption {
	return func(a *FixedArena) {
		a.useMmap = true
	}
}
