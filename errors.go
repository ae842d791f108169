// SPDX-License-Identifier: Apache-2.0

package arena

import "github.com/cockroachdb/errors"

var (
	// ErrNoSpace indicates that no single free block is large enough for the request.
	ErrNoSpace = errors.New("arena: no free block large enough")

	// ErrNilAddress indicates a nil address was passed to Free or Resize.
	ErrNilAddress = errors.New("arena: nil address")

	// ErrNotAllocated indicates the address is not the start of a live allocation in this arena.
	ErrNotAllocated = errors.New("arena: address not allocated")

	// ErrActiveAllocations indicates Destroy was refused because allocations are still live.
	ErrActiveAllocations = errors.New("arena: allocations still active")

	// ErrReleased indicates the arena's buffer has already been released.
	ErrReleased = errors.New("arena: released")
)

// mustPositive panics with an assertion failure when n is not positive.
func mustPositive(what string, n int) {
	if n <= 0 {
		panic(errors.AssertionFailedf("arena: %s must be positive, got %d", errors.Safe(what), n))
	}
}
