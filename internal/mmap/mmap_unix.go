// SPDX-License-Identifier: Apache-2.0

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

// Package mmap provides anonymous memory mappings used as arena backing buffers.
package mmap

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// Anonymous maps size bytes of private, zeroed memory outside the Go heap.
// The returned release function unmaps it; calling it twice is a no-op.
func Anonymous(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, errors.Newf("mmap: invalid size %d", size)
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "mmap: map %d bytes", size)
	}
	release := func() error {
		if data == nil {
			return nil
		}
		err := unix.Munmap(data)
		data = nil
		if errors.Is(err, unix.EINVAL) {
			return nil
		}
		return err
	}
	return data, release, nil
}
