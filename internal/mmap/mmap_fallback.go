// SPDX-License-Identifier: Apache-2.0

//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

// Package mmap provides anonymous memory mappings used as arena backing buffers.
package mmap

import "github.com/cockroachdb/errors"

// Anonymous allocates size bytes on the Go heap where mmap is not available.
func Anonymous(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, errors.Newf("mmap: invalid size %d", size)
	}
	return make([]byte, size), func() error { return nil }, nil
}
