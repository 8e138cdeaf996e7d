// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds bot tokens and other credentials outside the Go
// heap.
//
// A bot token is embedded in every request URL, so it passes through the
// client constantly and any heap copy of it can outlive the request. A
// [Buffer] keeps the durable copy in an anonymous mmap region that the
// garbage collector never sees and so never copies or relocates. The
// region is locked into RAM with mlock, which keeps it out of swap. It
// is also marked MADV_DONTDUMP so a crash does not write it into a core
// file. Close zeroes the region before unlocking and unmapping it.
//
// Heap copies still happen where an API insists on a string, through
// [Buffer.String]. Keep them at the boundary and let them die young.
// [Buffer.Redact] scrubs the secret from log and error text without
// making such a copy.
package secret

import (
	"bytes"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Buffer holds secret bytes in a protected region as described in the
// package documentation.
//
// A Buffer must not be copied after creation. Reading the contents after
// Close panics; Len and Redact stay safe to call.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	length int
	closed bool
}

// New allocates a zero-filled protected buffer of the given size. The
// caller must Close it when the secret is no longer needed.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}

	// Anonymous private mapping: fresh zero pages, no file behind them,
	// invisible to the garbage collector.
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap failed: %w", err)
	}
	if err := protect(data); err != nil {
		unix.Munmap(data)
		return nil, err
	}
	return &Buffer{data: data, length: size}, nil
}

// protect pins data in RAM and hides it from core dumps. On failure the
// region is left unlocked for the caller to unmap.
func protect(data []byte) error {
	// mlock fails with ENOMEM or EPERM when RLIMIT_MEMLOCK is exhausted.
	// A token is a few dozen bytes, well inside the default limit.
	if err := unix.Mlock(data); err != nil {
		return fmt.Errorf("secret: mlock failed: %w", err)
	}
	if err := unix.Madvise(data, unix.MADV_DONTDUMP); err != nil {
		unix.Munlock(data)
		return fmt.Errorf("secret: madvise(MADV_DONTDUMP) failed: %w", err)
	}
	return nil
}

// NewFromBytes copies source into a protected buffer and zeroes source,
// so the caller's slice no longer holds the secret.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: cannot create buffer from empty source")
	}
	buffer, err := New(len(source))
	if err != nil {
		return nil, err
	}
	copy(buffer.data, source)
	Zero(source)
	return buffer, nil
}

// NewFromString copies value into a protected buffer. The string itself
// stays on the heap until collected; prefer NewFromBytes when the caller
// owns a mutable slice.
func NewFromString(value string) (*Buffer, error) {
	return NewFromBytes([]byte(value))
}

// Bytes returns a slice pointing directly into the protected region.
// Do not retain it past Close. Panics if the buffer has been closed.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mustBeOpen()
	return b.data[:b.length]
}

// String returns a heap copy of the secret. Go strings are immutable and
// cannot be zeroed, so use it only where an API demands a string (age
// identity parsing). Panics if the buffer has been closed.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mustBeOpen()
	return string(b.data[:b.length])
}

// Redact returns text with every occurrence of the secret replaced by
// replacement. The secret is searched for in place and never copied to
// the heap. After Close there is nothing left to find and text is
// returned unchanged.
func (b *Buffer) Redact(text, replacement string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return text
	}
	source := []byte(text)
	if !bytes.Contains(source, b.data[:b.length]) {
		return text
	}
	return string(bytes.ReplaceAll(source, b.data[:b.length], []byte(replacement)))
}

// Len returns the size of the secret in bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.length
}

// Close zeroes the contents, then unlocks and unmaps the region.
// Idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	// Zero while the pages are still locked, so the cleared secret is
	// what the kernel reclaims.
	Zero(b.data)

	// Unmap even if munlock fails. The process exit would release the
	// pages anyway; the first error is reported.
	var firstError error
	if err := unix.Munlock(b.data); err != nil {
		firstError = fmt.Errorf("secret: munlock failed: %w", err)
	}
	if err := unix.Munmap(b.data); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munmap failed: %w", err)
	}
	b.data = nil
	return firstError
}

// mustBeOpen panics on a closed buffer. Callers hold b.mu.
func (b *Buffer) mustBeOpen() {
	if b.closed {
		panic("secret: read from closed buffer")
	}
}

// Zero overwrites data with zero bytes.
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
}
