// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP body reads and network error
// classification for the bot API client.
//
// Envelope bodies are read whole with [ReadResponse], capped at
// [MaxResponseSize]. File downloads stream through [CopyBounded], capped
// by the caller. [IsTimeout] separates deadline expiry from other
// transport failures so callers can log them differently.
package netutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
)

// MaxResponseSize bounds envelope body reads: 64 MB. The largest
// legitimate envelope (a full getUpdates batch of 100 updates) is a few
// megabytes.
const MaxResponseSize int64 = 64 << 20

// ErrTooLarge is returned by CopyBounded when the source exceeds the
// limit.
var ErrTooLarge = errors.New("netutil: body exceeds size limit")

// ReadResponse reads a response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// CopyBounded copies at most limit bytes from source to destination.
// If source holds more than limit bytes, the first limit bytes are
// written and ErrTooLarge is returned.
func CopyBounded(destination io.Writer, source io.Reader, limit int64) (int64, error) {
	written, err := io.Copy(destination, io.LimitReader(source, limit))
	if err != nil {
		return written, err
	}
	if written == limit {
		var probe [1]byte
		if n, _ := source.Read(probe[:]); n > 0 {
			return written, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
		}
	}
	return written, nil
}

// IsTimeout reports whether err is a deadline expiry, either from a
// context deadline or a net.Error timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
