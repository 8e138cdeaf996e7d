// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the stream compression of an archive. The
// value is stored in the archive header; changing the numbers breaks
// existing archives.
type Compression uint8

const (
	// CompressionNone stores records as a bare CBOR sequence.
	CompressionNone Compression = 0

	// CompressionLZ4 uses the LZ4 frame format. Cheapest on CPU.
	CompressionLZ4 Compression = 1

	// CompressionZstd uses zstd at the default level. Update JSON is
	// highly repetitive and typically shrinks 5-10x.
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name as used in configuration.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("archive: unknown compression %q", name)
	}
}

// flushWriteCloser is a compressing stream.
type flushWriteCloser interface {
	io.WriteCloser
	Flush() error
}

// nopCompressor passes bytes through unchanged.
type nopCompressor struct{ io.Writer }

func (nopCompressor) Flush() error { return nil }
func (nopCompressor) Close() error { return nil }

func newCompressor(destination io.Writer, compression Compression) (flushWriteCloser, error) {
	switch compression {
	case CompressionNone:
		return nopCompressor{destination}, nil
	case CompressionLZ4:
		return lz4.NewWriter(destination), nil
	case CompressionZstd:
		encoder, err := zstd.NewWriter(destination, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("archive: zstd encoder: %w", err)
		}
		return encoder, nil
	default:
		return nil, fmt.Errorf("archive: unsupported compression %s", compression)
	}
}

// newDecompressor returns the decompressing reader and a release
// function for decoder resources.
func newDecompressor(source io.Reader, compression Compression) (io.Reader, func(), error) {
	switch compression {
	case CompressionNone:
		return source, func() {}, nil
	case CompressionLZ4:
		return lz4.NewReader(source), func() {}, nil
	case CompressionZstd:
		decoder, err := zstd.NewReader(source)
		if err != nil {
			return nil, nil, fmt.Errorf("archive: zstd decoder: %w", err)
		}
		return decoder, decoder.Close, nil
	default:
		return nil, nil, fmt.Errorf("archive: unsupported compression %s", compression)
	}
}
