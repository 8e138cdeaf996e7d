// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive stores received updates in an append-only file for
// later replay.
//
// An archive is an 8-byte header followed by a (possibly compressed)
// CBOR sequence of [Record] values:
//
//	offset 0: "BWUPDv" magic (6 bytes)
//	offset 6: format version (1)
//	offset 7: Compression
//
// Each record keeps the update's JSON exactly as the server sent it, so
// replaying an archive feeds handlers the same bytes a live poll would.
package archive

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bureau-foundation/botwire/lib/codec"
)

const (
	magic         = "BWUPDv"
	formatVersion = 1
	headerSize    = len(magic) + 2
)

// Record is one archived update.
type Record struct {
	UpdateID   int64     `cbor:"update_id"`
	Kind       string    `cbor:"kind,omitempty"`
	ReceivedAt time.Time `cbor:"received_at"`
	// Update is the update's JSON object as received.
	Update []byte `cbor:"update"`
}

// Writer appends records to an archive.
type Writer struct {
	file       *os.File
	compressor flushWriteCloser
	encoder    *codec.Encoder
	count      int
}

// Create creates (or truncates) the archive at path.
func Create(path string, compression Compression) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("archive: creating %s: %w", path, err)
	}
	writer, err := NewWriter(file, compression)
	if err != nil {
		file.Close()
		return nil, err
	}
	writer.file = file
	return writer, nil
}

// NewWriter writes an archive to destination. Close does not close
// destination.
func NewWriter(destination io.Writer, compression Compression) (*Writer, error) {
	if compression > CompressionZstd {
		return nil, fmt.Errorf("archive: unsupported compression %s", compression)
	}
	header := append([]byte(magic), formatVersion, byte(compression))
	if _, err := destination.Write(header); err != nil {
		return nil, fmt.Errorf("archive: writing header: %w", err)
	}
	compressor, err := newCompressor(destination, compression)
	if err != nil {
		return nil, err
	}
	return &Writer{compressor: compressor, encoder: codec.NewEncoder(compressor)}, nil
}

// Append adds a record.
func (w *Writer) Append(record Record) error {
	if w.encoder == nil {
		return errors.New("archive: append to closed writer")
	}
	if len(record.Update) == 0 {
		return fmt.Errorf("archive: update %d has no content", record.UpdateID)
	}
	if err := w.encoder.Encode(record); err != nil {
		return fmt.Errorf("archive: encoding update %d: %w", record.UpdateID, err)
	}
	w.count++
	return nil
}

// Count returns the number of records appended.
func (w *Writer) Count() int { return w.count }

// Flush pushes buffered records through the compressor and to disk so
// a crash loses nothing already flushed.
func (w *Writer) Flush() error {
	if w.encoder == nil {
		return nil
	}
	if err := w.compressor.Flush(); err != nil {
		return fmt.Errorf("archive: flushing: %w", err)
	}
	if w.file != nil {
		return w.file.Sync()
	}
	return nil
}

// Close finishes the compressed stream and closes the file if the
// Writer opened it. Idempotent.
func (w *Writer) Close() error {
	if w.encoder == nil {
		return nil
	}
	w.encoder = nil
	err := w.compressor.Close()
	if w.file != nil {
		if closeErr := w.file.Close(); err == nil {
			err = closeErr
		}
		w.file = nil
	}
	if err != nil {
		return fmt.Errorf("archive: closing: %w", err)
	}
	return nil
}

// Reader iterates over the records of an archive.
type Reader struct {
	file        *os.File
	compression Compression
	decoder     *codec.Decoder
	release     func()
}

// Open opens the archive at path.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("archive: opening %s: %w", path, err)
	}
	reader, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("archive: %s: %w", path, err)
	}
	reader.file = file
	return reader, nil
}

// NewReader reads an archive from source. Close does not close source.
func NewReader(source io.Reader) (*Reader, error) {
	buffered := bufio.NewReader(source)
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(buffered, header); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if !bytes.Equal(header[:len(magic)], []byte(magic)) {
		return nil, errors.New("not an update archive")
	}
	if version := header[len(magic)]; version != formatVersion {
		return nil, fmt.Errorf("unsupported archive version %d", version)
	}
	compression := Compression(header[len(magic)+1])
	decompressed, release, err := newDecompressor(buffered, compression)
	if err != nil {
		return nil, err
	}
	return &Reader{
		compression: compression,
		decoder:     codec.NewDecoder(decompressed),
		release:     release,
	}, nil
}

// Compression returns the archive's compression.
func (r *Reader) Compression() Compression { return r.compression }

// Next returns the next record, or io.EOF after the last one. A
// truncated final record (the writer crashed mid-append) is an error
// other than io.EOF.
func (r *Reader) Next() (Record, error) {
	var record Record
	if err := r.decoder.Decode(&record); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("archive: decoding record: %w", err)
	}
	return record, nil
}

// Close releases the reader. Idempotent.
func (r *Reader) Close() error {
	if r.release != nil {
		r.release()
		r.release = nil
	}
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}
