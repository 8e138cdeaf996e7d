// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
)

// ErrUploadConsumed is returned when a request carrying a FileUpload
// stream is encoded a second time. Use FileBytes for content that must
// survive being sent more than once.
var ErrUploadConsumed = errors.New("botapi: upload stream already sent")

type inputFileKind uint8

const (
	inputFileID inputFileKind = iota + 1
	inputFileURL
	inputFileUpload
)

// InputFile references media for a send operation: a file already on the
// server (FileID), a URL the server fetches itself (FileURL), or content
// uploaded with the request (FileUpload, FileBytes). Only uploads turn
// into multipart attachments.
type InputFile struct {
	kind   inputFileKind
	ref    string
	name   string
	data   []byte
	stream *uploadStream
}

// uploadStream is shared by every copy of an InputFile, so a request
// copied by value still sees that its reader was consumed.
type uploadStream struct {
	reader io.Reader
	spent  atomic.Bool
}

// FileID references a file previously stored on the server.
func FileID(id string) InputFile { return InputFile{kind: inputFileID, ref: id} }

// FileURL asks the server to download the file from url.
func FileURL(url string) InputFile { return InputFile{kind: inputFileURL, ref: url} }

// FileUpload sends the contents of reader as filename. The reader is
// consumed when the request is first encoded and closed afterwards if
// it implements io.Closer; encoding the request again fails with
// ErrUploadConsumed.
func FileUpload(filename string, reader io.Reader) InputFile {
	return InputFile{kind: inputFileUpload, name: filename, stream: &uploadStream{reader: reader}}
}

// FileBytes uploads data as filename. The request can be sent any
// number of times. data must not be modified afterwards.
func FileBytes(filename string, data []byte) InputFile {
	return InputFile{kind: inputFileUpload, name: filename, data: data}
}

// open returns the upload content for one encode.
func (f InputFile) open() (io.Reader, error) {
	if f.stream == nil {
		return bytes.NewReader(f.data), nil
	}
	if f.stream.reader == nil {
		return nil, fmt.Errorf("botapi: upload %q has no content", f.name)
	}
	if !f.stream.spent.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: %q", ErrUploadConsumed, f.name)
	}
	return f.stream.reader, nil
}

// release closes an upload stream that will not be sent.
func (f InputFile) release() {
	if f.stream == nil || !f.stream.spent.CompareAndSwap(false, true) {
		return
	}
	if closer, ok := f.stream.reader.(io.Closer); ok {
		closer.Close()
	}
}

// IsUpload reports whether the file is sent as request content.
func (f InputFile) IsUpload() bool { return f.kind == inputFileUpload }

// IsZero reports whether f is unset.
func (f InputFile) IsZero() bool { return f.kind == 0 }

// Filename returns the upload's filename.
func (f InputFile) Filename() string { return f.name }

// Reference returns the file ID or URL for non-upload files.
func (f InputFile) Reference() string { return f.ref }

// MarshalJSON encodes IDs and URLs as strings. Uploads cannot be encoded
// directly; the attachment resolver replaces them first.
func (f InputFile) MarshalJSON() ([]byte, error) {
	switch f.kind {
	case inputFileID, inputFileURL:
		return json.Marshal(f.ref)
	case inputFileUpload:
		return nil, fmt.Errorf("botapi: upload %q must be sent as an attachment", f.name)
	default:
		return nil, fmt.Errorf("botapi: empty input file")
	}
}
