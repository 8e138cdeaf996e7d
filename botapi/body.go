// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
)

// payload is an encoded request body. It is built once per Execute and
// resent unchanged on retries.
type payload struct {
	contentType string
	data        []byte
	uploads     int
}

// multipart reports whether the body carries file fields.
func (p payload) multipart() bool { return p.uploads > 0 }

// encodeBody serializes a resolved parameter tree. Without attachments
// the result is a JSON object of the set parameters; with attachments it
// is multipart/form-data with one text field per parameter and one file
// field per attachment. On failure every upload stream not yet written
// is closed.
func encodeBody(params Params, attachments []Attachment) (body payload, err error) {
	if len(attachments) == 0 {
		data, err := json.Marshal(params)
		if err != nil {
			return payload{}, err
		}
		return payload{contentType: "application/json", data: data}, nil
	}

	written := 0
	defer func() {
		if err != nil {
			for _, attachment := range attachments[written:] {
				attachment.file.release()
			}
		}
	}()

	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)
	for _, name := range params.names() {
		value := params[name]
		if value.kind == kindAttached {
			continue
		}
		text, err := value.formText()
		if err != nil {
			return payload{}, fmt.Errorf("parameter %s: %w", name, err)
		}
		if err := writer.WriteField(name, text); err != nil {
			return payload{}, fmt.Errorf("writing field %s: %w", name, err)
		}
	}

	for written < len(attachments) {
		attachment := attachments[written]
		written++
		if err := writeAttachment(writer, attachment); err != nil {
			return payload{}, err
		}
	}
	if err := writer.Close(); err != nil {
		return payload{}, fmt.Errorf("finishing multipart body: %w", err)
	}

	return payload{
		contentType: writer.FormDataContentType(),
		data:        buffer.Bytes(),
		uploads:     len(attachments),
	}, nil
}

func writeAttachment(writer *multipart.Writer, attachment Attachment) error {
	reader, err := attachment.file.open()
	if err != nil {
		return fmt.Errorf("attachment %s: %w", attachment.Field, err)
	}
	if closer, ok := reader.(io.Closer); ok {
		defer closer.Close()
	}
	part, err := writer.CreateFormFile(attachment.Field, attachment.Filename)
	if err != nil {
		return fmt.Errorf("creating file field %s: %w", attachment.Field, err)
	}
	if _, err := io.Copy(part, reader); err != nil {
		return fmt.Errorf("reading attachment %s: %w", attachment.Filename, err)
	}
	return nil
}
