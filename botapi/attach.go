// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"strconv"
	"strings"
)

// attachScheme prefixes references to multipart file fields from inside
// composite parameters (media-group items, thumbnails).
const attachScheme = "attach://"

// Attachment is one upload extracted from a request, sent as the
// multipart file field Field.
type Attachment struct {
	Field    string
	Filename string
	file     InputFile
}

// resolveAttachments replaces every upload in params with a reference to
// a multipart file field and returns the extracted uploads. A top-level
// upload keeps its parameter name as the field name; nested uploads get
// a field name built from their path ("media_0", "media_0_thumbnail")
// and are replaced by "attach://<field>". Field names are unique within
// the request.
//
// A tree without uploads is returned as-is with no attachments.
func resolveAttachments(params Params) (Params, []Attachment) {
	if !containsUpload(params) {
		return params, nil
	}

	resolver := &attachmentResolver{claimed: make(map[string]bool)}
	resolved := make(Params, len(params))
	names := params.names()

	// Top-level uploads first: they need their exact parameter name as
	// the field name.
	for _, name := range names {
		value := params[name]
		if value.kind == KindFile && value.file.IsUpload() {
			field := resolver.claim(name)
			resolver.add(field, value.file)
			resolved[name] = Value{kind: kindAttached, text: field}
		}
	}
	for _, name := range names {
		if _, done := resolved[name]; done {
			continue
		}
		resolved[name] = resolver.walk(name, params[name])
	}
	return resolved, resolver.attachments
}

type attachmentResolver struct {
	claimed     map[string]bool
	attachments []Attachment
}

func (r *attachmentResolver) walk(path string, value Value) Value {
	switch value.kind {
	case KindFile:
		if !value.file.IsUpload() {
			return value
		}
		field := r.claim(path)
		r.add(field, value.file)
		return String(attachScheme + field)
	case KindObject:
		fields := make(Params, len(value.object))
		for _, name := range value.object.names() {
			childPath := path + "_" + name
			if name == "media" {
				// An item's primary file is named after the item itself:
				// media_0, with its thumbnail at media_0_thumbnail.
				childPath = path
			}
			fields[name] = r.walk(childPath, value.object[name])
		}
		return Value{kind: KindObject, object: fields}
	case KindArray:
		items := make([]Value, len(value.array))
		for index, item := range value.array {
			items[index] = r.walk(path+"_"+strconv.Itoa(index), item)
		}
		return Value{kind: KindArray, array: items}
	default:
		return value
	}
}

func (r *attachmentResolver) add(field string, file InputFile) {
	filename := file.name
	if filename == "" {
		filename = field
	}
	r.attachments = append(r.attachments, Attachment{Field: field, Filename: filename, file: file})
}

// claim reserves a field name derived from path, suffixing a counter on
// collision.
func (r *attachmentResolver) claim(path string) string {
	base := sanitizeField(path)
	field := base
	for suffix := 2; r.claimed[field]; suffix++ {
		field = base + "_" + strconv.Itoa(suffix)
	}
	r.claimed[field] = true
	return field
}

// sanitizeField keeps field names to characters that need no quoting in
// a Content-Disposition header or an attach:// reference.
func sanitizeField(path string) string {
	var builder strings.Builder
	for _, character := range path {
		switch {
		case character >= 'a' && character <= 'z',
			character >= 'A' && character <= 'Z',
			character >= '0' && character <= '9',
			character == '_':
			builder.WriteRune(character)
		default:
			builder.WriteByte('_')
		}
	}
	if builder.Len() == 0 {
		return "file"
	}
	return builder.String()
}

func containsUpload(params Params) bool {
	for _, value := range params {
		if valueContainsUpload(value) {
			return true
		}
	}
	return false
}

func valueContainsUpload(value Value) bool {
	switch value.kind {
	case KindFile:
		return value.file.IsUpload()
	case KindObject:
		return containsUpload(value.object)
	case KindArray:
		for _, item := range value.array {
			if valueContainsUpload(item) {
				return true
			}
		}
	}
	return false
}
