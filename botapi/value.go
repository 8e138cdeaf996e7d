// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// ValueKind identifies which variant a Value holds.
type ValueKind uint8

const (
	// KindInvalid is the zero Value. It is never sent.
	KindInvalid ValueKind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	KindObject
	KindArray
	KindChat
	KindFile
	// KindRaw holds a pre-encoded JSON document (reply markup, entity
	// lists) produced by JSON.
	KindRaw

	// kindAttached marks a top-level upload that the resolver moved into
	// a multipart file field of the same name.
	kindAttached
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindChat:
		return "chat"
	case KindFile:
		return "file"
	case KindRaw:
		return "raw"
	case kindAttached:
		return "attached"
	default:
		return "invalid"
	}
}

// Value is one parameter value. Construct with String, Int, Float, Bool,
// Time, Object, Array, Chat, File or JSON. Values are plain data with no
// references to their parents, so a parameter tree cannot contain a
// cycle.
type Value struct {
	kind    ValueKind
	text    string
	integer int64
	float   float64
	boolean bool
	time    time.Time
	object  Params
	array   []Value
	chat    ChatTarget
	file    InputFile
	raw     json.RawMessage
	err     error
}

// Params maps parameter names to values. A name is sent if and only if
// it is present.
type Params map[string]Value

func String(value string) Value { return Value{kind: KindString, text: value} }

func Int(value int64) Value { return Value{kind: KindInt, integer: value} }

func Float(value float64) Value { return Value{kind: KindFloat, float: value} }

func Bool(value bool) Value { return Value{kind: KindBool, boolean: value} }

// Time is sent as unix seconds.
func Time(value time.Time) Value { return Value{kind: KindTime, time: value} }

// Object nests a parameter tree. fields is copied.
func Object(fields Params) Value { return Value{kind: KindObject, object: fields.clone()} }

// Array holds an ordered list of values. items is copied.
func Array(items ...Value) Value {
	copied := make([]Value, len(items))
	for index, item := range items {
		copied[index] = item.clone()
	}
	return Value{kind: KindArray, array: copied}
}

func Chat(target ChatTarget) Value { return Value{kind: KindChat, chat: target} }

func File(file InputFile) Value { return Value{kind: KindFile, file: file} }

// JSON encodes v once and carries the result verbatim. Encoding errors
// surface as a serialization error when the request is executed.
func JSON(v any) Value {
	data, err := json.Marshal(v)
	if err != nil {
		return Value{kind: KindRaw, err: fmt.Errorf("encoding %T: %w", v, err)}
	}
	return Value{kind: KindRaw, raw: data}
}

// Strings is a convenience for an array of string values.
func Strings(items []string) Value {
	values := make([]Value, len(items))
	for index, item := range items {
		values[index] = String(item)
	}
	return Value{kind: KindArray, array: values}
}

// Kind returns the variant held by v.
func (v Value) Kind() ValueKind { return v.kind }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Text returns the string held by a KindString value.
func (v Value) Text() (string, bool) { return v.text, v.kind == KindString }

// Integer returns the integer held by a KindInt value.
func (v Value) Integer() (int64, bool) { return v.integer, v.kind == KindInt }

// Boolean returns the boolean held by a KindBool value.
func (v Value) Boolean() (bool, bool) { return v.boolean, v.kind == KindBool }

// Fields returns the nested tree of a KindObject value.
func (v Value) Fields() (Params, bool) { return v.object, v.kind == KindObject }

// Items returns the elements of a KindArray value.
func (v Value) Items() ([]Value, bool) { return v.array, v.kind == KindArray }

// InputFile returns the file reference of a KindFile value.
func (v Value) InputFile() (InputFile, bool) { return v.file, v.kind == KindFile }

func (v Value) clone() Value {
	switch v.kind {
	case KindObject:
		v.object = v.object.clone()
	case KindArray:
		items := make([]Value, len(v.array))
		for index, item := range v.array {
			items[index] = item.clone()
		}
		v.array = items
	}
	return v
}

func (p Params) clone() Params {
	if p == nil {
		return Params{}
	}
	copied := make(Params, len(p))
	for name, value := range p {
		if !value.IsValid() {
			continue
		}
		copied[name] = value.clone()
	}
	return copied
}

// names returns the parameter names in sorted order so that encoded
// bodies are deterministic.
func (p Params) names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON encodes the value in its wire form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.text)
	case KindInt:
		return strconv.AppendInt(nil, v.integer, 10), nil
	case KindFloat:
		return json.Marshal(v.float)
	case KindBool:
		return strconv.AppendBool(nil, v.boolean), nil
	case KindTime:
		return strconv.AppendInt(nil, v.time.Unix(), 10), nil
	case KindObject:
		return json.Marshal(v.object)
	case KindArray:
		return json.Marshal(v.array)
	case KindChat:
		return v.chat.MarshalJSON()
	case KindFile:
		return v.file.MarshalJSON()
	case KindRaw:
		if v.err != nil {
			return nil, v.err
		}
		return v.raw, nil
	case kindAttached:
		return json.Marshal(attachScheme + v.text)
	default:
		return []byte("null"), nil
	}
}

// formText encodes the value as a multipart text field. Scalars are sent
// bare; composites are sent as a JSON document.
func (v Value) formText() (string, error) {
	switch v.kind {
	case KindString:
		return v.text, nil
	case KindInt:
		return strconv.FormatInt(v.integer, 10), nil
	case KindFloat:
		return strconv.FormatFloat(v.float, 'f', -1, 64), nil
	case KindBool:
		return strconv.FormatBool(v.boolean), nil
	case KindTime:
		return strconv.FormatInt(v.time.Unix(), 10), nil
	case KindChat:
		if v.chat.IsZero() {
			return "", fmt.Errorf("empty chat target")
		}
		return v.chat.String(), nil
	case KindFile:
		if v.file.IsUpload() {
			return "", fmt.Errorf("unresolved upload %q", v.file.name)
		}
		return v.file.ref, nil
	default:
		data, err := v.MarshalJSON()
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
