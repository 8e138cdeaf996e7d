// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

// Request describes one remote operation: the method name and its
// parameters. A Request is immutable; NewRequest deep-copies params.
type Request struct {
	method string
	params Params
}

// NewRequest builds a request for method. Parameters holding the zero
// Value are dropped.
func NewRequest(method string, params Params) Request {
	return Request{method: method, params: params.clone()}
}

// Method returns the remote operation name.
func (r Request) Method() string { return r.method }

// Param returns the named parameter.
func (r Request) Param(name string) (Value, bool) {
	value, ok := r.params[name]
	return value, ok
}

// ParamNames returns the names of all set parameters in sorted order.
func (r Request) ParamNames() []string { return r.params.names() }

// HasUploads reports whether the request will be sent as multipart.
func (r Request) HasUploads() bool { return containsUpload(r.params) }

// With returns a copy of r with name set to value.
func (r Request) With(name string, value Value) Request {
	params := r.params.clone()
	if value.IsValid() {
		params[name] = value.clone()
	} else {
		delete(params, name)
	}
	return Request{method: r.method, params: params}
}
