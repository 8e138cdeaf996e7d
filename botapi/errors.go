// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed call.
type ErrorKind int

const (
	// KindAPI is any ok:false envelope that is not an authentication or
	// rate-limit failure. The request itself was rejected; it is never
	// retried locally.
	KindAPI ErrorKind = iota + 1

	// KindAuthentication means the server rejected the bot token (HTTP
	// 401). Once observed, every later call on the same Client fails
	// with this kind without a network round trip.
	KindAuthentication

	// KindRateLimited means the server asked the client to wait
	// RetryAfter seconds. Returned only after the retry policy gave up.
	KindRateLimited

	// KindTransport means no response body was obtained: connection,
	// TLS, or timeout failure.
	KindTransport

	// KindSerialization means a request could not be encoded or a
	// response could not be decoded into the expected shape.
	KindSerialization
)

func (k ErrorKind) String() string {
	switch k {
	case KindAPI:
		return "api error"
	case KindAuthentication:
		return "unauthorized"
	case KindRateLimited:
		return "rate limited"
	case KindTransport:
		return "transport error"
	case KindSerialization:
		return "serialization error"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ErrUnauthorized matches authentication failures with errors.Is.
var ErrUnauthorized = errors.New("botapi: bot token rejected")

// Error is the single failure type returned by the pipeline. Callers
// extract it with errors.As or test the kind with IsKind:
//
//	var apiErr *botapi.Error
//	if errors.As(err, &apiErr) && apiErr.Kind == botapi.KindAPI {
//	    log.Printf("server rejected %s: %s", apiErr.Method, apiErr.Description)
//	}
type Error struct {
	Kind ErrorKind
	// Method is the remote operation that failed.
	Method string
	// Code is the envelope's error_code, or the HTTP status when the
	// body carried none.
	Code int
	// Description is the server's message, or a locally synthesized one
	// for transport and serialization failures.
	Description string
	// RetryAfter is the server's retry_after hint in seconds.
	RetryAfter int
	// MigrateToChatID is set when a group was upgraded to a supergroup.
	MigrateToChatID int64
	// Err is the underlying cause for transport and serialization
	// failures.
	Err error
}

func (e *Error) Error() string {
	var builder strings.Builder
	builder.WriteString("botapi: ")
	if e.Method != "" {
		builder.WriteString(e.Method)
		builder.WriteString(": ")
	}
	builder.WriteString(e.Kind.String())
	if e.Code != 0 {
		fmt.Fprintf(&builder, " (%d)", e.Code)
	}
	if e.Description != "" {
		builder.WriteString(": ")
		builder.WriteString(e.Description)
	}
	if e.Err != nil {
		builder.WriteString(": ")
		builder.WriteString(e.Err.Error())
	}
	return builder.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrUnauthorized) true for authentication
// failures.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Kind == KindAuthentication
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

func transportError(method string, err error) *Error {
	return &Error{Kind: KindTransport, Method: method, Description: "no response received", Err: err}
}

func serializationError(method, description string, err error) *Error {
	return &Error{Kind: KindSerialization, Method: method, Description: description, Err: err}
}

func revokedTokenError(method string) *Error {
	return &Error{
		Kind:        KindAuthentication,
		Method:      method,
		Code:        401,
		Description: "token previously rejected by the server",
	}
}
