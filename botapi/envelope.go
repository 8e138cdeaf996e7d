// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ResponseParameters carries the optional hints of a failed call.
type ResponseParameters struct {
	MigrateToChatID int64 `json:"migrate_to_chat_id,omitempty"`
	RetryAfter      int   `json:"retry_after,omitempty"`
}

// envelope is the wrapper every response body is decoded into.
type envelope struct {
	OK          bool                `json:"ok"`
	Result      json.RawMessage     `json:"result,omitempty"`
	ErrorCode   int                 `json:"error_code,omitempty"`
	Description string              `json:"description,omitempty"`
	Parameters  *ResponseParameters `json:"parameters,omitempty"`
}

// decodeEnvelope turns a response body into the raw result or a
// classified *Error. The body is decoded whatever the HTTP status:
// 400/403/404/409 responses carry an ordinary ok:false envelope.
func decodeEnvelope(method string, status int, body []byte) (json.RawMessage, error) {
	var decoded envelope
	if err := json.Unmarshal(body, &decoded); err != nil {
		if status >= 200 && status < 300 {
			return nil, serializationError(method, "malformed response envelope", err)
		}
		// Non-JSON error page, typically from a proxy in front of the
		// API server. Classify by status.
		return nil, classify(method, status, envelope{
			ErrorCode:   status,
			Description: summarizeBody(status, body),
		})
	}
	if decoded.OK {
		return decoded.Result, nil
	}
	return nil, classify(method, status, decoded)
}

func classify(method string, status int, decoded envelope) *Error {
	apiErr := &Error{
		Kind:        KindAPI,
		Method:      method,
		Code:        decoded.ErrorCode,
		Description: decoded.Description,
	}
	if apiErr.Code == 0 {
		apiErr.Code = status
	}
	if decoded.Parameters != nil {
		apiErr.RetryAfter = decoded.Parameters.RetryAfter
		apiErr.MigrateToChatID = decoded.Parameters.MigrateToChatID
	}

	switch {
	case status == http.StatusUnauthorized || apiErr.Code == http.StatusUnauthorized:
		apiErr.Kind = KindAuthentication
	case apiErr.RetryAfter > 0 || apiErr.Code == http.StatusTooManyRequests:
		apiErr.Kind = KindRateLimited
	}
	return apiErr
}

func summarizeBody(status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	if text == "" {
		return http.StatusText(status)
	}
	return text
}

// decodeResult decodes an ok:true result into T.
func decodeResult[T any](method string, raw json.RawMessage) (T, error) {
	var result T
	if len(raw) == 0 {
		return result, serializationError(method, "response has no result", nil)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, serializationError(method, "decoding result", err)
	}
	return result, nil
}
