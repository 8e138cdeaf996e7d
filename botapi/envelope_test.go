// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"errors"
	"net/http"
	"reflect"
	"testing"
)

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantResult  string
		wantKind    ErrorKind
		wantCode    int
		wantRetry   int
		wantMigrate int64
		wantDesc    string
	}{
		{
			name:       "ok",
			status:     http.StatusOK,
			body:       `{"ok":true,"result":{"id":1}}`,
			wantResult: `{"id":1}`,
		},
		{
			name:     "bad request",
			status:   http.StatusBadRequest,
			body:     `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`,
			wantKind: KindAPI,
			wantCode: 400,
			wantDesc: "Bad Request: chat not found",
		},
		{
			name:     "unauthorized",
			status:   http.StatusUnauthorized,
			body:     `{"ok":false,"error_code":401,"description":"Unauthorized"}`,
			wantKind: KindAuthentication,
			wantCode: 401,
			wantDesc: "Unauthorized",
		},
		{
			name:      "rate limited",
			status:    http.StatusTooManyRequests,
			body:      `{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 5","parameters":{"retry_after":5}}`,
			wantKind:  KindRateLimited,
			wantCode:  429,
			wantRetry: 5,
			wantDesc:  "Too Many Requests: retry after 5",
		},
		{
			name:     "rate limited without hint",
			status:   http.StatusTooManyRequests,
			body:     `{"ok":false,"error_code":429,"description":"Too Many Requests"}`,
			wantKind: KindRateLimited,
			wantCode: 429,
			wantDesc: "Too Many Requests",
		},
		{
			name:        "group migrated",
			status:      http.StatusBadRequest,
			body:        `{"ok":false,"error_code":400,"description":"Bad Request: group chat was upgraded to a supergroup chat","parameters":{"migrate_to_chat_id":-1001234}}`,
			wantKind:    KindAPI,
			wantCode:    400,
			wantMigrate: -1001234,
			wantDesc:    "Bad Request: group chat was upgraded to a supergroup chat",
		},
		{
			name:     "conflict",
			status:   http.StatusConflict,
			body:     `{"ok":false,"error_code":409,"description":"Conflict: terminated by other getUpdates request"}`,
			wantKind: KindAPI,
			wantCode: 409,
			wantDesc: "Conflict: terminated by other getUpdates request",
		},
		{
			name:     "non-JSON error page",
			status:   http.StatusBadGateway,
			body:     "<html>502 Bad Gateway</html>",
			wantKind: KindAPI,
			wantCode: 502,
			wantDesc: "<html>502 Bad Gateway</html>",
		},
		{
			name:     "empty error body",
			status:   http.StatusServiceUnavailable,
			body:     "",
			wantKind: KindAPI,
			wantCode: 503,
			wantDesc: "Service Unavailable",
		},
		{
			name:     "non-JSON success",
			status:   http.StatusOK,
			body:     "not json",
			wantKind: KindSerialization,
			wantDesc: "malformed response envelope",
		},
		{
			name:     "error without code uses status",
			status:   http.StatusForbidden,
			body:     `{"ok":false,"description":"Forbidden: bot was blocked by the user"}`,
			wantKind: KindAPI,
			wantCode: 403,
			wantDesc: "Forbidden: bot was blocked by the user",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := decodeEnvelope("testMethod", test.status, []byte(test.body))
			if test.wantKind == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if string(result) != test.wantResult {
					t.Errorf("result = %s, want %s", result, test.wantResult)
				}
				return
			}
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if apiErr.Kind != test.wantKind {
				t.Errorf("kind = %v, want %v", apiErr.Kind, test.wantKind)
			}
			if apiErr.Method != "testMethod" {
				t.Errorf("method = %q", apiErr.Method)
			}
			if apiErr.Code != test.wantCode {
				t.Errorf("code = %d, want %d", apiErr.Code, test.wantCode)
			}
			if apiErr.RetryAfter != test.wantRetry {
				t.Errorf("retry after = %d, want %d", apiErr.RetryAfter, test.wantRetry)
			}
			if apiErr.MigrateToChatID != test.wantMigrate {
				t.Errorf("migrate to = %d, want %d", apiErr.MigrateToChatID, test.wantMigrate)
			}
			if apiErr.Description != test.wantDesc {
				t.Errorf("description = %q, want %q", apiErr.Description, test.wantDesc)
			}
		})
	}
}

func TestDecodeIsIdempotent(t *testing.T) {
	bodies := []string{
		`{"ok":true,"result":[{"update_id":1,"message":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}]}`,
		`{"ok":false,"error_code":429,"description":"slow down","parameters":{"retry_after":3}}`,
	}
	for _, body := range bodies {
		firstResult, firstErr := decodeEnvelope("getUpdates", 200, []byte(body))
		secondResult, secondErr := decodeEnvelope("getUpdates", 200, []byte(body))
		if string(firstResult) != string(secondResult) {
			t.Errorf("results differ: %s vs %s", firstResult, secondResult)
		}
		if !reflect.DeepEqual(firstErr, secondErr) {
			t.Errorf("errors differ: %v vs %v", firstErr, secondErr)
		}
	}
}

func TestDecodeResult(t *testing.T) {
	user, err := decodeResult[User]("getMe", []byte(`{"id":7,"is_bot":true,"first_name":"bot","username":"test_bot"}`))
	if err != nil {
		t.Fatalf("decodeResult: %v", err)
	}
	if user.ID != 7 || !user.IsBot || user.Username != "test_bot" {
		t.Errorf("user = %+v", user)
	}

	_, err = decodeResult[User]("getMe", []byte(`"not an object"`))
	if !IsKind(err, KindSerialization) {
		t.Errorf("error = %v, want serialization error", err)
	}
	_, err = decodeResult[User]("getMe", nil)
	if !IsKind(err, KindSerialization) {
		t.Errorf("empty result error = %v, want serialization error", err)
	}
}

func TestErrorMatching(t *testing.T) {
	authErr := &Error{Kind: KindAuthentication, Method: "getMe", Code: 401, Description: "Unauthorized"}
	if !errors.Is(authErr, ErrUnauthorized) {
		t.Error("authentication error does not match ErrUnauthorized")
	}
	apiErr := &Error{Kind: KindAPI, Method: "getMe", Code: 400}
	if errors.Is(apiErr, ErrUnauthorized) {
		t.Error("API error matches ErrUnauthorized")
	}

	wrapped := errors.Join(errors.New("context"), transportError("getMe", errors.New("dial tcp: refused")))
	if !IsKind(wrapped, KindTransport) {
		t.Error("IsKind does not see through wrapping")
	}
	if got, want := transportError("getMe", errors.New("refused")).Error(), "botapi: getMe: transport error: no response received: refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
