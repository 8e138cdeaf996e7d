// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("zero filled", func(t *testing.T) {
		buffer, err := New(32)
		if err != nil {
			t.Fatalf("New(32) failed: %v", err)
		}
		defer buffer.Close()

		if buffer.Len() != 32 {
			t.Errorf("Len() = %d, want 32", buffer.Len())
		}
		for index, value := range buffer.Bytes() {
			if value != 0 {
				t.Fatalf("byte %d = %d, want 0", index, value)
			}
		}
	})

	t.Run("non-positive size", func(t *testing.T) {
		for _, size := range []int{0, -1} {
			if _, err := New(size); err == nil {
				t.Errorf("New(%d) succeeded, want error", size)
			}
		}
	})
}

func TestNewFromBytesZeroesSource(t *testing.T) {
	source := []byte("123456:ABC-DEF1234ghIkl")
	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	defer buffer.Close()

	if got := buffer.String(); got != "123456:ABC-DEF1234ghIkl" {
		t.Errorf("String() = %q", got)
	}
	for index, value := range source {
		if value != 0 {
			t.Fatalf("source byte %d not zeroed", index)
		}
	}
}

func TestNewFromBytesEmpty(t *testing.T) {
	if _, err := NewFromBytes(nil); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestRedact(t *testing.T) {
	buffer, err := NewFromString("123:ABC")
	if err != nil {
		t.Fatalf("NewFromString failed: %v", err)
	}

	tests := map[string]string{
		"GET https://api.example/bot123:ABC/getMe": "GET https://api.example/bot<token>/getMe",
		"123:ABC and 123:ABC":                      "<token> and <token>",
		"no secret here":                           "no secret here",
		"123:AB partial":                           "123:AB partial",
	}
	for text, want := range tests {
		if got := buffer.Redact(text, "<token>"); got != want {
			t.Errorf("Redact(%q) = %q, want %q", text, got, want)
		}
	}

	if err := buffer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if got := buffer.Redact("bot123:ABC", "<token>"); got != "bot123:ABC" {
		t.Errorf("Redact after Close = %q, want text unchanged", got)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	buffer, err := NewFromString("token")
	if err != nil {
		t.Fatalf("NewFromString failed: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestReadAfterClosePanics(t *testing.T) {
	buffer, err := NewFromString("token")
	if err != nil {
		t.Fatalf("NewFromString failed: %v", err)
	}
	buffer.Close()

	defer func() {
		if recover() == nil {
			t.Fatal("String() after Close did not panic")
		}
	}()
	_ = buffer.String()
}
