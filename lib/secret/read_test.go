// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFromPath(t *testing.T) {
	directory := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "plain", content: "123:abc", want: "123:abc"},
		{name: "trailing newline", content: "123:abc\n", want: "123:abc"},
		{name: "surrounding whitespace", content: "  123:abc \r\n", want: "123:abc"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(directory, strings.ReplaceAll(test.name, " ", "-"))
			if err := os.WriteFile(path, []byte(test.content), 0o600); err != nil {
				t.Fatalf("writing token file: %v", err)
			}
			buffer, err := ReadFromPath(path)
			if err != nil {
				t.Fatalf("ReadFromPath: %v", err)
			}
			defer buffer.Close()
			if buffer.String() != test.want {
				t.Errorf("ReadFromPath = %q, want %q", buffer.String(), test.want)
			}
		})
	}
}

func TestReadFromPathErrors(t *testing.T) {
	directory := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		if _, err := ReadFromPath(filepath.Join(directory, "absent")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("whitespace only", func(t *testing.T) {
		path := filepath.Join(directory, "blank")
		if err := os.WriteFile(path, []byte(" \n\t\n"), 0o600); err != nil {
			t.Fatalf("writing token file: %v", err)
		}
		if _, err := ReadFromPath(path); err == nil {
			t.Fatal("expected error for whitespace-only file")
		}
	})
}

func TestReadLine(t *testing.T) {
	buffer, err := readLine(strings.NewReader("123:abc\nignored\n"))
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	defer buffer.Close()
	if buffer.String() != "123:abc" {
		t.Errorf("readLine = %q, want first line", buffer.String())
	}

	if _, err := readLine(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}
