// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), ExitFailure},
		{"usage", Usagef("unknown command %q", "frobnicate"), ExitUsage},
		{"wrapped usage", fmt.Errorf("botwire: %w", Usagef("missing chat")), ExitUsage},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ExitCode(test.err); got != test.want {
				t.Errorf("ExitCode(%v) = %d, want %d", test.err, got, test.want)
			}
		})
	}
}

func TestFatal(t *testing.T) {
	var output bytes.Buffer
	var code int
	savedStderr, savedExit := stderr, exit
	t.Cleanup(func() { stderr, exit = savedStderr, savedExit })
	stderr = &output
	exit = func(status int) { code = status }

	Fatal(Usagef("missing chat"))

	if output.String() != "error: missing chat\n" {
		t.Errorf("stderr = %q", output.String())
	}
	if code != ExitUsage {
		t.Errorf("exit status = %d, want %d", code, ExitUsage)
	}
}
