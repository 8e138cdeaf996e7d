// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. It holds the
// raw I/O that happens before the structured logger exists or after
// main() has given up: reporting a fatal error on stderr and choosing
// the exit status.
package process
