// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for botwire packages.
//
// [RequireReceive] encapsulates the timeout safety valve pattern (select
// with time.After fallback) so that individual tests do not need direct
// time.After calls. It is the only place in the test suite where real
// wall-clock timeouts are used; everything else waits on a fake clock.
//
// [WriteFile] creates fixture files (config files, token files,
// identities) in a per-test directory.
//
// [UniqueID] generates monotonically increasing identifiers for tests
// that need distinguishable names, such as queue names on a shared
// broker.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no botwire-internal dependencies.
package testutil
