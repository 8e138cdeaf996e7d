// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the waits the bot client performs so tests can
// drive them deterministically.
//
// The client sleeps in two places: the retry policy waiting out a
// server-supplied retry_after, and the update poller backing off after a
// failed poll. Both take a [Clock]. Production code uses [Real]; tests
// use [Fake] and call [FakeClock.Advance] once [FakeClock.WaitForTimers]
// confirms the code under test is waiting.
package clock

import "time"

// Clock is the subset of the time package the client depends on.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives once d has elapsed. If
	// d <= 0 the channel is ready immediately.
	After(d time.Duration) <-chan time.Time

	// Sleep blocks for at least d.
	Sleep(d time.Duration)
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }
