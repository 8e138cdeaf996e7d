// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bureau-foundation/botwire/lib/clock"
)

// retryPolicy re-runs an attempt while the server answers with a
// rate-limit hint the client is willing to wait out.
type retryPolicy struct {
	// attempts is the total number of tries, including the first.
	attempts int
	// threshold is the longest retry_after waited out locally.
	threshold time.Duration
	clock     clock.Clock
	logger    *slog.Logger
}

// run calls attempt until it succeeds, fails with a non-retryable
// error, or the attempt budget is spent. The last error is returned
// unchanged.
func (p retryPolicy) run(ctx context.Context, method string, attempt func(try int) error) error {
	for try := 1; ; try++ {
		err := attempt(try)
		if err == nil {
			return nil
		}
		wait, retry := p.shouldRetry(err, try)
		if !retry {
			return err
		}
		p.logger.Warn("rate limited, waiting before retry",
			"method", method,
			"attempt", try,
			"retry_after", wait,
		)
		select {
		case <-p.clock.After(wait):
		case <-ctx.Done():
			return transportError(method, ctx.Err())
		}
	}
}

func (p retryPolicy) shouldRetry(err error, try int) (time.Duration, bool) {
	if try >= p.attempts {
		return 0, false
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Kind != KindRateLimited || apiErr.RetryAfter <= 0 {
		return 0, false
	}
	wait := time.Duration(apiErr.RetryAfter) * time.Second
	if wait > p.threshold {
		return 0, false
	}
	return wait, true
}
