// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// PollerState is the lifecycle position of a Poller.
type PollerState int32

const (
	// PollerIdle: constructed, Run not yet called.
	PollerIdle PollerState = iota
	// PollerPolling: a getUpdates call is in flight.
	PollerPolling
	// PollerDispatching: handing a batch to the handler.
	PollerDispatching
	// PollerStopped: Run has returned or Stop was called. Terminal.
	PollerStopped
)

func (s PollerState) String() string {
	switch s {
	case PollerIdle:
		return "idle"
	case PollerPolling:
		return "polling"
	case PollerDispatching:
		return "dispatching"
	case PollerStopped:
		return "stopped"
	default:
		return fmt.Sprintf("PollerState(%d)", int32(s))
	}
}

const (
	// DefaultPollTimeout is the server-side long-poll hold.
	DefaultPollTimeout = 30 * time.Second

	// DefaultErrorBackoff is the pause after a failed poll or handler.
	DefaultErrorBackoff = time.Second
)

// Handler processes one update. Returning an error (or panicking)
// leaves the update unacknowledged: the rest of the batch is dropped
// and the next poll starts again at this update.
type Handler func(ctx context.Context, update Update) error

// ErrorHandler receives poll failures and *HandlerError values. It is
// called from the Run goroutine.
type ErrorHandler func(err error)

// HandlerError reports a handler failure for one update.
type HandlerError struct {
	UpdateID int64
	Err      error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("botapi: handler failed for update %d: %v", e.UpdateID, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// PollerConfig holds configuration for creating a Poller.
type PollerConfig struct {
	// Offset is the first update_id to request. Zero asks the server
	// for everything it still holds.
	Offset int64

	// Limit caps the number of updates per poll (1-100). Zero leaves
	// the server default.
	Limit int

	// Timeout is the long-poll hold. Zero means DefaultPollTimeout.
	Timeout time.Duration

	// AllowedUpdates filters update kinds. Empty keeps the server's
	// current filter.
	AllowedUpdates []string

	// ErrorBackoff is the pause after a failed poll or a failed
	// handler. Zero means DefaultErrorBackoff.
	ErrorBackoff time.Duration

	// Logger is used for structured logging. If nil, the client's
	// logger is used.
	Logger *slog.Logger
}

// Poller turns repeated getUpdates calls into a stream of updates
// delivered to a Handler in ascending update_id order. At most one poll
// is in flight. The offset only moves forward, and only past updates
// whose handler succeeded.
type Poller struct {
	client       *Client
	limit        int
	timeout      time.Duration
	allowed      []string
	errorBackoff time.Duration
	logger       *slog.Logger

	offset  atomic.Int64
	state   atomic.Int32
	running atomic.Bool

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewPoller creates a Poller that uses client for its calls.
func NewPoller(client *Client, config PollerConfig) (*Poller, error) {
	if client == nil {
		return nil, errors.New("botapi: poller requires a client")
	}
	if config.Offset < 0 {
		return nil, fmt.Errorf("botapi: negative poller offset %d", config.Offset)
	}
	if config.Limit < 0 || config.Limit > 100 {
		return nil, fmt.Errorf("botapi: poller limit %d out of range 1-100", config.Limit)
	}
	logger := config.Logger
	if logger == nil {
		logger = client.logger
	}
	poller := &Poller{
		client:       client,
		limit:        config.Limit,
		timeout:      orDefault(config.Timeout, DefaultPollTimeout),
		allowed:      append([]string(nil), config.AllowedUpdates...),
		errorBackoff: orDefault(config.ErrorBackoff, DefaultErrorBackoff),
		logger:       logger,
		stopped:      make(chan struct{}),
	}
	poller.offset.Store(config.Offset)
	return poller, nil
}

// Offset returns the next update_id the poller will request.
func (p *Poller) Offset() int64 { return p.offset.Load() }

// State returns the current lifecycle state.
func (p *Poller) State() PollerState { return PollerState(p.state.Load()) }

// Stop asks Run to return. The request is checked between polls and
// between updates; an in-flight poll completes first (cancel Run's
// context to abort it). Stop is idempotent and may be called before
// Run, in which case Run returns immediately with an error.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopped)
		if !p.running.Load() {
			p.state.Store(int32(PollerStopped))
		}
	})
}

func (p *Poller) stopRequested() bool {
	select {
	case <-p.stopped:
		return true
	default:
		return false
	}
}

// Run polls until Stop is called, ctx is cancelled, or the server
// rejects the token. It returns nil after Stop, ctx.Err() after
// cancellation, and the *Error after a token rejection. Poll failures
// and handler failures are passed to onError (which may be nil) and
// the loop continues after ErrorBackoff.
func (p *Poller) Run(ctx context.Context, handler Handler, onError ErrorHandler) error {
	if handler == nil {
		return errors.New("botapi: poller requires a handler")
	}
	if p.State() == PollerStopped || p.stopRequested() {
		return errors.New("botapi: poller is stopped")
	}
	if !p.running.CompareAndSwap(false, true) {
		return errors.New("botapi: poller is already running")
	}
	defer func() {
		p.state.Store(int32(PollerStopped))
		p.running.Store(false)
	}()
	if onError == nil {
		onError = func(error) {}
	}

	p.logger.Info("update poller started", "offset", p.Offset(), "timeout", p.timeout)
	for {
		if p.stopRequested() {
			p.logger.Info("update poller stopped", "offset", p.Offset())
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		p.state.Store(int32(PollerPolling))
		updates, err := p.client.GetUpdates(ctx, p.Offset(), p.limit, p.timeout, p.allowed)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if errors.Is(err, ErrUnauthorized) {
				p.logger.Error("update poller giving up: token rejected", "error", err)
				onError(err)
				return err
			}
			p.logger.Warn("poll failed", "offset", p.Offset(), "error", err, "backoff", p.errorBackoff)
			onError(err)
			if err := p.backoff(ctx); err != nil {
				return err
			}
			continue
		}

		p.state.Store(int32(PollerDispatching))
		if failure := p.dispatch(ctx, handler, updates); failure != nil {
			p.logger.Warn("handler failed, batch dropped",
				"update_id", failure.UpdateID,
				"error", failure.Err,
				"backoff", p.errorBackoff,
			)
			onError(failure)
			if err := p.backoff(ctx); err != nil {
				return err
			}
		}
	}
}

// dispatch delivers updates in ascending order, advancing the offset
// past each one whose handler succeeds. It stops at the first failure.
func (p *Poller) dispatch(ctx context.Context, handler Handler, updates []Update) *HandlerError {
	sort.SliceStable(updates, func(i, j int) bool { return updates[i].UpdateID < updates[j].UpdateID })
	for _, update := range updates {
		if update.UpdateID < p.Offset() {
			// Already acknowledged; servers resend nothing below the
			// offset, but a misbehaving proxy might.
			continue
		}
		if p.stopRequested() || ctx.Err() != nil {
			return nil
		}
		if err := invoke(ctx, handler, update); err != nil {
			return &HandlerError{UpdateID: update.UpdateID, Err: err}
		}
		p.offset.Store(update.UpdateID + 1)
	}
	return nil
}

func invoke(ctx context.Context, handler Handler, update Update) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("handler panicked: %v", recovered)
		}
	}()
	return handler(ctx, update)
}

// backoff waits errorBackoff on the client's clock. It returns nil
// early when Stop is called and ctx.Err() when ctx is cancelled.
func (p *Poller) backoff(ctx context.Context) error {
	select {
	case <-p.client.clock.After(p.errorBackoff):
		return nil
	case <-p.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
