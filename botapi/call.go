// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/bureau-foundation/botwire/lib/netutil"
)

// Execute runs request through the full pipeline and returns the raw
// result of a successful call. Failures are always *Error.
func (c *Client) Execute(ctx context.Context, request Request) (json.RawMessage, error) {
	method := request.Method()
	if method == "" {
		return nil, serializationError(method, "request has no method", nil)
	}
	if c.unauthorized.Load() {
		return nil, revokedTokenError(method)
	}

	params, attachments := resolveAttachments(request.params)
	body, err := encodeBody(params, attachments)
	if err != nil {
		return nil, serializationError(method, "encoding request body", err)
	}
	longPoll := longPollTimeout(request)

	requestID := uuid.NewString()
	var result json.RawMessage
	err = c.retry.run(ctx, method, func(try int) error {
		// A concurrent call may have tripped the latch while this one
		// was waiting out a rate limit.
		if try > 1 && c.unauthorized.Load() {
			return revokedTokenError(method)
		}
		started := time.Now()
		status, responseBody, err := c.send(ctx, method, body, longPoll)
		if err != nil {
			c.logger.Debug("call failed without response",
				"method", method,
				"request_id", requestID,
				"attempt", try,
				"timeout", netutil.IsTimeout(err),
				"error", err,
			)
			return transportError(method, err)
		}
		c.logger.Debug("call completed",
			"method", method,
			"request_id", requestID,
			"attempt", try,
			"status", status,
			"multipart", body.multipart(),
			"bytes", len(body.data),
			"duration", time.Since(started),
		)
		raw, err := decodeEnvelope(method, status, responseBody)
		if err != nil {
			return err
		}
		result = raw
		return nil
	})
	if err != nil {
		if IsKind(err, KindAuthentication) && !c.unauthorized.Swap(true) {
			c.logger.Error("bot token rejected, refusing further calls", "method", method)
		}
		return nil, err
	}
	return result, nil
}

// Call executes request and decodes the result into T.
//
//	me, err := botapi.Call[botapi.User](ctx, client, botapi.GetMe())
func Call[T any](ctx context.Context, client *Client, request Request) (T, error) {
	raw, err := client.Execute(ctx, request)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeResult[T](request.Method(), raw)
}
