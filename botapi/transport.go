// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/bureau-foundation/botwire/lib/netutil"
	"github.com/bureau-foundation/botwire/lib/version"
)

// callTimeout picks the deadline for one HTTP attempt. Uploads get the
// upload timeout. A long-poll call gets at least its server-side hold
// plus a margin, so the transport never gives up before the server
// answers.
func (c *Client) callTimeout(body payload, longPoll time.Duration) time.Duration {
	timeout := c.timeout
	if body.multipart() {
		timeout = c.uploadTimeout
	}
	if longPoll > 0 && longPoll+longPollMargin > timeout {
		timeout = longPoll + longPollMargin
	}
	return timeout
}

// longPollTimeout returns the server-side hold requested by an integer
// "timeout" parameter (getUpdates), or zero.
func longPollTimeout(request Request) time.Duration {
	value, ok := request.Param("timeout")
	if !ok {
		return 0
	}
	seconds, ok := value.Integer()
	if !ok || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// send performs one HTTP POST of body to method and returns the status
// and raw response body. An error means no body was obtained.
func (c *Client) send(ctx context.Context, method string, body payload, longPoll time.Duration) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout(body, longPoll))
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(body.data))
	if err != nil {
		return 0, nil, c.scrub(err)
	}
	request.Header.Set("Content-Type", body.contentType)
	request.Header.Set("User-Agent", version.UserAgent())

	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, nil, c.scrub(err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return 0, nil, c.scrub(err)
	}
	return response.StatusCode, responseBody, nil
}

// scrub removes the token from the URL that net/http embeds in its
// errors.
func (c *Client) scrub(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		scrubbed := *urlErr
		scrubbed.URL = c.redact(urlErr.URL)
		return &scrubbed
	}
	return err
}
