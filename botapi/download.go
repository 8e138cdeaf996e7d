// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/bureau-foundation/botwire/lib/netutil"
	"github.com/bureau-foundation/botwire/lib/version"
)

// downloadMethod names downloads in errors and logs.
const downloadMethod = "download"

// Download streams the file at filePath (File.FilePath from getFile)
// into destination and returns the number of bytes written. Downloads
// use the upload timeout and are capped at the configured maximum
// size.
func (c *Client) Download(ctx context.Context, filePath string, destination io.Writer) (int64, error) {
	if c.unauthorized.Load() {
		return 0, revokedTokenError(downloadMethod)
	}
	if filePath == "" {
		return 0, serializationError(downloadMethod, "empty file path", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.FileURL(filePath), nil)
	if err != nil {
		return 0, transportError(downloadMethod, c.scrub(err))
	}
	request.Header.Set("User-Agent", version.UserAgent())
	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, transportError(downloadMethod, c.scrub(err))
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, readErr := netutil.ReadResponse(response.Body)
		if readErr != nil {
			return 0, transportError(downloadMethod, readErr)
		}
		_, err := decodeEnvelope(downloadMethod, response.StatusCode, body)
		if err == nil {
			// ok:true on a non-200 status is nonsense; report the status.
			err = classify(downloadMethod, response.StatusCode, envelope{Description: http.StatusText(response.StatusCode)})
		}
		if IsKind(err, KindAuthentication) {
			c.unauthorized.Store(true)
		}
		return 0, err
	}

	written, err := netutil.CopyBounded(destination, response.Body, c.maxDownloadSize)
	if err != nil {
		if errors.Is(err, netutil.ErrTooLarge) {
			return written, &Error{Kind: KindAPI, Method: downloadMethod, Description: "file exceeds download size limit", Err: err}
		}
		return written, transportError(downloadMethod, c.scrub(err))
	}
	c.logger.Debug("file downloaded", "path", filePath, "bytes", written)
	return written, nil
}
