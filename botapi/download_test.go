// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bureau-foundation/botwire/lib/netutil"
)

func TestDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/file/bot" + testToken + "/documents/file_3.pdf":
			io.WriteString(writer, "%PDF-1.7 content")
		case "/file/bot" + testToken + "/documents/huge.bin":
			io.WriteString(writer, strings.Repeat("x", 64))
		default:
			writeEnvelope(writer, http.StatusNotFound, `{"ok":false,"error_code":404,"description":"Not Found"}`)
		}
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, func(config *ClientConfig) { config.MaxDownloadSize = 32 })

	t.Run("success", func(t *testing.T) {
		var buffer bytes.Buffer
		written, err := client.Download(context.Background(), "documents/file_3.pdf", &buffer)
		if err != nil {
			t.Fatalf("Download: %v", err)
		}
		if written != int64(buffer.Len()) || buffer.String() != "%PDF-1.7 content" {
			t.Errorf("downloaded %d bytes: %q", written, buffer.String())
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := client.Download(context.Background(), "documents/missing.pdf", io.Discard)
		var apiErr *Error
		if !errors.As(err, &apiErr) || apiErr.Kind != KindAPI || apiErr.Code != 404 {
			t.Errorf("error = %v, want API error 404", err)
		}
	})

	t.Run("too large", func(t *testing.T) {
		_, err := client.Download(context.Background(), "documents/huge.bin", io.Discard)
		if !errors.Is(err, netutil.ErrTooLarge) {
			t.Errorf("error = %v, want ErrTooLarge", err)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if _, err := client.Download(context.Background(), "", io.Discard); !IsKind(err, KindSerialization) {
			t.Errorf("error = %v, want serialization error", err)
		}
	})
}

func TestGetFileThenDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/bot" + testToken + "/getFile":
			writeEnvelope(writer, http.StatusOK, `{"ok":true,"result":{"file_id":"F1","file_unique_id":"U1","file_size":5,"file_path":"photos/file_9.jpg"}}`)
		case "/file/bot" + testToken + "/photos/file_9.jpg":
			io.WriteString(writer, "JPEG!")
		default:
			writeEnvelope(writer, http.StatusNotFound, `{"ok":false,"error_code":404,"description":"Not Found"}`)
		}
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, nil)
	info, err := client.GetFile(context.Background(), "F1")
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if info != (FileInfo{FileID: "F1", FileUniqueID: "U1", FileSize: 5, FilePath: "photos/file_9.jpg"}) {
		t.Fatalf("file info = %+v", info)
	}

	var buffer bytes.Buffer
	if _, err := client.Download(context.Background(), info.FilePath, &buffer); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if buffer.String() != "JPEG!" {
		t.Errorf("downloaded %q", buffer.String())
	}
}

func TestDownloadUnauthorizedTripsLatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeEnvelope(writer, http.StatusUnauthorized, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, nil)
	if _, err := client.Download(context.Background(), "photos/a.jpg", io.Discard); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
	if !client.Unauthorized() {
		t.Error("download 401 did not trip the unauthorized latch")
	}
}
