// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"
)

func encodeRequest(t *testing.T, request Request) payload {
	t.Helper()
	params, attachments := resolveAttachments(request.params)
	body, err := encodeBody(params, attachments)
	if err != nil {
		t.Fatalf("encodeBody: %v", err)
	}
	return body
}

func TestEncodeJSON(t *testing.T) {
	body := encodeRequest(t, SendMessage(ChatID(42), "hi"))
	if body.contentType != "application/json" {
		t.Errorf("content type = %q, want application/json", body.contentType)
	}
	if body.multipart() {
		t.Error("JSON body reported as multipart")
	}
	if got := string(body.data); got != `{"chat_id":42,"text":"hi"}` {
		t.Errorf("body = %s", got)
	}
}

func TestEncodeJSONEmpty(t *testing.T) {
	body := encodeRequest(t, GetMe())
	if string(body.data) != "{}" {
		t.Errorf("body = %s, want {}", body.data)
	}
}

// readForm parses a multipart payload into text fields and file parts.
func readForm(t *testing.T, body payload) (map[string]string, map[string][2]string) {
	t.Helper()
	mediaType, parameters, err := mime.ParseMediaType(body.contentType)
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("content type %q: %v", body.contentType, err)
	}
	reader := multipart.NewReader(bytes.NewReader(body.data), parameters["boundary"])
	values := make(map[string]string)
	files := make(map[string][2]string)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading part: %v", err)
		}
		content, err := io.ReadAll(part)
		if err != nil {
			t.Fatalf("reading part content: %v", err)
		}
		if part.FileName() != "" {
			files[part.FormName()] = [2]string{part.FileName(), string(content)}
		} else {
			values[part.FormName()] = string(content)
		}
	}
	return values, files
}

func TestEncodeMultipartSingleUpload(t *testing.T) {
	request := SendPhoto(ChatID(7), FileBytes("cat.jpg", []byte("JPEGDATA"))).
		With("caption", String("a cat")).
		With("disable_notification", Bool(false))
	body := encodeRequest(t, request)
	if !body.multipart() || body.uploads != 1 {
		t.Fatalf("multipart = %v uploads = %d, want one upload", body.multipart(), body.uploads)
	}

	values, files := readForm(t, body)
	wantValues := map[string]string{"chat_id": "7", "caption": "a cat", "disable_notification": "false"}
	if len(values) != len(wantValues) {
		t.Errorf("text fields = %v, want %v", values, wantValues)
	}
	for name, want := range wantValues {
		if values[name] != want {
			t.Errorf("field %s = %q, want %q", name, values[name], want)
		}
	}
	if file := files["photo"]; file != [2]string{"cat.jpg", "JPEGDATA"} {
		t.Errorf("photo part = %v", file)
	}
}

func TestEncodeMultipartCompositeFields(t *testing.T) {
	request := SendMediaGroup(ChatUsername("album"),
		PhotoMedia(FileBytes("a.jpg", []byte("A"))).WithCaption("first", ""),
		PhotoMedia(FileBytes("b.jpg", []byte("B"))),
	)
	values, files := readForm(t, encodeRequest(t, request))

	if values["chat_id"] != "@album" {
		t.Errorf("chat_id = %q", values["chat_id"])
	}
	wantMedia := `[{"caption":"first","media":"attach://media_0","type":"photo"},{"media":"attach://media_1","type":"photo"}]`
	if values["media"] != wantMedia {
		t.Errorf("media = %s\nwant   %s", values["media"], wantMedia)
	}
	if files["media_0"][1] != "A" || files["media_1"][1] != "B" {
		t.Errorf("files = %v", files)
	}
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestEncodeClosesUploadReaders(t *testing.T) {
	reader := &closeRecorder{Reader: strings.NewReader("data")}
	encodeRequest(t, SendDocument(ChatID(1), FileUpload("notes.txt", reader)))
	if !reader.closed {
		t.Error("upload reader was not closed after encoding")
	}
}

func TestEncodeReusesByteUploads(t *testing.T) {
	request := SendDocument(ChatID(1), FileBytes("notes.txt", []byte("contents")))
	for attempt := 1; attempt <= 2; attempt++ {
		_, files := readForm(t, encodeRequest(t, request))
		if got := files["document"]; got != [2]string{"notes.txt", "contents"} {
			t.Fatalf("encode %d: document = %v, want [notes.txt contents]", attempt, got)
		}
	}
}

func TestEncodeRejectsSpentStream(t *testing.T) {
	request := SendDocument(ChatID(1), FileUpload("notes.txt", strings.NewReader("contents")))
	encodeRequest(t, request)

	params, attachments := resolveAttachments(request.params)
	_, err := encodeBody(params, attachments)
	if !errors.Is(err, ErrUploadConsumed) {
		t.Fatalf("second encode error = %v, want ErrUploadConsumed", err)
	}
}

func TestEncodeFailureClosesPendingStreams(t *testing.T) {
	pending := &closeRecorder{Reader: strings.NewReader("thumb")}
	params, attachments := resolveAttachments(Params{
		"chat_id":   Chat(ChatID(1)),
		"document":  File(FileUpload("a.txt", nil)),
		"thumbnail": File(FileUpload("b.jpg", pending)),
	})
	if len(attachments) != 2 || attachments[0].Field != "document" {
		t.Fatalf("attachments = %+v, want document first", attachments)
	}
	if _, err := encodeBody(params, attachments); err == nil {
		t.Fatal("expected error for upload without content")
	}
	if !pending.closed {
		t.Error("unsent upload reader was not closed after encode failure")
	}
}

func TestEncodeErrors(t *testing.T) {
	t.Run("nil reader", func(t *testing.T) {
		params, attachments := resolveAttachments(Params{"document": File(FileUpload("x", nil))})
		if _, err := encodeBody(params, attachments); err == nil {
			t.Error("expected error for upload without content")
		}
	})
	t.Run("empty chat in multipart", func(t *testing.T) {
		params, attachments := resolveAttachments(Params{
			"chat_id": Chat(ChatTarget{}),
			"photo":   File(FileBytes("a", []byte("a"))),
		})
		if _, err := encodeBody(params, attachments); err == nil {
			t.Error("expected error for empty chat target")
		}
	})
	t.Run("empty chat in JSON", func(t *testing.T) {
		if _, err := encodeBody(Params{"chat_id": Chat(ChatTarget{})}, nil); err == nil {
			t.Error("expected error for empty chat target")
		}
	})
}
