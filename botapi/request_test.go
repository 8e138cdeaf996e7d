// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewRequestCopiesParams(t *testing.T) {
	params := Params{"text": String("original")}
	request := NewRequest("sendMessage", params)

	params["text"] = String("mutated")
	params["extra"] = Int(1)

	value, ok := request.Param("text")
	if !ok {
		t.Fatal("text parameter missing")
	}
	if text, _ := value.Text(); text != "original" {
		t.Errorf("text = %q, want %q", text, "original")
	}
	if _, ok := request.Param("extra"); ok {
		t.Error("parameter added after construction leaked into the request")
	}
}

func TestNewRequestCopiesNestedParams(t *testing.T) {
	inner := Params{"width": Int(10)}
	request := NewRequest("sendPhoto", Params{"meta": Object(inner)})
	inner["width"] = Int(20)

	value, _ := request.Param("meta")
	fields, ok := value.Fields()
	if !ok {
		t.Fatalf("meta kind = %v, want object", value.Kind())
	}
	if width, _ := fields["width"].Integer(); width != 10 {
		t.Errorf("nested width = %d, want 10", width)
	}
}

func TestRequestWith(t *testing.T) {
	base := SendMessage(ChatID(1), "hi")
	withMode := base.With("parse_mode", String("HTML"))

	if _, ok := base.Param("parse_mode"); ok {
		t.Error("With modified the receiver")
	}
	if _, ok := withMode.Param("parse_mode"); !ok {
		t.Error("With did not add the parameter")
	}

	removed := withMode.With("parse_mode", Value{})
	if _, ok := removed.Param("parse_mode"); ok {
		t.Error("With(invalid value) did not remove the parameter")
	}
	if got := strings.Join(withMode.ParamNames(), ","); got != "chat_id,parse_mode,text" {
		t.Errorf("ParamNames = %q", got)
	}
}

func TestZeroValuesAreSent(t *testing.T) {
	params := Params{
		"disable_notification": Bool(false),
		"message_thread_id":    Int(0),
		"caption":              String(""),
	}
	data, err := json.Marshal(NewRequest("sendMessage", params).params)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"caption":"","disable_notification":false,"message_thread_id":0}`
	if string(data) != want {
		t.Errorf("encoded = %s, want %s", data, want)
	}
}

func TestValueJSON(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"string", String("a\"b"), `"a\"b"`},
		{"int", Int(-42), `-42`},
		{"float", Float(1.5), `1.5`},
		{"bool", Bool(true), `true`},
		{"time", Time(time.Unix(1700000000, 0)), `1700000000`},
		{"chat id", Chat(ChatID(-1001)), `-1001`},
		{"chat username", Chat(ChatUsername("channel")), `"@channel"`},
		{"file id", File(FileID("AgAD")), `"AgAD"`},
		{"file url", File(FileURL("https://example.com/a.png")), `"https://example.com/a.png"`},
		{"array", Strings([]string{"message", "callback_query"}), `["message","callback_query"]`},
		{"object", Object(Params{"b": Int(2), "a": Int(1)}), `{"a":1,"b":2}`},
		{"raw", JSON(map[string]any{"inline_keyboard": []any{}}), `{"inline_keyboard":[]}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			data, err := json.Marshal(test.value)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(data) != test.want {
				t.Errorf("encoded = %s, want %s", data, test.want)
			}
		})
	}
}

func TestValueJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		value Value
	}{
		{"empty chat", Chat(ChatTarget{})},
		{"upload", File(FileBytes("a.txt", []byte("a")))},
		{"unencodable raw", JSON(make(chan int))},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := json.Marshal(test.value); err == nil {
				t.Error("expected an encoding error")
			}
		})
	}
}

func TestChatTarget(t *testing.T) {
	if got := ChatUsername("@already").String(); got != "@already" {
		t.Errorf("ChatUsername(@already) = %q", got)
	}
	if got := ChatUsername("plain").String(); got != "@plain" {
		t.Errorf("ChatUsername(plain) = %q", got)
	}
	if !(ChatTarget{}).IsZero() {
		t.Error("zero ChatTarget not reported as zero")
	}
	if ChatID(0).IsZero() {
		t.Error("ChatID(0) reported as zero")
	}

	var decoded ChatTarget
	if err := json.Unmarshal([]byte(`"@name"`), &decoded); err != nil {
		t.Fatalf("Unmarshal string: %v", err)
	}
	if name, ok := decoded.Username(); !ok || name != "@name" {
		t.Errorf("Username() = %q, %v", name, ok)
	}
	if err := json.Unmarshal([]byte(`12345`), &decoded); err != nil {
		t.Fatalf("Unmarshal number: %v", err)
	}
	if id, ok := decoded.ID(); !ok || id != 12345 {
		t.Errorf("ID() = %d, %v", id, ok)
	}
	if err := json.Unmarshal([]byte(`true`), &decoded); err == nil {
		t.Error("expected error for boolean chat target")
	}
}
