// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ChatTarget identifies a chat either by numeric ID or by public
// "@username". It holds exactly one of the two.
type ChatTarget struct {
	id       int64
	username string
	byName   bool
	set      bool
}

// ChatID targets a chat by numeric identifier.
func ChatID(id int64) ChatTarget {
	return ChatTarget{id: id, set: true}
}

// ChatUsername targets a public chat or channel by username. A missing
// leading "@" is added.
func ChatUsername(username string) ChatTarget {
	if !strings.HasPrefix(username, "@") {
		username = "@" + username
	}
	return ChatTarget{username: username, byName: true, set: true}
}

// IsZero reports whether the target is unset.
func (c ChatTarget) IsZero() bool { return !c.set }

// ID returns the numeric identifier, if that is the variant held.
func (c ChatTarget) ID() (int64, bool) { return c.id, c.set && !c.byName }

// Username returns the "@username", if that is the variant held.
func (c ChatTarget) Username() (string, bool) { return c.username, c.byName }

// String returns the wire form: the decimal ID or the username.
func (c ChatTarget) String() string {
	if c.byName {
		return c.username
	}
	return strconv.FormatInt(c.id, 10)
}

// MarshalJSON encodes a number for IDs and a string for usernames.
func (c ChatTarget) MarshalJSON() ([]byte, error) {
	if !c.set {
		return nil, fmt.Errorf("botapi: empty chat target")
	}
	if c.byName {
		return json.Marshal(c.username)
	}
	return strconv.AppendInt(nil, c.id, 10), nil
}

// UnmarshalJSON accepts either wire form.
func (c *ChatTarget) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var username string
		if err := json.Unmarshal(data, &username); err != nil {
			return err
		}
		*c = ChatUsername(username)
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("botapi: chat target must be a number or string: %w", err)
	}
	*c = ChatID(id)
	return nil
}
