// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package botapi

import (
	"context"
	"time"
)

// Builders for the operations the client itself depends on, plus the
// common sends. Any other operation is a NewRequest away; optional
// parameters are added with Request.With:
//
//	request := botapi.SendMessage(botapi.ChatID(42), "*hi*").
//		With("parse_mode", botapi.String("MarkdownV2"))

func GetMe() Request { return NewRequest("getMe", nil) }

// GetUpdates long-polls for events with update_id >= offset. timeout
// is the server-side hold, truncated to whole seconds; zero makes a
// short poll. An empty allowed list keeps the server's current filter.
func GetUpdates(offset int64, limit int, timeout time.Duration, allowed []string) Request {
	params := Params{
		"offset":  Int(offset),
		"timeout": Int(int64(timeout / time.Second)),
	}
	if limit > 0 {
		params["limit"] = Int(int64(limit))
	}
	if len(allowed) > 0 {
		params["allowed_updates"] = Strings(allowed)
	}
	return NewRequest("getUpdates", params)
}

func SendMessage(chat ChatTarget, text string) Request {
	return NewRequest("sendMessage", Params{
		"chat_id": Chat(chat),
		"text":    String(text),
	})
}

// SendPhoto sends a photo by file ID, URL or upload.
func SendPhoto(chat ChatTarget, photo InputFile) Request {
	return NewRequest("sendPhoto", Params{
		"chat_id": Chat(chat),
		"photo":   File(photo),
	})
}

func SendDocument(chat ChatTarget, document InputFile) Request {
	return NewRequest("sendDocument", Params{
		"chat_id":  Chat(chat),
		"document": File(document),
	})
}

// SendMediaGroup sends 2 to 10 items as an album. Uploads inside the
// items are sent as attach:// file fields.
func SendMediaGroup(chat ChatTarget, media ...InputMedia) Request {
	items := make([]Value, len(media))
	for index, item := range media {
		items[index] = item.Value()
	}
	return NewRequest("sendMediaGroup", Params{
		"chat_id": Chat(chat),
		"media":   Array(items...),
	})
}

func EditMessageText(chat ChatTarget, messageID int64, text string) Request {
	return NewRequest("editMessageText", Params{
		"chat_id":    Chat(chat),
		"message_id": Int(messageID),
		"text":       String(text),
	})
}

func GetFile(fileID string) Request {
	return NewRequest("getFile", Params{"file_id": String(fileID)})
}

// DeleteWebhook switches the bot to getUpdates mode. The
// drop_pending_updates flag is always sent, false included.
func DeleteWebhook(dropPending bool) Request {
	return NewRequest("deleteWebhook", Params{"drop_pending_updates": Bool(dropPending)})
}

func GetWebhookInfo() Request { return NewRequest("getWebhookInfo", nil) }

// GetMe returns the bot's own account. A cheap way to check the token.
func (c *Client) GetMe(ctx context.Context) (User, error) {
	return Call[User](ctx, c, GetMe())
}

// GetUpdates performs one getUpdates call.
func (c *Client) GetUpdates(ctx context.Context, offset int64, limit int, timeout time.Duration, allowed []string) ([]Update, error) {
	return Call[[]Update](ctx, c, GetUpdates(offset, limit, timeout, allowed))
}

// Send executes any operation whose result is a single Message
// (sendMessage, sendPhoto, sendDocument, forwardMessage...).
func (c *Client) Send(ctx context.Context, request Request) (Message, error) {
	return Call[Message](ctx, c, request)
}

// SendMediaGroup sends an album and returns the messages it created.
func (c *Client) SendMediaGroup(ctx context.Context, chat ChatTarget, media ...InputMedia) ([]Message, error) {
	return Call[[]Message](ctx, c, SendMediaGroup(chat, media...))
}

// EditMessageText replaces the text of a message.
func (c *Client) EditMessageText(ctx context.Context, chat ChatTarget, messageID int64, text string) (MessageOrBool, error) {
	return Call[MessageOrBool](ctx, c, EditMessageText(chat, messageID, text))
}

// GetFile resolves a file ID to a downloadable path.
func (c *Client) GetFile(ctx context.Context, fileID string) (FileInfo, error) {
	return Call[FileInfo](ctx, c, GetFile(fileID))
}

// DeleteWebhook removes any webhook so that getUpdates can be used.
func (c *Client) DeleteWebhook(ctx context.Context, dropPending bool) error {
	_, err := Call[bool](ctx, c, DeleteWebhook(dropPending))
	return err
}

func (c *Client) GetWebhookInfo(ctx context.Context) (WebhookInfo, error) {
	return Call[WebhookInfo](ctx, c, GetWebhookInfo())
}
