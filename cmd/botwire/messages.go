// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/botwire/botapi"
	"github.com/bureau-foundation/botwire/lib/process"
)

func getMeCommand(a *app) *Command {
	return &Command{
		Name:    "getme",
		Summary: "Show the bot's own user",
		Flags:   func() *pflag.FlagSet { return a.newFlagSet("getme") },
		Run: func(args []string) error {
			if len(args) != 0 {
				return process.Usagef("getme takes no arguments")
			}
			session, err := a.connect()
			if err != nil {
				return err
			}
			defer session.Close()

			user, err := session.client.GetMe(a.ctx)
			if err != nil {
				return err
			}
			return writeJSON(a.stdout, user)
		},
	}
}

type sendOptions struct {
	photo               string
	document            string
	album               []string
	caption             string
	parseMode           string
	disableNotification bool
	replyTo             int64
}

func sendCommand(a *app) *Command {
	var options sendOptions
	return &Command{
		Name:    "send",
		Summary: "Send a text message, photo, document, or album",
		Usage:   "botwire send [flags] <chat> [text]",
		Examples: []Example{
			{Description: "Send a text message", Command: "botwire send 123456789 'deploy finished'"},
			{Description: "Upload a photo with a caption", Command: "botwire send @channel --photo plot.png --caption 'p99 latency'"},
			{Description: "Send an album", Command: "botwire send 123456789 --album a.jpg --album b.jpg"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := a.newFlagSet("send")
			flagSet.StringVar(&options.photo, "photo", "", "photo to send: local path, URL, or file ID")
			flagSet.StringVar(&options.document, "document", "", "document to send: local path, URL, or file ID")
			flagSet.StringArrayVar(&options.album, "album", nil, "album item (repeatable, 2-10 photos)")
			flagSet.StringVar(&options.caption, "caption", "", "caption for a photo, document, or the first album item")
			flagSet.StringVar(&options.parseMode, "parse-mode", "", "text formatting: MarkdownV2 or HTML")
			flagSet.BoolVar(&options.disableNotification, "silent", false, "send without notification sound")
			flagSet.Int64Var(&options.replyTo, "reply-to", 0, "message ID to reply to")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return process.Usagef("usage: botwire send [flags] <chat> [text]")
			}
			chat, err := parseChat(args[0])
			if err != nil {
				return process.Usagef("%v", err)
			}
			text := ""
			if len(args) == 2 {
				text = args[1]
			}

			if len(options.album) > 0 {
				if len(options.album) < 2 || len(options.album) > 10 {
					return process.Usagef("an album needs 2 to 10 items, got %d", len(options.album))
				}
				session, err := a.connect()
				if err != nil {
					return err
				}
				defer session.Close()
				return sendAlbum(a, session, chat, options)
			}

			request, closer, err := buildSend(chat, text, options)
			if err != nil {
				return err
			}
			defer closer()

			session, err := a.connect()
			if err != nil {
				return err
			}
			defer session.Close()

			message, err := session.client.Send(a.ctx, request)
			if err != nil {
				return err
			}
			session.logger.Info("message sent", "chat", chat.String(), "message_id", message.MessageID)
			return writeJSON(a.stdout, message)
		},
	}
}

// buildSend builds the sendMessage, sendPhoto or sendDocument request
// for options. The returned func closes any opened upload.
func buildSend(chat botapi.ChatTarget, text string, options sendOptions) (botapi.Request, func(), error) {
	closer := func() {}
	var request botapi.Request
	switch {
	case options.photo != "" && options.document != "":
		return request, closer, process.Usagef("--photo and --document are mutually exclusive")
	case options.photo != "" || options.document != "":
		source := options.photo
		if source == "" {
			source = options.document
		}
		file, closeFile, err := openInput(source)
		if err != nil {
			return request, closer, err
		}
		closer = closeFile
		if options.photo != "" {
			request = botapi.SendPhoto(chat, file)
		} else {
			request = botapi.SendDocument(chat, file)
		}
		caption := options.caption
		if caption == "" {
			caption = text
		}
		if caption != "" {
			request = request.With("caption", botapi.String(caption))
		}
	default:
		if text == "" {
			return request, closer, process.Usagef("nothing to send: give text, --photo, --document, or --album")
		}
		request = botapi.SendMessage(chat, text)
	}

	if options.parseMode != "" {
		request = request.With("parse_mode", botapi.String(options.parseMode))
	}
	if options.disableNotification {
		request = request.With("disable_notification", botapi.Bool(true))
	}
	if options.replyTo != 0 {
		request = request.With("reply_parameters", botapi.Object(botapi.Params{
			"message_id": botapi.Int(options.replyTo),
		}))
	}
	return request, closer, nil
}

func sendAlbum(a *app, session *botSession, chat botapi.ChatTarget, options sendOptions) error {
	var closers []func()
	defer func() {
		for _, closeFile := range closers {
			closeFile()
		}
	}()

	media := make([]botapi.InputMedia, 0, len(options.album))
	for index, source := range options.album {
		file, closeFile, err := openInput(source)
		if err != nil {
			return err
		}
		closers = append(closers, closeFile)
		item := botapi.PhotoMedia(file)
		if index == 0 && options.caption != "" {
			item = item.WithCaption(options.caption, options.parseMode)
		}
		media = append(media, item)
	}

	messages, err := session.client.SendMediaGroup(a.ctx, chat, media...)
	if err != nil {
		return err
	}
	session.logger.Info("album sent", "chat", chat.String(), "items", len(messages))
	return writeJSON(a.stdout, messages)
}

// openInput interprets a file argument: an http(s) URL is passed by
// reference, an existing local path is uploaded, anything else is
// taken as a file ID.
func openInput(source string) (botapi.InputFile, func(), error) {
	if strings.HasPrefix(source, "https://") || strings.HasPrefix(source, "http://") {
		return botapi.FileURL(source), func() {}, nil
	}
	file, err := os.Open(source)
	if err == nil {
		return botapi.FileUpload(filepath.Base(source), file), func() { file.Close() }, nil
	}
	if !errors.Is(err, os.ErrNotExist) || strings.ContainsRune(source, os.PathSeparator) {
		return botapi.InputFile{}, nil, fmt.Errorf("opening %s: %w", source, err)
	}
	return botapi.FileID(source), func() {}, nil
}

func editCommand(a *app) *Command {
	var parseMode string
	return &Command{
		Name:    "edit",
		Summary: "Replace the text of a sent message",
		Usage:   "botwire edit [flags] <chat> <message-id> <text>",
		Flags: func() *pflag.FlagSet {
			flagSet := a.newFlagSet("edit")
			flagSet.StringVar(&parseMode, "parse-mode", "", "text formatting: MarkdownV2 or HTML")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 3 {
				return process.Usagef("usage: botwire edit [flags] <chat> <message-id> <text>")
			}
			chat, err := parseChat(args[0])
			if err != nil {
				return process.Usagef("%v", err)
			}
			messageID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return process.Usagef("invalid message ID %q", args[1])
			}

			session, err := a.connect()
			if err != nil {
				return err
			}
			defer session.Close()

			request := botapi.EditMessageText(chat, messageID, args[2])
			if parseMode != "" {
				request = request.With("parse_mode", botapi.String(parseMode))
			}
			result, err := botapi.Call[botapi.MessageOrBool](a.ctx, session.client, request)
			if err != nil {
				return err
			}
			if result.Message != nil {
				return writeJSON(a.stdout, result.Message)
			}
			return writeJSON(a.stdout, result.OK)
		},
	}
}

func webhookCommand(a *app) *Command {
	var remove, dropPending bool
	return &Command{
		Name:    "webhook",
		Summary: "Show or remove the webhook registration",
		Flags: func() *pflag.FlagSet {
			flagSet := a.newFlagSet("webhook")
			flagSet.BoolVar(&remove, "delete", false, "remove the webhook so updates can be polled")
			flagSet.BoolVar(&dropPending, "drop-pending", false, "with --delete, discard queued updates")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return process.Usagef("webhook takes no arguments")
			}
			session, err := a.connect()
			if err != nil {
				return err
			}
			defer session.Close()

			if remove {
				if err := session.client.DeleteWebhook(a.ctx, dropPending); err != nil {
					return err
				}
				session.logger.Info("webhook deleted", "drop_pending", dropPending)
			}
			info, err := session.client.GetWebhookInfo(a.ctx)
			if err != nil {
				return err
			}
			return writeJSON(a.stdout, info)
		},
	}
}
