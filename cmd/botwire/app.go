// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/botwire/botapi"
	"github.com/bureau-foundation/botwire/lib/config"
	"github.com/bureau-foundation/botwire/lib/secret"
)

// app carries the process I/O and the flags shared by every command.
type app struct {
	ctx    context.Context
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool
}

// addCommonFlags registers --config and --verbose on a command's flag set.
func (a *app) addCommonFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&a.configPath, "config", "c", "", "configuration file (default: $"+config.EnvConfig+")")
	flagSet.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
}

// newFlagSet returns a flag set carrying the common flags.
func (a *app) newFlagSet(name string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	a.addCommonFlags(flagSet)
	return flagSet
}

// setup loads and validates the configuration and builds the logger.
func (a *app) setup() (*config.Config, *slog.Logger, error) {
	logger := newLogger(a.stderr, a.verbose)
	cfg, err := config.Resolve(a.configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logger, nil
}

// botSession is an API client together with the token it borrows.
type botSession struct {
	config *config.Config
	logger *slog.Logger
	client *botapi.Client
	token  *secret.Buffer
}

// Close releases idle connections and the token memory.
func (s *botSession) Close() {
	s.client.CloseIdleConnections()
	s.token.Close()
}

// connect loads configuration and the token and creates a client.
func (a *app) connect() (*botSession, error) {
	cfg, logger, err := a.setup()
	if err != nil {
		return nil, err
	}
	token, err := cfg.Token()
	if err != nil {
		return nil, err
	}
	client, err := botapi.NewClient(botapi.ClientConfig{
		Token:           token,
		BaseURL:         cfg.API.BaseURL,
		TestEnvironment: cfg.API.TestEnvironment,
		Timeout:         cfg.API.Timeout.Std(),
		UploadTimeout:   cfg.API.UploadTimeout.Std(),
		RetryCount:      cfg.API.RetryCount,
		RetryThreshold:  cfg.API.RetryThreshold.Std(),
		Logger:          logger,
	})
	if err != nil {
		token.Close()
		return nil, err
	}
	return &botSession{config: cfg, logger: logger, client: client, token: token}, nil
}

// newLogger returns a text logger when w is a terminal and a JSON
// logger otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		options.Level = slog.LevelDebug
	}
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

// parseChat reads a chat argument: a numeric ID or a username.
func parseChat(argument string) (botapi.ChatTarget, error) {
	if argument == "" {
		return botapi.ChatTarget{}, fmt.Errorf("empty chat")
	}
	if id, err := strconv.ParseInt(argument, 10, 64); err == nil {
		return botapi.ChatID(id), nil
	}
	if strings.ContainsAny(argument, " /") {
		return botapi.ChatTarget{}, fmt.Errorf("invalid chat %q: want a numeric ID or @username", argument)
	}
	return botapi.ChatUsername(argument), nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
