// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for botwire.
//
// Configuration is loaded from a single file specified by either the
// BOTWIRE_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic file search. Values not set in
// the file keep the defaults from [Default].
//
// The file format is chosen by extension: .yaml/.yml (gopkg.in/yaml.v3),
// .json/.jsonc (JSON with comments and trailing commas, normalized by
// tidwall/jsonc), or .toml (pelletier/go-toml/v2). Unknown keys are an
// error in every format, so a misspelled option never silently falls
// back to its default.
//
// Durations are written as Go duration strings ("30s", "5m").
// Path fields support ${VAR} and ${VAR:-default} expansion.
//
// The bot token is never stored in the config file itself. [Config.Token]
// reads it from api.token_file (a plain file, "-" for stdin, or an
// age-encrypted file ending in .age, opened with api.identity_file), or
// from the BOTWIRE_TOKEN environment variable when no file is
// configured.
//
// This package depends on lib/secret and lib/sealed.
package config
