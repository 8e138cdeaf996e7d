// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Botwire is a command-line client for the bot API. It sends messages
// and files, long-polls updates (optionally archiving them to disk and
// publishing them to an AMQP exchange), downloads files, replays
// archives, and seals bot tokens with age.
//
// Configuration comes from --config, the BOTWIRE_CONFIG environment
// variable, or built-in defaults; the token from api.token_file or
// BOTWIRE_TOKEN.
package main
