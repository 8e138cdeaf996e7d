// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package botapi is a typed client for the Telegram-style bot platform
// HTTP API.
//
// Every call goes through one pipeline:
//
//	Request → resolve attachments → encode body → HTTPS POST
//	        → decode envelope → retry on rate limit → typed result
//
// A [Request] is an immutable operation name plus a tree of [Value]s.
// Values are an explicit tagged union (strings, numbers, booleans,
// timestamps, objects, arrays, [ChatTarget], [InputFile]) so that "not
// set" and "set to the zero value" are distinguishable: a parameter is
// sent if and only if it is present in the request's [Params].
//
// Requests without uploads are sent as a JSON document. Requests that
// carry at least one [FileUpload] are sent as multipart/form-data: the
// resolver moves each upload into its own file field (a top-level
// parameter keeps its own name; nested uploads such as media-group items
// and their thumbnails are referenced as "attach://<field>").
//
// All failures are returned as [*Error] with an [ErrorKind]:
// authentication (HTTP 401, sticky for the lifetime of the [Client]),
// rate limiting (retried automatically within [ClientConfig.RetryCount]
// and [ClientConfig.RetryThreshold]), API rejection, transport failure,
// and serialization failure. [IsKind] tests for a kind.
//
// [Poller] drives getUpdates long polling: one poll in flight at a time,
// updates handed to the caller in ascending update_id order, and the
// offset advanced past each update only after its handler returns
// successfully.
//
// The bot token lives in a [secret.Buffer] owned by the caller. It is
// embedded in request URLs and never logged; URLs in log records and
// transport errors have the token replaced by "<token>".
package botapi
