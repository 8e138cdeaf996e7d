// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/botwire/lib/archive"
	"github.com/bureau-foundation/botwire/lib/codec"
	"github.com/bureau-foundation/botwire/lib/process"
)

func downloadCommand(a *app) *Command {
	var output string
	return &Command{
		Name:    "download",
		Summary: "Download a file by file ID",
		Usage:   "botwire download [flags] <file-id>",
		Flags: func() *pflag.FlagSet {
			flagSet := a.newFlagSet("download")
			flagSet.StringVarP(&output, "output", "o", "", "destination path, - for stdout (default: the file's own name)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return process.Usagef("usage: botwire download [flags] <file-id>")
			}
			session, err := a.connect()
			if err != nil {
				return err
			}
			defer session.Close()

			file, err := session.client.GetFile(a.ctx, args[0])
			if err != nil {
				return err
			}
			if file.FilePath == "" {
				return fmt.Errorf("file %s has no download path (expired or too large)", args[0])
			}

			destination := output
			if destination == "" {
				destination = filepath.Base(file.FilePath)
			}
			if destination == "-" {
				_, err := session.client.Download(a.ctx, file.FilePath, a.stdout)
				return err
			}

			target, err := os.OpenFile(destination, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if err != nil {
				return fmt.Errorf("creating %s: %w", destination, err)
			}
			written, err := session.client.Download(a.ctx, file.FilePath, target)
			if closeErr := target.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				os.Remove(destination)
				return err
			}
			session.logger.Info("file downloaded", "file_id", args[0], "path", destination, "bytes", written)
			return nil
		},
	}
}

func replayCommand(a *app) *Command {
	var diagnose bool
	var kind string
	return &Command{
		Name:    "replay",
		Summary: "Print the updates stored in an archive",
		Usage:   "botwire replay [flags] <archive>",
		Flags: func() *pflag.FlagSet {
			flagSet := a.newFlagSet("replay")
			flagSet.BoolVar(&diagnose, "diagnose", false, "print each record in CBOR diagnostic notation")
			flagSet.StringVar(&kind, "kind", "", "only print updates of this kind (message, callback_query, ...)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return process.Usagef("usage: botwire replay [flags] <archive>")
			}
			logger := newLogger(a.stderr, a.verbose)

			reader, err := archive.Open(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()

			printed := 0
			for {
				record, err := reader.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return err
				}
				if kind != "" && record.Kind != kind {
					continue
				}
				if err := printRecord(a.stdout, record, diagnose); err != nil {
					return err
				}
				printed++
			}
			logger.Debug("archive replayed", "path", args[0], "compression", reader.Compression().String(), "records", printed)
			return nil
		},
	}
}

func printRecord(w io.Writer, record archive.Record, diagnose bool) error {
	if !diagnose {
		_, err := fmt.Fprintf(w, "%s\n", record.Update)
		return err
	}
	encoded, err := codec.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding record %d: %w", record.UpdateID, err)
	}
	notation, _, err := codec.Diagnose(encoded)
	if err != nil {
		return fmt.Errorf("diagnosing record %d: %w", record.UpdateID, err)
	}
	_, err = fmt.Fprintln(w, notation)
	return err
}
