// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/botwire/lib/process"
	"github.com/bureau-foundation/botwire/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		process.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{
		ctx:    ctx,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
	return rootCommand(a).Execute(args)
}

func rootCommand(a *app) *Command {
	return &Command{
		Name:    "botwire",
		Summary: "Command-line client for the bot API",
		Output:  a.stderr,
		Subcommands: []*Command{
			getMeCommand(a),
			sendCommand(a),
			editCommand(a),
			pollCommand(a),
			downloadCommand(a),
			webhookCommand(a),
			replayCommand(a),
			keygenCommand(a),
			sealCommand(a),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Fprintf(a.stdout, "botwire %s\n", version.Full())
					return nil
				},
			},
		},
	}
}
