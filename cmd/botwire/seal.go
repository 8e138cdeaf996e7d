// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/botwire/lib/process"
	"github.com/bureau-foundation/botwire/lib/sealed"
	"github.com/bureau-foundation/botwire/lib/secret"
)

func keygenCommand(a *app) *Command {
	var output string
	return &Command{
		Name:    "keygen",
		Summary: "Generate an age identity for sealing tokens",
		Usage:   "botwire keygen --output <identity-file>",
		Flags: func() *pflag.FlagSet {
			flagSet := a.newFlagSet("keygen")
			flagSet.StringVarP(&output, "output", "o", "", "file to write the private identity to (required)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 0 || output == "" {
				return process.Usagef("usage: botwire keygen --output <identity-file>")
			}
			keypair, err := sealed.GenerateKeypair()
			if err != nil {
				return err
			}
			defer keypair.Close()

			file, err := os.OpenFile(output, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
			if err != nil {
				return fmt.Errorf("creating identity file: %w", err)
			}
			_, err = fmt.Fprintf(file, "# public key: %s\n%s\n", keypair.PublicKey, keypair.PrivateKey.String())
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return fmt.Errorf("writing identity file: %w", err)
			}
			fmt.Fprintln(a.stdout, keypair.PublicKey)
			return nil
		},
	}
}

func sealCommand(a *app) *Command {
	var recipients []string
	var output string
	return &Command{
		Name:    "seal",
		Summary: "Encrypt a bot token to age recipients",
		Usage:   "botwire seal --recipient <age1...> [--output token.age]",
		Examples: []Example{
			{Description: "Seal a token typed at the prompt", Command: "botwire seal --recipient age1... --output token.age"},
			{Description: "Seal a token from a pipe", Command: "pass show bot | botwire seal --recipient age1..."},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := a.newFlagSet("seal")
			flagSet.StringArrayVarP(&recipients, "recipient", "r", nil, "age public key (repeatable, required)")
			flagSet.StringVarP(&output, "output", "o", "", "write the sealed token here instead of stdout")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 0 || len(recipients) == 0 {
				return process.Usagef("usage: botwire seal --recipient <age1...> [--output token.age]")
			}
			token, err := readToken(a.stdin, a.stderr)
			if err != nil {
				return err
			}
			defer token.Close()

			ciphertext, err := sealed.Seal(token.Bytes(), recipients)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = a.stdout.Write(ciphertext)
				return err
			}
			if err := os.WriteFile(output, ciphertext, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			return nil
		},
	}
}

// readToken reads a token without echo from a terminal, or the first
// line of a pipe.
func readToken(stdin io.Reader, prompt io.Writer) (*secret.Buffer, error) {
	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprint(prompt, "Bot token: ")
		data, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return nil, fmt.Errorf("reading token: %w", err)
		}
		return protectToken(data)
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading token: %w", err)
	}
	return protectToken([]byte(line))
}

func protectToken(data []byte) (*secret.Buffer, error) {
	trimmed := strings.TrimSpace(string(data))
	secret.Zero(data)
	if trimmed == "" {
		return nil, errors.New("empty token")
	}
	return secret.NewFromString(trimmed)
}
