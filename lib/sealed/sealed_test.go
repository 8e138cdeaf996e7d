// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	keypair, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	defer keypair.Close()

	if !strings.HasPrefix(keypair.PublicKey, "age1") {
		t.Errorf("public key %q does not look like an age recipient", keypair.PublicKey)
	}

	ciphertext, err := Seal([]byte("123456:ABC-token\n"), []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if !strings.HasPrefix(string(ciphertext), "-----BEGIN AGE ENCRYPTED FILE-----") {
		t.Errorf("ciphertext is not armored: %q", ciphertext[:20])
	}
	if strings.Contains(string(ciphertext), "ABC-token") {
		t.Fatal("ciphertext contains plaintext token")
	}

	token, err := Open(ciphertext, keypair.PrivateKey)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer token.Close()
	if token.String() != "123456:ABC-token" {
		t.Errorf("Open = %q, want trimmed token", token.String())
	}
}

func TestOpenWrongIdentity(t *testing.T) {
	sender, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	defer sender.Close()
	other, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	defer other.Close()

	ciphertext, err := Seal([]byte("token"), []string{sender.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := Open(ciphertext, other.PrivateKey); err == nil {
		t.Fatal("Open with the wrong identity succeeded")
	}
}

func TestSealRequiresRecipient(t *testing.T) {
	if _, err := Seal([]byte("token"), nil); err == nil {
		t.Fatal("expected error without recipients")
	}
	if _, err := Seal([]byte("token"), []string{"not-a-key"}); err == nil {
		t.Fatal("expected error for malformed recipient")
	}
}

func TestOpenFile(t *testing.T) {
	keypair, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	defer keypair.Close()

	directory := t.TempDir()
	identityPath := filepath.Join(directory, "identity.txt")
	identity := "# created for tests\n" + keypair.PrivateKey.String() + "\n"
	if err := os.WriteFile(identityPath, []byte(identity), 0o600); err != nil {
		t.Fatalf("writing identity: %v", err)
	}

	ciphertext, err := Seal([]byte("42:sealed"), []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	tokenPath := filepath.Join(directory, "token.age")
	if err := os.WriteFile(tokenPath, ciphertext, 0o600); err != nil {
		t.Fatalf("writing sealed token: %v", err)
	}

	token, err := OpenFile(tokenPath, identityPath)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer token.Close()
	if token.String() != "42:sealed" {
		t.Errorf("OpenFile = %q", token.String())
	}
}
