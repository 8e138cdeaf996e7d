// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package instancelock ensures a single update poller per bot token on
// one machine.
//
// The bot API allows one getUpdates consumer per token; a second one
// makes both fail with 409 Conflict. Acquire takes an exclusive flock on
// a file in the lock directory before polling starts, so a second
// process fails fast with a clear error instead.
//
// The lock file name is a BLAKE3 keyed hash of the token: stable for a
// token, unrelated across tokens, and useless for recovering the token
// from a directory listing.
package instancelock

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/sys/unix"
)

// ErrLocked is returned by Acquire when another process (or another
// Lock in this process) holds the lock.
var ErrLocked = errors.New("instancelock: another poller is running for this bot token")

// lockDomainKey separates lock names from any other use of a keyed hash
// over the token. ASCII of the domain name, zero-padded to 32 bytes.
var lockDomainKey = [32]byte{
	'b', 'o', 't', 'w', 'i', 'r', 'e', '.', 'p', 'o', 'l', 'l', 'e', 'r', '.', 'l',
	'o', 'c', 'k', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Lock is a held instance lock. Release it when polling stops.
type Lock struct {
	file *os.File
	path string
}

// Name returns the lock file name for token.
func Name(token []byte) string {
	hasher, err := blake3.NewKeyed(lockDomainKey[:])
	if err != nil {
		panic("instancelock: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(token)
	sum := hasher.Sum(nil)
	return "poller-" + hex.EncodeToString(sum[:12]) + ".lock"
}

// Acquire takes the lock for token in directory, creating the directory
// if needed. It does not wait: if the lock is held, the error wraps
// ErrLocked and names the holder's PID when known.
func Acquire(directory string, token []byte) (*Lock, error) {
	if len(token) == 0 {
		return nil, errors.New("instancelock: empty token")
	}
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return nil, fmt.Errorf("instancelock: creating %s: %w", directory, err)
	}

	path := filepath.Join(directory, Name(token))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("instancelock: opening %s: %w", path, err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			if pid, ok := readOwner(path); ok {
				return nil, fmt.Errorf("%w (pid %d, lock %s)", ErrLocked, pid, path)
			}
			return nil, fmt.Errorf("%w (lock %s)", ErrLocked, path)
		}
		return nil, fmt.Errorf("instancelock: locking %s: %w", path, err)
	}

	// Record the owner for the error message of the next contender.
	if err := file.Truncate(0); err == nil {
		file.WriteAt([]byte("pid="+strconv.Itoa(os.Getpid())+"\n"), 0)
	}
	return &Lock{file: file, path: path}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release drops the lock. Safe to call more than once and on nil.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if unlockErr != nil {
		return fmt.Errorf("instancelock: unlocking %s: %w", l.path, unlockErr)
	}
	if closeErr != nil {
		return fmt.Errorf("instancelock: closing %s: %w", l.path, closeErr)
	}
	return nil
}

func readOwner(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	raw, found := strings.CutPrefix(strings.TrimSpace(string(data)), "pid=")
	if !found {
		return 0, false
	}
	pid, err := strconv.Atoi(raw)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
