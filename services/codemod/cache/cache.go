// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cache remembers source files that are known to need no rewrite.
//
// A file's fingerprint covers its content and the configuration it was
// checked under, so any config change invalidates every entry. Entries
// carry a TTL enforced by BadgerDB's GC; an expired key reads as a miss.
//
// Storage layout:
//
//	codemod/unchanged/v1/{fingerprint}  ->  "1"
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// DefaultTTL is how long an unchanged fingerprint is remembered.
const DefaultTTL = 30 * 24 * time.Hour

const keyPrefix = "codemod/unchanged/v1/"

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("cache: store closed")

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the entry lifetime. Non-positive values keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the logger for hit/miss diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store is a BadgerDB-backed skip-cache.
//
// Thread Safety: Safe for concurrent use. Close must not race with other
// calls.
type Store struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// Open opens (or creates) the cache under dir. An empty dir opens an
// in-memory store that is discarded on Close.
func Open(dir string, opts ...Option) (*Store, error) {
	bopts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		bopts = bopts.WithInMemory(true)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open cache at %q: %w", dir, err)
	}
	s := &Store{db: db, ttl: DefaultTTL, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Fingerprint hashes parts into a stable hex key. Each part is length
// prefixed so ("ab","c") and ("a","bc") differ.
func Fingerprint(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:", len(p))
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// IsUnchanged reports whether fingerprint was recorded as needing no
// rewrite. A nil Store always misses.
func (s *Store) IsUnchanged(ctx context.Context, fingerprint string) (bool, error) {
	if s == nil {
		return false, nil
	}
	if s.db == nil {
		return false, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key(fingerprint))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		s.logger.Debug("skip cache: miss", slog.String("hash", shortHash(fingerprint)))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("skip cache lookup: %w", err)
	}
	s.logger.Debug("skip cache: hit", slog.String("hash", shortHash(fingerprint)))
	return true, nil
}

// MarkUnchanged records fingerprint with the store's TTL. A nil Store
// ignores the call.
func (s *Store) MarkUnchanged(ctx context.Context, fingerprint string) error {
	if s == nil {
		return nil
	}
	if s.db == nil {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key(fingerprint), []byte("1")).WithTTL(s.ttl))
	})
	if err != nil {
		return fmt.Errorf("skip cache save: %w", err)
	}
	return nil
}

// Forget removes fingerprint. Missing keys are not an error.
func (s *Store) Forget(ctx context.Context, fingerprint string) error {
	if s == nil {
		return nil
	}
	if s.db == nil {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(key(fingerprint))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("skip cache delete: %w", err)
	}
	return nil
}

func key(fingerprint string) []byte {
	return []byte(keyPrefix + fingerprint)
}

// shortHash returns the first 8 characters of a hash for log display.
func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8] + "..."
	}
	return h
}
