// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package catalog accumulates extracted phrases and reads and writes
// message catalog files.
package catalog

import (
	"maps"
	"sync"

	"github.com/shamrt/ast-react-intl/services/codemod/keygen"
)

// Record is one extracted message.
type Record struct {
	Key   string
	Value string
}

// Accumulator collects extracted phrases and the key to text catalog.
//
// Description:
//
//	An Accumulator lives as long as its owner wants it to: nothing resets
//	it implicitly. Callers processing independent batches must call Clear
//	between them. Key collisions are last-write-wins.
//
// Thread Safety:
//
//	Safe for concurrent use. Batch runners may also give each worker its
//	own Accumulator and Merge them afterwards for a deterministic order.
type Accumulator struct {
	mu           sync.Mutex
	maxKeyLength int
	records      []Record
	catalog      map[string]string
}

// NewAccumulator returns an empty Accumulator using maxKeyLength for key
// derivation (keygen.DefaultMaxKeyLength when maxKeyLength < 1).
func NewAccumulator(maxKeyLength int) *Accumulator {
	if maxKeyLength < 1 {
		maxKeyLength = keygen.DefaultMaxKeyLength
	}
	return &Accumulator{
		maxKeyLength: maxKeyLength,
		catalog:      make(map[string]string),
	}
}

// Add derives a key from keyText (or displayText when keyText is empty)
// and a value from displayText and stores them. It returns false and
// stores nothing when either is empty after normalization.
func (a *Accumulator) Add(displayText, keyText string) (Record, bool) {
	if keyText == "" {
		keyText = displayText
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	rec := Record{
		Key:   keygen.DeriveKey(keyText, a.maxKeyLength),
		Value: keygen.DeriveValue(displayText),
	}
	if rec.Key == "" || rec.Value == "" {
		return Record{}, false
	}
	a.records = append(a.records, rec)
	a.catalog[rec.Key] = rec.Value
	return rec, true
}

// Phrases returns the extracted values in the order they were added.
func (a *Accumulator) Phrases() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, len(a.records))
	for i, r := range a.records {
		out[i] = r.Value
	}
	return out
}

// Records returns a copy of the extracted records in order.
func (a *Accumulator) Records() []Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Record(nil), a.records...)
}

// Catalog returns a copy of the key to value map.
func (a *Accumulator) Catalog() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return maps.Clone(a.catalog)
}

// Len returns the number of extracted records.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// Clear drops all records and catalog entries. The key length is kept.
func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = nil
	a.catalog = make(map[string]string)
}

// SetMaxKeyLength changes the key length used by later Adds.
// Values below 1 are ignored.
func (a *Accumulator) SetMaxKeyLength(n int) {
	if n < 1 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.maxKeyLength = n
}

// MaxKeyLength returns the current key length limit.
func (a *Accumulator) MaxKeyLength() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.maxKeyLength
}

// Merge appends other's records after a's, applying catalog entries in
// order so later records win.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil || other == a {
		return
	}
	records := other.Records()

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range records {
		a.records = append(a.records, r)
		a.catalog[r.Key] = r.Value
	}
}
