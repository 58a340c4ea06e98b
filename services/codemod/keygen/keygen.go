// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package keygen derives catalog keys and values from message text.
package keygen

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gosimple/slug"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxKeyLength is the key length limit used when none is configured.
const DefaultMaxKeyLength = 40

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	punctuation   = regexp.MustCompile(`[.*+?^${}()|[\]\\/\-:,!"'’‘]`)
	// A word break next to symbols the slugger replaced with '-'.
	separatorRun = regexp.MustCompile(`[-_]*_[-_]*`)
)

// DeriveValue trims text and collapses every internal whitespace run to a
// single space. It is idempotent.
func DeriveValue(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// DeriveKey turns text into a stable catalog key of at most maxLength
// bytes (DefaultMaxKeyLength when maxLength < 1).
//
// Diacritics are stripped, the text is lower-cased, whitespace runs become
// '_', punctuation and any remaining non-ASCII runes are dropped and the
// result is slugged. Words stay joined by a single '_'. Text with nothing usable yields "", which callers
// treat as "no catalog entry".
//
// Example:
//
//	DeriveKey("Olá Antônio", 40) // "ola_antonio"
func DeriveKey(text string, maxLength int) string {
	if maxLength < 1 {
		maxLength = DefaultMaxKeyLength
	}
	key := strings.ToLower(RemoveDiacritics(text))
	key = strings.TrimSpace(key)
	key = whitespaceRun.ReplaceAllString(key, "_")
	key = punctuation.ReplaceAllString(key, "")
	key = asciiOnly(key)
	key = truncate(key, maxLength)
	key = separatorRun.ReplaceAllString(slug.Make(key), "_")
	return strings.Trim(truncate(key, maxLength), "-_")
}

// RemoveDiacritics decomposes text and drops combining marks.
func RemoveDiacritics(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

func asciiOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
