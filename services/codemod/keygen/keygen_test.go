// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package keygen

import (
	"strings"
	"testing"
)

func TestDeriveValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  My   simple   text  ", "My simple text"},
		{"line\n\t  break", "line break"},
		{"", ""},
		{" \n\t ", ""},
		{"Already clean", "Already clean"},
	}
	for _, tt := range tests {
		if got := DeriveValue(tt.in); got != tt.want {
			t.Errorf("DeriveValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if got := DeriveValue(DeriveValue(tt.in)); got != tt.want {
			t.Errorf("DeriveValue not idempotent for %q: %q", tt.in, got)
		}
	}
}

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"diacritics", "Olá Antônio", "ola_antonio"},
		{"simple", "My simple text", "my_simple_text"},
		{"punctuation", "Hello, world!", "hello_world"},
		{"apostrophe", "Don't stop", "dont_stop"},
		{"collapsed whitespace", "  My \n\t text  ", "my_text"},
		{"digits kept", "Step 2 of 3", "step_2_of_3"},
		{"placeholder braces", "Total: {count}", "total_count"},
		{"non ascii only", "日本語", ""},
		{"empty", "", ""},
		{"whitespace only", "   \n  ", ""},
		{"punctuation only", "?!...", ""},
		{"symbol between words", "Tom & Jerry", "tom_and_jerry"},
		{"symbol after word", "50% off", "50_off"},
		{"entity left in text", "Tom &amp; Jerry", "tom_andamp_jerry"},
		{"dash between words", "Sign - in", "sign_in"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveKey(tt.in, DefaultMaxKeyLength); got != tt.want {
				t.Errorf("DeriveKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDeriveKey_RespectsMaxLength(t *testing.T) {
	phrase := strings.Repeat("abcde ", 10) // 60 characters
	key := DeriveKey(phrase, 40)
	if len(key) > 40 {
		t.Fatalf("len(key) = %d, want <= 40 (key %q)", len(key), key)
	}
	if key == "" {
		t.Fatal("expected a non-empty key")
	}
	if strings.HasSuffix(key, "_") || strings.HasSuffix(key, "-") {
		t.Errorf("key %q ends with a separator", key)
	}

	if short := DeriveKey(phrase, 5); len(short) > 5 {
		t.Errorf("DeriveKey(max 5) = %q", short)
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	in := "Créer un nouveau compte maintenant"
	first := DeriveKey(in, 20)
	for i := 0; i < 10; i++ {
		if got := DeriveKey(in, 20); got != first {
			t.Fatalf("run %d: %q != %q", i, got, first)
		}
	}
}

func TestDeriveKey_NonPositiveMaxUsesDefault(t *testing.T) {
	phrase := strings.Repeat("word ", 20)
	if got := DeriveKey(phrase, 0); len(got) > DefaultMaxKeyLength {
		t.Errorf("len = %d, want <= %d", len(got), DefaultMaxKeyLength)
	}
}

func TestRemoveDiacritics(t *testing.T) {
	if got := RemoveDiacritics("Crème brûlée"); got != "Creme brulee" {
		t.Errorf("got %q", got)
	}
}
