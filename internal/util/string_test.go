// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "testing"

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"unicode", "héllo wörld", 8, "héllo..."},
		{"tiny", "hello", 2, "he"},
		{"zero", "hello", 0, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateRunes(tc.in, tc.max); got != tc.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
			}
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	// CJK characters occupy two columns
	got := TruncateWidth("日本語テキスト", 9)
	if DisplayWidth(got) > 9 {
		t.Errorf("TruncateWidth result %q is %d columns wide", got, DisplayWidth(got))
	}

	if got := TruncateWidth("short", 20); got != "short" {
		t.Errorf("TruncateWidth(short) = %q", got)
	}
}

func TestPadRight(t *testing.T) {
	got := PadRight("ab", 5)
	if got != "ab   " {
		t.Errorf("PadRight = %q", got)
	}
	if DisplayWidth(PadRight("日本", 6)) != 6 {
		t.Error("PadRight should pad to display width for wide runes")
	}
}
