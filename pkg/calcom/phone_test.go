package calcom

import (
	"strings"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"already international", "+4917612345678", "+4917612345678"},
		{"leading zero replaced", "0176 1234567", "+491761234567"},
		{"double zero becomes plus", "004917612345678", "+4917612345678"},
		{"dashes and spaces stripped", "+49 176-123 456 78", "+4917612345678"},
		{"bare number gets prefix", "17612345678", "+4917612345678"},
		{"short number unchanged", "110", "110"},
		{"empty unchanged", "", ""},
		{"interior plus stripped", "49+176", "49176"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.raw, "+49")
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{
		"0176 1234567",
		"004917612345678",
		"+49 176 12345678",
		"17612345678",
		"110",
		"",
		"01 76 / 12 34 56 7",
	}

	for _, raw := range inputs {
		once := NormalizePhone(raw, "+49")
		twice := NormalizePhone(once, "+49")
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", raw, once, twice)
		}
	}
}

func TestNormalizePhoneShape(t *testing.T) {
	// Any number long enough ends up as a single + followed by digits.
	inputs := []string{
		"0176 1234567",
		"00491761234567",
		"+49(176)1234567",
		"1761234567",
	}

	for _, raw := range inputs {
		got := NormalizePhone(raw, "+49")
		if !strings.HasPrefix(got, "+") {
			t.Errorf("NormalizePhone(%q) = %q, want leading +", raw, got)
			continue
		}
		rest := got[1:]
		if strings.ContainsAny(rest, "+ -()/") {
			t.Errorf("NormalizePhone(%q) = %q, want digits only after +", raw, got)
		}
	}
}
