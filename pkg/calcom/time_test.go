package calcom

import (
	"strings"
	"testing"
	"time"
)

func TestToUTCRewritesOffset(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-01-06T14:00:00+01:00", "2025-01-06T13:00:00Z"},
		{"2025-06-15T09:30:00+02:00", "2025-06-15T07:30:00Z"},
		{"2025-01-06T05:00:00-05:00", "2025-01-06T10:00:00Z"},
	}

	for _, tt := range tests {
		got := ToUTC(tt.in)
		if got != tt.want {
			t.Errorf("ToUTC(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if !strings.HasSuffix(got, "Z") {
			t.Errorf("ToUTC(%q) = %q, want Z suffix", tt.in, got)
		}
	}
}

func TestToUTCPreservesInstant(t *testing.T) {
	in := "2025-01-06T14:00:00+01:00"
	out := ToUTC(in)

	parsedIn, err := time.Parse(time.RFC3339, in)
	if err != nil {
		t.Fatalf("parse input: %v", err)
	}
	parsedOut, err := time.Parse(time.RFC3339, out)
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if !parsedIn.Equal(parsedOut) {
		t.Errorf("instant changed: %v vs %v", parsedIn, parsedOut)
	}
}

func TestToUTCPassthrough(t *testing.T) {
	tests := []string{
		"2025-01-06T13:00:00Z", // already Zulu
		"2025-01-06T14:00",     // no offset, not parseable as RFC3339
		"am Montag um 14 Uhr",  // not a timestamp at all
		"",
	}

	for _, in := range tests {
		if got := ToUTC(in); got != in {
			t.Errorf("ToUTC(%q) = %q, want unchanged", in, got)
		}
	}
}
