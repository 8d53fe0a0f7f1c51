package calcom

import "strings"

// minBareDigits is the shortest digit run that is assumed to be a full
// national number and gets the country prefix prepended.
const minBareDigits = 6

// NormalizePhone canonicalizes a raw phone string into international format.
//
// Everything except digits and a leading "+" is stripped. A leading "00"
// becomes "+", a single leading "0" is replaced with the country prefix, and
// a bare number above the minimum length gets the prefix prepended. Anything
// else passes through stripped but otherwise unchanged.
//
// The function is idempotent: NormalizePhone(NormalizePhone(x, p), p) always
// equals NormalizePhone(x, p).
func NormalizePhone(raw, countryPrefix string) string {
	if raw == "" {
		return raw
	}

	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	s := b.String()

	switch {
	case s == "":
		return s
	case strings.HasPrefix(s, "+"):
		return s
	case strings.HasPrefix(s, "00"):
		return "+" + s[2:]
	case strings.HasPrefix(s, "0"):
		return countryPrefix + s[1:]
	case len(s) >= minBareDigits:
		return countryPrefix + s
	default:
		return s
	}
}
