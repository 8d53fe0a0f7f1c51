package calcom

import (
	"strings"
	"time"
)

// ToUTC rewrites an ISO-8601 timestamp with an explicit non-UTC offset into
// the equivalent Zulu (Z-suffixed) representation. Timestamps already in Zulu
// form or that cannot be parsed pass through unchanged; malformed input is
// left for the scheduling service to reject.
func ToUTC(ts string) string {
	if strings.HasSuffix(ts, "Z") {
		return ts
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
