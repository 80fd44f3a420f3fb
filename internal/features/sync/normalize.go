package sync

import (
	"strings"
	"time"
)

// CanonicalLayout is the fixed-offset serialization every timestamp is
// normalized to before it reaches the target store.
const CanonicalLayout = "2006-01-02T15:04:05.000-0700"

// sourceLayout matches staging timestamps after the space separator is
// swapped for a T. Staging rows carry no zone; they are taken as UTC.
const sourceLayout = "2006-01-02T15:04:05"

// NormalizePhone strips everything but digits and drops a leading US
// country code. A 10-digit result from "+1 (555) 123-4567" and from
// "5551234567" keys the same contact. Empty input yields "", which never
// matches a populated lookup key.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		return digits[1:]
	}
	return digits
}

// NormalizeTimestamp canonicalizes a staging timestamp ("2023-05-01
// 14:30:00") into the fixed zero-UTC form. Unparsable or absent input
// returns "", meaning no record can be built from the row.
func NormalizeTimestamp(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	t, err := time.Parse(sourceLayout, strings.Replace(raw, " ", "T", 1))
	if err != nil {
		return ""
	}

	return t.UTC().Format(CanonicalLayout)
}

// truncate caps s at max characters. Callers must compose first and
// truncate last so template literals are never cut out of the middle.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
