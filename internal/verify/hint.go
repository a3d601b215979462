package verify

import "regexp"

// A user hint is the token following a "user"/"utilisateur"/"id"
// marker, e.g. "user: jdoe" or "ID-4217".
var userHintRE = regexp.MustCompile(`(?i)(?:user|utilisateur|id)[:\s-]+(\S{2,})`)

// ParseUserHint extracts the first user reference from free text, or
// "" when none is present.
func ParseUserHint(text string) string {
	m := userHintRE.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
