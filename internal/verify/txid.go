package verify

import "regexp"

// Transaction references are whole words of 6-20 alphanumerics. No
// checksum or format validation beyond length and alphabet.
var txIDRE = regexp.MustCompile(`(?i)\b([A-Z0-9]{6,20})\b`)

// ParseTxIDs extracts candidate transaction identifiers, deduplicated
// while preserving first-seen order.
func ParseTxIDs(text string) []string {
	seen := make(map[string]struct{})

	var ids []string
	for _, m := range txIDRE.FindAllStringSubmatch(text, -1) {
		id := m[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}
