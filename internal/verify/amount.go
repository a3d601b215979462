package verify

import (
	"regexp"
	"strconv"
	"strings"
)

// amountRE captures a run of 1-3 digits, zero or more 3-digit groups
// introduced by a space or "."/",", an optional 1-2 digit fraction and
// an optional currency marker. RE2 has no lookbehind, so "not preceded
// by a digit" is a consumed non-digit prefix in front of the capture.
var amountRE = regexp.MustCompile(`(?i)(?:^|\D)(\d{1,3}(?:[\s.,]\d{3})*)([.,]\d{1,2})?(?:\s*(?:FCFA|XOF))?`)

// Narrow and non-breaking spaces show up in amounts pasted from
// banking apps and OCR output.
var spaceFold = strings.NewReplacer(" ", " ", " ", " ")

// ParseAmounts extracts numeric amounts from free text, in order of
// appearance, duplicates retained. Group separators are stripped, a
// decimal comma becomes a decimal point. Tokens that still fail to
// parse are dropped: this is best-effort extraction, not validation.
func ParseAmounts(text string) []float64 {
	clean := spaceFold.Replace(text)

	var amounts []float64
	for _, m := range amountRE.FindAllStringSubmatch(clean, -1) {
		token := stripGroupSeparators(m[1])
		if m[2] != "" {
			token += "." + m[2][1:]
		}

		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			continue
		}
		amounts = append(amounts, v)
	}

	return amounts
}

func stripGroupSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
