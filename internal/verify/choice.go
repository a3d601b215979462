package verify

import "regexp"

// Choice is an explicit approve/reject instruction found in a message.
type Choice string

// Recognized choice tokens. ChoiceNone means no token was present.
const (
	ChoiceNone    Choice = ""
	ChoiceValider Choice = "valider"
	ChoiceRefuser Choice = "refuser"
)

var (
	validerRE = regexp.MustCompile(`(?i)\bvalider\b`)
	refuserRE = regexp.MustCompile(`(?i)\brefuser\b`)
)

// ParseChoice classifies approve/reject intent. When both tokens occur
// "valider" wins, so an approval signal is never silently discarded.
func ParseChoice(text string) Choice {
	if validerRE.MatchString(text) {
		return ChoiceValider
	}
	if refuserRE.MatchString(text) {
		return ChoiceRefuser
	}
	return ChoiceNone
}
