package verify

import (
	"math"
	"strings"
)

// Matcher decides whether one candidate message corroborates a claim.
type Matcher struct {
	TolerancePct float64
}

// Matches runs three ordered checks over the candidate content and
// stops at the first success: transaction id substring, then amount
// within tolerance, then user hint substring. Exact identifiers are
// the most trustworthy signal, free-text hints the least.
func (m Matcher) Matches(content string, ev Evidence) bool {
	lower := strings.ToLower(content)

	if ev.TxID != "" && strings.Contains(lower, strings.ToLower(ev.TxID)) {
		return true
	}

	if ev.Amount != nil {
		for _, amt := range ParseAmounts(content) {
			if m.WithinTolerance(amt, *ev.Amount) {
				return true
			}
		}
	}

	if ev.UserHint != "" && strings.Contains(lower, strings.ToLower(ev.UserHint)) {
		return true
	}

	return false
}

// WithinTolerance reports whether two amounts deviate by at most
// TolerancePct of the larger one. Symmetric in its arguments.
func (m Matcher) WithinTolerance(a, b float64) bool {
	tol := m.TolerancePct / 100.0
	return math.Abs(a-b) <= tol*math.Max(a, b)
}
