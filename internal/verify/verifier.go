package verify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hal9000y/payment-verifier/internal/mail"
	"github.com/hal9000y/payment-verifier/internal/retry"
)

// Decision is the verification outcome.
type Decision string

// Verification outcomes.
const (
	DecisionValider Decision = "VALIDER"
	DecisionRefuser Decision = "REFUSER"
)

// Fixed result reasons.
const (
	ReasonMatchFound = "matching evidence found"
	ReasonNoMatch    = "no matching evidence within the time window"
)

// Result is the decision for one Evidence. MatchedMessageID and
// MatchedSnippet are populated exactly when Decision is VALIDER.
type Result struct {
	Decision         Decision `json:"decision"`
	Reason           string   `json:"reason"`
	MatchedMessageID string   `json:"matched_message_id,omitempty"`
	MatchedSnippet   string   `json:"matched_snippet,omitempty"`
}

type inbox interface {
	List(ctx context.Context, query string, maxResults int64) ([]string, error)
	Load(ctx context.Context, msgID string) (*mail.Message, error)
}

// NewVerifier creates a Verifier scanning maxResults candidates of the
// given search query under the retry policy.
func NewVerifier(in inbox, matcher Matcher, window Window, query string, maxResults int64, policy *retry.Policy, log *zap.Logger) *Verifier {
	return &Verifier{
		inbox:      in,
		matcher:    matcher,
		window:     window,
		query:      query,
		maxResults: maxResults,
		policy:     policy,
		log:        log,
	}
}

// Verifier orchestrates list, fetch, window filtering and matching
// over a bounded candidate set, wrapped in a retry policy.
type Verifier struct {
	inbox      inbox
	matcher    Matcher
	window     Window
	query      string
	maxResults int64
	policy     *retry.Policy
	log        *zap.Logger
}

// VerifyAgainstInbox scans candidate messages in mailbox order and
// returns the first corroborating match, or a REFUSER result when the
// candidate set is exhausted. Any collaborator error re-runs the whole
// scan from the start; once attempts are exhausted the last error is
// returned to the caller. "No evidence" and "could not check" stay
// distinguishable.
func (v *Verifier) VerifyAgainstInbox(ctx context.Context, ev Evidence) (Result, error) {
	var result Result

	err := v.policy.Do(ctx, func(ctx context.Context) error {
		r, err := v.scan(ctx, ev)
		if err != nil {
			v.log.Warn("inbox scan failed", zap.Error(err))
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("inbox scan failed: %w", err)
	}

	return result, nil
}

func (v *Verifier) scan(ctx context.Context, ev Evidence) (Result, error) {
	ids, err := v.inbox.List(ctx, v.query, v.maxResults)
	if err != nil {
		return Result{}, fmt.Errorf("inbox.List failed: %w", err)
	}

	v.log.Info("candidate messages listed", zap.Int("count", len(ids)))

	for _, id := range ids {
		msg, err := v.inbox.Load(ctx, id)
		if err != nil {
			return Result{}, fmt.Errorf("inbox.Load %s failed: %w", id, err)
		}

		if !v.window.Admits(msg.InternalDate) {
			continue
		}

		if v.matcher.Matches(msg.Content(), ev) {
			return Result{
				Decision:         DecisionValider,
				Reason:           ReasonMatchFound,
				MatchedMessageID: msg.ID,
				MatchedSnippet:   msg.Snippet,
			}, nil
		}
	}

	return Result{
		Decision: DecisionRefuser,
		Reason:   ReasonNoMatch,
	}, nil
}
