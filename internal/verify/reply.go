package verify

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hal9000y/payment-verifier/internal/mail"
)

// Outbound subject literals.
const (
	subjectApproved = "Paiement validé - PaymentVerifierAI"
	subjectRejected = "Paiement refusé - PaymentVerifierAI"
)

type verifySvc interface {
	VerifyAgainstInbox(ctx context.Context, ev Evidence) (Result, error)
}

type outbox interface {
	Send(ctx context.Context, to, subject, body, threadID string) (string, error)
}

// NewComposer creates a Composer replying through the given outbox.
func NewComposer(verifier verifySvc, out outbox, log *zap.Logger) *Composer {
	return &Composer{
		verifier: verifier,
		outbox:   out,
		log:      log,
	}
}

// Composer runs the verification for a source message and notifies its
// sender of the decision.
type Composer struct {
	verifier verifySvc
	outbox   outbox
	log      *zap.Logger
}

// DecideAndReply verifies the claim and replies to the sender in the
// original thread. A send failure is logged and swallowed: the
// already-computed result is authoritative even when the notification
// could not be delivered.
func (c *Composer) DecideAndReply(ctx context.Context, src *mail.Message, ev Evidence) (Result, error) {
	result, err := c.verifier.VerifyAgainstInbox(ctx, ev)
	if err != nil {
		return Result{}, err
	}

	subject := subjectRejected
	if result.Decision == DecisionValider {
		subject = subjectApproved
	}

	lines := []string{
		"Décision: " + string(result.Decision),
		"Raison: " + result.Reason,
	}
	if ev.Amount != nil {
		lines = append(lines, "Montant déclaré: "+strconv.FormatFloat(*ev.Amount, 'f', -1, 64))
	}
	if ev.TxID != "" {
		lines = append(lines, "ID fourni: "+ev.TxID)
	}
	if result.MatchedSnippet != "" {
		lines = append(lines, "Extrait correspondant: "+strings.TrimSpace(result.MatchedSnippet))
	}

	if _, err := c.outbox.Send(ctx, src.From, subject, strings.Join(lines, "\n"), src.ThreadID); err != nil {
		c.log.Error("reply send failed",
			zap.String("message_id", src.ID),
			zap.Error(err),
		)
	}

	return result, nil
}
