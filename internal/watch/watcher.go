// Package watch periodically sweeps the inbox for incoming payment
// claims and answers the ones that carry an explicit decision request.
package watch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hal9000y/payment-verifier/internal/mail"
	"github.com/hal9000y/payment-verifier/internal/verify"
)

// Claims are processed a few at a time per sweep, the rest waits for
// the next tick.
const sweepMaxResults = 10

type inbox interface {
	List(ctx context.Context, query string, maxResults int64) ([]string, error)
	LoadWithAttachments(ctx context.Context, msgID string) (*mail.Message, error)
}

type extractor interface {
	Extract(ctx context.Context, subject, body string, attachments []mail.Attachment) verify.Evidence
}

type composer interface {
	DecideAndReply(ctx context.Context, src *mail.Message, ev verify.Evidence) (verify.Result, error)
}

// NewWatcher creates a Watcher sweeping messages matching query every
// interval.
func NewWatcher(in inbox, ex extractor, cmp composer, query string, interval time.Duration, log *zap.Logger) *Watcher {
	return &Watcher{
		in:       in,
		ex:       ex,
		cmp:      cmp,
		query:    query,
		interval: interval,
		log:      log,
	}
}

type Watcher struct {
	in       inbox
	ex       extractor
	cmp      composer
	query    string
	interval time.Duration
	log      *zap.Logger
}

// Run sweeps immediately, then on every tick until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	w.Sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep lists candidate claims and replies to each message whose text
// asks for a decision. Per-message failures are logged and skipped so
// one broken message cannot stall the rest of the batch.
func (w *Watcher) Sweep(ctx context.Context) {
	msgIDs, err := w.in.List(ctx, w.query, sweepMaxResults)
	if err != nil {
		w.log.Error("inbox sweep failed", zap.String("query", w.query), zap.Error(err))
		return
	}

	for _, msgID := range msgIDs {
		if err := w.process(ctx, msgID); err != nil {
			w.log.Error("claim processing failed", zap.String("msg_id", msgID), zap.Error(err))
		}
	}
}

func (w *Watcher) process(ctx context.Context, msgID string) error {
	msg, err := w.in.LoadWithAttachments(ctx, msgID)
	if err != nil {
		return err
	}

	ev := w.ex.Extract(ctx, msg.Subject, msg.BodyText, msg.Attachments)
	if ev.Choice == verify.ChoiceNone {
		w.log.Debug("no decision requested, skipping", zap.String("msg_id", msgID))
		return nil
	}

	result, err := w.cmp.DecideAndReply(ctx, msg, ev)
	if err != nil {
		return err
	}

	w.log.Info("claim answered",
		zap.String("msg_id", msgID),
		zap.String("decision", string(result.Decision)))

	return nil
}
