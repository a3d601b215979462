// Package verify turns loosely structured text into a normalized
// payment claim and decides whether recent inbox messages corroborate
// it.
package verify

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hal9000y/payment-verifier/internal/mail"
)

// Evidence is a normalized payment claim. Every field is independently
// optional; a claim is never mutated after construction.
type Evidence struct {
	UserHint string
	Amount   *float64
	TxID     string
	Choice   Choice
	RawText  string
}

// TextExtractor pulls text out of an image. May fail per call; the
// extractor treats that as degraded evidence, not as an error.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte, lang string) (string, error)
}

// NewExtractor creates an evidence extractor. lang is the OCR language
// hint.
func NewExtractor(ocr TextExtractor, lang string, log *zap.Logger) *Extractor {
	return &Extractor{
		ocr:  ocr,
		lang: lang,
		log:  log,
	}
}

// Extractor fuses subject, body and OCR'd image attachments into one
// Evidence record.
type Extractor struct {
	ocr  TextExtractor
	lang string
	log  *zap.Logger
}

// Extract builds Evidence from an inbound email. Image attachments go
// through OCR; a failed attachment is logged and skipped. The combined
// text keeps subject, body and attachment texts in order, separated by
// blank lines.
func (e *Extractor) Extract(ctx context.Context, subject, body string, attachments []mail.Attachment) Evidence {
	parts := []string{subject, body}

	for _, att := range attachments {
		if !isImage(att.Filename, att.MimeType) {
			continue
		}

		text, err := e.ocr.ExtractText(ctx, att.Data, e.lang)
		if err != nil {
			e.log.Warn("OCR failed, skipping attachment",
				zap.String("filename", att.Filename),
				zap.Error(err),
			)
			continue
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	full := strings.TrimSpace(strings.Join(parts, "\n\n"))

	ev := Evidence{
		UserHint: ParseUserHint(full),
		Choice:   ParseChoice(full),
		RawText:  full,
	}
	if amounts := ParseAmounts(full); len(amounts) > 0 {
		ev.Amount = &amounts[0]
	}
	if ids := ParseTxIDs(full); len(ids) > 0 {
		ev.TxID = ids[0]
	}

	return ev
}

// FromClaim builds Evidence from interactively submitted fields. The
// values are taken as-is, no re-parsing.
func FromClaim(userHint string, amount *float64, txID string) Evidence {
	parts := make([]string, 0, 3)
	if userHint != "" {
		parts = append(parts, userHint)
	}
	if amount != nil {
		parts = append(parts, strconv.FormatFloat(*amount, 'f', -1, 64))
	}
	if txID != "" {
		parts = append(parts, txID)
	}

	return Evidence{
		UserHint: userHint,
		Amount:   amount,
		TxID:     txID,
		RawText:  strings.Join(parts, " "),
	}
}

var imageExtensions = []string{".png", ".jpg", ".jpeg"}

func isImage(filename, mimeType string) bool {
	if strings.HasPrefix(mimeType, "image/") {
		return true
	}

	lower := strings.ToLower(filename)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}

	return false
}
