package verify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hal9000y/payment-verifier/internal/mail"
	"github.com/hal9000y/payment-verifier/internal/verify"
)

type ocrMock struct {
	ExtractTextFunc func(ctx context.Context, image []byte, lang string) (string, error)
}

func (m *ocrMock) ExtractText(ctx context.Context, image []byte, lang string) (string, error) {
	return m.ExtractTextFunc(ctx, image, lang)
}

func TestExtractFromSubjectAndBody(t *testing.T) {
	ocr := &ocrMock{
		ExtractTextFunc: func(context.Context, []byte, string) (string, error) {
			t.Fatal("OCR must not run without attachments")
			return "", nil
		},
	}
	e := verify.NewExtractor(ocr, "eng+fra", zap.NewNop())

	ev := e.Extract(context.Background(), "Reçu ABCDEF", "user: jdoe ok valider 1 000 FCFA", nil)

	assert.Equal(t, "ABCDEF", ev.TxID)
	require.NotNil(t, ev.Amount)
	assert.Equal(t, 1000.0, *ev.Amount)
	assert.Equal(t, "jdoe", ev.UserHint)
	assert.Equal(t, verify.ChoiceValider, ev.Choice)
	assert.Equal(t, "Reçu ABCDEF\n\nuser: jdoe ok valider 1 000 FCFA", ev.RawText)
}

func TestExtractRunsOCROnImageAttachments(t *testing.T) {
	var ocrCalls []string
	ocr := &ocrMock{
		ExtractTextFunc: func(_ context.Context, image []byte, lang string) (string, error) {
			ocrCalls = append(ocrCalls, lang)
			return "reçu envoi 50,00 FCFA ref AB1234", nil
		},
	}
	e := verify.NewExtractor(ocr, "eng+fra", zap.NewNop())

	attachments := []mail.Attachment{
		{Filename: "receipt.png", MimeType: "image/png", Data: []byte{0x89}},
		{Filename: "notes.pdf", MimeType: "application/pdf", Data: []byte{0x25}},
	}

	ev := e.Extract(context.Background(), "pièce", "voici le reçu", attachments)

	assert.Equal(t, []string{"eng+fra"}, ocrCalls, "only the image attachment goes through OCR")
	require.NotNil(t, ev.Amount)
	assert.Equal(t, 50.0, *ev.Amount)
	assert.Equal(t, "AB1234", ev.TxID)
	assert.Equal(t, "pièce\n\nvoici le reçu\n\nreçu envoi 50,00 FCFA ref AB1234", ev.RawText)
}

func TestExtractSkipsFailedOCR(t *testing.T) {
	ocr := &ocrMock{
		ExtractTextFunc: func(context.Context, []byte, string) (string, error) {
			return "", errors.New("tesseract exploded")
		},
	}
	e := verify.NewExtractor(ocr, "eng+fra", zap.NewNop())

	attachments := []mail.Attachment{
		{Filename: "receipt.jpg", MimeType: "image/jpeg"},
	}

	ev := e.Extract(context.Background(), "sujet", "corps du message", attachments)

	assert.Equal(t, "sujet\n\ncorps du message", ev.RawText, "failed OCR degrades evidence, never aborts it")
	assert.Nil(t, ev.Amount)
}

func TestExtractImageDetectionByExtension(t *testing.T) {
	calls := 0
	ocr := &ocrMock{
		ExtractTextFunc: func(context.Context, []byte, string) (string, error) {
			calls++
			return "", nil
		},
	}
	e := verify.NewExtractor(ocr, "fra", zap.NewNop())

	attachments := []mail.Attachment{
		{Filename: "Scan.JPEG", MimeType: "application/octet-stream"},
		{Filename: "data.csv", MimeType: "text/csv"},
	}

	e.Extract(context.Background(), "", "", attachments)

	assert.Equal(t, 1, calls)
}

func TestExtractKeepsFirstAmountAndTxID(t *testing.T) {
	e := verify.NewExtractor(&ocrMock{}, "fra", zap.NewNop())

	ev := e.Extract(context.Background(), "refs ABCDEF et GHJKLM", "montants 25 puis 100", nil)

	assert.Equal(t, "ABCDEF", ev.TxID)
	require.NotNil(t, ev.Amount)
	assert.Equal(t, 25.0, *ev.Amount)
}

func TestFromClaim(t *testing.T) {
	amount := 50.0
	ev := verify.FromClaim("jdoe", &amount, "AB1234")

	assert.Equal(t, "jdoe", ev.UserHint)
	require.NotNil(t, ev.Amount)
	assert.Equal(t, 50.0, *ev.Amount)
	assert.Equal(t, "AB1234", ev.TxID)
	assert.Equal(t, verify.ChoiceNone, ev.Choice)
	assert.Equal(t, "jdoe 50 AB1234", ev.RawText)

	empty := verify.FromClaim("", nil, "")
	assert.Equal(t, "", empty.RawText)
	assert.Nil(t, empty.Amount)
}
