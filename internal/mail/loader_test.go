package mail_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/payment-verifier/internal/mail"
)

type gmailSvcMock struct {
	ListMessagesFunc  func(ctx context.Context, q string, maxResults int64) (*gmail.ListMessagesResponse, error)
	GetMessageFunc    func(ctx context.Context, msgID string) (*gmail.Message, error)
	GetAttachmentFunc func(ctx context.Context, msgID, attachmentID string) (*gmail.MessagePartBody, error)
	SendMessageFunc   func(ctx context.Context, raw, threadID string) (*gmail.Message, error)
}

func (m *gmailSvcMock) ListMessages(ctx context.Context, q string, maxResults int64) (*gmail.ListMessagesResponse, error) {
	return m.ListMessagesFunc(ctx, q, maxResults)
}

func (m *gmailSvcMock) GetMessage(ctx context.Context, msgID string) (*gmail.Message, error) {
	return m.GetMessageFunc(ctx, msgID)
}

func (m *gmailSvcMock) GetAttachment(ctx context.Context, msgID, attachmentID string) (*gmail.MessagePartBody, error) {
	return m.GetAttachmentFunc(ctx, msgID, attachmentID)
}

func (m *gmailSvcMock) SendMessage(ctx context.Context, raw, threadID string) (*gmail.Message, error) {
	return m.SendMessageFunc(ctx, raw, threadID)
}

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestList(t *testing.T) {
	svc := &gmailSvcMock{
		ListMessagesFunc: func(_ context.Context, q string, maxResults int64) (*gmail.ListMessagesResponse, error) {
			assert.Equal(t, "in:inbox newer_than:7d", q)
			assert.Equal(t, int64(50), maxResults)
			return &gmail.ListMessagesResponse{
				Messages: []*gmail.Message{{Id: "m-001"}, {Id: "m-002"}},
			}, nil
		},
	}

	ids, err := mail.NewLoader(svc).List(context.Background(), "in:inbox newer_than:7d", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"m-001", "m-002"}, ids)
}

func TestLoadBuildsTypedMessage(t *testing.T) {
	svc := &gmailSvcMock{
		GetMessageFunc: func(_ context.Context, msgID string) (*gmail.Message, error) {
			return &gmail.Message{
				Id:           msgID,
				ThreadId:     "t-" + msgID,
				InternalDate: 1750000000000,
				Snippet:      "Paid 50,00 FCFA",
				Payload: &gmail.MessagePart{
					MimeType: "multipart/mixed",
					Headers: []*gmail.MessagePartHeader{
						{Name: "Subject", Value: "Preuve de paiement"},
						{Name: "From", Value: "Jane Doe <jane@test.com>"},
						{Name: "To", Value: "verifier@test.com"},
					},
					Parts: []*gmail.MessagePart{
						{
							MimeType: "text/plain",
							Body:     &gmail.MessagePartBody{Data: b64("Paid 50,00 FCFA ref AB1234")},
						},
						{
							MimeType: "image/png",
							Filename: "receipt.png",
							Body:     &gmail.MessagePartBody{AttachmentId: "att-1", Size: 1024},
						},
					},
				},
			}, nil
		},
	}

	msg, err := mail.NewLoader(svc).Load(context.Background(), "m-001")
	require.NoError(t, err)

	assert.Equal(t, "m-001", msg.ID)
	assert.Equal(t, "t-m-001", msg.ThreadID)
	assert.Equal(t, int64(1750000000000), msg.InternalDate)
	assert.Equal(t, "Preuve de paiement", msg.Subject)
	assert.Equal(t, "Jane Doe <jane@test.com>", msg.From)
	assert.Equal(t, "Paid 50,00 FCFA ref AB1234", msg.BodyText)
	assert.Equal(t, "Paid 50,00 FCFA\nPaid 50,00 FCFA ref AB1234", msg.Content())

	require.Len(t, msg.Attachments, 1)
	att := msg.Attachments[0]
	assert.Equal(t, "att-1", att.ID)
	assert.Equal(t, "receipt.png", att.Filename)
	assert.Equal(t, "image/png", att.MimeType)
	assert.Equal(t, int64(1024), att.Size)
	assert.Nil(t, att.Data, "Load must not download attachment content")
}

func TestLoadFallsBackToHTMLBody(t *testing.T) {
	svc := &gmailSvcMock{
		GetMessageFunc: func(_ context.Context, msgID string) (*gmail.Message, error) {
			return &gmail.Message{
				Id: msgID,
				Payload: &gmail.MessagePart{
					MimeType: "text/html",
					Body:     &gmail.MessagePartBody{Data: b64("<html><body><p>Montant: <b>1 000</b> FCFA</p></body></html>")},
				},
			}, nil
		},
	}

	msg, err := mail.NewLoader(svc).Load(context.Background(), "m-002")
	require.NoError(t, err)

	assert.Equal(t, "Montant: 1 000 FCFA", msg.BodyText)
}

func TestLoadWithAttachmentsDownloadsContent(t *testing.T) {
	svc := &gmailSvcMock{
		GetMessageFunc: func(_ context.Context, msgID string) (*gmail.Message, error) {
			return &gmail.Message{
				Id: msgID,
				Payload: &gmail.MessagePart{
					Parts: []*gmail.MessagePart{
						{
							MimeType: "image/jpeg",
							Filename: "receipt.jpg",
							Body:     &gmail.MessagePartBody{AttachmentId: "att-9"},
						},
					},
				},
			}, nil
		},
		GetAttachmentFunc: func(_ context.Context, msgID, attachmentID string) (*gmail.MessagePartBody, error) {
			assert.Equal(t, "att-9", attachmentID)
			return &gmail.MessagePartBody{Data: b64("fake-jpeg-bytes")}, nil
		},
	}

	msg, err := mail.NewLoader(svc).LoadWithAttachments(context.Background(), "m-003")
	require.NoError(t, err)

	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, []byte("fake-jpeg-bytes"), msg.Attachments[0].Data)
}

func TestSendEncodesRFC2822(t *testing.T) {
	svc := &gmailSvcMock{
		SendMessageFunc: func(_ context.Context, raw, threadID string) (*gmail.Message, error) {
			assert.Equal(t, "t-042", threadID)

			decoded, err := base64.RawURLEncoding.DecodeString(raw)
			require.NoError(t, err)
			assert.Equal(t,
				"To: jane@test.com\r\n"+
					"Subject: Paiement validé - PaymentVerifierAI\r\n"+
					"MIME-Version: 1.0\r\n"+
					"Content-Type: text/plain; charset=\"UTF-8\"\r\n"+
					"\r\n"+
					"Décision: VALIDER",
				string(decoded))

			return &gmail.Message{Id: "sent-001"}, nil
		},
	}

	id, err := mail.NewLoader(svc).Send(context.Background(),
		"jane@test.com", "Paiement validé - PaymentVerifierAI", "Décision: VALIDER", "t-042")
	require.NoError(t, err)
	assert.Equal(t, "sent-001", id)
}

func TestSendPropagatesFailure(t *testing.T) {
	svc := &gmailSvcMock{
		SendMessageFunc: func(context.Context, string, string) (*gmail.Message, error) {
			return nil, fmt.Errorf("quota exceeded")
		},
	}

	_, err := mail.NewLoader(svc).Send(context.Background(), "jane@test.com", "s", "b", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
