package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/gmail/v1"
)

type gmailSvc interface {
	ListMessages(ctx context.Context, q string, maxResults int64) (*gmail.ListMessagesResponse, error)
	GetMessage(ctx context.Context, msgID string) (*gmail.Message, error)
	GetAttachment(ctx context.Context, msgID, attachmentID string) (*gmail.MessagePartBody, error)
	SendMessage(ctx context.Context, raw, threadID string) (*gmail.Message, error)
}

// NewLoader creates a Loader backed by the Gmail service.
func NewLoader(svc gmailSvc) *Loader {
	return &Loader{svc: svc}
}

// Loader converts Gmail API payloads into Messages and assembles
// outbound replies.
type Loader struct {
	svc gmailSvc
}

// List returns up to maxResults candidate message IDs for a query, in
// the order the mailbox returns them.
func (l *Loader) List(ctx context.Context, query string, maxResults int64) ([]string, error) {
	result, err := l.svc.ListMessages(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("svc.ListMessages failed: %w", err)
	}

	ids := make([]string, 0, len(result.Messages))
	for _, m := range result.Messages {
		ids = append(ids, m.Id)
	}

	return ids, nil
}

// Load fetches one message and builds its typed view. Attachment
// content is not downloaded; see LoadWithAttachments.
func (l *Loader) Load(ctx context.Context, msgID string) (*Message, error) {
	raw, err := l.svc.GetMessage(ctx, msgID)
	if err != nil {
		return nil, fmt.Errorf("svc.GetMessage %s failed: %w", msgID, err)
	}

	return fromGmail(raw), nil
}

// LoadWithAttachments fetches one message including the raw bytes of
// every attachment.
func (l *Loader) LoadWithAttachments(ctx context.Context, msgID string) (*Message, error) {
	msg, err := l.Load(ctx, msgID)
	if err != nil {
		return nil, err
	}

	for i, att := range msg.Attachments {
		body, err := l.svc.GetAttachment(ctx, msgID, att.ID)
		if err != nil {
			return nil, fmt.Errorf("svc.GetAttachment %s/%s failed: %w", msgID, att.ID, err)
		}
		msg.Attachments[i].Data = decodeBase64URLBytes(body.Data)
	}

	return msg, nil
}

// Send assembles a plain-text reply and hands it to the mailbox. The
// returned value is the sent message ID.
func (l *Loader) Send(ctx context.Context, to, subject, body, threadID string) (string, error) {
	var sb strings.Builder
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)

	raw := base64.RawURLEncoding.EncodeToString([]byte(sb.String()))

	sent, err := l.svc.SendMessage(ctx, raw, threadID)
	if err != nil {
		return "", fmt.Errorf("svc.SendMessage failed: %w", err)
	}

	return sent.Id, nil
}

func fromGmail(raw *gmail.Message) *Message {
	msg := &Message{
		ID:           raw.Id,
		ThreadID:     raw.ThreadId,
		InternalDate: raw.InternalDate,
		Snippet:      raw.Snippet,
	}

	if raw.Payload == nil {
		return msg
	}

	for _, header := range raw.Payload.Headers {
		switch header.Name {
		case "Subject":
			msg.Subject = header.Value
		case "From":
			msg.From = header.Value
		case "To":
			msg.To = header.Value
		}
	}

	textBody, htmlBody := extractMessageBodies(raw.Payload)
	if textBody != "" {
		msg.BodyText = textBody
	} else if htmlBody != "" {
		msg.BodyText = HTMLToText([]byte(htmlBody))
	}

	msg.Attachments = extractAttachments(raw.Payload)

	return msg
}

func extractMessageBodies(payload *gmail.MessagePart) (textBody, htmlBody string) {
	textBody, htmlBody = extractBodyFromPart(payload)

	for _, part := range payload.Parts {
		partText, partHTML := extractBodyFromPart(part)

		if textBody == "" {
			textBody = partText
		}
		if htmlBody == "" {
			htmlBody = partHTML
		}

		if len(part.Parts) > 0 {
			nestedText, nestedHTML := extractMessageBodies(part)
			if textBody == "" {
				textBody = nestedText
			}
			if htmlBody == "" {
				htmlBody = nestedHTML
			}
		}
	}

	return textBody, htmlBody
}

func extractBodyFromPart(part *gmail.MessagePart) (textBody, htmlBody string) {
	if part.Body == nil || part.Body.Data == "" {
		return "", ""
	}

	switch part.MimeType {
	case "text/plain":
		return decodeBase64URL(part.Body.Data), ""
	case "text/html":
		return "", decodeBase64URL(part.Body.Data)
	default:
		return "", ""
	}
}

func extractAttachments(payload *gmail.MessagePart) []Attachment {
	var attachments []Attachment

	if payload.Body != nil && payload.Body.AttachmentId != "" {
		attachments = append(attachments, Attachment{
			ID:       payload.Body.AttachmentId,
			Filename: payload.Filename,
			MimeType: payload.MimeType,
			Size:     payload.Body.Size,
		})
	}

	for _, part := range payload.Parts {
		attachments = append(attachments, extractAttachments(part)...)
	}

	return attachments
}

func decodeBase64URL(data string) string {
	return string(decodeBase64URLBytes(data))
}

func decodeBase64URLBytes(data string) []byte {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return []byte(data)
		}
	}
	return decoded
}
