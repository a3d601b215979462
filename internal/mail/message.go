// Package mail builds a typed message model at the Gmail API boundary,
// so nothing past this package handles raw payload trees.
package mail

// Attachment is one attachment of a message. Data is only populated by
// LoadWithAttachments; listing and matching never download content.
type Attachment struct {
	ID       string
	Filename string
	MimeType string
	Size     int64
	Data     []byte
}

// Message is the read-only view of one mailbox message.
type Message struct {
	ID           string
	ThreadID     string
	InternalDate int64 // milliseconds since epoch, UTC
	Snippet      string
	Subject      string
	From         string
	To           string
	BodyText     string
	Attachments  []Attachment
}

// Content is the snippet and body joined the way the matching engine
// consumes candidate text.
func (m *Message) Content() string {
	return m.Snippet + "\n" + m.BodyText
}
