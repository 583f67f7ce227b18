package types

// Roles used in a conversation transcript.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// InlineData is an image attached to a message, base64 encoded.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// MessagePart is either text or inline image data.
type MessagePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// Message is one turn of the conversation.
type Message struct {
	Role  string        `json:"role"` // "user" or "model"
	Parts []MessagePart `json:"parts"`
}

// Text concatenates the text parts of the message.
func (m Message) Text() string {
	var out string
	for _, p := range m.Parts {
		if p.Text == "" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += p.Text
	}
	return out
}

// HasImage reports whether the message carries inline image data.
func (m Message) HasImage() bool {
	for _, p := range m.Parts {
		if p.InlineData != nil {
			return true
		}
	}
	return false
}
