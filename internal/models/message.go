package models

// Sender identifies who authored a message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one turn of the conversation. Values are never mutated after creation.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// UserMessage creates a message authored by the user
func UserMessage(text string) Message {
	return Message{Sender: SenderUser, Text: text}
}

// AssistantMessage creates a message authored by the assistant
func AssistantMessage(text string) Message {
	return Message{Sender: SenderAssistant, Text: text}
}

// IsUser reports whether the message was authored by the user
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}
