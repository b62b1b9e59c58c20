package models

import "time"

// Sender identifies who authored a message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// String returns the sender as a plain string
func (s Sender) String() string {
	return string(s)
}


// Message is a single entry of a conversation.
// Audio holds the backend path of synthesized speech, empty when absent.
type Message struct {
	Sender Sender    `json:"sender"`
	Text   string    `json:"text"`
	Audio  string    `json:"audio,omitempty"`
	Time   time.Time `json:"time"`
}

// IsUser reports whether the message was written by the user
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

// HasAudio reports whether the message carries a playable audio reference
func (m Message) HasAudio() bool {
	return m.Sender == SenderAssistant && m.Audio != ""
}

// NewUserMessage builds a user message stamped with the current time
func NewUserMessage(text string) Message {
	return Message{Sender: SenderUser, Text: text, Time: time.Now()}
}

// NewAssistantMessage builds an assistant message stamped with the current time
func NewAssistantMessage(text, audio string) Message {
	return Message{Sender: SenderAssistant, Text: text, Audio: audio, Time: time.Now()}
}
