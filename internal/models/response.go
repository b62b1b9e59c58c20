package models

// ChatRequest is the JSON body posted to the chat endpoint
type ChatRequest struct {
	Message string `json:"message"`
}

// Reply is a decoded answer from the chat endpoint
type Reply struct {
	Text  string
	Audio string // Path fragment relative to the backend base, empty if none
}

// HasAudio reports whether the reply references synthesized speech
func (r *Reply) HasAudio() bool {
	return r != nil && r.Audio != ""
}

// Message converts the reply into an assistant message
func (r *Reply) Message() Message {
	if r == nil {
		return NewAssistantMessage("", "")
	}
	return NewAssistantMessage(r.Text, r.Audio)
}
