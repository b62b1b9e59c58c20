package models

import (
	"strings"
	"testing"
)

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("  hello  ")

	if msg.Sender != SenderUser {
		t.Errorf("Sender = %s, want user", msg.Sender)
	}
	if msg.Text != "  hello  " {
		t.Errorf("Text should be kept verbatim, got %q", msg.Text)
	}
	if msg.Audio != "" {
		t.Errorf("user messages never carry audio, got %q", msg.Audio)
	}
	if msg.Time.IsZero() {
		t.Error("Time should be set")
	}
	if !msg.IsUser() {
		t.Error("IsUser() should be true")
	}
}

func TestMessageHasAudio(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"assistant with audio", NewAssistantMessage("Here", "/audio/1.mp3"), true},
		{"assistant without audio", NewAssistantMessage("Hello", ""), false},
		{"user never plays", Message{Sender: SenderUser, Text: "x", Audio: "/audio/1.mp3"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.HasAudio(); got != tt.want {
				t.Errorf("HasAudio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReplyMessage(t *testing.T) {
	reply := &Reply{Text: "Hello", Audio: ""}
	msg := reply.Message()

	if msg.Sender != SenderAssistant || msg.Text != "Hello" || msg.Audio != "" {
		t.Errorf("unexpected message %+v", msg)
	}
	if reply.HasAudio() {
		t.Error("reply without audio reported HasAudio")
	}

	var nilReply *Reply
	if nilReply.HasAudio() {
		t.Error("nil reply reported HasAudio")
	}
	if got := nilReply.Message(); got.Sender != SenderAssistant {
		t.Errorf("nil reply should still produce an assistant message, got %+v", got)
	}
}

func TestFixedTexts(t *testing.T) {
	if !strings.Contains(GreetingText, AssistantName) {
		t.Errorf("greeting should introduce %s: %q", AssistantName, GreetingText)
	}
	if FallbackText == "" {
		t.Error("fallback text must not be empty")
	}
}

func TestChatHeaders(t *testing.T) {
	headers := ChatHeaders()
	if headers["Content-Type"] != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", headers["Content-Type"])
	}
	if _, ok := headers["Authorization"]; ok {
		t.Error("chat requests must not carry an Authorization header")
	}
}
