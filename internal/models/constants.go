// Package models contains data types and constants for the Fureal chat client.
package models

// Backend defaults
const (
	DefaultBackendURL = "http://localhost:8000"
	DefaultChatPath   = "/chat"
)

// Fixed conversation texts
const (
	// GreetingText seeds every new conversation
	GreetingText = "Hi there! I’m Fureal 🌿, your caring companion. How may I assist you today?"

	// FallbackText replaces the assistant reply whenever an exchange fails
	FallbackText = "Oops! Something went wrong."
)

// AssistantName is the display name of the bot
const AssistantName = "Fureal"

// ChatHeaders returns the headers sent with every chat request
func ChatHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "fureal-cli",
	}
}

// AudioHeaders returns the headers sent when fetching synthesized speech
func AudioHeaders() map[string]string {
	return map[string]string{
		"Accept":     "audio/mpeg,audio/*;q=0.9,*/*;q=0.5",
		"User-Agent": "fureal-cli",
	}
}
