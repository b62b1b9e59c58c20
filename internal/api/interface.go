package api

import (
	"context"

	"github.com/fureal/fureal/internal/models"
)

// Backend is the chat exchange surface used by the coordinator
type Backend interface {
	Chat(ctx context.Context, message string) (*models.Reply, error)
}

// AudioSource resolves and downloads synthesized speech
type AudioSource interface {
	AudioURL(ref string) (string, error)
	FetchAudio(ctx context.Context, ref string) ([]byte, error)
}

// Ensure Client implements both interfaces
var (
	_ Backend     = (*Client)(nil)
	_ AudioSource = (*Client)(nil)
)
