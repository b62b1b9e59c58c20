package api

import (
	"context"
	"sync"

	apierrors "github.com/fureal/fureal/internal/errors"
	"github.com/fureal/fureal/internal/models"
)

// MockBackend is a mock implementation of Backend and AudioSource for testing
type MockBackend struct {
	mu sync.Mutex

	// Mock return values
	Reply    *models.Reply
	Err      error
	ChatFunc func(ctx context.Context, message string) (*models.Reply, error)

	BaseURL   string
	AudioData []byte
	AudioErr  error

	// Call recorders
	ChatCalls  []string
	AudioCalls []string
}

// Ensure MockBackend implements the interfaces
var (
	_ Backend     = (*MockBackend)(nil)
	_ AudioSource = (*MockBackend)(nil)
)

// Chat records the call and returns the configured reply or error
func (m *MockBackend) Chat(ctx context.Context, message string) (*models.Reply, error) {
	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, message)
	fn, reply, err := m.ChatFunc, m.Reply, m.Err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, message)
	}
	if err != nil {
		return nil, apierrors.NewExchangeError(err)
	}
	if reply == nil {
		return &models.Reply{}, nil
	}
	copied := *reply
	return &copied, nil
}

// AudioURL resolves ref against BaseURL
func (m *MockBackend) AudioURL(ref string) (string, error) {
	if ref == "" {
		return "", apierrors.ErrNoAudio
	}
	base := m.BaseURL
	if base == "" {
		base = models.DefaultBackendURL
	}
	return base + ref, nil
}

// FetchAudio records the resolved URL and returns AudioData
func (m *MockBackend) FetchAudio(ctx context.Context, ref string) ([]byte, error) {
	target, err := m.AudioURL(ref)
	if err != nil {
		return nil, apierrors.NewAudioError("resolve", ref, err)
	}

	m.mu.Lock()
	m.AudioCalls = append(m.AudioCalls, target)
	data, audioErr := m.AudioData, m.AudioErr
	m.mu.Unlock()

	if audioErr != nil {
		return nil, apierrors.NewAudioError("fetch", ref, audioErr)
	}
	return data, nil
}

// Calls returns a copy of the recorded chat messages
func (m *MockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.ChatCalls))
	copy(out, m.ChatCalls)
	return out
}

// FetchedURLs returns a copy of the recorded audio URLs
func (m *MockBackend) FetchedURLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.AudioCalls))
	copy(out, m.AudioCalls)
	return out
}
