// Package transcript exports a conversation to Markdown or JSON files.
// Transcripts are write-only: nothing in fureal reads them back.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fureal/fureal/internal/models"
)

// Format represents the format for exporting conversations
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts "md", "markdown" or "json". Empty means markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown transcript format %q (use md or json)", s)
}

// Ext returns the file extension for f
func (f Format) Ext() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".md"
}

// Transcript is one exported conversation
type Transcript struct {
	ID         string           `json:"id"`
	Assistant  string           `json:"assistant"`
	Backend    string           `json:"backend,omitempty"`
	ExportedAt time.Time        `json:"exported_at"`
	Messages   []models.Message `json:"messages"`
}

// New wraps msgs in a Transcript with a fresh id
func New(msgs []models.Message, backend string) Transcript {
	return Transcript{
		ID:         uuid.NewString(),
		Assistant:  models.AssistantName,
		Backend:    backend,
		ExportedAt: time.Now(),
		Messages:   msgs,
	}
}

// Markdown renders the transcript as a Markdown document
func (t Transcript) Markdown() string {
	var sb strings.Builder

	sb.WriteString("# Conversation with ")
	sb.WriteString(t.Assistant)
	sb.WriteString("\n\n")

	sb.WriteString("**Exported:** ")
	sb.WriteString(t.ExportedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	if t.Backend != "" {
		sb.WriteString("**Backend:** ")
		sb.WriteString(t.Backend)
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n\n---\n\n", len(t.Messages)))

	for i, msg := range t.Messages {
		role := "You"
		if msg.Sender == models.SenderAssistant {
			role = t.Assistant
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		if !msg.Time.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.Time.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		sb.WriteString(msg.Text)
		sb.WriteString("\n")

		if msg.HasAudio() {
			sb.WriteString("\n🔊 `")
			sb.WriteString(msg.Audio)
			sb.WriteString("`\n")
		}

		if i < len(t.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

// JSON renders the transcript as indented JSON
func (t Transcript) JSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// Encode renders the transcript in format f
func (t Transcript) Encode(f Format) ([]byte, error) {
	if f == FormatJSON {
		return t.JSON()
	}
	return []byte(t.Markdown()), nil
}

// Save writes the transcript into dir and returns the file path. The file
// name combines the export time with the first part of the transcript id.
func Save(dir string, t Transcript, f Format) (string, error) {
	data, err := t.Encode(f)
	if err != nil {
		return "", fmt.Errorf("failed to encode transcript: %w", err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create transcript directory: %w", err)
	}

	short := t.ID
	if len(short) > 8 {
		short = short[:8]
	}
	name := fmt.Sprintf("fureal-%s-%s%s", t.ExportedAt.Format("20060102-150405"), short, f.Ext())
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}
	return path, nil
}
