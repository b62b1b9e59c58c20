package transcript

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/fureal/fureal/internal/models"
)

func sample() Transcript {
	at := time.Date(2026, 3, 4, 10, 30, 0, 0, time.Local)
	return Transcript{
		ID:         "0b5e3c9a-1111-2222-3333-444455556666",
		Assistant:  models.AssistantName,
		Backend:    "http://localhost:8000",
		ExportedAt: at,
		Messages: []models.Message{
			{Sender: models.SenderAssistant, Text: models.GreetingText, Time: at},
			{Sender: models.SenderUser, Text: "Where is my order?", Time: at},
			{Sender: models.SenderAssistant, Text: "It ships **today**.", Audio: "/audios/r1.mp3", Time: at},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"Markdown", FormatMarkdown, false},
		{"json", FormatJSON, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestMarkdown(t *testing.T) {
	md := sample().Markdown()

	for _, want := range []string{
		"# Conversation with Fureal",
		"**Backend:** http://localhost:8000",
		"**Messages:** 3",
		"## You (10:30:00)",
		"## Fureal (10:30:00)",
		"Where is my order?",
		"It ships **today**.",
		"🔊 `/audios/r1.mp3`",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}

	if strings.HasSuffix(md, "---\n\n") {
		t.Error("no separator after the last message")
	}
}

func TestJSON(t *testing.T) {
	data, err := sample().JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var decoded Transcript
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Messages) != 3 {
		t.Fatalf("messages = %d, want 3", len(decoded.Messages))
	}
	if decoded.Messages[1].Sender != models.SenderUser {
		t.Errorf("sender = %q", decoded.Messages[1].Sender)
	}
	if decoded.Messages[2].Audio != "/audios/r1.mp3" {
		t.Errorf("audio = %q", decoded.Messages[2].Audio)
	}
}

func TestNew(t *testing.T) {
	msgs := sample().Messages
	tr := New(msgs, "http://b")

	if tr.ID == "" || len(tr.ID) != 36 {
		t.Errorf("ID = %q, want a uuid", tr.ID)
	}
	if tr.Assistant != models.AssistantName || tr.Backend != "http://b" {
		t.Errorf("unexpected transcript %+v", tr)
	}
	if diff := cmp.Diff(msgs, tr.Messages); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
	if New(msgs, "").ID == tr.ID {
		t.Error("ids must be unique")
	}
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "transcripts")

	for _, f := range []Format{FormatMarkdown, FormatJSON} {
		path, err := Save(dir, sample(), f)
		if err != nil {
			t.Fatalf("Save(%s) error = %v", f, err)
		}
		if filepath.Ext(path) != f.Ext() {
			t.Errorf("path %s has wrong extension", path)
		}
		if !strings.HasPrefix(filepath.Base(path), "fureal-20260304-103000-0b5e3c9a") {
			t.Errorf("unexpected file name %s", filepath.Base(path))
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("file not written: %v", err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Errorf("permissions = %o, want 600", info.Mode().Perm())
		}
	}
}
