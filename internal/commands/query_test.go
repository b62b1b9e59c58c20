package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/fureal/fureal/internal/api"
	"github.com/fureal/fureal/internal/config"
	"github.com/fureal/fureal/internal/conversation"
	apierrors "github.com/fureal/fureal/internal/errors"
	"github.com/fureal/fureal/internal/exchange"
	"github.com/fureal/fureal/internal/models"
	"github.com/fureal/fureal/internal/tui"
)

// fakeTUI records the chat it was asked to run
type fakeTUI struct {
	state  *conversation.State
	sender tui.Sender
	opts   tui.Options
	err    error
	calls  int
}

func (f *fakeTUI) RunChat(_ context.Context, state *conversation.State, sender tui.Sender, opts tui.Options) error {
	f.calls++
	f.state, f.sender, f.opts = state, sender, opts
	return f.err
}

// fakePlayer records played references
type fakePlayer struct {
	refs []string
	err  error
}

func (f *fakePlayer) Play(_ context.Context, ref string) error {
	f.refs = append(f.refs, ref)
	return f.err
}

// newTestDeps wires a real coordinator over a mock backend
func newTestDeps(t *testing.T, backend *api.MockBackend) *Dependencies {
	t.Helper()
	t.Setenv(config.EnvHome, t.TempDir())

	state := conversation.NewDefault()
	return &Dependencies{
		Config:  config.DefaultConfig(),
		Logger:  zap.NewNop(),
		Backend: models.DefaultBackendURL,
		State:   state,
		Sender:  exchange.New(state, backend),
		TUI:     &fakeTUI{},
	}
}

func TestRunQuery_Raw(t *testing.T) {
	backend := &api.MockBackend{Reply: &models.Reply{Text: "Your parcel ships **today**"}}
	deps := newTestDeps(t, backend)

	var stdout, stderr bytes.Buffer
	err := runQuery(context.Background(), deps, "Where is my parcel?", queryOptions{raw: true}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}

	if stdout.String() != "Your parcel ships **today**" {
		t.Errorf("stdout = %q, want raw reply text", stdout.String())
	}
	if stderr.Len() != 0 {
		t.Errorf("raw mode should not decorate stderr, got %q", stderr.String())
	}
	if len(backend.ChatCalls) != 1 || backend.ChatCalls[0] != "Where is my parcel?" {
		t.Errorf("backend received %v", backend.ChatCalls)
	}

	msgs := deps.State.Messages()
	if len(msgs) != 3 || !msgs[1].IsUser() || msgs[2].Text != "Your parcel ships **today**" {
		t.Errorf("unexpected conversation %+v", msgs)
	}
}

func TestRunQuery_EmptyMessage(t *testing.T) {
	backend := &api.MockBackend{}
	deps := newTestDeps(t, backend)

	err := runQuery(context.Background(), deps, "  \n ", queryOptions{raw: true}, &bytes.Buffer{}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for empty message")
	}
	if len(backend.ChatCalls) != 0 {
		t.Error("empty message must not reach the backend")
	}
}

func TestRunQuery_FailurePrintsFallback(t *testing.T) {
	backend := &api.MockBackend{Err: apierrors.NewNetworkErrorWithEndpoint("chat", "http://localhost:8000/chat", errors.New("refused"))}
	deps := newTestDeps(t, backend)

	var stdout bytes.Buffer
	err := runQuery(context.Background(), deps, "Hi", queryOptions{raw: true}, &stdout, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("exchange failures are not command errors, got %v", err)
	}
	if stdout.String() != models.FallbackText {
		t.Errorf("stdout = %q, want fallback", stdout.String())
	}
}

func TestRunQuery_CancelledContext(t *testing.T) {
	backend := &api.MockBackend{}
	deps := newTestDeps(t, backend)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runQuery(ctx, deps, "Hi", queryOptions{raw: true}, &bytes.Buffer{}, &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(backend.ChatCalls) != 0 || deps.State.Len() != 1 {
		t.Error("a send that never started must not touch the conversation")
	}
}

func TestRunQuery_OutputFile(t *testing.T) {
	tests := []struct {
		name string
		raw  bool
	}{
		{"raw", true},
		{"decorated", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps(t, &api.MockBackend{Reply: &models.Reply{Text: "Saved reply"}})
			out := filepath.Join(t.TempDir(), "reply.md")

			var stdout, stderr bytes.Buffer
			opts := queryOptions{raw: tt.raw, output: out}
			if err := runQuery(context.Background(), deps, "Hi", opts, &stdout, &stderr); err != nil {
				t.Fatalf("runQuery() error = %v", err)
			}

			data, err := os.ReadFile(out)
			if err != nil {
				t.Fatalf("output file not written: %v", err)
			}
			if string(data) != "Saved reply" {
				t.Errorf("file content = %q", data)
			}
			if stdout.Len() != 0 {
				t.Errorf("stdout should be empty when writing to a file, got %q", stdout.String())
			}
			if !tt.raw && !strings.Contains(stderr.String(), "Reply saved to") {
				t.Errorf("expected save confirmation, got %q", stderr.String())
			}
		})
	}
}

func TestRunQuery_Decorated(t *testing.T) {
	deps := newTestDeps(t, &api.MockBackend{Reply: &models.Reply{Text: "Hello there", Audio: "/audio/1.mp3"}})
	deps.Config.Markdown.Style = "notty"

	var stdout, stderr bytes.Buffer
	if err := runQuery(context.Background(), deps, "Hi", queryOptions{}, &stdout, &stderr); err != nil {
		t.Fatalf("runQuery() error = %v", err)
	}

	if !strings.Contains(stdout.String(), models.AssistantName) {
		t.Error("decorated output should carry the assistant label")
	}
	if !strings.Contains(stdout.String(), "Hello there") {
		t.Errorf("reply missing from output: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Reply received") {
		t.Error("spinner should finish with a success line")
	}
	if !strings.Contains(stderr.String(), "--play") {
		t.Error("replies with audio should mention --play")
	}
}

func TestRunQuery_Clipboard(t *testing.T) {
	old := copyToClipboard
	defer func() { copyToClipboard = old }()

	tests := []struct {
		name    string
		copyErr error
		want    string
	}{
		{"copied", nil, "Copied to clipboard"},
		{"copy fails", errors.New("no display"), "Failed to copy to clipboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var copied string
			copyToClipboard = func(s string) error {
				copied = s
				return tt.copyErr
			}

			deps := newTestDeps(t, &api.MockBackend{Reply: &models.Reply{Text: "clip me"}})
			deps.Config.CopyToClipboard = true
			deps.Config.Markdown.Style = "notty"

			var stderr bytes.Buffer
			if err := runQuery(context.Background(), deps, "Hi", queryOptions{}, &bytes.Buffer{}, &stderr); err != nil {
				t.Fatalf("runQuery() error = %v", err)
			}
			if copied != "clip me" {
				t.Errorf("copied %q", copied)
			}
			if !strings.Contains(stderr.String(), tt.want) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.want)
			}
		})
	}
}

func TestRunQuery_Play(t *testing.T) {
	tests := []struct {
		name      string
		audio     string
		player    *fakePlayer
		wantRefs  []string
		wantErr   bool
		wantNoPly bool
	}{
		{"plays audio", "/audio/1.mp3", &fakePlayer{}, []string{"/audio/1.mp3"}, false, false},
		{"no audio", "", &fakePlayer{}, nil, false, false},
		{"player fails", "/audio/1.mp3", &fakePlayer{err: apierrors.NewAudioError("play", "/audio/1.mp3", errors.New("exit 1"))}, []string{"/audio/1.mp3"}, true, false},
		{"no player", "/audio/1.mp3", nil, nil, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps(t, &api.MockBackend{Reply: &models.Reply{Text: "Listen", Audio: tt.audio}})
			if tt.player != nil {
				deps.Player = tt.player
			}

			err := runQuery(context.Background(), deps, "Hi", queryOptions{raw: true, play: true}, &bytes.Buffer{}, &bytes.Buffer{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("runQuery() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantNoPly && !errors.Is(err, apierrors.ErrNoPlayer) {
				t.Errorf("error = %v, want ErrNoPlayer", err)
			}
			if tt.player != nil && strings.Join(tt.player.refs, ",") != strings.Join(tt.wantRefs, ",") {
				t.Errorf("played %v, want %v", tt.player.refs, tt.wantRefs)
			}
		})
	}
}

func TestSpinnerLifecycle(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Waiting")
	s.start()
	s.stopWithSuccess("done")

	if !strings.Contains(buf.String(), "done") {
		t.Errorf("expected success line, got %q", buf.String())
	}

	s = newSpinner(&bytes.Buffer{}, "Waiting")
	s.start()
	s.stopWithError()
	s.stopOnce() // second stop is a no-op
}

func TestFormatErrorMessage(t *testing.T) {
	if got := formatErrorMessage(nil, "ctx"); got != "" {
		t.Fatalf("expected empty for nil error, got %s", got)
	}

	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "api error with body",
			err:  apierrors.NewAPIError(500, "http://localhost:8000/chat", "failure").WithBody("model crashed"),
			want: []string{"HTTP Status: 500", "Endpoint: http://localhost:8000/chat", "model crashed"},
		},
		{
			name: "network error",
			err:  apierrors.NewNetworkErrorWithEndpoint("chat", "http://localhost:8000/chat", errors.New("refused")),
			want: []string{"Is the backend running"},
		},
		{
			name: "timeout",
			err:  apierrors.NewTimeoutError("too slow"),
			want: []string{"request_timeout"},
		},
		{
			name: "no player",
			err:  apierrors.NewAudioError("play", "/audio/1.mp3", apierrors.ErrNoPlayer),
			want: []string{"Install mpv"},
		},
		{
			name: "audio fetch",
			err:  apierrors.NewAudioError("fetch", "/audio/1.mp3", errors.New("404")),
			want: []string{"audio_player"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := formatErrorMessage(tt.err, "Failed")
			if !strings.Contains(out, "Failed") {
				t.Errorf("missing context in %q", out)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("missing %q in %q", want, out)
				}
			}
		})
	}
}
