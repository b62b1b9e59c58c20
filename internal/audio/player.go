// Package audio plays synthesized speech attached to assistant replies.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/fureal/fureal/internal/api"
	apierrors "github.com/fureal/fureal/internal/errors"
)

// Candidates are tried in order when no player command is configured.
// Each entry is the binary followed by the arguments placed before the file.
var Candidates = [][]string{
	{"mpv", "--no-video", "--really-quiet"},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"afplay"},
	{"mpg123", "-q"},
	{"paplay"},
}

// Runner starts an external command and waits for it to exit
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run executes name with args and returns its exit error
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Player fetches an audio reference and hands it to a player command
type Player struct {
	source   api.AudioSource
	command  []string
	runner   Runner
	lookPath func(string) (string, error)
	tempDir  string
	logger   *zap.Logger
}

// Option configures a Player
type Option func(*Player)

// WithCommand sets the player command line, e.g. "mpv --no-video".
// Empty keeps auto-detection.
func WithCommand(command string) Option {
	return func(p *Player) {
		p.command = strings.Fields(command)
	}
}

// WithRunner replaces the command runner
func WithRunner(r Runner) Option {
	return func(p *Player) {
		if r != nil {
			p.runner = r
		}
	}
}

// WithLookPath replaces the binary lookup used for auto-detection
func WithLookPath(fn func(string) (string, error)) Option {
	return func(p *Player) {
		if fn != nil {
			p.lookPath = fn
		}
	}
}

// WithTempDir sets where fetched audio is written before playback
func WithTempDir(dir string) Option {
	return func(p *Player) {
		p.tempDir = dir
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPlayer creates a Player reading audio from source
func NewPlayer(source api.AudioSource, opts ...Option) *Player {
	p := &Player{
		source:   source,
		runner:   ExecRunner{},
		lookPath: exec.LookPath,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named("audio")
	return p
}

// Command returns the player command line that Play would use
func (p *Player) Command() ([]string, error) {
	if len(p.command) > 0 {
		return p.command, nil
	}
	for _, candidate := range Candidates {
		if _, err := p.lookPath(candidate[0]); err == nil {
			return candidate, nil
		}
	}
	return nil, apierrors.ErrNoPlayer
}

// Play resolves ref against the backend at call time, downloads it and
// blocks until the player exits. Every failure is an *errors.AudioError.
func (p *Player) Play(ctx context.Context, ref string) error {
	target, err := p.source.AudioURL(ref)
	if err != nil {
		return apierrors.NewAudioError("resolve", ref, err)
	}

	command, err := p.Command()
	if err != nil {
		return apierrors.NewAudioError("play", ref, err)
	}

	data, err := p.source.FetchAudio(ctx, ref)
	if err != nil {
		var audioErr *apierrors.AudioError
		if errors.As(err, &audioErr) {
			return err
		}
		return apierrors.NewAudioError("fetch", ref, err)
	}

	file, err := p.writeTemp(target, data)
	if err != nil {
		return apierrors.NewAudioError("play", ref, err)
	}
	defer func() { _ = os.Remove(file) }()

	args := append(append([]string(nil), command[1:]...), file)
	p.logger.Debug("playing audio",
		zap.String("url", target),
		zap.String("player", command[0]),
		zap.Int("bytes", len(data)),
	)

	if err := p.runner.Run(ctx, command[0], args...); err != nil {
		return apierrors.NewAudioError("play", ref, err)
	}
	return nil
}

func (p *Player) writeTemp(target string, data []byte) (string, error) {
	ext := path.Ext(strings.SplitN(target, "?", 2)[0])
	if ext == "" || len(ext) > 5 {
		ext = ".mp3"
	}

	f, err := os.CreateTemp(p.tempDir, "fureal-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write audio: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write audio: %w", err)
	}
	return f.Name(), nil
}
