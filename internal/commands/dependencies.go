package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fureal/fureal/internal/api"
	"github.com/fureal/fureal/internal/audio"
	"github.com/fureal/fureal/internal/config"
	"github.com/fureal/fureal/internal/conversation"
	"github.com/fureal/fureal/internal/exchange"
	"github.com/fureal/fureal/internal/logging"
	"github.com/fureal/fureal/internal/render"
	"github.com/fureal/fureal/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctx context.Context, state *conversation.State, sender tui.Sender, opts tui.Options) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	Config config.Config
	Logger *zap.Logger

	// Backend is the address shown to the user and written to transcripts
	Backend string

	// State is the single conversation of this process
	State *conversation.State

	// Sender runs exchanges against State
	Sender *exchange.Coordinator

	// Player plays reply audio. Nil disables playback.
	Player tui.AudioPlayer

	// TUI is the terminal user interface.
	TUI TUIInterface

	closers []func()
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctx context.Context, state *conversation.State, sender tui.Sender, opts tui.Options) error {
	return tui.RunChat(ctx, state, sender, opts)
}

// NewDependencies loads the configuration and wires the client, the
// conversation and the coordinator together.
func NewDependencies(verbose bool) (*Dependencies, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if backendFlag != "" {
		cfg.BackendURL = backendFlag
	}

	logOpts, err := logging.FromConfig(cfg, verbose)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	client, err := newClient(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if cfg.TUITheme != "" && !render.SetTUITheme(cfg.TUITheme) {
		logger.Warn("unknown tui theme, using default", zap.String("theme", cfg.TUITheme))
	}
	tui.UpdateTheme()

	state := conversation.NewDefault()
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Backend: client.BaseURL(),
		State:   state,
		Sender: exchange.New(state, client,
			exchange.WithLogger(logger),
			exchange.WithTimeout(cfg.Timeout()),
		),
		Player: audio.NewPlayer(client,
			audio.WithCommand(cfg.AudioPlayer),
			audio.WithLogger(logger),
		),
		TUI: &DefaultTUI{},
	}
	deps.closers = append(deps.closers, client.Close, func() { _ = logger.Sync() })

	logger.Debug("dependencies ready",
		zap.String("backend", client.ChatURL()),
		zap.Duration("timeout", cfg.Timeout()),
	)
	return deps, nil
}

// newClient builds the backend client. A zero request_timeout leaves the
// transport unbounded as well.
func newClient(cfg config.Config, logger *zap.Logger) (*api.Client, error) {
	return api.NewClient(
		api.WithBaseURL(cfg.BackendURL),
		api.WithChatPath(cfg.ChatPath),
		api.WithLogger(logger),
		api.WithTimeout(cfg.Timeout()),
	)
}

// Close releases the client and flushes the log
func (d *Dependencies) Close() {
	for _, closeFn := range d.closers {
		closeFn()
	}
	d.closers = nil
}

// tuiOptions builds the chat options from the loaded configuration
func (d *Dependencies) tuiOptions(startPage string) (tui.Options, error) {
	dir, err := config.GetTranscriptDir(d.Config)
	if err != nil {
		return tui.Options{}, err
	}
	return tui.Options{
		Backend:       d.Backend,
		Render:        render.OptionsFromConfig(d.Config),
		TranscriptDir: dir,
		Player:        d.Player,
		StartPage:     startPage,
		Logger:        d.Logger,
	}, nil
}
