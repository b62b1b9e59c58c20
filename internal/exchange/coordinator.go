// Package exchange runs one chat round trip against the backend and records
// it in the conversation state.
package exchange

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/fureal/fureal/internal/api"
	"github.com/fureal/fureal/internal/conversation"
	apierrors "github.com/fureal/fureal/internal/errors"
	"github.com/fureal/fureal/internal/models"
)

// ErrEmptyInput is returned when Send is called with blank text
var ErrEmptyInput = errors.New("message is empty")

// Coordinator performs exchanges one at a time
type Coordinator struct {
	state   *conversation.State
	backend api.Backend
	logger  *zap.Logger
	timeout time.Duration

	sem *semaphore.Weighted
	seq atomic.Uint64
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeout bounds each backend call. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Coordinator) {
		c.timeout = timeout
	}
}

// New creates a coordinator writing into state
func New(state *conversation.State, backend api.Backend, opts ...Option) *Coordinator {
	c := &Coordinator{
		state:   state,
		backend: backend,
		logger:  zap.NewNop(),
		sem:     semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("exchange")
	return c
}

// State returns the conversation the coordinator writes into
func (c *Coordinator) State() *conversation.State {
	return c.state
}

// Send appends userText as a user message, asks the backend for a reply and
// appends it. A failed exchange appends the fallback message instead and is
// not reported as an error. The returned message is the one appended for
// the assistant.
//
// Sends are serialized. The only errors are ErrEmptyInput and the context
// error when ctx ends while waiting for an earlier send; in both cases the
// conversation is left untouched.
func (c *Coordinator) Send(ctx context.Context, userText string) (models.Message, error) {
	if strings.TrimSpace(userText) == "" {
		return models.Message{}, ErrEmptyInput
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return models.Message{}, err
	}
	defer c.sem.Release(1)

	seq := c.seq.Add(1)
	log := c.logger.With(zap.Uint64("seq", seq))

	c.state.AppendMessage(models.NewUserMessage(userText))
	c.state.SetComposing(true)
	defer c.state.SetComposing(false)

	start := time.Now()
	reply, err := c.call(ctx, seq, userText)

	var msg models.Message
	if err != nil {
		log.Warn("exchange failed",
			zap.Error(err),
			zap.Int("status", apierrors.GetHTTPStatus(err)),
			zap.Bool("timeout", apierrors.IsTimeoutError(err)),
			zap.Duration("elapsed", time.Since(start)),
		)
		msg = models.NewAssistantMessage(models.FallbackText, "")
	} else {
		log.Debug("exchange completed",
			zap.Bool("audio", reply.HasAudio()),
			zap.Duration("elapsed", time.Since(start)),
		)
		msg = reply.Message()
	}

	c.state.AppendMessage(msg)
	return msg, nil
}

func (c *Coordinator) call(ctx context.Context, seq uint64, text string) (*models.Reply, error) {
	ctx = api.WithSequence(ctx, seq)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reply, err := c.backend.Chat(ctx, text)
	if err != nil {
		return nil, err
	}
	if reply == nil {
		return nil, apierrors.NewExchangeError(apierrors.NewParseError("empty reply", ""))
	}
	return reply, nil
}
