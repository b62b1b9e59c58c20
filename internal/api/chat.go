package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apierrors "github.com/fureal/fureal/internal/errors"
	"github.com/fureal/fureal/internal/models"
)

// Response paths of the chat endpoint
const (
	PathReplyText  = "text"
	PathReplyAudio = "audio"
)

// HeaderRequestSeq carries the exchange sequence number
const HeaderRequestSeq = "X-Request-Seq"

// maxReplyBytes bounds how much of a reply body is read
const maxReplyBytes = 1 << 20

type seqKey struct{}

// WithSequence attaches an exchange sequence number to ctx
func WithSequence(ctx context.Context, seq uint64) context.Context {
	return context.WithValue(ctx, seqKey{}, seq)
}

// SequenceFrom returns the sequence number attached to ctx
func SequenceFrom(ctx context.Context) (uint64, bool) {
	seq, ok := ctx.Value(seqKey{}).(uint64)
	return seq, ok
}

// Chat posts message to the chat endpoint and decodes the reply.
// Every failure is returned as *errors.ExchangeError.
func (c *Client) Chat(ctx context.Context, message string) (*models.Reply, error) {
	seq, ok := SequenceFrom(ctx)
	if !ok {
		seq = c.nextSeq()
	}

	reply, err := c.doChat(ctx, seq, message)
	if err != nil {
		exErr := apierrors.NewExchangeError(err)
		exErr.Seq = seq
		return nil, exErr
	}
	return reply, nil
}

func (c *Client) doChat(ctx context.Context, seq uint64, message string) (*models.Reply, error) {
	if c.IsClosed() {
		return nil, errors.New("client is closed")
	}

	endpoint := c.ChatURL()
	log := c.logger.With(zap.Uint64("seq", seq), zap.String("endpoint", endpoint))

	payload, err := json.Marshal(models.ChatRequest{Message: message})
	if err != nil {
		return nil, apierrors.NewParseError("failed to encode request: "+err.Error(), "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, apierrors.NewNetworkErrorWithEndpoint("build chat request", endpoint, err)
	}

	for key, value := range models.ChatHeaders() {
		req.Header.Set(key, value)
	}
	req.Header.Set(HeaderRequestSeq, strconv.FormatUint(seq, 10))

	start := time.Now()
	log.Debug("sending chat request", zap.Int("bytes", len(payload)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, apierrors.NewTimeoutError("chat request exceeded its deadline")
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint("chat", endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, apierrors.NewNetworkErrorWithEndpoint("read chat reply", endpoint, err)
	}

	log.Debug("chat reply received",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apierrors.NewAPIError(resp.StatusCode, endpoint, "chat request failed").WithBody(string(body))
	}

	return decodeReply(body)
}

// decodeReply extracts text and audio from a chat response body.
// text is required and must be a string. Any audio value that is not a
// string (absent, null, false) means the reply has no audio.
func decodeReply(body []byte) (*models.Reply, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return nil, apierrors.NewParseError("response is not a JSON object", "")
	}

	text := parsed.Get(PathReplyText)
	if !text.Exists() {
		return nil, apierrors.NewParseError("missing reply text", PathReplyText)
	}
	if text.Type != gjson.String {
		return nil, apierrors.NewParseError("reply text is not a string", PathReplyText)
	}

	reply := &models.Reply{Text: text.String()}

	if audio := parsed.Get(PathReplyAudio); audio.Type == gjson.String {
		reply.Audio = audio.String()
	}

	return reply, nil
}
