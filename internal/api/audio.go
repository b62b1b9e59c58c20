package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"go.uber.org/zap"

	apierrors "github.com/fureal/fureal/internal/errors"
	"github.com/fureal/fureal/internal/models"
)

// maxAudioBytes bounds the size of a fetched audio resource
const maxAudioBytes = 32 << 20

// AudioURL resolves an audio reference against the backend base address.
// References are path fragments such as "/audios/reply.mp3". Absolute
// http(s) URLs are returned unchanged and bypass the configured base, so a
// backend may point at another host for audio.
func (c *Client) AudioURL(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", apierrors.ErrNoAudio
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		if _, err := url.Parse(ref); err != nil {
			return "", fmt.Errorf("invalid audio URL %q: %w", ref, err)
		}
		return ref, nil
	}

	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	resolved := c.baseURL + ref
	if _, err := url.Parse(resolved); err != nil {
		return "", fmt.Errorf("invalid audio reference %q: %w", ref, err)
	}
	return resolved, nil
}

// FetchAudio downloads the audio resource referenced by ref
func (c *Client) FetchAudio(ctx context.Context, ref string) ([]byte, error) {
	if c.IsClosed() {
		return nil, apierrors.NewAudioError("fetch", ref, errors.New("client is closed"))
	}

	target, err := c.AudioURL(ref)
	if err != nil {
		return nil, apierrors.NewAudioError("resolve", ref, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, apierrors.NewAudioError("fetch", ref, err)
	}
	for key, value := range models.AudioHeaders() {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewAudioError("fetch", ref, apierrors.NewNetworkErrorWithEndpoint("fetch audio", target, err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apierrors.NewAudioError("fetch", ref, apierrors.NewAPIError(resp.StatusCode, target, "audio download failed"))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, apierrors.NewAudioError("fetch", ref, err)
	}
	if len(data) == 0 {
		return nil, apierrors.NewAudioError("fetch", ref, errors.New("empty audio body"))
	}

	c.logger.Debug("audio fetched", zap.String("url", target), zap.Int("bytes", len(data)))
	return data, nil
}
