// Package translate provides the external translation collaborator used by
// the dictionary builder: an HTTP client for a public translation endpoint
// backed by an optional SQLite translation memory. Translation is best
// effort; any failure yields an empty string, never an aborted run.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single translation request.
const DefaultTimeout = 15 * time.Second

// Client translates catalog text from English into the target language.
type Client struct {
	endpoint string
	target   string
	http     *http.Client
	cache    *Cache
	log      *zap.SugaredLogger
}

// NewClient returns a client against endpoint translating en -> target.
// cache may be nil to disable the translation memory.
func NewClient(endpoint, target string, cache *Cache, log *zap.SugaredLogger) *Client {
	return &Client{
		endpoint: endpoint,
		target:   target,
		http:     &http.Client{Timeout: DefaultTimeout},
		cache:    cache,
		log:      log,
	}
}

// Translate returns the translation of text, or "" when the service is
// unavailable or returns an unusable response. Cached translations are
// served without a network call.
func (c *Client) Translate(ctx context.Context, text string) string {
	if text == "" {
		return ""
	}
	if c.cache != nil {
		if cached, ok, err := c.cache.Get(ctx, text); err == nil && ok {
			return cached
		}
	}

	translated, err := c.request(ctx, text)
	if err != nil {
		if c.log != nil {
			c.log.Warnw("translation failed", "text", text, "error", err)
		}
		return ""
	}
	if translated != "" && c.cache != nil {
		if err := c.cache.Put(ctx, text, translated); err != nil && c.log != nil {
			c.log.Warnw("translation cache write failed", "error", err)
		}
	}
	return translated
}

// request calls the gtx endpoint, which responds with nested arrays:
// [[["<translated>","<source>",...], ...], ...].
func (c *Client) request(ctx context.Context, text string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "en")
	params.Set("tl", c.target)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return parseResponse(body)
}

func parseResponse(body []byte) (string, error) {
	var payload []any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode translation response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translation response")
	}
	segments, ok := payload[0].([]any)
	if !ok {
		return "", fmt.Errorf("unexpected translation response shape")
	}
	var out string
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			out += s
		}
	}
	return out, nil
}
