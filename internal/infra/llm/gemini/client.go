package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/yanqian/yt-summarizer/internal/domain/summarizer"
	"github.com/yanqian/yt-summarizer/pkg/metrics"
)

// Config configures the Gemini backend. Several API keys may be given; the
// client rotates to the next one when a key is rate limited.
type Config struct {
	APIKeys []string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client generates text with the Gemini API.
type Client struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	current int
	clients map[string]*genai.Client
}

// NewClient validates cfg and returns a client. Connections are created lazily.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	keys := make([]string, 0, len(cfg.APIKeys))
	for _, key := range cfg.APIKeys {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil, errors.New("gemini api key cannot be empty")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("gemini model cannot be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	cfg.APIKeys = keys
	return &Client{
		cfg:     cfg,
		logger:  logger.With("component", "llm.gemini"),
		clients: make(map[string]*genai.Client),
	}, nil
}

// Generate sends prompt to the configured model, rotating keys on quota errors.
func (c *Client) Generate(ctx context.Context, prompt string) (summarizer.GenerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	var lastErr error
	for range c.cfg.APIKeys {
		key := c.currentKey()
		client, err := c.clientFor(ctx, key)
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			c.rotate()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), nil)
		if err != nil {
			if isQuotaError(err) {
				c.logger.Warn("gemini key rate limited, rotating")
				lastErr = err
				c.rotate()
				continue
			}
			return summarizer.GenerationResult{}, fmt.Errorf("generate content: %w", err)
		}

		text := textOf(result)
		if text == "" {
			return summarizer.GenerationResult{}, errors.New("empty response from gemini")
		}
		return summarizer.GenerationResult{
			Text:           text,
			TokensUsed:     usageOf(result.UsageMetadata),
			ElapsedSeconds: time.Since(start).Seconds(),
		}, nil
	}
	return summarizer.GenerationResult{}, fmt.Errorf("all gemini api keys exhausted: %w", lastErr)
}

func (c *Client) currentKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.APIKeys[c.current]
}

func (c *Client) rotate() {
	c.mu.Lock()
	c.current = (c.current + 1) % len(c.cfg.APIKeys)
	c.mu.Unlock()
}

func (c *Client) clientFor(ctx context.Context, key string) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.clients[key]; ok {
		return client, nil
	}
	cc := &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	}
	if c.cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: c.cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	c.clients[key] = client
	return client, nil
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func textOf(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

func usageOf(meta *genai.GenerateContentResponseUsageMetadata) metrics.TokenUsage {
	if meta == nil {
		return nil
	}
	out := metrics.TokenUsage{}
	if meta.PromptTokenCount > 0 {
		out[metrics.PromptTokens] = int(meta.PromptTokenCount)
	}
	if meta.CandidatesTokenCount > 0 {
		out[metrics.CompletionTokens] = int(meta.CandidatesTokenCount)
	}
	if meta.TotalTokenCount > 0 {
		out[metrics.TotalTokens] = int(meta.TotalTokenCount)
	}
	return out
}

var _ summarizer.GenerationClient = (*Client)(nil)
