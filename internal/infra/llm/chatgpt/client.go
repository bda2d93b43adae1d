package chatgpt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/yanqian/yt-summarizer/internal/domain/summarizer"
	"github.com/yanqian/yt-summarizer/pkg/metrics"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	defaultOllamaBaseURL = "http://localhost:11434/v1"
	defaultSystemPrompt  = "You are an assistant that summarizes content."
)

// Config configures an OpenAI compatible chat backend.
type Config struct {
	Provider     string
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float32
	MaxTokens    int
	Stream       bool
	Timeout      time.Duration
	SystemPrompt string
}

// Client sends summarization prompts to an OpenAI compatible API.
type Client struct {
	api    *openai.Client
	cfg    Config
	logger *slog.Logger
}

// NewClient constructs a client for the openai or ollama provider.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("chatgpt model cannot be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}

	var clientConfig openai.ClientConfig
	switch strings.ToLower(cfg.Provider) {
	case ProviderOllama:
		if cfg.BaseURL == "" {
			cfg.BaseURL = defaultOllamaBaseURL
		}
		key := cfg.APIKey
		if key == "" {
			key = "ollama"
		}
		clientConfig = openai.DefaultConfig(key)
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	case ProviderOpenAI, "":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("chatgpt api key cannot be empty")
		}
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
	default:
		return nil, fmt.Errorf("unsupported chat provider %q", cfg.Provider)
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api:    openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
		logger: logger.With("component", "llm.chatgpt", "provider", strings.ToLower(cfg.Provider)),
	}, nil
}

// Generate sends prompt as a single user turn and returns the complete reply.
func (c *Client) Generate(ctx context.Context, prompt string) (summarizer.GenerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.cfg.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	start := time.Now()
	var (
		res summarizer.GenerationResult
		err error
	)
	if c.cfg.Stream {
		res, err = c.stream(ctx, req)
	} else {
		res, err = c.complete(ctx, req)
	}
	if err != nil {
		return summarizer.GenerationResult{}, err
	}
	res.ElapsedSeconds = time.Since(start).Seconds()
	c.logger.Debug("chat completion received", "model", c.cfg.Model, "content_length", len(res.Text), "elapsed_seconds", res.ElapsedSeconds)
	return res, nil
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (summarizer.GenerationResult, error) {
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return summarizer.GenerationResult{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return summarizer.GenerationResult{}, errors.New("chat completion returned no choices")
	}
	return summarizer.GenerationResult{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		TokensUsed: usageOf(&resp.Usage),
	}, nil
}

// stream drains a streaming completion into one result.
func (c *Client) stream(ctx context.Context, req openai.ChatCompletionRequest) (summarizer.GenerationResult, error) {
	req.Stream = true
	req.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

	stream, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return summarizer.GenerationResult{}, fmt.Errorf("chat completion stream: %w", err)
	}
	defer stream.Close()

	var (
		builder strings.Builder
		usage   metrics.TokenUsage
	)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return summarizer.GenerationResult{}, fmt.Errorf("chat completion stream recv: %w", recvErr)
		}
		for _, choice := range chunk.Choices {
			builder.WriteString(choice.Delta.Content)
		}
		if chunk.Usage != nil {
			usage = usageOf(chunk.Usage)
		}
	}
	return summarizer.GenerationResult{
		Text:       strings.TrimSpace(builder.String()),
		TokensUsed: usage,
	}, nil
}

func usageOf(u *openai.Usage) metrics.TokenUsage {
	if u == nil {
		return nil
	}
	out := metrics.TokenUsage{}
	if u.PromptTokens > 0 {
		out[metrics.PromptTokens] = u.PromptTokens
	}
	if u.CompletionTokens > 0 {
		out[metrics.CompletionTokens] = u.CompletionTokens
	}
	if u.TotalTokens > 0 {
		out[metrics.TotalTokens] = u.TotalTokens
	}
	if u.PromptTokensDetails != nil && u.PromptTokensDetails.CachedTokens > 0 {
		out["cached_tokens"] = u.PromptTokensDetails.CachedTokens
	}
	return out
}

var _ summarizer.GenerationClient = (*Client)(nil)
