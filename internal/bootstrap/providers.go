package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/yt-summarizer/internal/domain/summarizer"
	"github.com/yanqian/yt-summarizer/internal/infra/config"
	"github.com/yanqian/yt-summarizer/internal/infra/llm/chatgpt"
	"github.com/yanqian/yt-summarizer/internal/infra/llm/gemini"
	"github.com/yanqian/yt-summarizer/internal/infra/promptfile"
	"github.com/yanqian/yt-summarizer/internal/infra/tokenizer"
	"github.com/yanqian/yt-summarizer/internal/infra/transcript"
	"github.com/yanqian/yt-summarizer/internal/infra/transcript/cache"
)

// ProvideSummaryConfig maps the summary section onto the domain config.
func ProvideSummaryConfig(cfg *config.Config) summarizer.Config {
	choices := cfg.Summary.DefaultChoices
	return summarizer.Config{
		MaxTokensPerChunk:  cfg.Summary.MaxTokensPerChunk,
		EncodingModel:      cfg.Summary.EncodingModel,
		ChunkFailurePolicy: summarizer.FailurePolicy(cfg.Summary.ChunkFailurePolicy),
		DefaultEngine:      cfg.Summary.DefaultEngine,
		DefaultChoices: summarizer.UserChoices{
			Language:    choices.Language,
			DetailLevel: choices.DetailLevel,
			SummaryType: choices.SummaryType,
			Style:       choices.Style,
			AddEmojis:   choices.AddEmojis,
			AddTables:   choices.AddTables,
		},
	}
}

// ProvideTokenCounter builds the tiktoken counter and loads the configured
// encoding, so an unknown model stops the process at boot.
func ProvideTokenCounter(cfg *config.Config) (*tokenizer.Tiktoken, error) {
	counter := tokenizer.NewTiktoken()
	if err := counter.Validate(cfg.Summary.EncodingModel); err != nil {
		return nil, fmt.Errorf("summary.encodingModel: %w", err)
	}
	return counter, nil
}

// ProvideTemplateStore loads the prompt template, falling back to the built-in one.
func ProvideTemplateStore(cfg *config.Config, logger *slog.Logger) *summarizer.TemplateStore {
	return summarizer.NewTemplateStore(cfg.Summary.PromptTemplatePath, logger)
}

// ProvideGenerators registers every engine whose configuration is complete.
func ProvideGenerators(cfg *config.Config, logger *slog.Logger) (summarizer.Generators, error) {
	generators := summarizer.Generators{}

	if openai := cfg.LLM.OpenAI; strings.TrimSpace(openai.APIKey) != "" {
		client, err := chatgpt.NewClient(chatgptConfig(chatgpt.ProviderOpenAI, openai), logger)
		if err != nil {
			return nil, err
		}
		generators[chatgpt.ProviderOpenAI] = client
	}
	if ollama := cfg.LLM.Ollama; strings.TrimSpace(ollama.Model) != "" {
		client, err := chatgpt.NewClient(chatgptConfig(chatgpt.ProviderOllama, ollama), logger)
		if err != nil {
			return nil, err
		}
		generators[chatgpt.ProviderOllama] = client
	}
	if g := cfg.LLM.Gemini; len(g.APIKeys) > 0 && strings.TrimSpace(g.Model) != "" {
		client, err := gemini.NewClient(gemini.Config{APIKeys: g.APIKeys, Model: g.Model, Timeout: g.Timeout}, logger)
		if err != nil {
			return nil, err
		}
		generators["gemini"] = client
	}

	if len(generators) == 0 {
		logger.Warn("no generation engine configured, summaries will fail until one is set")
	} else {
		logger.Info("generation engines registered", "engines", generators.Names(), "default", cfg.Summary.DefaultEngine)
	}
	return generators, nil
}

func chatgptConfig(provider string, c config.OpenAIConfig) chatgpt.Config {
	return chatgpt.Config{
		Provider:    provider,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		Stream:      c.Stream,
		Timeout:     c.Timeout,
	}
}

// ProvideTranscriptProvider returns the YouTube caption client behind a transcript cache.
func ProvideTranscriptProvider(cfg *config.Config, logger *slog.Logger) summarizer.TranscriptProvider {
	youtube := transcript.NewYouTube(transcript.Config{
		BaseURL:   cfg.Transcript.BaseURL,
		Languages: cfg.Transcript.Languages,
		Timeout:   cfg.Transcript.Timeout,
	}, logger)
	return transcript.NewCached(youtube, provideTranscriptStore(cfg, logger), cfg.Transcript.CacheTTL, logger)
}

func provideTranscriptStore(cfg *config.Config, logger *slog.Logger) transcript.Store {
	redis := cfg.Transcript.Redis
	if redis.Enabled {
		opt, err := buildValkeyOptions(redis.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return cache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return cache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("transcript valkey store enabled", "addr", redis.Addr)
			return cache.NewValkeyStore(client, redis.Prefix)
		}
	}
	return cache.NewMemoryStore()
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

// ProvideTemplateWatcher returns nil unless template watching is enabled.
func ProvideTemplateWatcher(cfg *config.Config, svc summarizer.Service, logger *slog.Logger) *promptfile.Watcher {
	if !cfg.Summary.WatchTemplate {
		return nil
	}
	watcher, err := promptfile.New(cfg.Summary.PromptTemplatePath, svc, logger)
	if err != nil {
		logger.Error("template watcher disabled", "error", err)
		return nil
	}
	return watcher
}
