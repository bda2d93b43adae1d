package bootstrap

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/yt-summarizer/internal/domain/summarizer"
	"github.com/yanqian/yt-summarizer/internal/infra/config"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProvideGeneratorsRegistersConfiguredEngines(t *testing.T) {
	cfg := &config.Config{LLM: config.LLMConfig{
		OpenAI: config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"},
		Ollama: config.OpenAIConfig{Model: "llama3"},
		Gemini: config.GeminiConfig{Model: "gemini-2.0-flash"},
	}}

	generators, err := ProvideGenerators(cfg, newTestLogger())
	require.NoError(t, err)
	require.Equal(t, []string{"ollama", "openai"}, generators.Names())
}

func TestProvideGeneratorsEmpty(t *testing.T) {
	generators, err := ProvideGenerators(&config.Config{}, newTestLogger())
	require.NoError(t, err)
	require.Empty(t, generators)
}

func TestProvideSummaryConfig(t *testing.T) {
	cfg := &config.Config{Summary: config.SummaryConfig{
		MaxTokensPerChunk:  500,
		EncodingModel:      "cl100k_base",
		ChunkFailurePolicy: "best-effort",
		DefaultEngine:      "ollama",
		DefaultChoices:     config.ChoicesConfig{Language: "de", Style: "text"},
	}}

	got := ProvideSummaryConfig(cfg)
	require.Equal(t, 500, got.MaxTokensPerChunk)
	require.Equal(t, summarizer.PolicyBestEffort, got.ChunkFailurePolicy)
	require.Equal(t, "de", got.DefaultChoices.Language)
	require.Equal(t, summarizer.StyleText, got.DefaultChoices.Style)
}

func TestProvideTokenCounter(t *testing.T) {
	counter, err := ProvideTokenCounter(&config.Config{Summary: config.SummaryConfig{EncodingModel: "gpt-3.5-turbo"}})
	require.NoError(t, err)
	require.NotNil(t, counter)

	_, err = ProvideTokenCounter(&config.Config{Summary: config.SummaryConfig{EncodingModel: "no-such-model"}})
	require.ErrorIs(t, err, summarizer.ErrUnsupportedEncoding)
	require.ErrorContains(t, err, "summary.encodingModel")
}

func TestProvideTemplateWatcherDisabled(t *testing.T) {
	require.Nil(t, ProvideTemplateWatcher(&config.Config{}, nil, newTestLogger()))
}
