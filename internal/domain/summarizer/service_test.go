package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/yt-summarizer/pkg/errors"
	"github.com/yanqian/yt-summarizer/pkg/metrics"
)

type stubProvider struct {
	text    string
	err     error
	sources []string
}

func (p *stubProvider) Fetch(_ context.Context, source string) (string, error) {
	p.sources = append(p.sources, source)
	return p.text, p.err
}

func testServiceConfig() Config {
	return Config{
		MaxTokensPerChunk:  4,
		EncodingModel:      "gpt-3.5-turbo",
		ChunkFailurePolicy: PolicyAbort,
		DefaultEngine:      "openai",
		DefaultChoices:     testChoices(),
	}
}

func newServiceUnderTest(cfg Config, provider TranscriptProvider, generators Generators) *service {
	return NewService(cfg, wordCounter{}, provider, generators, NewStaticTemplate("BASE"), metrics.Nop{}, newTestLogger()).(*service)
}

func TestSummarizeFetchesAndFolds(t *testing.T) {
	provider := &stubProvider{text: "[Music] a b. c d.\n e f."}
	client := &scriptedClient{replies: []scriptedReply{
		{text: "first", tokens: metrics.TokenUsage{metrics.TotalTokens: 5}},
		{text: "second", tokens: metrics.TokenUsage{metrics.TotalTokens: 6}},
	}}
	svc := newServiceUnderTest(testServiceConfig(), provider, Generators{"openai": client})

	resp, err := svc.Summarize(context.Background(), Request{Source: "https://youtu.be/abcdefghijk"})
	require.NoError(t, err)
	require.Equal(t, "second", resp.Text)
	require.Equal(t, "openai", resp.Engine)
	require.Equal(t, 2, resp.Chunks)
	require.Equal(t, metrics.TokenUsage{metrics.TotalTokens: 11}, resp.TokensUsed)
	require.Equal(t, []string{"https://youtu.be/abcdefghijk"}, provider.sources)
	require.NotContains(t, client.prompts[0], "[Music]")
}

func TestSummarizeReportsProgress(t *testing.T) {
	provider := &stubProvider{text: "a b. c d. e f."}
	svc := newServiceUnderTest(testServiceConfig(), provider, Generators{"openai": echoClient("s")})

	var seen []ChunkProgress
	_, err := svc.Summarize(context.Background(), Request{
		Source:   "abcdefghijk",
		Progress: func(p ChunkProgress) { seen = append(seen, p) },
	})
	require.NoError(t, err)
	require.Len(t, seen, 2)
	require.Equal(t, ChunkProgress{Index: 1, Total: 2}, seen[1])
}

func TestSummarizeUsesRequestedEngineAndDefaults(t *testing.T) {
	openai := &scriptedClient{}
	ollama := &scriptedClient{replies: []scriptedReply{{text: "local"}}}
	svc := newServiceUnderTest(testServiceConfig(), &stubProvider{}, Generators{"openai": openai, "ollama": ollama})

	resp, err := svc.Summarize(context.Background(), Request{
		Text:    "short text.",
		Engine:  "Ollama",
		Choices: UserChoices{Language: "fr"},
	})
	require.NoError(t, err)
	require.Equal(t, "ollama", resp.Engine)
	require.Equal(t, "local", resp.Text)
	require.Empty(t, openai.prompts)
	require.Contains(t, ollama.prompts[0], "- Language: fr")
	require.Contains(t, ollama.prompts[0], "Between 800 and 1000 words.")
}

func TestSummarizeUnknownEngineFallsBack(t *testing.T) {
	openai := &scriptedClient{replies: []scriptedReply{{text: "ok"}}}
	svc := newServiceUnderTest(testServiceConfig(), &stubProvider{}, Generators{"openai": openai})

	resp, err := svc.Summarize(context.Background(), Request{Text: "x.", Engine: "gemini"})
	require.NoError(t, err)
	require.Equal(t, "openai", resp.Engine)
}

func TestSummarizeSingleShot(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{{text: "whole", tokens: metrics.TokenUsage{metrics.TotalTokens: 9}}}}
	svc := newServiceUnderTest(testServiceConfig(), &stubProvider{}, Generators{"openai": client})

	resp, err := svc.Summarize(context.Background(), Request{Text: "a b. c d. e f.", SingleShot: true})
	require.NoError(t, err)
	require.Equal(t, "whole", resp.Text)
	require.Equal(t, 1, resp.Chunks)
	require.Len(t, client.prompts, 1)
	require.Contains(t, client.prompts[0], "Transcript:\na b. c d. e f.")
}

func TestSummarizeErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubProvider
		gens     Generators
		req      Request
		wantCode string
	}{
		{
			name:     "missing input",
			provider: &stubProvider{},
			gens:     Generators{"openai": echoClient("")},
			req:      Request{},
			wantCode: apperrors.CodeInvalidInput,
		},
		{
			name:     "whitespace transcript",
			provider: &stubProvider{text: "  [Music]  "},
			gens:     Generators{"openai": echoClient("")},
			req:      Request{Source: "abcdefghijk"},
			wantCode: apperrors.CodeNothingToSummarize,
		},
		{
			name:     "transcript not found",
			provider: &stubProvider{err: fmt.Errorf("video x: %w", ErrTranscriptNotFound)},
			gens:     Generators{"openai": echoClient("")},
			req:      Request{Source: "abcdefghijk"},
			wantCode: apperrors.CodeTranscriptNotFound,
		},
		{
			name:     "upstream failure",
			provider: &stubProvider{err: fmt.Errorf("status 503: %w", ErrUpstream)},
			gens:     Generators{"openai": echoClient("")},
			req:      Request{Source: "abcdefghijk"},
			wantCode: apperrors.CodeUpstream,
		},
		{
			name:     "backend failure",
			provider: &stubProvider{},
			gens:     Generators{"openai": &scriptedClient{replies: []scriptedReply{{err: errors.New("500")}}}},
			req:      Request{Text: "a."},
			wantCode: apperrors.CodeLLM,
		},
		{
			name:     "no engines",
			provider: &stubProvider{},
			gens:     Generators{},
			req:      Request{Text: "a."},
			wantCode: apperrors.CodeConfig,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newServiceUnderTest(testServiceConfig(), tt.provider, tt.gens)
			_, err := svc.Summarize(context.Background(), tt.req)
			require.Error(t, err)
			require.Equal(t, tt.wantCode, apperrors.CodeOf(err))
		})
	}
}

func TestSummarizeAbortReturnsPartialUsage(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		{text: "first", tokens: metrics.TokenUsage{metrics.TotalTokens: 7}, elapsed: 1.25},
		{err: errors.New("backend down")},
	}}
	svc := newServiceUnderTest(testServiceConfig(), &stubProvider{}, Generators{"openai": client})

	resp, err := svc.Summarize(context.Background(), Request{Text: "a b c. d e f."})
	require.True(t, apperrors.IsCode(err, apperrors.CodeLLM))

	var orchErr *OrchestrationError
	require.ErrorAs(t, err, &orchErr)
	require.Equal(t, 1, orchErr.ChunkIndex)

	require.Equal(t, "openai", resp.Engine)
	require.Equal(t, metrics.TokenUsage{metrics.TotalTokens: 7}, resp.TokensUsed)
	require.InDelta(t, 1.25, resp.ElapsedSeconds, 1e-9)
	require.Equal(t, 2, resp.Chunks)
}

func TestSummarizeCancelledDuringGeneration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := &scriptedClient{replies: []scriptedReply{
		{text: "first", tokens: metrics.TokenUsage{metrics.TotalTokens: 3}},
		{err: context.Canceled, hook: cancel},
	}}
	svc := newServiceUnderTest(testServiceConfig(), &stubProvider{}, Generators{"openai": client})

	resp, err := svc.Summarize(ctx, Request{Text: "a b c. d e f."})
	require.True(t, apperrors.IsCode(err, apperrors.CodeCancelled))
	require.Equal(t, metrics.TokenUsage{metrics.TotalTokens: 3}, resp.TokensUsed)
}

func TestSummarizeUnsupportedEncodingIsConfigError(t *testing.T) {
	cfg := testServiceConfig()
	cfg.EncodingModel = "unknown"
	svc := newServiceUnderTest(cfg, &stubProvider{}, Generators{"openai": echoClient("")})

	_, err := svc.Summarize(context.Background(), Request{Text: "a b."})
	require.True(t, apperrors.IsCode(err, apperrors.CodeConfig))
	require.ErrorIs(t, err, errUnknownModel)
}

func TestSummarizeTokenizerFailureIsNotConfigError(t *testing.T) {
	cfg := testServiceConfig()
	cfg.EncodingModel = "offline"
	svc := newServiceUnderTest(cfg, &stubProvider{}, Generators{"openai": echoClient("")})

	_, err := svc.Summarize(context.Background(), Request{Text: "a b."})
	require.True(t, apperrors.IsCode(err, apperrors.CodeTokenizer))
	require.ErrorIs(t, err, errRanksOffline)
}

func TestEstimate(t *testing.T) {
	svc := newServiceUnderTest(testServiceConfig(), &stubProvider{}, Generators{})

	est, err := svc.Estimate(context.Background(), "a b. c d. e f.")
	require.NoError(t, err)
	require.Equal(t, Estimate{Tokens: 6, Chunks: 2, EncodingModel: "gpt-3.5-turbo", MaxTokensPerChunk: 4}, est)

	empty, err := svc.Estimate(context.Background(), "   ")
	require.NoError(t, err)
	require.Zero(t, empty.Tokens)
	require.Zero(t, empty.Chunks)
}

func TestReloadTemplateStaticFails(t *testing.T) {
	svc := newServiceUnderTest(testServiceConfig(), &stubProvider{}, Generators{})
	err := svc.ReloadTemplate()
	require.True(t, apperrors.IsCode(err, apperrors.CodeConfig))
}

func TestCleanTranscript(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "[Music]\nHello   world\t[Applause] again", want: "Hello world again"},
		{in: "bell\x07 char", want: "bell char"},
		{in: "   ", want: ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, CleanTranscript(tt.in))
	}
}

func TestGeneratorsResolve(t *testing.T) {
	gens := Generators{"openai": echoClient(""), "ollama": echoClient(""), "gemini": nil}

	name, _, ok := gens.Resolve(" OLLAMA ", "openai")
	require.True(t, ok)
	require.Equal(t, "ollama", name)

	name, _, ok = gens.Resolve("gemini", "openai")
	require.True(t, ok)
	require.Equal(t, "openai", name)

	_, _, ok = gens.Resolve("", "missing")
	require.False(t, ok)
	require.Equal(t, []string{"ollama", "openai"}, gens.Names())
	require.True(t, strings.Contains(strings.Join(gens.Names(), ","), "openai"))
}
