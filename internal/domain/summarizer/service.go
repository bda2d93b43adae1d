package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"

	apperrors "github.com/yanqian/yt-summarizer/pkg/errors"
	"github.com/yanqian/yt-summarizer/pkg/metrics"
)

// Service exposes summarization capabilities.
type Service interface {
	// Summarize returns the usage and timing collected so far alongside a
	// failed run's error.
	Summarize(ctx context.Context, req Request) (Response, error)
	Estimate(ctx context.Context, text string) (Estimate, error)
	ReloadTemplate() error
}

type service struct {
	cfg         Config
	segmenter   *Segmenter
	transcripts TranscriptProvider
	generators  Generators
	templates   *TemplateStore
	recorder    metrics.Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// NewService is a wire provider for the summarizer domain.
func NewService(
	cfg Config,
	counter TokenCounter,
	transcripts TranscriptProvider,
	generators Generators,
	templates *TemplateStore,
	recorder metrics.Recorder,
	logger *slog.Logger,
) Service {
	return &service{
		cfg:         cfg,
		segmenter:   NewSegmenter(counter),
		transcripts: transcripts,
		generators:  generators,
		templates:   templates,
		recorder:    recorder,
		logger:      logger.With("component", "summarizer.service"),
		now:         time.Now,
	}
}

func (s *service) Summarize(ctx context.Context, req Request) (Response, error) {
	start := s.now()
	resp, err := s.summarize(ctx, req)
	elapsed := s.now().Sub(start)

	status := "ok"
	if err != nil {
		status = apperrors.CodeOf(err)
	}
	s.recorder.ObserveRun(status, resp.Chunks, elapsed)
	resp.DurationMs = elapsed.Milliseconds()
	if err != nil {
		s.logger.Warn("summarization failed", "engine", resp.Engine, "code", status, "chunks", resp.Chunks, "duration_ms", resp.DurationMs, "error", err)
		return resp, err
	}

	s.logger.Info("summarization completed",
		"engine", resp.Engine,
		"chunks", resp.Chunks,
		"skipped", len(resp.SkippedChunks),
		"elapsed_seconds", resp.ElapsedSeconds,
		"duration_ms", resp.DurationMs,
	)
	return resp, nil
}

func (s *service) summarize(ctx context.Context, req Request) (Response, error) {
	engine, client, ok := s.generators.Resolve(req.Engine, s.cfg.DefaultEngine)
	if !ok {
		return Response{}, apperrors.Wrap(apperrors.CodeConfig, "no generation engine configured", nil)
	}
	resp := Response{Engine: engine}

	text, err := s.transcriptText(ctx, req)
	if err != nil {
		return resp, err
	}
	choices := req.Choices.WithDefaults(s.cfg.DefaultChoices)
	prompts := NewPromptBuilder(s.templates.Current())

	if req.SingleShot {
		if text == "" {
			return resp, apperrors.Wrap(apperrors.CodeNothingToSummarize, "transcript has no content", nil)
		}
		summary, err := s.singleShot(ctx, engine, client, prompts, text, choices)
		if err != nil {
			return resp, err
		}
		resp.FinalSummary = summary
		return resp, nil
	}

	chunks, err := s.segmenter.Segment(text, s.cfg.MaxTokensPerChunk, s.cfg.EncodingModel)
	if err != nil {
		return resp, translate(err)
	}
	s.logger.Info("transcript segmented", "engine", engine, "chunks", len(chunks), "max_tokens", s.cfg.MaxTokensPerChunk)

	opts := []OrchestratorOption{
		WithFailurePolicy(s.cfg.ChunkFailurePolicy),
		WithRecorder(engine, s.recorder),
	}
	if req.Progress != nil {
		opts = append(opts, WithProgress(req.Progress))
	}
	orchestrator, err := NewOrchestrator(prompts, s.logger, opts...)
	if err != nil {
		return resp, translate(err)
	}
	summary, err := orchestrator.Run(ctx, chunks, choices, client)
	if err != nil {
		var orchErr *OrchestrationError
		if errors.As(err, &orchErr) {
			resp.FinalSummary = orchErr.Partial
		}
		return resp, translate(err)
	}
	resp.FinalSummary = summary
	return resp, nil
}

func (s *service) singleShot(ctx context.Context, engine string, client GenerationClient, prompts PromptBuilder, text string, choices UserChoices) (FinalSummary, error) {
	start := s.now()
	res, err := client.Generate(ctx, prompts.SingleShot(text, choices))
	elapsed := s.now().Sub(start)
	if err != nil {
		s.recorder.ObserveGeneration(engine, "error", elapsed, nil)
		return FinalSummary{}, apperrors.Wrap(apperrors.CodeLLM, "generation failed", err)
	}
	s.recorder.ObserveGeneration(engine, "ok", elapsed, res.TokensUsed)
	if res.ElapsedSeconds <= 0 {
		res.ElapsedSeconds = elapsed.Seconds()
	}
	tokens := metrics.TokenUsage{}
	tokens.Add(res.TokensUsed)
	return FinalSummary{Text: res.Text, TokensUsed: tokens, ElapsedSeconds: res.ElapsedSeconds, Chunks: 1}, nil
}

func (s *service) transcriptText(ctx context.Context, req Request) (string, error) {
	source := strings.TrimSpace(req.Source)
	if req.Text != "" {
		return CleanTranscript(req.Text), nil
	}
	if source == "" {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "either source or text is required", nil)
	}
	raw, err := s.transcripts.Fetch(ctx, source)
	if err != nil {
		switch {
		case errors.Is(err, ErrTranscriptNotFound):
			return "", apperrors.Wrap(apperrors.CodeTranscriptNotFound, "transcript not available", err)
		case errors.Is(err, ErrUpstream):
			return "", apperrors.Wrap(apperrors.CodeUpstream, "transcript source failed", err)
		default:
			return "", apperrors.Wrap(apperrors.CodeInvalidInput, "transcript source rejected", err)
		}
	}
	s.logger.Debug("transcript fetched", "source", source, "bytes", len(raw))
	return CleanTranscript(raw), nil
}

func (s *service) Estimate(_ context.Context, text string) (Estimate, error) {
	text = CleanTranscript(text)
	est := Estimate{EncodingModel: s.cfg.EncodingModel, MaxTokensPerChunk: s.cfg.MaxTokensPerChunk}
	if text == "" {
		return est, nil
	}
	tokens, err := s.segmenter.CountTokens(text, s.cfg.EncodingModel)
	if err != nil {
		return est, translate(err)
	}
	chunks, err := s.segmenter.Segment(text, s.cfg.MaxTokensPerChunk, s.cfg.EncodingModel)
	if err != nil {
		return est, translate(err)
	}
	est.Tokens = tokens
	est.Chunks = len(chunks)
	return est, nil
}

func (s *service) ReloadTemplate() error {
	if err := s.templates.Reload(); err != nil {
		return apperrors.Wrap(apperrors.CodeConfig, "prompt template reload failed", err)
	}
	return nil
}

func translate(err error) error {
	var orchErr *OrchestrationError
	if !errors.As(err, &orchErr) {
		return apperrors.Wrap(apperrors.CodeLLM, "summarization failed", err)
	}
	switch orchErr.Kind {
	case KindEmptyInput:
		return apperrors.Wrap(apperrors.CodeNothingToSummarize, "transcript has no content", err)
	case KindConfiguration:
		return apperrors.Wrap(apperrors.CodeConfig, "summarizer misconfigured", err)
	case KindTokenizer:
		return apperrors.Wrap(apperrors.CodeTokenizer, "token counting failed", err)
	case KindCancelled:
		return apperrors.Wrap(apperrors.CodeCancelled, "summarization cancelled", err)
	default:
		return apperrors.Wrap(apperrors.CodeLLM, fmt.Sprintf("generation failed at chunk %d", orchErr.ChunkIndex), err)
	}
}

var bracketedCue = regexp.MustCompile(`\[[^\]]*\]`)

// CleanTranscript drops bracketed cues such as [Music], strips control
// characters and collapses whitespace.
func CleanTranscript(raw string) string {
	raw = bracketedCue.ReplaceAllString(raw, " ")
	raw = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	return strings.Join(strings.Fields(raw), " ")
}
