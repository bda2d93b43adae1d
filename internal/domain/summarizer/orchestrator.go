package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yanqian/yt-summarizer/pkg/metrics"
)

// Orchestrator folds chunks into a running summary, one generation call per
// chunk, strictly in order.
type Orchestrator struct {
	prompts    PromptBuilder
	policy     FailurePolicy
	engine     string
	recorder   metrics.Recorder
	logger     *slog.Logger
	onProgress func(ChunkProgress)
	now        func() time.Time
}

// OrchestratorOption customises an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithFailurePolicy selects abort or best-effort handling of failed chunks.
func WithFailurePolicy(policy FailurePolicy) OrchestratorOption {
	return func(o *Orchestrator) { o.policy = policy }
}

// WithProgress registers a callback invoked after every chunk.
func WithProgress(fn func(ChunkProgress)) OrchestratorOption {
	return func(o *Orchestrator) { o.onProgress = fn }
}

// WithRecorder reports per-call metrics labelled with engine.
func WithRecorder(engine string, recorder metrics.Recorder) OrchestratorOption {
	return func(o *Orchestrator) {
		o.engine = engine
		o.recorder = recorder
	}
}

// NewOrchestrator builds an orchestrator over an immutable prompt builder.
func NewOrchestrator(prompts PromptBuilder, logger *slog.Logger, opts ...OrchestratorOption) (*Orchestrator, error) {
	o := &Orchestrator{
		prompts:  prompts,
		policy:   PolicyAbort,
		recorder: metrics.Nop{},
		logger:   logger.With("component", "summarizer.orchestrator"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if !o.policy.Valid() {
		return nil, configError(fmt.Errorf("unknown chunk failure policy %q", o.policy))
	}
	return o, nil
}

// Run summarizes chunks in order. Failures are *OrchestrationError values that
// carry the usage collected so far.
func (o *Orchestrator) Run(ctx context.Context, chunks []Chunk, choices UserChoices, client GenerationClient) (FinalSummary, error) {
	if len(chunks) == 0 {
		return FinalSummary{}, &OrchestrationError{Kind: KindEmptyInput, ChunkIndex: -1}
	}

	acc := newUsageAccumulator()
	var (
		running   string
		hasResult bool
		lastErr   error
		lastIndex = -1
	)

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			o.logger.Info("summarization cancelled", "chunk", i, "total", len(chunks))
			return FinalSummary{}, &OrchestrationError{Kind: KindCancelled, ChunkIndex: i, Partial: acc.summary(running), Err: err}
		}

		var prompt string
		if !hasResult {
			prompt = o.prompts.InitialPart(chunk.Text, i, choices)
		} else {
			prompt = o.prompts.Update(chunk.Text, running, i, choices)
		}

		res, err := o.generate(ctx, client, prompt)
		acc.chunks++
		if err != nil {
			if cancelled(ctx, err) {
				o.logger.Info("summarization cancelled during generation", "chunk", i, "total", len(chunks))
				return FinalSummary{}, &OrchestrationError{Kind: KindCancelled, ChunkIndex: i, Partial: acc.summary(running), Err: err}
			}
			o.logger.Error("chunk generation failed", "chunk", i, "total", len(chunks), "policy", o.policy, "error", err)
			if o.policy == PolicyAbort {
				return FinalSummary{}, &OrchestrationError{Kind: KindBackendFailure, ChunkIndex: i, Partial: acc.summary(running), Err: err}
			}
			acc.skip(i)
			lastErr, lastIndex = err, i
			o.progress(i, len(chunks), true)
			continue
		}

		acc.add(res)
		running = res.Text
		hasResult = true
		o.logger.Debug("chunk folded", "chunk", i, "total", len(chunks), "tokens", chunk.TokenCount, "summary_len", len(running))
		o.progress(i, len(chunks), false)
	}

	if !hasResult {
		return FinalSummary{}, &OrchestrationError{Kind: KindBackendFailure, ChunkIndex: lastIndex, Partial: acc.summary(""), Err: lastErr}
	}
	return acc.summary(running), nil
}

func (o *Orchestrator) generate(ctx context.Context, client GenerationClient, prompt string) (GenerationResult, error) {
	start := o.now()
	res, err := client.Generate(ctx, prompt)
	elapsed := o.now().Sub(start)
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.recorder.ObserveGeneration(o.engine, status, elapsed, res.TokensUsed)
	if err != nil {
		return GenerationResult{}, err
	}
	if res.ElapsedSeconds <= 0 {
		res.ElapsedSeconds = elapsed.Seconds()
	}
	return res, nil
}

// cancelled reports whether a generation error stems from the caller giving up
// rather than from the backend.
func cancelled(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled)
}

func (o *Orchestrator) progress(index, total int, skipped bool) {
	if o.onProgress != nil {
		o.onProgress(ChunkProgress{Index: index, Total: total, Skipped: skipped})
	}
}
