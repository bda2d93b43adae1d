package summarizer

import "github.com/yanqian/yt-summarizer/pkg/metrics"

// usageAccumulator sums usage and latency over the calls of one run.
type usageAccumulator struct {
	tokens  metrics.TokenUsage
	elapsed float64
	chunks  int
	skipped []int
}

func newUsageAccumulator() *usageAccumulator {
	return &usageAccumulator{tokens: metrics.TokenUsage{}}
}

func (a *usageAccumulator) add(res GenerationResult) {
	a.tokens.Add(res.TokensUsed)
	if res.ElapsedSeconds > 0 {
		a.elapsed += res.ElapsedSeconds
	}
}

func (a *usageAccumulator) skip(index int) {
	a.skipped = append(a.skipped, index)
}

func (a *usageAccumulator) summary(text string) FinalSummary {
	var skipped []int
	if len(a.skipped) > 0 {
		skipped = append(skipped, a.skipped...)
	}
	return FinalSummary{
		Text:           text,
		TokensUsed:     a.tokens.Clone(),
		ElapsedSeconds: a.elapsed,
		Chunks:         a.chunks,
		SkippedChunks:  skipped,
	}
}
