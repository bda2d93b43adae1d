package summarizer

import (
	"github.com/yanqian/yt-summarizer/pkg/metrics"
)

// FailurePolicy decides what a run does when one generation call fails.
type FailurePolicy string

const (
	// PolicyAbort stops the run at the first failing chunk.
	PolicyAbort FailurePolicy = "abort"
	// PolicyBestEffort skips the failing chunk and keeps folding the rest.
	PolicyBestEffort FailurePolicy = "best-effort"
)

// Valid reports whether p is a known policy.
func (p FailurePolicy) Valid() bool {
	return p == PolicyAbort || p == PolicyBestEffort
}

// Config configures chunking and orchestration.
type Config struct {
	MaxTokensPerChunk  int
	EncodingModel      string
	ChunkFailurePolicy FailurePolicy
	DefaultEngine      string
	DefaultChoices     UserChoices
}

// Enumerated UserChoices values.
const (
	DetailShort    = "short"
	DetailMedium   = "medium"
	DetailDetailed = "detailed"

	TypeFull     = "full"
	TypeTools    = "tools"
	TypeInsights = "insights"

	StyleBullet = "bullet"
	StyleText   = "text"
	StyleMixed  = "mixed"

	Yes = "yes"
	No  = "no"
)

// UserChoices carries the formatting preferences of one request.
type UserChoices struct {
	Language             string `json:"language"`
	DetailLevel          string `json:"detailLevel"`
	SummaryType          string `json:"summaryType"`
	Style                string `json:"style"`
	AddEmojis            string `json:"addEmojis"`
	AddTables            string `json:"addTables"`
	SpecificInstructions string `json:"specificInstructions,omitempty"`
}

// WithDefaults fills empty fields from defaults.
func (c UserChoices) WithDefaults(defaults UserChoices) UserChoices {
	if c.Language == "" {
		c.Language = defaults.Language
	}
	if c.DetailLevel == "" {
		c.DetailLevel = defaults.DetailLevel
	}
	if c.SummaryType == "" {
		c.SummaryType = defaults.SummaryType
	}
	if c.Style == "" {
		c.Style = defaults.Style
	}
	if c.AddEmojis == "" {
		c.AddEmojis = defaults.AddEmojis
	}
	if c.AddTables == "" {
		c.AddTables = defaults.AddTables
	}
	return c
}

// Chunk is a token bounded, contiguous slice of a transcript.
type Chunk struct {
	Index      int
	Text       string
	TokenCount int
	// Oversized marks a single sentence that alone exceeds the ceiling.
	Oversized bool
}

// GenerationResult is what a backend returns for one prompt.
type GenerationResult struct {
	Text           string
	TokensUsed     metrics.TokenUsage
	ElapsedSeconds float64
}

// FinalSummary is the outcome of a completed run.
type FinalSummary struct {
	Text           string             `json:"summary"`
	TokensUsed     metrics.TokenUsage `json:"tokensUsed"`
	ElapsedSeconds float64            `json:"elapsedSeconds"`
	Chunks         int                `json:"chunks"`
	SkippedChunks  []int              `json:"skippedChunks,omitempty"`
}

// ChunkProgress is reported after each chunk of a run.
type ChunkProgress struct {
	Index   int
	Total   int
	Skipped bool
}

// Request represents the incoming summarization payload.
type Request struct {
	Source     string      `json:"source,omitempty"`
	Text       string      `json:"text,omitempty"`
	Engine     string      `json:"engine,omitempty"`
	SingleShot bool        `json:"singleShot,omitempty"`
	Choices    UserChoices `json:"choices"`

	// Progress, when set, is called after every chunk of a chunked run.
	Progress func(ChunkProgress) `json:"-"`
}

// Response is returned by the summarize endpoint.
type Response struct {
	FinalSummary
	Engine     string `json:"engine"`
	DurationMs int64  `json:"durationMs"`
}

// Estimate describes the chunking cost of a text.
type Estimate struct {
	Tokens            int    `json:"tokens"`
	Chunks            int    `json:"chunks"`
	EncodingModel     string `json:"encodingModel"`
	MaxTokensPerChunk int    `json:"maxTokensPerChunk"`
}
