package summarizer

import (
	"context"
	"errors"
)

// TokenCounter maps text to a token count for an encoding model.
// Implementations must be safe for concurrent use and wrap
// ErrUnsupportedEncoding when the model name is unknown.
type TokenCounter interface {
	Count(text, encodingModel string) (int, error)
}

// GenerationClient sends one prompt to a text-generation backend and returns
// the complete text. Streaming backends must drain the stream before returning.
type GenerationClient interface {
	Generate(ctx context.Context, prompt string) (GenerationResult, error)
}

// GenerationFunc adapts a function to GenerationClient.
type GenerationFunc func(ctx context.Context, prompt string) (GenerationResult, error)

// Generate calls f.
func (f GenerationFunc) Generate(ctx context.Context, prompt string) (GenerationResult, error) {
	return f(ctx, prompt)
}

// TranscriptProvider retrieves raw transcript text for a source identifier.
type TranscriptProvider interface {
	Fetch(ctx context.Context, source string) (string, error)
}

var (
	// ErrUnsupportedEncoding marks an encoding model no tokenizer knows.
	ErrUnsupportedEncoding = errors.New("unsupported encoding model")
	// ErrTranscriptNotFound is wrapped by providers when no transcript exists.
	ErrTranscriptNotFound = errors.New("transcript not found")
	// ErrUpstream is wrapped by providers when the transcript source failed.
	ErrUpstream = errors.New("transcript upstream failure")
)
