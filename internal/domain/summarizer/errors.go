package summarizer

import (
	"fmt"
)

// ErrorKind classifies orchestration failures.
type ErrorKind string

const (
	// KindEmptyInput means there was nothing to summarize.
	KindEmptyInput ErrorKind = "empty_input"
	// KindBackendFailure means a generation call failed.
	KindBackendFailure ErrorKind = "backend_failure"
	// KindConfiguration covers unsupported encodings, bad ceilings and policies.
	KindConfiguration ErrorKind = "configuration"
	// KindTokenizer means the token counter failed for a known model.
	KindTokenizer ErrorKind = "tokenizer"
	// KindCancelled means the caller cancelled the run, either between chunks
	// or while a generation call was in flight.
	KindCancelled ErrorKind = "cancelled"
)

// OrchestrationError is returned by Orchestrator.Run and the segmenter.
type OrchestrationError struct {
	Kind ErrorKind
	// ChunkIndex is the failing or interrupted chunk, -1 when no chunk applies.
	ChunkIndex int
	// Partial holds usage and timing collected before the failure.
	Partial FinalSummary
	Err     error
}

func (e *OrchestrationError) Error() string {
	msg := string(e.Kind)
	switch e.Kind {
	case KindEmptyInput:
		msg = "nothing to summarize"
	case KindBackendFailure:
		msg = fmt.Sprintf("generation failed for chunk %d", e.ChunkIndex)
	case KindConfiguration:
		msg = "invalid configuration"
	case KindTokenizer:
		msg = "token counting failed"
	case KindCancelled:
		msg = "summarization cancelled"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *OrchestrationError) Unwrap() error {
	return e.Err
}

func configError(err error) error {
	return &OrchestrationError{Kind: KindConfiguration, ChunkIndex: -1, Err: err}
}
