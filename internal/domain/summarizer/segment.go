package summarizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Segmenter splits transcripts into token bounded chunks.
type Segmenter struct {
	counter TokenCounter
}

// NewSegmenter builds a segmenter on top of a token counter.
func NewSegmenter(counter TokenCounter) *Segmenter {
	return &Segmenter{counter: counter}
}

// Segment greedily packs sentences into chunks of at most maxTokens tokens.
// A sentence that alone exceeds maxTokens becomes its own, oversized chunk.
func (s *Segmenter) Segment(text string, maxTokens int, encodingModel string) ([]Chunk, error) {
	if maxTokens <= 0 {
		return nil, configError(fmt.Errorf("max tokens per chunk must be positive, got %d", maxTokens))
	}
	units := splitSentences(text)
	if len(units) == 0 {
		return []Chunk{}, nil
	}

	var (
		chunks    []Chunk
		buf       string
		bufTokens int
	)
	flush := func() {
		if buf == "" {
			return
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Text: buf, TokenCount: bufTokens})
		buf, bufTokens = "", 0
	}

	for _, unit := range units {
		unitTokens, err := s.count(unit, encodingModel)
		if err != nil {
			return nil, err
		}
		if unitTokens > maxTokens {
			flush()
			chunks = append(chunks, Chunk{Index: len(chunks), Text: unit, TokenCount: unitTokens, Oversized: true})
			continue
		}
		if buf == "" {
			buf, bufTokens = unit, unitTokens
			continue
		}
		candidate := buf + " " + unit
		candidateTokens, err := s.count(candidate, encodingModel)
		if err != nil {
			return nil, err
		}
		if candidateTokens <= maxTokens {
			buf, bufTokens = candidate, candidateTokens
			continue
		}
		flush()
		buf, bufTokens = unit, unitTokens
	}
	flush()
	return chunks, nil
}

// CountTokens exposes the underlying counter for cost estimates.
func (s *Segmenter) CountTokens(text, encodingModel string) (int, error) {
	return s.count(text, encodingModel)
}

func (s *Segmenter) count(text, encodingModel string) (int, error) {
	n, err := s.counter.Count(text, encodingModel)
	if err != nil {
		err = fmt.Errorf("count tokens with %q: %w", encodingModel, err)
		if errors.Is(err, ErrUnsupportedEncoding) {
			return 0, configError(err)
		}
		return 0, &OrchestrationError{Kind: KindTokenizer, ChunkIndex: -1, Err: err}
	}
	return n, nil
}

// splitSentences cuts text after every period followed by whitespace. The
// period stays with its sentence and surrounding whitespace is trimmed.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var (
		units []string
		start int
	)
	for i, r := range text {
		if r != '.' {
			continue
		}
		next, _ := utf8.DecodeRuneInString(text[i+1:])
		if !unicode.IsSpace(next) {
			continue
		}
		if unit := strings.TrimSpace(text[start : i+1]); unit != "" {
			units = append(units, unit)
		}
		start = i + 1
	}
	if unit := strings.TrimSpace(text[start:]); unit != "" {
		units = append(units, unit)
	}
	return units
}
