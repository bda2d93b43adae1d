package summarizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/yanqian/yt-summarizer/pkg/metrics"
)

var (
	errUnknownModel = fmt.Errorf("model \"unknown\": %w", ErrUnsupportedEncoding)
	errRanksOffline = errors.New("bpe ranks unavailable")
)

// wordCounter counts whitespace separated words; "unknown" is rejected as an
// unsupported model and "offline" fails like an encoding that cannot load.
type wordCounter struct{}

func (wordCounter) Count(text, encodingModel string) (int, error) {
	switch encodingModel {
	case "unknown":
		return 0, errUnknownModel
	case "offline":
		return 0, errRanksOffline
	}
	return len(strings.Fields(text)), nil
}

type scriptedClient struct {
	mu      sync.Mutex
	prompts []string
	replies []scriptedReply
}

type scriptedReply struct {
	text    string
	err     error
	tokens  metrics.TokenUsage
	elapsed float64
	hook    func()
}

func (c *scriptedClient) Generate(_ context.Context, prompt string) (GenerationResult, error) {
	c.mu.Lock()
	idx := len(c.prompts)
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()

	if idx >= len(c.replies) {
		return GenerationResult{}, errors.New("unexpected generation call")
	}
	reply := c.replies[idx]
	if reply.hook != nil {
		reply.hook()
	}
	if reply.err != nil {
		return GenerationResult{}, reply.err
	}
	return GenerationResult{Text: reply.text, TokensUsed: reply.tokens, ElapsedSeconds: reply.elapsed}, nil
}

func echoClient(prefix string) GenerationClient {
	return GenerationFunc(func(_ context.Context, prompt string) (GenerationResult, error) {
		return GenerationResult{Text: prefix + prompt}, nil
	})
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testChoices() UserChoices {
	return UserChoices{
		Language:    "en",
		DetailLevel: DetailMedium,
		SummaryType: TypeFull,
		Style:       StyleMixed,
		AddEmojis:   No,
		AddTables:   No,
	}
}

func chunksOf(texts ...string) []Chunk {
	out := make([]Chunk, 0, len(texts))
	for i, text := range texts {
		out = append(out, Chunk{Index: i, Text: text, TokenCount: len(strings.Fields(text))})
	}
	return out
}
