package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/yanqian/yt-summarizer/internal/domain/summarizer"
)

var offlineRanks sync.Once

// Tiktoken counts tokens with OpenAI BPE encodings. The BPE ranks are bundled
// into the binary, so counting never touches the network. Encodings are
// loaded on first use and cached; the cached values are never mutated.
type Tiktoken struct {
	mu        sync.RWMutex
	encodings map[string]*tiktoken.Tiktoken
}

// NewTiktoken constructs an empty counter.
func NewTiktoken() *Tiktoken {
	offlineRanks.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
	return &Tiktoken{encodings: make(map[string]*tiktoken.Tiktoken)}
}

// Count returns the number of tokens in text. encodingModel is either a model
// name ("gpt-3.5-turbo") or an encoding name ("cl100k_base"). Unknown names
// wrap summarizer.ErrUnsupportedEncoding.
func (t *Tiktoken) Count(text, encodingModel string) (int, error) {
	enc, err := t.encoding(encodingModel)
	if err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// Validate resolves and loads the encoding for encodingModel.
func (t *Tiktoken) Validate(encodingModel string) error {
	_, err := t.encoding(encodingModel)
	return err
}

func (t *Tiktoken) encoding(name string) (*tiktoken.Tiktoken, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", summarizer.ErrUnsupportedEncoding)
	}

	t.mu.RLock()
	enc, ok := t.encodings[name]
	t.mu.RUnlock()
	if ok {
		return enc, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if enc, ok := t.encodings[name]; ok {
		return enc, nil
	}
	encName, err := encodingName(name)
	if err != nil {
		return nil, err
	}
	enc, err = tiktoken.GetEncoding(encName)
	if err != nil {
		return nil, fmt.Errorf("load %s ranks for %q: %w", encName, name, err)
	}
	t.encodings[name] = enc
	return enc, nil
}

// encodingName maps a model or encoding name to an encoding using tiktoken's
// own tables. The longest matching model prefix wins.
func encodingName(name string) (string, error) {
	if isEncodingName(name) {
		return name, nil
	}
	if enc, ok := tiktoken.MODEL_TO_ENCODING[name]; ok {
		return enc, nil
	}
	var match, enc string
	for prefix, candidate := range tiktoken.MODEL_PREFIX_TO_ENCODING {
		if strings.HasPrefix(name, prefix) && len(prefix) > len(match) {
			match, enc = prefix, candidate
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w %q", summarizer.ErrUnsupportedEncoding, name)
	}
	return enc, nil
}

func isEncodingName(name string) bool {
	switch name {
	case tiktoken.MODEL_O200K_BASE, tiktoken.MODEL_CL100K_BASE, tiktoken.MODEL_P50K_BASE,
		tiktoken.MODEL_P50K_EDIT, tiktoken.MODEL_R50K_BASE:
		return true
	}
	return false
}

var _ summarizer.TokenCounter = (*Tiktoken)(nil)
