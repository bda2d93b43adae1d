package tokenizer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/yt-summarizer/internal/domain/summarizer"
)

func TestCountRejectsUnknownModel(t *testing.T) {
	counter := NewTiktoken()

	_, err := counter.Count("hello", "definitely-not-a-model")
	require.ErrorIs(t, err, summarizer.ErrUnsupportedEncoding)
	require.ErrorContains(t, err, "unsupported encoding model")

	_, err = counter.Count("hello", "  ")
	require.ErrorIs(t, err, summarizer.ErrUnsupportedEncoding)
	require.ErrorIs(t, counter.Validate(""), summarizer.ErrUnsupportedEncoding)
}

func TestEncodingName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "cl100k_base", want: "cl100k_base"},
		{in: "o200k_base", want: "o200k_base"},
		{in: "gpt-3.5-turbo", want: "cl100k_base"},
		{in: "gpt-4", want: "cl100k_base"},
		{in: "gpt-3.5-turbo-0125", want: "cl100k_base"},
	}
	for _, tt := range tests {
		got, err := encodingName(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}

	_, err := encodingName("llama3")
	require.ErrorIs(t, err, summarizer.ErrUnsupportedEncoding)
}

func TestCountWithBundledRanks(t *testing.T) {
	counter := NewTiktoken()
	require.NoError(t, counter.Validate("gpt-3.5-turbo"))

	n, err := counter.Count("Phrase one. Phrase two. Phrase three.", "gpt-3.5-turbo")
	require.NoError(t, err)
	require.Positive(t, n)

	byEncoding, err := counter.Count("Phrase one. Phrase two. Phrase three.", "cl100k_base")
	require.NoError(t, err)
	require.Equal(t, n, byEncoding)

	empty, err := counter.Count("", "cl100k_base")
	require.NoError(t, err)
	require.Zero(t, empty)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := counter.Count("Phrase one. Phrase two. Phrase three.", "gpt-3.5-turbo")
			if err != nil || got != n {
				t.Errorf("concurrent count = %d, %v; want %d", got, err, n)
			}
		}()
	}
	wg.Wait()
}
