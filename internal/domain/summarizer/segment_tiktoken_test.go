package summarizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/yt-summarizer/internal/domain/summarizer"
	"github.com/yanqian/yt-summarizer/internal/infra/tokenizer"
)

func TestSegmentWithTiktokenRespectsBound(t *testing.T) {
	counter := tokenizer.NewTiktoken()
	seg := summarizer.NewSegmenter(counter)

	var sb strings.Builder
	phrases := []string{
		"Welcome back to the channel.",
		"Today we look at tokenization, BPE merges and why counts are not additive.",
		"It's 3.14 degrees outside, isn't it?",
		"Numbers like 1,234,567 and URLs like example.com/path split oddly.",
		"Émojis 🎉 and accents café naïve cost extra tokens.",
		"Short.",
	}
	for i := 0; i < 30; i++ {
		sb.WriteString(phrases[i%len(phrases)])
		sb.WriteString(" ")
	}
	sb.WriteString(strings.Repeat("supercalifragilistic ", 20) + "end.")
	text := sb.String()

	for _, max := range []int{8, 16, 64} {
		chunks, err := seg.Segment(text, max, "gpt-3.5-turbo")
		require.NoError(t, err)
		require.NotEmpty(t, chunks)

		texts := make([]string, 0, len(chunks))
		for i, chunk := range chunks {
			require.Equal(t, i, chunk.Index)
			count, err := counter.Count(chunk.Text, "gpt-3.5-turbo")
			require.NoError(t, err)
			require.Equal(t, count, chunk.TokenCount)
			if chunk.Oversized {
				require.Greater(t, chunk.TokenCount, max)
			} else {
				require.LessOrEqual(t, chunk.TokenCount, max)
			}
			texts = append(texts, chunk.Text)
		}
		require.Equal(t, strings.Fields(text), strings.Fields(strings.Join(texts, " ")))

		again, err := seg.Segment(text, max, "gpt-3.5-turbo")
		require.NoError(t, err)
		require.Equal(t, chunks, again)
	}
}

func TestSegmentWithTiktokenUnknownModel(t *testing.T) {
	seg := summarizer.NewSegmenter(tokenizer.NewTiktoken())

	_, err := seg.Segment("Some text.", 10, "not-a-model")
	require.ErrorIs(t, err, summarizer.ErrUnsupportedEncoding)

	var orchErr *summarizer.OrchestrationError
	require.ErrorAs(t, err, &orchErr)
	require.Equal(t, summarizer.KindConfiguration, orchErr.Kind)
}
