package transcript

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/yt-summarizer/internal/infra/transcript/cache"
)

type countingProvider struct {
	calls int
	text  string
	err   error
}

func (p *countingProvider) Fetch(context.Context, string) (string, error) {
	p.calls++
	return p.text, p.err
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (failingStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}

func TestCachedServesSecondFetchFromStore(t *testing.T) {
	next := &countingProvider{text: "hello world"}
	cached := NewCached(next, cache.NewMemoryStore(), time.Hour, newTestLogger())

	for _, source := range []string{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"} {
		text, err := cached.Fetch(context.Background(), source)
		require.NoError(t, err)
		require.Equal(t, "hello world", text)
	}
	require.Equal(t, 1, next.calls)
}

func TestCachedIgnoresStoreFailures(t *testing.T) {
	next := &countingProvider{text: "hello"}
	cached := NewCached(next, failingStore{}, time.Hour, newTestLogger())

	text, err := cached.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	require.Equal(t, "hello", text)
}

func TestCachedDoesNotStoreErrors(t *testing.T) {
	store := cache.NewMemoryStore()
	next := &countingProvider{err: errors.New("boom")}
	cached := NewCached(next, store, time.Hour, newTestLogger())

	_, err := cached.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.Error(t, err)
	_, ok, err := store.Get(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	require.False(t, ok)
}
