package transcript

import (
	"context"
	"log/slog"
	"time"

	"github.com/yanqian/yt-summarizer/internal/domain/summarizer"
)

// Store keeps fetched transcripts keyed by video id.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Cached wraps a provider with a transcript store. Store failures are logged
// and never fail the fetch.
type Cached struct {
	next   summarizer.TranscriptProvider
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached decorates next with store.
func NewCached(next summarizer.TranscriptProvider, store Store, ttl time.Duration, logger *slog.Logger) *Cached {
	return &Cached{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger.With("component", "transcript.cache"),
	}
}

func (c *Cached) Fetch(ctx context.Context, source string) (string, error) {
	key, err := VideoID(source)
	if err != nil {
		return "", err
	}
	if text, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn("transcript cache get failed", "video_id", key, "error", err)
	} else if ok {
		c.logger.Debug("transcript cache hit", "video_id", key)
		return text, nil
	}

	text, err := c.next.Fetch(ctx, source)
	if err != nil {
		return "", err
	}
	if err := c.store.Set(ctx, key, text, c.ttl); err != nil {
		c.logger.Warn("transcript cache set failed", "video_id", key, "error", err)
	}
	return text, nil
}

var _ summarizer.TranscriptProvider = (*Cached)(nil)
