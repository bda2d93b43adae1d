package promptfile

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingReloader struct {
	calls atomic.Int32
}

func (r *countingReloader) ReloadTemplate() error {
	r.calls.Add(1)
	return nil
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.md")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o600))

	reloader := &countingReloader{}
	w, err := New(path, reloader, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.md"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o600))

	require.Eventually(t, func() bool { return reloader.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
