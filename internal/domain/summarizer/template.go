package summarizer

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// FallbackTemplate is used when the template file cannot be read.
const FallbackTemplate = "You are an AI assistant that summarizes YouTube videos based on their transcripts."

// TemplateStore holds the base instruction template. The value is loaded once
// and only replaced by an explicit Reload; readers always see a whole value.
type TemplateStore struct {
	current atomic.Pointer[string]
	path    atomic.Pointer[string]
	mu      sync.Mutex
	logger  *slog.Logger
}

// NewTemplateStore loads the template at path. A missing or unreadable file
// degrades to FallbackTemplate with a warning.
func NewTemplateStore(path string, logger *slog.Logger) *TemplateStore {
	s := &TemplateStore{logger: logger.With("component", "summarizer.template")}
	s.path.Store(&path)

	text, err := readTemplate(path)
	if err != nil {
		s.logger.Warn("prompt template unavailable, using built-in template", "path", path, "error", err)
		text = FallbackTemplate
	} else {
		s.logger.Info("prompt template loaded", "path", path, "bytes", len(text))
	}
	s.current.Store(&text)
	return s
}

// NewStaticTemplate returns a store that always serves text.
func NewStaticTemplate(text string) *TemplateStore {
	s := &TemplateStore{logger: slog.New(slog.DiscardHandler)}
	empty := ""
	s.path.Store(&empty)
	s.current.Store(&text)
	return s
}

// Current returns the active template.
func (s *TemplateStore) Current() string {
	return *s.current.Load()
}

// Path returns the file the template was last loaded from.
func (s *TemplateStore) Path() string {
	return *s.path.Load()
}

// Reload re-reads the current path.
func (s *TemplateStore) Reload() error {
	return s.ReloadFrom(s.Path())
}

// ReloadFrom reads the template from path and swaps it in. On failure the
// previous template stays active.
func (s *TemplateStore) ReloadFrom(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := readTemplate(path)
	if err != nil {
		s.logger.Error("prompt template reload failed", "path", path, "error", err)
		return err
	}
	s.current.Store(&text)
	s.path.Store(&path)
	s.logger.Info("prompt template reloaded", "path", path, "bytes", len(text))
	return nil
}

func readTemplate(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("template path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt template: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("prompt template %s is empty", path)
	}
	return text, nil
}
