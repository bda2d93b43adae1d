package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown converts summary markdown into HTML.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown returns a renderer with GitHub flavoured extensions. Raw HTML in
// the source is not passed through.
func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// HTML renders source.
func (m *Markdown) HTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
