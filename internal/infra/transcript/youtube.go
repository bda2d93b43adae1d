package transcript

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yanqian/yt-summarizer/internal/domain/summarizer"
)

const defaultBaseURL = "https://www.youtube.com"

// Config configures the YouTube caption client.
type Config struct {
	BaseURL   string
	Languages []string
	Timeout   time.Duration
}

// YouTube fetches captions from the timedtext endpoint.
type YouTube struct {
	baseURL    string
	languages  []string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewYouTube builds a caption client. Languages are tried in order.
func NewYouTube(cfg Config, logger *slog.Logger) *YouTube {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	langs := make([]string, 0, len(cfg.Languages))
	for _, lang := range cfg.Languages {
		if lang = strings.TrimSpace(lang); lang != "" {
			langs = append(langs, lang)
		}
	}
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &YouTube{
		baseURL:    strings.TrimRight(base, "/"),
		languages:  langs,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "transcript.youtube"),
	}
}

// Fetch returns caption lines joined by newlines for the first language that has any.
func (y *YouTube) Fetch(ctx context.Context, source string) (string, error) {
	id, err := VideoID(source)
	if err != nil {
		return "", err
	}
	for _, lang := range y.languages {
		lines, err := y.fetchLanguage(ctx, id, lang)
		if err != nil {
			return "", err
		}
		if len(lines) > 0 {
			y.logger.Debug("captions fetched", "video_id", id, "lang", lang, "lines", len(lines))
			return strings.Join(lines, "\n"), nil
		}
	}
	return "", fmt.Errorf("video %s languages %v: %w", id, y.languages, summarizer.ErrTranscriptNotFound)
}

type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

func (y *YouTube) fetchLanguage(ctx context.Context, id, lang string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/api/timedtext?lang=%s&v=%s", y.baseURL, url.QueryEscape(lang), url.QueryEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build timedtext request: %w", err)
	}

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timedtext request failed: %v: %w", err, summarizer.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("timedtext error: status=%d body=%s: %w", resp.StatusCode, string(payload), summarizer.ErrUpstream)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read timedtext response: %v: %w", err, summarizer.ErrUpstream)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}

	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode timedtext response: %v: %w", err, summarizer.ErrUpstream)
	}
	lines := make([]string, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		text := strings.TrimSpace(html.UnescapeString(line.Text))
		if text != "" {
			lines = append(lines, text)
		}
	}
	return lines, nil
}

var _ summarizer.TranscriptProvider = (*YouTube)(nil)
