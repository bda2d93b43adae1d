package transcript

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidSource is returned when a source is neither a YouTube URL nor a video id.
var ErrInvalidSource = errors.New("invalid youtube source")

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// VideoID extracts the 11 character video id from a YouTube URL or bare id.
func VideoID(source string) (string, error) {
	source = strings.TrimSpace(source)
	if videoIDPattern.MatchString(source) {
		return source, nil
	}
	if !strings.Contains(source, "://") {
		source = "https://" + source
	}
	u, err := url.Parse(source)
	if err != nil {
		return "", ErrInvalidSource
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	var candidate string
	switch host {
	case "youtu.be":
		candidate = firstSegment(u.Path)
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			candidate = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			candidate = firstSegment(strings.TrimPrefix(u.Path, "/shorts"))
		case strings.HasPrefix(u.Path, "/embed/"):
			candidate = firstSegment(strings.TrimPrefix(u.Path, "/embed"))
		case strings.HasPrefix(u.Path, "/live/"):
			candidate = firstSegment(strings.TrimPrefix(u.Path, "/live"))
		}
	}
	if !videoIDPattern.MatchString(candidate) {
		return "", ErrInvalidSource
	}
	return candidate, nil
}

func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		path = path[:idx]
	}
	return path
}
