package http

import (
	"regexp"
	"strings"

	"github.com/yanqian/yt-summarizer/internal/domain/summarizer"
)

const maxInstructionRunes = 1000

var (
	supportedLanguages = map[string]struct{}{
		"en": {}, "fr": {}, "es": {}, "de": {}, "it": {}, "pt": {},
		"nl": {}, "ru": {}, "zh": {}, "ja": {}, "ko": {}, "ar": {},
	}
	unsafeInstructionChars = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:!?()\[\]{}\-"'` + "`" + `]`)
)

// sanitizeRequest normalises user supplied choices. Empty fields stay empty
// so the service defaults apply; unknown values fall back to fixed defaults.
func sanitizeRequest(req summarizer.Request) summarizer.Request {
	req.Source = strings.TrimSpace(req.Source)
	req.Engine = strings.ToLower(strings.TrimSpace(req.Engine))

	ch := req.Choices
	ch.Language = oneOf(ch.Language, "en", func(v string) bool {
		_, ok := supportedLanguages[v]
		return ok
	})
	ch.DetailLevel = oneOf(ch.DetailLevel, summarizer.DetailMedium, in(summarizer.DetailShort, summarizer.DetailMedium, summarizer.DetailDetailed))
	ch.SummaryType = oneOf(ch.SummaryType, summarizer.TypeFull, in(summarizer.TypeFull, summarizer.TypeTools, summarizer.TypeInsights))
	ch.Style = oneOf(ch.Style, summarizer.StyleMixed, in(summarizer.StyleBullet, summarizer.StyleText, summarizer.StyleMixed))
	ch.AddEmojis = yesNo(ch.AddEmojis)
	ch.AddTables = yesNo(ch.AddTables)
	ch.SpecificInstructions = sanitizeInstructions(ch.SpecificInstructions)
	req.Choices = ch
	return req
}

func oneOf(value, fallback string, valid func(string) bool) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	if valid(value) {
		return value
	}
	return fallback
}

func in(allowed ...string) func(string) bool {
	return func(v string) bool {
		for _, a := range allowed {
			if v == a {
				return true
			}
		}
		return false
	}
}

func yesNo(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return ""
	case "yes", "true", "1", "oui":
		return summarizer.Yes
	default:
		return summarizer.No
	}
}

func sanitizeInstructions(text string) string {
	if text == "" {
		return ""
	}
	if runes := []rune(text); len(runes) > maxInstructionRunes {
		text = string(runes[:maxInstructionRunes])
	}
	return strings.TrimSpace(unsafeInstructionChars.ReplaceAllString(text, ""))
}
