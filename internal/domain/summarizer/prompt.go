package summarizer

import (
	"fmt"
	"strings"
)

const markdownDirective = "- The entire summary must be written in Markdown format."

// PromptBuilder renders prompts from an immutable base template.
type PromptBuilder struct {
	base string
}

// NewPromptBuilder captures base as the instruction template.
func NewPromptBuilder(base string) PromptBuilder {
	return PromptBuilder{base: strings.TrimSpace(base)}
}

// SingleShot embeds the whole transcript in one prompt.
func (b PromptBuilder) SingleShot(fullText string, choices UserChoices) string {
	var sb strings.Builder
	sb.WriteString(b.base)
	sb.WriteString("\n\nTranscript:\n")
	sb.WriteString(strings.TrimSpace(fullText))
	sb.WriteString("\n\n")
	sb.WriteString(Instructions(choices))
	return sb.String()
}

// Initial asks for a summary of the first part only and announces more parts.
func (b PromptBuilder) Initial(firstChunk string, choices UserChoices) string {
	return b.InitialPart(firstChunk, 0, choices)
}

// InitialPart is Initial for a run whose first usable part is chunkIndex,
// which happens when earlier parts were skipped.
func (b PromptBuilder) InitialPart(firstChunk string, chunkIndex int, choices UserChoices) string {
	var sb strings.Builder
	sb.WriteString(b.base)
	sb.WriteString("\n\n")
	sb.WriteString("You will receive a long transcript split into several parts. Your task is to summarize them sequentially.\n")
	sb.WriteString("Start by summarizing the first part only.\n")
	sb.WriteString("Then, for each new part, update and enrich your previous summary by integrating the new information.\n")
	sb.WriteString("Ensure the result remains coherent, structured, and meaningful as a whole.\n")
	sb.WriteString("Avoid repeating what has already been summarized.\n")
	sb.WriteString("At the end, the final summary should feel like a single, unified piece of writing, not a sequence of fragments.\n\n")
	fmt.Fprintf(&sb, "Transcript Part %d:\n", chunkIndex+1)
	sb.WriteString(strings.TrimSpace(firstChunk))
	sb.WriteString("\n\n")
	sb.WriteString(Instructions(choices))
	return sb.String()
}

// Update asks the backend to fold chunk into previousSummary. chunkIndex is
// zero based; the prompt numbers parts from one.
func (b PromptBuilder) Update(chunk, previousSummary string, chunkIndex int, choices UserChoices) string {
	var sb strings.Builder
	sb.WriteString("You are continuing a summarization task.\n\n")
	sb.WriteString("Here is the previous summary based on the previous parts:\n")
	sb.WriteString(previousSummary)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Now integrate this new transcript part (Part %d) into the existing summary:\n", chunkIndex+1)
	sb.WriteString(strings.TrimSpace(chunk))
	sb.WriteString("\n\n")
	sb.WriteString("Update and expand the summary, keeping consistency and structure. Do not repeat information already covered.\n")
	sb.WriteString(b.base)
	sb.WriteString("\n")
	sb.WriteString(Instructions(choices))
	return sb.String()
}

// Instructions renders the formatting directives for choices. It always ends
// with the markdown directive.
func Instructions(choices UserChoices) string {
	var sb strings.Builder
	sb.WriteString("### Specific instructions for this summary:\n\n")
	fmt.Fprintf(&sb, "- Language: %s\n", choices.Language)
	fmt.Fprintf(&sb, "- Detail level: %s\n", detailLevelText(choices.DetailLevel))
	fmt.Fprintf(&sb, "- Type of summary: %s\n", summaryTypeText(choices.SummaryType))
	fmt.Fprintf(&sb, "- Style: %s\n", styleText(choices.Style))
	fmt.Fprintf(&sb, "- Emojis: %s\n", emojiText(choices.AddEmojis))
	fmt.Fprintf(&sb, "- Tables: %s\n", tableText(choices.AddTables))
	if extra := strings.TrimSpace(choices.SpecificInstructions); extra != "" {
		fmt.Fprintf(&sb, "- Additional instructions: %s\n", extra)
	}
	sb.WriteString(markdownDirective)
	return sb.String()
}

func detailLevelText(level string) string {
	switch level {
	case DetailShort:
		return "300 words maximum."
	case DetailMedium:
		return "Between 800 and 1000 words."
	case DetailDetailed:
		return "Provide an extremely detailed summary. Cover each important concept, method, or insight thoroughly. " +
			"Include examples, figures, and context when mentioned. Write as if the reader had no access to the video but needs to fully understand the content. " +
			"Target length: aim for more than 1500 words."
	default:
		return "As detailed as needed."
	}
}

func summaryTypeText(kind string) string {
	switch kind {
	case TypeFull:
		return "Provide a full summary of the video."
	case TypeTools:
		return "Extract all tools, methods, techniques, strategies, lists or actionable content mentioned in the video."
	case TypeInsights:
		return "Focus only on key insights or lessons."
	default:
		return "Provide a full summary."
	}
}

func styleText(style string) string {
	switch style {
	case StyleBullet:
		return "Use ALWAYS AND ONLY bullet points. NO PLAIN TEXT."
	case StyleText:
		return "Use ALWAYS AND ONLY plain text. NO BULLET POINTS."
	default:
		return "Mix text and bullet points."
	}
}

func emojiText(choice string) string {
	if choice == Yes {
		return "Absolutely add emojis in the summary, ALWAYS."
	}
	return "Do not use emojis, NEVER."
}

func tableText(choice string) string {
	if choice == Yes {
		return "ALWAYS use markdown tables at least once, twice or more if needed."
	}
	return "Do not use tables, NEVER."
}
