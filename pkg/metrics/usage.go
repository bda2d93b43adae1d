package metrics

import "sort"

// Well-known counter names reported by OpenAI compatible backends.
const (
	PromptTokens     = "prompt_tokens"
	CompletionTokens = "completion_tokens"
	TotalTokens      = "total_tokens"
)

// TokenUsage captures named LLM token counters used to satisfy a request.
type TokenUsage map[string]int

// Add merges other into u, summing counters that share a name.
func (u TokenUsage) Add(other TokenUsage) {
	for name, value := range other {
		u[name] += value
	}
}

// Clone returns an independent copy; nil stays nil.
func (u TokenUsage) Clone() TokenUsage {
	if u == nil {
		return nil
	}
	out := make(TokenUsage, len(u))
	for name, value := range u {
		out[name] = value
	}
	return out
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	for _, value := range u {
		if value != 0 {
			return false
		}
	}
	return true
}

// Names returns the counter names in stable order.
func (u TokenUsage) Names() []string {
	names := make([]string, 0, len(u))
	for name := range u {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
