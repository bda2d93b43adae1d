package summarizer

import (
	"sort"
	"strings"
)

// Generators maps engine names to configured generation clients.
type Generators map[string]GenerationClient

// Resolve returns the client for engine, falling back to fallback when the
// engine is empty or not configured.
func (g Generators) Resolve(engine, fallback string) (string, GenerationClient, bool) {
	name := strings.ToLower(strings.TrimSpace(engine))
	if client, ok := g[name]; ok && client != nil {
		return name, client, true
	}
	client, ok := g[fallback]
	if !ok || client == nil {
		return "", nil, false
	}
	return fallback, client, true
}

// Names lists the configured engines.
func (g Generators) Names() []string {
	names := make([]string, 0, len(g))
	for name, client := range g {
		if client != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
