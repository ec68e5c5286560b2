package search

import (
	"sort"
	"strings"
)

// topicKeywords maps a policy topic onto the query terms used to probe the
// upstream data. Unknown topics yield empty results, not errors.
var topicKeywords = map[string][]string{
	"healthcare": {
		"health", "medicare", "medicaid", "insurance", "hospital",
		"prescription", "drug", "medical",
	},
	"economy": {
		"economy", "economic", "tax", "budget", "inflation", "jobs",
		"employment", "trade", "tariff",
	},
	"defense": {
		"defense", "military", "armed forces", "veterans", "national security",
		"army", "navy", "air force",
	},
	"education": {
		"education", "school", "student", "college", "university",
		"teacher", "loan",
	},
	"environment": {
		"environment", "climate", "energy", "emissions", "conservation",
		"pollution", "renewable", "wildlife",
	},
	"immigration": {
		"immigration", "border", "visa", "asylum", "citizenship", "refugee",
	},
	"technology": {
		"technology", "internet", "broadband", "cybersecurity", "privacy",
		"artificial intelligence", "data",
	},
	"transportation": {
		"transportation", "highway", "infrastructure", "transit", "aviation",
		"railroad", "bridge",
	},
}

// Topics returns the supported topic names, sorted.
func Topics() []string {
	names := make([]string, 0, len(topicKeywords))
	for name := range topicKeywords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// KeywordsFor returns the query terms for a topic, or nil when the topic is
// not recognized.
func KeywordsFor(topic string) []string {
	return topicKeywords[strings.ToLower(strings.TrimSpace(topic))]
}
