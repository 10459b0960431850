package models

import "sort"

// Challenge represents a code golf challenge as served by the golf API
type Challenge struct {
	Challenge   string `json:"challenge"`
	Description string `json:"description"` // trusted markup
}

// LeaderboardEntry is a single ranked submission
type LeaderboardEntry struct {
	Name     string `json:"name"`
	CodeSize int    `json:"codeSize"` // bytes
}

// PublicLeaderboard maps a language name to its entries, best first
type PublicLeaderboard map[string][]LeaderboardEntry

// Languages returns the languages present on the board in name order
func (b PublicLeaderboard) Languages() []string {
	langs := make([]string, 0, len(b))
	for lang := range b {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Top returns the record holder for a language, if there is one
func (b PublicLeaderboard) Top(lang string) (LeaderboardEntry, bool) {
	entries := b[lang]
	if len(entries) == 0 {
		return LeaderboardEntry{}, false
	}
	return entries[0], true
}
