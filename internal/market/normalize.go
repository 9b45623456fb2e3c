package market

import (
	"strings"
	"unicode"
)

// DefaultStopWords are transactional and condition words that add noise to a
// marketplace search. Multi-word phrases are matched as whole token sequences.
// The list is Chilean-Spanish first with the common English equivalents seen
// in listing titles.
var DefaultStopWords = []string{
	"se vende",
	"for sale",
	"looking for",
	"vendo",
	"compro",
	"busco",
	"permuto",
	"usado",
	"usada",
	"nuevo",
	"nueva",
	"barato",
	"barata",
	"oferta",
	"excelente",
	"estado",
	"buen",
	"buena",
	"condicion",
	"condición",
	"buying",
	"used",
	"new",
	"cheap",
	"offer",
	"excellent",
	"condition",
	"good",
	"trade",
}

// minNormalizedLen guards against stop-word stripping producing a query too
// short to search with. Below this length the original query is kept.
const minNormalizedLen = 3

// NormalizeQuery turns a free-text product description into a search-friendly
// term: stop words are removed case-insensitively as whole words, punctuation
// is stripped and whitespace collapsed. If the result ends up shorter than 3
// characters the original query is returned unchanged.
func NormalizeQuery(query string) string {
	return normalizeQuery(query, DefaultStopWords)
}

func normalizeQuery(query string, stopWords []string) string {
	tokens := tokenize(query)
	kept := removeStopTokens(tokens, stopWords)

	normalized := strings.Join(kept, " ")
	if len(normalized) < minNormalizedLen {
		return query
	}
	return normalized
}

// tokenize splits the query into whitespace-separated tokens with all
// non-letter, non-digit characters removed.
func tokenize(query string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, query)
	return strings.Fields(cleaned)
}

// removeStopTokens drops tokens (and token sequences, for multi-word stop
// phrases) that match the stop word list case-insensitively.
func removeStopTokens(tokens []string, stopWords []string) []string {
	var phrases [][]string
	for _, sw := range stopWords {
		phrases = append(phrases, strings.Fields(strings.ToLower(sw)))
	}
	// Longest phrases first so "se vende" wins over a bare "vende".
	for i := 0; i < len(phrases); i++ {
		for j := i + 1; j < len(phrases); j++ {
			if len(phrases[j]) > len(phrases[i]) {
				phrases[i], phrases[j] = phrases[j], phrases[i]
			}
		}
	}

	var kept []string
	for i := 0; i < len(tokens); {
		if n := matchPhrase(tokens[i:], phrases); n > 0 {
			i += n
			continue
		}
		kept = append(kept, tokens[i])
		i++
	}
	return kept
}

// matchPhrase returns the length of the stop phrase starting at tokens[0], or
// 0 when none matches.
func matchPhrase(tokens []string, phrases [][]string) int {
	for _, phrase := range phrases {
		if len(phrase) > len(tokens) {
			continue
		}
		match := true
		for i, w := range phrase {
			if !strings.EqualFold(tokens[i], w) {
				match = false
				break
			}
		}
		if match {
			return len(phrase)
		}
	}
	return 0
}
