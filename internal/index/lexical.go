// ABOUTME: Lexical scoring for the index's degraded no-embedding mode
// ABOUTME: Scores chunks by the fraction of query terms they contain
package index

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// tokenize lowercases text and extracts unique word tokens.
func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// lexicalScore returns the fraction of query terms present in the content,
// in [0, 1]. A score of 1 means every query term appears.
func lexicalScore(terms []string, content string) float64 {
	if len(terms) == 0 {
		return 0
	}

	contentTokens := tokenize(content)
	present := make(map[string]struct{}, len(contentTokens))
	for _, tok := range contentTokens {
		present[tok] = struct{}{}
	}

	matched := 0
	for _, term := range terms {
		if _, ok := present[term]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(terms))
}
