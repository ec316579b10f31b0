// Package resolve implements fuzzy resolution of user-supplied symbols,
// account names, and cash positions against the portfolio.
package resolve

import (
	"regexp"
	"strings"
)

// SymbolMatchConfig holds the acceptance gates for fuzzy symbol matching.
type SymbolMatchConfig struct {
	// MinScore is the minimum similarity (1 - distance/maxLen) the best
	// candidate must reach.
	MinScore float64
	// MinGap is the minimum margin the best candidate must hold over the
	// runner-up. Two near-tied candidates are treated as ambiguous and the
	// literal input is kept.
	MinGap float64
}

// DefaultSymbolMatchConfig returns the production acceptance gates.
func DefaultSymbolMatchConfig() SymbolMatchConfig {
	return SymbolMatchConfig{MinScore: 0.75, MinGap: 0.12}
}

// ResolveClosestSymbol matches input against the catalog of symbols already
// present in the portfolio. Matching tiers: exact (case-insensitive), unique
// prefix either direction, then Levenshtein similarity gated by cfg. When no
// candidate clears the gates the input is returned unchanged so the caller
// reports "no position found" instead of mutating the wrong asset.
func ResolveClosestSymbol(catalog []string, input string, cfg SymbolMatchConfig) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}
	if len(catalog) == 0 {
		return input
	}
	upper := strings.ToUpper(trimmed)

	for _, cand := range catalog {
		if strings.ToUpper(cand) == upper {
			return cand
		}
	}

	var prefixMatch string
	prefixCount := 0
	for _, cand := range catalog {
		cu := strings.ToUpper(cand)
		if strings.HasPrefix(cu, upper) || strings.HasPrefix(upper, cu) {
			prefixMatch = cand
			prefixCount++
		}
	}
	if prefixCount == 1 {
		return prefixMatch
	}

	best, second := "", 0.0
	bestScore := 0.0
	for _, cand := range catalog {
		score := similarity(upper, strings.ToUpper(cand))
		if score > bestScore {
			second = bestScore
			bestScore = score
			best = cand
		} else if score > second {
			second = score
		}
	}

	if bestScore >= cfg.MinScore && bestScore-second >= cfg.MinGap {
		return best
	}
	return input
}

// similarity converts edit distance to a score in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

// levenshtein computes the edit distance between two strings with a rolling
// single-row table.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur := prev[0] + 1
		diag := prev[0]
		prev[0] = cur
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			next := diag + cost
			if v := cur + 1; v < next {
				next = v
			}
			if v := prev[j] + 1; v < next {
				next = v
			}
			diag = prev[j]
			prev[j] = next
			cur = next
		}
	}
	return prev[len(b)]
}

var symbolTokenRe = regexp.MustCompile(`[A-Z][A-Z0-9.\-]{0,9}`)

// symbolStopwords are verbs and temporal words that match the symbol token
// shape but never name an asset.
var symbolStopwords = map[string]bool{
	"A": true, "ADD": true, "ADDED": true, "ALL": true, "AND": true,
	"AT": true, "BALANCE": true, "BOUGHT": true, "BUY": true, "CASH": true,
	"DELETE": true, "EVERYTHING": true, "FOR": true, "FROM": true,
	"HALF": true, "I": true, "IN": true, "MY": true, "OF": true, "ON": true,
	"PRICE": true, "REMOVE": true, "SELL": true, "SET": true, "SHOW": true,
	"SOLD": true, "THE": true, "TO": true, "TODAY": true, "TOMORROW": true,
	"UPDATE": true, "WALLET": true, "WORTH": true, "YESTERDAY": true,
}

// GuessSymbolFromText scans free text for symbol-shaped tokens and returns
// the first one that resolves into the catalog. Used when the tool caller
// failed to extract an explicit symbol argument but the user clearly named
// one ("sold half my ETH"). Returns "" when nothing resolves.
func GuessSymbolFromText(catalog []string, text string, cfg SymbolMatchConfig) string {
	if text == "" || len(catalog) == 0 {
		return ""
	}
	inCatalog := make(map[string]bool, len(catalog))
	for _, c := range catalog {
		inCatalog[strings.ToUpper(c)] = true
	}
	for _, token := range symbolTokenRe.FindAllString(strings.ToUpper(text), -1) {
		if symbolStopwords[token] {
			continue
		}
		resolved := ResolveClosestSymbol(catalog, token, cfg)
		if inCatalog[strings.ToUpper(resolved)] {
			return resolved
		}
	}
	return ""
}
