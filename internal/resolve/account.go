package resolve

import (
	"strings"
	"unicode"

	"folio/internal/models"
)

// AccountMatchStatus is the outcome of an account resolution attempt.
type AccountMatchStatus string

const (
	// AccountMatched means exactly one account matched.
	AccountMatched AccountMatchStatus = "matched"
	// AccountAmbiguous means more than one account matched equally well.
	// Callers must surface the conflict, never pick the first.
	AccountAmbiguous AccountMatchStatus = "ambiguous"
	// AccountUnmatched means the user named an account but nothing matched.
	AccountUnmatched AccountMatchStatus = "unmatched"
	// AccountMissing means no account-identifying argument was supplied.
	AccountMissing AccountMatchStatus = "missing"
)

// AccountMatch is the result of ResolveAccount.
type AccountMatch struct {
	Status     AccountMatchStatus
	Account    *models.Account
	Candidates []string // names of the conflicting accounts when ambiguous
}

// AccountResolveOptions restricts the candidate pool.
type AccountResolveOptions struct {
	// ManualOnly restricts matching to manually-managed accounts. Cash
	// mutations set this so they never silently resolve to a synced wallet.
	ManualOnly bool
}

// normalizeAccountName lowercases and strips all non-alphanumeric runes.
func normalizeAccountName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolveAccount matches a free-text account name fragment against the known
// accounts. Tiers: exact normalized equality, then substring containment in
// either direction. Each tier returns immediately on a unique hit and reports
// ambiguity on multiple hits.
func ResolveAccount(accounts []models.Account, input string, opts AccountResolveOptions) AccountMatch {
	query := normalizeAccountName(input)
	if query == "" {
		return AccountMatch{Status: AccountMissing}
	}

	pool := accounts
	if opts.ManualOnly {
		pool = nil
		for _, a := range accounts {
			if a.IsManual() {
				pool = append(pool, a)
			}
		}
	}

	var exact []models.Account
	for _, a := range pool {
		if normalizeAccountName(a.Name) == query {
			exact = append(exact, a)
		}
	}
	if m, done := pick(exact); done {
		return m
	}

	var partial []models.Account
	for _, a := range pool {
		name := normalizeAccountName(a.Name)
		if strings.Contains(name, query) || strings.Contains(query, name) {
			partial = append(partial, a)
		}
	}
	if m, done := pick(partial); done {
		return m
	}

	return AccountMatch{Status: AccountUnmatched}
}

func pick(matches []models.Account) (AccountMatch, bool) {
	switch len(matches) {
	case 0:
		return AccountMatch{}, false
	case 1:
		a := matches[0]
		return AccountMatch{Status: AccountMatched, Account: &a}, true
	default:
		names := make([]string, len(matches))
		for i, a := range matches {
			names[i] = a.Name
		}
		return AccountMatch{Status: AccountAmbiguous, Candidates: names}, true
	}
}
