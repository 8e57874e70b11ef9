package identifier

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxAttempts bounds the allocator's retry loop.
const DefaultMaxAttempts = 5

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{3,}$`)

// ValidUsername reports whether s already satisfies the username pattern.
func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// foldASCII strips diacritics so "Jöhn" normalizes to "john" rather than
// losing the rune entirely.
func foldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeUsername lowercases the input, folds diacritics, maps spaces to
// hyphens, and drops anything outside [a-z0-9._-]. Inputs that normalize to
// fewer than 3 runes fall back to a "user" stem so the result always
// satisfies the username pattern.
func NormalizeUsername(s string) string {
	s = strings.ToLower(foldASCII(strings.TrimSpace(s)))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-._")
	if len(out) < 3 {
		out = "user-" + out
		out = strings.TrimSuffix(out, "-")
	}
	return out
}

// NormalizeSlug lowercases the input, folds diacritics, collapses runs of
// non-alphanumerics to a single hyphen, and trims leading/trailing hyphens.
func NormalizeSlug(s string) string {
	s = strings.ToLower(foldASCII(strings.TrimSpace(s)))
	var b strings.Builder
	lastHyphen := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen && b.Len() > 0 {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "page"
	}
	return out
}

// Candidates produces a bounded sequence of identifiers derived from a
// normalized base: the base itself, numeric suffixes, then a random 4-digit
// suffix as the last resort. It is independent of storage so the retry loop
// can be tested in isolation.
type Candidates struct {
	base    string
	max     int
	attempt int
	randInt func(n int) int
}

// NewCandidates returns a sequence of at most max candidates for base.
// If max <= 0 the default bound applies.
func NewCandidates(base string, max int) *Candidates {
	if max <= 0 {
		max = DefaultMaxAttempts
	}
	return &Candidates{base: base, max: max, randInt: rand.Intn}
}

// WithRand overrides the random source, for deterministic tests.
func (c *Candidates) WithRand(randInt func(n int) int) *Candidates {
	c.randInt = randInt
	return c
}

// Next returns the next candidate, or false once the bound is exhausted.
func (c *Candidates) Next() (string, bool) {
	if c.attempt >= c.max {
		return "", false
	}
	i := c.attempt
	c.attempt++
	switch {
	case i == 0:
		return c.base, true
	case i < c.max-1:
		return fmt.Sprintf("%s-%d", c.base, i), true
	default:
		// last attempt: random 4-digit suffix
		return fmt.Sprintf("%s-%04d", c.base, c.randInt(10000)), true
	}
}

// Remaining returns how many candidates are left in the sequence.
func (c *Candidates) Remaining() int {
	return c.max - c.attempt
}
