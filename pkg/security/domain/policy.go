// Package domain decides which hosts a browser session may visit.
//
// A Policy holds an allow list and a block list of host patterns. A pattern is
// either an exact host ("example.com") or a wildcard covering a domain and all
// of its subdomains ("*.example.com"). The block list always wins; an empty
// allow list admits every host that is not blocked.
package domain

import (
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

const wildcardPrefix = "*."

// Decision explains the outcome of a policy check.
type Decision string

const (
	// DecisionAllowed means the host passed both lists.
	DecisionAllowed Decision = "allowed"

	// DecisionBlocked means the host matched a block pattern.
	DecisionBlocked Decision = "blocked"

	// DecisionNotAllowlisted means an allow list is configured and the host
	// matched none of its patterns.
	DecisionNotAllowlisted Decision = "not_allowlisted"

	// DecisionInvalidURL means no host could be extracted from the URL.
	DecisionInvalidURL Decision = "invalid_url"
)

// Allowed reports whether the decision permits navigation.
func (d Decision) Allowed() bool {
	return d == DecisionAllowed
}

// pattern is a single normalized host pattern.
type pattern struct {
	raw  string
	base string    // set for wildcard patterns
	sub  glob.Glob // matches strict subdomains of base
}

func compilePattern(raw string) (pattern, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return pattern{}, false
	}

	p := pattern{raw: raw}
	if strings.HasPrefix(raw, wildcardPrefix) {
		p.base = strings.TrimPrefix(raw, wildcardPrefix)
		// No separators: '*' spans any number of labels. The base is quoted
		// so that characters in it are never read as glob syntax.
		g, err := glob.Compile("*." + glob.QuoteMeta(p.base))
		if err == nil {
			p.sub = g
		}
	}
	return p, true
}

func (p pattern) match(host string) bool {
	if host == p.raw {
		return true
	}
	if p.base == "" {
		return false
	}
	if host == p.base {
		return true
	}
	if p.sub != nil {
		return p.sub.Match(host)
	}
	return strings.HasSuffix(host, "."+p.base)
}

// Policy evaluates URLs against allow and block lists.
// A Policy is immutable once constructed and safe for concurrent use.
type Policy struct {
	allowed []pattern
	blocked []pattern
}

// New creates a policy from allow and block patterns. Patterns are trimmed
// and lower-cased; empty entries and duplicates are dropped.
func New(allowed, blocked []string) *Policy {
	return &Policy{
		allowed: compileAll(allowed),
		blocked: compileAll(blocked),
	}
}

func compileAll(raw []string) []pattern {
	seen := make(map[string]bool, len(raw))
	out := make([]pattern, 0, len(raw))
	for _, r := range raw {
		p, ok := compilePattern(r)
		if !ok || seen[p.raw] {
			continue
		}
		seen[p.raw] = true
		out = append(out, p)
	}
	return out
}

// IsAllowed reports whether navigation to rawURL is permitted.
// Unparseable URLs and URLs without a host are rejected.
func (p *Policy) IsAllowed(rawURL string) bool {
	return p.Check(rawURL).Allowed()
}

// Check evaluates rawURL and returns the reason for the outcome.
func (p *Policy) Check(rawURL string) Decision {
	host := Host(rawURL)
	if host == "" {
		return DecisionInvalidURL
	}

	for _, b := range p.blocked {
		if b.match(host) {
			return DecisionBlocked
		}
	}

	if len(p.allowed) == 0 {
		return DecisionAllowed
	}

	for _, a := range p.allowed {
		if a.match(host) {
			return DecisionAllowed
		}
	}
	return DecisionNotAllowlisted
}

// AllowedPatterns returns a copy of the normalized allow patterns.
func (p *Policy) AllowedPatterns() []string {
	return rawPatterns(p.allowed)
}

// BlockedPatterns returns a copy of the normalized block patterns.
func (p *Policy) BlockedPatterns() []string {
	return rawPatterns(p.blocked)
}

// Unrestricted reports whether the policy admits every valid URL.
func (p *Policy) Unrestricted() bool {
	return len(p.allowed) == 0 && len(p.blocked) == 0
}

func rawPatterns(ps []pattern) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.raw
	}
	return out
}

// Host extracts the lower-cased host of rawURL without its port.
// It returns "" when the URL cannot be parsed or carries no host.
func Host(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
