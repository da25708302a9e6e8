// Package domains restricts which hosts the browsing agent may navigate to.
package domains

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Policy is a compiled allowed-domains list. An empty policy allows
// everything.
type Policy struct {
	raw      []string
	patterns []glob.Glob
}

// Compile builds a policy from glob patterns. Patterns are matched against
// lowercased hostnames with '.' as the glob separator, so "*.example.com"
// matches subdomains without crossing into other domains.
func Compile(patterns []string) (*Policy, error) {
	policy := &Policy{}
	for _, raw := range patterns {
		raw = strings.ToLower(strings.TrimSpace(raw))
		if raw == "" {
			continue
		}
		g, err := glob.Compile(raw, '.')
		if err != nil {
			return nil, fmt.Errorf("invalid allowed domain pattern %q: %w", raw, err)
		}
		policy.raw = append(policy.raw, raw)
		policy.patterns = append(policy.patterns, g)
	}
	return policy, nil
}

// Allows reports whether the host may be visited. A "*.example.com" pattern
// also admits the bare "example.com".
func (p *Policy) Allows(host string) bool {
	if p == nil || len(p.patterns) == 0 {
		return true
	}
	host = strings.ToLower(strings.TrimSpace(host))
	for i, g := range p.patterns {
		if g.Match(host) {
			return true
		}
		if bare, ok := strings.CutPrefix(p.raw[i], "*."); ok && host == bare {
			return true
		}
	}
	return false
}

// Patterns returns the normalized pattern list, for logging.
func (p *Policy) Patterns() []string {
	if p == nil {
		return nil
	}
	return p.raw
}
