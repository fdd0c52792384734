package autotag

import (
	"fmt"
	"regexp"
	"strings"
)

// ReleasePolicy is the read-only per-run configuration: which branches are
// release branches, and which issue labels escalate a fix to a minor bump.
type ReleasePolicy struct {
	releaseBranches  []*regexp.Regexp
	EscalationLabels []string
}

// NewReleasePolicy compiles a comma-separated list of release-branch regexes
// and splits a comma-separated list of escalation labels.
func NewReleasePolicy(branchPatterns, escalationLabels string) (ReleasePolicy, error) {
	policy := ReleasePolicy{
		EscalationLabels: splitList(escalationLabels),
	}

	for _, pattern := range splitList(branchPatterns) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return ReleasePolicy{}, fmt.Errorf("invalid release branch pattern %q: %w", pattern, err)
		}
		policy.releaseBranches = append(policy.releaseBranches, re)
	}

	return policy, nil
}

// IsReleaseBranch reports whether any configured pattern matches the branch
// name. Patterns are partial matches, not anchored; an empty pattern list
// never matches.
func (p ReleasePolicy) IsReleaseBranch(name string) bool {
	for _, re := range p.releaseBranches {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
