package autotag

import (
	"context"
	"regexp"
	"strconv"
)

// Commit message directives. Each commit is checked against the marker table
// in order and the first match wins: a wip marker skips the commit, a major
// marker ends the scan, minor and patch raise the accumulated level. Commits
// without a marker may still carry a fix reference, which sets a patch floor
// that issue labels can escalate to minor.
var (
	wipMarker   = regexp.MustCompile(`#wip\b`)
	majorMarker = regexp.MustCompile(`#major\b`)
	minorMarker = regexp.MustCompile(`#minor\b`)
	patchMarker = regexp.MustCompile(`#patch\b`)
	fixRef      = regexp.MustCompile(`(?i)\bfix(?:es)?\s+#(\d+)`)
)

// markerRules is the per-commit precedence order of the bump markers.
var markerRules = []struct {
	marker *regexp.Regexp
	level  BumpLevel
}{
	{wipMarker, BumpWIP},
	{majorMarker, BumpMajor},
	{minorMarker, BumpMinor},
	{patchMarker, BumpPatch},
}

// directiveFor returns the marker effect for a commit message, or BumpNone
// when no marker is present.
func directiveFor(message string) BumpLevel {
	for _, rule := range markerRules {
		if rule.marker.MatchString(message) {
			return rule.level
		}
	}
	return BumpNone
}

// CommitDirectiveScanner folds a newest-first commit window into a single
// bump level.
type CommitDirectiveScanner struct {
	// Issues is the optional escalation source for fix references. It may
	// be nil, in which case fix references only set the patch floor.
	Issues IssueLabeler

	// EscalationLabels are the issue labels that escalate a fix to minor.
	EscalationLabels []string
}

// Scan reduces the directive markers found between the head of the commit
// list and stopAtSHA to one bump level. The commit carrying stopAtSHA is the
// exclusive boundary: it and everything older are not evaluated. An empty
// stopAtSHA scans the whole list.
//
// BumpMajor is absorbing: once found the scan stops and older commits are
// never consulted. BumpMinor, once accumulated, cannot be lowered by later
// patch or fix directives. Issue lookup failures of any kind degrade to "no
// escalation" for that commit rather than failing the scan.
func (s *CommitDirectiveScanner) Scan(ctx context.Context, commits []Commit, stopAtSHA string) BumpLevel {
	level := BumpNone

	for _, commit := range commits {
		if stopAtSHA != "" && commit.SHA == stopAtSHA {
			break
		}

		switch directiveFor(commit.Message) {
		case BumpWIP:
			continue
		case BumpMajor:
			return BumpMajor
		case BumpMinor:
			level = BumpMinor
		case BumpPatch:
			if level < BumpMinor {
				level = BumpPatch
			}
		case BumpNone:
			if level < BumpMinor {
				level = s.applyFixReference(ctx, commit.Message, level)
			}
		}
	}

	return level
}

// applyFixReference handles a "fix #N" / "fixes #N" reference: it sets the
// patch floor and escalates to minor when the issue carries an escalation
// label. Malformed or zero issue numbers carry no signal at all.
func (s *CommitDirectiveScanner) applyFixReference(ctx context.Context, message string, level BumpLevel) BumpLevel {
	match := fixRef.FindStringSubmatch(message)
	if match == nil {
		return level
	}

	number, err := strconv.Atoi(match[1])
	if err != nil || number <= 0 {
		return level
	}

	level = BumpPatch

	if s.Issues == nil {
		return level
	}
	labels, err := s.Issues.IssueLabels(ctx, number)
	if err != nil {
		// Best-effort enrichment: a missing issue or a failed lookup
		// never blocks an otherwise valid decision.
		return level
	}

	for _, label := range labels {
		for _, escalation := range s.EscalationLabels {
			if label == escalation {
				return BumpMinor
			}
		}
	}
	return level
}
