package autotag

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Options configures a single resolution run.
type Options struct {
	// Branch is the branch being tagged.
	Branch string

	// BranchHeadSHA is the tip commit of Branch; the created tag will point
	// at it.
	BranchHeadSHA string

	// Policy classifies release branches and names escalation labels.
	Policy ReleasePolicy

	// FallbackLevel is the bump used on release branches when no directive
	// is found in the scanned history.
	FallbackLevel BumpLevel

	// Channel overrides the prerelease label on non-release branches. It
	// defaults to Branch.
	Channel string

	// CustomTag, when set, is used verbatim as the decision; no version
	// computation occurs beyond the conflict check.
	CustomTag string
}

// VersionResolver derives the next tag for a branch from the remote tag list
// and the commit history since the last release.
type VersionResolver struct {
	Tags    TagLister
	Commits CommitLister
	Issues  IssueLabeler
}

// Resolve computes the next-version decision for the given options.
//
// A custom tag short-circuits everything except the conflict check. A branch
// tip that is already tagged fails with ErrNoNewCommits. Non-release
// branches get a prerelease bump scoped to their channel label; release
// branches get the level scanned from commit directives since the last
// non-prerelease tag, or FallbackLevel when no directive matched.
//
// The resolver holds no state between runs: given identical remote state and
// options it always produces the same decision.
func (r *VersionResolver) Resolve(ctx context.Context, opts Options) (*VersionDecision, error) {
	tags, err := r.Tags.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	if opts.CustomTag != "" {
		for _, tag := range tags {
			if tag.Name == opts.CustomTag {
				return nil, fmt.Errorf("custom tag %q: %w", opts.CustomTag, ErrTagConflict)
			}
		}
		return &VersionDecision{Result: opts.CustomTag}, nil
	}

	index := NewTagIndex(tags)
	latest := index.Latest(opts.Branch, opts.Policy, true)
	latestMain := index.Latest(opts.Branch, opts.Policy, false)

	if latest != nil && latest.CommitSHA == opts.BranchHeadSHA {
		return nil, fmt.Errorf("head of %q is already tagged %s: %w",
			opts.Branch, latest.Name, ErrNoNewCommits)
	}

	base := "0.0.0"
	if latest != nil {
		base = latest.Name
	}
	baseVersion, _ := Clean(base)

	if opts.Policy.IsReleaseBranch(opts.Branch) {
		return r.resolveRelease(ctx, opts, latest, latestMain, base, baseVersion.String())
	}

	channel := channelLabel(opts.Channel)
	if channel == "" {
		channel = channelLabel(opts.Branch)
	}

	next, err := Increment(base, BumpPrerelease, channel)
	if err != nil {
		return nil, fmt.Errorf("incrementing %q: %w", base, err)
	}

	return &VersionDecision{
		LatestTag:    latest,
		BaseVersion:  baseVersion.String(),
		Level:        BumpPrerelease,
		IsPrerelease: true,
		Channel:      channel,
		Result:       next.String(),
	}, nil
}

// resolveRelease scans the commit window between the branch head and the
// last non-prerelease tag. When no such tag exists the whole available
// history is scanned.
func (r *VersionResolver) resolveRelease(ctx context.Context, opts Options, latest, latestMain *Tag, base, baseVersion string) (*VersionDecision, error) {
	commits, err := r.Commits.ListCommits(ctx, opts.BranchHeadSHA)
	if err != nil {
		return nil, fmt.Errorf("listing commits from %s: %w", opts.BranchHeadSHA, err)
	}

	stopAt := ""
	if latestMain != nil {
		stopAt = latestMain.CommitSHA
	}

	scanner := &CommitDirectiveScanner{
		Issues:           r.Issues,
		EscalationLabels: opts.Policy.EscalationLabels,
	}

	level := scanner.Scan(ctx, commits, stopAt)
	if level == BumpNone {
		level = opts.FallbackLevel
	}

	next, err := Increment(base, level, "")
	if err != nil {
		return nil, fmt.Errorf("incrementing %q: %w", base, err)
	}

	return &VersionDecision{
		LatestTag:   latest,
		BaseVersion: baseVersion,
		Level:       level,
		Result:      next.String(),
	}, nil
}

var channelSanitizer = regexp.MustCompile(`[^0-9A-Za-z-]+`)

// channelLabel makes a branch name usable as a prerelease identifier,
// e.g. "feature/login" becomes "feature-login".
func channelLabel(name string) string {
	return strings.Trim(channelSanitizer.ReplaceAllString(name, "-"), "-")
}
