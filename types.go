// Package autotag computes the next release tag for a repository from its
// existing version tags, its branch topology, and directives embedded in
// commit messages. It is designed to run as a single-shot step in a CI
// pipeline: all inputs are fetched fresh per invocation and the only side
// effect is the creation of one new tag reference.
package autotag

import (
	"context"
	"fmt"
)

// Tag is a remote tag reference and the commit it points at. Tags are
// immutable once fetched; the engine only ever requests creation of new ones.
type Tag struct {
	Name      string
	CommitSHA string
}

// Branch is a branch name and its tip commit.
type Branch struct {
	Name    string
	HeadSHA string
}

// Commit is a single history entry. Commit lists are always ordered
// newest-first, as returned by history traversal.
type Commit struct {
	SHA     string
	Message string
}

// BumpLevel is the ordered set of version bump magnitudes, none < patch <
// minor < major. BumpPrerelease and BumpWIP sit outside that lattice:
// BumpPrerelease is only meaningful to Increment, and BumpWIP is a skip
// marker that never escapes the commit scanner.
type BumpLevel int

const (
	BumpNone BumpLevel = iota
	BumpPatch
	BumpMinor
	BumpMajor

	BumpPrerelease
	BumpWIP
)

func (l BumpLevel) String() string {
	switch l {
	case BumpNone:
		return "none"
	case BumpPatch:
		return "patch"
	case BumpMinor:
		return "minor"
	case BumpMajor:
		return "major"
	case BumpPrerelease:
		return "prerelease"
	case BumpWIP:
		return "wip"
	}
	return fmt.Sprintf("BumpLevel(%d)", int(l))
}

// ParseBumpLevel parses the levels that are valid as a fallback bump.
func ParseBumpLevel(s string) (BumpLevel, error) {
	switch s {
	case "patch":
		return BumpPatch, nil
	case "minor":
		return BumpMinor, nil
	case "major":
		return BumpMajor, nil
	}
	return BumpNone, fmt.Errorf("invalid bump level %q", s)
}

// VersionDecision is the outcome of one resolution run.
type VersionDecision struct {
	// LatestTag is the tag the computation was based on, nil when no valid
	// version tag existed.
	LatestTag *Tag

	// BaseVersion is the cleaned version LatestTag parsed to, or "0.0.0".
	BaseVersion string

	// Level is the bump that was applied to BaseVersion.
	Level BumpLevel

	// IsPrerelease reports whether Result carries a prerelease suffix.
	IsPrerelease bool

	// Channel is the prerelease label used, empty on release branches and
	// on the custom-tag path.
	Channel string

	// Result is the next tag name, without any configured prefix.
	Result string
}

// Collaborator contracts abstracted from the hosting platform. List calls
// resolve pagination before returning, so callers always see complete
// sequences.

// TagLister fetches every tag of the repository.
type TagLister interface {
	ListTags(ctx context.Context) ([]Tag, error)
}

// CommitLister fetches the commit history newest-first starting at fromSHA.
type CommitLister interface {
	ListCommits(ctx context.Context, fromSHA string) ([]Commit, error)
}

// IssueLabeler returns the labels of an issue, or ErrIssueNotFound when the
// issue does not exist.
type IssueLabeler interface {
	IssueLabels(ctx context.Context, number int) ([]string, error)
}

// BranchFinder resolves a branch name to its tip. A nil Branch with a nil
// error means the branch does not exist.
type BranchFinder interface {
	FindBranch(ctx context.Context, name string) (*Branch, error)
}

// TagCreator creates a tag reference at a commit, failing with
// ErrTagConflict when the name is already taken.
type TagCreator interface {
	CreateTagRef(ctx context.Context, name, commitSHA string) error
}

// Platform bundles everything the resolver and the command need from a
// hosting platform.
type Platform interface {
	TagLister
	CommitLister
	IssueLabeler
	BranchFinder
	TagCreator
}
