package autotag

import "errors"

// Error kinds surfaced by the engine. Every one of them aborts the run; the
// scanner's issue lookups are the only tolerated failure (they degrade to
// "no escalation" instead of propagating).
var (
	// ErrUnknownBranch means a forced or triggering branch has no ref.
	ErrUnknownBranch = errors.New("branch not found")

	// ErrNoNewCommits means the branch tip is already tagged. This is a
	// deliberate stop condition, not a bug: tagging again would duplicate
	// the existing tag.
	ErrNoNewCommits = errors.New("no new commits since last tag")

	// ErrTagConflict means the requested tag name already exists.
	ErrTagConflict = errors.New("tag already exists")

	// ErrInvalidVersion means a version string failed to parse where
	// parsing was required.
	ErrInvalidVersion = errors.New("invalid semantic version")

	// ErrRemoteUnavailable wraps transport-level collaborator failures.
	ErrRemoteUnavailable = errors.New("remote unavailable")

	// ErrIssueNotFound means an issue referenced by a commit message does
	// not exist on the platform.
	ErrIssueNotFound = errors.New("issue not found")
)
