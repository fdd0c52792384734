package autotag

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeIssues is an IssueLabeler backed by a map; it records every lookup.
type fakeIssues struct {
	labels map[int][]string
	err    error
	calls  []int
}

func (f *fakeIssues) IssueLabels(ctx context.Context, number int) ([]string, error) {
	f.calls = append(f.calls, number)
	if f.err != nil {
		return nil, f.err
	}
	if labels, ok := f.labels[number]; ok {
		return labels, nil
	}
	return nil, fmt.Errorf("issue #%d: %w", number, ErrIssueNotFound)
}

func TestScan(t *testing.T) {
	ctx := context.Background()
	scanner := &CommitDirectiveScanner{EscalationLabels: []string{"enhancement"}}

	t.Run("Empty history resolves to none", func(t *testing.T) {
		require.Equal(t, BumpNone, scanner.Scan(ctx, nil, ""))
	})

	t.Run("No directives resolve to none", func(t *testing.T) {
		commits := []Commit{
			{SHA: "a", Message: "update readme"},
			{SHA: "b", Message: "refactor parser"},
		}
		require.Equal(t, BumpNone, scanner.Scan(ctx, commits, ""))
	})

	t.Run("Patch directive", func(t *testing.T) {
		commits := []Commit{{SHA: "a", Message: "tidy up #patch"}}
		require.Equal(t, BumpPatch, scanner.Scan(ctx, commits, ""))
	})

	t.Run("Minor and patch in the same commit resolve to minor", func(t *testing.T) {
		commits := []Commit{{SHA: "a", Message: "new endpoint #minor #patch"}}
		require.Equal(t, BumpMinor, scanner.Scan(ctx, commits, ""))
	})

	t.Run("Minor cannot be downgraded by an older patch", func(t *testing.T) {
		commits := []Commit{
			{SHA: "a", Message: "feature #minor"},
			{SHA: "b", Message: "hotfix #patch"},
		}
		require.Equal(t, BumpMinor, scanner.Scan(ctx, commits, ""))
	})

	t.Run("Major is absorbing regardless of newer directives", func(t *testing.T) {
		commits := []Commit{
			{SHA: "a", Message: "fix typo #patch"},
			{SHA: "b", Message: "breaking change #major"},
			{SHA: "c", Message: "feature #minor"},
		}
		require.Equal(t, BumpMajor, scanner.Scan(ctx, commits, ""))
	})

	t.Run("Major stops the scan before older fix references", func(t *testing.T) {
		issues := &fakeIssues{labels: map[int][]string{1: {"enhancement"}}}
		s := &CommitDirectiveScanner{Issues: issues, EscalationLabels: []string{"enhancement"}}

		commits := []Commit{
			{SHA: "a", Message: "rewrite API #major"},
			{SHA: "b", Message: "fixes #1"},
		}
		require.Equal(t, BumpMajor, s.Scan(ctx, commits, ""))
		require.Empty(t, issues.calls)
	})

	t.Run("Wip skips the commit entirely", func(t *testing.T) {
		commits := []Commit{
			{SHA: "a", Message: "#wip #major not ready"},
			{SHA: "b", Message: "cleanup"},
		}
		require.Equal(t, BumpNone, scanner.Scan(ctx, commits, ""))
	})

	t.Run("Scan stops at the boundary commit exclusively", func(t *testing.T) {
		commits := []Commit{
			{SHA: "a", Message: "docs"},
			{SHA: "stop", Message: "release #major"},
			{SHA: "c", Message: "old #minor"},
		}
		require.Equal(t, BumpNone, scanner.Scan(ctx, commits, "stop"))
	})

	t.Run("Empty boundary scans the whole history", func(t *testing.T) {
		commits := []Commit{
			{SHA: "a", Message: "docs"},
			{SHA: "b", Message: "old feature #minor"},
		}
		require.Equal(t, BumpMinor, scanner.Scan(ctx, commits, ""))
	})
}

func TestScanFixReferences(t *testing.T) {
	ctx := context.Background()

	t.Run("Fix reference sets the patch floor", func(t *testing.T) {
		issues := &fakeIssues{labels: map[int][]string{7: {"bug"}}}
		s := &CommitDirectiveScanner{Issues: issues, EscalationLabels: []string{"enhancement"}}

		commits := []Commit{{SHA: "a", Message: "fix #7 crash on empty input"}}
		require.Equal(t, BumpPatch, s.Scan(ctx, commits, ""))
		require.Equal(t, []int{7}, issues.calls)
	})

	t.Run("Escalation label raises the fix to minor", func(t *testing.T) {
		issues := &fakeIssues{labels: map[int][]string{42: {"enhancement"}}}
		s := &CommitDirectiveScanner{Issues: issues, EscalationLabels: []string{"enhancement"}}

		commits := []Commit{{SHA: "a", Message: "fixes #42"}}
		require.Equal(t, BumpMinor, s.Scan(ctx, commits, ""))
	})

	t.Run("Fixes is matched case-insensitively", func(t *testing.T) {
		issues := &fakeIssues{labels: map[int][]string{42: {"enhancement"}}}
		s := &CommitDirectiveScanner{Issues: issues, EscalationLabels: []string{"enhancement"}}

		commits := []Commit{{SHA: "a", Message: "Fixes #42: align buttons"}}
		require.Equal(t, BumpMinor, s.Scan(ctx, commits, ""))
	})

	t.Run("Lookup failure degrades to no escalation", func(t *testing.T) {
		issues := &fakeIssues{err: errors.New("boom")}
		s := &CommitDirectiveScanner{Issues: issues, EscalationLabels: []string{"enhancement"}}

		commits := []Commit{{SHA: "a", Message: "fixes #42"}}
		require.Equal(t, BumpPatch, s.Scan(ctx, commits, ""))
	})

	t.Run("Missing issue degrades to no escalation", func(t *testing.T) {
		issues := &fakeIssues{}
		s := &CommitDirectiveScanner{Issues: issues, EscalationLabels: []string{"enhancement"}}

		commits := []Commit{{SHA: "a", Message: "fixes #404"}}
		require.Equal(t, BumpPatch, s.Scan(ctx, commits, ""))
	})

	t.Run("Zero issue number carries no signal", func(t *testing.T) {
		issues := &fakeIssues{}
		s := &CommitDirectiveScanner{Issues: issues, EscalationLabels: []string{"enhancement"}}

		commits := []Commit{{SHA: "a", Message: "fix #0"}}
		require.Equal(t, BumpNone, s.Scan(ctx, commits, ""))
		require.Empty(t, issues.calls)
	})

	t.Run("Nil issue source still sets the patch floor", func(t *testing.T) {
		s := &CommitDirectiveScanner{EscalationLabels: []string{"enhancement"}}

		commits := []Commit{{SHA: "a", Message: "fixes #13"}}
		require.Equal(t, BumpPatch, s.Scan(ctx, commits, ""))
	})

	t.Run("Accumulated minor suppresses fix lookups", func(t *testing.T) {
		issues := &fakeIssues{labels: map[int][]string{42: {"enhancement"}}}
		s := &CommitDirectiveScanner{Issues: issues, EscalationLabels: []string{"enhancement"}}

		commits := []Commit{
			{SHA: "a", Message: "feature #minor"},
			{SHA: "b", Message: "fixes #42"},
		}
		require.Equal(t, BumpMinor, s.Scan(ctx, commits, ""))
		require.Empty(t, issues.calls)
	})
}
