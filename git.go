// This file contains code adapted from pulumictl (https://github.com/pulumi/pulumictl)
// which is licensed under the Apache License 2.0. See NOTICE file for full attribution.
package autotag

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// LocalRepository serves the collaborator contracts from an on-disk git
// checkout, for dry runs and offline resolution. There is no local source
// for issue metadata, so IssueLabels always reports the issue as missing and
// directive escalation stays off.
type LocalRepository struct {
	repo *git.Repository
}

// OpenRepository opens the git repository at or above path.
func OpenRepository(path string) (*LocalRepository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	return &LocalRepository{repo: repo}, nil
}

// NewLocalRepository wraps an already-open go-git repository.
func NewLocalRepository(repo *git.Repository) *LocalRepository {
	return &LocalRepository{repo: repo}
}

// ListTags returns every tag with the commit it points at. Annotated tags
// are resolved to their target commit so the sha always names a commit, not
// a tag object.
func (l *LocalRepository) ListTags(ctx context.Context) ([]Tag, error) {
	refs, err := l.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	var tags []Tag
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}

		sha := ref.Hash()
		obj, err := l.repo.TagObject(ref.Hash())
		switch {
		case err == nil:
			sha = obj.Target
		case errors.Is(err, plumbing.ErrObjectNotFound):
			// Lightweight tag, the ref already names the commit.
		default:
			return err
		}

		tags = append(tags, Tag{Name: ref.Name().Short(), CommitSHA: sha.String()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	return tags, nil
}

// ListCommits walks the history newest-first starting at fromSHA.
func (l *LocalRepository) ListCommits(ctx context.Context, fromSHA string) ([]Commit, error) {
	start, err := l.repo.CommitObject(plumbing.NewHash(fromSHA))
	if err != nil {
		return nil, fmt.Errorf("resolving commit %s: %w", fromSHA, err)
	}

	var commits []Commit
	walker := object.NewCommitPreorderIter(start, nil, nil)
	err = walker.ForEach(func(commit *object.Commit) error {
		commits = append(commits, Commit{SHA: commit.Hash.String(), Message: commit.Message})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking commits: %w", err)
	}

	return commits, nil
}

// IssueLabels always fails with ErrIssueNotFound: a local checkout carries
// no issue tracker, and the scanner treats that as "no escalation".
func (l *LocalRepository) IssueLabels(ctx context.Context, number int) ([]string, error) {
	return nil, fmt.Errorf("issue #%d: %w", number, ErrIssueNotFound)
}

// FindBranch resolves a local branch name to its tip.
func (l *LocalRepository) FindBranch(ctx context.Context, name string) (*Branch, error) {
	ref, err := l.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving branch %q: %w", name, err)
	}
	return &Branch{Name: name, HeadSHA: ref.Hash().String()}, nil
}

// CreateTagRef creates a lightweight tag at the given commit.
func (l *LocalRepository) CreateTagRef(ctx context.Context, name, commitSHA string) error {
	_, err := l.repo.CreateTag(name, plumbing.NewHash(commitSHA), nil)
	if errors.Is(err, git.ErrTagExists) {
		return fmt.Errorf("tag %q: %w", name, ErrTagConflict)
	}
	if err != nil {
		return fmt.Errorf("creating tag %q: %w", name, err)
	}
	return nil
}
