package autotag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// GitHubClient implements the collaborator contracts over the GitHub REST
// API. Repository identity is fixed at construction; every list call
// resolves pagination before returning. Transport failures are wrapped as
// ErrRemoteUnavailable.
type GitHubClient struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubClient builds an authenticated client for owner/repo.
func NewGitHubClient(ctx context.Context, token, owner, repo string) *GitHubClient {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, source)

	return &GitHubClient{
		client: github.NewClient(httpClient),
		owner:  owner,
		repo:   repo,
	}
}

// ListTags fetches all tags of the repository.
func (g *GitHubClient) ListTags(ctx context.Context) ([]Tag, error) {
	var tags []Tag
	opts := &github.ListOptions{PerPage: 100}

	for {
		page, resp, err := g.client.Repositories.ListTags(ctx, g.owner, g.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing tags: %w: %w", ErrRemoteUnavailable, err)
		}
		for _, tag := range page {
			tags = append(tags, Tag{Name: tag.GetName(), CommitSHA: tag.GetCommit().GetSHA()})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return tags, nil
}

// ListCommits fetches the history newest-first starting at fromSHA.
func (g *GitHubClient) ListCommits(ctx context.Context, fromSHA string) ([]Commit, error) {
	var commits []Commit
	opts := &github.CommitsListOptions{
		SHA:         fromSHA,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		page, resp, err := g.client.Repositories.ListCommits(ctx, g.owner, g.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing commits from %s: %w: %w", fromSHA, ErrRemoteUnavailable, err)
		}
		for _, commit := range page {
			commits = append(commits, Commit{
				SHA:     commit.GetSHA(),
				Message: commit.GetCommit().GetMessage(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return commits, nil
}

// IssueLabels returns the label names of an issue.
func (g *GitHubClient) IssueLabels(ctx context.Context, number int) ([]string, error) {
	var labels []string
	opts := &github.ListOptions{PerPage: 100}

	for {
		page, resp, err := g.client.Issues.ListLabelsByIssue(ctx, g.owner, g.repo, number, opts)
		if err != nil {
			if isNotFound(err) {
				return nil, fmt.Errorf("issue #%d: %w", number, ErrIssueNotFound)
			}
			return nil, fmt.Errorf("listing labels of issue #%d: %w: %w", number, ErrRemoteUnavailable, err)
		}
		for _, label := range page {
			labels = append(labels, label.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return labels, nil
}

// FindBranch resolves a branch name to its head commit, or nil when the
// branch does not exist.
func (g *GitHubClient) FindBranch(ctx context.Context, name string) (*Branch, error) {
	ref, _, err := g.client.Git.GetRef(ctx, g.owner, g.repo, "heads/"+name)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolving branch %q: %w: %w", name, ErrRemoteUnavailable, err)
	}
	return &Branch{Name: name, HeadSHA: ref.GetObject().GetSHA()}, nil
}

// CreateTagRef creates refs/tags/<name> at the given commit.
func (g *GitHubClient) CreateTagRef(ctx context.Context, name, commitSHA string) error {
	ref := &github.Reference{
		Ref:    github.String("refs/tags/" + name),
		Object: &github.GitObject{SHA: github.String(commitSHA)},
	}

	_, _, err := g.client.Git.CreateRef(ctx, g.owner, g.repo, ref)
	if err != nil {
		if isAlreadyExists(err) {
			return fmt.Errorf("tag %q: %w", name, ErrTagConflict)
		}
		return fmt.Errorf("creating tag %q: %w: %w", name, ErrRemoteUnavailable, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil &&
		ghErr.Response.StatusCode == http.StatusNotFound
}

// isAlreadyExists matches the 422 GitHub answers when a ref name is taken.
func isAlreadyExists(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil &&
		ghErr.Response.StatusCode == http.StatusUnprocessableEntity &&
		strings.Contains(strings.ToLower(ghErr.Message), "already exists")
}
