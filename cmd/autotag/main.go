package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	autotag "github.com/kfweber/autotag-action"
)

// Version will be set by build process
var Version = "dev"

type CLI struct {
	GithubToken   string `help:"Token for all platform API calls." env:"INPUT_GITHUB-TOKEN"`
	Repository    string `help:"Repository in owner/name form." env:"GITHUB_REPOSITORY"`
	Branch        string `help:"Tag this branch instead of the triggering one." env:"INPUT_BRANCH"`
	Ref           string `hidden:"" env:"GITHUB_REF"`
	HeadSHA       string `hidden:"" env:"GITHUB_SHA"`
	Bump          string `help:"Bump level when no directive is found on a release branch." enum:"patch,minor,major" default:"patch" env:"INPUT_BUMP"`
	ReleaseBranch string `help:"Comma-separated regexes naming release branches." default:"main,master" env:"INPUT_RELEASE-BRANCH"`
	WithV         bool   `help:"Prefix created tags with 'v'." env:"INPUT_WITH-V"`
	Tag           string `help:"Create exactly this tag, skipping version computation." env:"INPUT_TAG"`
	IssueLabels   string `help:"Issue labels that escalate a fix reference to a minor bump." default:"enhancement" env:"INPUT_ISSUE-LABELS"`
	Channel       string `help:"Prerelease label override for non-release branches (default: branch name)." env:"INPUT_CHANNEL"`
	DryRun        bool   `help:"Compute and report the decision without creating the tag." env:"INPUT_DRY-RUN"`
	LocalPath     string `help:"Resolve against a local checkout instead of the platform API." type:"path" env:"INPUT_LOCAL-PATH"`
	ShowVersion   bool   `help:"Show version information." name:"version"`
}

func main() {
	var cli CLI

	kong.Parse(&cli,
		kong.Name("autotag"),
		kong.Description("Compute and create the next release tag from version tags and commit directives"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	if err := cli.Run(); err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func (c *CLI) Run() error {
	if c.ShowVersion {
		fmt.Printf("autotag version %s\n", Version)
		return nil
	}

	ctx := context.Background()

	policy, err := autotag.NewReleasePolicy(c.ReleaseBranch, c.IssueLabels)
	if err != nil {
		return err
	}

	platform, err := c.platform(ctx)
	if err != nil {
		return err
	}

	branch, headSHA, err := c.resolveHead(ctx, platform)
	if err != nil {
		return err
	}

	fallback, err := autotag.ParseBumpLevel(c.Bump)
	if err != nil {
		return err
	}

	resolver := &autotag.VersionResolver{Tags: platform, Commits: platform, Issues: platform}
	decision, err := resolver.Resolve(ctx, autotag.Options{
		Branch:        branch,
		BranchHeadSHA: headSHA,
		Policy:        policy,
		FallbackLevel: fallback,
		Channel:       c.Channel,
		CustomTag:     c.Tag,
	})
	if err != nil {
		return err
	}

	oldTag := ""
	if decision.LatestTag != nil {
		oldTag = decision.LatestTag.Name
	}
	newTag := c.tagName(decision)

	log.Info("resolved next version",
		"branch", branch,
		"old-tag", oldTag,
		"new-tag", newTag,
		"level", decision.Level.String(),
	)

	if err := writeOutput("old-tag", oldTag); err != nil {
		return err
	}
	if err := writeOutput("new-tag", newTag); err != nil {
		return err
	}

	if c.DryRun {
		log.Info("dry run, not creating tag", "tag", newTag)
		return nil
	}

	if err := platform.CreateTagRef(ctx, newTag, headSHA); err != nil {
		return err
	}
	log.Info("created tag", "tag", newTag, "sha", headSHA)

	return nil
}

// platform picks the collaborator implementation: a local checkout when
// --local-path is set, the GitHub API otherwise.
func (c *CLI) platform(ctx context.Context) (autotag.Platform, error) {
	if c.LocalPath != "" {
		return autotag.OpenRepository(c.LocalPath)
	}

	if c.GithubToken == "" {
		return nil, fmt.Errorf("a github token is required unless --local-path is set")
	}

	owner, repo, ok := strings.Cut(c.Repository, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("repository must be owner/name, got %q", c.Repository)
	}

	return autotag.NewGitHubClient(ctx, c.GithubToken, owner, repo), nil
}

// resolveHead determines the branch to tag and its tip commit. A forced
// branch is always looked up; the triggering branch uses the sha the
// environment already carries.
func (c *CLI) resolveHead(ctx context.Context, platform autotag.Platform) (string, string, error) {
	branch := c.Branch
	forced := branch != ""
	if branch == "" {
		branch = strings.TrimPrefix(c.Ref, "refs/heads/")
	}
	if branch == "" {
		return "", "", fmt.Errorf("no branch name available: set --branch or run from a branch ref")
	}

	headSHA := c.HeadSHA
	if forced || headSHA == "" {
		ref, err := platform.FindBranch(ctx, branch)
		if err != nil {
			return "", "", fmt.Errorf("finding branch %q: %w", branch, err)
		}
		if ref == nil {
			return "", "", fmt.Errorf("branch %q: %w", branch, autotag.ErrUnknownBranch)
		}
		headSHA = ref.HeadSHA
	}

	return branch, headSHA, nil
}

// tagName applies the configured prefix. Custom tags are used verbatim.
func (c *CLI) tagName(decision *autotag.VersionDecision) string {
	if c.Tag != "" {
		return decision.Result
	}
	if c.WithV && !strings.HasPrefix(decision.Result, "v") {
		return "v" + decision.Result
	}
	return decision.Result
}

// writeOutput emits a GitHub Actions step output, falling back to stdout
// when no output file is configured.
func writeOutput(name, value string) error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		fmt.Printf("%s=%s\n", name, value)
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening output file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s=%s\n", name, value); err != nil {
		return fmt.Errorf("writing output %s: %w", name, err)
	}
	return nil
}
