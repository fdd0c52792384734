package autotag

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"
)

var testSignature = &object.Signature{
	Name:  "test",
	Email: "test@example.com",
	When:  time.Now(),
}

// testRepoCreate creates a new in-memory git repository for testing
func testRepoCreate(t *testing.T) *git.Repository {
	t.Helper()

	repo, err := git.Init(memory.NewStorage(), memfs.New())
	require.NoError(t, err)
	return repo
}

// testRepoCommit writes a file and commits it, returning the commit sha
func testRepoCommit(t *testing.T, repo *git.Repository, filename, message string) string {
	t.Helper()

	workTree, err := repo.Worktree()
	require.NoError(t, err)

	writeFile(t, workTree.Filesystem, filename, "content for "+filename)

	_, err = workTree.Add(filename)
	require.NoError(t, err)

	hash, err := workTree.Commit(message, &git.CommitOptions{Author: testSignature})
	require.NoError(t, err)

	return hash.String()
}

// testRepoTag creates a lightweight tag at the given commit
func testRepoTag(t *testing.T, repo *git.Repository, name, sha string) {
	t.Helper()

	_, err := repo.CreateTag(name, plumbing.NewHash(sha), nil)
	require.NoError(t, err)
}

// writeFile writes content to a file in the given filesystem
func writeFile(t *testing.T, fs billy.Filesystem, filename, content string) {
	t.Helper()

	file, err := fs.Create(filename)
	require.NoError(t, err)
	defer file.Close()

	_, err = file.Write([]byte(content))
	require.NoError(t, err)
}
