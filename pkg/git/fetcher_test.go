package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// initTestRepo creates a throwaway repository with a single commit holding the
// given files and returns it together with the commit hash.
func initTestRepo(t *testing.T, files map[string]string) (*gogit.Repository, string) {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	for name, data := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
		_, err = wt.Add(name)
		require.NoError(t, err)
	}

	hash, err := wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "tester",
			Email: "tester@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)

	return repo, hash.String()
}

func TestCollectFiles(t *testing.T) {
	repo, commit := initTestRepo(t, map[string]string{
		"index.html":    "<h1>hi</h1>",
		"docs/page.txt": "docs",
	})

	snapshot, err := collectFiles(repo, 0)
	require.NoError(t, err)

	assert.Equal(t, commit, snapshot.Commit)
	require.Len(t, snapshot.Files, 2)

	byPath := map[string]File{}
	for _, file := range snapshot.Files {
		byPath[file.Path] = file
	}
	assert.Equal(t, "<h1>hi</h1>", string(byPath["index.html"].Data))
	assert.Equal(t, "docs", string(byPath["docs/page.txt"].Data))
	assert.NotEmpty(t, byPath["index.html"].Hash)
	assert.NotEqual(t, byPath["index.html"].Hash, byPath["docs/page.txt"].Hash)
}

func TestCollectFilesMaxBytes(t *testing.T) {
	repo, _ := initTestRepo(t, map[string]string{
		"a.txt": "aaaa",
		"b.txt": "bbbb",
	})

	_, err := collectFiles(repo, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceed the limit of 5 bytes")

	snapshot, err := collectFiles(repo, 8)
	require.NoError(t, err)
	assert.Len(t, snapshot.Files, 2)
}

func TestFetchValidation(t *testing.T) {
	fetcher := NewFetcher(zaptest.NewLogger(t))

	_, err := fetcher.Fetch(t.Context(), Options{WorkDir: t.TempDir()})
	require.Error(t, err)

	_, err = fetcher.Fetch(t.Context(), Options{Repo: "https://git.example.com/site.git"})
	require.Error(t, err)
}

func TestFetchCleansWorkDir(t *testing.T) {
	fetcher := NewFetcher(zaptest.NewLogger(t))
	workDir := filepath.Join(t.TempDir(), "scratch")

	_, err := fetcher.Fetch(t.Context(), Options{
		Repo:    filepath.Join(t.TempDir(), "does-not-exist"),
		WorkDir: workDir,
	})
	require.Error(t, err)

	_, err = os.Stat(workDir)
	assert.True(t, os.IsNotExist(err))
}
