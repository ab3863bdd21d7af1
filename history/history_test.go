package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"git@github.com:Bobuk/GCalSync.git":     "https://github.com/bobuk/gcalsync",
		"https://github.com/Bobuk/GCalSync.git": "https://github.com/bobuk/gcalsync",
		"https://github.com/Bobuk/GCalSync":     "https://github.com/Bobuk/GCalSync",
		"git@xyz:your/project":                  "https://xyz/your/project",
		"  file:.  ":                            "file:.",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeURL(in), in)
	}
}

func TestRepoNameAndURL(t *testing.T) {
	assert.Equal(t, "LOCAL REPO", RepoName("file:."))
	assert.Equal(t, "", RepoURL("file:."))

	assert.Equal(t, "bobuk/gcalsync", RepoName("git@github.com:bobuk/gcalsync.git"))
	assert.Equal(t, "https://github.com/bobuk/gcalsync", RepoURL("git@github.com:bobuk/gcalsync.git"))
	assert.Equal(t, "user/site", RepoName("https://example.com/user/site.github.io"))
}

func TestRemote(t *testing.T) {
	assert.True(t, Remote("https://github.com/a/b"))
	assert.True(t, Remote("git@github.com:a/b"))
	assert.False(t, Remote("file:."))
	assert.False(t, Remote("ftp://x/y"))
}

func TestPredictor(t *testing.T) {
	p := NewPredictor()
	assert.True(t, p.Insert(LinesAdded, 5, 1000))
	assert.False(t, p.Insert(LinesAdded, 5, 1000))

	p = NewPredictor()
	p.Insert(LinesAdded, 5, 1000)
	assert.Equal(t, int64(1000), p.Predict([]Sample{{LinesAdded, 5}}))
	assert.Equal(t, int64(200), p.Predict([]Sample{{LinesAdded, 1}}))
	assert.Equal(t, int64(1000), p.Predict([]Sample{{LinesAdded, 50}}), "clamped to the largest seen")
	assert.Equal(t, int64(0), p.Predict([]Sample{{FilesChanged, 3}}), "no history")
}

func TestCalculate(t *testing.T) {
	commits := []Commit{
		{Message: "third\n", Time: 10000, Parent: 9000, Files: 1, Added: 10},
		{Message: "second", Time: 9000, Parent: 8000, Files: 2, Added: 20},
		{Message: "first", Time: 8000, Parent: 0, Files: 1, Added: 5},
	}

	values := Calculate(commits, 5000)
	require.Len(t, values, 3)

	assert.Equal(t, "third", values[0].Title)
	assert.False(t, values[0].Projected)
	assert.Equal(t, int64(1000), values[0].DeltaT)
	assert.False(t, values[1].Projected)

	// files: 1 * (2000/3) = 666, lines added: 5 * (2000/30) = 330, no lines removed.
	last := values[2]
	assert.True(t, last.Projected)
	assert.Equal(t, int64(498), last.DeltaT)
	assert.Equal(t, int64(8000-498), last.Start)
	assert.Equal(t, int64(8000), last.End)
}

func TestSplitSessions(t *testing.T) {
	items := []annotated{{}, {}, {}, {}}
	items[1].value.DeltaT = 10
	groups := splitSessions(items, 10)

	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 2)
	assert.Len(t, groups[1], 2)
	assert.Empty(t, splitSessions(nil, 10))
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, content, msg string, when time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)

	sig := &object.Signature{Name: "Dev", Email: "dev@example.com", When: when}
	_, err = wt.Commit(msg, &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)
}

func TestServiceEventsFromLocalRepo(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	base := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	commitFile(t, repo, dir, "a.txt", "one\n", "init", base)
	commitFile(t, repo, dir, "a.txt", "one\ntwo\n", "add two", base.Add(30*time.Minute))
	commitFile(t, repo, dir, "b.txt", "x\ny\nz\n", "add b", base.Add(time.Hour))

	svc := NewService(Options{TimeAllowed: 18000}, nil)
	values, err := svc.Events(context.Background(), "file://"+dir)
	require.NoError(t, err)

	// The root commit has no parent and is left out.
	require.Len(t, values, 2)
	assert.Equal(t, "add b", values[0].Title)
	assert.Equal(t, base.Add(time.Hour).Unix(), values[0].End)
	assert.Equal(t, "Dev", values[0].Author)
	assert.Equal(t, "add two", values[1].Title)
	assert.True(t, values[1].Projected)
	assert.False(t, values[0].Projected)
}

func TestServiceRejectsUnknownScheme(t *testing.T) {
	svc := NewService(Options{}, nil)
	_, err := svc.Events(context.Background(), "ftp://example.com/repo")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

type staticLister []string

func (s staticLister) URLs(context.Context) ([]string, error) { return s, nil }

func TestRefreshAllSkipsLocalRepos(t *testing.T) {
	r := &Refresher{Service: NewService(Options{TmpDir: t.TempDir()}, nil), Repos: staticLister{"file:."}}
	assert.Equal(t, 0, r.RefreshAll(context.Background()))
}

func TestRefresherStartValidatesSpec(t *testing.T) {
	r := &Refresher{Service: NewService(Options{}, nil), Repos: staticLister{}}
	assert.NoError(t, r.Start(""))
	assert.Error(t, r.Start("not a spec"))

	require.NoError(t, r.Start("@every 1h"))
	r.Stop()
}
