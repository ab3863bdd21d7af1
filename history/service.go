package history

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/quesurifn/git-calendar-server/types"
	"go.uber.org/zap"
)

var ErrUnsupportedScheme = errors.New("unsupported scheme")

type Options struct {
	// TmpDir holds the clones of remote repositories.
	TmpDir string
	// Depth limits clones; 0 clones everything.
	Depth int
	// TimeAllowed is the longest gap in seconds between two commits of one
	// working session.
	TimeAllowed int64
}

// Service produces calendar values from repository histories.
type Service struct {
	Options Options
	Logger  *zap.Logger

	locks sync.Map
}

func NewService(opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Options: opts, Logger: logger}
}

// Events opens or fetches the repository at raw and returns its commits as
// calendar values, newest first.
func (s *Service) Events(ctx context.Context, raw string) ([]types.CalendarValue, error) {
	repo, err := s.Open(ctx, raw)
	if err != nil {
		return nil, err
	}

	commits, err := Walk(ctx, repo)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("Events", zap.String("url", raw), zap.Int("commits", len(commits)))
	return Calculate(commits, s.Options.TimeAllowed), nil
}

// Open returns the repository behind raw. Remote repositories are cloned
// into TmpDir on first use and fetched afterwards.
func (s *Service) Open(ctx context.Context, raw string) (*git.Repository, error) {
	u, err := ParseURL(raw)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "file":
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		if path == "" {
			path = "."
		}
		repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
		if err != nil {
			return nil, fmt.Errorf("can't find the repo directory %s: %w", path, err)
		}
		return repo, nil
	case "http", "https", "ssh":
		return s.sync(ctx, u)
	default:
		return nil, fmt.Errorf("%w: %q (source URL: %s)", ErrUnsupportedScheme, u.Scheme, raw)
	}
}

// Remote reports whether raw names a repository that has to be fetched.
func Remote(raw string) bool {
	u, err := ParseURL(raw)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ssh":
		return true
	}
	return false
}

func (s *Service) lock(dir string) func() {
	v, _ := s.locks.LoadOrStore(dir, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) sync(ctx context.Context, u *url.URL) (*git.Repository, error) {
	dir := filepath.Join(s.Options.TmpDir, strings.ToLower(u.Host+u.Path))
	defer s.lock(dir)()

	logger := s.Logger.With(zap.String("url", u.String()), zap.String("dir", dir))

	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		logger.Debug("Cloning for the first time")
		repo, err := git.PlainCloneContext(ctx, dir, true, &git.CloneOptions{
			URL:   u.String(),
			Depth: s.Options.Depth,
		})
		if err != nil {
			_ = os.RemoveAll(dir)
			return nil, fmt.Errorf("can't clone repo to %s: %w", dir, err)
		}
		logger.Info("Repo cloned")
		return repo, nil
	}

	repo, err := git.PlainOpen(dir)
	if err != nil {
		return nil, fmt.Errorf("can't open repo in %s: %w", dir, err)
	}

	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: git.DefaultRemoteName,
		RefSpecs:   []config.RefSpec{"+refs/heads/*:refs/heads/*"},
		Depth:      s.Options.Depth,
		Force:      true,
	})
	switch {
	case err == nil:
		logger.Debug("Fetched updates")
	case errors.Is(err, git.NoErrAlreadyUpToDate):
	default:
		// A stale clone is still worth showing.
		logger.Warn("Can't fetch from remote", zap.Error(err))
	}

	return repo, nil
}

// Walk visits the history from HEAD in pre-order, each commit once. Commits
// without a readable parent, such as the root or a shallow boundary, are
// skipped along with everything behind them.
func Walk(ctx context.Context, repo *git.Repository) ([]Commit, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("can't resolve HEAD: %w", err)
	}
	tip, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("can't read HEAD commit: %w", err)
	}

	var commits []Commit
	seen := make(map[plumbing.Hash]bool)
	stack := []*object.Commit{tip}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[c.Hash] {
			continue
		}
		seen[c.Hash] = true

		parent, err := c.Parent(0)
		if err != nil {
			continue
		}

		stats, err := c.StatsContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("can't diff %s: %w", c.Hash, err)
		}

		commit := Commit{
			Message: c.Message,
			Author:  c.Author.Name,
			Time:    c.Committer.When.Unix(),
			Parent:  parent.Committer.When.Unix(),
			Files:   int64(len(stats)),
		}
		for _, st := range stats {
			commit.Added += int64(st.Addition)
			commit.Removed += int64(st.Deletion)
		}
		commits = append(commits, commit)

		for i := len(c.ParentHashes) - 1; i >= 0; i-- {
			p, err := repo.CommitObject(c.ParentHashes[i])
			if err != nil {
				continue
			}
			stack = append(stack, p)
		}
	}

	return commits, nil
}
