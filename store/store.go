package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaName = "gitcal"

// Repo is a repository someone has looked at.
type Repo struct {
	URL        string
	Name       string
	Events     int
	LastViewed time.Time
}

// Store records viewed repositories in sqlite.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS repos (
		url TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		events INTEGER NOT NULL DEFAULT 0,
		last_viewed INTEGER NOT NULL
	)`,
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS db_version (
		name TEXT PRIMARY KEY,
		version INTEGER
	)`); err != nil {
		return fmt.Errorf("create db_version table: %w", err)
	}

	var version int
	err := s.db.QueryRowContext(ctx, `SELECT version FROM db_version WHERE name = ?`, schemaName).Scan(&version)
	if err == sql.ErrNoRows {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO db_version (name, version) VALUES (?, 0)`, schemaName); err != nil {
			return fmt.Errorf("initialize db_version table: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("read db_version: %w", err)
	}

	for ; version < len(migrations); version++ {
		if _, err := s.db.ExecContext(ctx, migrations[version]); err != nil {
			return fmt.Errorf("migration %d: %w", version+1, err)
		}
		if _, err := s.db.ExecContext(ctx, `UPDATE db_version SET version = ? WHERE name = ?`, version+1, schemaName); err != nil {
			return fmt.Errorf("migration %d: %w", version+1, err)
		}
	}
	return nil
}

// Touch inserts url or refreshes its name, event count and view time.
func (s *Store) Touch(ctx context.Context, url, name string, events int, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO repos (url, name, events, last_viewed) VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET name = excluded.name, events = excluded.events, last_viewed = excluded.last_viewed`,
		url, name, events, at.Unix())
	if err != nil {
		return fmt.Errorf("touch %s: %w", url, err)
	}
	return nil
}

// List returns every repo, most recently viewed first.
func (s *Store) List(ctx context.Context) ([]Repo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url, name, events, last_viewed FROM repos ORDER BY last_viewed DESC, url`)
	if err != nil {
		return nil, fmt.Errorf("list repos: %w", err)
	}
	defer rows.Close()

	var repos []Repo
	for rows.Next() {
		var r Repo
		var viewed int64
		if err := rows.Scan(&r.URL, &r.Name, &r.Events, &viewed); err != nil {
			return nil, err
		}
		r.LastViewed = time.Unix(viewed, 0)
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

func (s *Store) URLs(ctx context.Context) ([]string, error) {
	repos, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(repos))
	for _, r := range repos {
		urls = append(urls, r.URL)
	}
	return urls, nil
}
