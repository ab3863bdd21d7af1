package history

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var scpLike = regexp.MustCompile(`^git@(?P<domain>[^:]+):(?P<path>.+)$`)

// NormalizeURL trims a trailing .git, lowercases the address and rewrites
// git@host:path addresses to https://host/path.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, ".git") {
		raw = strings.ToLower(strings.TrimSuffix(raw, ".git"))
	}
	if m := scpLike.FindStringSubmatch(raw); m != nil {
		raw = fmt.Sprintf("https://%s/%s", m[1], m[2])
	}
	return raw
}

// ParseURL normalises and parses a repository address.
func ParseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(NormalizeURL(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL from: `%s`: %w", raw, err)
	}
	return u, nil
}

// RepoName is the display name of a repository address.
func RepoName(raw string) string {
	u, err := ParseURL(raw)
	if err != nil {
		return raw
	}
	if u.Scheme == "file" {
		return "LOCAL REPO"
	}
	name, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), ".")
	return name
}

// RepoURL is the browsable address of a repository, or "" for local ones.
func RepoURL(raw string) string {
	u, err := ParseURL(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.String()
}
