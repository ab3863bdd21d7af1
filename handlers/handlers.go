package handlers

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/quesurifn/git-calendar-server/store"
	"github.com/quesurifn/git-calendar-server/types"
	"go.uber.org/zap"
)

// EventSource turns a repository address into calendar values.
type EventSource interface {
	Events(ctx context.Context, url string) ([]types.CalendarValue, error)
}

// RepoStore remembers which repositories were viewed.
type RepoStore interface {
	Touch(ctx context.Context, url, name string, events int, at time.Time) error
	List(ctx context.Context) ([]store.Repo, error)
}

type Handlers struct {
	Logger  *zap.Logger
	AppName string
	// RepoURL is the repository served by / and the unparameterised API.
	RepoURL string
	// BaseURL is where pages fetch their own API from.
	BaseURL string
	Client  *resty.Client

	Source   EventSource
	Repos    RepoStore
	Sessions *session.Store

	Location  *time.Location
	WeekStart time.Weekday
	Now       func() time.Time

	// Scheme is the colour scheme pages start in.
	Scheme     string
	// AllowLocal lets ?url= name file: repositories.
	AllowLocal bool
	// FeedWindow is how far ahead and behind an ICS feed is expanded.
	FeedWindow time.Duration
}

// Register mounts every route on app. api runs before the /api handlers.
func (h *Handlers) Register(app *fiber.App, api ...fiber.Handler) {
	app.Get("/", h.IndexHandler)
	app.Get("/repo", h.RepoPageHandler)
	app.Get("/ics", h.FeedPageHandler)
	app.Get("/repos", h.ReposHandler)
	app.Post("/theme/toggle", h.ToggleThemeHandler)
	app.Get("/health", h.HealthHandler)

	group := app.Group("/api", api...)
	group.Get("/data", h.DataHandler)
	group.Get("/repo", h.RepoHandler)
	group.Get("/repo.ics", h.RepoICSHandler)
	group.Get("/ics", h.FeedHandler)
	group.Get("/repo-name", h.RepoNameHandler)
	group.Get("/repo-url", h.RepoURLHandler)
}

func (h *Handlers) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func (h *Handlers) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func (h *Handlers) location() *time.Location {
	if h.Location == nil {
		return time.Local
	}
	return h.Location
}

func (h *Handlers) feedWindow() time.Duration {
	if h.FeedWindow <= 0 {
		return 365 * 24 * time.Hour
	}
	return h.FeedWindow
}
