package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/quesurifn/git-calendar-server/history"
	"github.com/quesurifn/git-calendar-server/ics"
	"github.com/quesurifn/git-calendar-server/types"
	"go.uber.org/zap"
)

func (h *Handlers) RepoNameHandler(c *fiber.Ctx) error {
	return c.SendString(history.RepoName(h.RepoURL))
}

func (h *Handlers) RepoURLHandler(c *fiber.Ctx) error {
	return c.SendString(history.RepoURL(h.RepoURL))
}

// DataHandler serves the configured repository's events.
func (h *Handlers) DataHandler(c *fiber.Ctx) error {
	values, err := h.events(c.UserContext(), h.RepoURL)
	if err != nil {
		return err
	}
	return c.JSON(values)
}

// RepoHandler serves the events of the repository named by ?url=.
func (h *Handlers) RepoHandler(c *fiber.Ctx) error {
	raw, err := h.repoQuery(c)
	if err != nil {
		return err
	}

	values, err := h.events(c.UserContext(), raw)
	if err != nil {
		return err
	}

	h.touch(c.UserContext(), raw, len(values))
	return c.JSON(values)
}

func (h *Handlers) RepoICSHandler(c *fiber.Ctx) error {
	raw, err := h.repoQuery(c)
	if err != nil {
		return err
	}

	values, err := h.events(c.UserContext(), raw)
	if err != nil {
		return err
	}

	name := history.RepoName(raw)
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", "commits.ics"))
	return c.SendString(ics.Export(name, values))
}

// FeedHandler downloads the ICS feed at ?url= and serves its events around
// now in the wire event shape.
func (h *Handlers) FeedHandler(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return badRequest("Invalid get request parameters!", "missing url, query: "+string(c.Request().URI().QueryString()))
	}

	h.logger().Info("FeedHandler", zap.String("url", url))

	data, err := ics.Download(c.UserContext(), h.Client, url)
	if err != nil {
		return &AppError{Cause: err.Error(), Message: "Failed to download calendar!", Status: fiber.StatusBadGateway}
	}

	now := h.now()
	events, err := ics.Parse(data, now.Add(-h.feedWindow()), now.Add(h.feedWindow()))
	if err != nil {
		return badRequest("Failed to parse calendar!", err.Error())
	}
	if events == nil {
		events = []types.FeedEvent{}
	}
	return c.JSON(events)
}

func (h *Handlers) HealthHandler(c *fiber.Ctx) error {
	return c.JSON(types.BaseResponse[string]{Data: "ok", Message: h.AppName})
}

// repoQuery reads ?url=. Local repositories are refused unless AllowLocal
// is set.
func (h *Handlers) repoQuery(c *fiber.Ctx) (string, error) {
	raw := c.Query("url")
	if raw == "" {
		return "", badRequest("Invalid get request parameters!",
			"Invalid get request parameters! Query: `"+string(c.Request().URI().QueryString())+"`")
	}
	u, err := history.ParseURL(raw)
	if err != nil {
		msg := fmt.Sprintf("Failed to parse URL from: `%s`", raw)
		return "", badRequest(msg, msg)
	}
	if u.Scheme == "file" && !h.AllowLocal {
		return "", badRequest("Can't use scheme on URL: file", "local repositories are disabled: "+raw)
	}
	return raw, nil
}

func (h *Handlers) events(ctx context.Context, raw string) ([]types.CalendarValue, error) {
	if h.Source == nil {
		return nil, &AppError{Cause: "no event source configured", Message: "Failed to get Git Repo!", Status: fiber.StatusInternalServerError}
	}

	values, err := h.Source.Events(ctx, raw)
	switch {
	case errors.Is(err, history.ErrUnsupportedScheme):
		u, _ := history.ParseURL(raw)
		scheme := ""
		if u != nil {
			scheme = u.Scheme
		}
		return nil, badRequest("Can't use scheme on URL: "+scheme, err.Error())
	case err != nil:
		return nil, &AppError{Cause: err.Error(), Message: "Failed to get Git Repo!", Status: fiber.StatusInternalServerError}
	}

	if values == nil {
		values = []types.CalendarValue{}
	}
	return values, nil
}

func (h *Handlers) touch(ctx context.Context, raw string, events int) {
	if h.Repos == nil {
		return
	}
	url := history.NormalizeURL(raw)
	if err := h.Repos.Touch(ctx, url, history.RepoName(url), events, h.now()); err != nil {
		h.logger().Warn("touch", zap.String("url", url), zap.Error(err))
	}
}
