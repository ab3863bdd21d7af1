package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	h "github.com/quesurifn/git-calendar-server/handlers"
	"github.com/quesurifn/git-calendar-server/history"
	"github.com/quesurifn/git-calendar-server/page"
	"github.com/quesurifn/git-calendar-server/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the calendar server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&overrides.port, "port", "p", "", "app server port")
	serveCmd.Flags().BoolVar(&overrides.allowLocal, "allow-local", false, "allow file: URLs in /repo?url=")
	addRepoFlags(serveCmd)
}

func serve(ctx context.Context) error {
	loc, err := location()
	if err != nil {
		return err
	}

	repos, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer repos.Close()

	service := newService()

	refresher := &history.Refresher{
		Service: service,
		Repos:   repos,
		Logger:  logger,
		Timeout: cfg.Refresh.Timeout,
	}
	if err := refresher.Start(cfg.Refresh.Cron); err != nil {
		return err
	}
	defer refresher.Stop()

	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = "http://127.0.0.1:" + cfg.Server.Port
	}

	handlers := &h.Handlers{
		Logger:  logger,
		AppName: cfg.AppName,
		RepoURL: cfg.Repo.URL,
		BaseURL: baseURL,
		Client:  resty.New().SetTimeout(30 * time.Second),
		Source:  service,
		Repos:   repos,
		Sessions: session.New(session.Config{
			CookieSessionOnly: true,
			CookieHTTPOnly:    true,
			CookieSameSite:    "Lax",
			KeyGenerator:      uuid.NewString,
		}),
		Location:   loc,
		WeekStart:  time.Weekday(cfg.Server.WeekStart % 7),
		Scheme:     cfg.Server.Scheme,
		AllowLocal: cfg.Server.AllowLocal,
		FeedWindow: cfg.Feed.Window,
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: cfg.Env == "production",
	})

	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger,
	}))
	app.Use(compress.New())
	app.Use("/static", filesystem.New(filesystem.Config{
		Root: http.FS(page.Static()),
	}))

	apiLimiter := limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.IP() == "127.0.0.1"
		},
		Max:        cfg.Limiter.Max,
		Expiration: cfg.Limiter.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			if fwd := c.Get("x-forwarded-for"); fwd != "" {
				return fwd
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
			})
		},
	})

	handlers.Register(app, apiLimiter)
	app.Use(handlers.NotFoundHandler)

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("port", cfg.Server.Port), zap.String("repo", cfg.Repo.URL))
		errc <- app.Listen(":" + cfg.Server.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}
