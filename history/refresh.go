package history

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Lister lists the repositories to keep fresh.
type Lister interface {
	URLs(ctx context.Context) ([]string, error)
}

// Refresher fetches every tracked remote repository on a cron schedule so
// page loads find warm clones.
type Refresher struct {
	Service *Service
	Repos   Lister
	Logger  *zap.Logger
	Timeout time.Duration

	cron *cron.Cron
}

// Start schedules refreshes. An empty spec disables them.
func (r *Refresher) Start(spec string) error {
	if spec == "" {
		return nil
	}
	if r.Logger == nil {
		r.Logger = zap.NewNop()
	}

	r.cron = cron.New()
	if _, err := r.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if r.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.Timeout)
			defer cancel()
		}
		r.RefreshAll(ctx)
	}); err != nil {
		return err
	}
	r.cron.Start()
	r.Logger.Info("Refresher started", zap.String("spec", spec))
	return nil
}

// Stop waits for a running refresh to finish.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

// RefreshAll fetches each remote repository once. It returns how many were
// refreshed.
func (r *Refresher) RefreshAll(ctx context.Context) int {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	urls, err := r.Repos.URLs(ctx)
	if err != nil {
		logger.Error("RefreshAll", zap.Error(err))
		return 0
	}

	refreshed := 0
	for _, u := range urls {
		if !Remote(u) {
			continue
		}
		if _, err := r.Service.Open(ctx, u); err != nil {
			logger.Warn("RefreshAll", zap.String("url", u), zap.Error(err))
			continue
		}
		refreshed++
	}
	return refreshed
}
