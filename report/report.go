package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	DefaultWidth   = 1280
	DefaultHeight  = 960
	DefaultTimeout = 30 * time.Second

	readySelector = `[data-ready="true"]`
)

var (
	ErrNoURL    = errors.New("report: URL is required")
	ErrNoOutput = errors.New("report: OutputPath is required")
)

type Options struct {
	URL        string
	OutputPath string
	Width      int
	Height     int
	Timeout    time.Duration

	// ExecPath overrides the browser binary chromedp would find on PATH.
	ExecPath string
}

func (o Options) withDefaults() (Options, error) {
	if o.URL == "" {
		return o, ErrNoURL
	}
	if o.OutputPath == "" {
		return o, ErrNoOutput
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o, nil
}

// Capture opens the calendar page in headless Chrome, waits until the
// widget reports data-ready and writes a full page PNG to OutputPath.
func Capture(ctx context.Context, opts Options) error {
	opts, err := opts.withDefaults()
	if err != nil {
		return err
	}

	if opts.ExecPath != "" {
		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.ExecPath(opts.ExecPath))
		var cancelAlloc context.CancelFunc
		ctx, cancelAlloc = chromedp.NewExecAllocator(ctx, allocOpts...)
		defer cancelAlloc()
	}

	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, opts.Timeout)
	defer cancelTimeout()

	var png []byte
	if err := chromedp.Run(ctx,
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(readySelector, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	); err != nil {
		return fmt.Errorf("report: capture %s: %w", opts.URL, err)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", opts.OutputPath, err)
	}
	return nil
}
