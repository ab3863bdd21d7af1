package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/quesurifn/git-calendar-server/page"
	"github.com/quesurifn/git-calendar-server/types"
	"go.uber.org/zap"
)

const (
	StatusGenerated = "This report was automatically generated"
	StatusFailed    = "Failed to get Git Repo! (Maybe try refreshing?)"
	PrintOnlyClass  = "print-only"
)

// Status is the text element a load reports its outcome on.
type Status interface {
	SetText(text string)
	AddClass(class string)
	Append(children ...*page.Element)
}

// Loader fetches an event list, converts its timestamps and hands it to a
// widget.
type Loader struct {
	Client   *resty.Client
	Widget   Widget
	Status   Status
	Logger   *zap.Logger
	Location *time.Location
	Tag      Tag

	// Templates are passed through to the widget untouched.
	Templates Templates

	mu         sync.Mutex
	clientOnce sync.Once
}

func (l *Loader) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

func (l *Loader) client() *resty.Client {
	l.clientOnce.Do(func() {
		if l.Client == nil {
			l.Client = resty.New()
		}
	})
	return l.Client
}

// Load fetches endpointURL and renders it. Failures end up in the status
// element and the log, never in the caller.
func (l *Loader) Load(ctx context.Context, endpointURL string) {
	logger := l.logger().With(
		zap.String("load", uuid.NewString()),
		zap.String("url", endpointURL),
	)

	err := l.load(ctx, endpointURL)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Status == nil {
		if err != nil {
			logger.Error("Load", zap.Error(err))
		}
		return
	}

	if err != nil {
		logger.Error("Load", zap.Error(err))
		l.Status.SetText(StatusFailed)
		l.Status.Append(
			page.NewElement("br"),
			page.Text("b", err.Error(), "style", "color: red;"),
		)
		return
	}

	logger.Debug("Load", zap.String("status", StatusGenerated))
	l.Status.SetText(StatusGenerated)
	l.Status.AddClass(PrintOnlyClass)
}

func (l *Loader) load(ctx context.Context, endpointURL string) error {
	body, err := l.fetch(ctx, endpointURL)
	if err != nil {
		return err
	}

	raw, err := Parse(body)
	if err != nil {
		return err
	}

	events := Transform(raw, l.Location, l.Tag)

	return l.render(Options{
		InitialView: ViewMonth,
		InitialDate: InitialDate(events),
		Events:      events,
		Templates:   l.Templates,
	})
}

func (l *Loader) fetch(ctx context.Context, endpointURL string) ([]byte, error) {
	resp, err := l.client().R().SetContext(ctx).Get(endpointURL)
	if err != nil {
		return nil, &NetworkError{URL: endpointURL, Err: err}
	}
	return resp.Body(), nil
}

func (l *Loader) render(opts Options) (err error) {
	if l.Widget == nil {
		return &RenderError{Err: errors.New("no calendar widget")}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = &RenderError{Err: fmt.Errorf("widget panicked: %v", r)}
		}
	}()

	if err := l.Widget.Render(opts); err != nil {
		return &RenderError{Err: err}
	}
	return nil
}

// Parse decodes a JSON array of events.
func Parse(body []byte) ([]types.RawEvent, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(body, &elems); err != nil {
		return nil, &ParseError{Err: err}
	}
	if elems == nil {
		return nil, &ParseError{Err: errors.New("body is not an array")}
	}

	events := make([]types.RawEvent, len(elems))
	for i, elem := range elems {
		if err := json.Unmarshal(elem, &events[i]); err != nil {
			return nil, &ParseError{Err: fmt.Errorf("event %d: %w", i, err)}
		}
	}
	return events, nil
}
