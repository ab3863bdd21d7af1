package calendar

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Heading is the element naming the repository on the page.
type Heading interface {
	SetText(text string)
	SetAttr(key, value string)
}

// LoadHeading fills heading from the repo-name and repo-url endpoints under
// baseURL. The name is used verbatim; an empty URL leaves the link unset.
func (l *Loader) LoadHeading(ctx context.Context, baseURL string, heading Heading) error {
	base := strings.TrimSuffix(baseURL, "/")

	name, err := l.fetch(ctx, base+"/api/repo-name")
	if err != nil {
		return err
	}
	href, err := l.fetch(ctx, base+"/api/repo-url")
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	heading.SetText(string(name))
	if len(href) > 0 {
		heading.SetAttr("href", string(href))
	}

	l.logger().Debug("LoadHeading", zap.ByteString("name", name), zap.ByteString("href", href))
	return nil
}
