package calendar

import (
	"errors"
	"fmt"
	"net/url"
)

// NetworkError means the data endpoint could not be reached.
type NetworkError struct {
	URL string
	Err error
}

// Error names only the path of URL. The message is shown on the page, and
// the host is the server's own address.
func (e *NetworkError) Error() string {
	cause := e.Err
	var uerr *url.Error
	if errors.As(cause, &uerr) {
		cause = uerr.Err
	}
	return fmt.Sprintf("NetworkError: failed to fetch %s: %v", pathOf(e.URL), cause)
}

func pathOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError means the response body was not a JSON array of events.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ParseError: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RenderError means the widget refused or failed to render.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("RenderError: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
