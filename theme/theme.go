package theme

import (
	"go.uber.org/zap"
)

type Scheme string

const (
	Light Scheme = "light"
	Dark  Scheme = "dark"
)

// Key is both the storage key and the root attribute holding the scheme.
const Key = "data-scheme"

// Parse returns the scheme named by s.
func Parse(s string) (Scheme, bool) {
	switch Scheme(s) {
	case Light, Dark:
		return Scheme(s), true
	}
	return "", false
}

// Store persists the preference for the lifetime of a browser session.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Root is the document root the scheme is applied to.
type Root interface {
	Attr(key string) string
	SetAttr(key, value string)
}

// Switcher applies and toggles the scheme on one page.
type Switcher struct {
	store  Store
	root   Root
	logger *zap.Logger
}

// New returns a switcher for root. store may be nil, in which case the
// scheme is applied but not remembered.
func New(store Store, root Root, logger *zap.Logger) *Switcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Switcher{store: store, root: root, logger: logger}
}

// Load applies the persisted scheme, if any. Without one the root keeps
// whatever the markup set.
func (s *Switcher) Load() {
	if s.store == nil {
		return
	}
	saved, ok := s.store.Get(Key)
	if !ok {
		return
	}
	scheme, ok := Parse(saved)
	if !ok {
		s.logger.Debug("Load", zap.String("ignored", saved))
		return
	}
	s.Apply(scheme)
}

func (s *Switcher) Apply(scheme Scheme) {
	s.root.SetAttr(Key, string(scheme))
}

// Current reports the scheme on the root.
func (s *Switcher) Current() Scheme {
	return Scheme(s.root.Attr(Key))
}

// Toggle switches light to dark and anything else to light, then
// persists the result.
func (s *Switcher) Toggle() Scheme {
	next := Light
	if s.Current() == Light {
		next = Dark
	}

	s.Apply(next)
	if s.store != nil {
		if err := s.store.Set(Key, string(next)); err != nil {
			s.logger.Warn("Toggle", zap.Error(err))
		}
	}
	return next
}
