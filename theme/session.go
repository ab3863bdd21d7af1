package theme

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// SessionStore keeps the preference in the request's fiber session.
type SessionStore struct {
	Sessions *session.Store
	Ctx      *fiber.Ctx
}

func (s SessionStore) Get(key string) (string, bool) {
	sess, err := s.Sessions.Get(s.Ctx)
	if err != nil {
		return "", false
	}
	v, ok := sess.Get(key).(string)
	return v, ok
}

// Set writes and saves the session. The session cookie itself carries no
// expiry when the store is configured session-only.
func (s SessionStore) Set(key, value string) error {
	sess, err := s.Sessions.Get(s.Ctx)
	if err != nil {
		return err
	}
	sess.Set(key, value)
	return sess.Save()
}
