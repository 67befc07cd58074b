package services

import (
	"context"
	"fmt"
	"sync"

	"hugo-directus/pkg/directus"
	"hugo-directus/pkg/logger"
)

// Authenticator opens sessions against the CMS.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*directus.Session, error)
	Anonymous() *directus.Session
}

// SessionCache hands out one process-wide session. Login happens on first
// use; a failed login is not cached and is attempted again on the next call.
type SessionCache struct {
	auth     Authenticator
	email    string
	password string
	log      logger.Logger

	mu      sync.Mutex
	session *directus.Session
}

func NewSessionCache(auth Authenticator, email, password string, log logger.Logger) *SessionCache {
	return &SessionCache{auth: auth, email: email, password: password, log: log}
}

// EnsureAuthenticated returns the cached session, logging in if needed.
// Without credentials the anonymous session is used.
func (c *SessionCache) EnsureAuthenticated(ctx context.Context) (*directus.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return c.session, nil
	}

	if c.email == "" && c.password == "" {
		c.session = c.auth.Anonymous()
		c.log.Info("No CMS credentials configured, using the public role")
		return c.session, nil
	}

	session, err := c.auth.Login(ctx, c.email, c.password)
	if err != nil {
		return nil, fmt.Errorf("login as %s: %w", c.email, err)
	}
	c.log.Infof("Logged in as %s", c.email)
	c.session = session
	return c.session, nil
}

// Invalidate drops the cached session.
func (c *SessionCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
}
