// internal/server/csrf.go
package server

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"
)

var (
	ErrTokenMissing = errors.New("CSRF token missing")
	ErrTokenInvalid = errors.New("CSRF token invalid")
)

// CSRFConfig holds configuration for CSRF protection
type CSRFConfig struct {
	Cookie    string
	Header    string
	Secure    bool
	Expiry    time.Duration
	FieldName string
}

// DefaultCSRFConfig returns the default CSRF configuration
func DefaultCSRFConfig() CSRFConfig {
	return CSRFConfig{
		Cookie:    "csrf_token",
		Header:    "X-CSRF-Token",
		Secure:    true,
		Expiry:    24 * time.Hour,
		FieldName: "csrf_token",
	}
}

// CSRF manages double-submit tokens for the admin HTML forms and the
// state-changing content and video endpoints.
type CSRF struct {
	config CSRFConfig
	tokens sync.Map
}

func NewCSRF(config CSRFConfig) *CSRF {
	c := &CSRF{config: config}
	go c.startCleanupLoop()
	return c
}

func (c *CSRF) generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// getOrCreateToken reuses the visitor's existing token when it is still
// tracked, otherwise issues a fresh one and sets the cookie.
func (c *CSRF) getOrCreateToken(w http.ResponseWriter, r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.config.Cookie)
	if err == nil && cookie.Value != "" {
		if _, ok := c.tokens.Load(cookie.Value); ok {
			return cookie.Value, nil
		}
	}

	token, err := c.generateToken()
	if err != nil {
		return "", err
	}
	c.tokens.Store(token, time.Now().Add(c.config.Expiry))

	http.SetCookie(w, &http.Cookie{
		Name:     c.config.Cookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.config.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(c.config.Expiry.Seconds()),
	})
	return token, nil
}

// Token gets or creates a CSRF token and returns it
func (c *CSRF) Token(w http.ResponseWriter, r *http.Request) string {
	token, _ := c.getOrCreateToken(w, r)
	return token
}

func (c *CSRF) validateRequest(r *http.Request) error {
	token := r.Header.Get(c.config.Header)
	if token == "" {
		if err := r.ParseForm(); err == nil {
			token = r.FormValue(c.config.FieldName)
		}
	}
	if token == "" {
		return ErrTokenMissing
	}

	cookie, err := r.Cookie(c.config.Cookie)
	if err != nil {
		return ErrTokenMissing
	}
	if token != cookie.Value {
		return ErrTokenInvalid
	}

	if expiry, ok := c.tokens.Load(token); !ok {
		return ErrTokenInvalid
	} else if expiry.(time.Time).Before(time.Now()) {
		c.tokens.Delete(token)
		return ErrTokenInvalid
	}
	return nil
}

// Validate checks the request's token and writes a 403 on failure.
func (c *CSRF) Validate(w http.ResponseWriter, r *http.Request) bool {
	if err := c.validateRequest(r); err != nil {
		RespondWithError(w, http.StatusForbidden, "CSRF validation failed")
		return false
	}
	return true
}

func (c *CSRF) cleanup() {
	c.tokens.Range(func(key, value interface{}) bool {
		if expiry := value.(time.Time); expiry.Before(time.Now()) {
			c.tokens.Delete(key)
		}
		return true
	})
}

func (c *CSRF) startCleanupLoop() {
	ticker := time.NewTicker(6 * time.Hour)
	for range ticker.C {
		c.cleanup()
	}
}
