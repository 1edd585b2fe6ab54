// internal/auth/service.go
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

// SessionCookie is the fixed name of the admin session cookie.
const SessionCookie = "sb_lt_admin_session"

// SessionTTL is the lifetime of an issued session token.
const SessionTTL = 12 * time.Hour

// sessionPayload is the signed portion of a token. Validity is determined
// entirely by the signature and the expiry check; there is no server-side
// session table.
type sessionPayload struct {
	User      string `json:"u"`
	ExpiresAt int64  `json:"exp"` // epoch milliseconds
}

// ClientMeta carries request metadata recorded on successful logins.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// Service wires the credential store, rate limiter and access log into the
// login/validate/logout operations. Tokens are stateless HMAC-SHA256 signed
// payloads; a stolen token stays valid until natural expiry (known limitation
// of the revocation-free design).
type Service struct {
	store     Store
	limiter   *RateLimiter
	accessLog *AccessLog
	logger    *log.Logger
	now       func() time.Time
}

func NewService(store Store, limiter *RateLimiter, accessLog *AccessLog, logger *log.Logger) *Service {
	return &Service{
		store:     store,
		limiter:   limiter,
		accessLog: accessLog,
		logger:    logger,
		now:       time.Now,
	}
}

// Login checks the rate limit, then the credentials, and issues a session
// token on success. Failed attempts count against clientKey; a success resets
// its counter and appends an access log entry.
func (s *Service) Login(username, password, clientKey string, meta ClientMeta) (string, error) {
	if !s.limiter.CanAttempt(clientKey) {
		return "", ErrRateLimited
	}
	if username == "" || password == "" {
		s.limiter.RecordAttempt(clientKey, false)
		return "", ErrBadRequest
	}

	state, err := s.store.Read()
	if err != nil {
		return "", err
	}
	validPassword, err := s.store.VerifyPassword(password)
	if err != nil {
		return "", err
	}
	if username != state.Username || !validPassword {
		s.limiter.RecordAttempt(clientKey, false)
		return "", ErrInvalidCredentials
	}

	token, err := s.signToken(state.SessionSecret, username)
	if err != nil {
		return "", err
	}
	s.limiter.RecordAttempt(clientKey, true)

	entry := AccessLogEntry{At: s.now().UnixMilli(), IP: meta.IP, UA: meta.UserAgent, User: username}
	if err := s.accessLog.Append(entry); err != nil {
		// Audit failure must not block a valid login.
		s.logger.Printf("Error appending access log entry: %v", err)
	}
	return token, nil
}

// Validate parses and checks a session token and returns the embedded
// username. Malformed, tampered, expired or stale-username tokens yield
// ErrUnauthorized.
func (s *Service) Validate(token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", ErrUnauthorized
	}

	state, err := s.store.Read()
	if err != nil {
		return "", err
	}
	expected := signPayload(parts[0], state.SessionSecret)
	if !hmac.Equal([]byte(parts[1]), []byte(expected)) {
		return "", ErrUnauthorized
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrUnauthorized
	}
	var payload sessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", ErrUnauthorized
	}
	if payload.User == "" || payload.ExpiresAt == 0 {
		return "", ErrUnauthorized
	}
	if s.now().UnixMilli() > payload.ExpiresAt {
		return "", ErrUnauthorized
	}
	if payload.User != state.Username {
		return "", ErrUnauthorized
	}
	return payload.User, nil
}

// ChangePassword verifies the current password and installs a new one.
// Outstanding session tokens stay valid until they expire because the token
// embeds no password material.
func (s *Service) ChangePassword(current, next string) error {
	ok, err := s.store.VerifyPassword(current)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}
	return s.store.UpdatePassword(next)
}

// Username returns the configured administrator username.
func (s *Service) Username() (string, error) {
	state, err := s.store.Read()
	if err != nil {
		return "", err
	}
	return state.Username, nil
}

// AccessLogEntries returns the most recent login records, newest first.
func (s *Service) AccessLogEntries(limit int) ([]AccessLogEntry, error) {
	return s.accessLog.ReadRecent(limit)
}

func (s *Service) signToken(secret, username string) (string, error) {
	payload := sessionPayload{
		User:      username,
		ExpiresAt: s.now().Add(SessionTTL).UnixMilli(),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding session payload: %w", err)
	}
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + "." + signPayload(encoded, secret), nil
}

func signPayload(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
