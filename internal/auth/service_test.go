package auth

import (
	"errors"
	"io"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestService(t *testing.T) (*Service, *fakeClock) {
	t.Helper()
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "admin-auth.json"), testBootstrap())
	limiter := NewRateLimiter()
	accessLog := NewAccessLog(filepath.Join(dir, "admin-access.json"))
	logger := log.New(io.Discard, "", 0)

	svc := NewService(store, limiter, accessLog, logger)
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = clock.now
	limiter.now = clock.now
	return svc, clock
}

func testMeta() ClientMeta {
	return ClientMeta{IP: "203.0.113.7", UserAgent: "test-agent"}
}

func TestLoginAndValidateRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := svc.Login("admin", "correct-horse-battery", "203.0.113.7", testMeta())
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token == "" {
		t.Fatal("Login returned an empty token")
	}

	user, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if user != "admin" {
		t.Errorf("Validate returned user %q, want %q", user, "admin")
	}

	// Successful login appended an access log entry.
	logs, err := svc.AccessLogEntries(10)
	if err != nil {
		t.Fatalf("AccessLogEntries failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("access log has %d entries, want 1", len(logs))
	}
	if logs[0].IP != "203.0.113.7" || logs[0].User != "admin" || logs[0].UA != "test-agent" {
		t.Errorf("unexpected access log entry: %+v", logs[0])
	}
}

func TestLoginFailures(t *testing.T) {
	testCases := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"wrong password", "admin", "nope", ErrInvalidCredentials},
		{"wrong username", "root", "correct-horse-battery", ErrInvalidCredentials},
		{"missing username", "", "correct-horse-battery", ErrBadRequest},
		{"missing password", "admin", "", ErrBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			_, err := svc.Login(tc.username, tc.password, "key", testMeta())
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Login error = %v, want %v", err, tc.wantErr)
			}
			// Failures never write to the audit log.
			logs, _ := svc.AccessLogEntries(10)
			if len(logs) != 0 {
				t.Errorf("failed login appended %d log entries", len(logs))
			}
		})
	}
}

func TestLoginRateLimiting(t *testing.T) {
	svc, _ := newTestService(t)
	key := "203.0.113.7"

	for i := 0; i < maxAttempts; i++ {
		_, err := svc.Login("admin", "wrong", key, testMeta())
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: error = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	// The ninth attempt is rejected even with correct credentials.
	_, err := svc.Login("admin", "correct-horse-battery", key, testMeta())
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("ninth attempt error = %v, want ErrRateLimited", err)
	}

	// A different client key still gets through.
	if _, err := svc.Login("admin", "correct-horse-battery", "198.51.100.1", testMeta()); err != nil {
		t.Errorf("login from unrelated key failed: %v", err)
	}
}

func TestLoginSuccessResetsAttempts(t *testing.T) {
	svc, _ := newTestService(t)
	key := "203.0.113.7"

	for i := 0; i < 5; i++ {
		svc.Login("admin", "wrong", key, testMeta())
	}
	if _, err := svc.Login("admin", "correct-horse-battery", key, testMeta()); err != nil {
		t.Fatalf("login after 5 failures should succeed: %v", err)
	}

	// The counter restarted: seven more failures stay under the limit.
	for i := 0; i < maxAttempts-1; i++ {
		_, err := svc.Login("admin", "wrong", key, testMeta())
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("failure %d after reset: error = %v, want ErrInvalidCredentials", i+1, err)
		}
	}
}

func TestValidateRejectsTamperedTokens(t *testing.T) {
	svc, _ := newTestService(t)
	token, err := svc.Login("admin", "correct-horse-battery", "key", testMeta())
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	parts := strings.SplitN(token, ".", 2)

	testCases := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"no separator", strings.ReplaceAll(token, ".", "")},
		{"missing signature", parts[0] + "."},
		{"missing payload", "." + parts[1]},
		{"mutated payload", "A" + parts[0][1:] + "." + parts[1]},
		{"mutated signature", parts[0] + "." + flipChar(parts[1])},
		{"signature swapped in", parts[0] + "." + signPayload(parts[0], "other-secret")},
		{"garbage", "not-a-token-at-all"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if user, err := svc.Validate(tc.token); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("Validate(%q) = (%q, %v), want ErrUnauthorized", tc.token, user, err)
			}
		})
	}
}

func flipChar(s string) string {
	if strings.HasPrefix(s, "A") {
		return "B" + s[1:]
	}
	return "A" + s[1:]
}

func TestValidateExpiryBoundary(t *testing.T) {
	svc, clock := newTestService(t)
	token, err := svc.Login("admin", "correct-horse-battery", "key", testMeta())
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	clock.advance(11*time.Hour + 59*time.Minute)
	if _, err := svc.Validate(token); err != nil {
		t.Errorf("token should still be valid at T+11h59m: %v", err)
	}

	clock.advance(2 * time.Minute)
	if _, err := svc.Validate(token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("token should be expired at T+12h01m, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := svc.Login("admin", "correct-horse-battery", "key", testMeta())
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := svc.ChangePassword("wrong-current", "whatever-new"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("ChangePassword with wrong current = %v, want ErrInvalidCredentials", err)
	}
	if err := svc.ChangePassword("correct-horse-battery", "a-new-password"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	// Old password no longer logs in, new one does.
	if _, err := svc.Login("admin", "correct-horse-battery", "k2", testMeta()); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password login = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login("admin", "a-new-password", "k3", testMeta()); err != nil {
		t.Errorf("new password login failed: %v", err)
	}

	// The already-issued token survives the password change by design.
	if user, err := svc.Validate(token); err != nil || user != "admin" {
		t.Errorf("pre-change token = (%q, %v), want it to remain valid", user, err)
	}
}
