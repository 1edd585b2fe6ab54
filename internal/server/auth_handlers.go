// internal/server/auth_handlers.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/biscuit28110/Signature-by-lt-v2/internal/auth"
	"github.com/biscuit28110/Signature-by-lt-v2/internal/security/netutil"
)

const minPasswordLength = 8

// setSessionCookie installs the signed session token. SameSite=Lax lets the
// cookie ride on top-level navigations while blocking cross-site POSTs.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.ProductionMode,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.SessionTTL.Seconds()),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.ProductionMode,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, err := s.sessionUser(r); err == nil {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		if err := s.renderTemplate(w, r, "login.html", nil); err != nil {
			s.logger.Printf("Error rendering login template: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}

	case http.MethodPost:
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		clientKey := netutil.ClientIP(r)
		token, err := s.auth.Login(req.Username, req.Password, clientKey, auth.ClientMeta{
			IP:        clientKey,
			UserAgent: r.UserAgent(),
		})
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrRateLimited):
				RespondWithError(w, http.StatusTooManyRequests, "Too many attempts. Try again later.")
			case errors.Is(err, auth.ErrBadRequest):
				RespondWithError(w, http.StatusBadRequest, "Username and password are required")
			case errors.Is(err, auth.ErrInvalidCredentials):
				RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			default:
				s.logger.Printf("Login failed with internal error: %v", err)
				RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		s.setSessionCookie(w, token)
		RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})

	default:
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleLogout clears the session cookie. Stateless tokens cannot be revoked
// server-side, so logout is purely a cookie removal.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.clearSessionCookie(w)
	RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	user, err := s.sessionUser(r)
	if err != nil {
		if isStorageError(err) {
			s.logger.Printf("Session check storage error: %v", err)
			RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		RespondWithJSON(w, http.StatusUnauthorized, map[string]bool{"authenticated": false})
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{"authenticated": true, "user": user})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	newPassword := strings.TrimSpace(req.NewPassword)
	if len(newPassword) < minPasswordLength {
		RespondWithError(w, http.StatusBadRequest,
			fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
		return
	}
	if newPassword != strings.TrimSpace(req.ConfirmPassword) {
		RespondWithError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	if err := s.auth.ChangePassword(req.CurrentPassword, newPassword); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			RespondWithError(w, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
		s.logger.Printf("Password change failed: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, _ := currentUser(r.Context())
	RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "user": user})
}

func (s *Server) handleAccessLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	entries, err := s.auth.AccessLogEntries(50)
	if err != nil {
		s.logger.Printf("Error reading access log: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if entries == nil {
		entries = []auth.AccessLogEntry{}
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{"logs": entries})
}

// handleBackup streams a JSON snapshot of the editable site data as a
// download.
func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx := r.Context()
	content, err := s.db.GetContent(ctx)
	if err != nil {
		s.logger.Printf("Backup: error reading content: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	settings, err := s.db.GetSettings(ctx)
	if err != nil {
		s.logger.Printf("Backup: error reading settings: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	media, err := s.db.ListMedia(ctx, "video")
	if err != nil {
		s.logger.Printf("Backup: error reading media: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	videos := make([]string, 0, len(media))
	for _, m := range media {
		videos = append(videos, m.Filename)
	}

	snapshot := map[string]any{
		"exportedAt": time.Now().UTC().Format(time.RFC3339),
		"content":    content,
		"settings":   settings,
		"videos":     videos,
	}

	filename := fmt.Sprintf("signature-backup-%s-%s.json",
		time.Now().UTC().Format("2006-01-02"), uuid.NewString()[:8])
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	RespondWithJSON(w, http.StatusOK, snapshot)
}
