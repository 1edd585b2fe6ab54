// internal/server/page_handlers.go
package server

import (
	"net/http"
)

func (s *Server) pageData(r *http.Request, title, active string) PageData {
	content, err := s.db.GetContent(r.Context())
	if err != nil {
		s.logger.Printf("Error reading content for page %s: %v", active, err)
	}
	settings, err := s.db.GetSettings(r.Context())
	if err != nil {
		s.logger.Printf("Error reading settings for page %s: %v", active, err)
		settings = make(map[string]string)
	}
	return PageData{Title: title, Active: active, Content: content, Settings: settings}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := s.pageData(r, "Accueil", "home")
	if err := s.renderTemplate(w, r, "index.html", data); err != nil {
		s.logger.Printf("Error rendering index: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// handlePage serves the static-ish public pages that only need the shared
// content and settings.
func (s *Server) handlePage(name string) http.HandlerFunc {
	titles := map[string]struct{ title, active string }{
		"prestations.html": {"Nos prestations", "prestations"},
		"about.html":       {"À propos", "about"},
		"contact.html":     {"Contact", "contact"},
		"reservation.html": {"Réservation", "reservation"},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		meta := titles[name]
		data := s.pageData(r, meta.title, meta.active)
		if err := s.renderTemplate(w, r, name, data); err != nil {
			s.logger.Printf("Error rendering %s: %v", name, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	}
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	content, err := s.db.GetContent(r.Context())
	if err != nil {
		s.logger.Printf("Error reading content for dashboard: %v", err)
	}
	settings, err := s.db.GetSettings(r.Context())
	if err != nil {
		s.logger.Printf("Error reading settings for dashboard: %v", err)
		settings = make(map[string]string)
	}
	videos, err := s.videos.List(r.Context())
	if err != nil {
		s.logger.Printf("Error listing videos for dashboard: %v", err)
	}
	logs, err := s.auth.AccessLogEntries(10)
	if err != nil {
		s.logger.Printf("Error reading access log for dashboard: %v", err)
	}

	data := AdminPageData{
		Title:    "Dashboard",
		Active:   "dashboard",
		User:     user,
		Content:  content,
		Settings: settings,
		Videos:   videos,
		Logs:     logs,
	}
	if err := s.renderTemplate(w, r, "admin/dashboard.html", data); err != nil {
		s.logger.Printf("Error rendering dashboard (user %s): %v", user, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
