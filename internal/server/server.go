// internal/server/server.go
package server

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"path/filepath"

	"github.com/biscuit28110/Signature-by-lt-v2/internal/auth"
	"github.com/biscuit28110/Signature-by-lt-v2/internal/database"
	"github.com/biscuit28110/Signature-by-lt-v2/internal/planity"
	"github.com/biscuit28110/Signature-by-lt-v2/internal/reviews"
)

type Config struct {
	UseHTTPS       bool
	WebPath        string
	DataPath       string
	ProductionMode bool
}

type Server struct {
	db        *database.DB
	logger    *log.Logger
	auth      *auth.Service
	reviews   *reviews.Service
	planity   *planity.Service
	videos    *VideoHandler
	csrf      *CSRF
	config    Config
	templates map[string]*template.Template
}

func NewServer(db *database.DB, logger *log.Logger, authService *auth.Service, reviewsService *reviews.Service, planityService *planity.Service, config Config) (*Server, error) {
	csrfConfig := DefaultCSRFConfig()
	csrfConfig.Secure = config.UseHTTPS
	csrfManager := NewCSRF(csrfConfig)

	videoDir := filepath.Join(config.WebPath, "static", "videos")
	videos, err := NewVideoHandler(db, logger, csrfManager, videoDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize video handler: %w", err)
	}

	s := &Server{
		db:      db,
		logger:  logger,
		auth:    authService,
		reviews: reviewsService,
		planity: planityService,
		videos:  videos,
		csrf:    csrfManager,
		config:  config,
	}

	if err := s.extractWebContent(false); err != nil {
		return nil, fmt.Errorf("failed to extract web content: %w", err)
	}

	templates, err := LoadTemplates(s.config.WebPath, s.registerTemplateFuncs())
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	s.templates = templates
	if !s.config.ProductionMode {
		s.logger.Printf("Loaded %d templates from %s", len(templates), s.config.WebPath)
	}

	return s, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	fileServer := http.FileServer(http.Dir(filepath.Join(s.config.WebPath, "static")))
	mux.Handle("/static/", http.StripPrefix("/static/", fileServer))

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/prestations", s.handlePage("prestations.html"))
	mux.HandleFunc("/about", s.handlePage("about.html"))
	mux.HandleFunc("/contact", s.handlePage("contact.html"))
	mux.HandleFunc("/reservation", s.handlePage("reservation.html"))

	mux.HandleFunc("/api/content", s.handleContent)
	mux.HandleFunc("/api/reviews", s.handleReviews)
	mux.HandleFunc("/api/planity-services", s.handlePlanityServices)

	mux.HandleFunc("/admin/login", s.handleLogin)
	mux.HandleFunc("/admin/logout", s.handleLogout)
	mux.HandleFunc("/admin/session", s.handleSession)
	mux.HandleFunc("/admin/password", s.requireAuth(s.handleChangePassword))
	mux.HandleFunc("/admin/logs", s.requireAuth(s.handleAccessLogs))
	mux.HandleFunc("/admin/backup", s.requireAuth(s.handleBackup))
	mux.HandleFunc("/admin/videos", s.requireAuth(s.videos.HandleVideos))
	mux.HandleFunc("/admin/videos/", s.requireAuth(s.videos.HandleVideoDelete))
	mux.HandleFunc("/admin", s.requireAuthPage(s.handleAdmin))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			s.handle404(w, r)
			return
		}
		s.handleIndex(w, r)
	})

	return gzipMiddleware(mux)
}

// requireAuth guards JSON API handlers. Missing or invalid session tokens get
// a 401 JSON body; store failures stay request scoped as a generic 500.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.sessionUser(r)
		if err != nil {
			s.respondAuthError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	}
}

// requireAuthPage guards HTML pages, redirecting unauthenticated visitors to
// the login page.
func (s *Server) requireAuthPage(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.sessionUser(r)
		if err != nil {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	}
}

func (s *Server) sessionUser(r *http.Request) (string, error) {
	cookie, err := r.Cookie(auth.SessionCookie)
	if err != nil {
		return "", auth.ErrUnauthorized
	}
	return s.auth.Validate(cookie.Value)
}

func (s *Server) respondAuthError(w http.ResponseWriter, err error) {
	if isStorageError(err) {
		s.logger.Printf("Auth storage error: %v", err)
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.logger.Printf("Health check failed: %v", err)
		RespondWithError(w, http.StatusServiceUnavailable, "unhealthy")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handle404(w http.ResponseWriter, r *http.Request) {
	s.logger.Printf("404 for path: %s", r.URL.Path)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := s.renderTemplate(w, r, "404.html", nil); err != nil {
		s.logger.Printf("Error rendering 404 template: %v", err)
		fmt.Fprint(w, "404 Page Not Found")
	}
}

func (s *Server) Start(addr string) error {
	s.logger.Printf("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.Routes())
}

func withUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, contextKeyUser, user)
}
