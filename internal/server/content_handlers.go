// internal/server/content_handlers.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/biscuit28110/Signature-by-lt-v2/internal/database"
	"github.com/biscuit28110/Signature-by-lt-v2/internal/reviews"
)

// handleContent serves the editable site text. Reads are public, writes need
// a valid session and a CSRF token.
func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		content, err := s.db.GetContent(r.Context())
		if err != nil {
			s.logger.Printf("Error reading content: %v", err)
			RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		RespondWithJSON(w, http.StatusOK, content)

	case http.MethodPut:
		user, err := s.sessionUser(r)
		if err != nil {
			s.respondAuthError(w, err)
			return
		}
		if !s.csrf.Validate(w, r) {
			return
		}

		var req contentUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		blocks := make(map[string]string)
		if req.HeroTitle != nil {
			blocks[database.ContentHeroTitle] = *req.HeroTitle
		}
		if req.HeroSubtitle != nil {
			blocks[database.ContentHeroSubtitle] = *req.HeroSubtitle
		}
		if req.CTAPrimary != nil {
			blocks[database.ContentCTAPrimary] = *req.CTAPrimary
		}
		if req.CTASecondary != nil {
			blocks[database.ContentCTASecondary] = *req.CTASecondary
		}

		if err := s.db.UpdateContent(r.Context(), blocks, user); err != nil {
			if errors.Is(err, database.ErrInvalidInput) {
				RespondWithError(w, http.StatusBadRequest, "No content fields provided")
				return
			}
			s.logger.Printf("Error updating content (user %s): %v", user, err)
			RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		content, err := s.db.GetContent(r.Context())
		if err != nil {
			s.logger.Printf("Error reading content after update: %v", err)
			RespondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		RespondWithJSON(w, http.StatusOK, content)

	default:
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	list, err := s.reviews.Get(r.Context())
	if err != nil {
		if errors.Is(err, reviews.ErrNotConfigured) {
			RespondWithJSON(w, http.StatusOK, map[string]any{"reviews": []reviews.Review{}, "source": "none"})
			return
		}
		s.logger.Printf("Error fetching reviews: %v", err)
		RespondWithError(w, http.StatusBadGateway, "Unable to fetch reviews")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]any{"reviews": list, "source": "google"})
}

func (s *Server) handlePlanityServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	categories, source := s.planity.Get(r.Context())
	RespondWithJSON(w, http.StatusOK, map[string]any{"categories": categories, "source": source})
}
