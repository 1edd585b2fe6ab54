package server

import (
	"net/http"
	"testing"

	"github.com/biscuit28110/Signature-by-lt-v2/internal/database"
	"github.com/biscuit28110/Signature-by-lt-v2/internal/planity"
)

func TestContentRead(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, testRequest{method: http.MethodGet, path: "/api/content"})
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/content status = %d", w.Code)
	}
	var content database.Content
	decodeJSONBody(t, w, &content)
	if content.HeroTitle != "SIGNATURE BY LT" {
		t.Errorf("heroTitle = %q, want seeded default", content.HeroTitle)
	}
}

func TestContentUpdate(t *testing.T) {
	s := newTestServer(t)
	newTitle := "Nouveau titre"
	update := contentUpdateRequest{HeroTitle: &newTitle}

	// No session.
	w := s.do(t, testRequest{method: http.MethodPut, path: "/api/content", body: update})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("PUT without session status = %d, want 401", w.Code)
	}

	// Session but no CSRF token.
	cookie := s.login(t)
	w = s.do(t, testRequest{method: http.MethodPut, path: "/api/content", body: update,
		cookies: []*http.Cookie{cookie}})
	if w.Code != http.StatusForbidden {
		t.Fatalf("PUT without CSRF status = %d, want 403", w.Code)
	}

	// Full credentials.
	token, csrfCookie := s.csrfPair(t)
	w = s.do(t, testRequest{method: http.MethodPut, path: "/api/content", body: update,
		cookies: []*http.Cookie{cookie, csrfCookie},
		headers: map[string]string{"X-CSRF-Token": token}})
	if w.Code != http.StatusOK {
		t.Fatalf("PUT with credentials status = %d: %s", w.Code, w.Body.String())
	}
	var content database.Content
	decodeJSONBody(t, w, &content)
	if content.HeroTitle != newTitle {
		t.Errorf("heroTitle after update = %q, want %q", content.HeroTitle, newTitle)
	}
	if content.LastUpdatedBy != testAdminUser {
		t.Errorf("lastUpdatedBy = %q, want %q", content.LastUpdatedBy, testAdminUser)
	}
	// Untouched blocks survive.
	if content.HeroSubtitle == "" {
		t.Error("partial update cleared heroSubtitle")
	}

	// Empty update is rejected.
	w = s.do(t, testRequest{method: http.MethodPut, path: "/api/content", body: contentUpdateRequest{},
		cookies: []*http.Cookie{cookie, csrfCookie},
		headers: map[string]string{"X-CSRF-Token": token}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty PUT status = %d, want 400", w.Code)
	}
}

func TestReviewsUnconfigured(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, testRequest{method: http.MethodGet, path: "/api/reviews"})
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/reviews status = %d", w.Code)
	}
	var resp struct {
		Reviews []any  `json:"reviews"`
		Source  string `json:"source"`
	}
	decodeJSONBody(t, w, &resp)
	if resp.Source != "none" || len(resp.Reviews) != 0 {
		t.Errorf("unconfigured reviews = %+v, want empty list with source none", resp)
	}
}

func TestPlanityServicesFallback(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, testRequest{method: http.MethodGet, path: "/api/planity-services"})
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/planity-services status = %d", w.Code)
	}
	var resp struct {
		Categories []planity.Category `json:"categories"`
		Source     string             `json:"source"`
	}
	decodeJSONBody(t, w, &resp)
	if resp.Source != planity.SourceFallback {
		t.Errorf("source = %q, want %q", resp.Source, planity.SourceFallback)
	}
	if len(resp.Categories) != len(planity.FallbackCategories()) {
		t.Errorf("got %d categories, want full fallback list", len(resp.Categories))
	}
}
