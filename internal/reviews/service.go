// internal/reviews/service.go
package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"
)

var (
	ErrNotConfigured = errors.New("google places credentials not configured")
	ErrUpstream      = errors.New("google places upstream error")
)

const (
	defaultCacheTTL = 24 * time.Hour
	fetchTimeout    = 10 * time.Second
	detailsBaseURL  = "https://maps.googleapis.com/maps/api/place/details/json"
)

// Review is the shape served to the site's testimonial section.
type Review struct {
	Author string  `json:"author"`
	Rating int     `json:"rating"`
	Text   string  `json:"text"`
	Date   string  `json:"date"`
	Photo  *string `json:"photo"`
	Source string  `json:"source"`
}

type googleReview struct {
	AuthorName              string `json:"author_name"`
	Rating                  int    `json:"rating"`
	Text                    string `json:"text"`
	RelativeTimeDescription string `json:"relative_time_description"`
	ProfilePhotoURL         string `json:"profile_photo_url"`
}

type placeDetailsResponse struct {
	Result struct {
		Reviews []googleReview `json:"reviews"`
	} `json:"result"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// Service proxies Google Places reviews with a 24 hour in-memory cache, so the
// public site never hits the quota-limited API on every page view. The cache
// is owned by the service instance, not a package global, so tests do not
// leak state into each other.
type Service struct {
	apiKey  string
	placeID string
	client  *http.Client
	logger  *log.Logger
	baseURL string

	mu        sync.Mutex
	cached    []Review
	fetchedAt time.Time
	ttl       time.Duration
	now       func() time.Time

	done chan struct{}
}

func NewService(apiKey, placeID string, logger *log.Logger) *Service {
	return &Service{
		apiKey:  apiKey,
		placeID: placeID,
		client:  &http.Client{Timeout: fetchTimeout},
		logger:  logger,
		baseURL: detailsBaseURL,
		ttl:     defaultCacheTTL,
		now:     time.Now,
		done:    make(chan struct{}),
	}
}

// Configured reports whether the Google Places credentials are present.
func (s *Service) Configured() bool {
	return s.apiKey != "" && s.placeID != ""
}

// Start launches a background loop keeping the cache warm. A no-op when the
// service is not configured.
func (s *Service) Start() {
	if !s.Configured() {
		return
	}
	go s.refreshLoop()
}

func (s *Service) Stop() {
	close(s.done)
}

func (s *Service) refreshLoop() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			if _, err := s.fetch(ctx); err != nil {
				s.logger.Printf("Scheduled reviews refresh failed: %v", err)
			}
			cancel()
		case <-s.done:
			return
		}
	}
}

// Get returns the cached reviews, fetching from Google when the cache is
// empty or older than the TTL.
func (s *Service) Get(ctx context.Context) ([]Review, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	s.mu.Lock()
	if s.cached != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		cached := make([]Review, len(s.cached))
		copy(cached, s.cached)
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	return s.fetch(ctx)
}

func (s *Service) fetch(ctx context.Context) ([]Review, error) {
	params := url.Values{
		"place_id": {s.placeID},
		"fields":   {"reviews"},
		"language": {"fr"},
		"key":      {s.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building places request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: request failed with status %d", ErrUpstream, resp.StatusCode)
	}

	var details placeDetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	if details.Status != "OK" {
		message := details.ErrorMessage
		if message == "" {
			message = "API returned status " + details.Status
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstream, message)
	}

	mapped := make([]Review, 0, len(details.Result.Reviews))
	for _, r := range details.Result.Reviews {
		review := Review{
			Author: r.AuthorName,
			Rating: r.Rating,
			Text:   r.Text,
			Date:   r.RelativeTimeDescription,
			Source: "Google",
		}
		if r.ProfilePhotoURL != "" {
			photo := r.ProfilePhotoURL
			review.Photo = &photo
		}
		mapped = append(mapped, review)
	}

	s.mu.Lock()
	s.cached = mapped
	s.fetchedAt = s.now()
	s.mu.Unlock()

	return mapped, nil
}
