// internal/planity/service.go
package planity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

const (
	defaultCacheTTL = 30 * time.Minute
	fetchTimeout    = 10 * time.Second
)

// SourceLive marks categories fetched from the configured endpoint,
// SourceFallback the hardcoded price list.
const (
	SourceLive     = "planity"
	SourceFallback = "fallback"
)

// Service fetches the live price list from a configured Planity export
// endpoint, caching results for 30 minutes. Any failure degrades to the
// hardcoded fallback list so the pricing page always renders.
type Service struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *log.Logger

	mu        sync.Mutex
	cached    []Category
	fetchedAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

func NewService(endpoint, apiKey string, logger *log.Logger) *Service {
	return &Service{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: fetchTimeout},
		logger:   logger,
		ttl:      defaultCacheTTL,
		now:      time.Now,
	}
}

// Get returns the current price list and its source. It never returns an
// error to callers; an unconfigured or failing endpoint yields the fallback.
func (s *Service) Get(ctx context.Context) ([]Category, string) {
	if s.endpoint == "" {
		return FallbackCategories(), SourceFallback
	}

	s.mu.Lock()
	if s.cached != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		cached := make([]Category, len(s.cached))
		copy(cached, s.cached)
		s.mu.Unlock()
		return cached, SourceLive
	}
	s.mu.Unlock()

	categories, err := s.fetch(ctx)
	if err != nil {
		s.logger.Printf("Planity fetch failed, serving fallback prices: %v", err)
		return FallbackCategories(), SourceFallback
	}

	s.mu.Lock()
	s.cached = categories
	s.fetchedAt = s.now()
	s.mu.Unlock()

	return categories, SourceLive
}

func (s *Service) fetch(ctx context.Context) ([]Category, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building planity request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching planity services: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("planity endpoint returned status %d", resp.StatusCode)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding planity response: %w", err)
	}

	categories := Normalize(payload)
	if len(categories) == 0 {
		return nil, errors.New("planity response contained no usable categories")
	}
	return categories, nil
}
