package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"proteinbuddy/internal/ledger"
)

var (
	ErrFoodNotFound   = errors.New("food not found")
	ErrLookupDisabled = errors.New("food lookup not configured")
	// ErrLookupUnavailable marks network failures, throttling and server
	// errors. Lookup retries these and returns one once attempts run out.
	ErrLookupUnavailable = errors.New("food lookup temporarily unavailable")
	// ErrLookupRejected means the API refused the configured credentials
	ErrLookupRejected = errors.New("food lookup credentials rejected")
)

const foodCacheTTL = time.Hour

// Food is the nutrition data for one serving of a food
type Food struct {
	Name               string  `json:"name"`
	ProteinPerServing  float64 `json:"protein_per_serving"`
	ServingWeightGrams float64 `json:"serving_weight_grams"`
}

// FoodLookup finds the protein content of a food by name
type FoodLookup interface {
	Lookup(ctx context.Context, query string) (*Food, error)
}

// nutrientsResponse is the response from the natural language nutrients endpoint.
// Unknown foods come back with a message instead of foods.
type nutrientsResponse struct {
	Message *string `json:"message"`
	Foods   []struct {
		FoodName           string   `json:"food_name"`
		Protein            *float64 `json:"nf_protein"`
		ServingWeightGrams *float64 `json:"serving_weight_grams"`
	} `json:"foods"`
}

type foodCacheEntry struct {
	food      *Food
	fetchedAt time.Time
}

// FoodService looks foods up in the Nutritionix database
type FoodService struct {
	appID      string
	appKey     string
	endpoint   string
	httpClient *http.Client
	attempts   uint
	delay      time.Duration

	// Foods are usually looked up twice, once to show the serving and again
	// when it is logged
	cacheMu  sync.RWMutex
	cache    map[string]*foodCacheEntry
	cacheTTL time.Duration
}

// NewFoodService creates a Nutritionix client
func NewFoodService(appID, appKey, endpoint string) *FoodService {
	return &FoodService{
		appID:      appID,
		appKey:     appKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		attempts:   3,
		delay:      200 * time.Millisecond,
		cache:      make(map[string]*foodCacheEntry),
		cacheTTL:   foodCacheTTL,
	}
}

// IsEnabled reports whether API credentials are configured
func (s *FoodService) IsEnabled() bool {
	return s.appID != "" && s.appKey != ""
}

// Lookup returns the first food matching query. Network errors, rate limiting
// and server errors are retried with backoff.
func (s *FoodService) Lookup(ctx context.Context, query string) (*Food, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ledger.ValidationError{Field: "query", Message: "please input a food"}
	}
	if !s.IsEnabled() {
		return nil, ErrLookupDisabled
	}

	cacheKey := strings.ToLower(query)
	s.cacheMu.RLock()
	if entry, ok := s.cache[cacheKey]; ok && time.Since(entry.fetchedAt) < s.cacheTTL {
		s.cacheMu.RUnlock()
		copied := *entry.food
		copied.Name = query
		return &copied, nil
	}
	s.cacheMu.RUnlock()

	var food *Food
	err := retry.Do(
		func() error {
			var err error
			food, err = s.fetch(ctx, query)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrLookupUnavailable)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("Food lookup for %q failed (attempt %d): %v", query, n+1, err)
		}),
	)
	if err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	s.cache[cacheKey] = &foodCacheEntry{food: food, fetchedAt: time.Now()}
	s.cacheMu.Unlock()

	copied := *food
	return &copied, nil
}

func (s *FoodService) fetch(ctx context.Context, query string) (*Food, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("x-app-id", s.appID)
	req.Header.Set("x-app-key", s.appKey)
	req.Header.Set("x-remote-user-id", "0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrLookupUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrLookupUnavailable, resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrLookupRejected, resp.StatusCode)
	}

	var payload nutrientsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode nutrients response: %w", err)
	}

	// The API answers unknown foods with a 404 and a message
	if payload.Message != nil || len(payload.Foods) == 0 {
		return nil, ErrFoodNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nutrients request failed: status %d", resp.StatusCode)
	}

	first := payload.Foods[0]
	food := &Food{Name: query}
	if first.Protein != nil {
		food.ProteinPerServing = *first.Protein
	}
	if first.ServingWeightGrams != nil {
		food.ServingWeightGrams = *first.ServingWeightGrams
	}
	return food, nil
}
