package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

// QuoteService fetches real-time quotes from an IEX-style provider.
// When a Redis client is supplied, quotes are served through a short-TTL
// read-through cache; with a nil client every call hits the provider.
type QuoteService struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
	cache      *redis.Client
	cacheTTL   time.Duration
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(baseURL, apiToken string, cache *redis.Client, cacheTTL time.Duration) *QuoteService {
	return &QuoteService{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiToken: apiToken,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// quoteResponse mirrors the provider's quote payload
type quoteResponse struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	LatestPrice float64 `json:"latestPrice"`
}

// Lookup resolves a symbol to its current quote
func (s *QuoteService) Lookup(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, domain.ErrInvalidSymbol
	}

	if quote := s.cached(ctx, symbol); quote != nil {
		return quote, nil
	}

	url := fmt.Sprintf("%s/stock/%s/quote?token=%s", s.baseURL, symbol, s.apiToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrLookupFailed, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrInvalidSymbol
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: provider status=%d body=%s", domain.ErrLookupFailed, resp.StatusCode, string(body))
	}

	var payload quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrLookupFailed, err)
	}

	if payload.Symbol == "" || payload.LatestPrice <= 0 {
		return nil, domain.ErrInvalidSymbol
	}

	quote := &domain.Quote{
		Symbol:      strings.ToUpper(payload.Symbol),
		CompanyName: payload.CompanyName,
		Price:       decimal.NewFromFloat(payload.LatestPrice),
	}

	s.store(ctx, quote)

	return quote, nil
}

// cached returns a cached quote, or nil on miss or when caching is off
func (s *QuoteService) cached(ctx context.Context, symbol string) *domain.Quote {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, cacheKey(symbol)).Result()
	if err != nil {
		return nil
	}

	quote := &domain.Quote{}
	if err := json.Unmarshal([]byte(data), quote); err != nil {
		return nil
	}

	return quote
}

// store caches a quote best-effort; a cache failure never fails the lookup
func (s *QuoteService) store(ctx context.Context, quote *domain.Quote) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(quote)
	if err != nil {
		return
	}

	s.cache.Set(ctx, cacheKey(quote.Symbol), data, s.cacheTTL)
}

func cacheKey(symbol string) string {
	return fmt.Sprintf("quote:%s", symbol)
}
