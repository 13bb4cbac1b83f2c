// Package coinmarketcap implements a source adapter over the
// CoinMarketCap listings API. Trend signals come from 24h trading
// volume; records are categorized as price movement.
package coinmarketcap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/seenimoa/trendctx/internal/infra"
	"github.com/seenimoa/trendctx/internal/source"
	"github.com/seenimoa/trendctx/pkg/models"
)

const (
	defaultBaseURL = "https://pro-api.coinmarketcap.com"
	listingsPath   = "/v1/cryptocurrency/listings/latest"
	defaultLimit   = 100
)

// Adapter fetches top cryptocurrency listings ranked by market cap.
type Adapter struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// New creates a CoinMarketCap adapter. The API key is required by the
// upstream API; an empty key surfaces as a connection error on fetch.
func New(apiKey string) *Adapter {
	return &Adapter{
		name:    "coinmarketcap",
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		cache:   infra.NewCache(5 * time.Minute),
		limiter: infra.NewRateLimiter(2, time.Second),
	}
}

// Name implements source.Adapter.
func (a *Adapter) Name() string { return a.name }

// --- CoinMarketCap listings API types ---

type listingsResponse struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
	Data []listing `json:"data"`
}

type listing struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	CMCRank     int    `json:"cmc_rank"`
	LastUpdated string `json:"last_updated"`
	Quote       map[string]listingQuote `json:"quote"`
}

type listingQuote struct {
	Price            float64 `json:"price"`
	Volume24h        float64 `json:"volume_24h"`
	PercentChange24h float64 `json:"percent_change_24h"`
}

// FetchTrends implements source.Adapter.
func (a *Adapter) FetchTrends(ctx context.Context, limit int) ([]models.TrendRecord, error) {
	if a.apiKey == "" {
		return nil, &source.ConnectionError{
			Source: a.name,
			Err:    fmt.Errorf("missing API key"),
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	cacheKey := fmt.Sprintf("cmc:listings:%d", limit)
	if cached, ok := a.cache.Get(cacheKey); ok {
		return cached.([]models.TrendRecord), nil
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, &source.ConnectionError{Source: a.name, Err: err}
	}

	body, err := a.doListings(ctx, limit)
	if err != nil {
		return nil, err
	}

	records, err := parseListings(a.name, body)
	if err != nil {
		return nil, err
	}

	a.cache.Set(cacheKey, records)
	return records, nil
}

// doListings performs the listings request and returns the raw body.
func (a *Adapter) doListings(ctx context.Context, limit int) ([]byte, error) {
	endpoint := a.baseURL + listingsPath + "?" + url.Values{
		"start":   {"1"},
		"limit":   {strconv.Itoa(limit)},
		"convert": {"USD"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &source.ConnectionError{Source: a.name, Err: err}
	}
	req.Header.Set("X-CMC_PRO_API_KEY", a.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &source.ConnectionError{Source: a.name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &source.ConnectionError{
			Source: a.name,
			Err:    fmt.Errorf("HTTP %s: %s", resp.Status, snippet),
		}
	}

	return io.ReadAll(resp.Body)
}

// parseListings decodes the listings payload into trend records. Entries
// missing a name or a USD quote fail the whole payload: a partially
// well-formed response usually means the API contract shifted.
func parseListings(sourceName string, body []byte) ([]models.TrendRecord, error) {
	var parsed listingsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &source.DataError{Source: sourceName, Detail: err.Error()}
	}
	if parsed.Status.ErrorCode != 0 {
		return nil, &source.DataError{
			Source: sourceName,
			Detail: fmt.Sprintf("API error %d: %s", parsed.Status.ErrorCode, parsed.Status.ErrorMessage),
		}
	}

	records := make([]models.TrendRecord, 0, len(parsed.Data))
	for _, l := range parsed.Data {
		usd, ok := l.Quote["USD"]
		if !ok || l.Name == "" || l.Symbol == "" {
			return nil, &source.DataError{
				Source: sourceName,
				Detail: fmt.Sprintf("listing %q missing required fields", l.Name),
			}
		}

		rec := models.TrendRecord{
			Name:      l.Name,
			RawSignal: usd.Volume24h,
			SourceID:  sourceName,
			Extra: map[string]any{
				"name":        l.Name,
				"volume":      usd.Volume24h,
				"category":    string(models.CategoryPriceMovement),
				"description": fmt.Sprintf("%s (%s) 24h change %.2f%%", l.Name, l.Symbol, usd.PercentChange24h),
				"sentiment":   sentimentFromChange(usd.PercentChange24h),
			},
		}
		if ts, err := time.Parse(time.RFC3339, l.LastUpdated); err == nil {
			rec.Timestamp = &ts
		}
		records = append(records, rec)
	}
	return records, nil
}

// sentimentFromChange maps 24h price change onto a coarse sentiment.
func sentimentFromChange(pct float64) string {
	switch {
	case pct > 2:
		return "bullish"
	case pct < -2:
		return "bearish"
	default:
		return "neutral"
	}
}
