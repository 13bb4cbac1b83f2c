// Package rss implements a source adapter over RSS/Atom news feeds.
// Each feed item becomes one raw trend record whose signal is a
// recency-decayed weight: fresh headlines carry the feed's nominal
// volume, stale ones decay toward zero with a 24h half-life.
package rss

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/trendctx/internal/infra"
	"github.com/seenimoa/trendctx/internal/source"
	"github.com/seenimoa/trendctx/pkg/models"
)

// Feed describes one RSS/Atom feed to poll.
type Feed struct {
	Name     string
	URL      string
	Category models.Category // optional; left unset for feeds that don't classify
}

// DefaultFeeds lists crypto news feeds polled when none are configured.
var DefaultFeeds = []Feed{
	{
		Name:     "CoinDesk",
		URL:      "https://www.coindesk.com/arc/outboundfeeds/rss/",
		Category: models.CategoryRegulatoryNews,
	},
	{
		Name:     "Cointelegraph",
		URL:      "https://cointelegraph.com/rss",
		Category: models.CategorySocialMediaBuzz,
	},
}

// nominalVolume is the signal assigned to a just-published item before
// recency decay.
const nominalVolume = 10000.0

// Adapter polls a set of feeds and converts items into trend records.
type Adapter struct {
	name    string
	feeds   []Feed
	parser  *gofeed.Parser
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// New creates an RSS adapter for the given feeds. An empty feed list
// falls back to DefaultFeeds.
func New(name string, feeds []Feed) *Adapter {
	if len(feeds) == 0 {
		feeds = DefaultFeeds
	}
	return &Adapter{
		name:    name,
		feeds:   feeds,
		parser:  gofeed.NewParser(),
		cache:   infra.NewCache(10 * time.Minute),
		limiter: infra.NewRateLimiter(2, time.Second),
	}
}

// Name implements source.Adapter.
func (a *Adapter) Name() string { return a.name }

// FetchTrends implements source.Adapter. A feed that fails to parse is
// only fatal when every feed fails; partial feed outages degrade to the
// items that did arrive.
func (a *Adapter) FetchTrends(ctx context.Context, limit int) ([]models.TrendRecord, error) {
	cacheKey := fmt.Sprintf("rss:%s:%d", a.name, limit)
	if cached, ok := a.cache.Get(cacheKey); ok {
		return cached.([]models.TrendRecord), nil
	}

	var records []models.TrendRecord
	var lastErr error
	for _, feed := range a.feeds {
		items, err := a.fetchFeed(ctx, feed)
		if err != nil {
			log.Printf("rss: feed %s failed: %v", feed.Name, err)
			lastErr = err
			continue
		}
		records = append(records, items...)
	}

	if len(records) == 0 && lastErr != nil {
		return nil, &source.ConnectionError{Source: a.name, Err: lastErr}
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	a.cache.Set(cacheKey, records)
	return records, nil
}

// fetchFeed polls one feed and converts its items.
func (a *Adapter) fetchFeed(ctx context.Context, feed Feed) ([]models.TrendRecord, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	parsed, err := a.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feed.Name, err)
	}

	return recordsFromFeed(feed, parsed.Items, time.Now()), nil
}

// recordsFromFeed converts feed items into raw trend records.
func recordsFromFeed(feed Feed, items []*gofeed.Item, now time.Time) []models.TrendRecord {
	records := make([]models.TrendRecord, 0, len(items))
	for _, item := range items {
		if item == nil || strings.TrimSpace(item.Title) == "" {
			continue
		}

		rec := models.TrendRecord{
			Name:      item.Title,
			RawSignal: recencySignal(item.PublishedParsed, now),
			SourceID:  feed.Name,
			Extra:     map[string]any{},
		}
		if item.PublishedParsed != nil {
			ts := *item.PublishedParsed
			rec.Timestamp = &ts
		}
		if desc := cleanHTML(item.Description); desc != "" {
			rec.Extra["description"] = desc
		}
		if feed.Category != "" {
			rec.Extra["category"] = string(feed.Category)
		}
		if item.Link != "" {
			rec.Extra["sources"] = []string{item.Link}
		}
		records = append(records, rec)
	}
	return records
}

// recencySignal weights an item by age with a 24h half-life. Items with
// no publication date count as half-strength.
func recencySignal(published *time.Time, now time.Time) float64 {
	if published == nil {
		return nominalVolume / 2
	}
	ageHours := now.Sub(*published).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return nominalVolume * math.Exp(-math.Ln2*ageHours/24)
}

// cleanHTML strips markup from a feed description using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
