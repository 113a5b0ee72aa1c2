// Package scrape fetches an organisation's landing page and extracts the
// factual fields used for classification and storage.
package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/vietddude/ecoscout/internal/core/domain"
	"github.com/vietddude/ecoscout/internal/metrics"
)

// ErrInvalidURL is returned for inputs that cannot be turned into an http(s) URL.
var ErrInvalidURL = errors.New("invalid website url")

const defaultUserAgent = "Mozilla/5.0 (compatible; ecoscout/1.0; +https://github.com/vietddude/ecoscout)"

// Config holds scraper settings.
type Config struct {
	Timeout        time.Duration `yaml:"timeout"`
	Retries        int           `yaml:"retries"`
	RetryWait      time.Duration `yaml:"retry_wait"`
	UserAgent      string        `yaml:"user_agent"`
	MinDescription int           `yaml:"min_description"` // descriptions this short are not classified
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 20 * time.Second
	}
	if c.Retries <= 0 {
		c.Retries = 2
	}
	if c.RetryWait <= 0 {
		c.RetryWait = time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.MinDescription <= 0 {
		c.MinDescription = 10
	}
}

// Scraper loads pages with retry and backoff.
type Scraper struct {
	http *resty.Client
	log  *slog.Logger
}

// New creates a Scraper.
func New(cfg Config) *Scraper {
	cfg.ApplyDefaults()

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8").
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(8 * cfg.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	return &Scraper{
		http: client,
		log:  slog.Default().With("component", "scraper"),
	}
}

// NormalizeURL adds an https scheme when missing and rejects non-http URLs.
func NormalizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	return u, nil
}

// Scrape fetches website and extracts the organisation's facts.
func (s *Scraper) Scrape(ctx context.Context, website string) (domain.ScrapedOrg, error) {
	u, err := NormalizeURL(website)
	if err != nil {
		metrics.PagesScraped.WithLabelValues("invalid").Inc()
		return domain.ScrapedOrg{}, err
	}

	resp, err := s.http.R().SetContext(ctx).Get(u.String())
	if err != nil {
		metrics.PagesScraped.WithLabelValues("error").Inc()
		return domain.ScrapedOrg{}, fmt.Errorf("fetch %s: %w", u, err)
	}
	if resp.IsError() {
		metrics.PagesScraped.WithLabelValues("error").Inc()
		return domain.ScrapedOrg{}, fmt.Errorf("fetch %s: unexpected status %d", u, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		metrics.PagesScraped.WithLabelValues("error").Inc()
		return domain.ScrapedOrg{}, fmt.Errorf("parse %s: %w", u, err)
	}

	org := Extract(doc, u)
	metrics.PagesScraped.WithLabelValues("ok").Inc()
	s.log.Debug("scraped page",
		"website", org.Website,
		"name", org.Name,
		"has_description", org.Description != nil,
		"attempts", resp.Request.Attempt)
	return org, nil
}
