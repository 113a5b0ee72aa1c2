package control

import (
	"context"
	"sync"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

// Classifier produces a classification for every request; it never fails.
type Classifier interface {
	Classify(ctx context.Context, req domain.ClassificationRequest) domain.Classification
}

// Scraper loads an organisation's facts from its website.
type Scraper interface {
	Scrape(ctx context.Context, website string) (domain.ScrapedOrg, error)
}

// ResultCache stores live classifications between runs.
type ResultCache interface {
	Get(ctx context.Context, websiteKey string) (domain.Classification, bool, error)
	Put(ctx context.Context, websiteKey string, c domain.Classification) error
	Invalidate(ctx context.Context, websiteKey string) error
}

// ReviewQueue collects records that need manual attention.
type ReviewQueue interface {
	Push(ctx context.Context, websiteKey string, confidence float64) error
	Remove(ctx context.Context, websiteKey string) error
}

// RunSummary counts what happened to each URL of a run.
type RunSummary struct {
	Total        int
	ScrapeFailed int
	Skipped      int // description too short to classify
	CacheHits    int
	Classified   int
	Degraded     int
	NeedsReview  int
	Invalid      int
	Created      int
	Updated      int
	StoreFailed  int
	ByProvider   map[string]int
}

// summaryRecorder guards a RunSummary shared by pipeline workers.
type summaryRecorder struct {
	mu sync.Mutex
	s  RunSummary
}

func (r *summaryRecorder) update(fn func(s *RunSummary)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.s.ByProvider == nil {
		r.s.ByProvider = make(map[string]int)
	}
	fn(&r.s)
}

func (r *summaryRecorder) snapshot() RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.s
	out.ByProvider = make(map[string]int, len(r.s.ByProvider))
	for k, v := range r.s.ByProvider {
		out.ByProvider[k] = v
	}
	return out
}
