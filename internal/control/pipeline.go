package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/ecoscout/internal/classify"
	"github.com/vietddude/ecoscout/internal/core/domain"
	"github.com/vietddude/ecoscout/internal/infra/storage"
	"github.com/vietddude/ecoscout/internal/metrics"
	"github.com/vietddude/ecoscout/internal/validate"
)

// ShortDescriptionReason is recorded on records whose description was too
// short to classify.
const ShortDescriptionReason = "description too short"

// Pipeline runs scrape, classify, validate and store for a batch of URLs.
type Pipeline struct {
	Classifier     Classifier
	Scraper        Scraper
	Repo           storage.OrganisationRepository
	Cache          ResultCache // optional
	Review         ReviewQueue // optional
	Workers        int
	MinDescription int
	// ReviewThreshold is passed to record validation; it should match the
	// classifier's threshold.
	ReviewThreshold float64
	// Refresh drops cached classifications instead of reusing them.
	Refresh bool

	log *slog.Logger
}

// Outcome describes how a single URL was handled.
type Outcome struct {
	Org      *domain.Organisation // stored record once Upsert succeeded
	Created  bool
	CacheHit bool
	Skipped  bool
}

func (p *Pipeline) logger() *slog.Logger {
	if p.log == nil {
		p.log = slog.Default().With("component", "pipeline")
	}
	return p.log
}

// Run processes urls with up to Workers concurrent workers. Per-URL failures
// are logged and counted; only cancellation stops the run early.
func (p *Pipeline) Run(ctx context.Context, urls []string) (RunSummary, error) {
	log := p.logger()
	workers := p.Workers
	if workers <= 0 {
		workers = 1
	}

	var rec summaryRecorder
	rec.update(func(s *RunSummary) { s.Total = len(urls) })

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, u := range urls {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out, err := p.Process(gctx, u)
			rec.update(func(s *RunSummary) { s.record(out, err) })
			if err != nil {
				log.Warn("Failed to process organisation", "url", u, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := rec.snapshot()
	log.Info("Run finished",
		"total", summary.Total,
		"classified", summary.Classified,
		"degraded", summary.Degraded,
		"needs_review", summary.NeedsReview,
		"failed", summary.ScrapeFailed+summary.Invalid+summary.StoreFailed)
	return summary, ctx.Err()
}

// Stage errors let Run attribute failures.
var (
	errScrape   = errors.New("scrape failed")
	errInvalid  = errors.New("record invalid")
	errStore    = errors.New("store failed")
	errCanceled = errors.New("canceled")
)

func (s *RunSummary) record(out Outcome, err error) {
	switch {
	case errors.Is(err, errScrape):
		s.ScrapeFailed++
		return
	case errors.Is(err, errInvalid):
		s.Invalid++
		return
	case errors.Is(err, errStore):
		s.StoreFailed++
	case errors.Is(err, errCanceled):
		return
	}
	if out.Org == nil {
		return
	}

	switch {
	case out.Skipped:
		s.Skipped++
	case out.CacheHit:
		s.CacheHits++
	}
	if out.Org.Degraded {
		s.Degraded++
	} else {
		s.Classified++
		s.ByProvider[out.Org.Provider]++
	}
	if out.Org.NeedsReview {
		s.NeedsReview++
	}
	if err == nil {
		if out.Created {
			s.Created++
		} else {
			s.Updated++
		}
	}
}

// Process handles one URL end to end.
func (p *Pipeline) Process(ctx context.Context, website string) (Outcome, error) {
	log := p.logger()

	scraped, err := p.Scraper.Scrape(ctx, website)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", errScrape, err)
	}
	key := domain.WebsiteKey(scraped.Website)

	var out Outcome
	var c domain.Classification

	switch {
	case len([]rune(strings.TrimSpace(scraped.Request().DescriptionText()))) <= p.MinDescription:
		c = classify.Degraded(ShortDescriptionReason)
		out.Skipped = true
		log.Debug("Description too short, skipping classification", "website", scraped.Website)

	default:
		if p.Refresh {
			p.invalidate(ctx, key)
		} else if cached, ok := p.cached(ctx, key); ok {
			c = cached
			out.CacheHit = true
			break
		}
		c = p.Classifier.Classify(ctx, scraped.Request())
		if ctx.Err() != nil {
			return Outcome{}, fmt.Errorf("%w: %w", errCanceled, ctx.Err())
		}
		if p.Cache != nil {
			if err := p.Cache.Put(ctx, key, c); err != nil {
				log.Warn("Failed to cache classification", "website", scraped.Website, "error", err)
			}
		}
	}

	org := domain.NewOrganisation(scraped, c)
	out.Org = org

	if err := validate.Record(org, p.ReviewThreshold); err != nil {
		metrics.RecordsStored.WithLabelValues("invalid").Inc()
		return out, fmt.Errorf("%w: %w", errInvalid, err)
	}

	// org holds the stored record from here on.
	created, err := p.Repo.Upsert(ctx, org)
	if err != nil {
		metrics.RecordsStored.WithLabelValues("error").Inc()
		return out, fmt.Errorf("%w: %w", errStore, err)
	}
	out.Created = created
	if created {
		metrics.RecordsStored.WithLabelValues("created").Inc()
	} else {
		metrics.RecordsStored.WithLabelValues("updated").Inc()
	}

	p.syncReview(ctx, org)

	log.Info("Processed organisation",
		"name", org.Name,
		"website", org.Website,
		"category", org.Category,
		"subcategory", org.Subcategory,
		"provider", org.Provider,
		"degraded", org.Degraded,
		"created", created)
	return out, nil
}

func (p *Pipeline) cached(ctx context.Context, key string) (domain.Classification, bool) {
	if p.Cache == nil || key == "" {
		return domain.Classification{}, false
	}
	c, ok, err := p.Cache.Get(ctx, key)
	if err != nil {
		p.logger().Warn("Failed to read classification cache", "key", key, "error", err)
		return domain.Classification{}, false
	}
	return c, ok
}

func (p *Pipeline) invalidate(ctx context.Context, key string) {
	if p.Cache == nil || key == "" {
		return
	}
	if err := p.Cache.Invalidate(ctx, key); err != nil {
		p.logger().Warn("Failed to invalidate cached classification", "key", key, "error", err)
	}
}

// syncReview keeps the review queue in line with the stored record.
func (p *Pipeline) syncReview(ctx context.Context, org *domain.Organisation) {
	if p.Review == nil {
		return
	}
	if org.NeedsReview {
		if err := p.Review.Push(ctx, org.WebsiteKey, org.Confidence); err != nil {
			p.logger().Warn("Failed to enqueue for review", "website", org.Website, "error", err)
		}
		return
	}
	if err := p.Review.Remove(ctx, org.WebsiteKey); err != nil {
		p.logger().Warn("Failed to remove from review queue", "website", org.Website, "error", err)
	}
}
