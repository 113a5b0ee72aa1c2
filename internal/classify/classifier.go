// Package classify turns a ClassificationRequest into a Classification using
// the configured backends. It always returns a usable result: when no backend
// can answer, the degraded default is returned instead of an error.
package classify

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/vietddude/ecoscout/internal/core/domain"
	"github.com/vietddude/ecoscout/internal/infra/llm/provider"
	"github.com/vietddude/ecoscout/internal/infra/llm/routing"
	"github.com/vietddude/ecoscout/internal/metrics"
)

// DefaultReviewThreshold is the confidence below which a result needs review.
const DefaultReviewThreshold = domain.ReviewFloor

// Options configures a Classifier.
type Options struct {
	// Order is the fallback order after the primary. Defaults to the order
	// of the backends passed to NewClassifier.
	Order []domain.BackendID
	// ReviewThreshold is raised to domain.ReviewFloor when lower.
	ReviewThreshold float64
}

// Classifier owns the rotation state and the backend set.
type Classifier struct {
	backends        map[domain.BackendID]provider.Backend
	order           []domain.BackendID
	scheduler       *routing.Scheduler
	reviewThreshold float64
	log             *slog.Logger
}

// NewClassifier creates a Classifier. Backends are tried sequentially for each
// request, primary first.
func NewClassifier(backends []provider.Backend, scheduler *routing.Scheduler, opts Options) *Classifier {
	c := &Classifier{
		backends:        make(map[domain.BackendID]provider.Backend, len(backends)),
		scheduler:       scheduler,
		reviewThreshold: domain.ReviewThreshold(opts.ReviewThreshold),
		log:             slog.Default().With("component", "classifier"),
	}
	if c.scheduler == nil {
		c.scheduler = routing.NewScheduler(routing.DefaultSlots)
	}

	var natural []domain.BackendID
	for _, b := range backends {
		if b == nil {
			continue
		}
		if _, dup := c.backends[b.ID()]; dup {
			continue
		}
		c.backends[b.ID()] = b
		natural = append(natural, b.ID())
	}

	order := opts.Order
	if len(order) == 0 {
		order = natural
	}
	for _, id := range order {
		if _, ok := c.backends[id]; ok {
			c.order = append(c.order, id)
		}
	}
	return c
}

// Backends returns the configured backends in fallback order.
func (c *Classifier) Backends() []provider.Backend {
	out := make([]provider.Backend, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.backends[id])
	}
	return out
}

// ReviewThreshold returns the effective review threshold.
func (c *Classifier) ReviewThreshold() float64 {
	return c.reviewThreshold
}

// Scheduler returns the shared rotation state.
func (c *Classifier) Scheduler() *routing.Scheduler {
	return c.scheduler
}

// Classify returns a classification for req. It never fails; total
// exhaustion, invalid input and cancellation all yield the degraded default.
func (c *Classifier) Classify(ctx context.Context, req domain.ClassificationRequest) domain.Classification {
	if strings.TrimSpace(req.Name) == "" {
		c.log.Warn("request has no name, returning degraded result", "website", req.Website)
		return c.finish(Default())
	}

	primary, _ := c.scheduler.Primary()
	_, configured := c.backends[primary]
	ids := c.attemptOrder(primary)

	attempts := make([]routing.Attempt[domain.Classification], len(ids))
	for i, id := range ids {
		b := c.backends[id]
		attempts[i] = func(ctx context.Context) (domain.Classification, error) {
			return b.Classify(ctx, req)
		}
	}

	result, idx, err := routing.FirstSuccess(ctx, attempts)
	if err != nil {
		c.log.Warn("all backends failed, returning degraded result",
			"name", req.Name,
			"attempted", len(ids),
			"error", err)
		return c.finish(Default())
	}

	// A primary with no backend behind it would otherwise stall the rotation.
	if ids[idx] == primary || !configured {
		c.scheduler.Advance(primary)
	} else {
		c.log.Debug("classified by fallback backend", "primary", primary, "backend", ids[idx])
	}

	result.Confidence = clamp(result.Confidence)
	result.Degraded = false
	result.NeedsReview = result.Confidence < c.reviewThreshold
	if result.Provider == "" {
		result.Provider = string(ids[idx])
	}

	c.log.Debug("classified organisation",
		"name", req.Name,
		"backend", result.Provider,
		"model", result.Model,
		"category", result.Category,
		"confidence", result.Confidence)
	return c.finish(result)
}

func (c *Classifier) attemptOrder(primary domain.BackendID) []domain.BackendID {
	if _, ok := c.backends[primary]; !ok {
		primary = ""
	}
	return routing.AttemptOrder(primary, c.order)
}

func (c *Classifier) finish(result domain.Classification) domain.Classification {
	label := result.Provider
	if label == "" {
		label = "none"
	}
	metrics.ClassificationsTotal.WithLabelValues(label, strconv.FormatBool(result.Degraded)).Inc()
	return result
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
