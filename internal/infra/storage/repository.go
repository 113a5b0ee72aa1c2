package storage

import (
	"context"
	"errors"
	"time"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

var (
	// ErrNotFound is returned when no organisation matches the lookup
	ErrNotFound = errors.New("organisation not found")
)

// OrganisationRepository handles organisation storage operations
type OrganisationRepository interface {
	// Upsert inserts org or updates the record with the same website key.
	// It reports whether a new record was created. On return org holds the
	// stored record, which after a merge may keep the previous classification.
	Upsert(ctx context.Context, org *domain.Organisation) (created bool, err error)

	// GetByWebsite retrieves an organisation by website
	GetByWebsite(ctx context.Context, website string) (*domain.Organisation, error)

	// List retrieves organisations ordered by name
	List(ctx context.Context, filter ListFilter) ([]*domain.Organisation, error)
}

// ListFilter narrows List results. Nil fields match everything.
type ListFilter struct {
	NeedsReview *bool
	Degraded    *bool
}

// Matches reports whether org passes the filter.
func (f ListFilter) Matches(org *domain.Organisation) bool {
	if f.NeedsReview != nil && org.NeedsReview != *f.NeedsReview {
		return false
	}
	if f.Degraded != nil && org.Degraded != *f.Degraded {
		return false
	}
	return true
}

// Merge applies incoming onto existing and returns the record to store.
// Empty factual fields never blank out stored ones, and a degraded
// classification never replaces a live one.
func Merge(existing, incoming *domain.Organisation, now time.Time) *domain.Organisation {
	out := *existing
	out.UpdatedAt = now

	if incoming.Name != "" {
		out.Name = incoming.Name
	}
	if incoming.Description != "" {
		out.Description = incoming.Description
	}
	if incoming.Website != "" {
		out.Website = incoming.Website
	}
	if incoming.Twitter != "" {
		out.Twitter = incoming.Twitter
	}
	if incoming.Country != "" {
		out.Country = incoming.Country
	}

	if !incoming.Degraded || existing.Degraded {
		out.Classification = incoming.Classification
	}
	return &out
}
