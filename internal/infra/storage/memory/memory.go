// Package memory is a map-backed OrganisationRepository for dry runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/ecoscout/internal/core/domain"
	"github.com/vietddude/ecoscout/internal/infra/storage"
)

type MemoryStorage struct {
	orgs map[string]*domain.Organisation // website key -> record
	mu   sync.RWMutex
	now  func() time.Time
}

var _ storage.OrganisationRepository = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		orgs: make(map[string]*domain.Organisation),
		now:  time.Now,
	}
}

func (s *MemoryStorage) Upsert(ctx context.Context, org *domain.Organisation) (bool, error) {
	key := org.WebsiteKey
	if key == "" {
		key = domain.WebsiteKey(org.Website)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	existing, ok := s.orgs[key]
	if !ok {
		rec := *org
		rec.ID = uuid.NewString()
		rec.WebsiteKey = key
		rec.CreatedAt = now
		rec.UpdatedAt = now
		s.orgs[key] = &rec
		org.ID, org.WebsiteKey, org.CreatedAt, org.UpdatedAt = rec.ID, key, now, now
		return true, nil
	}

	merged := storage.Merge(existing, org, now)
	s.orgs[key] = merged
	*org = *merged
	return false, nil
}

func (s *MemoryStorage) GetByWebsite(ctx context.Context, website string) (*domain.Organisation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, ok := s.orgs[domain.WebsiteKey(website)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *org
	return &out, nil
}

func (s *MemoryStorage) List(ctx context.Context, filter storage.ListFilter) ([]*domain.Organisation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Organisation, 0, len(s.orgs))
	for _, org := range s.orgs {
		if filter.Matches(org) {
			rec := *org
			out = append(out, &rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].WebsiteKey < out[j].WebsiteKey
	})
	return out, nil
}
