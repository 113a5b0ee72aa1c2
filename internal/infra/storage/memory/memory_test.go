package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/vietddude/ecoscout/internal/core/domain"
	"github.com/vietddude/ecoscout/internal/infra/storage"
)

func org(website string, c domain.Classification) *domain.Organisation {
	return domain.NewOrganisation(domain.ScrapedOrg{Name: "Hub71", Website: website, Country: "UAE"}, c)
}

func TestMemoryStorage_Upsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	live := domain.Classification{Category: "Support Programs", Subcategory: "Incubator", Confidence: 0.9, Provider: "gemini", Model: "gemini-2.0-flash"}
	created, err := s.Upsert(ctx, org("https://hub71.com", live))
	if err != nil || !created {
		t.Fatalf("expected insert, got created=%v err=%v", created, err)
	}

	degraded := domain.Classification{Category: domain.DefaultCategory, Subcategory: domain.DefaultSubcategory, Degraded: true, NeedsReview: true}
	incoming := org("https://www.hub71.com/", degraded)
	created, err = s.Upsert(ctx, incoming)
	if err != nil || created {
		t.Fatalf("expected update, got created=%v err=%v", created, err)
	}
	if incoming.Degraded || incoming.Confidence != 0.9 {
		t.Errorf("upsert should leave the stored record in org, got %+v", incoming.Classification)
	}

	got, err := s.GetByWebsite(ctx, "hub71.com")
	if err != nil {
		t.Fatalf("GetByWebsite failed: %v", err)
	}
	if got.Degraded || got.Provider != "gemini" {
		t.Errorf("degraded result replaced a live one: %+v", got.Classification)
	}
}

func TestMemoryStorage_NotFound(t *testing.T) {
	_, err := NewMemoryStorage().GetByWebsite(context.Background(), "missing.ae")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStorage_ListFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	_, _ = s.Upsert(ctx, org("https://b.ae", domain.Classification{NeedsReview: true}))
	_, _ = s.Upsert(ctx, org("https://a.ae", domain.Classification{}))

	yes := true
	list, _ := s.List(ctx, storage.ListFilter{NeedsReview: &yes})
	if len(list) != 1 || list[0].WebsiteKey != "b.ae" {
		t.Errorf("unexpected filtered list: %+v", list)
	}

	all, _ := s.List(ctx, storage.ListFilter{})
	if len(all) != 2 || all[0].WebsiteKey != "a.ae" {
		t.Errorf("expected website key order for equal names: %+v", all)
	}
}
