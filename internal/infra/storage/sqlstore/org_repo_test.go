package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/ecoscout/internal/core/domain"
	"github.com/vietddude/ecoscout/internal/infra/storage"
)

func newTestRepo(t *testing.T) *OrgRepo {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, Config{Driver: DriverSQLite, URL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))
	return NewOrgRepo(db)
}

func liveOrg(website string, confidence float64) *domain.Organisation {
	desc := "Accelerator for founders in the UAE."
	return domain.NewOrganisation(domain.ScrapedOrg{
		Name:        "Acme Labs",
		Description: &desc,
		Website:     website,
		Twitter:     "acmelabs",
		Country:     "UAE",
	}, domain.Classification{
		IsEcosystemOrg: true,
		Type:           domain.OrgTypeIncubator,
		Category:       "Support Programs",
		Subcategory:    "Accelerator",
		RoleSummary:    "Runs an accelerator.",
		Confidence:     confidence,
		Provider:       "groq",
		Model:          "llama-3.3-70b-versatile",
		NeedsReview:    confidence < 0.7,
	})
}

func degradedOrg(website string) *domain.Organisation {
	return domain.NewOrganisation(domain.ScrapedOrg{Name: "Acme Labs", Website: website}, domain.Classification{
		Type:        domain.OrgTypeOther,
		Category:    domain.DefaultCategory,
		Subcategory: domain.DefaultSubcategory,
		RoleSummary: "Pending manual classification",
		NeedsReview: true,
		Degraded:    true,
	})
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, Config{Driver: DriverSQLite, URL: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx))

	v, err := db.MigrationVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestOrgRepo_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	org := liveOrg("https://www.acme.ae/", 0.82)
	created, err := repo.Upsert(ctx, org)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, org.ID)

	got, err := repo.GetByWebsite(ctx, "acme.ae")
	require.NoError(t, err)
	assert.Equal(t, org.ID, got.ID)
	assert.Equal(t, "acme.ae", got.WebsiteKey)
	assert.Equal(t, "Support Programs", got.Category)
	assert.Equal(t, domain.OrgTypeIncubator, got.Type)
	assert.Equal(t, "groq", got.Provider)
	assert.InDelta(t, 0.82, got.Confidence, 1e-9)
	assert.False(t, got.NeedsReview)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestOrgRepo_GetMissing(t *testing.T) {
	_, err := newTestRepo(t).GetByWebsite(context.Background(), "https://nowhere.ae")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestOrgRepo_UpsertDeduplicatesByWebsite(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return base }

	first := liveOrg("https://acme.ae", 0.5)
	_, err := repo.Upsert(ctx, first)
	require.NoError(t, err)

	repo.now = func() time.Time { return base.Add(time.Hour) }
	second := liveOrg("http://WWW.acme.ae/", 0.9)
	second.Twitter = ""
	created, err := repo.Upsert(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	all, err := repo.List(ctx, storage.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.InDelta(t, 0.9, all[0].Confidence, 1e-9)
	assert.Equal(t, "acmelabs", all[0].Twitter, "empty factual fields keep stored values")
	assert.True(t, all[0].UpdatedAt.After(all[0].CreatedAt))
}

func TestOrgRepo_DegradedNeverOverwritesLive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.Upsert(ctx, liveOrg("https://acme.ae", 0.8))
	require.NoError(t, err)
	incoming := degradedOrg("https://acme.ae")
	_, err = repo.Upsert(ctx, incoming)
	require.NoError(t, err)
	assert.False(t, incoming.Degraded, "upsert reports the stored record")
	assert.Equal(t, "groq", incoming.Provider)

	got, err := repo.GetByWebsite(ctx, "https://acme.ae")
	require.NoError(t, err)
	assert.False(t, got.Degraded)
	assert.Equal(t, "groq", got.Provider)

	// A live result does replace a degraded one.
	_, err = repo.Upsert(ctx, degradedOrg("https://other.ae"))
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, liveOrg("https://other.ae", 0.75))
	require.NoError(t, err)

	got, err = repo.GetByWebsite(ctx, "https://other.ae")
	require.NoError(t, err)
	assert.False(t, got.Degraded)
}

func TestOrgRepo_ListFilter(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.Upsert(ctx, liveOrg("https://a.ae", 0.9))
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, liveOrg("https://b.ae", 0.4))
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, degradedOrg("https://c.ae"))
	require.NoError(t, err)

	yes, no := true, false

	review, err := repo.List(ctx, storage.ListFilter{NeedsReview: &yes})
	require.NoError(t, err)
	assert.Len(t, review, 2)

	live, err := repo.List(ctx, storage.ListFilter{Degraded: &no})
	require.NoError(t, err)
	assert.Len(t, live, 2)

	degraded, err := repo.List(ctx, storage.ListFilter{Degraded: &yes})
	require.NoError(t, err)
	require.Len(t, degraded, 1)
	assert.Empty(t, degraded[0].Provider)
	assert.Empty(t, degraded[0].Model)
}
