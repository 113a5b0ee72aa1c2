package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vietddude/ecoscout/internal/core/domain"
	"github.com/vietddude/ecoscout/internal/infra/storage"
)

// OrgRepo implements storage.OrganisationRepository using SQL.
type OrgRepo struct {
	db  *DB
	now func() time.Time
}

var _ storage.OrganisationRepository = (*OrgRepo)(nil)

// NewOrgRepo creates a new SQL organisation repository.
func NewOrgRepo(db *DB) *OrgRepo {
	return &OrgRepo{db: db, now: time.Now}
}

type orgRow struct {
	ID             string         `db:"id"`
	WebsiteKey     string         `db:"website_key"`
	Name           string         `db:"name"`
	Description    string         `db:"description"`
	Website        string         `db:"website"`
	Twitter        string         `db:"twitter"`
	Country        string         `db:"country"`
	IsEcosystemOrg bool           `db:"is_ecosystem_org"`
	OrgType        string         `db:"org_type"`
	Category       string         `db:"category"`
	Subcategory    string         `db:"subcategory"`
	RoleSummary    string         `db:"role_summary"`
	Confidence     float64        `db:"confidence"`
	Provider       sql.NullString `db:"provider"`
	Model          sql.NullString `db:"model"`
	NeedsReview    bool           `db:"needs_review"`
	Degraded       bool           `db:"degraded"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

const orgColumns = `id, website_key, name, description, website, twitter, country,
	is_ecosystem_org, org_type, category, subcategory, role_summary, confidence,
	provider, model, needs_review, degraded, created_at, updated_at`

func toRow(org *domain.Organisation) orgRow {
	return orgRow{
		ID:             org.ID,
		WebsiteKey:     org.WebsiteKey,
		Name:           org.Name,
		Description:    org.Description,
		Website:        org.Website,
		Twitter:        org.Twitter,
		Country:        org.Country,
		IsEcosystemOrg: org.IsEcosystemOrg,
		OrgType:        string(org.Type),
		Category:       org.Category,
		Subcategory:    org.Subcategory,
		RoleSummary:    org.RoleSummary,
		Confidence:     org.Confidence,
		Provider:       sql.NullString{String: org.Provider, Valid: org.Provider != ""},
		Model:          sql.NullString{String: org.Model, Valid: org.Model != ""},
		NeedsReview:    org.NeedsReview,
		Degraded:       org.Degraded,
		CreatedAt:      org.CreatedAt,
		UpdatedAt:      org.UpdatedAt,
	}
}

func (r orgRow) toDomain() *domain.Organisation {
	return &domain.Organisation{
		ID:          r.ID,
		WebsiteKey:  r.WebsiteKey,
		Name:        r.Name,
		Description: r.Description,
		Website:     r.Website,
		Twitter:     r.Twitter,
		Country:     r.Country,
		Classification: domain.Classification{
			IsEcosystemOrg: r.IsEcosystemOrg,
			Type:           domain.OrgType(r.OrgType),
			Category:       r.Category,
			Subcategory:    r.Subcategory,
			RoleSummary:    r.RoleSummary,
			Confidence:     r.Confidence,
			Provider:       r.Provider.String,
			Model:          r.Model.String,
			NeedsReview:    r.NeedsReview,
			Degraded:       r.Degraded,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Upsert saves org keyed by its normalised website.
func (r *OrgRepo) Upsert(ctx context.Context, org *domain.Organisation) (bool, error) {
	if org.WebsiteKey == "" {
		org.WebsiteKey = domain.WebsiteKey(org.Website)
	}
	now := r.now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := getByKey(ctx, tx, org.WebsiteKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		org.ID = uuid.NewString()
		org.CreatedAt = now
		org.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO organisations (`+orgColumns+`) VALUES (
			:id, :website_key, :name, :description, :website, :twitter, :country,
			:is_ecosystem_org, :org_type, :category, :subcategory, :role_summary, :confidence,
			:provider, :model, :needs_review, :degraded, :created_at, :updated_at)`, toRow(org)); err != nil {
			return false, fmt.Errorf("failed to insert organisation: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("failed to commit: %w", err)
		}
		return true, nil

	case err != nil:
		return false, err
	}

	merged := storage.Merge(existing, org, now)
	if _, err := tx.NamedExecContext(ctx, `UPDATE organisations SET
		name = :name, description = :description, website = :website,
		twitter = :twitter, country = :country,
		is_ecosystem_org = :is_ecosystem_org, org_type = :org_type,
		category = :category, subcategory = :subcategory, role_summary = :role_summary,
		confidence = :confidence, provider = :provider, model = :model,
		needs_review = :needs_review, degraded = :degraded, updated_at = :updated_at
		WHERE id = :id`, toRow(merged)); err != nil {
		return false, fmt.Errorf("failed to update organisation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}

	*org = *merged
	return false, nil
}

// GetByWebsite retrieves an organisation by website.
func (r *OrgRepo) GetByWebsite(ctx context.Context, website string) (*domain.Organisation, error) {
	return getByKey(ctx, r.db, domain.WebsiteKey(website))
}

// List retrieves organisations ordered by name.
func (r *OrgRepo) List(ctx context.Context, filter storage.ListFilter) ([]*domain.Organisation, error) {
	var (
		where []string
		args  []any
	)
	if filter.NeedsReview != nil {
		where = append(where, "needs_review = ?")
		args = append(args, *filter.NeedsReview)
	}
	if filter.Degraded != nil {
		where = append(where, "degraded = ?")
		args = append(args, *filter.Degraded)
	}

	query := `SELECT ` + orgColumns + ` FROM organisations`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY name, website_key`

	var rows []orgRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list organisations: %w", err)
	}

	out := make([]*domain.Organisation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func getByKey(ctx context.Context, q sqlx.ExtContext, key string) (*domain.Organisation, error) {
	var row orgRow
	err := sqlx.GetContext(ctx, q, &row, q.Rebind(`SELECT `+orgColumns+` FROM organisations WHERE website_key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organisation: %w", err)
	}
	return row.toDomain(), nil
}
