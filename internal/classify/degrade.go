package classify

import "github.com/vietddude/ecoscout/internal/core/domain"

// PendingSummary is the role summary carried by every degraded result.
const PendingSummary = "Pending manual classification"

// Default returns the fixed degraded classification. It has the same shape
// as a live result so callers never need a separate path.
func Default() domain.Classification {
	return domain.Classification{
		IsEcosystemOrg: false,
		Type:           domain.OrgTypeOther,
		Category:       domain.DefaultCategory,
		Subcategory:    domain.DefaultSubcategory,
		RoleSummary:    PendingSummary,
		Confidence:     0,
		NeedsReview:    true,
		Degraded:       true,
	}
}

// Degraded returns Default with reason appended to the role summary.
func Degraded(reason string) domain.Classification {
	c := Default()
	if reason != "" {
		c.RoleSummary = PendingSummary + ": " + reason
	}
	return c
}
