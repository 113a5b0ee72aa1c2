package validate

import (
	"errors"
	"testing"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

func validOrg() *domain.Organisation {
	return &domain.Organisation{
		Name:    "Acme Labs",
		Website: "https://acme.ae",
		Classification: domain.Classification{
			IsEcosystemOrg: true,
			Type:           domain.OrgTypeIncubator,
			Category:       "Support Programs",
			Subcategory:    "Accelerator",
			RoleSummary:    "Runs an accelerator.",
			Confidence:     0.8,
			Provider:       "groq",
			Model:          "llama-3.3-70b-versatile",
		},
	}
}

func TestRecord(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *domain.Organisation)
		want   []error
	}{
		{"valid", func(o *domain.Organisation) {}, nil},
		{"missing name", func(o *domain.Organisation) { o.Name = " " }, []error{ErrMissingName}},
		{"missing website", func(o *domain.Organisation) { o.Website = "" }, []error{ErrMissingWebsite}},
		{"relative website", func(o *domain.Organisation) { o.Website = "acme.ae" }, []error{ErrBadWebsite}},
		{"ftp website", func(o *domain.Organisation) { o.Website = "ftp://acme.ae" }, []error{ErrBadWebsite}},
		{"off taxonomy", func(o *domain.Organisation) { o.Subcategory = "Exchange" }, []error{ErrNotInTaxonomy}},
		{"confidence high", func(o *domain.Organisation) { o.Confidence = 1.2 }, []error{ErrBadConfidence}},
		{"bad type", func(o *domain.Organisation) { o.Type = "bank" }, []error{ErrBadType}},
		{"live without provider", func(o *domain.Organisation) { o.Provider = "" }, []error{ErrLiveNoSource}},
		{"low confidence without review", func(o *domain.Organisation) { o.Confidence = 0.3 }, []error{ErrReviewFlag}},
		{"degraded with provider", func(o *domain.Organisation) {
			o.Degraded = true
			o.NeedsReview = true
		}, []error{ErrDegradedSource}},
		{"several at once", func(o *domain.Organisation) {
			o.Name = ""
			o.Category = "Crypto"
			o.Confidence = -1
		}, []error{ErrMissingName, ErrNotInTaxonomy, ErrBadConfidence, ErrReviewFlag}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			org := validOrg()
			tt.mutate(org)

			err := Record(org, domain.ReviewFloor)
			if len(tt.want) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			for _, w := range tt.want {
				if !errors.Is(err, w) {
					t.Errorf("expected %v in %v", w, err)
				}
			}
		})
	}
}

func TestRecord_DegradedDefaultIsValid(t *testing.T) {
	org := validOrg()
	org.Classification = domain.Classification{
		Type:        domain.OrgTypeOther,
		Category:    domain.DefaultCategory,
		Subcategory: domain.DefaultSubcategory,
		RoleSummary: "Pending manual classification",
		NeedsReview: true,
		Degraded:    true,
	}
	if err := Record(org, domain.ReviewFloor); err != nil {
		t.Errorf("degraded default rejected: %v", err)
	}
}

func TestRecord_ReviewThreshold(t *testing.T) {
	tests := []struct {
		name       string
		threshold  float64
		confidence float64
		review     bool
		wantErr    bool
	}{
		{"below floor is raised", 0.5, 0.6, false, true},
		{"below floor flagged", 0.5, 0.6, true, false},
		{"stricter threshold", 0.8, 0.75, false, true},
		{"stricter threshold flagged", 0.8, 0.75, true, false},
		{"above stricter threshold", 0.8, 0.85, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			org := validOrg()
			org.Confidence = tt.confidence
			org.NeedsReview = tt.review

			err := Record(org, tt.threshold)
			if tt.wantErr != (err != nil) {
				t.Fatalf("Record() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrReviewFlag) {
				t.Errorf("expected ErrReviewFlag, got %v", err)
			}
		})
	}
}

func TestRecord_Nil(t *testing.T) {
	if Record(nil, domain.ReviewFloor) == nil {
		t.Error("expected error for nil record")
	}
}
