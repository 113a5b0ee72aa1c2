package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// OrgType is the coarse kind of an ecosystem organisation.
type OrgType string

const (
	OrgTypeStartup    OrgType = "startup"
	OrgTypeVC         OrgType = "vc"
	OrgTypeIncubator  OrgType = "incubator"
	OrgTypeGovernment OrgType = "government"
	OrgTypeCommunity  OrgType = "community"
	OrgTypeOther      OrgType = "other"
)

var orgTypes = map[OrgType]struct{}{
	OrgTypeStartup:    {},
	OrgTypeVC:         {},
	OrgTypeIncubator:  {},
	OrgTypeGovernment: {},
	OrgTypeCommunity:  {},
	OrgTypeOther:      {},
}

// ParseOrgType normalises s into an OrgType. Unknown values map to OrgTypeOther.
func ParseOrgType(s string) OrgType {
	t := OrgType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := orgTypes[t]; ok {
		return t
	}
	return OrgTypeOther
}

// ReviewFloor is the confidence below which a result always needs review.
const ReviewFloor = 0.7

// ReviewThreshold raises t to ReviewFloor. A configured threshold may make
// review stricter, never looser.
func ReviewThreshold(t float64) float64 {
	if t < ReviewFloor {
		return ReviewFloor
	}
	return t
}

// ClassificationRequest is the input handed to the classifier by the scraper side.
type ClassificationRequest struct {
	Name        string
	Description *string
	Website     string
}

// DescriptionText returns the description or an empty string when absent.
func (r ClassificationRequest) DescriptionText() string {
	if r.Description == nil {
		return ""
	}
	return *r.Description
}

// Classification is the normalised output of the classifier.
// It carries classification fields only; factual fields such as website,
// twitter or country belong to Organisation.
type Classification struct {
	IsEcosystemOrg bool
	Type           OrgType
	Category       string
	Subcategory    string
	RoleSummary    string
	Confidence     float64
	Provider       string // empty when degraded
	Model          string // empty when degraded
	NeedsReview    bool
	Degraded       bool
}

type classificationJSON struct {
	IsEcosystemOrg bool    `json:"isEcosystemOrg"`
	Type           OrgType `json:"type"`
	Category       string  `json:"category"`
	Subcategory    string  `json:"subcategory"`
	RoleSummary    string  `json:"role_summary"`
	Confidence     float64 `json:"confidence"`
	Provider       *string `json:"provider"`
	Model          *string `json:"model"`
	NeedsReview    bool    `json:"needsReview"`
	Degraded       bool    `json:"degraded"`
}

func (c Classification) toJSON() classificationJSON {
	out := classificationJSON{
		IsEcosystemOrg: c.IsEcosystemOrg,
		Type:           c.Type,
		Category:       c.Category,
		Subcategory:    c.Subcategory,
		RoleSummary:    c.RoleSummary,
		Confidence:     c.Confidence,
		NeedsReview:    c.NeedsReview,
		Degraded:       c.Degraded,
	}
	if c.Provider != "" {
		provider := c.Provider
		out.Provider = &provider
	}
	if c.Model != "" {
		model := c.Model
		out.Model = &model
	}
	return out
}

func (in classificationJSON) classification() Classification {
	c := Classification{
		IsEcosystemOrg: in.IsEcosystemOrg,
		Type:           in.Type,
		Category:       in.Category,
		Subcategory:    in.Subcategory,
		RoleSummary:    in.RoleSummary,
		Confidence:     in.Confidence,
		NeedsReview:    in.NeedsReview,
		Degraded:       in.Degraded,
	}
	if in.Provider != nil {
		c.Provider = *in.Provider
	}
	if in.Model != nil {
		c.Model = *in.Model
	}
	return c
}

// MarshalJSON encodes provider and model as null for degraded results.
func (c Classification) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.toJSON())
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (c *Classification) UnmarshalJSON(data []byte) error {
	var in classificationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = in.classification()
	return nil
}

// ScrapedOrg holds the factual fields extracted from an organisation's page.
type ScrapedOrg struct {
	Name        string
	Description *string
	Website     string
	Twitter     string
	Country     string
}

// Request builds the classifier input from scraped data.
func (s ScrapedOrg) Request() ClassificationRequest {
	return ClassificationRequest{
		Name:        s.Name,
		Description: s.Description,
		Website:     s.Website,
	}
}

// Organisation is the persisted record: scraped facts merged with a classification.
type Organisation struct {
	ID          string
	WebsiteKey  string
	Name        string
	Description string
	Website     string
	Twitter     string
	Country     string

	Classification

	CreatedAt time.Time
	UpdatedAt time.Time
}

type organisationJSON struct {
	ID          string `json:"id,omitempty"`
	WebsiteKey  string `json:"website_key,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Twitter     string `json:"twitter"`
	Country     string `json:"country"`

	classificationJSON

	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// MarshalJSON encodes the record as one flat object of factual and
// classification fields. Without it the embedded Classification's
// MarshalJSON would be promoted and drop the factual fields.
func (o Organisation) MarshalJSON() ([]byte, error) {
	return json.Marshal(organisationJSON{
		ID:                 o.ID,
		WebsiteKey:         o.WebsiteKey,
		Name:               o.Name,
		Description:        o.Description,
		Website:            o.Website,
		Twitter:            o.Twitter,
		Country:            o.Country,
		classificationJSON: o.Classification.toJSON(),
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (o *Organisation) UnmarshalJSON(data []byte) error {
	var in organisationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*o = Organisation{
		ID:             in.ID,
		WebsiteKey:     in.WebsiteKey,
		Name:           in.Name,
		Description:    in.Description,
		Website:        in.Website,
		Twitter:        in.Twitter,
		Country:        in.Country,
		Classification: in.classificationJSON.classification(),
		CreatedAt:      in.CreatedAt,
		UpdatedAt:      in.UpdatedAt,
	}
	if o.WebsiteKey == "" {
		o.WebsiteKey = WebsiteKey(o.Website)
	}
	return nil
}

// NewOrganisation merges scraped facts with a classification.
func NewOrganisation(scraped ScrapedOrg, c Classification) *Organisation {
	desc := ""
	if scraped.Description != nil {
		desc = *scraped.Description
	}
	return &Organisation{
		WebsiteKey:     WebsiteKey(scraped.Website),
		Name:           scraped.Name,
		Description:    desc,
		Website:        scraped.Website,
		Twitter:        scraped.Twitter,
		Country:        scraped.Country,
		Classification: c,
	}
}
