// Package validate checks merged organisation records before they are stored.
package validate

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

var (
	ErrMissingName    = errors.New("name is required")
	ErrMissingWebsite = errors.New("website is required")
	ErrBadWebsite     = errors.New("website must be an absolute http(s) url")
	ErrNotInTaxonomy  = errors.New("category/subcategory not in taxonomy")
	ErrBadConfidence  = errors.New("confidence must be within [0,1]")
	ErrBadType        = errors.New("unknown organisation type")
	ErrDegradedSource = errors.New("degraded result must not name a provider or model")
	ErrLiveNoSource   = errors.New("live result must name a provider")
	ErrReviewFlag     = errors.New("needsReview must be set for degraded or low-confidence results")
)

// Record validates org and returns every violation joined into one error.
// needsReview must be set below reviewThreshold, which is raised to
// domain.ReviewFloor when lower.
func Record(org *domain.Organisation, reviewThreshold float64) error {
	if org == nil {
		return errors.New("nil organisation")
	}

	var errs []error

	if strings.TrimSpace(org.Name) == "" {
		errs = append(errs, ErrMissingName)
	}
	if strings.TrimSpace(org.Website) == "" {
		errs = append(errs, ErrMissingWebsite)
	} else if u, err := url.Parse(org.Website); err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrBadWebsite, org.Website))
	}

	errs = append(errs, classificationErrors(org.Classification, domain.ReviewThreshold(reviewThreshold))...)
	return errors.Join(errs...)
}

func classificationErrors(c domain.Classification, threshold float64) []error {
	var errs []error

	if !domain.IsValidLeaf(c.Category, c.Subcategory) {
		errs = append(errs, fmt.Errorf("%w: %q/%q", ErrNotInTaxonomy, c.Category, c.Subcategory))
	}
	if math.IsNaN(c.Confidence) || c.Confidence < 0 || c.Confidence > 1 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrBadConfidence, c.Confidence))
	}
	if domain.ParseOrgType(string(c.Type)) != c.Type {
		errs = append(errs, fmt.Errorf("%w: %q", ErrBadType, c.Type))
	}

	if c.Degraded {
		if c.Provider != "" || c.Model != "" {
			errs = append(errs, ErrDegradedSource)
		}
	} else if c.Provider == "" {
		errs = append(errs, ErrLiveNoSource)
	}

	if (c.Degraded || c.Confidence < threshold) && !c.NeedsReview {
		errs = append(errs, ErrReviewFlag)
	}
	return errs
}
