package domain

import "strings"

// Taxonomy maps every allowed category to its allowed subcategories.
// It is shared by the classifier and the record validator and must not be mutated.
var Taxonomy = map[string][]string{
	"Startups":            {"Early Stage", "Growth Stage", "Scale-up"},
	"Investors":           {"Venture Capital", "Angel Network", "Corporate VC"},
	"Support Programs":    {"Incubator", "Accelerator", "Venture Studio"},
	"Government & Public": {"Government Entity", "Free Zone", "Regulator"},
	"Community & Events":  {"Community", "Event Organizer", "Coworking Space"},
	"Other":               {"Service Provider", "Media", "Uncategorized"},
}

// TaxonomyOrder fixes the category order used in prompts and reports.
var TaxonomyOrder = []string{
	"Startups",
	"Investors",
	"Support Programs",
	"Government & Public",
	"Community & Events",
	"Other",
}

// Leaf values used by degraded results.
const (
	DefaultCategory    = "Other"
	DefaultSubcategory = "Uncategorized"
)

// IsValidLeaf reports whether category and subcategory form an exact taxonomy pair.
func IsValidLeaf(category, subcategory string) bool {
	subs, ok := Taxonomy[category]
	if !ok {
		return false
	}
	for _, s := range subs {
		if s == subcategory {
			return true
		}
	}
	return false
}

// Canonicalize matches category and subcategory case-insensitively against the
// taxonomy and returns their canonical spelling.
func Canonicalize(category, subcategory string) (string, string, bool) {
	cat := normalizeLabel(category)
	sub := normalizeLabel(subcategory)
	for _, name := range TaxonomyOrder {
		if normalizeLabel(name) != cat {
			continue
		}
		for _, s := range Taxonomy[name] {
			if normalizeLabel(s) == sub {
				return name, s, true
			}
		}
		return "", "", false
	}
	return "", "", false
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " and ", " & ")
	return strings.Join(strings.Fields(s), " ")
}
