package provider

import (
	"fmt"
	"strings"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

const maxDescriptionRunes = 2000

// Prompt is the rendered instruction pair sent to every backend.
type Prompt struct {
	System string
	User   string
}

// BuildPrompt renders the classification prompt for req.
func BuildPrompt(req domain.ClassificationRequest) Prompt {
	var taxonomy strings.Builder
	for _, cat := range domain.TaxonomyOrder {
		fmt.Fprintf(&taxonomy, "- %s: %s\n", cat, strings.Join(domain.Taxonomy[cat], ", "))
	}

	system := fmt.Sprintf(`You classify organisations in a startup ecosystem.
Choose exactly one category and one subcategory from this taxonomy:
%s
Allowed values for "type": startup, vc, incubator, government, community, other.
Set isEcosystemOrg to false for organisations that do not take part in the startup ecosystem.
role_summary is one sentence describing what the organisation does for the ecosystem.
confidence is a number between 0 and 1.

Respond with JSON only (no markdown):
{"isEcosystemOrg": true, "type": "incubator", "category": "Support Programs", "subcategory": "Accelerator", "role_summary": "...", "confidence": 0.85}`,
		taxonomy.String())

	desc := strings.TrimSpace(req.DescriptionText())
	if r := []rune(desc); len(r) > maxDescriptionRunes {
		desc = string(r[:maxDescriptionRunes]) + "..."
	}
	if desc == "" {
		desc = "(none)"
	}

	user := fmt.Sprintf("Name: %s\nWebsite: %s\nDescription: %s",
		strings.TrimSpace(req.Name), strings.TrimSpace(req.Website), desc)

	return Prompt{System: system, User: user}
}
