// Package report renders stored organisations as a markdown summary.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

// Summary holds aggregate counts over a set of organisations.
type Summary struct {
	Total       int
	Live        int
	Degraded    int
	NeedsReview int
	Ecosystem   int
	ByProvider  map[string]int
	ByLeaf      map[string]map[string]int // category -> subcategory -> count
}

// Summarize counts orgs.
func Summarize(orgs []*domain.Organisation) Summary {
	s := Summary{
		ByProvider: make(map[string]int),
		ByLeaf:     make(map[string]map[string]int),
	}
	for _, o := range orgs {
		s.Total++
		if o.Degraded {
			s.Degraded++
		} else {
			s.Live++
			s.ByProvider[o.Provider]++
		}
		if o.NeedsReview {
			s.NeedsReview++
		}
		if o.IsEcosystemOrg {
			s.Ecosystem++
		}
		if s.ByLeaf[o.Category] == nil {
			s.ByLeaf[o.Category] = make(map[string]int)
		}
		s.ByLeaf[o.Category][o.Subcategory]++
	}
	return s
}

// RenderMarkdown writes the report for orgs to w.
func RenderMarkdown(w io.Writer, orgs []*domain.Organisation, generatedAt time.Time) error {
	s := Summarize(orgs)
	var b strings.Builder

	fmt.Fprintf(&b, "# Ecosystem classification report\n\n")
	fmt.Fprintf(&b, "Generated %s\n\n", generatedAt.UTC().Format(time.RFC3339))

	b.WriteString("## Summary\n\n")
	summary := table.NewWriter()
	summary.AppendHeader(table.Row{"Metric", "Count"})
	summary.AppendRows([]table.Row{
		{"Organisations", s.Total},
		{"Ecosystem organisations", s.Ecosystem},
		{"Classified", s.Live},
		{"Pending manual classification", s.Degraded},
		{"Needs review", s.NeedsReview},
	})
	for _, p := range sortedKeys(s.ByProvider) {
		summary.AppendRow(table.Row{"Classified by " + p, s.ByProvider[p]})
	}
	b.WriteString(summary.RenderMarkdown())
	b.WriteString("\n\n")

	b.WriteString("## By category\n\n")
	cats := table.NewWriter()
	cats.AppendHeader(table.Row{"Category", "Subcategory", "Count"})
	for _, cat := range categoryOrder(s.ByLeaf) {
		for _, sub := range subcategoryOrder(cat, s.ByLeaf[cat]) {
			cats.AppendRow(table.Row{cat, sub, s.ByLeaf[cat][sub]})
		}
	}
	b.WriteString(cats.RenderMarkdown())
	b.WriteString("\n\n")

	b.WriteString("## Needs review\n\n")
	var review []*domain.Organisation
	for _, o := range orgs {
		if o.NeedsReview {
			review = append(review, o)
		}
	}
	if len(review) == 0 {
		b.WriteString("Nothing to review.\n")
	} else {
		sort.SliceStable(review, func(i, j int) bool {
			return review[i].Confidence < review[j].Confidence
		})
		rt := table.NewWriter()
		rt.AppendHeader(table.Row{"Name", "Website", "Category", "Subcategory", "Confidence", "Source"})
		for _, o := range review {
			rt.AppendRow(table.Row{
				o.Name,
				o.Website,
				o.Category,
				o.Subcategory,
				fmt.Sprintf("%.2f", o.Confidence),
				source(o),
			})
		}
		b.WriteString(rt.RenderMarkdown())
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func source(o *domain.Organisation) string {
	if o.Degraded {
		return "pending"
	}
	return o.Provider + "/" + o.Model
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// categoryOrder lists taxonomy categories first, in taxonomy order, then
// anything else alphabetically.
func categoryOrder(m map[string]map[string]int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, cat := range domain.TaxonomyOrder {
		if _, ok := m[cat]; ok {
			out = append(out, cat)
			seen[cat] = true
		}
	}
	var rest []string
	for cat := range m {
		if !seen[cat] {
			rest = append(rest, cat)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func subcategoryOrder(cat string, m map[string]int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, sub := range domain.Taxonomy[cat] {
		if _, ok := m[sub]; ok {
			out = append(out, sub)
			seen[sub] = true
		}
	}
	var rest []string
	for sub := range m {
		if !seen[sub] {
			rest = append(rest, sub)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
