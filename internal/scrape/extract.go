package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

const (
	minParagraph = 40
	countryUAE   = "UAE"
)

var (
	titleSeparators = []string{" | ", " – ", " — ", " - ", " :: "}
	innerWhitespace = regexp.MustCompile(`\s+`)
	uaeMention      = regexp.MustCompile(`(?i)\b(dubai|abu dhabi|sharjah|u\.?a\.?e\.?|united arab emirates)\b`)

	// Path prefixes on twitter.com / x.com that are not profiles.
	twitterReserved = map[string]bool{
		"share": true, "intent": true, "home": true, "hashtag": true,
		"search": true, "i": true, "login": true, "signup": true,
	}
)

// Extract reads the organisation's facts from a parsed landing page.
func Extract(doc *goquery.Document, page *url.URL) domain.ScrapedOrg {
	org := domain.ScrapedOrg{
		Name:    extractName(doc, page),
		Website: page.String(),
		Twitter: extractTwitter(doc),
	}
	if desc := extractDescription(doc); desc != "" {
		org.Description = &desc
	}
	org.Country = extractCountry(doc, page)
	return org
}

func clean(s string) string {
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(s, " "))
}

func meta(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return clean(v)
}

func extractName(doc *goquery.Document, page *url.URL) string {
	if v := meta(doc, `meta[property="og:site_name"]`); v != "" {
		return v
	}
	candidates := []string{
		meta(doc, `meta[property="og:title"]`),
		clean(doc.Find("title").First().Text()),
		clean(doc.Find("h1").First().Text()),
	}
	for _, c := range candidates {
		if c = trimTitle(c); c != "" {
			return c
		}
	}
	return strings.TrimPrefix(page.Hostname(), "www.")
}

// trimTitle drops trailing taglines such as "Acme | Home".
func trimTitle(s string) string {
	for _, sep := range titleSeparators {
		if i := strings.Index(s, sep); i > 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

func extractDescription(doc *goquery.Document) string {
	if v := meta(doc, `meta[name="description"]`); v != "" {
		return v
	}
	if v := meta(doc, `meta[property="og:description"]`); v != "" {
		return v
	}

	var desc string
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if text := clean(p.Text()); len(text) >= minParagraph {
			desc = text
			return false
		}
		return true
	})
	return desc
}

func extractTwitter(doc *goquery.Document) string {
	if v := strings.TrimPrefix(meta(doc, `meta[name="twitter:site"]`), "@"); v != "" && !strings.Contains(v, "/") {
		return v
	}

	var handle string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if h := twitterHandle(href); h != "" {
			handle = h
			return false
		}
		return true
	})
	return handle
}

// twitterHandle returns the profile handle of a twitter.com or x.com link.
func twitterHandle(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "mobile.")
	if host != "twitter.com" && host != "x.com" {
		return ""
	}

	segment := strings.Trim(u.Path, "/")
	if i := strings.Index(segment, "/"); i >= 0 {
		segment = segment[:i]
	}
	segment = strings.TrimPrefix(segment, "@")
	if segment == "" || twitterReserved[strings.ToLower(segment)] {
		return ""
	}
	return segment
}

func extractCountry(doc *goquery.Document, page *url.URL) string {
	if strings.HasSuffix(strings.ToLower(page.Hostname()), ".ae") {
		return countryUAE
	}
	sources := []string{
		doc.Find("title").First().Text(),
		meta(doc, `meta[name="description"]`),
		doc.Find("body").Text(),
	}
	for _, text := range sources {
		if uaeMention.MatchString(text) {
			return countryUAE
		}
	}
	return ""
}
