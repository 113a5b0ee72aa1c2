package domain

import (
	"net/url"
	"strings"
)

// WebsiteKey returns the deduplication key for a website URL: lower-case host
// without a leading "www." plus the path without a trailing slash.
func WebsiteKey(website string) string {
	raw := strings.TrimSpace(website)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(website), "/"))
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	path := strings.TrimSuffix(u.EscapedPath(), "/")
	return host + path
}
