package control

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

// ReadURLs reads one URL per line. Blank lines and lines starting with '#'
// are skipped, as are repeats of the same website.
func ReadURLs(r io.Reader) ([]string, error) {
	var urls []string
	seen := make(map[string]bool)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key := domain.WebsiteKey(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read urls: %w", err)
	}
	return urls, nil
}
