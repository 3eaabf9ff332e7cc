package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Scraper fetches the readable text of a page through a reader endpoint
// (Jina Reader by default: <base><escaped url>).
type Scraper struct {
	client  *http.Client
	baseURL string
}

func NewScraper(baseURL string, timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Scrape fetches the content of targetURL, capped at maxContentLen bytes.
func (s *Scraper) Scrape(ctx context.Context, targetURL string) (string, error) {
	readerURL := s.baseURL + url.QueryEscape(targetURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, readerURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reader returned status %d", resp.StatusCode)
	}

	// Limit content size to avoid excessive token usage
	const maxContentLen = 50000
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxContentLen))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// TitleFromContent takes the first line of scraped content as a page title.
// Reader output starts with "Title: ..."; the prefix is dropped in any case.
// Titles longer than 100 runes are cut.
func TitleFromContent(content, fallback string) string {
	line, _, _ := strings.Cut(content, "\n")
	line = strings.TrimSpace(line)
	if len(line) >= len("title:") && strings.EqualFold(line[:len("title:")], "title:") {
		line = strings.TrimSpace(line[len("title:"):])
	}
	if r := []rune(line); len(r) > 100 {
		line = string(r[:100])
	}
	if line == "" {
		return fallback
	}
	return line
}
