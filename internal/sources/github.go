package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tomnomnom/linkheader"
	"github.com/user/barky/internal/logger"
)

// starAcceptHeader asks the API to wrap each repo with its starred_at.
const starAcceptHeader = "application/vnd.github.v3.star+json"

// FetchError reports a failed page request during a pagination walk.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type GitHubOptions struct {
	APIURL  string
	Token   string
	Timeout time.Duration
	PerPage int
}

type GitHubSource struct {
	client  *http.Client
	apiURL  string
	token   string
	perPage int
	log     logger.Logger
}

func NewGitHubSource(opts GitHubOptions, log logger.Logger) *GitHubSource {
	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = "https://api.github.com"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GitHubSource{
		client:  &http.Client{Timeout: timeout},
		apiURL:  strings.TrimSuffix(apiURL, "/"),
		token:   opts.Token,
		perPage: opts.PerPage,
		log:     log,
	}
}

func (g *GitHubSource) Name() string {
	return "github"
}

type ghStar struct {
	StarredAt string `json:"starred_at"`
	Repo      struct {
		Name        string  `json:"name"`
		HTMLURL     string  `json:"html_url"`
		Description *string `json:"description"`
	} `json:"repo"`
}

// FirstPageURL is where the walk for username starts.
func (g *GitHubSource) FirstPageURL(username string) string {
	u := fmt.Sprintf("%s/users/%s/starred", g.apiURL, url.PathEscape(username))
	if g.perPage > 0 {
		u += "?per_page=" + strconv.Itoa(g.perPage)
	}
	return u
}

// Stars walks the starred listing one page at a time, following the Link
// header's rel="next" until it is absent. Only one page is held in memory.
func (g *GitHubSource) Stars(ctx context.Context, username string, fn func(Star) error) error {
	next := g.FirstPageURL(username)
	for page := 1; next != ""; page++ {
		stars, nextURL, err := g.fetchPage(ctx, next)
		if err != nil {
			return err
		}
		g.log.Debug("fetched starred page",
			logger.Int("page", page),
			logger.Int("items", len(stars)),
			logger.String("next", nextURL))

		for _, s := range stars {
			star := Star{
				Name:      s.Repo.Name,
				HTMLURL:   s.Repo.HTMLURL,
				StarredAt: s.StarredAt,
			}
			if s.Repo.Description != nil {
				star.Description = *s.Repo.Description
			}
			if err := fn(star); err != nil {
				return err
			}
		}
		next = nextURL
	}
	return nil
}

func (g *GitHubSource) fetchPage(ctx context.Context, pageURL string) ([]ghStar, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", &FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("Accept", starAcceptHeader)
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, "", &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, "", &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	var stars []ghStar
	if err := json.NewDecoder(resp.Body).Decode(&stars); err != nil {
		return nil, "", &FetchError{URL: pageURL, Err: fmt.Errorf("decode page: %w", err)}
	}

	next := ""
	if links := linkheader.ParseMultiple(resp.Header.Values("Link")).FilterByRel("next"); len(links) > 0 {
		next = links[0].URL
	}
	return stars, next, nil
}
