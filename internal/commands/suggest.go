package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/barky/internal/db"
	"github.com/user/barky/internal/enrich"
	"github.com/user/barky/internal/logger"
)

type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, content string) (*enrich.SummaryResult, error)
}

type SuggestNotesData struct {
	ID int64
}

// SuggestNotes replaces a bookmark's notes with an LLM summary of the page.
// Scraper may be nil, in which case only the stored fields are summarized.
type SuggestNotes struct {
	Store      Table
	Scraper    Scraper
	Summarizer Summarizer
	Log        logger.Logger
}

func (c *SuggestNotes) Execute(ctx context.Context, data any) (bool, any, error) {
	d, ok := data.(SuggestNotesData)
	if !ok {
		return false, nil, fmt.Errorf("%w: suggest wants SuggestNotesData, got %T", ErrInvalidPayload, data)
	}

	b, err := getBookmark(ctx, c.Store, d.ID)
	if err != nil {
		return false, nil, err
	}

	content := describe(b)
	if c.Scraper != nil {
		page, err := c.Scraper.Scrape(ctx, b.URL)
		if err != nil {
			c.Log.Warn("scrape failed, summarizing stored fields",
				logger.String("url", b.URL), logger.Error(err))
		} else if strings.TrimSpace(page) != "" {
			content = page
		}
	}

	result, err := c.Summarizer.Summarize(ctx, content)
	if err != nil {
		return false, nil, fmt.Errorf("summarize bookmark %d: %w", b.ID, err)
	}

	notes := result.Notes()
	if _, err := c.Store.Update(ctx, db.BookmarksTable, db.Criteria{"id": b.ID}, db.Row{"notes": notes}); err != nil {
		return false, nil, err
	}
	return true, notes, nil
}

func describe(b db.Bookmark) string {
	parts := []string{b.Title, b.URL}
	if b.Notes != "" {
		parts = append(parts, b.Notes)
	}
	return strings.Join(parts, "\n")
}
