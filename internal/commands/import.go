package commands

import (
	"context"
	"fmt"

	"github.com/user/barky/internal/logger"
	"github.com/user/barky/internal/sources"
)

type ImportStarsData struct {
	Username          string
	PreserveTimestamp bool
}

// ImportGitHubStars adds one bookmark per starred repository. Each add
// commits on its own, so a failure part way leaves earlier imports in place;
// the returned count then covers what was committed before the error.
type ImportGitHubStars struct {
	Source sources.StarSource
	Add    *AddBookmark
	Log    logger.Logger
}

func (c *ImportGitHubStars) Execute(ctx context.Context, data any) (bool, any, error) {
	d, ok := data.(ImportStarsData)
	if !ok {
		return false, nil, fmt.Errorf("%w: import wants ImportStarsData, got %T", ErrInvalidPayload, data)
	}

	imported := 0
	err := c.Source.Stars(ctx, d.Username, func(star sources.Star) error {
		b, err := bookmarkFromStar(star, d.PreserveTimestamp)
		if err != nil {
			return err
		}
		id, err := c.Add.add(ctx, b)
		if err != nil {
			return err
		}
		imported++
		c.Log.Debug("imported star",
			logger.String("repo", star.Name),
			logger.Int64("id", id))
		return nil
	})
	if err != nil {
		c.Log.Warn("import stopped early",
			logger.String("source", c.Source.Name()),
			logger.String("user", d.Username),
			logger.Int("imported", imported),
			logger.Error(err))
		return false, imported, fmt.Errorf("import %s stars of %s: %w", c.Source.Name(), d.Username, err)
	}
	c.Log.Info("import finished",
		logger.String("source", c.Source.Name()),
		logger.String("user", d.Username),
		logger.Int("imported", imported))
	return true, imported, nil
}

func bookmarkFromStar(star sources.Star, preserve bool) (AddBookmarkData, error) {
	b := AddBookmarkData{
		Title: star.Name,
		URL:   star.HTMLURL,
		Notes: star.Description,
	}
	if preserve {
		ts, err := star.StarredTime()
		if err != nil {
			return b, fmt.Errorf("starred_at of %s: %w", star.Name, err)
		}
		b.DateAdded = ts
	}
	return b, nil
}
