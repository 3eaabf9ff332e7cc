package sources

import (
	"context"
	"time"
)

// StarSource enumerates the items a user starred on a remote service.
type StarSource interface {
	// Name returns the source identifier (github)
	Name() string
	// Stars calls fn for every starred item of username, page by page and
	// in the order the service returns them. An error from fn stops the
	// walk and is returned as is.
	Stars(ctx context.Context, username string, fn func(Star) error) error
}

// StarredAtLayout is the second-precision UTC layout of starred_at.
const StarredAtLayout = "2006-01-02T15:04:05Z"

type Star struct {
	Name        string
	HTMLURL     string
	Description string
	StarredAt   string
}

// StarredTime parses StarredAt.
func (s Star) StarredTime() (time.Time, error) {
	return time.Parse(StarredAtLayout, s.StarredAt)
}
