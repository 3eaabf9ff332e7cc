package db

import (
	"fmt"
	"time"
)

const BookmarksTable = "bookmarks"

// TimeLayout is fixed width so that text ordering of date_added matches
// chronological ordering.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// BookmarkColumns is the bookmarks schema, in declaration order.
var BookmarkColumns = []Column{
	{Name: "id", Type: "integer primary key autoincrement"},
	{Name: "title", Type: "text not null"},
	{Name: "url", Type: "text not null"},
	{Name: "notes", Type: "text"},
	{Name: "date_added", Type: "text not null"},
}

type Bookmark struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Notes     string    `json:"notes,omitempty"`
	DateAdded time.Time `json:"date_added"`
}

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime accepts TimeLayout and falls back to RFC 3339 for rows written
// by other tools.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// BookmarkFromRow maps a bookmarks row. A NULL notes column becomes "".
func BookmarkFromRow(r Row) (Bookmark, error) {
	var b Bookmark

	id, ok := r["id"].(int64)
	if !ok {
		return b, fmt.Errorf("bookmark row: unexpected id %T", r["id"])
	}
	b.ID = id
	b.Title = asString(r["title"])
	b.URL = asString(r["url"])
	b.Notes = asString(r["notes"])

	added := asString(r["date_added"])
	if added != "" {
		t, err := ParseTime(added)
		if err != nil {
			return b, fmt.Errorf("bookmark %d: date_added: %w", b.ID, err)
		}
		b.DateAdded = t
	}
	return b, nil
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case time.Time:
		return FormatTime(s)
	default:
		return fmt.Sprint(s)
	}
}
