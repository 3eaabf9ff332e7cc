package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/user/barky/internal/db"
)

// EditableFields are the columns EditBookmark accepts.
var EditableFields = []string{"title", "url", "notes"}

type CreateBookmarksTable struct {
	Store Table
}

func (c *CreateBookmarksTable) Execute(ctx context.Context, _ any) (bool, any, error) {
	if err := c.Store.CreateTable(ctx, db.BookmarksTable, db.BookmarkColumns); err != nil {
		return false, nil, err
	}
	return true, nil, nil
}

type AddBookmarkData struct {
	Title string
	URL   string
	Notes string
	// DateAdded overrides the creation instant when non-zero.
	DateAdded time.Time
}

type AddBookmark struct {
	Store Table
	Now   func() time.Time
}

func NewAddBookmark(store Table) *AddBookmark {
	return &AddBookmark{Store: store, Now: time.Now}
}

func (c *AddBookmark) Execute(ctx context.Context, data any) (bool, any, error) {
	d, ok := data.(AddBookmarkData)
	if !ok {
		return false, nil, fmt.Errorf("%w: add wants AddBookmarkData, got %T", ErrInvalidPayload, data)
	}
	if _, err := c.add(ctx, d); err != nil {
		return false, nil, err
	}
	return true, nil, nil
}

func (c *AddBookmark) add(ctx context.Context, d AddBookmarkData) (int64, error) {
	added := d.DateAdded
	if added.IsZero() {
		added = c.Now()
	}

	var notes any
	if d.Notes != "" {
		notes = d.Notes
	}

	return c.Store.Insert(ctx, db.BookmarksTable, db.Row{
		"title":      d.Title,
		"url":        d.URL,
		"notes":      notes,
		"date_added": db.FormatTime(added),
	})
}

type ListBookmarks struct {
	Store   Table
	OrderBy string
}

func (c *ListBookmarks) Execute(ctx context.Context, _ any) (bool, any, error) {
	orderBy := c.OrderBy
	if orderBy == "" {
		orderBy = "date_added"
	}
	bookmarks, err := selectBookmarks(ctx, c.Store, nil, orderBy)
	if err != nil {
		return false, nil, err
	}
	return true, bookmarks, nil
}

type EditBookmarkData struct {
	ID    int64
	Field string
	Value string
}

type EditBookmark struct {
	Store Table
}

func (c *EditBookmark) Execute(ctx context.Context, data any) (bool, any, error) {
	d, ok := data.(EditBookmarkData)
	if !ok {
		return false, nil, fmt.Errorf("%w: edit wants EditBookmarkData, got %T", ErrInvalidPayload, data)
	}
	field, ok := NormalizeField(d.Field)
	if !ok {
		return false, nil, fmt.Errorf("%w: %q", ErrInvalidField, d.Field)
	}

	var value any = d.Value
	if field == "notes" && d.Value == "" {
		value = nil
	}

	n, err := c.Store.Update(ctx, db.BookmarksTable, db.Criteria{"id": d.ID}, db.Row{field: value})
	if err != nil {
		return false, nil, err
	}
	if n == 0 {
		return false, nil, fmt.Errorf("%w: id %d", ErrNotFound, d.ID)
	}
	return true, nil, nil
}

// NormalizeField maps user input such as "URL" to an editable column.
func NormalizeField(field string) (string, bool) {
	f := strings.ToLower(strings.TrimSpace(field))
	for _, e := range EditableFields {
		if f == e {
			return e, true
		}
	}
	return "", false
}

type DeleteBookmarkData struct {
	ID int64
}

// DeleteBookmark removes a bookmark by id. A missing id is not an error.
type DeleteBookmark struct {
	Store Table
}

func (c *DeleteBookmark) Execute(ctx context.Context, data any) (bool, any, error) {
	d, ok := data.(DeleteBookmarkData)
	if !ok {
		return false, nil, fmt.Errorf("%w: delete wants DeleteBookmarkData, got %T", ErrInvalidPayload, data)
	}
	if _, err := c.Store.Delete(ctx, db.BookmarksTable, db.Criteria{"id": d.ID}); err != nil {
		return false, nil, err
	}
	return true, nil, nil
}

func selectBookmarks(ctx context.Context, store Table, criteria db.Criteria, orderBy string) ([]db.Bookmark, error) {
	rows, err := store.Select(ctx, db.BookmarksTable, criteria, orderBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookmarks := []db.Bookmark{}
	for rows.Next() {
		b, err := db.BookmarkFromRow(rows.Row())
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

func getBookmark(ctx context.Context, store Table, id int64) (db.Bookmark, error) {
	found, err := selectBookmarks(ctx, store, db.Criteria{"id": id}, "")
	if err != nil {
		return db.Bookmark{}, err
	}
	if len(found) == 0 {
		return db.Bookmark{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return found[0], nil
}
