package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err, "Failed to create store")
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.CreateTable(context.Background(), BookmarksTable, BookmarkColumns))
	return store
}

func insertBookmark(t *testing.T, s *Store, title, url string, notes any, added time.Time) int64 {
	t.Helper()
	id, err := s.Insert(context.Background(), BookmarksTable, Row{
		"title":      title,
		"url":        url,
		"notes":      notes,
		"date_added": FormatTime(added),
	})
	require.NoError(t, err)
	return id
}

func selectAll(t *testing.T, s *Store, criteria Criteria, orderBy string) []Bookmark {
	t.Helper()
	rows, err := s.Select(context.Background(), BookmarksTable, criteria, orderBy)
	require.NoError(t, err)
	all, err := rows.All()
	require.NoError(t, err)

	out := make([]Bookmark, 0, len(all))
	for _, r := range all {
		b, err := BookmarkFromRow(r)
		require.NoError(t, err)
		out = append(out, b)
	}
	return out
}

func TestCreateTable_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertBookmark(t, s, "a", "http://a", nil, time.Now())
	require.NoError(t, s.CreateTable(ctx, BookmarksTable, BookmarkColumns))
	// different shape, existing table untouched
	require.NoError(t, s.CreateTable(ctx, BookmarksTable, []Column{{Name: "x", Type: "text"}}))

	assert.Len(t, selectAll(t, s, nil, ""), 1)
}

func TestInsert_AssignsIncreasingIDs(t *testing.T) {
	s := newTestStore(t)

	var last int64
	for i := 0; i < 5; i++ {
		id := insertBookmark(t, s, "t", "http://u", nil, time.Now())
		assert.Greater(t, id, last)
		last = id
	}
}

func TestInsert_MissingRequiredColumn(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Insert(context.Background(), BookmarksTable, Row{"title": "no url", "date_added": "x"})
	require.Error(t, err)

	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "insert", se.Op)
	assert.Equal(t, BookmarksTable, se.Table)
}

func TestInsert_ValuesAreNotInterpolated(t *testing.T) {
	s := newTestStore(t)
	title := "x'); DROP TABLE bookmarks; --"

	insertBookmark(t, s, title, "http://evil", nil, time.Now())

	got := selectAll(t, s, Criteria{"title": title}, "")
	require.Len(t, got, 1)
	assert.Equal(t, title, got[0].Title)
}

func TestSelect_CriteriaAndOrdering(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	insertBookmark(t, s, "charlie", "http://c", "n", base.Add(time.Hour))
	insertBookmark(t, s, "alpha", "http://a", nil, base.Add(2*time.Hour))
	insertBookmark(t, s, "bravo", "http://c", nil, base)

	byTitle := selectAll(t, s, nil, "title")
	require.Len(t, byTitle, 3)
	assert.Equal(t, []string{"alpha", "bravo", "charlie"}, []string{byTitle[0].Title, byTitle[1].Title, byTitle[2].Title})

	byDate := selectAll(t, s, nil, "date_added")
	assert.Equal(t, []string{"bravo", "charlie", "alpha"}, []string{byDate[0].Title, byDate[1].Title, byDate[2].Title})

	matched := selectAll(t, s, Criteria{"url": "http://c", "title": "charlie"}, "")
	require.Len(t, matched, 1)
	assert.Equal(t, "n", matched[0].Notes)

	assert.Empty(t, selectAll(t, s, Criteria{"url": "http://nope"}, ""))
}

func TestSelect_CursorIsLazy(t *testing.T) {
	s := newTestStore(t)
	insertBookmark(t, s, "one", "http://1", nil, time.Now())
	insertBookmark(t, s, "two", "http://2", nil, time.Now())

	rows, err := s.Select(context.Background(), BookmarksTable, nil, "id")
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	assert.Equal(t, "one", rows.Row()["title"])
	require.True(t, rows.Next())
	assert.Equal(t, "two", rows.Row()["title"])
	assert.False(t, rows.Next())
	assert.NoError(t, rows.Err())
}

func TestUpdate_ReportsRowsAffected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := insertBookmark(t, s, "old", "http://u", nil, time.Now())
	other := insertBookmark(t, s, "keep", "http://k", nil, time.Now())

	n, err := s.Update(ctx, BookmarksTable, Criteria{"id": id}, Row{"title": "new"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.Update(ctx, BookmarksTable, Criteria{"id": 999}, Row{"title": "ghost"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	got := selectAll(t, s, Criteria{"id": other}, "")
	require.Len(t, got, 1)
	assert.Equal(t, "keep", got[0].Title)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := insertBookmark(t, s, "gone", "http://g", nil, time.Now())

	n, err := s.Delete(ctx, BookmarksTable, Criteria{"id": id})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.Delete(ctx, BookmarksTable, Criteria{"id": id})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestGuards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Delete(ctx, BookmarksTable, nil)
	assert.ErrorIs(t, err, ErrEmptyCriteria)

	_, err = s.Update(ctx, BookmarksTable, Criteria{}, Row{"title": "x"})
	assert.ErrorIs(t, err, ErrEmptyCriteria)

	_, err = s.Update(ctx, BookmarksTable, Criteria{"id": 1}, nil)
	assert.ErrorIs(t, err, ErrEmptyRow)

	_, err = s.Insert(ctx, BookmarksTable, Row{})
	assert.ErrorIs(t, err, ErrEmptyRow)

	_, err = s.Insert(ctx, BookmarksTable, Row{"title; --": "x"})
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = s.Select(ctx, BookmarksTable, nil, "title desc")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = s.Select(ctx, "bookmarks b", nil, "")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestBookmarkFromRow(t *testing.T) {
	added := time.Date(2023, 5, 6, 7, 8, 9, 0, time.UTC)

	b, err := BookmarkFromRow(Row{
		"id": int64(3), "title": "T", "url": []byte("http://u"), "notes": nil,
		"date_added": FormatTime(added),
	})
	require.NoError(t, err)
	assert.Equal(t, Bookmark{ID: 3, Title: "T", URL: "http://u", DateAdded: added}, b)

	b, err = BookmarkFromRow(Row{"id": int64(4), "title": "T", "url": "u", "date_added": "2023-05-06T07:08:09+00:00"})
	require.NoError(t, err)
	assert.True(t, added.Equal(b.DateAdded))

	_, err = BookmarkFromRow(Row{"id": "4"})
	assert.Error(t, err)

	_, err = BookmarkFromRow(Row{"id": int64(4), "date_added": "yesterday"})
	assert.Error(t, err)
}

func TestFormatTime_FixedWidth(t *testing.T) {
	a := FormatTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	b := FormatTime(time.Date(2024, 1, 1, 0, 0, 0, 500, time.FixedZone("x", 3600)))
	assert.Equal(t, "2024-01-01T00:00:00.000000Z", a)
	assert.Len(t, b, len(a))
	assert.True(t, b < a, "earlier instant must sort first")
}
