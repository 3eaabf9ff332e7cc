package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/barky/internal/db"
)

func setupStore(t *testing.T) *db.Store {
	t.Helper()
	store, err := db.NewStore(t.TempDir())
	require.NoError(t, err, "Failed to create store")
	t.Cleanup(func() { store.Close() })

	ok, res, err := (&CreateBookmarksTable{Store: store}).Execute(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Nil(t, res)
	return store
}

func mustExec(t *testing.T, c Command, data any) any {
	t.Helper()
	ok, res, err := c.Execute(context.Background(), data)
	require.NoError(t, err)
	require.True(t, ok)
	return res
}

func list(t *testing.T, store Table, orderBy string) []db.Bookmark {
	t.Helper()
	res := mustExec(t, &ListBookmarks{Store: store, OrderBy: orderBy}, nil)
	bookmarks, ok := res.([]db.Bookmark)
	require.True(t, ok, "list result is %T", res)
	return bookmarks
}

func TestAddThenList_Scenario(t *testing.T) {
	store := setupStore(t)
	before := time.Now()

	res := mustExec(t, NewAddBookmark(store), AddBookmarkData{Title: "Example", URL: "http://example.com", Notes: ""})
	assert.Nil(t, res)

	got := list(t, store, "date_added")
	require.Len(t, got, 1)
	assert.EqualValues(t, 1, got[0].ID)
	assert.Equal(t, "Example", got[0].Title)
	assert.Equal(t, "http://example.com", got[0].URL)
	assert.Equal(t, "", got[0].Notes)
	assert.WithinDuration(t, before, got[0].DateAdded, 5*time.Second)
	assert.Equal(t, time.UTC, got[0].DateAdded.Location())
}

func TestAdd_RoundTripAndUniqueIDs(t *testing.T) {
	store := setupStore(t)
	add := NewAddBookmark(store)

	inputs := []AddBookmarkData{
		{Title: "Go", URL: "https://go.dev", Notes: "language"},
		{Title: "Gophers", URL: "https://go.dev/blog"},
		{Title: "Go", URL: "https://go.dev", Notes: "language"},
	}
	for _, in := range inputs {
		mustExec(t, add, in)
	}

	got := list(t, store, "date_added")
	require.Len(t, got, 3)
	var last int64
	for i, b := range got {
		assert.Greater(t, b.ID, last, "ids increase")
		last = b.ID
		assert.Equal(t, inputs[i].Title, b.Title)
		assert.Equal(t, inputs[i].URL, b.URL)
		assert.Equal(t, inputs[i].Notes, b.Notes)
		assert.False(t, b.DateAdded.IsZero())
	}
}

func TestAdd_TimestampOverride(t *testing.T) {
	store := setupStore(t)
	starred := time.Date(2020, 2, 3, 4, 5, 6, 0, time.UTC)

	mustExec(t, NewAddBookmark(store), AddBookmarkData{Title: "t", URL: "u", DateAdded: starred})

	got := list(t, store, "")
	require.Len(t, got, 1)
	assert.True(t, starred.Equal(got[0].DateAdded))
}

func TestAdd_UsesClock(t *testing.T) {
	store := setupStore(t)
	fixed := time.Date(2021, 1, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	add := &AddBookmark{Store: store, Now: func() time.Time { return fixed }}

	mustExec(t, add, AddBookmarkData{Title: "t", URL: "u"})

	got := list(t, store, "")
	require.Len(t, got, 1)
	assert.True(t, fixed.Equal(got[0].DateAdded))
}

func TestList_Ordering(t *testing.T) {
	store := setupStore(t)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	add := NewAddBookmark(store)

	mustExec(t, add, AddBookmarkData{Title: "zeta", URL: "z", DateAdded: base})
	mustExec(t, add, AddBookmarkData{Title: "Alpha", URL: "a", DateAdded: base.Add(-time.Hour)})
	mustExec(t, add, AddBookmarkData{Title: "mu", URL: "m", DateAdded: base.Add(time.Hour)})

	byTitle := list(t, store, "title")
	for i := 1; i < len(byTitle); i++ {
		assert.LessOrEqual(t, byTitle[i-1].Title, byTitle[i].Title)
	}

	byDate := list(t, store, "date_added")
	for i := 1; i < len(byDate); i++ {
		assert.False(t, byDate[i].DateAdded.Before(byDate[i-1].DateAdded))
	}
	assert.Equal(t, "Alpha", byDate[0].Title)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	store := setupStore(t)
	got := list(t, store, "title")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDelete_Scenario(t *testing.T) {
	store := setupStore(t)
	add := NewAddBookmark(store)
	mustExec(t, add, AddBookmarkData{Title: "first", URL: "1"})
	mustExec(t, add, AddBookmarkData{Title: "second", URL: "2"})

	del := &DeleteBookmark{Store: store}
	mustExec(t, del, DeleteBookmarkData{ID: 1})

	got := list(t, store, "date_added")
	require.Len(t, got, 1)
	assert.Equal(t, "second", got[0].Title)

	// deleting again is a no-op
	mustExec(t, del, DeleteBookmarkData{ID: 1})
	mustExec(t, del, DeleteBookmarkData{ID: 42})
	assert.Len(t, list(t, store, ""), 1)
}

func TestEdit_Scenario(t *testing.T) {
	store := setupStore(t)
	add := NewAddBookmark(store)
	mustExec(t, add, AddBookmarkData{Title: "Example", URL: "http://example.com", Notes: "n"})
	mustExec(t, add, AddBookmarkData{Title: "Other", URL: "http://other", Notes: "o"})
	before := list(t, store, "id")

	mustExec(t, &EditBookmark{Store: store}, EditBookmarkData{ID: 1, Field: "title", Value: "Renamed"})

	after := list(t, store, "id")
	require.Len(t, after, 2)
	want := before[0]
	want.Title = "Renamed"
	assert.Equal(t, want, after[0])
	assert.Equal(t, before[1], after[1], "other rows untouched")
}

func TestEdit_FieldNames(t *testing.T) {
	store := setupStore(t)
	mustExec(t, NewAddBookmark(store), AddBookmarkData{Title: "t", URL: "u", Notes: "n"})
	edit := &EditBookmark{Store: store}

	mustExec(t, edit, EditBookmarkData{ID: 1, Field: " URL ", Value: "https://new"})
	mustExec(t, edit, EditBookmarkData{ID: 1, Field: "notes", Value: ""})

	got := list(t, store, "")
	assert.Equal(t, "https://new", got[0].URL)
	assert.Equal(t, "", got[0].Notes)

	for _, field := range []string{"date_added", "id", "title = 'x' --", ""} {
		ok, _, err := edit.Execute(context.Background(), EditBookmarkData{ID: 1, Field: field, Value: "x"})
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrInvalidField, field)
	}
}

func TestEdit_NotFound(t *testing.T) {
	store := setupStore(t)

	ok, _, err := (&EditBookmark{Store: store}).Execute(context.Background(), EditBookmarkData{ID: 9, Field: "title", Value: "x"})
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvalidPayloads(t *testing.T) {
	store := setupStore(t)
	cmds := map[string]Command{
		"add":     NewAddBookmark(store),
		"edit":    &EditBookmark{Store: store},
		"delete":  &DeleteBookmark{Store: store},
		"import":  &ImportGitHubStars{},
		"suggest": &SuggestNotes{},
	}
	for name, c := range cmds {
		ok, _, err := c.Execute(context.Background(), "nonsense")
		assert.False(t, ok, name)
		assert.ErrorIs(t, err, ErrInvalidPayload, name)
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	store, err := db.NewStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	// no table yet
	ok, _, err := (&ListBookmarks{Store: store}).Execute(context.Background(), nil)
	assert.False(t, ok)
	var se *db.StoreError
	assert.True(t, errors.As(err, &se))

	ok, _, err = NewAddBookmark(store).Execute(context.Background(), AddBookmarkData{Title: "t", URL: "u"})
	assert.False(t, ok)
	assert.True(t, errors.As(err, &se))
}

func TestQuit(t *testing.T) {
	ok, res, err := Quit{}.Execute(context.Background(), nil)
	assert.False(t, ok)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrQuit)
}

func TestNormalizeField(t *testing.T) {
	for in, want := range map[string]string{"Title": "title", "URL": "url", "notes\n": "notes"} {
		got, ok := NormalizeField(in)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := NormalizeField("date_added")
	assert.False(t, ok)
}
