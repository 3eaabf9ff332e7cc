// Package commands holds one Command per user action. Every command shares
// the same contract so the menu can dispatch without knowing which action
// it runs.
package commands

import (
	"context"
	"errors"

	"github.com/user/barky/internal/db"
)

var (
	// ErrQuit is returned by Quit. Callers treat it as a request to leave
	// their loop, not as a failure.
	ErrQuit = errors.New("quit requested")

	ErrInvalidPayload = errors.New("invalid command payload")
	ErrInvalidField   = errors.New("field cannot be edited")
	ErrNotFound       = errors.New("bookmark not found")
)

// Command runs one user action. data is the action's payload type (or nil);
// result is nil, a count, a string or a []db.Bookmark depending on the
// action. Commands assume data was validated by whoever collected it.
type Command interface {
	Execute(ctx context.Context, data any) (bool, any, error)
}

// Table is the slice of *db.Store the commands need.
type Table interface {
	CreateTable(ctx context.Context, name string, columns []db.Column) error
	Insert(ctx context.Context, name string, row db.Row) (int64, error)
	Select(ctx context.Context, name string, criteria db.Criteria, orderBy string) (*db.Rows, error)
	Update(ctx context.Context, name string, criteria db.Criteria, changes db.Row) (int64, error)
	Delete(ctx context.Context, name string, criteria db.Criteria) (int64, error)
}

// Quit asks the caller to stop. It never terminates the process itself.
type Quit struct{}

func (Quit) Execute(context.Context, any) (bool, any, error) {
	return false, nil, ErrQuit
}
