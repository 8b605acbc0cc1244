// Package store persists users, forms and responses in SQLite.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/mbolis/quick-forms/model"
	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a stale form version or an already taken username.
	ErrConflict = errors.New("conflict")
)

type Forms interface {
	ListForms(ctx context.Context, owner string) ([]model.FormListItem, error)
	GetForm(ctx context.Context, id int) (model.Form, error)
	// IncrementViews bumps the view counter in a single statement and
	// returns the form as it is after the increment.
	IncrementViews(ctx context.Context, id int) (model.Form, error)
	CreateForm(ctx context.Context, form *model.Form) error
	SaveForm(ctx context.Context, form *model.Form) error
	DeleteForm(ctx context.Context, id int) error
}

type Responses interface {
	CreateResponse(ctx context.Context, formID int, answers []model.Answer) (model.Response, error)
	// ListResponses returns the responses to a form, newest first.
	ListResponses(ctx context.Context, formID int) ([]model.Response, error)
}

type Users interface {
	CreateUser(ctx context.Context, username string, passwordHash []byte) error
	PasswordHash(ctx context.Context, username string) ([]byte, error)
	StoreToken(ctx context.Context, username, tokenID, refreshTokenID string, expiration time.Time) error
	// ConsumeToken deletes a refresh token record, returning its expiration.
	ConsumeToken(ctx context.Context, username, tokenID, refreshTokenID string) (time.Time, error)
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ Forms     = (*Store)(nil)
	_ Responses = (*Store)(nil)
	_ Users     = (*Store)(nil)
)

func New(db *sql.DB) *Store {
	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}
