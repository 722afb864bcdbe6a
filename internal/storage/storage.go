// Package storage defines the persistence contracts of the bot and provides
// a Postgres implementation plus an in-memory one for tests.
package storage

import (
	"context"

	"github.com/maxbolgarin/errm"

	"moderbot/internal/i18n"
	"moderbot/internal/model"
)

// ErrNotFound is returned when a requested row does not exist. It is the only
// way absence is reported; infrastructure failures are returned as distinct
// errors and never collapse into it.
var ErrNotFound = errm.New("not found")

// Stores hands out connections to the underlying storage. Every inbound
// update acquires one connection and releases it when processing ends.
type Stores interface {
	Acquire(ctx context.Context) (StoreConn, error)
}

// StoreConn is a single acquired storage connection. It must be released
// exactly once on every processing path.
type StoreConn interface {
	UserStore
	ActivityStore
	Release()
}

// UserStore persists users and their moderation state.
type UserStore interface {
	// CreateUser inserts a user if no row with the same id exists.
	// It reports whether the insert actually happened.
	CreateUser(ctx context.Context, user model.User) (bool, error)

	// User returns the user by id, ErrNotFound if there is no such row.
	User(ctx context.Context, id int64) (model.User, error)

	// UserByUsername returns the user by username, ErrNotFound if absent.
	UserByUsername(ctx context.Context, username string) (model.User, error)

	// SetAlive updates the is_alive flag, ErrNotFound if the row is absent.
	SetAlive(ctx context.Context, id int64, isAlive bool) error

	// SetLanguage persists the user's language, ErrNotFound if absent.
	SetLanguage(ctx context.Context, id int64, language i18n.Language) error

	// SetBannedByID flips banned from one value to another and reports
	// whether the row was actually changed. A false result with nil error
	// means the user was already in the target state.
	SetBannedByID(ctx context.Context, id int64, from, to bool) (bool, error)

	// SetBannedByUsername is SetBannedByID addressed by username.
	SetBannedByUsername(ctx context.Context, username string, from, to bool) (bool, error)
}

// ActivityStore persists per-day activity counters.
type ActivityStore interface {
	// RecordAction increments the user's action counter for the current day.
	RecordAction(ctx context.Context, userID int64) error

	// TopByActions returns up to limit users ordered by their all-time
	// action totals, most active first.
	TopByActions(ctx context.Context, limit int) ([]model.UserActivity, error)
}
