// Package model contains the domain entities persisted by the bot.
package model

import (
	"strconv"
	"time"

	"moderbot/internal/i18n"
)

// Role defines what commands a user may invoke. It is assigned once at user
// creation and never changes afterwards, even if the trusted admin list does.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) String() string {
	return string(r)
}

// User is a persisted bot user. There is exactly one row per Telegram id.
type User struct {
	ID        int64         `db:"user_id"`
	Username  string        `db:"username"`
	CreatedAt time.Time     `db:"created_at"`
	Language  i18n.Language `db:"language"`
	Role      Role          `db:"role"`
	IsAlive   bool          `db:"is_alive"`
	Banned    bool          `db:"banned"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// String returns user string representation in format '[@username|id]'.
func (u User) String() string {
	id := strconv.FormatInt(u.ID, 10)
	if u.Username == "" {
		return "[" + id + "]"
	}
	return "[@" + u.Username + "|" + id + "]"
}

// UserActivity is an aggregated activity row: the sum of a user's actions
// across all days.
type UserActivity struct {
	UserID  int64 `db:"user_id"`
	Actions int64 `db:"actions"`
}
