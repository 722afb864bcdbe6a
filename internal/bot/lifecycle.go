package bot

import (
	"context"
	"time"

	"github.com/maxbolgarin/errm"

	"moderbot/internal/i18n"
	"moderbot/internal/model"
	"moderbot/internal/storage"
)

// UserLifecycle implements first-contact registration, revival and block
// detection. The trusted admin set is fixed at construction and consulted
// only when a row is created, so a user's role never changes afterwards.
type UserLifecycle struct {
	admins map[int64]struct{}
	msgs   *i18n.Provider
	log    Logger
}

func NewUserLifecycle(adminIDs []int64, msgs *i18n.Provider, log Logger) *UserLifecycle {
	l := &UserLifecycle{
		admins: make(map[int64]struct{}, len(adminIDs)),
		msgs:   msgs,
		log:    log,
	}
	for _, id := range adminIDs {
		l.admins[id] = struct{}{}
	}
	return l
}

// EnsureUser registers the user on first contact or revives a known one.
// It is safe under concurrent first contacts for the same id: the insert is
// conditional on absence and the losing attempt silently adopts the winner's
// row.
func (l *UserLifecycle) EnsureUser(ctx context.Context, store storage.UserStore, ev *Event) (model.User, error) {
	if ev.Known {
		if !ev.User.IsAlive {
			if err := store.SetAlive(ctx, ev.UserID, true); err != nil {
				return model.User{}, errm.Wrap(err, "revive user")
			}
			ev.User.IsAlive = true
		}
		return ev.User, nil
	}

	user := model.User{
		ID:        ev.UserID,
		Username:  ev.Username,
		CreatedAt: time.Now(),
		Language:  l.language(ev),
		Role:      l.role(ev.UserID),
		IsAlive:   true,
	}

	created, err := store.CreateUser(ctx, user)
	if err != nil {
		return model.User{}, errm.Wrap(err, "create user")
	}
	if !created {
		// A concurrent first contact won the insert, take its row.
		user, err = store.User(ctx, ev.UserID)
		if err != nil {
			return model.User{}, errm.Wrap(err, "load user after lost insert")
		}
		return user, nil
	}

	l.log.Info("new user", "user_id", user.ID, "username", user.Username, "role", user.Role)

	return user, nil
}

// MarkBlocked records that the user closed the conversation. An absent row
// is not an error, there is simply nothing to flip.
func (l *UserLifecycle) MarkBlocked(ctx context.Context, store storage.UserStore, userID int64) error {
	err := store.SetAlive(ctx, userID, false)
	if err != nil && !errm.Is(err, storage.ErrNotFound) {
		return errm.Wrap(err, "set not alive")
	}

	l.log.Info("user blocked the bot", "user_id", userID)

	return nil
}

func (l *UserLifecycle) role(userID int64) model.Role {
	if _, ok := l.admins[userID]; ok {
		return model.RoleAdmin
	}
	return model.RoleUser
}

func (l *UserLifecycle) language(ev *Event) i18n.Language {
	if tag := i18n.Parse(ev.PlatformLocale); l.msgs.IsSupported(tag) {
		return tag
	}
	return l.msgs.Default()
}
