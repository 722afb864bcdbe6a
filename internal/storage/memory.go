package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"moderbot/internal/i18n"
	"moderbot/internal/model"
)

// MemoryStores is an in-memory Stores implementation with the same
// conditional-write semantics as the Postgres one. It is used in tests and
// for running the bot without a database.
type MemoryStores struct {
	mu       sync.Mutex
	users    map[int64]model.User
	activity map[int64]map[string]int64 // user id -> day -> actions

	now func() time.Time
}

func NewMemoryStores() *MemoryStores {
	return &MemoryStores{
		users:    make(map[int64]model.User),
		activity: make(map[int64]map[string]int64),
		now:      time.Now,
	}
}

// Acquire returns a connection view over the shared maps. Release is a no-op.
func (s *MemoryStores) Acquire(ctx context.Context) (StoreConn, error) {
	return memConn{s: s}, nil
}

type memConn struct {
	s *MemoryStores
}

func (memConn) Release() {}

func (c memConn) CreateUser(ctx context.Context, user model.User) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.s.users[user.ID]; ok {
		return false, nil
	}
	c.s.users[user.ID] = user
	return true, nil
}

func (c memConn) User(ctx context.Context, id int64) (model.User, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	u, ok := c.s.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (c memConn) UserByUsername(ctx context.Context, username string) (model.User, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	for _, u := range c.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (c memConn) SetAlive(ctx context.Context, id int64, isAlive bool) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	u, ok := c.s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.IsAlive = isAlive
	c.s.users[id] = u
	return nil
}

func (c memConn) SetLanguage(ctx context.Context, id int64, language i18n.Language) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	u, ok := c.s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Language = language
	c.s.users[id] = u
	return nil
}

func (c memConn) SetBannedByID(ctx context.Context, id int64, from, to bool) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	u, ok := c.s.users[id]
	if !ok || u.Banned != from {
		return false, nil
	}
	u.Banned = to
	c.s.users[id] = u
	return true, nil
}

func (c memConn) SetBannedByUsername(ctx context.Context, username string, from, to bool) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	for id, u := range c.s.users {
		if u.Username != username {
			continue
		}
		if u.Banned != from {
			return false, nil
		}
		u.Banned = to
		c.s.users[id] = u
		return true, nil
	}
	return false, nil
}

func (c memConn) RecordAction(ctx context.Context, userID int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	day := c.s.now().Format(time.DateOnly)
	days, ok := c.s.activity[userID]
	if !ok {
		days = make(map[string]int64)
		c.s.activity[userID] = days
	}
	days[day]++
	return nil
}

func (c memConn) TopByActions(ctx context.Context, limit int) ([]model.UserActivity, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	out := make([]model.UserActivity, 0, len(c.s.activity))
	for id, days := range c.s.activity {
		var total int64
		for _, n := range days {
			total += n
		}
		out = append(out, model.UserActivity{UserID: id, Actions: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Actions != out[j].Actions {
			return out[i].Actions > out[j].Actions
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
