package bot

import (
	"time"

	"github.com/maypok86/otter"

	"moderbot/internal/i18n"
)

// flowState is the short-lived conversational state of a user.
type flowState string

// The zero value is the idle flow, a fresh session needs no setup.
const (
	flowIdle             flowState = ""
	flowAwaitingLanguage flowState = "awaiting_language"
)

// session holds per-user volatile state. It lives only in memory and
// expires, so every field must be recoverable from storage.
type session struct {
	Language    i18n.Language
	Flow        flowState
	PromptMsgID int
}

const (
	defaultSessionCapacity = 10_000
	defaultSessionTTL      = 24 * time.Hour
)

// sessionStore caches sessions by user id with expiration.
type sessionStore struct {
	cache otter.Cache[int64, session]
}

func newSessionStore(capacity int, ttl time.Duration) (*sessionStore, error) {
	if capacity <= 0 {
		capacity = defaultSessionCapacity
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	c, err := otter.MustBuilder[int64, session](capacity).WithTTL(ttl).Build()
	if err != nil {
		return nil, err
	}
	return &sessionStore{cache: c}, nil
}

func (s *sessionStore) Get(userID int64) (session, bool) {
	return s.cache.Get(userID)
}

func (s *sessionStore) Set(userID int64, sess session) {
	s.cache.Set(userID, sess)
}

func (s *sessionStore) Size() int {
	return s.cache.Size()
}
