package bot

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderbot/internal/i18n"
	"moderbot/internal/model"
)

func TestFirstContactCreatesUser(t *testing.T) {
	f := newFixture(t, 42)

	f.handle(messageUpdate(42, "boss", "en", "/start"))

	u := f.user(t, 42)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, "boss", u.Username)
	assert.Equal(t, i18n.LanguageEnglish, u.Language)
	assert.True(t, u.IsAlive)
	assert.False(t, u.Banned)

	assert.Equal(t, []string{f.msgs.Messages(i18n.LanguageEnglish).Start}, f.tp.sentTexts())
	assert.Len(t, f.tp.commands[int64(42)], 6, "admin menu has the extended command set")
}

func TestFirstContactRegularUser(t *testing.T) {
	f := newFixture(t, 42)

	f.handle(messageUpdate(7, "someone", "en", "/start"))

	u := f.user(t, 7)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.Len(t, f.tp.commands[int64(7)], 3, "user menu has only the base commands")
}

func TestConcurrentFirstContactIsIdempotent(t *testing.T) {
	f := newFixture(t, 42)

	const goroutines = 16
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.handle(messageUpdate(42, "boss", "en", "/start"))
		}()
	}
	wg.Wait()

	u := f.user(t, 42)
	assert.Equal(t, model.RoleAdmin, u.Role, "role is evaluated once at creation")
	assert.True(t, u.IsAlive)

	// Every attempt replies, but only one row exists.
	assert.Len(t, f.tp.sentTexts(), goroutines)
}

func TestStartRevivesBlockedUser(t *testing.T) {
	f := newFixture(t)

	f.handle(messageUpdate(7, "someone", "en", "/start"))
	f.handle(blockedUpdate(7))
	require.False(t, f.user(t, 7).IsAlive)

	f.handle(messageUpdate(7, "someone", "en", "/start"))
	assert.True(t, f.user(t, 7).IsAlive)
}

func TestBlockedEventForUnknownUserIsNoop(t *testing.T) {
	f := newFixture(t)

	f.handle(blockedUpdate(999))

	assert.Empty(t, f.tp.sentTexts())
}

func TestRoleIsStableAfterAdminListChange(t *testing.T) {
	f := newFixture(t, 42)
	f.handle(messageUpdate(42, "boss", "en", "/start"))
	require.Equal(t, model.RoleAdmin, f.user(t, 42).Role)

	// Restart with 42 removed from the trusted set: the persisted role wins.
	f.rewire(t)
	f.handle(messageUpdate(42, "boss", "en", "/statistics"))

	require.Len(t, f.tp.sentTexts(), 1)
	assert.Contains(t, f.tp.lastSent(t).Text, "Top users")

	// And a fresh user created under the new configuration stays regular.
	f.handle(messageUpdate(43, "other", "en", "/start"))
	assert.Equal(t, model.RoleUser, f.user(t, 43).Role)
}
