package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderbot/internal/i18n"
)

func TestShadowBanDropsEverything(t *testing.T) {
	f := newFixture(t, 42)
	f.handle(messageUpdate(42, "boss", "en", "/start"))
	f.setBanned(t, 42, true)
	f.tp.reset()

	// Even an admin command from a banned admin produces no output.
	f.handle(messageUpdate(42, "boss", "en", "/statistics"))
	assert.Empty(t, f.tp.sentTexts())

	// And no activity is recorded for the dropped event.
	conn, err := f.stores.Acquire(context.Background())
	require.NoError(t, err)
	defer conn.Release()
	top, err := conn.TopByActions(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestShadowBanAcknowledgesCallbacks(t *testing.T) {
	f := newFixture(t)
	f.handle(messageUpdate(7, "someone", "en", "/start"))
	f.setBanned(t, 7, true)
	f.tp.reset()

	f.handle(callbackUpdate(7, "en", languageCallbackPrefix+"en", 1))

	assert.Empty(t, f.tp.sentTexts())
	assert.Len(t, f.tp.responded, 1, "dropped callback must still be acknowledged")
}

func TestUnbannedUserIsHeardAgain(t *testing.T) {
	f := newFixture(t)
	f.handle(messageUpdate(7, "someone", "en", "/start"))
	f.setBanned(t, 7, true)
	f.tp.reset()

	f.handle(messageUpdate(7, "someone", "en", "/help"))
	require.Empty(t, f.tp.sentTexts())

	f.setBanned(t, 7, false)
	f.handle(messageUpdate(7, "someone", "en", "/help"))
	assert.Len(t, f.tp.sentTexts(), 1)
}

func TestAdminCommandsHiddenFromRegularUsers(t *testing.T) {
	f := newFixture(t, 42)
	f.handle(messageUpdate(7, "someone", "en", "/start"))
	f.tp.reset()

	for _, command := range AdminCommands() {
		f.handle(messageUpdate(7, "someone", "en", command))
	}

	assert.Empty(t, f.tp.sentTexts(), "no reply reveals the command exists")
}

func TestAdminCommandsHiddenFromUnknownUsers(t *testing.T) {
	f := newFixture(t, 42)

	f.handle(messageUpdate(999, "stranger", "en", "/ban 7"))

	assert.Empty(t, f.tp.sentTexts())
}

func TestLocaleFallbackToPlatform(t *testing.T) {
	f := newFixture(t)

	// Unknown user, supported platform locale.
	f.handle(messageUpdate(7, "someone", "en", "/help"))
	assert.Equal(t, f.msgs.Messages(i18n.LanguageEnglish).Help, f.tp.lastSent(t).Text)
}

func TestLocaleFallbackToDefault(t *testing.T) {
	f := newFixture(t)

	// Unsupported platform locale falls back to the configured default.
	f.handle(messageUpdate(7, "someone", "de", "/help"))
	assert.Equal(t, f.msgs.Messages(f.msgs.Default()).Help, f.tp.lastSent(t).Text)
}

func TestLocalePrefersPersistedLanguage(t *testing.T) {
	f := newFixture(t)
	f.handle(messageUpdate(7, "someone", "ru", "/start"))
	require.Equal(t, i18n.LanguageRussian, f.user(t, 7).Language)
	f.tp.reset()

	// The platform locale changed, the persisted one still wins once the
	// session cache expires or is rebuilt.
	f.rewire(t)
	f.handle(messageUpdate(7, "someone", "en", "/help"))
	assert.Equal(t, f.msgs.Messages(i18n.LanguageRussian).Help, f.tp.lastSent(t).Text)
}

type rejectingMiddleware struct{}

func (rejectingMiddleware) Name() string { return "rejecting" }

func (rejectingMiddleware) Process(ctx context.Context, ev *Event) (Action, error) {
	ev.Reply = "rejected"
	return ActionReject, nil
}

func TestRejectSendsLocalizedReply(t *testing.T) {
	f := newFixture(t)
	f.d.Use(rejectingMiddleware{})

	f.handle(messageUpdate(7, "someone", "en", "/help"))

	assert.Equal(t, []string{"rejected"}, f.tp.sentTexts())
}
