package bot

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"moderbot/internal/i18n"
	"moderbot/internal/model"
	"moderbot/internal/storage"
)

// fakeTransport records every outbound request instead of talking to
// Telegram.
type fakeTransport struct {
	mu        sync.Mutex
	sent      []sentMessage
	responded []*tele.Callback
	cleared   []int
	commands  map[int64][]tele.Command
	nextMsgID int
}

type sentMessage struct {
	UserID  int64
	Text    string
	Options []any
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{commands: make(map[int64][]tele.Command)}
}

func (f *fakeTransport) Send(userID int64, msg string, options ...any) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextMsgID++
	f.sent = append(f.sent, sentMessage{UserID: userID, Text: msg, Options: options})
	return f.nextMsgID, nil
}

func (f *fakeTransport) Respond(callback *tele.Callback, resp *tele.CallbackResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responded = append(f.responded, callback)
	return nil
}

func (f *fakeTransport) EditReplyMarkup(userID int64, msgID int, markup *tele.ReplyMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, msgID)
	return nil
}

func (f *fakeTransport) SetCommands(userID int64, commands []tele.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands[userID] = commands
	return nil
}

func (f *fakeTransport) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.Text
	}
	return out
}

func (f *fakeTransport) lastSent(t *testing.T) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "expected at least one sent message")
	return f.sent[len(f.sent)-1]
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
	f.responded = nil
	f.cleared = nil
}

// failingStore fails the test on any call. It verifies that a code path
// performs no store access at all.
type failingStore struct {
	t *testing.T
}

func (s failingStore) CreateUser(ctx context.Context, user model.User) (bool, error) {
	s.t.Fatal("unexpected CreateUser call")
	return false, nil
}

func (s failingStore) User(ctx context.Context, id int64) (model.User, error) {
	s.t.Fatal("unexpected User call")
	return model.User{}, nil
}

func (s failingStore) UserByUsername(ctx context.Context, username string) (model.User, error) {
	s.t.Fatal("unexpected UserByUsername call")
	return model.User{}, nil
}

func (s failingStore) SetAlive(ctx context.Context, id int64, isAlive bool) error {
	s.t.Fatal("unexpected SetAlive call")
	return nil
}

func (s failingStore) SetLanguage(ctx context.Context, id int64, language i18n.Language) error {
	s.t.Fatal("unexpected SetLanguage call")
	return nil
}

func (s failingStore) SetBannedByID(ctx context.Context, id int64, from, to bool) (bool, error) {
	s.t.Fatal("unexpected SetBannedByID call")
	return false, nil
}

func (s failingStore) SetBannedByUsername(ctx context.Context, username string, from, to bool) (bool, error) {
	s.t.Fatal("unexpected SetBannedByUsername call")
	return false, nil
}

// fixture wires a dispatcher with in-memory storage and a recording
// transport, the same way New does for production.
type fixture struct {
	d        *Dispatcher
	tp       *fakeTransport
	stores   *storage.MemoryStores
	sessions *sessionStore
	msgs     *i18n.Provider
}

func newFixture(t *testing.T, adminIDs ...int64) *fixture {
	t.Helper()

	stores := storage.NewMemoryStores()
	f := &fixture{stores: stores}
	f.rewire(t, adminIDs...)
	return f
}

// rewire rebuilds the pipeline over the same storage, used to simulate a
// restart with a different admin set.
func (f *fixture) rewire(t *testing.T, adminIDs ...int64) {
	t.Helper()

	tp := newFakeTransport()
	sessions, err := newSessionStore(0, 0)
	require.NoError(t, err)

	msgs := i18n.NewProvider(i18n.LanguageEnglish)
	log := noopLogger{}

	d := newDispatcher(f.stores, tp, sessions, newMetrics(nil), log)
	d.Use(NewShadowBanGate(log))
	d.Use(NewLocaleResolver(msgs, sessions, tp, log))
	d.Use(NewRoleAuthorizer(log, AdminCommands()...))

	h := &handlers{
		tp:        tp,
		msgs:      msgs,
		sessions:  sessions,
		lifecycle: NewUserLifecycle(adminIDs, msgs, log),
		banflow:   NewBanWorkflow(log),
		log:       log,
	}
	h.register(d)

	f.d = d
	f.tp = tp
	f.sessions = sessions
	f.msgs = msgs
}

func (f *fixture) handle(upd *tele.Update) {
	f.d.HandleUpdate(context.Background(), upd)
}

func (f *fixture) user(t *testing.T, id int64) model.User {
	t.Helper()
	conn, err := f.stores.Acquire(context.Background())
	require.NoError(t, err)
	defer conn.Release()
	u, err := conn.User(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (f *fixture) setBanned(t *testing.T, id int64, banned bool) {
	t.Helper()
	conn, err := f.stores.Acquire(context.Background())
	require.NoError(t, err)
	defer conn.Release()
	changed, err := conn.SetBannedByID(context.Background(), id, !banned, banned)
	require.NoError(t, err)
	require.True(t, changed)
}

func messageUpdate(userID int64, username, locale, text string) *tele.Update {
	return &tele.Update{
		Message: &tele.Message{
			Text: text,
			Sender: &tele.User{
				ID:           userID,
				Username:     username,
				LanguageCode: locale,
			},
		},
	}
}

func callbackUpdate(userID int64, locale, data string, promptMsgID int) *tele.Update {
	return &tele.Update{
		Callback: &tele.Callback{
			Data: data,
			Sender: &tele.User{
				ID:           userID,
				LanguageCode: locale,
			},
			Message: &tele.Message{
				ID:   promptMsgID,
				Chat: &tele.Chat{ID: userID},
			},
		},
	}
}

func blockedUpdate(userID int64) *tele.Update {
	return &tele.Update{
		MyChatMember: &tele.ChatMemberUpdate{
			Sender:        &tele.User{ID: userID},
			NewChatMember: &tele.ChatMember{Role: "kicked"},
			OldChatMember: &tele.ChatMember{Role: "member"},
		},
	}
}
