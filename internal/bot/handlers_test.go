package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"moderbot/internal/i18n"
)

func TestHelpVariants(t *testing.T) {
	f := newFixture(t, 42)
	f.handle(messageUpdate(42, "boss", "en", "/start"))
	f.handle(messageUpdate(7, "someone", "en", "/start"))
	f.tp.reset()

	msgs := f.msgs.Messages(i18n.LanguageEnglish)

	f.handle(messageUpdate(7, "someone", "en", "/help"))
	assert.Equal(t, msgs.Help, f.tp.lastSent(t).Text)

	f.handle(messageUpdate(42, "boss", "en", "/help"))
	assert.Equal(t, msgs.HelpAdmin, f.tp.lastSent(t).Text)
}

func TestLanguageFlow(t *testing.T) {
	f := newFixture(t)
	f.handle(messageUpdate(7, "someone", "ru", "/start"))
	f.tp.reset()

	// The prompt carries a button per supported language.
	f.handle(messageUpdate(7, "someone", "ru", "/lang"))
	prompt := f.tp.lastSent(t)
	assert.Equal(t, f.msgs.Messages(i18n.LanguageRussian).ChooseLang, prompt.Text)
	require.Len(t, prompt.Options, 1)
	markup, ok := prompt.Options[0].(*tele.ReplyMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Len(t, markup.InlineKeyboard[0], len(f.msgs.Languages()))

	sess, found := f.sessions.Get(7)
	require.True(t, found)
	assert.Equal(t, flowAwaitingLanguage, sess.Flow)
	require.NotZero(t, sess.PromptMsgID)

	// Choosing a language persists it, clears the prompt keyboard and
	// confirms in the new language.
	f.handle(callbackUpdate(7, "ru", languageCallbackPrefix+"en", sess.PromptMsgID))
	assert.Equal(t, i18n.LanguageEnglish, f.user(t, 7).Language)
	assert.Contains(t, f.tp.cleared, sess.PromptMsgID)
	assert.Equal(t, f.msgs.Messages(i18n.LanguageEnglish).LanguageSet, f.tp.lastSent(t).Text)

	// The next event re-reads the durable value.
	f.handle(messageUpdate(7, "someone", "ru", "/help"))
	assert.Equal(t, f.msgs.Messages(i18n.LanguageEnglish).Help, f.tp.lastSent(t).Text)
}

func TestAbandonedLanguagePromptIsCleared(t *testing.T) {
	f := newFixture(t)
	f.handle(messageUpdate(7, "someone", "en", "/start"))
	f.handle(messageUpdate(7, "someone", "en", "/lang"))

	sess, found := f.sessions.Get(7)
	require.True(t, found)
	promptID := sess.PromptMsgID
	require.NotZero(t, promptID)
	f.tp.reset()

	// Any other event supersedes the pending prompt.
	f.handle(messageUpdate(7, "someone", "en", "/help"))

	assert.Contains(t, f.tp.cleared, promptID)
	sess, _ = f.sessions.Get(7)
	assert.Equal(t, flowIdle, sess.Flow)
	assert.Zero(t, sess.PromptMsgID)
}

func TestStartResetsPendingLanguageFlow(t *testing.T) {
	f := newFixture(t)
	f.handle(messageUpdate(7, "someone", "en", "/start"))
	f.handle(messageUpdate(7, "someone", "en", "/lang"))

	f.handle(messageUpdate(7, "someone", "en", "/start"))

	sess, found := f.sessions.Get(7)
	require.True(t, found)
	assert.Equal(t, flowIdle, sess.Flow)
	assert.Zero(t, sess.PromptMsgID)
}

func TestStatisticsRendering(t *testing.T) {
	f := newFixture(t, 42)
	f.handle(messageUpdate(42, "boss", "en", "/start"))

	// Every event of a known user counts as one action.
	for i := 0; i < 2; i++ {
		f.handle(messageUpdate(42, "boss", "en", "/help"))
	}
	f.tp.reset()

	// The /statistics event itself is counted too, so the total is 3.
	f.handle(messageUpdate(42, "boss", "en", "/statistics"))

	got := f.tp.lastSent(t).Text
	assert.Contains(t, got, "Top users by activity:")
	assert.Contains(t, got, "1. <code>42</code>: <b>3</b>")
}

func TestUnknownCommandIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.handle(messageUpdate(7, "someone", "en", "/start"))
	f.tp.reset()

	f.handle(messageUpdate(7, "someone", "en", "/frobnicate"))
	f.handle(messageUpdate(7, "someone", "en", "just a text"))

	assert.Empty(t, f.tp.sentTexts())
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text    string
		command string
		args    string
	}{
		{"/start", "/start", ""},
		{"/ban 123", "/ban", "123"},
		{"/ban@my_bot @someone", "/ban", "@someone"},
		{"/ban   123  ", "/ban", "123"},
		{"hello", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			command, args := parseCommand(tt.text)
			assert.Equal(t, tt.command, command)
			assert.Equal(t, tt.args, args)
		})
	}
}
