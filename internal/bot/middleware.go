package bot

import (
	"context"
	"strings"

	"github.com/maxbolgarin/errm"
	tele "gopkg.in/telebot.v4"

	"moderbot/internal/i18n"
	"moderbot/internal/storage"
)

// ShadowBanGate silently drops events of banned users. It is the first
// middleware in the chain, so it also loads the user row once and attaches
// it to the event for everyone downstream.
type ShadowBanGate struct {
	log Logger
}

func NewShadowBanGate(log Logger) *ShadowBanGate {
	return &ShadowBanGate{log: log}
}

func (g *ShadowBanGate) Name() string { return "shadow_ban_gate" }

func (g *ShadowBanGate) Process(ctx context.Context, ev *Event) (Action, error) {
	user, err := ev.Store.User(ctx, ev.UserID)
	if err != nil {
		if errm.Is(err, storage.ErrNotFound) {
			// Unknown users are not banned, let them through to register.
			return ActionContinue, nil
		}
		// Fail closed: a store failure must never let a banned user pass.
		return ActionDrop, errm.Wrap(err, "load user")
	}

	ev.User = user
	ev.Known = true

	if user.Banned {
		g.log.Debug("dropped event of banned user", "user_id", ev.UserID)
		return ActionDrop, nil
	}

	return ActionContinue, nil
}

// LocaleResolver picks the language pack for the event: session cache,
// then the persisted user language, then the platform-reported locale,
// then the configured default. The result is cached in the session.
type LocaleResolver struct {
	msgs     *i18n.Provider
	sessions *sessionStore
	tp       Transport
	log      Logger
}

func NewLocaleResolver(msgs *i18n.Provider, sessions *sessionStore, tp Transport, log Logger) *LocaleResolver {
	return &LocaleResolver{
		msgs:     msgs,
		sessions: sessions,
		tp:       tp,
		log:      log,
	}
}

func (r *LocaleResolver) Name() string { return "locale_resolver" }

func (r *LocaleResolver) Process(ctx context.Context, ev *Event) (Action, error) {
	sess, _ := r.sessions.Get(ev.UserID)

	// The user left a language prompt hanging and did something else.
	// Remove the prompt keyboard and forget the cached tag so the answer
	// below is re-resolved from durable state. The choice callback itself
	// is exempt, its handler completes the flow.
	if sess.Flow == flowAwaitingLanguage && !isLanguageChoice(ev) {
		if sess.PromptMsgID != 0 {
			if err := r.tp.EditReplyMarkup(ev.UserID, sess.PromptMsgID, &tele.ReplyMarkup{}); err != nil {
				r.log.Warn("clear language prompt", "error", err, "user_id", ev.UserID)
			}
		}
		sess = session{}
	}

	tag := sess.Language
	if tag == "" && ev.Known {
		tag = ev.User.Language
	}
	if !r.msgs.IsSupported(tag) {
		tag = i18n.Parse(ev.PlatformLocale)
		if !r.msgs.IsSupported(tag) {
			tag = r.msgs.Default()
		}
	}

	sess.Language = tag
	r.sessions.Set(ev.UserID, sess)

	ev.Lang = tag
	ev.Msgs = r.msgs.Messages(tag)

	return ActionContinue, nil
}

func isLanguageChoice(ev *Event) bool {
	return ev.Callback != nil && strings.HasPrefix(ev.Callback.Data, languageCallbackPrefix)
}

// RoleAuthorizer hides administrative commands from regular users. A
// non-admin invoking one gets no reply at all, the command behaves as if
// it did not exist.
type RoleAuthorizer struct {
	adminCommands map[string]struct{}
	log           Logger
}

func NewRoleAuthorizer(log Logger, commands ...string) *RoleAuthorizer {
	a := &RoleAuthorizer{
		adminCommands: make(map[string]struct{}, len(commands)),
		log:           log,
	}
	for _, c := range commands {
		a.adminCommands[c] = struct{}{}
	}
	return a
}

func (a *RoleAuthorizer) Name() string { return "role_authorizer" }

func (a *RoleAuthorizer) Process(ctx context.Context, ev *Event) (Action, error) {
	if !ev.IsCommand() {
		return ActionContinue, nil
	}
	if _, isAdminCommand := a.adminCommands[ev.Command]; !isAdminCommand {
		return ActionContinue, nil
	}
	if ev.Known && ev.User.IsAdmin() {
		return ActionContinue, nil
	}

	a.log.Debug("dropped admin command of non-admin", "command", ev.Command, "user_id", ev.UserID)
	return ActionDrop, nil
}
