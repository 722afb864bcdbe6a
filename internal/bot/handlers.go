package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/maxbolgarin/errm"
	tele "gopkg.in/telebot.v4"

	"moderbot/internal/i18n"
)

const (
	languageCallbackPrefix = "lang|"

	statisticsLimit = 5
)

// handlers implements all command and callback handlers of the bot.
type handlers struct {
	tp        Transport
	msgs      *i18n.Provider
	sessions  *sessionStore
	lifecycle *UserLifecycle
	banflow   *BanWorkflow
	log       Logger
}

func (h *handlers) register(d *Dispatcher) {
	d.Handle(CommandStart, h.start)
	d.Handle(CommandHelp, h.help)
	d.Handle(CommandLang, h.chooseLanguage)
	d.Handle(CommandBan, h.ban)
	d.Handle(CommandUnban, h.unban)
	d.Handle(CommandStatistics, h.statistics)
	d.HandleCallback(languageCallbackPrefix, h.languageChosen)
	d.HandleBlocked(h.blocked)
}

// start registers or revives the user, resets any pending language flow and
// rebuilds the command menu for the user's role and language.
func (h *handlers) start(ctx context.Context, ev *Event) error {
	user, err := h.lifecycle.EnsureUser(ctx, ev.Store, ev)
	if err != nil {
		return err
	}

	ev.User = user
	ev.Known = true

	h.sessions.Set(ev.UserID, session{Language: ev.Lang})

	if err := h.tp.SetCommands(ev.UserID, menuCommands(ev.Msgs, user.Role)); err != nil {
		h.log.Warn("set command menu", "error", err, "user_id", ev.UserID)
	}

	_, err = h.tp.Send(ev.UserID, ev.Msgs.Start)
	return err
}

func (h *handlers) help(ctx context.Context, ev *Event) error {
	text := ev.Msgs.Help
	if ev.Known && ev.User.IsAdmin() {
		text = ev.Msgs.HelpAdmin
	}
	_, err := h.tp.Send(ev.UserID, text)
	return err
}

// chooseLanguage sends the language keyboard and puts the session into the
// awaiting-choice state, remembering the prompt message so it can be
// cleaned up later.
func (h *handlers) chooseLanguage(ctx context.Context, ev *Event) error {
	markup := &tele.ReplyMarkup{}
	var row []tele.InlineButton
	for _, l := range h.msgs.Languages() {
		row = append(row, tele.InlineButton{
			Text: h.msgs.Messages(l).LanguageName,
			Data: languageCallbackPrefix + string(l),
		})
	}
	markup.InlineKeyboard = [][]tele.InlineButton{row}

	msgID, err := h.tp.Send(ev.UserID, ev.Msgs.ChooseLang, markup)
	if err != nil {
		return err
	}

	h.sessions.Set(ev.UserID, session{
		Language:    ev.Lang,
		Flow:        flowAwaitingLanguage,
		PromptMsgID: msgID,
	})

	return nil
}

// languageChosen completes the /lang flow: persists the choice, removes the
// prompt keyboard and clears the session cache so the next event re-reads
// the durable value.
func (h *handlers) languageChosen(ctx context.Context, ev *Event) error {
	code := strings.TrimPrefix(ev.Callback.Data, languageCallbackPrefix)
	chosen := i18n.Parse(code)
	if !h.msgs.IsSupported(chosen) {
		return errm.New("unsupported language in callback", "code", code)
	}

	// For a registered user the session cache is cleared so the next event
	// re-reads the persisted value. A user without a row keeps the choice
	// in the session until /start creates one.
	next := session{Language: chosen}
	if ev.Known {
		if err := ev.Store.SetLanguage(ctx, ev.UserID, chosen); err != nil {
			return errm.Wrap(err, "persist language")
		}
		next = session{}
	}

	if ev.Callback.Message != nil {
		if err := h.tp.EditReplyMarkup(ev.UserID, ev.Callback.Message.ID, &tele.ReplyMarkup{}); err != nil {
			h.log.Warn("clear language prompt", "error", err, "user_id", ev.UserID)
		}
	}

	h.sessions.Set(ev.UserID, next)

	msgs := h.msgs.Messages(chosen)
	if err := h.tp.SetCommands(ev.UserID, menuCommands(msgs, ev.User.Role)); err != nil {
		h.log.Warn("set command menu", "error", err, "user_id", ev.UserID)
	}

	_, err := h.tp.Send(ev.UserID, msgs.LanguageSet)
	return err
}

func (h *handlers) ban(ctx context.Context, ev *Event) error {
	outcome, err := h.banflow.Ban(ctx, ev.Store, ev.Args)
	if err != nil {
		return err
	}

	var text string
	switch outcome {
	case OutcomeEmptyArgument:
		text = ev.Msgs.EmptyBanArg
	case OutcomeBadArgument:
		text = ev.Msgs.BadBanArg
	case OutcomeNoSuchUser:
		text = ev.Msgs.NoSuchUser
	case OutcomeAlreadyBanned:
		text = ev.Msgs.AlreadyBanned
	case OutcomeBanned:
		text = ev.Msgs.BanSuccess
	default:
		return errm.New("unexpected ban outcome", "outcome", outcome)
	}

	_, err = h.tp.Send(ev.UserID, text)
	return err
}

func (h *handlers) unban(ctx context.Context, ev *Event) error {
	outcome, err := h.banflow.Unban(ctx, ev.Store, ev.Args)
	if err != nil {
		return err
	}

	var text string
	switch outcome {
	case OutcomeEmptyArgument:
		text = ev.Msgs.EmptyUnbanArg
	case OutcomeBadArgument:
		text = ev.Msgs.BadUnbanArg
	case OutcomeNoSuchUser:
		text = ev.Msgs.NoSuchUser
	case OutcomeNotBanned:
		text = ev.Msgs.NotBanned
	case OutcomeUnbanned:
		text = ev.Msgs.UnbanSuccess
	default:
		return errm.New("unexpected unban outcome", "outcome", outcome)
	}

	_, err = h.tp.Send(ev.UserID, text)
	return err
}

// statistics renders a 1-indexed top list of users by their total actions.
func (h *handlers) statistics(ctx context.Context, ev *Event) error {
	top, err := ev.Store.TopByActions(ctx, statisticsLimit)
	if err != nil {
		return errm.Wrap(err, "load top activity")
	}

	b := i18n.NewBuilder()
	for i, a := range top {
		b.Writef("%d. %s: %s\n", i+1,
			i18n.F(strconv.FormatInt(a.UserID, 10), i18n.Code),
			i18n.F(strconv.FormatInt(a.Actions, 10), i18n.Bold),
		)
	}

	_, err = h.tp.Send(ev.UserID, fmt.Sprintf(ev.Msgs.Statistics, strings.TrimRight(b.String(), "\n")))
	return err
}

func (h *handlers) blocked(ctx context.Context, ev *Event) error {
	return h.lifecycle.MarkBlocked(ctx, ev.Store, ev.UserID)
}
