package bot

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/maxbolgarin/errm"
	tele "gopkg.in/telebot.v4"
)

var (
	errEmptyUserID = errm.New("empty user id")
	errEmptyMsgID  = errm.New("empty msg id")
)

// Transport sends outbound requests to Telegram. It is an interface so that
// handlers can be tested without a live bot.
type Transport interface {
	// Send sends a message to the user and returns its id.
	Send(userID int64, msg string, options ...any) (int, error)

	// Respond answers a callback query.
	Respond(callback *tele.Callback, resp *tele.CallbackResponse) error

	// EditReplyMarkup replaces the inline keyboard of a sent message.
	EditReplyMarkup(userID int64, msgID int, markup *tele.ReplyMarkup) error

	// SetCommands sets the command menu visible to a single user.
	SetCommands(userID int64, commands []tele.Command) error
}

// baseBot is the Transport implementation over a telebot instance.
type baseBot struct {
	bot *tele.Bot
	log Logger

	defaultOptions []any
}

func newBaseBot(token string, poller tele.Poller, debug bool, log Logger) (*baseBot, error) {
	b := &baseBot{
		log:            log,
		defaultOptions: []any{tele.ModeHTML},
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:   token,
		Poller:  poller,
		Client:  &http.Client{Timeout: time.Minute},
		Verbose: debug,
		OnError: func(err error, ctx tele.Context) {
			var userID int64
			if ctx != nil && ctx.Chat() != nil {
				userID = ctx.Chat().ID
			}
			b.log.Error("Bot.OnError", "error", err, "user_id", userID)
		},
	})
	if err != nil {
		return nil, errm.Wrap(err, "new telebot")
	}
	b.bot = bot

	return b, nil
}

func (b *baseBot) Send(userID int64, msg string, options ...any) (int, error) {
	if userID == 0 {
		return 0, errEmptyUserID
	}

	m, err := b.bot.Send(userIDWrapper(userID), msg, append(options, b.defaultOptions...)...)
	if err != nil {
		return 0, err
	}

	return m.ID, nil
}

func (b *baseBot) Respond(callback *tele.Callback, resp *tele.CallbackResponse) error {
	if resp == nil {
		resp = &tele.CallbackResponse{}
	}
	return b.bot.Respond(callback, resp)
}

func (b *baseBot) EditReplyMarkup(userID int64, msgID int, markup *tele.ReplyMarkup) error {
	if userID == 0 {
		return errEmptyUserID
	}
	if msgID == 0 {
		return errEmptyMsgID
	}

	_, err := b.bot.EditReplyMarkup(getEditable(userID, msgID), markup)
	if err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			b.log.Warn("message is not modified", "msg_id", msgID, "user_id", userID)
			return nil
		}
		return err
	}

	return nil
}

func (b *baseBot) SetCommands(userID int64, commands []tele.Command) error {
	if userID == 0 {
		return errEmptyUserID
	}
	return b.bot.SetCommands(commands, tele.CommandScope{
		Type:   tele.CommandScopeChat,
		ChatID: userID,
	})
}

// IsBlockedError reports whether the error means the user has blocked the bot.
func IsBlockedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "bot was blocked by the user")
}

type userIDWrapper int64

func (u userIDWrapper) Recipient() string {
	return strconv.Itoa(int(u))
}

func getEditable(senderID int64, messageID int) tele.Editable {
	return &tele.Message{ID: messageID, Chat: &tele.Chat{ID: senderID}}
}
