package bot

import (
	"context"
	"strings"
	"time"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/lang"
	tele "gopkg.in/telebot.v4"

	"moderbot/internal/i18n"
	"moderbot/internal/model"
	"moderbot/internal/storage"
)

// Action is a middleware verdict for the current event.
type Action int

const (
	// ActionContinue passes the event to the next middleware or handler.
	ActionContinue Action = iota
	// ActionDrop stops processing without any visible output. Callback
	// events are still acknowledged so the client does not hang.
	ActionDrop
	// ActionReject stops processing and sends Event.Reply to the user.
	ActionReject
)

// Middleware inspects and enriches an event before it reaches a handler.
type Middleware interface {
	Name() string
	Process(ctx context.Context, ev *Event) (Action, error)
}

// HandlerFunc processes a fully gated and enriched event.
type HandlerFunc func(ctx context.Context, ev *Event) error

// Event is the mutable per-event context passed through the middleware
// chain. Middlewares fill User, Lang and Msgs; handlers read them.
type Event struct {
	UserID         int64
	Username       string
	Text           string
	PlatformLocale string

	Callback *tele.Callback
	Blocked  bool

	Command string
	Args    string

	// Filled by middlewares.
	User  model.User
	Known bool
	Lang  i18n.Language
	Msgs  i18n.Messages
	Reply string

	// One storage connection for the whole event.
	Store storage.StoreConn
}

// IsCommand reports whether the event is a slash command message.
func (ev *Event) IsCommand() bool {
	return ev.Command != ""
}

// Dispatcher runs every inbound update through an ordered middleware chain
// and routes it to the matched handler. Each event is one independent unit
// of work; a failure aborts that event only.
type Dispatcher struct {
	stores   storage.Stores
	tp       Transport
	log      Logger
	metrics  *metrics
	sessions *sessionStore

	chain     *abstract.SafeSlice[Middleware]
	handlers  map[string]HandlerFunc
	callbacks map[string]HandlerFunc

	blockedHandler HandlerFunc
}

func newDispatcher(stores storage.Stores, tp Transport, sessions *sessionStore, m *metrics, log Logger) *Dispatcher {
	return &Dispatcher{
		stores:    stores,
		tp:        tp,
		log:       lang.If[Logger](log != nil, log, noopLogger{}),
		metrics:   m,
		sessions:  sessions,
		chain:     abstract.NewSafeSlice[Middleware](),
		handlers:  make(map[string]HandlerFunc),
		callbacks: make(map[string]HandlerFunc),
	}
}

// Use appends a middleware to the chain. Order of calls is order of execution.
func (d *Dispatcher) Use(m Middleware) {
	d.chain.Append(m)
}

// Handle registers a handler for a slash command, e.g. "/start".
func (d *Dispatcher) Handle(command string, h HandlerFunc) {
	d.handlers[command] = h
}

// HandleCallback registers a handler for callback data starting with prefix.
func (d *Dispatcher) HandleCallback(prefix string, h HandlerFunc) {
	d.callbacks[prefix] = h
}

// HandleBlocked registers a handler for "user blocked the bot" events.
func (d *Dispatcher) HandleBlocked(h HandlerFunc) {
	d.blockedHandler = h
}

// HandleUpdate processes one inbound update end to end. It acquires a
// storage connection for the duration of the event and releases it on every
// exit path.
func (d *Dispatcher) HandleUpdate(ctx context.Context, upd *tele.Update) {
	started := time.Now()
	d.metrics.incUpdate()

	ev, ok := newEvent(upd)
	if !ok {
		d.metrics.observeResult(resultIgnored)
		return
	}

	conn, err := d.stores.Acquire(ctx)
	if err != nil {
		d.log.Error("acquire store conn", "error", err, "user_id", ev.UserID)
		d.metrics.observeResult(resultError)
		return
	}
	defer conn.Release()
	ev.Store = conn

	if ev.Blocked {
		if d.blockedHandler != nil {
			if err := d.blockedHandler(ctx, ev); err != nil {
				d.log.Error("handle blocked", "error", err, "user_id", ev.UserID)
				d.metrics.observeResult(resultError)
				return
			}
		}
		d.metrics.observeResult(resultOK)
		return
	}

	var verdict Action
	d.chain.Range(func(m Middleware) bool {
		verdict, err = m.Process(ctx, ev)
		if err != nil {
			d.log.Error("middleware failed", "middleware", m.Name(), "error", err, "user_id", ev.UserID)
			return false
		}
		return verdict == ActionContinue
	})
	if err != nil {
		d.metrics.observeResult(resultError)
		return
	}

	switch verdict {
	case ActionDrop:
		d.ackCallback(ev)
		d.metrics.observeResult(resultDropped)
		return
	case ActionReject:
		if _, err := d.tp.Send(ev.UserID, lang.Check(ev.Reply, ev.Msgs.GeneralError)); err != nil {
			d.log.Error("send reject reply", "error", err, "user_id", ev.UserID)
		}
		d.ackCallback(ev)
		d.metrics.observeResult(resultRejected)
		return
	}

	if ev.Known {
		if err := conn.RecordAction(ctx, ev.UserID); err != nil {
			d.log.Error("record action", "error", err, "user_id", ev.UserID)
			d.metrics.observeResult(resultError)
			return
		}
	}

	h := d.route(ev)
	if h == nil {
		d.ackCallback(ev)
		d.metrics.observeResult(resultIgnored)
		return
	}

	if err := h(ctx, ev); err != nil {
		d.handleError(ctx, ev, err)
		d.metrics.observeResult(resultError)
		return
	}

	d.ackCallback(ev)
	d.metrics.observeResult(resultOK)
	d.metrics.observeHandlerDuration(time.Since(started))
}

func (d *Dispatcher) route(ev *Event) HandlerFunc {
	if ev.Callback != nil {
		for prefix, h := range d.callbacks {
			if strings.HasPrefix(ev.Callback.Data, prefix) {
				return h
			}
		}
		return nil
	}
	if ev.IsCommand() {
		return d.handlers[ev.Command]
	}
	return nil
}

func (d *Dispatcher) handleError(ctx context.Context, ev *Event, err error) {
	if IsBlockedError(err) {
		if d.blockedHandler != nil {
			if berr := d.blockedHandler(ctx, ev); berr != nil {
				d.log.Error("handle blocked", "error", berr, "user_id", ev.UserID)
			}
		}
		return
	}

	d.log.Error("handler failed", "command", ev.Command, "error", err, "user_id", ev.UserID)

	if _, serr := d.tp.Send(ev.UserID, ev.Msgs.GeneralError); serr != nil {
		d.log.Error("send error reply", "error", serr, "user_id", ev.UserID)
	}
}

// ackCallback answers the callback query if the event carries one. A missed
// acknowledgement leaves the client spinner hanging, so failures are only
// logged.
func (d *Dispatcher) ackCallback(ev *Event) {
	if ev.Callback == nil {
		return
	}
	if err := d.tp.Respond(ev.Callback, nil); err != nil {
		d.log.Warn("respond to callback", "error", err, "user_id", ev.UserID)
	}
}

// newEvent builds an Event from a raw update. It returns false for update
// kinds the bot does not process.
func newEvent(upd *tele.Update) (*Event, bool) {
	switch {
	case upd.Message != nil:
		sender := lang.Deref(upd.Message.Sender)
		ev := &Event{
			UserID:         sender.ID,
			Username:       sender.Username,
			Text:           upd.Message.Text,
			PlatformLocale: sender.LanguageCode,
		}
		ev.Command, ev.Args = parseCommand(upd.Message.Text)
		return ev, ev.UserID != 0

	case upd.Callback != nil:
		sender := lang.Deref(upd.Callback.Sender)
		ev := &Event{
			UserID:         sender.ID,
			Username:       sender.Username,
			PlatformLocale: sender.LanguageCode,
			Callback:       upd.Callback,
		}
		return ev, ev.UserID != 0

	case upd.MyChatMember != nil:
		sender := lang.Deref(upd.MyChatMember.Sender)
		ev := &Event{
			UserID:   sender.ID,
			Username: sender.Username,
			Blocked:  lang.Deref(upd.MyChatMember.NewChatMember).Role == "kicked",
		}
		return ev, ev.UserID != 0 && ev.Blocked

	default:
		return nil, false
	}
}

// parseCommand extracts a slash command and its argument string from a
// message text. The bot mention suffix ("/ban@my_bot") is stripped.
func parseCommand(text string) (command, args string) {
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	command, args, _ = strings.Cut(text, " ")
	command, _, _ = strings.Cut(command, "@")
	return command, strings.TrimSpace(args)
}
