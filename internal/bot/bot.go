// Package bot contains the inbound-update processing core: the middleware
// chain that gates and enriches every event, the user lifecycle and ban
// state machines and the command handlers on top of them.
package bot

import (
	"context"
	"time"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	tele "gopkg.in/telebot.v4"

	"moderbot/internal/i18n"
	"moderbot/internal/storage"
)

const defaultWorkers = 32

// Config holds runtime settings of the bot core.
type Config struct {
	Token           string
	AdminIDs        []int64
	DefaultLanguage i18n.Language

	LPTimeout time.Duration
	Debug     bool

	Workers         int
	SessionCapacity int
	SessionTTL      time.Duration
}

// Options carries the bot's collaborators. Stores is required, everything
// else has a working default.
type Options struct {
	Stores   storage.Stores
	Logger   Logger
	Registry prometheus.Registerer

	// Transport and Poller override the Telegram connection, used in tests.
	Transport Transport
	Poller    tele.Poller
}

// Bot wires the dispatcher, middlewares and handlers together and pumps
// updates from the poller through a worker pool.
type Bot struct {
	cfg        Config
	dispatcher *Dispatcher
	tp         Transport
	base       *baseBot
	pool       *ants.Pool
	sessions   *sessionStore
	metrics    *metrics
	log        Logger

	ctx context.Context
}

// New builds the bot. It does not start polling, call Start for that.
func New(ctx context.Context, cfg Config, opts Options) (*Bot, error) {
	if opts.Stores == nil {
		return nil, errm.New("stores cannot be nil")
	}
	log := lang.If[Logger](opts.Logger != nil, opts.Logger, noopLogger{})

	msgs := i18n.NewProvider(cfg.DefaultLanguage)

	sessions, err := newSessionStore(cfg.SessionCapacity, cfg.SessionTTL)
	if err != nil {
		return nil, errm.Wrap(err, "new session store")
	}

	b := &Bot{
		cfg:      cfg,
		sessions: sessions,
		metrics:  newMetrics(opts.Registry),
		log:      log,
		ctx:      ctx,
	}

	b.tp = opts.Transport
	if b.tp == nil {
		if cfg.Token == "" {
			return nil, errm.New("token cannot be empty")
		}
		poller := opts.Poller
		if poller == nil {
			poller = &tele.LongPoller{Timeout: lang.Check(cfg.LPTimeout, time.Minute)}
		}
		base, err := newBaseBot(cfg.Token, tele.NewMiddlewarePoller(poller, b.filter), cfg.Debug, log)
		if err != nil {
			return nil, errm.Wrap(err, "new base bot")
		}
		b.base = base
		b.tp = base
	}

	pool, err := ants.NewPool(lang.Check(cfg.Workers, defaultWorkers), ants.WithPreAlloc(true))
	if err != nil {
		return nil, errm.Wrap(err, "new worker pool")
	}
	b.pool = pool

	d := newDispatcher(opts.Stores, b.tp, sessions, b.metrics, log)
	d.Use(NewShadowBanGate(log))
	d.Use(NewLocaleResolver(msgs, sessions, b.tp, log))
	d.Use(NewRoleAuthorizer(log, AdminCommands()...))

	h := &handlers{
		tp:        b.tp,
		msgs:      msgs,
		sessions:  sessions,
		lifecycle: NewUserLifecycle(cfg.AdminIDs, msgs, log),
		banflow:   NewBanWorkflow(log),
		log:       log,
	}
	h.register(d)

	b.dispatcher = d

	return b, nil
}

// Dispatcher exposes the dispatcher for registering extra middlewares or
// handlers before Start.
func (b *Bot) Dispatcher() *Dispatcher {
	return b.dispatcher
}

// Start begins polling for updates. It returns immediately.
func (b *Bot) Start() error {
	if b.base == nil {
		return errm.New("bot has no telegram connection")
	}

	b.log.Info("bot is starting", "workers", b.pool.Cap())
	lang.Go(b.log, b.base.bot.Start)

	return nil
}

// Stop stops polling and waits for in-flight events to drain.
func (b *Bot) Stop() {
	if b.base != nil {
		b.base.bot.Stop()
	}
	b.pool.Release()
	b.log.Info("bot is stopped")
}

// filter is the poller hook: every update is handed to the worker pool and
// never reaches telebot's own router.
func (b *Bot) filter(upd *tele.Update) bool {
	u := *upd
	err := b.pool.Submit(func() {
		defer lang.Recover(b.log)
		b.dispatcher.HandleUpdate(b.ctx, &u)
		b.metrics.setSessionCacheSize(b.sessions.Size())
	})
	if err != nil {
		b.log.Error("submit update to pool", "error", err, "update_id", u.ID)
	}
	return false
}
