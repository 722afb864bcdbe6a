package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/maxbolgarin/errm"

	"moderbot/internal/model"
	"moderbot/internal/storage"
)

// BanOutcome is the observed result of a ban or unban attempt.
type BanOutcome int

const (
	// OutcomeEmptyArgument means the command came without a target.
	OutcomeEmptyArgument BanOutcome = iota
	// OutcomeBadArgument means the target is neither an id nor an @handle.
	OutcomeBadArgument
	// OutcomeNoSuchUser means no user row resolves from the target.
	OutcomeNoSuchUser
	// OutcomeAlreadyBanned means ban was requested for a banned user.
	OutcomeAlreadyBanned
	// OutcomeBanned means the user was banned now.
	OutcomeBanned
	// OutcomeNotBanned means unban was requested for an active user.
	OutcomeNotBanned
	// OutcomeUnbanned means the user was unbanned now.
	OutcomeUnbanned
)

// banTarget is a parsed command argument: a numeric id or an @handle.
type banTarget struct {
	id       int64
	username string
}

// BanWorkflow drives the state machine over a user's banned flag. The read
// and the write are not atomic against a concurrent identical command, so
// the write is conditional on the previously observed state and a lost race
// collapses to a no-op.
type BanWorkflow struct {
	log Logger
}

func NewBanWorkflow(log Logger) *BanWorkflow {
	return &BanWorkflow{log: log}
}

// Ban moves the target from active to banned.
func (w *BanWorkflow) Ban(ctx context.Context, store storage.UserStore, rawArg string) (BanOutcome, error) {
	return w.transition(ctx, store, rawArg, true, OutcomeAlreadyBanned, OutcomeBanned)
}

// Unban moves the target from banned back to active.
func (w *BanWorkflow) Unban(ctx context.Context, store storage.UserStore, rawArg string) (BanOutcome, error) {
	return w.transition(ctx, store, rawArg, false, OutcomeNotBanned, OutcomeUnbanned)
}

func (w *BanWorkflow) transition(
	ctx context.Context, store storage.UserStore, rawArg string, ban bool, noop, done BanOutcome,
) (BanOutcome, error) {
	if rawArg == "" {
		return OutcomeEmptyArgument, nil
	}

	target, ok := parseBanTarget(rawArg)
	if !ok {
		return OutcomeBadArgument, nil
	}

	user, err := w.lookup(ctx, store, target)
	if err != nil {
		if errm.Is(err, storage.ErrNotFound) {
			return OutcomeNoSuchUser, nil
		}
		return 0, errm.Wrap(err, "lookup target")
	}

	if user.Banned == ban {
		return noop, nil
	}

	// The outcome reflects the state observed above. If a concurrent
	// identical command flips the flag first, this write affects no rows,
	// which is fine.
	var changed bool
	if target.username != "" {
		changed, err = store.SetBannedByUsername(ctx, target.username, !ban, ban)
	} else {
		changed, err = store.SetBannedByID(ctx, target.id, !ban, ban)
	}
	if err != nil {
		return 0, errm.Wrap(err, "update banned flag")
	}
	if !changed {
		w.log.Debug("ban transition lost a race", "user_id", user.ID, "ban", ban)
	}

	w.log.Info("moderation state changed", "user_id", user.ID, "banned", ban)

	return done, nil
}

func (w *BanWorkflow) lookup(ctx context.Context, store storage.UserStore, target banTarget) (model.User, error) {
	if target.username != "" {
		return store.UserByUsername(ctx, target.username)
	}
	return store.User(ctx, target.id)
}

// parseBanTarget accepts a positive numeric id or an @handle.
func parseBanTarget(raw string) (banTarget, bool) {
	if handle, ok := strings.CutPrefix(raw, "@"); ok {
		if handle == "" {
			return banTarget{}, false
		}
		return banTarget{username: handle}, true
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return banTarget{}, false
	}
	return banTarget{id: id}, true
}
