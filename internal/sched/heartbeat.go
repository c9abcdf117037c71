package sched

import (
	"context"
	"time"

	"stockd/internal/broker"
	"stockd/internal/logger"
	"stockd/internal/store"
)

// Heartbeat probes each enabled account's session by querying assets. A dead
// session during trading hours dispatches the auto-login task; off hours it
// is only logged, a fresh login would be rejected anyway.
type Heartbeat struct {
	API      broker.API
	Accounts store.AccountRepository
	Gate     Gate

	// Login refreshes the sessions; wired to the auto-login category.
	Login func(ctx context.Context) error

	nowFn func() time.Time
}

func (h *Heartbeat) Fire(ctx context.Context) error {
	if h.nowFn == nil {
		h.nowFn = time.Now
	}
	accounts, err := h.Accounts.ListEnabled(ctx)
	if err != nil {
		return err
	}
	alive := true
	for _, acct := range accounts {
		sess := broker.Session{Cookie: acct.Cookie, ValidateKey: acct.ValidateKey}
		res, err := h.API.GetAssets(ctx, sess)
		if err == nil && res.Success() {
			continue
		}
		alive = false
		if err != nil {
			logger.Warnf("heartbeat account=%s session dead: %v", acct.Account, err)
		} else {
			logger.Warnf("heartbeat account=%s session dead: %s", acct.Account, res.Message)
		}
	}
	if alive {
		return nil
	}
	now := h.nowFn()
	if h.Gate != nil && (!h.Gate.IsBusinessDate(now) || !h.Gate.IsBusinessTime(now)) {
		logger.Infof("heartbeat: session dead outside trading hours, login deferred")
		return nil
	}
	return h.Login(ctx)
}
