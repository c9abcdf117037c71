// Package app wires configuration into the running service: store, calendar,
// market and broker clients, the task engine and its triggers, and the admin
// HTTP surface.
package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"stockd/internal/broker"
	"stockd/internal/calendar"
	"stockd/internal/config"
	"stockd/internal/logger"
	"stockd/internal/market"
	"stockd/internal/notify"
	"stockd/internal/ocr"
	"stockd/internal/sched"
	"stockd/internal/store"
	"stockd/internal/store/model"
	"stockd/internal/strategy"
	"stockd/internal/task"
	adminhttp "stockd/internal/transport/http/admin"
)

// App 负责应用级编排：加载配置 → 初始化依赖 → 启动调度与 HTTP 服务。
type App struct {
	cfg    *config.Config
	store  store.Store
	runner *sched.Runner
	admin  *adminhttp.Server
}

// New builds the application object without starting it.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return build(context.Background(), cfg)
}

// Run starts the trigger loops and the admin server, blocking until ctx is
// cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)

	if a.admin != nil {
		group.Go(func() error {
			logger.Infof("admin http server listening on %s", a.admin.Addr())
			if err := a.admin.Start(ctx); err != nil {
				return fmt.Errorf("admin http server error: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		defer a.store.Close()
		return a.runner.Run(ctx)
	})

	return group.Wait()
}

func build(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := newStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := seedAccounts(ctx, st, cfg.Accounts); err != nil {
		return nil, fmt.Errorf("seeding accounts failed: %w", err)
	}

	cal, err := calendar.New(cfg.Calendar, st)
	if err != nil {
		return nil, fmt.Errorf("building calendar failed: %w", err)
	}

	mkt := market.NewClient(cfg.Crawler)
	brk, err := broker.NewClient(cfg.Broker)
	if err != nil {
		return nil, fmt.Errorf("building broker client failed: %w", err)
	}

	notifier := buildNotifier(cfg.Notifier)
	resolver, err := buildOCR(cfg.OCR)
	if err != nil {
		return nil, err
	}

	strategies := strategy.NewRegistry(
		&strategy.PriceBreak{Market: mkt, Notifier: notifier},
	)

	svc := task.NewService(task.Deps{
		Store:      st,
		Market:     mkt,
		Broker:     brk,
		Notifier:   notifier,
		OCR:        resolver,
		Strategies: strategies,
		Calendar:   cal,
		Features:   cfg.Features,
		CaptchaURL: brk.CaptchaURL,
	})
	dispatcher := task.NewDispatcher(st.Executions(), notifier, svc.Handlers())

	runner := sched.NewRunner(st.Executions(), dispatcher)
	registerTriggers(runner, cal, st, brk, cfg.Sched)

	app := &App{cfg: cfg, store: st, runner: runner}
	if cfg.Admin.Enabled {
		srv, err := adminhttp.NewServer(adminhttp.ServerConfig{
			Addr:       cfg.Admin.Addr,
			Executions: st.Executions(),
			Dispatcher: dispatcher,
		})
		if err != nil {
			return nil, fmt.Errorf("building admin server failed: %w", err)
		}
		app.admin = srv
	}
	return app, nil
}

func registerTriggers(r *sched.Runner, cal *calendar.Service, st store.Store, brk broker.API, cfg config.SchedConfig) {
	loc := cal.Location()
	businessDate := cal.IsBusinessDate
	inSession := func(t time.Time) bool {
		return cal.IsBusinessDate(t) && cal.IsBusinessTime(t)
	}

	r.AddCategory("beginOfYear",
		sched.Yearly(loc, time.January, 1, sched.Clock{}),
		nil, model.TaskBeginOfYear)
	r.AddCategory("beginOfDay",
		sched.DailyAt(loc, sched.Clock{Hour: 6}),
		nil, model.TaskBeginOfDay)
	r.AddCategory("updateOfStock",
		sched.DailyAt(loc, sched.Clock{Hour: 9}),
		businessDate, model.TaskUpdateOfStock)
	r.AddCategory("updateOfDailyQuote",
		sched.DailyAt(loc, sched.Clock{Hour: 17}, sched.Clock{Hour: 18}, sched.Clock{Hour: 19}),
		businessDate, model.TaskUpdateOfDailyQuote)
	r.AddCategory("applyNewStock",
		sched.DailyAt(loc, sched.Clock{Hour: 10, Minute: 1}, sched.Clock{Hour: 14, Minute: 1}),
		businessDate, model.TaskApplyNewStock)

	interval := time.Duration(cfg.TickerIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}
	r.AddCategory("ticker", sched.Every(interval), inSession,
		model.TaskTicker, model.TaskTradeTicker)

	hb := &sched.Heartbeat{
		API:      brk,
		Accounts: st.Accounts(),
		Gate:     cal,
		Login:    r.CategoryFire(model.TaskAutoLogin),
	}
	minutes := cfg.HeartbeatMinutes
	if len(minutes) == 0 {
		minutes = []int{10, 30, 50}
	}
	r.Add(sched.Trigger{
		Name: "heartbeat",
		Next: sched.HourlyMinutes(loc, minutes, 8, 21),
		Fire: hb.Fire,
	})
}

func seedAccounts(ctx context.Context, st store.Store, seeds []config.AccountSeed) error {
	if len(seeds) == 0 {
		return nil
	}
	accts := make([]model.TradeAccount, 0, len(seeds))
	for _, s := range seeds {
		accts = append(accts, model.TradeAccount{Account: s.Account, Password: s.Password})
	}
	return st.Accounts().SeedIfEmpty(ctx, accts)
}

func buildNotifier(cfg config.NotifierConfig) notify.TextNotifier {
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		return notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}
	logger.Warnf("notifier not configured, notifications disabled")
	return notify.Nop{}
}

func buildOCR(cfg config.OCRConfig) (ocr.Resolver, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	reg := ocr.NewRegistry()
	reg.Register("http", ocr.NewHTTPResolver(cfg.Endpoint, timeout))
	provider := cfg.Provider
	if provider == "" {
		provider = "http"
	}
	resolver, err := reg.Lookup(provider)
	if err != nil {
		return nil, fmt.Errorf("building ocr resolver failed: %w", err)
	}
	return resolver, nil
}
