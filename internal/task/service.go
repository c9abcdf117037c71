// Package task implements the scheduled task handlers and the dispatcher
// that runs them with per-record failure isolation.
package task

import (
	"context"
	"time"

	"stockd/internal/broker"
	"stockd/internal/config"
	"stockd/internal/market"
	"stockd/internal/notify"
	"stockd/internal/ocr"
	"stockd/internal/store"
	"stockd/internal/store/model"
	"stockd/internal/strategy"
)

// CalendarReloader is the slice of the calendar gate the beginOfYear task
// needs.
type CalendarReloader interface {
	Reload(ctx context.Context, year int) error
}

// Service owns the task handlers and their shared state.
type Service struct {
	store      store.Store
	market     market.Source
	api        broker.API
	notifier   notify.TextNotifier
	ocr        ocr.Resolver
	strategies *strategy.Registry
	calendar   CalendarReloader
	features   config.FeatureConfig

	// captchaURL builds the captcha image URL for a correlation token.
	captchaURL func(randNumber string) string

	alerts *AlertState

	// NameFilter decides whether a crawled name may drive a rename. The
	// default rejects the feed's transient display prefixes.
	NameFilter func(name string) bool

	nowFn func() time.Time
}

// Deps bundles the collaborators of the task service.
type Deps struct {
	Store      store.Store
	Market     market.Source
	Broker     broker.API
	Notifier   notify.TextNotifier
	OCR        ocr.Resolver
	Strategies *strategy.Registry
	Calendar   CalendarReloader
	Features   config.FeatureConfig
	CaptchaURL func(randNumber string) string
}

func NewService(d Deps) *Service {
	s := &Service{
		store:      d.Store,
		market:     d.Market,
		api:        d.Broker,
		notifier:   d.Notifier,
		ocr:        d.OCR,
		strategies: d.Strategies,
		calendar:   d.Calendar,
		features:   d.Features,
		captchaURL: d.CaptchaURL,
		alerts:     NewAlertState(),
		NameFilter: market.IsOriginalName,
		nowFn:      time.Now,
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	return s
}

// Handlers returns the dispatch table: one handler per task kind.
func (s *Service) Handlers() map[model.TaskKind]HandlerFunc {
	return map[model.TaskKind]HandlerFunc{
		model.TaskBeginOfYear:        s.runBeginOfYear,
		model.TaskBeginOfDay:         s.runBeginOfDay,
		model.TaskUpdateOfStock:      s.runUpdateOfStock,
		model.TaskUpdateOfDailyQuote: s.runUpdateOfDailyQuote,
		model.TaskTicker:             s.runTicker,
		model.TaskTradeTicker:        s.runTradeTicker,
		model.TaskApplyNewStock:      s.runApplyNewStock,
		model.TaskAutoLogin:          s.runAutoLogin,
	}
}

func (s *Service) runBeginOfYear(ctx context.Context) error {
	if s.calendar == nil {
		return nil
	}
	return s.calendar.Reload(ctx, s.nowFn().Year())
}

// runBeginOfDay clears the ticker alert state. Safe to run more than once
// before the first quote of the day.
func (s *Service) runBeginOfDay(context.Context) error {
	s.alerts.Reset()
	return nil
}

// today returns midnight of the current day in local time.
func (s *Service) today() time.Time {
	now := s.nowFn()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
