package store

import (
	"context"
	"time"

	"stockd/internal/store/model"
)

// Store is the entry point for database access.
type Store interface {
	Stocks() StockRepository
	Quotes() QuoteRepository
	Deals() DealRepository
	Watches() WatchRepository
	Rules() RuleRepository
	Accounts() AccountRepository
	Executions() ExecutionRepository
	Holidays() HolidayRepository
	Close() error
}

// StockRepository handles the instrument roster.
type StockRepository interface {
	ListAll(ctx context.Context) ([]model.Stock, error)
	FindByCode(ctx context.Context, code string) (*model.Stock, error)
	// SaveRosterChanges applies a reconciliation result in one transaction:
	// inserts, name updates and the matching change-log entries.
	SaveRosterChanges(ctx context.Context, insert, update []model.Stock, logs []model.StockLog) error
}

// QuoteRepository handles daily quote snapshots.
type QuoteRepository interface {
	SaveAll(ctx context.Context, quotes []model.DailyQuote) error
	// ListCodesByDate returns full codes that already have a snapshot on day.
	ListCodesByDate(ctx context.Context, day time.Time) ([]string, error)
}

// DealRepository handles recorded trade fills.
type DealRepository interface {
	ListByDate(ctx context.Context, day time.Time) ([]model.TradeDeal, error)
	SaveAll(ctx context.Context, deals []model.TradeDeal) error
}

// WatchRepository handles the ticker watch list.
type WatchRepository interface {
	ListEnabled(ctx context.Context) ([]model.WatchStock, error)
}

// RuleRepository handles strategy rule bindings.
type RuleRepository interface {
	ListEnabled(ctx context.Context) ([]model.TradeRule, error)
}

// AccountRepository handles brokerage accounts and their sessions.
type AccountRepository interface {
	ListEnabled(ctx context.Context) ([]model.TradeAccount, error)
	Update(ctx context.Context, acct *model.TradeAccount) error
	// SeedIfEmpty inserts the given accounts when the table has no rows.
	SeedIfEmpty(ctx context.Context, accts []model.TradeAccount) error
}

// ExecutionRepository is the execution store of the task dispatcher.
type ExecutionRepository interface {
	// ListPending returns pending executions of the given kinds in creation order.
	ListPending(ctx context.Context, kinds ...model.TaskKind) ([]model.TaskExecution, error)
	Create(ctx context.Context, rec *model.TaskExecution) error
	Update(ctx context.Context, rec *model.TaskExecution) error
	ListRecent(ctx context.Context, kind model.TaskKind, limit int) ([]model.TaskExecution, error)
}

// HolidayRepository handles the business-calendar holiday table.
type HolidayRepository interface {
	ListYear(ctx context.Context, year int) ([]model.Holiday, error)
	SaveAll(ctx context.Context, rows []model.Holiday) error
}
