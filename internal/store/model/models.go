package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TaskKind identifies a scheduled task category. Values are stable because
// they are persisted in task_executions rows created ahead of time.
type TaskKind int

const (
	TaskBeginOfYear        TaskKind = 1
	TaskBeginOfDay         TaskKind = 2
	TaskUpdateOfStock      TaskKind = 3
	TaskUpdateOfDailyQuote TaskKind = 4
	TaskTicker             TaskKind = 5
	TaskTradeTicker        TaskKind = 6
	TaskApplyNewStock      TaskKind = 7
	TaskAutoLogin          TaskKind = 8
)

var taskNames = map[TaskKind]string{
	TaskBeginOfYear:        "beginOfYear",
	TaskBeginOfDay:         "beginOfDay",
	TaskUpdateOfStock:      "updateOfStock",
	TaskUpdateOfDailyQuote: "updateOfDailyQuote",
	TaskTicker:             "ticker",
	TaskTradeTicker:        "tradeTicker",
	TaskApplyNewStock:      "applyNewStock",
	TaskAutoLogin:          "autoLogin",
}

func (k TaskKind) Name() string {
	if name, ok := taskNames[k]; ok {
		return name
	}
	return fmt.Sprintf("task-%d", int(k))
}

// AllTaskKinds returns every kind the engine knows how to run, in id order.
func AllTaskKinds() []TaskKind {
	return []TaskKind{
		TaskBeginOfYear, TaskBeginOfDay, TaskUpdateOfStock, TaskUpdateOfDailyQuote,
		TaskTicker, TaskTradeTicker, TaskApplyNewStock, TaskAutoLogin,
	}
}

// ParseTaskKind resolves a kind by name or numeric id. Returns 0 on no match.
func ParseTaskKind(s string) TaskKind {
	for k, name := range taskNames {
		if name == s {
			return k
		}
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err == nil {
		if _, ok := taskNames[TaskKind(n)]; ok {
			return TaskKind(n)
		}
	}
	return 0
}

type TaskState int

const (
	TaskStatePending TaskState = 0
	TaskStateRunning TaskState = 1
	TaskStateDone    TaskState = 2
	TaskStateFailed  TaskState = 3
)

// TaskExecution is one scheduled slot of a task. Rows are created ahead of
// time (by the trigger seeding or the admin API); the dispatcher only
// transitions Pending to a terminal state and fills timestamps and message.
type TaskExecution struct {
	ID           int64      `gorm:"column:id;primaryKey"`
	TaskID       TaskKind   `gorm:"column:task_id;index"`
	State        TaskState  `gorm:"column:state;index"`
	StartTime    *time.Time `gorm:"column:start_time"`
	CompleteTime *time.Time `gorm:"column:complete_time"`
	Message      string     `gorm:"column:message"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
}

func (TaskExecution) TableName() string { return "task_executions" }

type StockType int

const (
	StockTypeStock StockType = 1
	StockTypeIndex StockType = 2
	StockTypeOther StockType = 3
)

// Stock is one roster instrument. Code is the bare 6-digit code, Exchange is
// "sh" or "sz"; the market-prefixed form comes from FullCode.
type Stock struct {
	ID       int64     `gorm:"column:id;primaryKey"`
	Code     string    `gorm:"column:code;type:char(6);index"`
	Name     string    `gorm:"column:name"`
	Exchange string    `gorm:"column:exchange;type:varchar(4)"`
	Type     StockType `gorm:"column:stock_type"`
	State    int       `gorm:"column:state"` // 0 valid, 1 delisted
}

func (Stock) TableName() string { return "stock_info" }

func (s Stock) IsIndex() bool { return s.Type == StockTypeIndex }
func (s Stock) IsStock() bool { return s.Type == StockTypeStock }
func (s Stock) IsValid() bool { return s.State == 0 }

// FullCode returns the market-prefixed code, e.g. "sh600000".
func (s Stock) FullCode() string { return s.Exchange + s.Code }

type StockLogType int

const (
	StockLogNew    StockLogType = 1
	StockLogRename StockLogType = 2
)

// StockLog is an append-only record of a detected roster change.
type StockLog struct {
	ID       int64        `gorm:"column:id;primaryKey"`
	StockID  int64        `gorm:"column:stock_id;index"`
	Date     time.Time    `gorm:"column:log_date"`
	Type     StockLogType `gorm:"column:log_type"`
	OldValue string       `gorm:"column:old_value"`
	NewValue string       `gorm:"column:new_value"`
}

func (StockLog) TableName() string { return "stock_log" }

// DailyQuote is one quote snapshot for a full code on a trading day.
type DailyQuote struct {
	ID              int64           `gorm:"column:id;primaryKey"`
	Code            string          `gorm:"column:code;type:varchar(10);index:idx_daily_quote_code_date"`
	Date            time.Time       `gorm:"column:quote_date;index:idx_daily_quote_code_date"`
	OpeningPrice    decimal.Decimal `gorm:"column:opening_price;type:decimal(10,3)"`
	PreClosingPrice decimal.Decimal `gorm:"column:pre_closing_price;type:decimal(10,3)"`
	ClosingPrice    decimal.Decimal `gorm:"column:closing_price;type:decimal(10,3)"`
	HighestPrice    decimal.Decimal `gorm:"column:highest_price;type:decimal(10,3)"`
	LowestPrice     decimal.Decimal `gorm:"column:lowest_price;type:decimal(10,3)"`
	TradingVolume   int64           `gorm:"column:trading_volume"`
	TradingValue    decimal.Decimal `gorm:"column:trading_value;type:decimal(20,2)"`
}

func (DailyQuote) TableName() string { return "daily_quote" }

// WatchStock is a ticker watch-list entry; Rate is the alert threshold in
// percent (2.0 means alert once the move from the last alerted price
// reaches 2%).
type WatchStock struct {
	ID    int64           `gorm:"column:id;primaryKey"`
	Code  string          `gorm:"column:code;type:char(6);uniqueIndex"`
	Rate  decimal.Decimal `gorm:"column:rate;type:decimal(5,2)"`
	State int             `gorm:"column:state"` // 0 enabled
}

func (WatchStock) TableName() string { return "stock_selected" }

func (w WatchStock) IsEnabled() bool { return w.State == 0 }

// TradeDeal is one executed fill recorded from the brokerage deal feeds.
// DealCode is assigned by the brokerage and unique per trading day across
// the normal and margin channels.
type TradeDeal struct {
	ID          int64           `gorm:"column:id;primaryKey"`
	AccountID   int64           `gorm:"column:account_id;index"`
	DealCode    string          `gorm:"column:deal_code;index"`
	StockCode   string          `gorm:"column:stock_code;type:char(6)"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(10,3)"`
	Volume      int             `gorm:"column:volume"`
	TradeTime   time.Time       `gorm:"column:trade_time;index"`
	TradeType   string          `gorm:"column:trade_type;type:varchar(8)"`
	CrTradeType string          `gorm:"column:cr_trade_type;type:varchar(16)"` // empty for the normal channel
}

func (TradeDeal) TableName() string { return "trade_deal" }

// TradeRule binds a stock to a named strategy handler with JSON parameters.
type TradeRule struct {
	ID          int64          `gorm:"column:id;primaryKey"`
	StockCode   string         `gorm:"column:stock_code;type:char(6)"`
	HandlerName string         `gorm:"column:handler_name"`
	Params      datatypes.JSON `gorm:"column:params;type:TEXT"`
	State       int            `gorm:"column:state"` // 0 enabled
}

func (TradeRule) TableName() string { return "trade_rule" }

func (r TradeRule) IsEnabled() bool { return r.State == 0 }

// TradeAccount holds brokerage credentials and the live session pair
// (cookie + validate key) refreshed by the auto-login task.
type TradeAccount struct {
	ID          int64  `gorm:"column:id;primaryKey"`
	Account     string `gorm:"column:account;uniqueIndex"`
	Password    string `gorm:"column:password"`
	Cookie      string `gorm:"column:cookie;type:TEXT"`
	ValidateKey string `gorm:"column:validate_key"`
	State       int    `gorm:"column:state"` // 0 enabled
}

func (TradeAccount) TableName() string { return "trade_user" }

func (a TradeAccount) IsEnabled() bool { return a.State == 0 }

// Holiday is one non-trading date of a year (weekends are implicit).
type Holiday struct {
	ID   int64     `gorm:"column:id;primaryKey"`
	Date time.Time `gorm:"column:holiday;uniqueIndex"`
	Year int       `gorm:"column:year;index"`
}

func (Holiday) TableName() string { return "holiday_calendar" }
