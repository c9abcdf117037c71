package task

import (
	"context"
	"time"

	"stockd/internal/broker"
	"stockd/internal/market"
	"stockd/internal/store"
	"stockd/internal/store/model"

	"github.com/stretchr/testify/mock"
)

type MockSource struct {
	mock.Mock
}

var _ market.Source = (*MockSource)(nil)

func (m *MockSource) CrawlRoster(ctx context.Context) ([]model.Stock, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Stock), args.Error(1)
}

func (m *MockSource) GetQuotes(ctx context.Context, fullCodes []string) ([]model.DailyQuote, error) {
	args := m.Called(ctx, fullCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DailyQuote), args.Error(1)
}

type MockBrokerAPI struct {
	mock.Mock
}

var _ broker.API = (*MockBrokerAPI)(nil)

func (m *MockBrokerAPI) Authenticate(ctx context.Context, req broker.AuthRequest) (*broker.Result[broker.AuthData], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*broker.Result[broker.AuthData]), args.Error(1)
}

func (m *MockBrokerAPI) GetAssets(ctx context.Context, s broker.Session) (*broker.Result[broker.AssetData], error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*broker.Result[broker.AssetData]), args.Error(1)
}

func (m *MockBrokerAPI) GetDeals(ctx context.Context, s broker.Session) (*broker.Result[broker.DealItem], error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*broker.Result[broker.DealItem]), args.Error(1)
}

func (m *MockBrokerAPI) CrGetDeals(ctx context.Context, s broker.Session) (*broker.Result[broker.CrDealItem], error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*broker.Result[broker.CrDealItem]), args.Error(1)
}

func (m *MockBrokerAPI) GetOrders(ctx context.Context, s broker.Session) (*broker.Result[broker.OrderItem], error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*broker.Result[broker.OrderItem]), args.Error(1)
}

func (m *MockBrokerAPI) CrGetOrders(ctx context.Context, s broker.Session) (*broker.Result[broker.OrderItem], error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*broker.Result[broker.OrderItem]), args.Error(1)
}

func (m *MockBrokerAPI) GetCanBuyNewStock(ctx context.Context, s broker.Session) (*broker.Result[broker.CanBuyData], error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*broker.Result[broker.CanBuyData]), args.Error(1)
}

func (m *MockBrokerAPI) CrGetCanBuyNewStock(ctx context.Context, s broker.Session) (*broker.Result[broker.CrCanBuyData], error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*broker.Result[broker.CrCanBuyData]), args.Error(1)
}

func (m *MockBrokerAPI) GetConvertibleBonds(ctx context.Context, s broker.Session) (*broker.Result[broker.ConvertibleBond], error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*broker.Result[broker.ConvertibleBond]), args.Error(1)
}

func (m *MockBrokerAPI) CrGetConvertibleBonds(ctx context.Context, s broker.Session) (*broker.Result[broker.ConvertibleBond], error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*broker.Result[broker.ConvertibleBond]), args.Error(1)
}

func (m *MockBrokerAPI) SubmitBatch(ctx context.Context, s broker.Session, items []broker.SubmitItem) (*broker.Result[broker.SubmitEcho], error) {
	args := m.Called(ctx, s, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*broker.Result[broker.SubmitEcho]), args.Error(1)
}

func (m *MockBrokerAPI) CrSubmitBatch(ctx context.Context, s broker.Session, items []broker.SubmitItem) (*broker.Result[broker.SubmitEcho], error) {
	args := m.Called(ctx, s, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*broker.Result[broker.SubmitEcho]), args.Error(1)
}

// fakeNotifier records every sent text.
type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) SendText(text string) error {
	f.sent = append(f.sent, text)
	return nil
}

// memStore is an in-memory store.Store for handler tests.
type memStore struct {
	stocks   memStocks
	quotes   memQuotes
	deals    memDeals
	watches  memWatches
	rules    memRules
	accounts memAccounts
	execs    memExecs
	holidays memHolidays
}

var _ store.Store = (*memStore)(nil)

func (m *memStore) Stocks() store.StockRepository         { return &m.stocks }
func (m *memStore) Quotes() store.QuoteRepository         { return &m.quotes }
func (m *memStore) Deals() store.DealRepository           { return &m.deals }
func (m *memStore) Watches() store.WatchRepository        { return &m.watches }
func (m *memStore) Rules() store.RuleRepository           { return &m.rules }
func (m *memStore) Accounts() store.AccountRepository     { return &m.accounts }
func (m *memStore) Executions() store.ExecutionRepository { return &m.execs }
func (m *memStore) Holidays() store.HolidayRepository     { return &m.holidays }
func (m *memStore) Close() error                          { return nil }

type memStocks struct {
	list []model.Stock

	savedInsert []model.Stock
	savedUpdate []model.Stock
	savedLogs   []model.StockLog
}

func (r *memStocks) ListAll(context.Context) ([]model.Stock, error) { return r.list, nil }

func (r *memStocks) FindByCode(_ context.Context, code string) (*model.Stock, error) {
	for i := range r.list {
		if r.list[i].Code == code {
			return &r.list[i], nil
		}
	}
	return nil, nil
}

func (r *memStocks) SaveRosterChanges(_ context.Context, insert, update []model.Stock, logs []model.StockLog) error {
	r.savedInsert = append(r.savedInsert, insert...)
	r.savedUpdate = append(r.savedUpdate, update...)
	r.savedLogs = append(r.savedLogs, logs...)
	return nil
}

type memQuotes struct {
	saved []model.DailyQuote
	codes []string
}

func (r *memQuotes) SaveAll(_ context.Context, quotes []model.DailyQuote) error {
	r.saved = append(r.saved, quotes...)
	return nil
}

func (r *memQuotes) ListCodesByDate(context.Context, time.Time) ([]string, error) {
	return r.codes, nil
}

type memDeals struct {
	rows []model.TradeDeal
}

func (r *memDeals) ListByDate(context.Context, time.Time) ([]model.TradeDeal, error) {
	return r.rows, nil
}

func (r *memDeals) SaveAll(_ context.Context, deals []model.TradeDeal) error {
	r.rows = append(r.rows, deals...)
	return nil
}

type memWatches struct {
	list []model.WatchStock
}

func (r *memWatches) ListEnabled(context.Context) ([]model.WatchStock, error) { return r.list, nil }

type memRules struct {
	list []model.TradeRule
}

func (r *memRules) ListEnabled(context.Context) ([]model.TradeRule, error) { return r.list, nil }

type memAccounts struct {
	list    []model.TradeAccount
	updated []model.TradeAccount
}

func (r *memAccounts) ListEnabled(context.Context) ([]model.TradeAccount, error) {
	return r.list, nil
}

func (r *memAccounts) Update(_ context.Context, acct *model.TradeAccount) error {
	r.updated = append(r.updated, *acct)
	return nil
}

func (r *memAccounts) SeedIfEmpty(_ context.Context, accts []model.TradeAccount) error {
	if len(r.list) == 0 {
		r.list = accts
	}
	return nil
}

type memExecs struct {
	rows   []model.TaskExecution
	nextID int64
}

func (r *memExecs) ListPending(_ context.Context, kinds ...model.TaskKind) ([]model.TaskExecution, error) {
	var out []model.TaskExecution
	for _, rec := range r.rows {
		if rec.State != model.TaskStatePending {
			continue
		}
		for _, k := range kinds {
			if rec.TaskID == k {
				out = append(out, rec)
				break
			}
		}
	}
	return out, nil
}

func (r *memExecs) Create(_ context.Context, rec *model.TaskExecution) error {
	r.nextID++
	rec.ID = r.nextID
	r.rows = append(r.rows, *rec)
	return nil
}

func (r *memExecs) Update(_ context.Context, rec *model.TaskExecution) error {
	for i := range r.rows {
		if r.rows[i].ID == rec.ID {
			r.rows[i] = *rec
			return nil
		}
	}
	r.rows = append(r.rows, *rec)
	return nil
}

func (r *memExecs) ListRecent(_ context.Context, kind model.TaskKind, limit int) ([]model.TaskExecution, error) {
	var out []model.TaskExecution
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.rows[i].TaskID == kind {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

func (r *memExecs) byID(id int64) *model.TaskExecution {
	for i := range r.rows {
		if r.rows[i].ID == id {
			return &r.rows[i]
		}
	}
	return nil
}

type memHolidays struct {
	rows []model.Holiday
}

func (r *memHolidays) ListYear(_ context.Context, year int) ([]model.Holiday, error) {
	var out []model.Holiday
	for _, h := range r.rows {
		if h.Year == year {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *memHolidays) SaveAll(_ context.Context, rows []model.Holiday) error {
	r.rows = append(r.rows, rows...)
	return nil
}
