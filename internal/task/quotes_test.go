package task

import (
	"context"
	"testing"
	"time"

	"stockd/internal/store/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func validQuote(code string, date time.Time) model.DailyQuote {
	return model.DailyQuote{
		Code:          code,
		Date:          date,
		OpeningPrice:  decimal.RequireFromString("10.00"),
		ClosingPrice:  decimal.RequireFromString("10.10"),
		TradingVolume: 120000,
		TradingValue:  decimal.RequireFromString("1212000.00"),
	}
}

func TestUpdateOfDailyQuoteSelectsPendingInstruments(t *testing.T) {
	st := &memStore{}
	st.stocks.list = []model.Stock{
		{Code: "600000", Exchange: "sh", Type: model.StockTypeStock},          // pending A share
		{Code: "000001", Exchange: "sh", Type: model.StockTypeIndex},         // pending index
		{Code: "300001", Exchange: "sz", Type: model.StockTypeStock},         // already stored
		{Code: "900901", Exchange: "sh", Type: model.StockTypeStock},         // B share, skipped
		{Code: "600999", Exchange: "sh", Type: model.StockTypeStock, State: 1}, // delisted
	}
	st.quotes.codes = []string{"sz300001"}

	now := time.Now()
	src := &MockSource{}
	src.On("GetQuotes", mock.Anything, []string{"sh600000", "sh000001"}).Return([]model.DailyQuote{
		validQuote("sh600000", now),
		validQuote("sh000001", now),
	}, nil)

	svc := NewService(Deps{Store: st, Market: src})
	assert.NoError(t, svc.runUpdateOfDailyQuote(context.Background()))
	assert.Len(t, st.quotes.saved, 2)
	src.AssertExpectations(t)
}

func TestUpdateOfDailyQuoteDropsInvalidRows(t *testing.T) {
	st := &memStore{}
	st.stocks.list = []model.Stock{
		{Code: "600000", Exchange: "sh", Type: model.StockTypeStock},
		{Code: "600001", Exchange: "sh", Type: model.StockTypeStock},
		{Code: "600002", Exchange: "sh", Type: model.StockTypeStock},
	}

	now := time.Now()
	suspended := validQuote("sh600001", now)
	suspended.TradingVolume = 0
	stale := validQuote("sh600002", now.AddDate(0, 0, -1))

	src := &MockSource{}
	src.On("GetQuotes", mock.Anything, mock.Anything).Return([]model.DailyQuote{
		validQuote("sh600000", now),
		suspended,
		stale,
	}, nil)

	svc := NewService(Deps{Store: st, Market: src})
	assert.NoError(t, svc.runUpdateOfDailyQuote(context.Background()))
	if assert.Len(t, st.quotes.saved, 1) {
		assert.Equal(t, "sh600000", st.quotes.saved[0].Code)
	}
}
