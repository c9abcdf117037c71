package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"stockd/internal/config"
	"stockd/internal/store/model"

	"github.com/stretchr/testify/assert"
)

func TestCrawlRosterPages(t *testing.T) {
	pages := []string{
		`{"data":{"total":3,"diff":[
			{"f12":"600000","f13":1,"f14":"浦发银行"},
			{"f12":"000001","f13":0,"f14":" 平安银行 "}
		]}}`,
		`{"data":{"total":3,"diff":[
			{"f12":"300750","f13":0,"f14":"宁德时代"}
		]}}`,
		`{"data":{"total":3,"diff":[]}}`,
	}
	var served int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, fmt.Sprintf("%d", served+1), r.URL.Query().Get("pn"))
		fmt.Fprint(w, pages[served])
		served++
	}))
	defer srv.Close()

	c := NewClient(config.CrawlerConfig{RosterURL: srv.URL})
	stocks, err := c.CrawlRoster(context.Background())
	assert.NoError(t, err)
	if assert.Len(t, stocks, 2) {
		assert.Equal(t, "600000", stocks[0].Code)
		assert.Equal(t, "sh", stocks[0].Exchange)
		assert.Equal(t, model.StockTypeStock, stocks[0].Type)
		assert.Equal(t, "平安银行", stocks[1].Name, "names are trimmed")
		assert.Equal(t, "sz", stocks[1].Exchange)
	}
	assert.Equal(t, 1, served, "3 rows fit one 5000-row page")
}

func TestGetQuotesParsesAndMarksSuspended(t *testing.T) {
	payload := `{"data":{"diff":[
		{"f12":"600000","f13":1,"f2":10.25,"f5":120000,"f6":1230000.5,"f15":10.30,"f16":10.01,"f17":10.05,"f18":10.00},
		{"f12":"300750","f13":0,"f2":"-","f5":"-","f6":"-","f15":"-","f16":"-","f17":"-","f18":"-"}
	]}}`
	var gotSecids string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecids = r.URL.Query().Get("secids")
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	c := NewClient(config.CrawlerConfig{QuoteURL: srv.URL})
	quotes, err := c.GetQuotes(context.Background(), []string{"sh600000", "sz300750"})
	assert.NoError(t, err)
	assert.Equal(t, "1.600000,0.300750", gotSecids)

	if assert.Len(t, quotes, 2) {
		q := quotes[0]
		assert.Equal(t, "sh600000", q.Code)
		assert.Equal(t, "10.25", q.ClosingPrice.String())
		assert.Equal(t, "10", q.PreClosingPrice.String())
		assert.Equal(t, int64(120000), q.TradingVolume)

		// Suspended rows come back zeroed, to be dropped by the quote task.
		s := quotes[1]
		assert.Equal(t, "sz300750", s.Code)
		assert.True(t, s.ClosingPrice.IsZero())
		assert.Equal(t, int64(0), s.TradingVolume)
	}
}

func TestGetQuotesEmptyInput(t *testing.T) {
	c := NewClient(config.CrawlerConfig{})
	quotes, err := c.GetQuotes(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, quotes)
}
