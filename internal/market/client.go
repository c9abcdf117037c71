package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockd/internal/config"
	"stockd/internal/pkg/convert"
	"stockd/internal/store/model"

	"github.com/tidwall/gjson"
)

// Source is the market-data collaborator the tasks depend on.
type Source interface {
	// CrawlRoster fetches the full tradable-instrument roster.
	CrawlRoster(ctx context.Context) ([]model.Stock, error)
	// GetQuotes fetches current quote snapshots for market-prefixed codes.
	GetQuotes(ctx context.Context, fullCodes []string) ([]model.DailyQuote, error)
}

// Client crawls the EastMoney push2 endpoints.
type Client struct {
	rosterURL  string
	quoteURL   string
	httpClient *http.Client
	nowFn      func() time.Time
}

var _ Source = (*Client)(nil)

func NewClient(cfg config.CrawlerConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		rosterURL:  cfg.RosterURL,
		quoteURL:   cfg.QuoteURL,
		httpClient: &http.Client{Timeout: timeout},
		nowFn:      time.Now,
	}
}

// SetHTTPClient sets the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

const rosterPageSize = 5000

// CrawlRoster pages through the clist endpoint. m:0/m:1 covers both
// exchanges; t:6,t:80 etc. are the feed's A-share board filters.
func (c *Client) CrawlRoster(ctx context.Context) ([]model.Stock, error) {
	var out []model.Stock
	for page := 1; ; page++ {
		params := url.Values{
			"pn":     {fmt.Sprintf("%d", page)},
			"pz":     {fmt.Sprintf("%d", rosterPageSize)},
			"fltt":   {"2"},
			"fs":     {"m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23"},
			"fields": {"f12,f13,f14"},
		}
		body, err := c.get(ctx, c.rosterURL, params)
		if err != nil {
			return nil, fmt.Errorf("crawling roster page %d failed: %w", page, err)
		}
		diff := gjson.GetBytes(body, "data.diff")
		if !diff.Exists() || len(diff.Array()) == 0 {
			break
		}
		for _, row := range diff.Array() {
			code := row.Get("f12").String()
			if len(code) != 6 {
				continue
			}
			out = append(out, model.Stock{
				Code:     code,
				Name:     strings.TrimSpace(row.Get("f14").String()),
				Exchange: Exchange(code),
				Type:     model.StockTypeStock,
			})
		}
		total := gjson.GetBytes(body, "data.total").Int()
		if int64(page*rosterPageSize) >= total {
			break
		}
	}
	return out, nil
}

// GetQuotes fetches snapshots via the ulist endpoint. Suspended instruments
// report "-" prices and parse to zero; the quote task filters those out.
func (c *Client) GetQuotes(ctx context.Context, fullCodes []string) ([]model.DailyQuote, error) {
	if len(fullCodes) == 0 {
		return nil, nil
	}
	secids := make([]string, 0, len(fullCodes))
	for _, fc := range fullCodes {
		secids = append(secids, secID(fc))
	}
	params := url.Values{
		"fltt":   {"2"},
		"secids": {strings.Join(secids, ",")},
		"fields": {"f2,f5,f6,f12,f13,f15,f16,f17,f18"},
	}
	body, err := c.get(ctx, c.quoteURL, params)
	if err != nil {
		return nil, fmt.Errorf("fetching quotes failed: %w", err)
	}
	now := c.nowFn()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var out []model.DailyQuote
	for _, row := range gjson.GetBytes(body, "data.diff").Array() {
		code := row.Get("f12").String()
		if code == "" {
			continue
		}
		exchange := "sz"
		if row.Get("f13").Int() == 1 {
			exchange = "sh"
		}
		out = append(out, model.DailyQuote{
			Code:            exchange + code,
			Date:            today,
			ClosingPrice:    convert.ToDecimal(row.Get("f2").String()),
			HighestPrice:    convert.ToDecimal(row.Get("f15").String()),
			LowestPrice:     convert.ToDecimal(row.Get("f16").String()),
			OpeningPrice:    convert.ToDecimal(row.Get("f17").String()),
			PreClosingPrice: convert.ToDecimal(row.Get("f18").String()),
			TradingVolume:   convert.ToInt64(row.Get("f5").String()),
			TradingValue:    convert.ToDecimal(row.Get("f6").String()),
		})
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, base string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("status=%d", resp.StatusCode)
	}
	return body, nil
}

// secID converts "sh600000" to the feed's "1.600000" form.
func secID(fullCode string) string {
	if strings.HasPrefix(fullCode, "sh") {
		return "1." + fullCode[2:]
	}
	return "0." + strings.TrimPrefix(fullCode, "sz")
}
