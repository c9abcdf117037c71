package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockd/internal/config"
)

// ErrUnauthorized marks a rejected session; the heartbeat reacts to it by
// dispatching the auto-login task during trading hours.
var ErrUnauthorized = errors.New("broker: session unauthorized")

// API is the brokerage collaborator surface the tasks depend on.
type API interface {
	Authenticate(ctx context.Context, req AuthRequest) (*Result[AuthData], error)
	GetAssets(ctx context.Context, s Session) (*Result[AssetData], error)

	GetDeals(ctx context.Context, s Session) (*Result[DealItem], error)
	CrGetDeals(ctx context.Context, s Session) (*Result[CrDealItem], error)

	GetOrders(ctx context.Context, s Session) (*Result[OrderItem], error)
	CrGetOrders(ctx context.Context, s Session) (*Result[OrderItem], error)

	GetCanBuyNewStock(ctx context.Context, s Session) (*Result[CanBuyData], error)
	CrGetCanBuyNewStock(ctx context.Context, s Session) (*Result[CrCanBuyData], error)

	GetConvertibleBonds(ctx context.Context, s Session) (*Result[ConvertibleBond], error)
	CrGetConvertibleBonds(ctx context.Context, s Session) (*Result[ConvertibleBond], error)

	SubmitBatch(ctx context.Context, s Session, items []SubmitItem) (*Result[SubmitEcho], error)
	CrSubmitBatch(ctx context.Context, s Session, items []SubmitItem) (*Result[SubmitEcho], error)
}

// Client talks to the brokerage web trade API.
type Client struct {
	baseURL    *url.URL
	captchaURL string
	httpClient *http.Client
	cb         *breaker
}

var _ API = (*Client)(nil)

func NewClient(cfg config.BrokerConfig) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("broker.base_url cannot be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing broker.base_url failed: %w", err)
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    parsed,
		captchaURL: strings.TrimSpace(cfg.CaptchaURL),
		httpClient: &http.Client{
			Timeout: timeout,
			// The trade API answers an expired session with a redirect to the
			// login page; surface that instead of following it.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		cb: newBreaker("trade-api", cfg.BreakerThreshold, time.Duration(cfg.BreakerCooldown)*time.Second),
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// CaptchaURL returns the captcha image URL for a correlation token.
func (c *Client) CaptchaURL(randNumber string) string {
	return c.captchaURL + randNumber
}

func (c *Client) Authenticate(ctx context.Context, req AuthRequest) (*Result[AuthData], error) {
	form := url.Values{
		"userId":       {req.UserID},
		"password":     {req.Password},
		"identifyCode": {req.IdentifyCode},
		"randNumber":   {req.RandNumber},
		"duration":     {"1800"},
		"type":         {"Z"},
	}
	return doPost[AuthData](c, ctx, "/Login/Authentication", Session{}, form)
}

func (c *Client) GetAssets(ctx context.Context, s Session) (*Result[AssetData], error) {
	return doPost[AssetData](c, ctx, "/Com/queryAssetAndPositionV1", s, url.Values{})
}

func (c *Client) GetDeals(ctx context.Context, s Session) (*Result[DealItem], error) {
	return doPost[DealItem](c, ctx, "/Search/GetDealData", s, url.Values{"qqhs": {"100"}})
}

func (c *Client) CrGetDeals(ctx context.Context, s Session) (*Result[CrDealItem], error) {
	return doPost[CrDealItem](c, ctx, "/MarginSearch/GetDealData", s, url.Values{"qqhs": {"100"}})
}

func (c *Client) GetOrders(ctx context.Context, s Session) (*Result[OrderItem], error) {
	return doPost[OrderItem](c, ctx, "/Search/GetOrdersData", s, url.Values{"qqhs": {"100"}})
}

func (c *Client) CrGetOrders(ctx context.Context, s Session) (*Result[OrderItem], error) {
	return doPost[OrderItem](c, ctx, "/MarginSearch/GetOrdersData", s, url.Values{"qqhs": {"100"}})
}

func (c *Client) GetCanBuyNewStock(ctx context.Context, s Session) (*Result[CanBuyData], error) {
	return doPost[CanBuyData](c, ctx, "/Trade/GetCanBuyNewStockListV3", s, url.Values{})
}

func (c *Client) CrGetCanBuyNewStock(ctx context.Context, s Session) (*Result[CrCanBuyData], error) {
	return doPost[CrCanBuyData](c, ctx, "/MarginTrade/GetCanBuyNewStockListV3", s, url.Values{})
}

func (c *Client) GetConvertibleBonds(ctx context.Context, s Session) (*Result[ConvertibleBond], error) {
	return doPost[ConvertibleBond](c, ctx, "/Trade/GetConvertibleBondListV2", s, url.Values{})
}

func (c *Client) CrGetConvertibleBonds(ctx context.Context, s Session) (*Result[ConvertibleBond], error) {
	return doPost[ConvertibleBond](c, ctx, "/MarginTrade/GetConvertibleBondListV2", s, url.Values{})
}

func (c *Client) SubmitBatch(ctx context.Context, s Session, items []SubmitItem) (*Result[SubmitEcho], error) {
	return doPost[SubmitEcho](c, ctx, "/Trade/SubmitBatTradeV2", s, batchForm(items))
}

func (c *Client) CrSubmitBatch(ctx context.Context, s Session, items []SubmitItem) (*Result[SubmitEcho], error) {
	return doPost[SubmitEcho](c, ctx, "/MarginTrade/SubmitBatTradeV2", s, batchForm(items))
}

func batchForm(items []SubmitItem) url.Values {
	payload, _ := json.Marshal(items)
	return url.Values{"jsonSubmitData": {string(payload)}}
}

// doPost is the single transport path: form POST with the session cookie,
// validatekey in the query, JSON envelope decode, breaker accounting.
// Go methods cannot be generic, hence the free function.
func doPost[T any](c *Client, ctx context.Context, path string, s Session, form url.Values) (*Result[T], error) {
	if !c.cb.Allow() {
		return nil, fmt.Errorf("broker call %s rejected: circuit open", path)
	}
	target := *c.baseURL
	target.Path = strings.TrimRight(target.Path, "/") + path
	if s.ValidateKey != "" {
		q := target.Query()
		q.Set("validatekey", s.ValidateKey)
		target.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if s.Cookie != "" {
		req.Header.Set("Cookie", s.Cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.cb.RecordFailure()
		return nil, fmt.Errorf("broker call %s failed: %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		c.cb.RecordFailure()
		return nil, fmt.Errorf("broker call %s read failed: %w", path, err)
	}
	if resp.StatusCode == http.StatusFound || resp.StatusCode == http.StatusUnauthorized {
		c.cb.RecordSuccess() // the endpoint is alive, the session is not
		return nil, fmt.Errorf("broker call %s: %w", path, ErrUnauthorized)
	}
	if resp.StatusCode/100 != 2 {
		c.cb.RecordFailure()
		return nil, fmt.Errorf("broker call %s status=%d", path, resp.StatusCode)
	}
	var out Result[T]
	if err := json.Unmarshal(body, &out); err != nil {
		c.cb.RecordFailure()
		return nil, fmt.Errorf("broker call %s decode failed: %w", path, err)
	}
	c.cb.RecordSuccess()
	if strings.Contains(out.Message, "登录") || strings.Contains(out.Message, "超时") {
		return nil, fmt.Errorf("broker call %s: %s: %w", path, out.Message, ErrUnauthorized)
	}
	return &out, nil
}
