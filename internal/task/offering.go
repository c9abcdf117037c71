package task

import (
	"context"
	"fmt"

	"stockd/internal/broker"
	"stockd/internal/logger"
	"stockd/internal/pkg/convert"
	"stockd/internal/store/model"
)

// offeringChannel abstracts over the normal and margin subscription APIs so
// one candidate-building pass serves both.
type offeringChannel interface {
	Name() string
	CanBuy(ctx context.Context, s broker.Session) (stocks []broker.NewStockItem, quota map[string]int, err error)
	ConvertibleBonds(ctx context.Context, s broker.Session) ([]broker.ConvertibleBond, error)
	Orders(ctx context.Context, s broker.Session) ([]broker.OrderItem, error)
	Submit(ctx context.Context, s broker.Session, items []broker.SubmitItem) (string, error)
}

// SkipReason records a feature that was skipped for an account and why, so
// partial failures stay visible instead of silently swallowed.
type SkipReason struct {
	Feature string
	Cause   string
}

// AccountResult is the outcome of one account on one channel.
type AccountResult struct {
	Account   string
	Channel   string
	Submitted []broker.SubmitItem
	Skipped   []SkipReason
}

// runApplyNewStock subscribes every enabled account to today's offerings,
// on the normal channel and, when enabled, the margin channel.
func (s *Service) runApplyNewStock(ctx context.Context) error {
	accounts, err := s.store.Accounts().ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("loading accounts failed: %w", err)
	}
	channels := []offeringChannel{normalChannel{api: s.api}}
	if s.features.Margin {
		channels = append(channels, marginChannel{api: s.api})
	}
	for _, acct := range accounts {
		for _, ch := range channels {
			res := s.applyNewStock(ctx, acct, ch)
			for _, skip := range res.Skipped {
				logger.Warnf("apply new stock account=%s channel=%s skipped %s: %s",
					res.Account, res.Channel, skip.Feature, skip.Cause)
			}
		}
	}
	return nil
}

// applyNewStock builds and submits one batch subscription order. Upstream
// query failures skip the affected feature with a warning; they never abort
// the other account or channel.
func (s *Service) applyNewStock(ctx context.Context, acct model.TradeAccount, ch offeringChannel) AccountResult {
	res := AccountResult{Account: acct.Account, Channel: ch.Name()}
	sess := broker.Session{Cookie: acct.Cookie, ValidateKey: acct.ValidateKey}

	stocks, quota, err := ch.CanBuy(ctx, sess)
	if err != nil {
		res.Skipped = append(res.Skipped, SkipReason{Feature: "newStock", Cause: err.Error()})
		s.warn(fmt.Sprintf("get new stock list (%s): %s", ch.Name(), err))
		return res
	}

	var candidates []broker.SubmitItem
	for _, stock := range stocks {
		marketQuota, ok := quota[stock.Market]
		if !ok {
			continue
		}
		amount := min(convert.ToInt(stock.Ksgsx), marketQuota)
		candidates = append(candidates, broker.SubmitItem{
			StockCode: stock.Sgdm,
			StockName: stock.Zqmc,
			Price:     stock.Fxj,
			Amount:    amount,
			Market:    stock.Market,
			TradeType: broker.TradeTypeBuy,
		})
	}

	if s.features.ConvertibleBond {
		bonds, err := ch.ConvertibleBonds(ctx, sess)
		if err != nil {
			res.Skipped = append(res.Skipped, SkipReason{Feature: "convertibleBond", Cause: err.Error()})
			s.warn(fmt.Sprintf("get convertible bond (%s): %s", ch.Name(), err))
		} else {
			today := s.today()
			for _, bond := range bonds {
				if !bond.IsSubscribableOn(today) {
					continue
				}
				candidates = append(candidates, broker.SubmitItem{
					StockCode: bond.SubCode,
					StockName: bond.BondName,
					Price:     bond.ParValue,
					Amount:    convert.ToInt(bond.LimitBuyVol),
					Market:    bond.Market,
					TradeType: broker.TradeTypeBuy,
				})
			}
		}
	}

	// Exclude codes that already sit in an "already submitted" order, so a
	// repeated invocation cannot double-subscribe.
	orders, err := ch.Orders(ctx, sess)
	if err != nil {
		res.Skipped = append(res.Skipped, SkipReason{Feature: "orderFilter", Cause: err.Error()})
		s.warn(fmt.Sprintf("get orders (%s): %s", ch.Name(), err))
	} else {
		submitted := make(map[string]bool)
		for _, o := range orders {
			if o.Wtzt == broker.OrderStatusSubmitted {
				submitted[o.Zqdm] = true
			}
		}
		kept := candidates[:0]
		for _, c := range candidates {
			if !submitted[c.StockCode] {
				kept = append(kept, c)
			}
		}
		candidates = kept
	}

	if len(candidates) == 0 {
		return res
	}

	msg, err := ch.Submit(ctx, sess, candidates)
	if err != nil {
		s.warn(fmt.Sprintf("%s apply new stock: %s", ch.Name(), err))
		res.Skipped = append(res.Skipped, SkipReason{Feature: "submit", Cause: err.Error()})
		return res
	}
	res.Submitted = candidates
	logger.Infof("apply new stock account=%s channel=%s submitted=%d: %s",
		acct.Account, ch.Name(), len(candidates), msg)
	s.warn(fmt.Sprintf("%s apply new stock: %s", ch.Name(), msg))
	return res
}

// warn sends a best-effort notification.
func (s *Service) warn(text string) {
	if err := s.notifier.SendText(text); err != nil {
		logger.Warnf("notification failed: %v", err)
	}
}

type normalChannel struct {
	api broker.API
}

func (normalChannel) Name() string { return "normal" }

func (c normalChannel) CanBuy(ctx context.Context, s broker.Session) ([]broker.NewStockItem, map[string]int, error) {
	res, err := c.api.GetCanBuyNewStock(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	if !res.Success() {
		return nil, nil, fmt.Errorf("%s", res.Message)
	}
	data, ok := res.First()
	if !ok {
		return nil, nil, nil
	}
	quota := make(map[string]int, len(data.NewQuota))
	for _, q := range data.NewQuota {
		quota[q.Market] = convert.ToInt(q.Ksgsz)
	}
	return data.NewStockList, quota, nil
}

func (c normalChannel) ConvertibleBonds(ctx context.Context, s broker.Session) ([]broker.ConvertibleBond, error) {
	res, err := c.api.GetConvertibleBonds(ctx, s)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, fmt.Errorf("%s", res.Message)
	}
	return res.Data, nil
}

func (c normalChannel) Orders(ctx context.Context, s broker.Session) ([]broker.OrderItem, error) {
	res, err := c.api.GetOrders(ctx, s)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, fmt.Errorf("%s", res.Message)
	}
	return res.Data, nil
}

func (c normalChannel) Submit(ctx context.Context, s broker.Session, items []broker.SubmitItem) (string, error) {
	res, err := c.api.SubmitBatch(ctx, s, items)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", fmt.Errorf("%s", res.Message)
	}
	return res.Message, nil
}

type marginChannel struct {
	api broker.API
}

func (marginChannel) Name() string { return "cr" }

func (c marginChannel) CanBuy(ctx context.Context, s broker.Session) ([]broker.NewStockItem, map[string]int, error) {
	res, err := c.api.CrGetCanBuyNewStock(ctx, s)
	if err != nil {
		return nil, nil, err
	}
	if !res.Success() {
		return nil, nil, fmt.Errorf("%s", res.Message)
	}
	data, ok := res.First()
	if !ok {
		return nil, nil, nil
	}
	quota := make(map[string]int, len(data.NewQuota))
	for _, q := range data.NewQuota {
		quota[q.Market] = convert.ToInt(q.CustQuota)
	}
	return data.NewStockList, quota, nil
}

func (c marginChannel) ConvertibleBonds(ctx context.Context, s broker.Session) ([]broker.ConvertibleBond, error) {
	res, err := c.api.CrGetConvertibleBonds(ctx, s)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, fmt.Errorf("%s", res.Message)
	}
	return res.Data, nil
}

func (c marginChannel) Orders(ctx context.Context, s broker.Session) ([]broker.OrderItem, error) {
	res, err := c.api.CrGetOrders(ctx, s)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, fmt.Errorf("%s", res.Message)
	}
	return res.Data, nil
}

func (c marginChannel) Submit(ctx context.Context, s broker.Session, items []broker.SubmitItem) (string, error) {
	res, err := c.api.CrSubmitBatch(ctx, s, items)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", fmt.Errorf("%s", res.Message)
	}
	return res.Message, nil
}
