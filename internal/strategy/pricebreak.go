package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"stockd/internal/logger"
	"stockd/internal/market"
	"stockd/internal/notify"
	"stockd/internal/store/model"

	"github.com/shopspring/decimal"
)

// PriceBreak notifies when the watched stock closes outside a configured
// price band. Params: {"high": "12.50", "low": "9.80"}; either bound may be
// omitted.
type PriceBreak struct {
	Market   market.Source
	Notifier notify.TextNotifier
}

type priceBreakParams struct {
	High decimal.Decimal `json:"high"`
	Low  decimal.Decimal `json:"low"`
}

func (PriceBreak) Name() string { return "priceBreak" }

func (h *PriceBreak) Handle(ctx context.Context, rule model.TradeRule) error {
	var params priceBreakParams
	if len(rule.Params) > 0 {
		if err := json.Unmarshal(rule.Params, &params); err != nil {
			return fmt.Errorf("rule %d params invalid: %w", rule.ID, err)
		}
	}
	quotes, err := h.Market.GetQuotes(ctx, []string{market.GetFullCode(rule.StockCode)})
	if err != nil {
		return err
	}
	if len(quotes) == 0 {
		logger.Debugf("priceBreak: no quote for %s", rule.StockCode)
		return nil
	}
	closing := quotes[0].ClosingPrice
	switch {
	case !params.High.IsZero() && closing.GreaterThanOrEqual(params.High):
		return h.Notifier.SendText(fmt.Sprintf("%s 上破 %s, 现价 %s",
			rule.StockCode, params.High.StringFixed(3), closing.StringFixed(3)))
	case !params.Low.IsZero() && closing.LessThanOrEqual(params.Low):
		return h.Notifier.SendText(fmt.Sprintf("%s 下破 %s, 现价 %s",
			rule.StockCode, params.Low.StringFixed(3), closing.StringFixed(3)))
	}
	return nil
}
