package task

import (
	"context"
	"fmt"
	"strings"

	"stockd/internal/logger"
	"stockd/internal/market"
	"stockd/internal/store/model"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// runTicker compares fresh quotes of the watch list against the last
// alerted price of each code. The baseline ratchets: it only moves when an
// alert fires, so the next alert needs another full threshold move from the
// previously alerted price, not from a fixed reference.
func (s *Service) runTicker(ctx context.Context) error {
	watches, err := s.store.Watches().ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("loading watch list failed: %w", err)
	}
	if len(watches) == 0 {
		return nil
	}
	codes := make([]string, 0, len(watches))
	for _, w := range watches {
		codes = append(codes, market.GetFullCode(w.Code))
	}
	quotes, err := s.market.GetQuotes(ctx, codes)
	if err != nil {
		return fmt.Errorf("fetching watch quotes failed: %w", err)
	}

	var lines []string
	for _, w := range watches {
		quote := findQuote(quotes, w.Code)
		if quote == nil {
			continue
		}
		baseline, seen := s.alerts.Baseline(w.Code)
		if !seen {
			s.alerts.Rebase(w.Code, quote.PreClosingPrice)
			lines = append(lines, fmt.Sprintf("%s:当前价格:%.03f",
				s.stockName(ctx, w.Code), quote.ClosingPrice.InexactFloat64()))
			continue
		}
		rate := market.ChangeRate(quote.ClosingPrice, baseline).Mul(oneHundred).Abs()
		if rate.LessThan(w.Rate) {
			continue
		}
		s.alerts.Rebase(w.Code, quote.ClosingPrice)
		// The displayed change is the daily move against yesterday's close,
		// independent of the alert baseline.
		daily := market.ChangeRate(quote.ClosingPrice, quote.PreClosingPrice).Mul(oneHundred)
		lines = append(lines, fmt.Sprintf("%s:当前价格:%.03f, 涨幅%.02f%%",
			s.stockName(ctx, w.Code), quote.ClosingPrice.InexactFloat64(), daily.InexactFloat64()))
	}

	if len(lines) == 0 {
		return nil
	}
	if err := s.notifier.SendText(strings.Join(lines, "\n")); err != nil {
		logger.Warnf("ticker notification failed: %v", err)
	}
	return nil
}

func findQuote(quotes []model.DailyQuote, code string) *model.DailyQuote {
	for i := range quotes {
		if strings.Contains(quotes[i].Code, code) {
			return &quotes[i]
		}
	}
	return nil
}

func (s *Service) stockName(ctx context.Context, code string) string {
	st, err := s.store.Stocks().FindByCode(ctx, code)
	if err != nil || st == nil {
		return code
	}
	return st.Name
}
