package task

import (
	"context"
	"fmt"
	"time"

	"stockd/internal/logger"
	"stockd/internal/market"
	"stockd/internal/store/model"

	"github.com/shopspring/decimal"
)

// quoteBatchSize caps codes per crawl request; the quote endpoint truncates
// longer lists silently.
const quoteBatchSize = 500

// runUpdateOfDailyQuote stores today's snapshot for every valid A share and
// index that does not have one yet. Runs several times after the close, so
// instruments whose quotes arrived late (or were invalid earlier) are
// picked up by the next slot.
func (s *Service) runUpdateOfDailyQuote(ctx context.Context) error {
	stocks, err := s.store.Stocks().ListAll(ctx)
	if err != nil {
		return fmt.Errorf("loading roster failed: %w", err)
	}
	today := s.today()
	done, err := s.store.Quotes().ListCodesByDate(ctx, today)
	if err != nil {
		return fmt.Errorf("loading stored quote codes failed: %w", err)
	}
	doneSet := make(map[string]bool, len(done))
	for _, c := range done {
		doneSet[c] = true
	}

	var pending []string
	for _, st := range stocks {
		if !st.IsValid() || (!st.IsIndex() && !market.IsAShare(st.Code)) {
			continue
		}
		if fc := st.FullCode(); !doneSet[fc] {
			pending = append(pending, fc)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	var saved int
	for start := 0; start < len(pending); start += quoteBatchSize {
		end := start + quoteBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		quotes, err := s.market.GetQuotes(ctx, pending[start:end])
		if err != nil {
			return fmt.Errorf("fetching quote batch failed: %w", err)
		}
		valid := filterInvalidQuotes(quotes, today)
		if err := s.store.Quotes().SaveAll(ctx, valid); err != nil {
			return fmt.Errorf("saving quotes failed: %w", err)
		}
		saved += len(valid)
	}
	logger.Infof("quotes: %d pending, %d saved", len(pending), saved)
	return nil
}

// filterInvalidQuotes drops suspended or stale rows: partial data must not
// end up in the daily table.
func filterInvalidQuotes(quotes []model.DailyQuote, today time.Time) []model.DailyQuote {
	out := quotes[:0]
	for _, q := range quotes {
		if q.OpeningPrice.GreaterThan(decimal.Zero) &&
			q.TradingVolume > 0 &&
			q.TradingValue.GreaterThan(decimal.Zero) &&
			sameDay(q.Date, today) {
			out = append(out, q)
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
