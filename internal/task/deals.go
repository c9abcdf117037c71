package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockd/internal/broker"
	"stockd/internal/logger"
	"stockd/internal/pkg/convert"
	"stockd/internal/store/model"
)

// rawDeal is a channel-normalized fill row; crType is empty for the normal
// channel.
type rawDeal struct {
	item   broker.DealItem
	crType string
}

// reconcileDeals merges today's fills of both channels for one account,
// drops everything already recorded, persists the remainder and returns one
// notification line per new fill.
//
// Fail-closed: if either channel's query fails, nothing of this account is
// persisted or notified; half a picture would corrupt the dedup state.
func (s *Service) reconcileDeals(ctx context.Context, acct model.TradeAccount) ([]string, error) {
	sess := broker.Session{Cookie: acct.Cookie, ValidateKey: acct.ValidateKey}

	dealRes, err := s.api.GetDeals(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("deal query failed: %w", err)
	}
	if !dealRes.Success() {
		return nil, fmt.Errorf("deal query failed: %s", dealRes.Message)
	}
	crRes, err := s.api.CrGetDeals(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("cr deal query failed: %w", err)
	}
	if !crRes.Success() {
		return nil, fmt.Errorf("cr deal query failed: %s", crRes.Message)
	}

	// Each channel can echo the same logical fill more than once (partial
	// fill echoes); normalize within the channel before combining, so the
	// cross-channel dedup below never sees duplicate deal codes from one
	// side.
	var combined []rawDeal
	for _, it := range mergeDealItems(dealRes.Data) {
		combined = append(combined, rawDeal{item: it})
	}
	crItems := make([]broker.DealItem, 0, len(crRes.Data))
	crTypes := make(map[string]string, len(crRes.Data))
	for _, it := range crRes.Data {
		crItems = append(crItems, it.DealItem)
		crTypes[dealKey(it.DealItem)] = it.Xyjylx
	}
	for _, it := range mergeDealItems(crItems) {
		combined = append(combined, rawDeal{item: it, crType: crTypes[dealKey(it)]})
	}

	today := s.today()
	recorded, err := s.store.Deals().ListByDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("loading recorded deals failed: %w", err)
	}
	seen := make(map[string]bool, len(recorded))
	for _, d := range recorded {
		seen[d.DealCode] = true
	}

	var lines []string
	var toSave []model.TradeDeal
	for _, rd := range combined {
		if seen[rd.item.Cjbh] {
			continue
		}
		deal := model.TradeDeal{
			AccountID:   acct.ID,
			DealCode:    rd.item.Cjbh,
			StockCode:   rd.item.Zqdm,
			Price:       convert.ToDecimal(rd.item.Cjjg),
			Volume:      convert.ToInt(rd.item.Cjsl),
			TradeTime:   dealTime(today, rd.item.Cjsj),
			TradeType:   rd.item.Mmlb,
			CrTradeType: rd.crType,
		}
		channel := "normal"
		if rd.crType != "" {
			channel = "cr"
		}
		lines = append(lines, fmt.Sprintf("%s deal %s %s %s %s %s",
			channel, deal.TradeTime.Format("15:04:05"), rd.item.Zqmc, rd.item.Mmlb, rd.item.Cjjg, rd.item.Cjsl))
		toSave = append(toSave, deal)
	}

	if err := s.store.Deals().SaveAll(ctx, toSave); err != nil {
		return nil, fmt.Errorf("saving deals failed: %w", err)
	}
	return lines, nil
}

// mergeDealItems deduplicates raw rows of one channel by the stable
// (deal id, price, volume) signature, keeping the first occurrence.
func mergeDealItems(items []broker.DealItem) []broker.DealItem {
	seen := make(map[string]bool, len(items))
	out := make([]broker.DealItem, 0, len(items))
	for _, it := range items {
		k := dealKey(it)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}

func dealKey(it broker.DealItem) string {
	return it.Cjbh + "|" + it.Cjjg + "|" + it.Cjsl
}

// dealTime expands the feed's 6-digit HHMMSS field onto today's date.
// Malformed fields fall back to midnight rather than failing the batch.
func dealTime(today time.Time, hhmmss string) time.Time {
	hhmmss = strings.TrimSpace(hhmmss)
	if len(hhmmss) != 6 {
		return today
	}
	h := convert.ToInt(hhmmss[0:2])
	m := convert.ToInt(hhmmss[2:4])
	sec := convert.ToInt(hhmmss[4:6])
	return time.Date(today.Year(), today.Month(), today.Day(), h, m, sec, 0, today.Location())
}

// runTradeTicker runs the per-rule strategies and the deal reconciliation
// for every enabled account, emitting one combined deal notification.
func (s *Service) runTradeTicker(ctx context.Context) error {
	accounts, err := s.store.Accounts().ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("loading accounts failed: %w", err)
	}

	s.runStrategies(ctx)

	var lines []string
	for _, acct := range accounts {
		acctLines, err := s.reconcileDeals(ctx, acct)
		if err != nil {
			// One account's channel failure must not block the siblings.
			logger.Errorf("deal reconciliation failed account=%s: %v", acct.Account, err)
			continue
		}
		lines = append(lines, acctLines...)
	}

	if len(lines) == 0 {
		return nil
	}
	if err := s.notifier.SendText(strings.Join(lines, "\n")); err != nil {
		logger.Warnf("deal notification failed: %v", err)
	}
	return nil
}

// runStrategies evaluates every enabled trade rule; a failing handler is
// logged and the rest of the batch continues.
func (s *Service) runStrategies(ctx context.Context) {
	if s.strategies == nil {
		return
	}
	rules, err := s.store.Rules().ListEnabled(ctx)
	if err != nil {
		logger.Errorf("loading trade rules failed: %v", err)
		return
	}
	for _, rule := range rules {
		h, err := s.strategies.Lookup(rule.HandlerName)
		if err != nil {
			logger.Errorf("rule %d: %v", rule.ID, err)
			continue
		}
		if err := h.Handle(ctx, rule); err != nil {
			logger.Errorf("strategy %s %s error: %v", rule.StockCode, rule.HandlerName, err)
		}
	}
}
