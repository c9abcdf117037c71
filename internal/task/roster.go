package task

import (
	"context"
	"fmt"

	"stockd/internal/logger"
	"stockd/internal/store/model"
)

// runUpdateOfStock reconciles the crawled roster against the stored one.
// Unknown codes are inserted as new instruments; known codes whose crawled
// name differs and passes the name filter become renames. Everything else
// is noise and ignored.
func (s *Service) runUpdateOfStock(ctx context.Context) error {
	stored, err := s.store.Stocks().ListAll(ctx)
	if err != nil {
		return fmt.Errorf("loading stored roster failed: %w", err)
	}
	// First match wins when the table carries duplicate codes.
	known := make(map[string]model.Stock, len(stored))
	for _, st := range stored {
		if st.IsIndex() {
			continue
		}
		if _, ok := known[st.Code]; !ok {
			known[st.Code] = st
		}
	}

	crawled, err := s.market.CrawlRoster(ctx)
	if err != nil {
		return fmt.Errorf("crawling roster failed: %w", err)
	}

	date := s.nowFn()
	var insert, update []model.Stock
	var logs []model.StockLog

	for _, cs := range crawled {
		existing, ok := known[cs.Code]
		if !ok {
			insert = append(insert, cs)
			logs = append(logs, model.StockLog{
				Date:     date,
				Type:     model.StockLogNew,
				OldValue: "",
				NewValue: cs.Name,
			})
			continue
		}
		if cs.Name == existing.Name || !s.NameFilter(cs.Name) {
			continue
		}
		cs.ID = existing.ID
		update = append(update, cs)
		logs = append(logs, model.StockLog{
			StockID:  existing.ID,
			Date:     date,
			Type:     model.StockLogRename,
			OldValue: existing.Name,
			NewValue: cs.Name,
		})
	}

	if len(insert) == 0 && len(update) == 0 {
		logger.Infof("roster: %d crawled, no changes", len(crawled))
		return nil
	}
	if err := s.store.Stocks().SaveRosterChanges(ctx, insert, update, logs); err != nil {
		return fmt.Errorf("saving roster changes failed: %w", err)
	}
	logger.Infof("roster: %d crawled, %d new, %d renamed", len(crawled), len(insert), len(update))
	return nil
}
