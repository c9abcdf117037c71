package app

import (
	"fmt"

	"stockd/internal/config"
	"stockd/internal/store"
	"stockd/internal/store/gormstore"
)

func newStore(cfg *config.Config) (store.Store, error) {
	path := cfg.Database.Path
	if path == "" {
		path = "data/stockd.db"
	}
	st, err := gormstore.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening store failed: %w", err)
	}
	return st, nil
}
