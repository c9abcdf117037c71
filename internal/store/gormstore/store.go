// Package gormstore implements store.Store on Gorm + SQLite.
package gormstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stockd/internal/store"
	"stockd/internal/store/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormStore struct {
	db *gorm.DB
}

var _ store.Store = (*GormStore)(nil)

func New(path string) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: database path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	models := []interface{}{
		&model.Stock{},
		&model.StockLog{},
		&model.DailyQuote{},
		&model.WatchStock{},
		&model.TradeDeal{},
		&model.TradeRule{},
		&model.TradeAccount{},
		&model.TaskExecution{},
		&model.Holiday{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: keep connection count low, tasks run sequentially and the
	// admin API only reads.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &GormStore{db: db}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) Stocks() store.StockRepository         { return &stockRepo{db: s.db} }
func (s *GormStore) Quotes() store.QuoteRepository         { return &quoteRepo{db: s.db} }
func (s *GormStore) Deals() store.DealRepository           { return &dealRepo{db: s.db} }
func (s *GormStore) Watches() store.WatchRepository        { return &watchRepo{db: s.db} }
func (s *GormStore) Rules() store.RuleRepository           { return &ruleRepo{db: s.db} }
func (s *GormStore) Accounts() store.AccountRepository     { return &accountRepo{db: s.db} }
func (s *GormStore) Executions() store.ExecutionRepository { return &executionRepo{db: s.db} }
func (s *GormStore) Holidays() store.HolidayRepository     { return &holidayRepo{db: s.db} }
