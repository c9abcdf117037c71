package gormstore

import (
	"context"
	"errors"
	"time"

	"stockd/internal/store/model"

	"gorm.io/gorm"
)

type stockRepo struct {
	db *gorm.DB
}

func (r *stockRepo) ListAll(ctx context.Context) ([]model.Stock, error) {
	var out []model.Stock
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (r *stockRepo) FindByCode(ctx context.Context, code string) (*model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stockRepo) SaveRosterChanges(ctx context.Context, insert, update []model.Stock, logs []model.StockLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(insert) > 0 {
			if err := tx.Create(&insert).Error; err != nil {
				return err
			}
		}
		for i := range update {
			if err := tx.Model(&model.Stock{}).
				Where("id = ?", update[i].ID).
				Update("name", update[i].Name).Error; err != nil {
				return err
			}
		}
		// New instruments only get their id during insert; resolve log rows
		// that were queued before the id existed.
		for i := range logs {
			if logs[i].StockID == 0 && logs[i].Type == model.StockLogNew {
				for j := range insert {
					if insert[j].Name == logs[i].NewValue {
						logs[i].StockID = insert[j].ID
						break
					}
				}
			}
		}
		if len(logs) > 0 {
			if err := tx.Create(&logs).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

type quoteRepo struct {
	db *gorm.DB
}

func (r *quoteRepo) SaveAll(ctx context.Context, quotes []model.DailyQuote) error {
	if len(quotes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&quotes).Error
}

func (r *quoteRepo) ListCodesByDate(ctx context.Context, day time.Time) ([]string, error) {
	start, end := dayBounds(day)
	var codes []string
	err := r.db.WithContext(ctx).Model(&model.DailyQuote{}).
		Where("quote_date >= ? AND quote_date < ?", start, end).
		Pluck("code", &codes).Error
	return codes, err
}

type watchRepo struct {
	db *gorm.DB
}

func (r *watchRepo) ListEnabled(ctx context.Context) ([]model.WatchStock, error) {
	var out []model.WatchStock
	err := r.db.WithContext(ctx).Where("state = ?", 0).Order("id").Find(&out).Error
	return out, err
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}
