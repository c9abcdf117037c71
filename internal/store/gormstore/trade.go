package gormstore

import (
	"context"
	"time"

	"stockd/internal/store/model"

	"gorm.io/gorm"
)

type dealRepo struct {
	db *gorm.DB
}

func (r *dealRepo) ListByDate(ctx context.Context, day time.Time) ([]model.TradeDeal, error) {
	start, end := dayBounds(day)
	var out []model.TradeDeal
	err := r.db.WithContext(ctx).
		Where("trade_time >= ? AND trade_time < ?", start, end).
		Order("trade_time").Find(&out).Error
	return out, err
}

func (r *dealRepo) SaveAll(ctx context.Context, deals []model.TradeDeal) error {
	if len(deals) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&deals).Error
}

type ruleRepo struct {
	db *gorm.DB
}

func (r *ruleRepo) ListEnabled(ctx context.Context) ([]model.TradeRule, error) {
	var out []model.TradeRule
	err := r.db.WithContext(ctx).Where("state = ?", 0).Order("id").Find(&out).Error
	return out, err
}

type accountRepo struct {
	db *gorm.DB
}

func (r *accountRepo) ListEnabled(ctx context.Context) ([]model.TradeAccount, error) {
	var out []model.TradeAccount
	err := r.db.WithContext(ctx).Where("state = ?", 0).Order("id").Find(&out).Error
	return out, err
}

func (r *accountRepo) Update(ctx context.Context, acct *model.TradeAccount) error {
	return r.db.WithContext(ctx).Save(acct).Error
}

func (r *accountRepo) SeedIfEmpty(ctx context.Context, accts []model.TradeAccount) error {
	if len(accts) == 0 {
		return nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.TradeAccount{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&accts).Error
}
