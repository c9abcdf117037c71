package gormstore

import (
	"context"
	"time"

	"stockd/internal/store/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type executionRepo struct {
	db *gorm.DB
}

func (r *executionRepo) ListPending(ctx context.Context, kinds ...model.TaskKind) ([]model.TaskExecution, error) {
	if len(kinds) == 0 {
		return nil, nil
	}
	var out []model.TaskExecution
	err := r.db.WithContext(ctx).
		Where("task_id IN ? AND state = ?", kinds, model.TaskStatePending).
		Order("id").Find(&out).Error
	return out, err
}

func (r *executionRepo) Create(ctx context.Context, rec *model.TaskExecution) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *executionRepo) Update(ctx context.Context, rec *model.TaskExecution) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *executionRepo) ListRecent(ctx context.Context, kind model.TaskKind, limit int) ([]model.TaskExecution, error) {
	if limit <= 0 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Model(&model.TaskExecution{})
	if kind != 0 {
		q = q.Where("task_id = ?", kind)
	}
	var out []model.TaskExecution
	err := q.Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}

type holidayRepo struct {
	db *gorm.DB
}

func (r *holidayRepo) ListYear(ctx context.Context, year int) ([]model.Holiday, error) {
	var out []model.Holiday
	err := r.db.WithContext(ctx).Where("year = ?", year).Find(&out).Error
	return out, err
}

func (r *holidayRepo) SaveAll(ctx context.Context, rows []model.Holiday) error {
	if len(rows) == 0 {
		return nil
	}
	// Re-seeding the same config list on every boot must be a no-op.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}
