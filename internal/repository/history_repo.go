package repository

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/roksva123/go-matrix-tasks/internal/model"
)

// HistoryRepo archives connection-log entries into sync_history so they
// outlive the 50-entry ring kept in the store.
type HistoryRepo struct {
	db *gorm.DB
}

func NewHistoryRepo(dsn string) (*HistoryRepo, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	return NewHistoryRepoFromDB(db), nil
}

func NewHistoryRepoFromDB(db *gorm.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) AutoMigrate() error {
	return r.db.AutoMigrate(&model.SyncHistory{})
}

func (r *HistoryRepo) Archive(ctx context.Context, e model.ConnectionLogEntry) error {
	h := model.SyncHistoryFromEntry(e)
	return r.db.WithContext(ctx).Create(&h).Error
}

// Recent returns up to limit rows, newest first, optionally for one entity.
func (r *HistoryRepo) Recent(ctx context.Context, entity model.EntityKind, limit int) ([]model.SyncHistory, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := r.db.WithContext(ctx).Order("sync_time DESC").Limit(limit)
	if entity != "" {
		q = q.Where("sync_type = ?", string(entity))
	}
	var rows []model.SyncHistory
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
