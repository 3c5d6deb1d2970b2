package repository

import (
	"context"

	"github.com/bryan1993-HA/domovra-addons/internal/model"

	"gorm.io/gorm"
)

type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	CreateTx(tx *gorm.DB, e *model.Event) error
	List(ctx context.Context, limit int) ([]model.Event, error)
	ClearTx(tx *gorm.DB) (int64, error)
	DB() *gorm.DB
}

type eventRepo struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) Create(ctx context.Context, e *model.Event) error {
	return r.CreateTx(r.db.WithContext(ctx), e)
}

func (r *eventRepo) CreateTx(tx *gorm.DB, e *model.Event) error {
	return tx.Create(e).Error
}

// List returns the newest events first.
func (r *eventRepo) List(ctx context.Context, limit int) ([]model.Event, error) {
	var list []model.Event
	err := r.db.WithContext(ctx).Order("ts DESC").Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *eventRepo) ClearTx(tx *gorm.DB) (int64, error) {
	res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Event{})
	return res.RowsAffected, res.Error
}

func (r *eventRepo) DB() *gorm.DB { return r.db }
