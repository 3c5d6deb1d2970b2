package repository

import (
	"context"

	"github.com/bryan1993-HA/domovra-addons/internal/model"

	"gorm.io/gorm"
)

type LocationRepository interface {
	Create(ctx context.Context, l *model.Location) error
	CreateTx(tx *gorm.DB, l *model.Location) error
	FindByID(ctx context.Context, id uint) (*model.Location, error)
	FindByIDTx(tx *gorm.DB, id uint) (*model.Location, error)
	FindByName(ctx context.Context, name string) (*model.Location, error)
	FirstTx(tx *gorm.DB) (*model.Location, error)
	List(ctx context.Context) ([]model.Location, error)
	Update(ctx context.Context, l *model.Location) error
	UpdateTx(tx *gorm.DB, l *model.Location) error
	DeleteTx(tx *gorm.DB, id uint) error
	DB() *gorm.DB
}

type locationRepo struct{ db *gorm.DB }

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepo{db: db}
}

func (r *locationRepo) Create(ctx context.Context, l *model.Location) error {
	return r.CreateTx(r.db.WithContext(ctx), l)
}

func (r *locationRepo) CreateTx(tx *gorm.DB, l *model.Location) error {
	return tx.Create(l).Error
}

func (r *locationRepo) FindByID(ctx context.Context, id uint) (*model.Location, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *locationRepo) FindByIDTx(tx *gorm.DB, id uint) (*model.Location, error) {
	var l model.Location
	if err := tx.First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// FindByName matches case-insensitively: "Frigo" and "frigo" are the same place.
func (r *locationRepo) FindByName(ctx context.Context, name string) (*model.Location, error) {
	var l model.Location
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// FirstTx returns the oldest location, the default target for quick adds.
func (r *locationRepo) FirstTx(tx *gorm.DB) (*model.Location, error) {
	var l model.Location
	if err := tx.Order("id ASC").First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *locationRepo) List(ctx context.Context) ([]model.Location, error) {
	var list []model.Location
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}

func (r *locationRepo) Update(ctx context.Context, l *model.Location) error {
	return r.UpdateTx(r.db.WithContext(ctx), l)
}

func (r *locationRepo) UpdateTx(tx *gorm.DB, l *model.Location) error {
	return tx.Save(l).Error
}

func (r *locationRepo) DeleteTx(tx *gorm.DB, id uint) error {
	return tx.Delete(&model.Location{}, id).Error
}

func (r *locationRepo) DB() *gorm.DB { return r.db }
