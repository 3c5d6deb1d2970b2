package repository

import (
	"context"

	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/model"

	"gorm.io/gorm"
)

// farFuture sorts undated lots after every dated one.
const farFuture = "9999-12-31"

// LotRepository owns the stock_lots table. Quantity decrements go through
// SetQtyIfTx / DeleteIfQtyTx, which only apply when the stored quantity still
// equals the value the caller read (compare-and-swap).
type LotRepository interface {
	CreateTx(tx *gorm.DB, l *model.Lot) error
	FindByID(ctx context.Context, id uint) (*model.Lot, error)
	FindByIDTx(tx *gorm.DB, id uint) (*model.Lot, error)
	FindMatchTx(tx *gorm.DB, productID, locationID uint, bestBefore, frozenOn *string) (*model.Lot, error)
	List(ctx context.Context, filter dto.LotFilter) ([]model.Lot, error)
	ListByProduct(ctx context.Context, productID uint) ([]model.Lot, error)
	Count(ctx context.Context) (int64, error)
	AddQtyTx(tx *gorm.DB, id uint, delta float64) error
	SetQtyIfTx(tx *gorm.DB, id uint, expected, qty float64) (bool, error)
	DeleteIfQtyTx(tx *gorm.DB, id uint, expected float64) (bool, error)
	UpdateTx(tx *gorm.DB, l *model.Lot) error
	DeleteTx(tx *gorm.DB, id uint) (int64, error)
	IDsByProductTx(tx *gorm.DB, productID uint) ([]uint, error)
	IDsByLocationTx(tx *gorm.DB, locationID uint) ([]uint, error)
	DeleteByIDsTx(tx *gorm.DB, ids []uint) (int64, error)
	MoveTx(tx *gorm.DB, fromLocationID, toLocationID uint) (int64, error)
	DB() *gorm.DB
}

type lotRepo struct{ db *gorm.DB }

func NewLotRepository(db *gorm.DB) LotRepository {
	return &lotRepo{db: db}
}

func (r *lotRepo) CreateTx(tx *gorm.DB, l *model.Lot) error {
	return tx.Omit("Product", "Location").Create(l).Error
}

func (r *lotRepo) FindByID(ctx context.Context, id uint) (*model.Lot, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *lotRepo) FindByIDTx(tx *gorm.DB, id uint) (*model.Lot, error) {
	var l model.Lot
	if err := tx.Preload("Product").Preload("Location").First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// FindMatchTx looks up the lot sharing the merge signature. Nil dates match
// only NULL columns.
func (r *lotRepo) FindMatchTx(tx *gorm.DB, productID, locationID uint, bestBefore, frozenOn *string) (*model.Lot, error) {
	q := tx.Where("product_id = ? AND location_id = ?", productID, locationID)
	q = whereNullable(q, "best_before", bestBefore)
	q = whereNullable(q, "frozen_on", frozenOn)

	var l model.Lot
	if err := q.Order("id ASC").First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *lotRepo) List(ctx context.Context, filter dto.LotFilter) ([]model.Lot, error) {
	q := r.db.WithContext(ctx).Model(&model.Lot{}).
		Joins("Product").
		Joins("Location")
	if filter.ProductID != 0 {
		q = q.Where("stock_lots.product_id = ?", filter.ProductID)
	}
	if filter.LocationID != 0 {
		q = q.Where("stock_lots.location_id = ?", filter.LocationID)
	}
	if filter.Q != "" {
		q = q.Where(`LOWER("Product"."name") LIKE ?`, likePattern(filter.Q))
	}

	var lots []model.Lot
	err := q.
		Order(`COALESCE(stock_lots.best_before, '` + farFuture + `') ASC`).
		Order(`"Product"."name" ASC`).
		Order("stock_lots.id ASC").
		Find(&lots).Error
	return lots, err
}

func (r *lotRepo) ListByProduct(ctx context.Context, productID uint) ([]model.Lot, error) {
	var lots []model.Lot
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("product_id = ? AND qty > 0", productID).
		Order("id ASC").
		Find(&lots).Error
	return lots, err
}

func (r *lotRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Lot{}).Count(&n).Error
	return n, err
}

func (r *lotRepo) AddQtyTx(tx *gorm.DB, id uint, delta float64) error {
	res := tx.Model(&model.Lot{}).Where("id = ?", id).Update("qty", gorm.Expr("qty + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *lotRepo) SetQtyIfTx(tx *gorm.DB, id uint, expected, qty float64) (bool, error) {
	res := tx.Model(&model.Lot{}).
		Where("id = ? AND qty = ?", id, expected).
		Update("qty", qty)
	return res.RowsAffected == 1, res.Error
}

func (r *lotRepo) DeleteIfQtyTx(tx *gorm.DB, id uint, expected float64) (bool, error) {
	res := tx.Where("id = ? AND qty = ?", id, expected).Delete(&model.Lot{})
	return res.RowsAffected == 1, res.Error
}

// UpdateTx overwrites quantity, location and dates. Purchase data is kept.
func (r *lotRepo) UpdateTx(tx *gorm.DB, l *model.Lot) error {
	res := tx.Model(&model.Lot{}).Where("id = ?", l.ID).Updates(map[string]any{
		"qty":         l.Qty,
		"location_id": l.LocationID,
		"frozen_on":   l.FrozenOn,
		"best_before": l.BestBefore,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *lotRepo) DeleteTx(tx *gorm.DB, id uint) (int64, error) {
	res := tx.Delete(&model.Lot{}, id)
	return res.RowsAffected, res.Error
}

func (r *lotRepo) IDsByProductTx(tx *gorm.DB, productID uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(&model.Lot{}).Where("product_id = ?", productID).Pluck("id", &ids).Error
	return ids, err
}

func (r *lotRepo) IDsByLocationTx(tx *gorm.DB, locationID uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(&model.Lot{}).Where("location_id = ?", locationID).Pluck("id", &ids).Error
	return ids, err
}

func (r *lotRepo) DeleteByIDsTx(tx *gorm.DB, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := tx.Where("id IN ?", ids).Delete(&model.Lot{})
	return res.RowsAffected, res.Error
}

func (r *lotRepo) MoveTx(tx *gorm.DB, fromLocationID, toLocationID uint) (int64, error) {
	res := tx.Model(&model.Lot{}).
		Where("location_id = ?", fromLocationID).
		Update("location_id", toLocationID)
	return res.RowsAffected, res.Error
}

func (r *lotRepo) DB() *gorm.DB { return r.db }

func whereNullable(q *gorm.DB, column string, v *string) *gorm.DB {
	if v == nil {
		return q.Where(column + " IS NULL")
	}
	return q.Where(column+" = ?", *v)
}
