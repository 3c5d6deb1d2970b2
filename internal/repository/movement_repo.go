package repository

import (
	"context"

	"github.com/bryan1993-HA/domovra-addons/internal/model"

	"gorm.io/gorm"
)

// MovementFilter selects ledger rows for one lot or one product.
type MovementFilter struct {
	LotID     uint
	ProductID uint
	Type      string
	Page      int
	Limit     int
}

// LedgerTotal is the signed movement sum (IN - OUT) of a product.
type LedgerTotal struct {
	ProductID uint
	Total     float64
}

// LastMovement is the latest movement date of a product for one type.
type LastMovement struct {
	ProductID uint
	Ts        string
}

type MovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.Movement) error
	List(ctx context.Context, filter MovementFilter) ([]model.Movement, int64, error)
	LastByProduct(ctx context.Context, typ string, productID uint) ([]LastMovement, error)
	LedgerByProduct(ctx context.Context) ([]LedgerTotal, error)
	DeleteByLotIDsTx(tx *gorm.DB, lotIDs []uint) (int64, error)
	DeleteByProductTx(tx *gorm.DB, productID uint) (int64, error)
}

type movementRepo struct{ db *gorm.DB }

func NewMovementRepository(db *gorm.DB) MovementRepository {
	return &movementRepo{db: db}
}

func (r *movementRepo) CreateTx(tx *gorm.DB, m *model.Movement) error {
	return tx.Create(m).Error
}

func (r *movementRepo) List(ctx context.Context, filter MovementFilter) ([]model.Movement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Movement{})
	if filter.LotID != 0 {
		q = q.Where("lot_id = ?", filter.LotID)
	}
	if filter.ProductID != 0 {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	offset := (page - 1) * limit

	var movements []model.Movement
	err := q.Order("ts DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&movements).Error
	return movements, total, err
}

// LastByProduct returns the latest movement date of the given type per
// product. productID 0 means every product.
func (r *movementRepo) LastByProduct(ctx context.Context, typ string, productID uint) ([]LastMovement, error) {
	q := r.db.WithContext(ctx).Model(&model.Movement{}).
		Select("product_id, MAX(ts) AS ts").
		Where("type = ?", typ)
	if productID != 0 {
		q = q.Where("product_id = ?", productID)
	}
	var rows []LastMovement
	err := q.Group("product_id").Scan(&rows).Error
	return rows, err
}

func (r *movementRepo) LedgerByProduct(ctx context.Context) ([]LedgerTotal, error) {
	var rows []LedgerTotal
	err := r.db.WithContext(ctx).Model(&model.Movement{}).
		Select("product_id, SUM(CASE WHEN type = ? THEN qty ELSE -qty END) AS total", model.MovementIn).
		Group("product_id").
		Scan(&rows).Error
	return rows, err
}

func (r *movementRepo) DeleteByLotIDsTx(tx *gorm.DB, lotIDs []uint) (int64, error) {
	if len(lotIDs) == 0 {
		return 0, nil
	}
	res := tx.Where("lot_id IN ?", lotIDs).Delete(&model.Movement{})
	return res.RowsAffected, res.Error
}

func (r *movementRepo) DeleteByProductTx(tx *gorm.DB, productID uint) (int64, error) {
	res := tx.Where("product_id = ?", productID).Delete(&model.Movement{})
	return res.RowsAffected, res.Error
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return page, limit
}
