package repository

import (
	"context"
	"strings"

	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/model"

	"gorm.io/gorm"
)

// ProductStats is a product row with its live stock aggregates.
type ProductStats struct {
	model.Product
	QtyTotal  float64
	LotsCount int64
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	CreateTx(tx *gorm.DB, p *model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByIDTx(tx *gorm.DB, id uint) (*model.Product, error)
	FindByName(ctx context.Context, name string) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, error)
	ListWithStats(ctx context.Context, filter dto.ProductFilter) ([]ProductStats, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, p *model.Product) error
	UpdateTx(tx *gorm.DB, p *model.Product) error
	UpdateBarcodeTx(tx *gorm.DB, id uint, barcode string) error
	DeleteTx(tx *gorm.DB, id uint) error
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.CreateTx(r.db.WithContext(ctx), p)
}

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, id uint) (*model.Product, error) {
	var p model.Product
	if err := tx.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByName(ctx context.Context, name string) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.Q != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(filter.Q))
	}
	var list []model.Product
	err := q.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *productRepo) ListWithStats(ctx context.Context, filter dto.ProductFilter) ([]ProductStats, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("products.*, COALESCE(SUM(stock_lots.qty), 0) AS qty_total, COUNT(stock_lots.id) AS lots_count").
		Joins("LEFT JOIN stock_lots ON stock_lots.product_id = products.id").
		Group("products.id")
	if filter.Q != "" {
		q = q.Where("LOWER(products.name) LIKE ?", likePattern(filter.Q))
	}
	var rows []ProductStats
	err := q.Order("products.name ASC").Scan(&rows).Error
	return rows, err
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error
	return n, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.UpdateTx(r.db.WithContext(ctx), p)
}

func (r *productRepo) UpdateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Save(p).Error
}

func (r *productRepo) UpdateBarcodeTx(tx *gorm.DB, id uint, barcode string) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).Update("barcode", barcode).Error
}

func (r *productRepo) DeleteTx(tx *gorm.DB, id uint) error {
	return tx.Delete(&model.Product{}, id).Error
}

func (r *productRepo) DB() *gorm.DB { return r.db }

func likePattern(q string) string {
	return "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
}
