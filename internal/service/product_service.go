package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/model"
	"github.com/bryan1993-HA/domovra-addons/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	barcodeCacheTTL = 10 * time.Minute
	lowStockLimit   = 8
)

// ProductService defines the business logic contract for the product catalog.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.CreatedResponse, error)
	Get(ctx context.Context, id uint) (*dto.ProductResponse, error)
	GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]dto.ProductStatsResponse, error)
	LowStock(ctx context.Context, limit int) ([]dto.ProductStatsResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uint) error
}

type productService struct {
	repos Repos
	rdb   *redis.Client // nil when no cache is configured
	clock Clock
}

func NewProductService(repos Repos, rdb *redis.Client, clock Clock) ProductService {
	return &productService{repos: repos, rdb: rdb, clock: clock}
}

// Create is idempotent: when the name (checked first) or the barcode is
// already taken, the existing product id is returned instead of an error.
func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.CreatedResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	barcode := normalizeBarcode(req.Barcode)

	if existing, err := s.findConflict(ctx, name, barcode); err != nil || existing != nil {
		return existing, err
	}

	p := &model.Product{
		Name:                   name,
		Unit:                   strings.TrimSpace(req.Unit),
		DefaultShelfLifeDays:   model.DefaultShelfLifeDays,
		MinQty:                 clampMinQty(req.MinQty),
		LowStockEnabled:        req.LowStockEnabled,
		ExpiryKind:             req.ExpiryKind,
		DefaultFreezeShelfDays: req.DefaultFreezeShelfDays,
		NoFreeze:               req.NoFreeze,
		Category:               trimOrNil(req.Category),
		ParentID:               req.ParentID,
	}
	if barcode != "" {
		p.Barcode = &barcode
	}
	if p.Unit == "" {
		p.Unit = model.DefaultUnit
	}
	if req.DefaultShelfLifeDays != nil {
		p.DefaultShelfLifeDays = *req.DefaultShelfLifeDays
	}
	if p.ExpiryKind == "" {
		p.ExpiryKind = model.ExpiryDLC
	}
	if !validExpiryKind(p.ExpiryKind) {
		return nil, invalid("expiry_kind must be DLC or DDM")
	}
	if p.LowStockEnabled == nil {
		enabled := true
		p.LowStockEnabled = &enabled
	}

	err := runTx(ctx, s.repos.Products.DB(), func(tx *gorm.DB) error {
		if p.ParentID != nil {
			if _, err := s.repos.Products.FindByIDTx(tx, *p.ParentID); err != nil {
				return lookupErr(err, "parent product", *p.ParentID)
			}
		}
		if err := s.repos.Products.CreateTx(tx, p); err != nil {
			return err
		}
		return recordEventTx(tx, s.repos.Events, s.clock.now(), "product.add", map[string]any{
			"product_id": p.ID,
			"name":       p.Name,
			"barcode":    p.Barcode,
		})
	})
	if err != nil {
		// a concurrent create may have won the unique index race
		if existing, findErr := s.findConflict(ctx, name, barcode); findErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return &dto.CreatedResponse{ID: p.ID}, nil
}

func (s *productService) findConflict(ctx context.Context, name, barcode string) (*dto.CreatedResponse, error) {
	p, err := s.repos.Products.FindByName(ctx, name)
	if err == nil {
		return &dto.CreatedResponse{ID: p.ID, Existing: true, MatchedOn: "name"}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if barcode == "" {
		return nil, nil
	}
	p, err = s.repos.Products.FindByBarcode(ctx, barcode)
	if err == nil {
		return &dto.CreatedResponse{ID: p.ID, Existing: true, MatchedOn: "barcode"}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return nil, nil
}

func (s *productService) Get(ctx context.Context, id uint) (*dto.ProductResponse, error) {
	p, err := s.repos.Products.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "product", id)
	}
	resp := mapProduct(*p)
	return &resp, nil
}

// GetByBarcode looks a product up by its barcode, reading through the redis
// cache when one is configured.
func (s *productService) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	code := normalizeBarcode(&barcode)
	if code == "" {
		return nil, invalid("barcode is required")
	}
	cacheKey := barcodeCacheKey(code)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.ProductResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return &resp, nil
			}
		}
	}

	p, err := s.repos.Products.FindByBarcode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("barcode %s: %w", code, ErrNotFound)
		}
		return nil, err
	}
	resp := mapProduct(*p)

	// Populate cache, best effort
	if s.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = s.rdb.Set(context.Background(), cacheKey, b, barcodeCacheTTL).Err()
		}
	}
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) ([]dto.ProductStatsResponse, error) {
	rows, err := s.repos.Products.ListWithStats(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ProductStatsResponse, 0, len(rows))
	for _, r := range rows {
		result = append(result, mapProductStats(r))
	}
	return result, nil
}

// LowStock lists products at or below their reorder minimum, most missing
// first.
func (s *productService) LowStock(ctx context.Context, limit int) ([]dto.ProductStatsResponse, error) {
	if limit <= 0 {
		limit = lowStockLimit
	}
	rows, err := s.repos.Products.ListWithStats(ctx, dto.ProductFilter{})
	if err != nil {
		return nil, err
	}
	result := make([]dto.ProductStatsResponse, 0)
	for _, r := range rows {
		if !r.AlertsLowStock() || r.QtyTotal > *r.MinQty {
			continue
		}
		result = append(result, mapProductStats(r))
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if *a.Delta != *b.Delta {
			return *a.Delta < *b.Delta
		}
		if a.QtyTotal != b.QtyTotal {
			return a.QtyTotal < b.QtyTotal
		}
		return a.Name < b.Name
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *productService) Update(ctx context.Context, id uint, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repos.Products.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "product", id)
	}
	oldBarcode := p.Barcode

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name cannot be empty")
		}
		if other, err := s.repos.Products.FindByName(ctx, name); err == nil && other.ID != id {
			return nil, invalid("name %q is already used by product %d", name, other.ID)
		}
		p.Name = name
	}
	if req.Barcode != nil {
		code := normalizeBarcode(req.Barcode)
		if code == "" {
			p.Barcode = nil
		} else {
			if other, err := s.repos.Products.FindByBarcode(ctx, code); err == nil && other.ID != id {
				return nil, invalid("barcode %s is already used by product %d", code, other.ID)
			}
			p.Barcode = &code
		}
	}
	if req.Unit != nil {
		p.Unit = strings.TrimSpace(*req.Unit)
		if p.Unit == "" {
			p.Unit = model.DefaultUnit
		}
	}
	if req.DefaultShelfLifeDays != nil {
		p.DefaultShelfLifeDays = *req.DefaultShelfLifeDays
	}
	if req.ClearMinQty {
		p.MinQty = nil
	} else if req.MinQty != nil {
		p.MinQty = clampMinQty(req.MinQty)
	}
	if req.LowStockEnabled != nil {
		p.LowStockEnabled = req.LowStockEnabled
	}
	if req.ExpiryKind != nil {
		if !validExpiryKind(*req.ExpiryKind) {
			return nil, invalid("expiry_kind must be DLC or DDM")
		}
		p.ExpiryKind = *req.ExpiryKind
	}
	if req.DefaultFreezeShelfDays != nil {
		p.DefaultFreezeShelfDays = req.DefaultFreezeShelfDays
	}
	if req.NoFreeze != nil {
		p.NoFreeze = *req.NoFreeze
	}
	if req.Category != nil {
		p.Category = trimOrNil(req.Category)
	}
	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, invalid("a product cannot be its own parent")
		}
		if _, err := s.repos.Products.FindByID(ctx, *req.ParentID); err != nil {
			return nil, lookupErr(err, "parent product", *req.ParentID)
		}
		p.ParentID = req.ParentID
	}

	err = runTx(ctx, s.repos.Products.DB(), func(tx *gorm.DB) error {
		if err := s.repos.Products.UpdateTx(tx, p); err != nil {
			return err
		}
		return recordEventTx(tx, s.repos.Events, s.clock.now(), "product.update", map[string]any{
			"product_id": id,
			"name":       p.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, oldBarcode, p.Barcode)

	resp := mapProduct(*p)
	return &resp, nil
}

// Delete removes the product with every lot and movement attached to it.
func (s *productService) Delete(ctx context.Context, id uint) error {
	var barcode *string
	err := runTx(ctx, s.repos.Products.DB(), func(tx *gorm.DB) error {
		p, err := s.repos.Products.FindByIDTx(tx, id)
		if err != nil {
			return lookupErr(err, "product", id)
		}
		barcode = p.Barcode

		lotIDs, err := s.repos.Lots.IDsByProductTx(tx, id)
		if err != nil {
			return err
		}
		byLot, err := s.repos.Movements.DeleteByLotIDsTx(tx, lotIDs)
		if err != nil {
			return err
		}
		byProduct, err := s.repos.Movements.DeleteByProductTx(tx, id)
		if err != nil {
			return err
		}
		lots, err := s.repos.Lots.DeleteByIDsTx(tx, lotIDs)
		if err != nil {
			return err
		}
		if err := s.repos.Products.DeleteTx(tx, id); err != nil {
			return err
		}
		log.Debug().Uint("product_id", id).Int64("lots", lots).Int64("movements", byLot+byProduct).Msg("product deleted")
		return recordEventTx(tx, s.repos.Events, s.clock.now(), "product.delete", map[string]any{
			"product_id":        id,
			"name":              p.Name,
			"deleted_lots":      lots,
			"deleted_movements": byLot + byProduct,
		})
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, barcode)
	return nil
}

func (s *productService) invalidate(ctx context.Context, barcodes ...*string) {
	if s.rdb == nil {
		return
	}
	keys := make([]string, 0, len(barcodes))
	for _, b := range barcodes {
		if b != nil && *b != "" {
			keys = append(keys, barcodeCacheKey(*b))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("barcode cache invalidation failed")
	}
}

func mapProductStats(r repository.ProductStats) dto.ProductStatsResponse {
	resp := dto.ProductStatsResponse{
		ProductResponse: mapProduct(r.Product),
		QtyTotal:        r.QtyTotal,
		LotsCount:       r.LotsCount,
	}
	if r.MinQty != nil {
		delta := r.QtyTotal - *r.MinQty
		resp.Delta = &delta
	}
	return resp
}

func barcodeCacheKey(code string) string { return "barcode:" + code }

// normalizeBarcode strips every whitespace character.
func normalizeBarcode(s *string) string {
	if s == nil {
		return ""
	}
	return strings.Join(strings.Fields(*s), "")
}

func validExpiryKind(k string) bool {
	return k == model.ExpiryDLC || k == model.ExpiryDDM
}

func clampMinQty(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) {
		return nil
	}
	q := math.Max(*v, 0)
	return &q
}
