package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"unicode"

	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecordPurchase stocks Qty × Multiplier of a product, merging into an
// identical lot when one exists. The scanned EAN becomes the product barcode
// when the product has none yet and no other product already owns it.
func (s *stockService) RecordPurchase(ctx context.Context, req dto.PurchaseRequest) (*dto.PurchaseResponse, error) {
	multiplier := req.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	qty := req.Qty * float64(multiplier)
	if !validQty(qty) {
		return nil, invalid("qty must be a positive number")
	}
	bestBefore, err := normalizeDate("best_before", req.BestBefore)
	if err != nil {
		return nil, err
	}
	frozenOn, err := normalizeDate("frozen_on", req.FrozenOn)
	if err != nil {
		return nil, err
	}
	price, err := parsePrice(req.PriceTotal)
	if err != nil {
		return nil, err
	}
	ean := digitsOnly(req.EAN)

	product, err := s.repos.Products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, lookupErr(err, "product", req.ProductID)
	}
	setBarcode := false
	if ean != "" && (product.Barcode == nil || strings.TrimSpace(*product.Barcode) == "") {
		_, err := s.repos.Products.FindByBarcode(ctx, ean)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			setBarcode = true
		case err != nil:
			return nil, err
		default:
			log.Warn().Str("ean", ean).Uint("product_id", product.ID).Msg("barcode already used by another product, not copied")
		}
	}

	info := model.PurchaseInfo{
		ArticleName:    trimOrNil(req.ArticleName),
		Brand:          trimOrNil(req.Brand),
		Store:          trimOrNil(req.Store),
		PriceTotal:     price,
		QtyPerUnit:     req.QtyPerUnit,
		UnitAtPurchase: trimOrNil(req.UnitAtPurchase),
		Multiplier:     &multiplier,
		Note:           trimOrNil(req.Note),
	}
	if ean != "" {
		info.EAN = &ean
	}

	resp := &dto.PurchaseResponse{QtyAdded: qty}
	err = runTx(ctx, s.db(), func(tx *gorm.DB) error {
		if err := s.checkRefsTx(tx, req.ProductID, req.LocationID); err != nil {
			return err
		}
		res, err := s.mergeOrCreateTx(tx, &model.Lot{
			ProductID:  req.ProductID,
			LocationID: req.LocationID,
			Qty:        qty,
			BestBefore: bestBefore,
			FrozenOn:   frozenOn,
			Purchase:   info,
		})
		if err != nil {
			return err
		}
		resp.MergeResult = *res

		if setBarcode {
			if err := s.repos.Products.UpdateBarcodeTx(tx, req.ProductID, ean); err != nil {
				return err
			}
			resp.BarcodeUpdated = true
		}
		return recordEventTx(tx, s.repos.Events, s.clock.now(), "purchase.add", map[string]any{
			"product_id":  req.ProductID,
			"location_id": req.LocationID,
			"lot_id":      res.LotID,
			"action":      res.Action,
			"qty":         qty,
			"multiplier":  multiplier,
			"ean":         ean,
			"price_total": price,
			"store":       info.Store,
		})
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// AdjustProduct applies delta unit steps to a product: positive deltas add
// stock to the first location (creating a default one when none exists),
// negative deltas consume FIFO.
func (s *stockService) AdjustProduct(ctx context.Context, productID uint, delta float64) (*dto.AdjustProductResponse, error) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) || delta == 0 {
		return nil, invalid("delta must be a non-zero number")
	}
	product, err := s.repos.Products.FindByID(ctx, productID)
	if err != nil {
		return nil, lookupErr(err, "product", productID)
	}
	step := model.UnitStep(product.Unit)
	qty := math.Abs(delta) * step
	resp := &dto.AdjustProductResponse{ProductID: productID, Step: step, Qty: qty}

	if delta < 0 {
		resp.Action = "consume"
		fifo, err := s.ConsumeFIFO(ctx, productID, qty)
		resp.FIFO = fifo
		if err != nil {
			return nil, err
		}
		return resp, nil
	}

	resp.Action = "add"
	err = runTx(ctx, s.db(), func(tx *gorm.DB) error {
		loc, err := s.repos.Locations.FirstTx(tx)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			loc = &model.Location{Name: model.DefaultLocationName}
			if err := s.repos.Locations.CreateTx(tx, loc); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		res, err := s.mergeOrCreateTx(tx, &model.Lot{ProductID: productID, LocationID: loc.ID, Qty: qty})
		if err != nil {
			return err
		}
		resp.Lot = res
		return recordEventTx(tx, s.repos.Events, s.clock.now(), "product.adjust", map[string]any{
			"product_id": productID,
			"delta":      delta,
			"qty":        qty,
		})
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// parsePrice accepts "3.49" as well as "3,49". Empty means no price.
func parsePrice(raw *string) (decimal.NullDecimal, error) {
	if raw == nil {
		return decimal.NullDecimal{}, nil
	}
	v := strings.ReplaceAll(strings.TrimSpace(*raw), ",", ".")
	if v == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		return decimal.NullDecimal{}, invalid("price_total %q is not a valid amount", *raw)
	}
	return decimal.NewNullDecimal(d.Round(2)), nil
}

func digitsOnly(s *string) string {
	if s == nil {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, *s)
}
