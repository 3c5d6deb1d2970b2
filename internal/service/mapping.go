package service

import (
	"time"

	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/model"
	"github.com/bryan1993-HA/domovra-addons/internal/retention"
)

func mapProduct(p model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:                     p.ID,
		Name:                   p.Name,
		Unit:                   p.Unit,
		UnitFamily:             model.UnitFamily(p.Unit),
		Step:                   model.UnitStep(p.Unit),
		DefaultShelfLifeDays:   p.DefaultShelfLifeDays,
		Barcode:                p.Barcode,
		MinQty:                 p.MinQty,
		LowStockEnabled:        p.LowStockEnabled == nil || *p.LowStockEnabled,
		ExpiryKind:             p.ExpiryKind,
		DefaultFreezeShelfDays: p.DefaultFreezeShelfDays,
		NoFreeze:               p.NoFreeze,
		Category:               p.Category,
		ParentID:               p.ParentID,
	}
}

func mapLocation(l model.Location) dto.LocationResponse {
	return dto.LocationResponse{
		ID:          l.ID,
		Name:        l.Name,
		IsFreezer:   l.IsFreezer,
		Description: l.Description,
	}
}

func mapLot(l model.Lot, policy retention.Policy, today time.Time) dto.LotResponse {
	resp := dto.LotResponse{
		ID:         l.ID,
		ProductID:  l.ProductID,
		LocationID: l.LocationID,
		Qty:        l.Qty,
		FrozenOn:   l.FrozenOn,
		BestBefore: l.BestBefore,
		CreatedOn:  l.CreatedOn,
		Status:     string(policy.Classify(l.BestBefore, today)),
	}
	if days, ok := retention.DaysLeft(l.BestBefore, today); ok {
		resp.DaysLeft = &days
	}
	if l.Product != nil {
		resp.ProductName = l.Product.Name
		resp.Unit = l.Product.Unit
	}
	if l.Location != nil {
		resp.LocationName = l.Location.Name
		resp.IsFreezer = l.Location.IsFreezer
	}
	if !l.Purchase.IsZero() {
		resp.Purchase = mapPurchase(l.Purchase)
	}
	return resp
}

func mapPurchase(p model.PurchaseInfo) *dto.PurchaseDetails {
	d := &dto.PurchaseDetails{
		ArticleName:    p.ArticleName,
		Brand:          p.Brand,
		EAN:            p.EAN,
		Store:          p.Store,
		QtyPerUnit:     p.QtyPerUnit,
		UnitAtPurchase: p.UnitAtPurchase,
		Multiplier:     p.Multiplier,
		Note:           p.Note,
	}
	if p.PriceTotal.Valid {
		price := p.PriceTotal
		d.PriceTotal = &price
	}
	return d
}

func purchaseFromDetails(d *dto.PurchaseDetails) model.PurchaseInfo {
	if d == nil {
		return model.PurchaseInfo{}
	}
	info := model.PurchaseInfo{
		ArticleName:    trimOrNil(d.ArticleName),
		Brand:          trimOrNil(d.Brand),
		EAN:            trimOrNil(d.EAN),
		Store:          trimOrNil(d.Store),
		QtyPerUnit:     d.QtyPerUnit,
		UnitAtPurchase: trimOrNil(d.UnitAtPurchase),
		Multiplier:     d.Multiplier,
		Note:           trimOrNil(d.Note),
	}
	if d.PriceTotal != nil {
		info.PriceTotal = *d.PriceTotal
	}
	return info
}

func mapMovement(m model.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:        m.ID,
		LotID:     m.LotID,
		ProductID: m.ProductID,
		Type:      m.Type,
		Qty:       m.Qty,
		Ts:        m.Ts,
		Note:      m.Note,
	}
}
