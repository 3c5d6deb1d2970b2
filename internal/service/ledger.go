package service

import (
	"context"
	"math"

	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/repository"
)

// driftTolerance ignores float noise when comparing ledger and live stock.
const driftTolerance = 1e-6

func (s *stockService) ListMovements(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.LotID == 0 && filter.ProductID != 0 {
		if _, err := s.repos.Products.FindByID(ctx, filter.ProductID); err != nil {
			return nil, lookupErr(err, "product", filter.ProductID)
		}
	}
	movements, total, err := s.repos.Movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	data := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		data = append(data, mapMovement(m))
	}
	return &dto.MovementListResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// Reconcile lists products whose live lot quantity differs from the signed
// sum of their movements. An empty result means ledger and stock agree.
func (s *stockService) Reconcile(ctx context.Context) ([]dto.ReconcileEntry, error) {
	stats, err := s.repos.Products.ListWithStats(ctx, dto.ProductFilter{})
	if err != nil {
		return nil, err
	}
	ledger, err := s.repos.Movements.LedgerByProduct(ctx)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[uint]float64, len(ledger))
	for _, l := range ledger {
		byProduct[l.ProductID] = l.Total
	}

	out := make([]dto.ReconcileEntry, 0)
	for _, p := range stats {
		ledgerQty := byProduct[p.ID]
		drift := p.QtyTotal - ledgerQty
		if math.Abs(drift) <= driftTolerance {
			continue
		}
		out = append(out, dto.ReconcileEntry{
			ProductID: p.ID,
			Name:      p.Name,
			LiveQty:   p.QtyTotal,
			LedgerQty: ledgerQty,
			Drift:     drift,
		})
	}
	return out, nil
}
