package service

import (
	"context"

	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/model"
	"github.com/bryan1993-HA/domovra-addons/internal/retention"
)

// InsightsService derives read-only product analytics from the ledger and
// the live lots. Nothing is cached: every call recomputes.
type InsightsService interface {
	ForProduct(ctx context.Context, productID uint) (*dto.ProductInsights, error)
	All(ctx context.Context) (map[uint]dto.ProductInsights, error)
}

type insightsService struct {
	repos Repos
	clock Clock
}

func NewInsightsService(repos Repos, clock Clock) InsightsService {
	return &insightsService{repos: repos, clock: clock}
}

func (s *insightsService) ForProduct(ctx context.Context, productID uint) (*dto.ProductInsights, error) {
	if _, err := s.repos.Products.FindByID(ctx, productID); err != nil {
		return nil, lookupErr(err, "product", productID)
	}
	all, err := s.compute(ctx, []uint{productID}, productID)
	if err != nil {
		return nil, err
	}
	ins := all[productID]
	return &ins, nil
}

func (s *insightsService) All(ctx context.Context) (map[uint]dto.ProductInsights, error) {
	products, err := s.repos.Products.List(ctx, dto.ProductFilter{})
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return s.compute(ctx, ids, 0)
}

type lotStats struct {
	lots      int
	expired   int
	shelfSum  int
	shelfLots int
}

// compute builds insights for ids. scope narrows the underlying queries to a
// single product; 0 reads everything.
func (s *insightsService) compute(ctx context.Context, ids []uint, scope uint) (map[uint]dto.ProductInsights, error) {
	lastIn, err := s.repos.Movements.LastByProduct(ctx, model.MovementIn, scope)
	if err != nil {
		return nil, err
	}
	lastOut, err := s.repos.Movements.LastByProduct(ctx, model.MovementOut, scope)
	if err != nil {
		return nil, err
	}
	lots, err := s.repos.Lots.List(ctx, dto.LotFilter{ProductID: scope})
	if err != nil {
		return nil, err
	}

	today := retention.Truncate(s.clock.now())
	stats := make(map[uint]*lotStats)
	for _, l := range lots {
		st, ok := stats[l.ProductID]
		if !ok {
			st = &lotStats{}
			stats[l.ProductID] = st
		}
		st.lots++
		bb, hasBB := retention.ParseDate(l.BestBefore)
		if hasBB && bb.Before(today) {
			st.expired++
		}
		if created, ok := retention.ParseDate(l.CreatedOn); ok && hasBB {
			st.shelfSum += retention.DaysBetween(created, bb)
			st.shelfLots++
		}
	}

	out := make(map[uint]dto.ProductInsights, len(ids))
	for _, id := range ids {
		out[id] = dto.ProductInsights{ProductID: id}
	}
	for _, m := range lastIn {
		if ins, ok := out[m.ProductID]; ok {
			ts := m.Ts
			ins.LastIn = &ts
			out[m.ProductID] = ins
		}
	}
	for _, m := range lastOut {
		if ins, ok := out[m.ProductID]; ok {
			ts := m.Ts
			ins.LastOut = &ts
			out[m.ProductID] = ins
		}
	}
	for id, st := range stats {
		ins, ok := out[id]
		if !ok {
			continue
		}
		if st.shelfLots > 0 {
			avg := float64(st.shelfSum) / float64(st.shelfLots)
			ins.AvgShelfDays = &avg
		}
		if st.lots > 0 {
			rate := float64(st.expired) / float64(st.lots) * 100
			ins.ExpiredRate = &rate
		}
		out[id] = ins
	}
	return out, nil
}
