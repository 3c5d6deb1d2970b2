package service

import (
	"context"
	"math"

	"github.com/bryan1993-HA/domovra-addons/internal/config"
	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/retention"
)

// Shopping list modes.
const (
	ShowOutOfStock = "outofstock"
	ShowLow        = "low"
	ShowAll        = "all"
)

// SummaryService serves the dashboard-style aggregates: the home-automation
// sensors and the shopping list.
type SummaryService interface {
	HASummary(ctx context.Context) (*dto.HASummaryResponse, error)
	ShoppingList(ctx context.Context, filter dto.ShoppingFilter) (*dto.ShoppingListResponse, error)
	Retention() retention.Policy
}

type summaryService struct {
	repos     Repos
	retention config.RetentionSource
	clock     Clock
}

func NewSummaryService(repos Repos, retention config.RetentionSource, clock Clock) SummaryService {
	return &summaryService{repos: repos, retention: retention, clock: clock}
}

func (s *summaryService) Retention() retention.Policy { return s.retention.Policy() }

func (s *summaryService) HASummary(ctx context.Context) (*dto.HASummaryResponse, error) {
	products, err := s.repos.Products.Count(ctx)
	if err != nil {
		return nil, err
	}
	lots, err := s.repos.Lots.List(ctx, dto.LotFilter{})
	if err != nil {
		return nil, err
	}
	stats, err := s.repos.Products.ListWithStats(ctx, dto.ProductFilter{})
	if err != nil {
		return nil, err
	}

	policy := s.retention.Policy()
	now := s.clock.now()
	var counts retention.Counts
	for _, l := range lots {
		counts.Add(policy.Classify(l.BestBefore, now))
	}
	low := 0
	for _, p := range stats {
		if p.AlertsLowStock() && p.QtyTotal <= *p.MinQty {
			low++
		}
	}

	return &dto.HASummaryResponse{
		Products:   products,
		Lots:       int64(len(lots)),
		Soon:       counts.Yellow,
		Urgent:     counts.Red,
		LowStock:   low,
		Thresholds: policy,
		AsOf:       s.clock.today(),
	}, nil
}

// ShoppingList selects products to buy. outofstock (default) keeps products
// with nothing left, low keeps those at or under their minimum, all keeps
// everything.
func (s *summaryService) ShoppingList(ctx context.Context, filter dto.ShoppingFilter) (*dto.ShoppingListResponse, error) {
	show := filter.Show
	switch show {
	case "":
		show = ShowOutOfStock
	case ShowOutOfStock, ShowLow, ShowAll:
	default:
		return nil, invalid("show must be one of outofstock, low, all")
	}

	stats, err := s.repos.Products.ListWithStats(ctx, dto.ProductFilter{Q: filter.Q})
	if err != nil {
		return nil, err
	}

	items := make([]dto.ShoppingItem, 0)
	for _, p := range stats {
		switch show {
		case ShowOutOfStock:
			if p.QtyTotal > epsilon {
				continue
			}
		case ShowLow:
			if !p.AlertsLowStock() || p.QtyTotal > *p.MinQty {
				continue
			}
		}
		item := dto.ShoppingItem{
			ProductID: p.ID,
			Name:      p.Name,
			Unit:      p.Unit,
			QtyTotal:  p.QtyTotal,
			MinQty:    p.MinQty,
		}
		if p.MinQty != nil {
			item.Missing = math.Max(*p.MinQty-p.QtyTotal, 0)
		}
		items = append(items, item)
	}

	return &dto.ShoppingListResponse{Show: show, Q: filter.Q, AsOf: s.clock.today(), Items: items}, nil
}
