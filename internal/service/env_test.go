package service

import (
	"context"
	"testing"
	"time"

	"github.com/bryan1993-HA/domovra-addons/internal/config"
	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/infra"
	"github.com/bryan1993-HA/domovra-addons/internal/repository"
	"github.com/bryan1993-HA/domovra-addons/internal/retention"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv is a fully wired service layer over a private in-memory SQLite
// database. now drives every service clock and may be moved by tests.
type testEnv struct {
	ctx   context.Context
	db    *gorm.DB
	now   time.Time
	repos Repos

	products  ProductService
	locations LocationService
	stock     StockService
	insights  InsightsService
	summary   SummaryService
	journal   JournalService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := infra.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	e := &testEnv{
		ctx:   context.Background(),
		db:    db,
		now:   time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC),
		repos: NewRepos(db),
	}
	e.wire()
	return e
}

// wire (re)builds the services on e.repos.
func (e *testEnv) wire() {
	clock := Clock(func() time.Time { return e.now })
	policy := config.StaticRetention(retention.DefaultPolicy())
	e.products = NewProductService(e.repos, nil, clock)
	e.locations = NewLocationService(e.repos, policy, clock)
	e.stock = NewStockService(e.repos, policy, clock)
	e.insights = NewInsightsService(e.repos, clock)
	e.summary = NewSummaryService(e.repos, policy, clock)
	e.journal = NewJournalService(e.repos, clock)
}

func (e *testEnv) advanceDays(n int) { e.now = e.now.AddDate(0, 0, n) }

func (e *testEnv) product(t *testing.T, name, unit string) uint {
	t.Helper()
	resp, err := e.products.Create(e.ctx, dto.CreateProductRequest{Name: name, Unit: unit})
	require.NoError(t, err)
	return resp.ID
}

func (e *testEnv) location(t *testing.T, name string, freezer bool) uint {
	t.Helper()
	resp, err := e.locations.Create(e.ctx, dto.CreateLocationRequest{Name: name, IsFreezer: freezer})
	require.NoError(t, err)
	return resp.ID
}

func (e *testEnv) lot(t *testing.T, productID, locationID uint, qty float64, bestBefore string) uint {
	t.Helper()
	req := dto.CreateLotRequest{ProductID: productID, LocationID: locationID, Qty: qty}
	if bestBefore != "" {
		req.BestBefore = &bestBefore
	}
	resp, err := e.stock.CreateLot(e.ctx, req)
	require.NoError(t, err)
	return resp.ID
}

// liveQty sums the remaining lot quantities of a product.
func (e *testEnv) liveQty(t *testing.T, productID uint) float64 {
	t.Helper()
	lots, err := e.repos.Lots.ListByProduct(e.ctx, productID)
	require.NoError(t, err)
	var total float64
	for _, l := range lots {
		total += l.Qty
	}
	return total
}

// ledgerQty is the signed movement sum of a product.
func (e *testEnv) ledgerQty(t *testing.T, productID uint) float64 {
	t.Helper()
	totals, err := e.repos.Movements.LedgerByProduct(e.ctx)
	require.NoError(t, err)
	for _, row := range totals {
		if row.ProductID == productID {
			return row.Total
		}
	}
	return 0
}

func (e *testEnv) movements(t *testing.T, filter repository.MovementFilter) []dto.MovementResponse {
	t.Helper()
	filter.Limit = 500
	resp, err := e.stock.ListMovements(e.ctx, filter)
	require.NoError(t, err)
	return resp.Data
}

func (e *testEnv) eventKinds(t *testing.T) []string {
	t.Helper()
	events, err := e.journal.List(e.ctx, 1000)
	require.NoError(t, err)
	kinds := make([]string, 0, len(events))
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

func ptr[T any](v T) *T { return &v }
