package service

import (
	"encoding/json"
	"testing"

	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/model"
	"github.com/bryan1993-HA/domovra-addons/internal/repository"
	"github.com/bryan1993-HA/domovra-addons/internal/retention"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedShopping(t *testing.T, e *testEnv) {
	t.Helper()
	loc := e.location(t, "Placard", false)
	mk := func(name string, min *float64, stock float64, bb string) {
		created, err := e.products.Create(e.ctx, dto.CreateProductRequest{Name: name, MinQty: min})
		require.NoError(t, err)
		if stock > 0 {
			e.lot(t, created.ID, loc, stock, bb)
		}
	}
	mk("Café", ptr(2.0), 1, "2025-01-12")
	mk("Farine", nil, 0, "")
	mk("Lait", ptr(1.0), 0, "")
	mk("Riz", ptr(1.0), 3, "2025-02-01")
	mk("Sucre", nil, 2, "2025-08-01")
}

func TestHASummary(t *testing.T) {
	e := newTestEnv(t)
	seedShopping(t, e)

	sum, err := e.summary.HASummary(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), sum.Products)
	assert.Equal(t, int64(3), sum.Lots)
	assert.Equal(t, 1, sum.Urgent)
	assert.Equal(t, 1, sum.Soon)
	assert.Equal(t, 2, sum.LowStock)
	assert.Equal(t, retention.DefaultPolicy(), sum.Thresholds)
	assert.Equal(t, "2025-01-10", sum.AsOf)
}

func TestShoppingList(t *testing.T) {
	e := newTestEnv(t)
	seedShopping(t, e)

	names := func(list *dto.ShoppingListResponse) []string {
		out := make([]string, 0, len(list.Items))
		for _, it := range list.Items {
			out = append(out, it.Name)
		}
		return out
	}

	def, err := e.summary.ShoppingList(e.ctx, dto.ShoppingFilter{})
	require.NoError(t, err)
	assert.Equal(t, ShowOutOfStock, def.Show)
	assert.Equal(t, []string{"Farine", "Lait"}, names(def))

	low, err := e.summary.ShoppingList(e.ctx, dto.ShoppingFilter{Show: ShowLow})
	require.NoError(t, err)
	assert.Equal(t, []string{"Café", "Lait"}, names(low))
	assert.Equal(t, 1.0, low.Items[0].Missing)

	all, err := e.summary.ShoppingList(e.ctx, dto.ShoppingFilter{Show: ShowAll, Q: "r"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Farine", "Riz", "Sucre"}, names(all))
	assert.Equal(t, 0.0, all.Items[1].Missing)

	_, err = e.summary.ShoppingList(e.ctx, dto.ShoppingFilter{Show: "someday"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestJournal(t *testing.T) {
	e := newTestEnv(t)
	pid := e.product(t, "Miel", "")
	loc := e.location(t, "Placard", false)
	e.advanceDays(1)
	e.lot(t, pid, loc, 1, "")

	events, err := e.journal.List(e.ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "lot.add", events[0].Kind)
	assert.Equal(t, "product.add", events[2].Kind)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.EqualValues(t, pid, payload["product_id"])

	one, err := e.journal.List(e.ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	cleared, err := e.journal.Clear(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cleared.Deleted)

	events, err = e.journal.List(e.ctx, 5000)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "journal.clear", events[0].Kind)

	// the inventory ledger is untouched
	assert.Len(t, e.movements(t, repository.MovementFilter{ProductID: pid}), 1)
}

func TestListMovements_Paginates(t *testing.T) {
	e := newTestEnv(t)
	pid := e.product(t, "Eau", "l")
	loc := e.location(t, "Cellier", false)
	lotID := e.lot(t, pid, loc, 10, "")
	for i := 0; i < 4; i++ {
		e.advanceDays(1)
		_, err := e.stock.ConsumeLot(e.ctx, lotID, 1)
		require.NoError(t, err)
	}

	page, err := e.stock.ListMovements(e.ctx, repository.MovementFilter{ProductID: pid, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "2025-01-12", page.Data[0].Ts)

	outs, err := e.stock.ListMovements(e.ctx, repository.MovementFilter{ProductID: pid, Type: model.MovementOut})
	require.NoError(t, err)
	assert.Equal(t, int64(4), outs.Total)

	_, err = e.stock.ListMovements(e.ctx, repository.MovementFilter{ProductID: 999})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReconcile_CleanLedger(t *testing.T) {
	e := newTestEnv(t)
	pid := e.product(t, "Sirop", "cl")
	loc := e.location(t, "Placard", false)
	lotID := e.lot(t, pid, loc, 70, "")
	_, err := e.stock.ConsumeLot(e.ctx, lotID, 20)
	require.NoError(t, err)
	_, err = e.stock.ConsumeFIFO(e.ctx, pid, 100)
	require.NoError(t, err)

	drift, err := e.stock.Reconcile(e.ctx)
	require.NoError(t, err)
	assert.Empty(t, drift)
}
