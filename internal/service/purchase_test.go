package service

import (
	"testing"

	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPurchase(t *testing.T) {
	e := newTestEnv(t)
	pid := e.product(t, "Pâte à tartiner", "")
	loc := e.location(t, "Placard", false)
	bb := "2025-09-01"

	resp, err := e.stock.RecordPurchase(e.ctx, dto.PurchaseRequest{
		ProductID:  pid,
		LocationID: loc,
		Qty:        2,
		Multiplier: 3,
		BestBefore: &bb,
		EAN:        ptr("3 017620 422003"),
		Store:      ptr(" Carrefour "),
		PriceTotal: ptr("3,49"),
	})
	require.NoError(t, err)
	assert.Equal(t, ActionInsert, resp.Action)
	assert.Equal(t, 6.0, resp.QtyAdded)
	assert.Equal(t, 6.0, resp.NewQty)
	assert.True(t, resp.BarcodeUpdated)

	lot, err := e.repos.Lots.FindByID(e.ctx, resp.LotID)
	require.NoError(t, err)
	require.True(t, lot.Purchase.PriceTotal.Valid)
	assert.Equal(t, "3.49", lot.Purchase.PriceTotal.Decimal.StringFixed(2))
	assert.Equal(t, "Carrefour", *lot.Purchase.Store)
	assert.Equal(t, "3017620422003", *lot.Purchase.EAN)
	assert.Equal(t, 3, *lot.Purchase.Multiplier)

	p, err := e.products.Get(e.ctx, pid)
	require.NoError(t, err)
	require.NotNil(t, p.Barcode)
	assert.Equal(t, "3017620422003", *p.Barcode)

	// same product, place and date merges; the barcode is already set
	again, err := e.stock.RecordPurchase(e.ctx, dto.PurchaseRequest{ProductID: pid, LocationID: loc, Qty: 1, BestBefore: &bb, EAN: ptr("3017620422003")})
	require.NoError(t, err)
	assert.Equal(t, ActionMerge, again.Action)
	assert.Equal(t, resp.LotID, again.LotID)
	assert.Equal(t, 7.0, again.NewQty)
	assert.False(t, again.BarcodeUpdated)

	assert.Contains(t, e.eventKinds(t), "purchase.add")
	assert.InDelta(t, e.liveQty(t, pid), e.ledgerQty(t, pid), 1e-9)
}

func TestRecordPurchase_BarcodeOwnedElsewhere(t *testing.T) {
	e := newTestEnv(t)
	owner, err := e.products.Create(e.ctx, dto.CreateProductRequest{Name: "Nutella", Barcode: ptr("3017620422003")})
	require.NoError(t, err)
	other := e.product(t, "Pâte noisette", "")
	loc := e.location(t, "Placard", false)

	resp, err := e.stock.RecordPurchase(e.ctx, dto.PurchaseRequest{ProductID: other, LocationID: loc, Qty: 1, EAN: ptr("3017620422003")})
	require.NoError(t, err)
	assert.False(t, resp.BarcodeUpdated)

	p, err := e.products.Get(e.ctx, other)
	require.NoError(t, err)
	assert.Nil(t, p.Barcode)

	found, err := e.products.GetByBarcode(e.ctx, "3017620422003")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, found.ID)
}

func TestRecordPurchase_Invalid(t *testing.T) {
	e := newTestEnv(t)
	pid := e.product(t, "Thé", "")
	loc := e.location(t, "Placard", false)

	_, err := e.stock.RecordPurchase(e.ctx, dto.PurchaseRequest{ProductID: pid, LocationID: loc, Qty: 1, PriceTotal: ptr("cheap")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.stock.RecordPurchase(e.ctx, dto.PurchaseRequest{ProductID: pid, LocationID: loc, Qty: 1, PriceTotal: ptr("-2")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.stock.RecordPurchase(e.ctx, dto.PurchaseRequest{ProductID: pid, LocationID: loc, Qty: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.stock.RecordPurchase(e.ctx, dto.PurchaseRequest{ProductID: 404, LocationID: loc, Qty: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParsePrice(t *testing.T) {
	d, err := parsePrice(nil)
	require.NoError(t, err)
	assert.False(t, d.Valid)

	d, err = parsePrice(ptr("  "))
	require.NoError(t, err)
	assert.False(t, d.Valid)

	d, err = parsePrice(ptr("12,345"))
	require.NoError(t, err)
	assert.Equal(t, "12.35", d.Decimal.StringFixed(2))
}

func TestAdjustProduct(t *testing.T) {
	e := newTestEnv(t)
	pid := e.product(t, "Gruyère", "g")

	// no location yet: one is created
	add, err := e.stock.AdjustProduct(e.ctx, pid, 2)
	require.NoError(t, err)
	assert.Equal(t, "add", add.Action)
	assert.Equal(t, 50.0, add.Step)
	assert.Equal(t, 100.0, add.Qty)
	require.NotNil(t, add.Lot)

	locs, err := e.locations.List(e.ctx)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, model.DefaultLocationName, locs[0].Name)

	// adding again merges into the undated lot
	add, err = e.stock.AdjustProduct(e.ctx, pid, 1)
	require.NoError(t, err)
	assert.Equal(t, ActionMerge, add.Lot.Action)
	assert.Equal(t, 150.0, add.Lot.NewQty)

	use, err := e.stock.AdjustProduct(e.ctx, pid, -1)
	require.NoError(t, err)
	assert.Equal(t, "consume", use.Action)
	require.NotNil(t, use.FIFO)
	assert.Equal(t, 50.0, use.FIFO.ConsumedQty)
	assert.InDelta(t, 100.0, e.liveQty(t, pid), 1e-9)

	_, err = e.stock.AdjustProduct(e.ctx, pid, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.stock.AdjustProduct(e.ctx, 777, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdjustProduct_UsesFirstLocation(t *testing.T) {
	e := newTestEnv(t)
	pid := e.product(t, "Bière", "cl")
	first := e.location(t, "Cave", false)
	e.location(t, "Garage", false)

	add, err := e.stock.AdjustProduct(e.ctx, pid, 3)
	require.NoError(t, err)
	assert.Equal(t, 15.0, add.Qty)

	lot, err := e.stock.GetLot(e.ctx, add.Lot.LotID)
	require.NoError(t, err)
	assert.Equal(t, first, lot.LocationID)

	_, err = e.stock.AdjustProduct(e.ctx, pid, -10)
	require.NoError(t, err)
	_, err = e.stock.AdjustProduct(e.ctx, pid, -1)
	assert.ErrorIs(t, err, ErrNoStock)
}
