package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsights_ForProduct(t *testing.T) {
	e := newTestEnv(t)
	pid := e.product(t, "Yaourt", "")
	loc := e.location(t, "Frigo", false)

	// created 2025-01-10
	e.lot(t, pid, loc, 1, "2025-01-14")
	e.lot(t, pid, loc, 1, "")
	e.advanceDays(5) // 2025-01-15
	lotID := e.lot(t, pid, loc, 2, "2025-01-25")
	_, err := e.stock.ConsumeLot(e.ctx, lotID, 1)
	require.NoError(t, err)

	ins, err := e.insights.ForProduct(e.ctx, pid)
	require.NoError(t, err)
	require.NotNil(t, ins.LastIn)
	assert.Equal(t, "2025-01-15", *ins.LastIn)
	require.NotNil(t, ins.LastOut)
	assert.Equal(t, "2025-01-15", *ins.LastOut)

	// (4 + 10) / 2 over the two dated lots
	require.NotNil(t, ins.AvgShelfDays)
	assert.InDelta(t, 7.0, *ins.AvgShelfDays, 1e-9)

	// one of three lots is past its date
	require.NotNil(t, ins.ExpiredRate)
	assert.InDelta(t, 100.0/3, *ins.ExpiredRate, 1e-9)
}

func TestInsights_EmptyProduct(t *testing.T) {
	e := newTestEnv(t)
	pid := e.product(t, "Vide", "")

	ins, err := e.insights.ForProduct(e.ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, pid, ins.ProductID)
	assert.Nil(t, ins.LastIn)
	assert.Nil(t, ins.LastOut)
	assert.Nil(t, ins.AvgShelfDays)
	assert.Nil(t, ins.ExpiredRate)

	_, err = e.insights.ForProduct(e.ctx, 1234)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsights_All(t *testing.T) {
	e := newTestEnv(t)
	a := e.product(t, "A", "")
	b := e.product(t, "B", "")
	loc := e.location(t, "Placard", false)
	e.lot(t, a, loc, 1, "2025-02-09")

	all, err := e.insights.All(e.ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.NotNil(t, all[a].AvgShelfDays)
	assert.InDelta(t, 30.0, *all[a].AvgShelfDays, 1e-9)
	assert.InDelta(t, 0.0, *all[a].ExpiredRate, 1e-9)
	assert.Nil(t, all[b].LastIn)
}
