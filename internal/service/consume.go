package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/model"
	"github.com/bryan1993-HA/domovra-addons/internal/retention"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	// maxCASAttempts bounds the re-read/retry loop of a single-lot decrement.
	maxCASAttempts = 5

	noteDeleteLot = "delete lot"
	noteFIFO      = "fifo"
)

// errStale means the lot quantity changed between read and write.
var errStale = errors.New("stale lot quantity")

// ConsumeLot takes qty from one lot. Requests above the available quantity
// are capped; reaching zero deletes the lot.
func (s *stockService) ConsumeLot(ctx context.Context, id uint, qty float64) (*dto.ConsumeStep, error) {
	if !validQty(qty) {
		return nil, invalid("qty must be a positive number")
	}
	return s.takeFromLot(ctx, id, qty, nil)
}

// takeFromLot is the single atomic decrement every consumption path goes
// through. The write only lands if the quantity still equals what was read;
// otherwise the lot is re-read and the step retried.
func (s *stockService) takeFromLot(ctx context.Context, lotID uint, qty float64, note *string) (*dto.ConsumeStep, error) {
	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		step, err := s.takeOnce(ctx, lotID, qty, note)
		if errors.Is(err, errStale) {
			log.Debug().Uint("lot_id", lotID).Int("attempt", attempt).Msg("lot changed under us, retrying")
			continue
		}
		return step, err
	}
	return nil, fmt.Errorf("lot %d: %w", lotID, ErrConcurrentUpdate)
}

func (s *stockService) takeOnce(ctx context.Context, lotID uint, qty float64, note *string) (*dto.ConsumeStep, error) {
	var step dto.ConsumeStep
	err := runTx(ctx, s.db(), func(tx *gorm.DB) error {
		lot, err := s.repos.Lots.FindByIDTx(tx, lotID)
		if err != nil {
			return lookupErr(err, "lot", lotID)
		}

		before := lot.Qty
		take := math.Min(qty, before)
		after := before - take
		step = dto.ConsumeStep{
			LotID:      lot.ID,
			Before:     before,
			BestBefore: lot.BestBefore,
			LocationID: lot.LocationID,
		}
		if lot.Location != nil {
			step.Location = lot.Location.Name
		}

		var (
			ok     bool
			mvQty  float64
			mvNote = note
		)
		if after <= epsilon {
			ok, err = s.repos.Lots.DeleteIfQtyTx(tx, lot.ID, before)
			mvQty, mvNote = before, strPtr(noteDeleteLot)
			step.Taken, step.After, step.Deleted = before, 0, true
		} else {
			ok, err = s.repos.Lots.SetQtyIfTx(tx, lot.ID, before, after)
			mvQty = take
			step.Taken, step.After = take, after
		}
		if err != nil {
			return err
		}
		if !ok {
			return errStale
		}

		mv := &model.Movement{
			LotID:     lot.ID,
			ProductID: lot.ProductID,
			Type:      model.MovementOut,
			Qty:       mvQty,
			Ts:        s.clock.today(),
			Note:      mvNote,
		}
		if err := s.repos.Movements.CreateTx(tx, mv); err != nil {
			return err
		}
		return recordEventTx(tx, s.repos.Events, s.clock.now(), "lot.consume", map[string]any{
			"lot_id":     lot.ID,
			"product_id": lot.ProductID,
			"taken":      step.Taken,
			"after":      step.After,
			"deleted":    step.Deleted,
		})
	})
	if err != nil {
		return nil, err
	}
	return &step, nil
}

// ConsumeFIFO drains the product's lots soonest best-before first until qty
// is satisfied or stock runs out. Each lot is decremented in its own
// transaction: on error the steps already applied stay applied and are
// returned alongside the error. Asking for more than is available is not an
// error; the shortfall is reported in RemainingUnconsumedQty.
func (s *stockService) ConsumeFIFO(ctx context.Context, productID uint, qty float64) (*dto.FIFOResponse, error) {
	if !validQty(qty) {
		return nil, invalid("qty must be a positive number")
	}
	if _, err := s.repos.Products.FindByID(ctx, productID); err != nil {
		return nil, lookupErr(err, "product", productID)
	}
	lots, err := s.repos.Lots.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(lots) == 0 {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNoStock)
	}
	SortFIFO(lots)

	res := &dto.FIFOResponse{
		ProductID:    productID,
		RequestedQty: qty,
		Operations:   make([]dto.ConsumeStep, 0, len(lots)),
	}
	for _, l := range lots {
		res.TotalBefore += l.Qty
	}

	var consumed float64
	for _, l := range lots {
		remaining := qty - consumed
		if remaining <= epsilon {
			break
		}
		step, err := s.takeFromLot(ctx, l.ID, math.Min(remaining, l.Qty), strPtr(noteFIFO))
		if errors.Is(err, ErrNotFound) {
			// consumed or deleted by someone else since the listing
			continue
		}
		if err != nil {
			finishFIFO(res, consumed)
			return res, err
		}
		consumed += step.Taken
		res.Operations = append(res.Operations, *step)
	}

	finishFIFO(res, consumed)
	log.Debug().
		Uint("product_id", productID).
		Float64("requested", qty).
		Float64("consumed", res.ConsumedQty).
		Int("lots_touched", len(res.Operations)).
		Msg("fifo consumption")
	return res, nil
}

func finishFIFO(res *dto.FIFOResponse, consumed float64) {
	remaining := res.RequestedQty - consumed
	if remaining <= epsilon {
		remaining = 0
	}
	res.ConsumedQty = consumed
	res.RemainingUnconsumedQty = remaining
	res.TotalAfter = math.Max(res.TotalBefore-consumed, 0)
}

// SortFIFO orders lots by best-before ascending with undated (or unparsable)
// lots last; equal dates fall back to lot id so the order is reproducible.
func SortFIFO(lots []model.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		return fifoLess(lots[i], lots[j])
	})
}

func fifoLess(a, b model.Lot) bool {
	ad, aDated := retention.ParseDate(a.BestBefore)
	bd, bDated := retention.ParseDate(b.BestBefore)
	if aDated != bDated {
		return aDated
	}
	if aDated && !ad.Equal(bd) {
		return ad.Before(bd)
	}
	return a.ID < b.ID
}
