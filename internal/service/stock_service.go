package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bryan1993-HA/domovra-addons/internal/config"
	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/model"
	"github.com/bryan1993-HA/domovra-addons/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Merge-or-create outcomes.
const (
	ActionMerge  = "merge"
	ActionInsert = "insert"
)

// StockService is the lot store: it owns lot quantities and keeps the
// movement ledger in step with them. Every mutation writes the lot row, its
// movement and its journal event in one transaction.
type StockService interface {
	CreateLot(ctx context.Context, req dto.CreateLotRequest) (*dto.LotResponse, error)
	MergeOrCreate(ctx context.Context, req dto.MergeLotRequest) (*dto.MergeResult, error)
	UpdateLot(ctx context.Context, id uint, req dto.UpdateLotRequest) (*dto.LotResponse, error)
	ConsumeLot(ctx context.Context, id uint, qty float64) (*dto.ConsumeStep, error)
	DeleteLot(ctx context.Context, id uint) error
	GetLot(ctx context.Context, id uint) (*dto.LotResponse, error)
	ListLots(ctx context.Context, filter dto.LotFilter) ([]dto.LotResponse, error)
	MoveLots(ctx context.Context, fromID, toID uint) (*dto.MoveLotsResponse, error)

	ConsumeFIFO(ctx context.Context, productID uint, qty float64) (*dto.FIFOResponse, error)
	AdjustProduct(ctx context.Context, productID uint, delta float64) (*dto.AdjustProductResponse, error)
	RecordPurchase(ctx context.Context, req dto.PurchaseRequest) (*dto.PurchaseResponse, error)

	ListMovements(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error)
	Reconcile(ctx context.Context) ([]dto.ReconcileEntry, error)
}

type stockService struct {
	repos     Repos
	retention config.RetentionSource
	clock     Clock
}

func NewStockService(repos Repos, retention config.RetentionSource, clock Clock) StockService {
	return &stockService{repos: repos, retention: retention, clock: clock}
}

func (s *stockService) db() *gorm.DB { return s.repos.Lots.DB() }

// ── Create ────────────────────────────────────────────────────────────────────

func (s *stockService) CreateLot(ctx context.Context, req dto.CreateLotRequest) (*dto.LotResponse, error) {
	if !validQty(req.Qty) {
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

	lot := &model.Lot{
		ProductID:  req.ProductID,
		LocationID: req.LocationID,
		Qty:        req.Qty,
		BestBefore: bestBefore,
		FrozenOn:   frozenOn,
		Purchase:   purchaseFromDetails(req.Purchase),
	}
	err = runTx(ctx, s.db(), func(tx *gorm.DB) error {
		if err := s.checkRefsTx(tx, lot.ProductID, lot.LocationID); err != nil {
			return err
		}
		return s.insertLotTx(tx, lot, nil)
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Uint("lot_id", lot.ID).Uint("product_id", lot.ProductID).Float64("qty", lot.Qty).Msg("lot created")
	return s.GetLot(ctx, lot.ID)
}

// checkRefsTx makes sure product and location exist before any write.
func (s *stockService) checkRefsTx(tx *gorm.DB, productID, locationID uint) error {
	if _, err := s.repos.Products.FindByIDTx(tx, productID); err != nil {
		return lookupErr(err, "product", productID)
	}
	if _, err := s.repos.Locations.FindByIDTx(tx, locationID); err != nil {
		return lookupErr(err, "location", locationID)
	}
	return nil
}

// insertLotTx stores a new lot dated today with its IN movement and journal entry.
func (s *stockService) insertLotTx(tx *gorm.DB, lot *model.Lot, note *string) error {
	today := s.clock.today()
	if lot.CreatedOn == nil {
		lot.CreatedOn = strPtr(today)
	}
	if err := s.repos.Lots.CreateTx(tx, lot); err != nil {
		return err
	}
	mv := &model.Movement{
		LotID:     lot.ID,
		ProductID: lot.ProductID,
		Type:      model.MovementIn,
		Qty:       lot.Qty,
		Ts:        today,
		Note:      note,
	}
	if err := s.repos.Movements.CreateTx(tx, mv); err != nil {
		return err
	}
	return recordEventTx(tx, s.repos.Events, s.clock.now(), "lot.add", map[string]any{
		"lot_id":      lot.ID,
		"product_id":  lot.ProductID,
		"location_id": lot.LocationID,
		"qty":         lot.Qty,
		"best_before": lot.BestBefore,
	})
}

// ── Merge-or-create ───────────────────────────────────────────────────────────

func (s *stockService) MergeOrCreate(ctx context.Context, req dto.MergeLotRequest) (*dto.MergeResult, error) {
	if !validQty(req.QtyDelta) {
		return nil, invalid("qty_delta must be a positive number")
	}
	bestBefore, err := normalizeDate("best_before", req.BestBefore)
	if err != nil {
		return nil, err
	}
	frozenOn, err := normalizeDate("frozen_on", req.FrozenOn)
	if err != nil {
		return nil, err
	}

	var res *dto.MergeResult
	err = runTx(ctx, s.db(), func(tx *gorm.DB) error {
		if err := s.checkRefsTx(tx, req.ProductID, req.LocationID); err != nil {
			return err
		}
		res, err = s.mergeOrCreateTx(tx, &model.Lot{
			ProductID:  req.ProductID,
			LocationID: req.LocationID,
			Qty:        req.QtyDelta,
			BestBefore: bestBefore,
			FrozenOn:   frozenOn,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// mergeOrCreateTx adds candidate.Qty to the lot sharing (product, location,
// best_before, frozen_on), or inserts candidate when there is none. Purchase
// data is only stored on insert.
func (s *stockService) mergeOrCreateTx(tx *gorm.DB, candidate *model.Lot) (*dto.MergeResult, error) {
	match, err := s.repos.Lots.FindMatchTx(tx, candidate.ProductID, candidate.LocationID, candidate.BestBefore, candidate.FrozenOn)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if match == nil {
		if err := s.insertLotTx(tx, candidate, nil); err != nil {
			return nil, err
		}
		return &dto.MergeResult{Action: ActionInsert, LotID: candidate.ID, NewQty: candidate.Qty}, nil
	}

	if err := s.repos.Lots.AddQtyTx(tx, match.ID, candidate.Qty); err != nil {
		return nil, err
	}
	mv := &model.Movement{
		LotID:     match.ID,
		ProductID: match.ProductID,
		Type:      model.MovementIn,
		Qty:       candidate.Qty,
		Ts:        s.clock.today(),
		Note:      strPtr("merge"),
	}
	if err := s.repos.Movements.CreateTx(tx, mv); err != nil {
		return nil, err
	}
	updated, err := s.repos.Lots.FindByIDTx(tx, match.ID)
	if err != nil {
		return nil, err
	}
	if err := recordEventTx(tx, s.repos.Events, s.clock.now(), "lot.merge", map[string]any{
		"lot_id":  match.ID,
		"added":   candidate.Qty,
		"new_qty": updated.Qty,
	}); err != nil {
		return nil, err
	}
	return &dto.MergeResult{Action: ActionMerge, LotID: match.ID, NewQty: updated.Qty}, nil
}

// ── Update / delete ───────────────────────────────────────────────────────────

// UpdateLot overwrites quantity, location and dates. It is an administrative
// correction, not a usage event, so no movement is written.
func (s *stockService) UpdateLot(ctx context.Context, id uint, req dto.UpdateLotRequest) (*dto.LotResponse, error) {
	if !validQty(req.Qty) {
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

	err = runTx(ctx, s.db(), func(tx *gorm.DB) error {
		lot, err := s.repos.Lots.FindByIDTx(tx, id)
		if err != nil {
			return lookupErr(err, "lot", id)
		}
		if req.LocationID != lot.LocationID {
			target, err := s.repos.Locations.FindByIDTx(tx, req.LocationID)
			if err != nil {
				return lookupErr(err, "location", req.LocationID)
			}
			if lot.Location != nil && lot.Location.IsFreezer != target.IsFreezer {
				return fmt.Errorf("lot %d to location %d: %w", id, target.ID, ErrFreezerMismatch)
			}
		}
		lot.Qty = req.Qty
		lot.LocationID = req.LocationID
		lot.BestBefore = bestBefore
		lot.FrozenOn = frozenOn
		if err := s.repos.Lots.UpdateTx(tx, lot); err != nil {
			return err
		}
		return recordEventTx(tx, s.repos.Events, s.clock.now(), "lot.update", map[string]any{
			"lot_id":      id,
			"qty":         req.Qty,
			"location_id": req.LocationID,
			"best_before": bestBefore,
			"frozen_on":   frozenOn,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetLot(ctx, id)
}

// DeleteLot removes the lot together with its movements. No OUT movement is
// written: removal is administrative, not consumption.
func (s *stockService) DeleteLot(ctx context.Context, id uint) error {
	return runTx(ctx, s.db(), func(tx *gorm.DB) error {
		lot, err := s.repos.Lots.FindByIDTx(tx, id)
		if err != nil {
			return lookupErr(err, "lot", id)
		}
		if _, err := s.repos.Movements.DeleteByLotIDsTx(tx, []uint{id}); err != nil {
			return err
		}
		if _, err := s.repos.Lots.DeleteTx(tx, id); err != nil {
			return err
		}
		return recordEventTx(tx, s.repos.Events, s.clock.now(), "lot.delete", map[string]any{
			"lot_id":     id,
			"product_id": lot.ProductID,
			"qty":        lot.Qty,
		})
	})
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *stockService) GetLot(ctx context.Context, id uint) (*dto.LotResponse, error) {
	lot, err := s.repos.Lots.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "lot", id)
	}
	resp := mapLot(*lot, s.retention.Policy(), s.clock.now())
	return &resp, nil
}

// ListLots returns live lots, soonest best-before first (undated last), then
// by product name.
func (s *stockService) ListLots(ctx context.Context, filter dto.LotFilter) ([]dto.LotResponse, error) {
	lots, err := s.repos.Lots.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	policy := s.retention.Policy()
	now := s.clock.now()

	result := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		resp := mapLot(l, policy, now)
		if filter.Status != "" && resp.Status != filter.Status {
			continue
		}
		result = append(result, resp)
	}
	return result, nil
}

// ── Move ──────────────────────────────────────────────────────────────────────

func (s *stockService) MoveLots(ctx context.Context, fromID, toID uint) (*dto.MoveLotsResponse, error) {
	var moved int64
	err := runTx(ctx, s.db(), func(tx *gorm.DB) error {
		var err error
		moved, err = moveLotsTx(tx, s.repos, fromID, toID)
		if err != nil {
			return err
		}
		return recordEventTx(tx, s.repos.Events, s.clock.now(), "lot.move", map[string]any{
			"from_location_id": fromID,
			"to_location_id":   toID,
			"moved":            moved,
		})
	})
	if err != nil {
		return nil, err
	}
	return &dto.MoveLotsResponse{FromLocationID: fromID, ToLocationID: toID, Moved: moved}, nil
}

// moveLotsTx moves every lot of one location to another. Frozen stock only
// moves between freezers, fresh stock only between non-freezers.
func moveLotsTx(tx *gorm.DB, repos Repos, fromID, toID uint) (int64, error) {
	if fromID == toID {
		return 0, invalid("source and target location are the same")
	}
	from, err := repos.Locations.FindByIDTx(tx, fromID)
	if err != nil {
		return 0, lookupErr(err, "location", fromID)
	}
	to, err := repos.Locations.FindByIDTx(tx, toID)
	if err != nil {
		return 0, lookupErr(err, "location", toID)
	}
	if from.IsFreezer != to.IsFreezer {
		return 0, fmt.Errorf("move %q to %q: %w", from.Name, to.Name, ErrFreezerMismatch)
	}
	return repos.Lots.MoveTx(tx, fromID, toID)
}
