package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bryan1993-HA/domovra-addons/internal/config"
	"github.com/bryan1993-HA/domovra-addons/internal/dto"
	"github.com/bryan1993-HA/domovra-addons/internal/model"
	"github.com/bryan1993-HA/domovra-addons/internal/retention"

	"gorm.io/gorm"
)

type LocationService interface {
	Create(ctx context.Context, req dto.CreateLocationRequest) (*dto.CreatedResponse, error)
	Get(ctx context.Context, id uint) (*dto.LocationResponse, error)
	List(ctx context.Context) ([]dto.LocationSummaryResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateLocationRequest) (*dto.LocationResponse, error)
	// Delete removes a location and its lots. With moveTo set, lots are moved
	// there first; a refused move aborts the whole deletion.
	Delete(ctx context.Context, id uint, moveTo *uint) (*dto.DeleteLocationResponse, error)
}

type locationService struct {
	repos     Repos
	retention config.RetentionSource
	clock     Clock
}

func NewLocationService(repos Repos, retention config.RetentionSource, clock Clock) LocationService {
	return &locationService{repos: repos, retention: retention, clock: clock}
}

// Create returns the existing location when the name is already taken,
// ignoring case.
func (s *locationService) Create(ctx context.Context, req dto.CreateLocationRequest) (*dto.CreatedResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	existing, err := s.repos.Locations.FindByName(ctx, name)
	if err == nil {
		return &dto.CreatedResponse{ID: existing.ID, Existing: true, MatchedOn: "name"}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	loc := &model.Location{Name: name, IsFreezer: req.IsFreezer, Description: trimOrNil(req.Description)}
	err = runTx(ctx, s.repos.Locations.DB(), func(tx *gorm.DB) error {
		if err := s.repos.Locations.CreateTx(tx, loc); err != nil {
			return err
		}
		return recordEventTx(tx, s.repos.Events, s.clock.now(), "location.add", map[string]any{
			"location_id": loc.ID,
			"name":        loc.Name,
			"is_freezer":  loc.IsFreezer,
		})
	})
	if err != nil {
		if existing, findErr := s.repos.Locations.FindByName(ctx, name); findErr == nil {
			return &dto.CreatedResponse{ID: existing.ID, Existing: true, MatchedOn: "name"}, nil
		}
		return nil, err
	}
	return &dto.CreatedResponse{ID: loc.ID}, nil
}

func (s *locationService) Get(ctx context.Context, id uint) (*dto.LocationResponse, error) {
	loc, err := s.repos.Locations.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "location", id)
	}
	resp := mapLocation(*loc)
	return &resp, nil
}

// List returns every location with its lot count and how many of those lots
// are close to (yellow) or past (red) their retention limit.
func (s *locationService) List(ctx context.Context) ([]dto.LocationSummaryResponse, error) {
	locs, err := s.repos.Locations.List(ctx)
	if err != nil {
		return nil, err
	}
	lots, err := s.repos.Lots.List(ctx, dto.LotFilter{})
	if err != nil {
		return nil, err
	}

	policy := s.retention.Policy()
	now := s.clock.now()
	counts := make(map[uint]*retention.Counts, len(locs))
	total := make(map[uint]int, len(locs))
	for _, l := range lots {
		c, ok := counts[l.LocationID]
		if !ok {
			c = &retention.Counts{}
			counts[l.LocationID] = c
		}
		c.Add(policy.Classify(l.BestBefore, now))
		total[l.LocationID]++
	}

	result := make([]dto.LocationSummaryResponse, 0, len(locs))
	for _, loc := range locs {
		item := dto.LocationSummaryResponse{LocationResponse: mapLocation(loc), LotsCount: total[loc.ID]}
		if c := counts[loc.ID]; c != nil {
			item.SoonCount = c.Yellow
			item.UrgentCount = c.Red
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *locationService) Update(ctx context.Context, id uint, req dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	loc, err := s.repos.Locations.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "location", id)
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name cannot be empty")
		}
		if other, err := s.repos.Locations.FindByName(ctx, name); err == nil && other.ID != id {
			return nil, invalid("name %q is already used by location %d", name, other.ID)
		}
		loc.Name = name
	}
	if req.IsFreezer != nil {
		loc.IsFreezer = *req.IsFreezer
	}
	if req.Description != nil {
		loc.Description = trimOrNil(req.Description)
	}

	err = runTx(ctx, s.repos.Locations.DB(), func(tx *gorm.DB) error {
		if err := s.repos.Locations.UpdateTx(tx, loc); err != nil {
			return err
		}
		return recordEventTx(tx, s.repos.Events, s.clock.now(), "location.update", map[string]any{
			"location_id": id,
			"name":        loc.Name,
			"is_freezer":  loc.IsFreezer,
		})
	})
	if err != nil {
		return nil, err
	}
	resp := mapLocation(*loc)
	return &resp, nil
}

func (s *locationService) Delete(ctx context.Context, id uint, moveTo *uint) (*dto.DeleteLocationResponse, error) {
	resp := &dto.DeleteLocationResponse{ID: id}
	err := runTx(ctx, s.repos.Locations.DB(), func(tx *gorm.DB) error {
		loc, err := s.repos.Locations.FindByIDTx(tx, id)
		if err != nil {
			return lookupErr(err, "location", id)
		}
		if moveTo != nil {
			moved, err := moveLotsTx(tx, s.repos, id, *moveTo)
			if err != nil {
				return err
			}
			resp.MovedLots = moved
		}

		lotIDs, err := s.repos.Lots.IDsByLocationTx(tx, id)
		if err != nil {
			return err
		}
		if _, err := s.repos.Movements.DeleteByLotIDsTx(tx, lotIDs); err != nil {
			return err
		}
		deleted, err := s.repos.Lots.DeleteByIDsTx(tx, lotIDs)
		if err != nil {
			return err
		}
		resp.DeletedLots = deleted
		if err := s.repos.Locations.DeleteTx(tx, id); err != nil {
			return err
		}
		return recordEventTx(tx, s.repos.Events, s.clock.now(), "location.delete", map[string]any{
			"location_id":  id,
			"name":         loc.Name,
			"move_to":      moveTo,
			"moved_lots":   resp.MovedLots,
			"deleted_lots": deleted,
		})
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
