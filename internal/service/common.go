package service

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/bryan1993-HA/domovra-addons/internal/model"
	"github.com/bryan1993-HA/domovra-addons/internal/repository"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// epsilon absorbs floating point drift when deciding a quantity is exhausted.
const epsilon = 1e-9

// Clock returns the current time. Tests inject a fixed one.
type Clock func() time.Time

// Repos bundles the repositories the inventory services work against.
type Repos struct {
	Products  repository.ProductRepository
	Locations repository.LocationRepository
	Lots      repository.LotRepository
	Movements repository.MovementRepository
	Events    repository.EventRepository
}

// NewRepos builds every repository on the same database handle.
func NewRepos(db *gorm.DB) Repos {
	return Repos{
		Products:  repository.NewProductRepository(db),
		Locations: repository.NewLocationRepository(db),
		Lots:      repository.NewLotRepository(db),
		Movements: repository.NewMovementRepository(db),
		Events:    repository.NewEventRepository(db),
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func (c Clock) today() string {
	return c.now().Format(model.DateLayout)
}

// recordEventTx appends one journal entry inside the caller's transaction.
func recordEventTx(tx *gorm.DB, events repository.EventRepository, at time.Time, kind string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return events.CreateTx(tx, &model.Event{Ts: at, Kind: kind, Payload: datatypes.JSON(b)})
}

func validQty(q float64) bool {
	return !math.IsNaN(q) && !math.IsInf(q, 0) && q > 0
}

// normalizeDate trims s, maps "" to nil and rejects anything but YYYY-MM-DD.
func normalizeDate(field string, s *string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil, nil
	}
	if _, err := time.Parse(model.DateLayout, v); err != nil {
		return nil, invalid("%s must be YYYY-MM-DD, got %q", field, v)
	}
	return &v, nil
}

// trimOrNil trims s and maps "" to nil.
func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func strPtr(s string) *string { return &s }
