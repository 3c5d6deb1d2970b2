package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Expected outcomes are reported with these sentinels so callers can branch
// with errors.Is. Anything else is an unexpected datastore failure.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrFreezerMismatch  = errors.New("freezer flags differ between locations")
	ErrNoStock          = errors.New("no stock for product")
	ErrConcurrentUpdate = errors.New("lot changed concurrently")
)

// lookupErr turns gorm's not-found into ErrNotFound and passes other errors through.
func lookupErr(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return err
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}
