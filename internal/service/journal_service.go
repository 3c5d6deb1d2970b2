package service

import (
	"context"
	"encoding/json"

	"github.com/bryan1993-HA/domovra-addons/internal/dto"

	"gorm.io/gorm"
)

const (
	journalDefaultLimit = 200
	journalMaxLimit     = 1000
)

// JournalService exposes the operator event log. It is unrelated to the
// inventory ledger: clearing it never touches movements.
type JournalService interface {
	List(ctx context.Context, limit int) ([]dto.EventResponse, error)
	Clear(ctx context.Context) (*dto.ClearJournalResponse, error)
}

type journalService struct {
	repos Repos
	clock Clock
}

func NewJournalService(repos Repos, clock Clock) JournalService {
	return &journalService{repos: repos, clock: clock}
}

func (s *journalService) List(ctx context.Context, limit int) ([]dto.EventResponse, error) {
	switch {
	case limit <= 0:
		limit = journalDefaultLimit
	case limit > journalMaxLimit:
		limit = journalMaxLimit
	}
	events, err := s.repos.Events.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	result := make([]dto.EventResponse, 0, len(events))
	for _, e := range events {
		payload := json.RawMessage(e.Payload)
		if len(payload) == 0 {
			payload = json.RawMessage("{}")
		}
		result = append(result, dto.EventResponse{ID: e.ID, Ts: e.Ts, Kind: e.Kind, Payload: payload})
	}
	return result, nil
}

// Clear empties the journal, leaving a single "journal.clear" entry behind.
func (s *journalService) Clear(ctx context.Context) (*dto.ClearJournalResponse, error) {
	var deleted int64
	err := runTx(ctx, s.repos.Events.DB(), func(tx *gorm.DB) error {
		var err error
		deleted, err = s.repos.Events.ClearTx(tx)
		if err != nil {
			return err
		}
		return recordEventTx(tx, s.repos.Events, s.clock.now(), "journal.clear", map[string]any{"deleted": deleted})
	})
	if err != nil {
		return nil, err
	}
	return &dto.ClearJournalResponse{Deleted: deleted}, nil
}
