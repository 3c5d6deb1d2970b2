package dto

import (
	"encoding/json"
	"time"
)

type JournalFilter struct {
	Limit int `form:"limit"`
}

type EventResponse struct {
	ID      uint            `json:"id"`
	Ts      time.Time       `json:"ts"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

type ClearJournalResponse struct {
	Deleted int64 `json:"deleted"`
}
