package dto

type CreateLocationRequest struct {
	Name        string  `json:"name"        validate:"required,max=80"`
	IsFreezer   bool    `json:"is_freezer"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

type UpdateLocationRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=80"`
	IsFreezer   *bool   `json:"is_freezer"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

type MoveLotsRequest struct {
	ToLocationID uint `json:"to_location_id" validate:"required"`
}

type LocationResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	IsFreezer   bool    `json:"is_freezer"`
	Description *string `json:"description"`
}

// LocationSummaryResponse carries per-location lot counts. Soon and urgent
// follow the retention status of each lot (yellow and red).
type LocationSummaryResponse struct {
	LocationResponse
	LotsCount   int `json:"lots_count"`
	SoonCount   int `json:"soon_count"`
	UrgentCount int `json:"urgent_count"`
}

type MoveLotsResponse struct {
	FromLocationID uint  `json:"from_location_id"`
	ToLocationID   uint  `json:"to_location_id"`
	Moved          int64 `json:"moved"`
}

type DeleteLocationResponse struct {
	ID          uint  `json:"id"`
	MovedLots   int64 `json:"moved_lots"`
	DeletedLots int64 `json:"deleted_lots"`
}
