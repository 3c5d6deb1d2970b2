package dto

type MovementFilter struct {
	Type  string `form:"type"  validate:"omitempty,oneof=IN OUT"`
	Page  int    `form:"page"  validate:"omitempty,min=1"`
	Limit int    `form:"limit" validate:"omitempty,min=1,max=500"`
}

type MovementResponse struct {
	ID        uint    `json:"id"`
	LotID     uint    `json:"lot_id"`
	ProductID uint    `json:"product_id"`
	Type      string  `json:"type"`
	Qty       float64 `json:"qty"`
	Ts        string  `json:"ts"`
	Note      *string `json:"note"`
}

type MovementListResponse struct {
	Data       []MovementResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
