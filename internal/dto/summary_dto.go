package dto

import "github.com/bryan1993-HA/domovra-addons/internal/retention"

// HASummaryResponse feeds the home-automation sensors.
type HASummaryResponse struct {
	Products   int64            `json:"products"`
	Lots       int64            `json:"lots"`
	Soon       int              `json:"soon"`
	Urgent     int              `json:"urgent"`
	LowStock   int              `json:"low_stock"`
	Thresholds retention.Policy `json:"thresholds"`
	AsOf       string           `json:"as_of"`
}

type ShoppingFilter struct {
	Show string `form:"show" validate:"omitempty,oneof=outofstock low all"`
	Q    string `form:"q"`
}

type ShoppingItem struct {
	ProductID uint     `json:"product_id"`
	Name      string   `json:"name"`
	Unit      string   `json:"unit"`
	QtyTotal  float64  `json:"qty_total"`
	MinQty    *float64 `json:"min_qty"`
	Missing   float64  `json:"missing"`
}

type ShoppingListResponse struct {
	Show  string         `json:"show"`
	Q     string         `json:"q"`
	AsOf  string         `json:"as_of"`
	Items []ShoppingItem `json:"items"`
}
