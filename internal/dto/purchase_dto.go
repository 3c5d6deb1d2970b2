package dto

// PurchaseRequest records a shop purchase. The stocked quantity is
// Qty × Multiplier. PriceTotal is a free-form string so "3,49" is accepted.
type PurchaseRequest struct {
	ProductID      uint     `json:"product_id"       validate:"required"`
	LocationID     uint     `json:"location_id"      validate:"required"`
	Qty            float64  `json:"qty"              validate:"required,gt=0"`
	Multiplier     int      `json:"multiplier"       validate:"omitempty,min=1"`
	BestBefore     *string  `json:"best_before"      validate:"omitempty,datetime=2006-01-02"`
	FrozenOn       *string  `json:"frozen_on"        validate:"omitempty,datetime=2006-01-02"`
	ArticleName    *string  `json:"article_name"     validate:"omitempty,max=200"`
	Brand          *string  `json:"brand"            validate:"omitempty,max=120"`
	EAN            *string  `json:"ean"              validate:"omitempty,max=32"`
	Store          *string  `json:"store"            validate:"omitempty,max=120"`
	PriceTotal     *string  `json:"price_total"      validate:"omitempty,max=20"`
	QtyPerUnit     *float64 `json:"qty_per_unit"     validate:"omitempty,gt=0"`
	UnitAtPurchase *string  `json:"unit_at_purchase" validate:"omitempty,max=20"`
	Note           *string  `json:"note"             validate:"omitempty,max=500"`
}

type PurchaseResponse struct {
	MergeResult
	QtyAdded       float64 `json:"qty_added"`
	BarcodeUpdated bool    `json:"barcode_updated"`
}
