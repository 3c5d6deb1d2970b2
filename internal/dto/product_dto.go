package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name                   string   `json:"name"                      validate:"required,max=120"`
	Unit                   string   `json:"unit"                      validate:"max=20"`
	DefaultShelfLifeDays   *int     `json:"default_shelf_life_days"   validate:"omitempty,min=0"`
	Barcode                *string  `json:"barcode"                   validate:"omitempty,max=32"`
	MinQty                 *float64 `json:"min_qty"`
	LowStockEnabled        *bool    `json:"low_stock_enabled"`
	ExpiryKind             string   `json:"expiry_kind"               validate:"omitempty,oneof=DLC DDM"`
	DefaultFreezeShelfDays *int     `json:"default_freeze_shelf_days" validate:"omitempty,min=0"`
	NoFreeze               bool     `json:"no_freeze"`
	Category               *string  `json:"category"                  validate:"omitempty,max=60"`
	ParentID               *uint    `json:"parent_id"`
}

// UpdateProductRequest is a partial update: nil fields are left untouched.
// ClearMinQty removes the reorder threshold (JSON null cannot be told apart
// from an absent field).
type UpdateProductRequest struct {
	Name                   *string  `json:"name"                      validate:"omitempty,min=1,max=120"`
	Unit                   *string  `json:"unit"                      validate:"omitempty,max=20"`
	DefaultShelfLifeDays   *int     `json:"default_shelf_life_days"   validate:"omitempty,min=0"`
	Barcode                *string  `json:"barcode"                   validate:"omitempty,max=32"`
	MinQty                 *float64 `json:"min_qty"`
	ClearMinQty            bool     `json:"clear_min_qty"`
	LowStockEnabled        *bool    `json:"low_stock_enabled"`
	ExpiryKind             *string  `json:"expiry_kind"               validate:"omitempty,oneof=DLC DDM"`
	DefaultFreezeShelfDays *int     `json:"default_freeze_shelf_days" validate:"omitempty,min=0"`
	NoFreeze               *bool    `json:"no_freeze"`
	Category               *string  `json:"category"                  validate:"omitempty,max=60"`
	ParentID               *uint    `json:"parent_id"`
}

type AdjustProductRequest struct {
	// Delta is expressed in unit steps: +1 on a product in grams adds 50 g.
	Delta float64 `json:"delta" validate:"required"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ProductFilter struct {
	Q string `form:"q"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID                     uint     `json:"id"`
	Name                   string   `json:"name"`
	Unit                   string   `json:"unit"`
	UnitFamily             string   `json:"unit_family"`
	Step                   float64  `json:"step"`
	DefaultShelfLifeDays   int      `json:"default_shelf_life_days"`
	Barcode                *string  `json:"barcode"`
	MinQty                 *float64 `json:"min_qty"`
	LowStockEnabled        bool     `json:"low_stock_enabled"`
	ExpiryKind             string   `json:"expiry_kind"`
	DefaultFreezeShelfDays *int     `json:"default_freeze_shelf_days"`
	NoFreeze               bool     `json:"no_freeze"`
	Category               *string  `json:"category"`
	ParentID               *uint    `json:"parent_id"`
}

// ProductStatsResponse adds live stock aggregates. Delta is qty_total - min_qty,
// nil when the product has no threshold.
type ProductStatsResponse struct {
	ProductResponse
	QtyTotal  float64  `json:"qty_total"`
	LotsCount int64    `json:"lots_count"`
	Delta     *float64 `json:"delta"`
}

// CreatedResponse is returned by idempotent creates. Existing is true when a
// conflicting row was found and its id returned instead.
type CreatedResponse struct {
	ID        uint   `json:"id"`
	Existing  bool   `json:"existing"`
	MatchedOn string `json:"matched_on,omitempty"` // "name" | "barcode"
}

type AdjustProductResponse struct {
	ProductID uint          `json:"product_id"`
	Step      float64       `json:"step"`
	Qty       float64       `json:"qty"`
	Action    string        `json:"action"` // "add" | "consume"
	Lot       *MergeResult  `json:"lot,omitempty"`
	FIFO      *FIFOResponse `json:"fifo,omitempty"`
}
