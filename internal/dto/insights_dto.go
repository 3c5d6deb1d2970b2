package dto

// ProductInsights is derived from the movement ledger and live lots. Every
// field is nil when there is not enough data to compute it.
type ProductInsights struct {
	ProductID    uint     `json:"product_id"`
	LastIn       *string  `json:"last_in"`
	LastOut      *string  `json:"last_out"`
	AvgShelfDays *float64 `json:"avg_shelf_days"`
	ExpiredRate  *float64 `json:"expired_rate"`
}

// ReconcileEntry compares live lot quantity with the signed movement sum.
type ReconcileEntry struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	LiveQty   float64 `json:"live_qty"`
	LedgerQty float64 `json:"ledger_qty"`
	Drift     float64 `json:"drift"`
}
