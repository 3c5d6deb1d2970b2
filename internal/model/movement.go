package model

// Movement types. The ledger is append-only.
const (
	MovementIn  = "IN"
	MovementOut = "OUT"
)

// Movement records one quantity change against a lot. LotID may point at a
// lot that no longer exists; ProductID keeps product history queryable after
// the lot is gone.
type Movement struct {
	ID        uint    `gorm:"primaryKey"`
	LotID     uint    `gorm:"not null;index"`
	ProductID uint    `gorm:"not null;default:0;index"`
	Type      string  `gorm:"size:3;not null"`
	Qty       float64 `gorm:"type:double precision;not null"`
	Ts        string  `gorm:"size:10;not null;index"`
	Note      *string
}
