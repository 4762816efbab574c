package model

import "time"

type AssetCondition string

const (
	ConditionGood        AssetCondition = "GOOD"
	ConditionDamaged     AssetCondition = "DAMAGED"
	ConditionNeedsRepair AssetCondition = "NEEDS_REPAIR"
	ConditionDisposed    AssetCondition = "DISPOSED"
)

// FixedAsset is a non-consumable item lent out as a whole (projector,
// laptop, lab kit). Condition is updated on intake, inspection and return.
type FixedAsset struct {
	BaseModel
	AssetNumber string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"asset_number" validate:"required"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category    string         `gorm:"type:varchar(100)" json:"category"`
	Location    string         `gorm:"type:varchar(255)" json:"location"`
	ImageURL    string         `gorm:"type:text" json:"image_url"`
	AcquiredAt  *time.Time     `gorm:"type:date" json:"acquired_at,omitempty"`
	Condition   AssetCondition `gorm:"type:varchar(20);not null;default:'GOOD'" json:"condition" validate:"omitempty,oneof=GOOD DAMAGED NEEDS_REPAIR DISPOSED"`

	Borrows []AssetBorrow `gorm:"foreignKey:AssetID" json:"borrows,omitempty"`
}

// Borrowable reports whether the asset's condition allows a new loan.
// Hanya DAMAGED dan DISPOSED yang memblokir; NEEDS_REPAIR tetap bisa dipinjam.
func (a *FixedAsset) Borrowable() bool {
	return a.Condition != ConditionDamaged && a.Condition != ConditionDisposed
}
