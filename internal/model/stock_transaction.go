package model

import "github.com/google/uuid"

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// StockTransaction is one immutable ledger row per stock movement. It is
// created in the same database transaction as the counter update and never
// mutated afterwards; corrections are made by a reversing entry.
//
// MaterialID is nullable with ON DELETE SET NULL: deleting a material
// detaches its history instead of cascading into it.
type StockTransaction struct {
	BaseModel
	MaterialID   *uuid.UUID   `gorm:"type:uuid;index;constraint:OnDelete:SET NULL" json:"material_id" validate:"required"`
	Material     *Material    `json:"material,omitempty" validate:"-"`
	Type         MovementType `gorm:"type:varchar(10);not null" json:"type" validate:"required,oneof=IN OUT"`
	Quantity     int          `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	BalanceAfter int          `gorm:"not null" json:"balance_after"` // Snapshot stok setelah movement
	Reason       string       `gorm:"type:text" json:"reason"`

	UserID *uuid.UUID `gorm:"type:uuid" json:"user_id,omitempty"`
	User   *User      `json:"user,omitempty" validate:"-"`
}
