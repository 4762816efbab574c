package model

// MaterialType membedakan barang habis pakai dan barang umum (legacy).
// Keduanya diperlakukan sama oleh operasi ledger.
type MaterialType string

const (
	MaterialConsumable MaterialType = "CONSUMABLE"
	MaterialGeneral    MaterialType = "GENERAL"
)

// Material is any stockable item tracked by a quantity counter against a
// minimum threshold. CurrentStock is only ever mutated through the stock
// ledger so the transaction log can always reconstruct it.
type Material struct {
	BaseModel
	Code         string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"code" validate:"required"`
	Name         string       `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category     string       `gorm:"type:varchar(100)" json:"category"`
	Unit         string       `gorm:"type:varchar(20)" json:"unit" validate:"required"`
	Type         MaterialType `gorm:"type:varchar(20);not null;default:'CONSUMABLE'" json:"type" validate:"omitempty,oneof=CONSUMABLE GENERAL"`
	MinStock     int          `gorm:"default:0" json:"min_stock" validate:"gte=0"`
	CurrentStock int          `gorm:"default:0;check:current_stock >= 0" json:"current_stock"`

	// Relasi
	Transactions []StockTransaction `json:"transactions,omitempty"`
}

// IsLowStock reports whether the material has hit its reorder threshold.
func (m *Material) IsLowStock() bool {
	return m.CurrentStock <= m.MinStock
}
