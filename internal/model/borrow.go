package model

import (
	"time"

	"github.com/google/uuid"
)

type BorrowStatus string

const (
	StatusBorrowed BorrowStatus = "BORROWED"
	StatusReturned BorrowStatus = "RETURNED"
	StatusLost     BorrowStatus = "LOST"
)

// AssetBorrow is one loan instance of a fixed asset. At most one row per
// asset may have status BORROWED at any time; the invariant is re-checked
// under a row lock whenever a loan is opened or re-opened.
//
// OVERDUE is never stored: it is derived from ExpectedReturnDate at read
// time (see IsOverdue).
type AssetBorrow struct {
	BaseModel
	AssetID    uuid.UUID   `gorm:"type:uuid;index;not null" json:"asset_id" validate:"uuid_required"`
	Asset      *FixedAsset `gorm:"foreignKey:AssetID" json:"asset,omitempty" validate:"-"`
	BorrowerID uuid.UUID   `gorm:"type:uuid;index;not null" json:"borrower_id" validate:"uuid_required"`
	Borrower   *User       `gorm:"foreignKey:BorrowerID" json:"borrower,omitempty" validate:"-"`

	Status             BorrowStatus `gorm:"type:varchar(20);not null;default:'BORROWED'" json:"status"`
	BorrowDate         time.Time    `gorm:"not null" json:"borrow_date"`
	ExpectedReturnDate *time.Time   `json:"expected_return_date,omitempty"`
	ActualReturnDate   *time.Time   `json:"actual_return_date,omitempty"`
	Purpose            string       `gorm:"type:varchar(255)" json:"purpose"`
	Note               string       `gorm:"type:text" json:"note"`
}

// IsOverdue derives the overdue flag at the given instant.
func (b *AssetBorrow) IsOverdue(now time.Time) bool {
	return b.Status == StatusBorrowed &&
		b.ExpectedReturnDate != nil &&
		b.ExpectedReturnDate.Before(now)
}

// BorrowResponse mirrors AssetBorrow plus the computed overdue flag.
type BorrowResponse struct {
	AssetBorrow
	IsOverdue bool `json:"is_overdue"`
}

// ToResponse stamps the derived overdue flag onto the row.
func (b AssetBorrow) ToResponse(now time.Time) BorrowResponse {
	return BorrowResponse{AssetBorrow: b, IsOverdue: b.IsOverdue(now)}
}
