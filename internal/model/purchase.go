package model

import (
	"time"

	"github.com/google/uuid"
)

type PurchaseStatus string

const (
	PurchasePending  PurchaseStatus = "PENDING"
	PurchaseApproved PurchaseStatus = "APPROVED"
	PurchaseRejected PurchaseStatus = "REJECTED"
)

// PurchaseRequest is a staff request to procure materials. Approval only
// flips the status and notifies the requester; actual goods receipt is
// recorded through the stock ledger when the goods arrive.
type PurchaseRequest struct {
	BaseModel
	RequesterID uuid.UUID      `gorm:"type:uuid;index;not null" json:"requester_id"`
	Requester   *User          `gorm:"foreignKey:RequesterID" json:"requester,omitempty" validate:"-"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title" validate:"required"`
	Status      PurchaseStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`

	ReviewerID *uuid.UUID `gorm:"type:uuid" json:"reviewer_id,omitempty"`
	Reviewer   *User      `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty" validate:"-"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	ReviewNote string     `gorm:"type:text" json:"review_note"`

	Items []PurchaseRequestItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"items" validate:"required,min=1,dive"`
}

type PurchaseRequestItem struct {
	BaseModel
	RequestID      uuid.UUID `gorm:"type:uuid;index;not null" json:"request_id"`
	MaterialName   string    `gorm:"type:varchar(255);not null" json:"material_name" validate:"required"`
	Quantity       int       `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	Unit           string    `gorm:"type:varchar(20)" json:"unit"`
	EstimatedPrice int64     `gorm:"default:0" json:"estimated_price"`
	Note           string    `gorm:"type:text" json:"note"`
}
