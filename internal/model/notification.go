package model

import "github.com/google/uuid"

type NotificationType string

const (
	NotifLowStock        NotificationType = "LOW_STOCK"
	NotifOverdue         NotificationType = "OVERDUE"
	NotifPurchaseRequest NotificationType = "PURCHASE_REQUEST"
	NotifSystem          NotificationType = "SYSTEM"
)

// Notification is created by trigger scans and domain events; after insert
// only the read flag is ever flipped.
type Notification struct {
	BaseModel
	UserID     uuid.UUID        `gorm:"type:uuid;index;not null" json:"user_id"`
	Title      string           `gorm:"type:varchar(255);not null" json:"title"`
	Message    string           `gorm:"type:text" json:"message"`
	Type       NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	IsRead     bool             `gorm:"default:false;index" json:"is_read"`
	ActionLink string           `gorm:"type:varchar(255)" json:"action_link"`
	Metadata   string           `gorm:"type:text" json:"metadata,omitempty"` // JSON payload untuk frontend
}
