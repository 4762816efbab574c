package repository

import (
	"go-sarpras-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseFilter narrows FindAll.
type PurchaseFilter struct {
	RequesterID *uuid.UUID
	Status      model.PurchaseStatus
}

type PurchaseRepository interface {
	Create(request *model.PurchaseRequest) error
	FindAll(filter PurchaseFilter) ([]model.PurchaseRequest, error)
	FindByID(id uuid.UUID) (*model.PurchaseRequest, error)
	Update(request *model.PurchaseRequest) error
	Delete(id uuid.UUID) error
}

type purchaseRepo struct {
	db *gorm.DB
}

func NewPurchaseRepo(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db}
}

func (r *purchaseRepo) Create(request *model.PurchaseRequest) error {
	return r.db.Create(request).Error
}

func (r *purchaseRepo) FindAll(filter PurchaseFilter) ([]model.PurchaseRequest, error) {
	q := r.db.Preload("Items").Preload("Requester").Preload("Reviewer").Order("created_at DESC")
	if filter.RequesterID != nil {
		q = q.Where("requester_id = ?", *filter.RequesterID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var requests []model.PurchaseRequest
	err := q.Find(&requests).Error
	return requests, err
}

func (r *purchaseRepo) FindByID(id uuid.UUID) (*model.PurchaseRequest, error) {
	var request model.PurchaseRequest
	err := r.db.Preload("Items").Preload("Requester").Preload("Reviewer").First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *purchaseRepo) Update(request *model.PurchaseRequest) error {
	return r.db.Save(request).Error
}

func (r *purchaseRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.PurchaseRequest{}, "id = ?", id).Error
}
