package repository

import (
	"time"

	"go-sarpras-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BorrowFilter narrows FindAll. Zero values mean "no filter".
type BorrowFilter struct {
	AssetID     *uuid.UUID
	BorrowerID  *uuid.UUID
	Status      model.BorrowStatus
	OverdueOnly bool
}

type BorrowRepository interface {
	FindAll(filter BorrowFilter) ([]model.AssetBorrow, error)
	FindByID(id uuid.UUID) (*model.AssetBorrow, error)
	FindOverdue(now time.Time) ([]model.AssetBorrow, error)
	CountActiveForAsset(assetID uuid.UUID) (int64, error)
	Delete(id uuid.UUID) error
}

type borrowRepo struct {
	db *gorm.DB
}

func NewBorrowRepo(db *gorm.DB) BorrowRepository {
	return &borrowRepo{db}
}

func (r *borrowRepo) FindAll(filter BorrowFilter) ([]model.AssetBorrow, error) {
	q := r.db.Preload("Asset").Preload("Borrower").Order("borrow_date DESC")
	if filter.AssetID != nil {
		q = q.Where("asset_id = ?", *filter.AssetID)
	}
	if filter.BorrowerID != nil {
		q = q.Where("borrower_id = ?", *filter.BorrowerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.OverdueOnly {
		q = q.Where("status = ? AND expected_return_date < ?", model.StatusBorrowed, time.Now())
	}
	var borrows []model.AssetBorrow
	err := q.Find(&borrows).Error
	return borrows, err
}

func (r *borrowRepo) FindByID(id uuid.UUID) (*model.AssetBorrow, error) {
	var borrow model.AssetBorrow
	err := r.db.Preload("Asset").Preload("Borrower").First(&borrow, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &borrow, nil
}

func (r *borrowRepo) FindOverdue(now time.Time) ([]model.AssetBorrow, error) {
	var borrows []model.AssetBorrow
	err := r.db.Preload("Asset").Preload("Borrower").
		Where("status = ? AND expected_return_date IS NOT NULL AND expected_return_date < ?", model.StatusBorrowed, now).
		Find(&borrows).Error
	return borrows, err
}

func (r *borrowRepo) CountActiveForAsset(assetID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.Model(&model.AssetBorrow{}).
		Where("asset_id = ? AND status = ?", assetID, model.StatusBorrowed).
		Count(&n).Error
	return n, err
}

// Delete hard-deletes the borrow row. Guarded by the service: RETURNED
// rows are history and must never be removed.
func (r *borrowRepo) Delete(id uuid.UUID) error {
	return r.db.Unscoped().Delete(&model.AssetBorrow{}, "id = ?", id).Error
}
