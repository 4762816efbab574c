package repository

import (
	"go-sarpras-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssetFilter narrows FindAll. Zero values mean "no filter".
type AssetFilter struct {
	Category  string
	Condition model.AssetCondition
}

type AssetRepository interface {
	Create(asset *model.FixedAsset) error
	FindAll(filter AssetFilter) ([]model.FixedAsset, error)
	FindByID(id uuid.UUID) (*model.FixedAsset, error)
	FindByAssetNumber(number string) (*model.FixedAsset, error)
	Update(asset *model.FixedAsset) error
	Delete(id uuid.UUID) error
}

type assetRepo struct {
	db *gorm.DB
}

func NewAssetRepo(db *gorm.DB) AssetRepository {
	return &assetRepo{db}
}

func (r *assetRepo) Create(asset *model.FixedAsset) error {
	return r.db.Create(asset).Error
}

func (r *assetRepo) FindAll(filter AssetFilter) ([]model.FixedAsset, error) {
	q := r.db.Order("asset_number ASC")
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Condition != "" {
		q = q.Where("condition = ?", filter.Condition)
	}
	var assets []model.FixedAsset
	err := q.Find(&assets).Error
	return assets, err
}

func (r *assetRepo) FindByID(id uuid.UUID) (*model.FixedAsset, error) {
	var asset model.FixedAsset
	err := r.db.First(&asset, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepo) FindByAssetNumber(number string) (*model.FixedAsset, error) {
	var asset model.FixedAsset
	err := r.db.First(&asset, "asset_number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepo) Update(asset *model.FixedAsset) error {
	return r.db.Save(asset).Error
}

func (r *assetRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.FixedAsset{}, "id = ?", id).Error
}
