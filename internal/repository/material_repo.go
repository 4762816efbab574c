package repository

import (
	"go-sarpras-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaterialFilter narrows FindAll. Zero values mean "no filter".
type MaterialFilter struct {
	Type     model.MaterialType
	Category string
	LowStock bool
}

type MaterialRepository interface {
	Create(material *model.Material) error
	FindAll(filter MaterialFilter) ([]model.Material, error)
	FindByID(id uuid.UUID) (*model.Material, error)
	FindByCode(code string) (*model.Material, error)
	FindLowStock() ([]model.Material, error)
	Update(material *model.Material) error
	Delete(id uuid.UUID) error
}

type materialRepo struct {
	db *gorm.DB
}

func NewMaterialRepo(db *gorm.DB) MaterialRepository {
	return &materialRepo{db}
}

func (r *materialRepo) Create(material *model.Material) error {
	return r.db.Create(material).Error
}

func (r *materialRepo) FindAll(filter MaterialFilter) ([]model.Material, error) {
	q := r.db.Order("name ASC")
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.LowStock {
		q = q.Where("current_stock <= min_stock")
	}
	var materials []model.Material
	err := q.Find(&materials).Error
	return materials, err
}

func (r *materialRepo) FindByID(id uuid.UUID) (*model.Material, error) {
	var material model.Material
	err := r.db.First(&material, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *materialRepo) FindByCode(code string) (*model.Material, error) {
	var material model.Material
	err := r.db.First(&material, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *materialRepo) FindLowStock() ([]model.Material, error) {
	var materials []model.Material
	err := r.db.Where("current_stock <= min_stock").Find(&materials).Error
	return materials, err
}

func (r *materialRepo) Update(material *model.Material) error {
	return r.db.Save(material).Error
}

func (r *materialRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Material{}, "id = ?", id).Error
}
