package repository

import (
	"time"

	"go-sarpras-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionFilter narrows ledger queries.
type TransactionFilter struct {
	MaterialID *uuid.UUID
	Type       model.MovementType
	From       *time.Time
	To         *time.Time
}

type TransactionRepository interface {
	FindAll(filter TransactionFilter) ([]model.StockTransaction, error)
	FindByID(id uuid.UUID) (*model.StockTransaction, error)
	GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats() (*DashboardStats, error)
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalMaterials int64 `json:"total_materials"`
	LowStockCount  int64 `json:"low_stock_count"`
	TotalAssets    int64 `json:"total_assets"`
	ActiveBorrows  int64 `json:"active_borrows"`
	OverdueBorrows int64 `json:"overdue_borrows"`
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) FindAll(filter TransactionFilter) ([]model.StockTransaction, error) {
	q := r.db.Preload("Material").Preload("User").Order("created_at DESC")
	if filter.MaterialID != nil {
		q = q.Where("material_id = ?", *filter.MaterialID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	var transactions []model.StockTransaction
	err := q.Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindByID(id uuid.UUID) (*model.StockTransaction, error) {
	var transaction model.StockTransaction
	err := r.db.Preload("Material").Preload("User").First(&transaction, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Aggregate movements per hari
	rows, err := r.db.Model(&model.StockTransaction{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN type = 'IN' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = 'OUT' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}

func (r *transactionRepo) GetDashboardStats() (*DashboardStats, error) {
	var stats DashboardStats

	r.db.Model(&model.Material{}).Count(&stats.TotalMaterials)
	r.db.Model(&model.Material{}).Where("current_stock <= min_stock").Count(&stats.LowStockCount)
	r.db.Model(&model.FixedAsset{}).Count(&stats.TotalAssets)
	r.db.Model(&model.AssetBorrow{}).Where("status = ?", model.StatusBorrowed).Count(&stats.ActiveBorrows)
	r.db.Model(&model.AssetBorrow{}).
		Where("status = ? AND expected_return_date < ?", model.StatusBorrowed, time.Now()).
		Count(&stats.OverdueBorrows)

	return &stats, nil
}
