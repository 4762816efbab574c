package service

import (
	"testing"
	"time"

	"go-sarpras-api/internal/model"
	"go-sarpras-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReportService(t *testing.T, db *gorm.DB) ReportService {
	t.Helper()
	return NewReportService(
		repository.NewMaterialRepo(db),
		repository.NewBorrowRepo(db),
		repository.NewTransactionRepo(db),
		nil, nil,
	)
}

func TestStockReportCountsLowStock(t *testing.T) {
	db := setupTestDB(t)
	svc := newReportService(t, db)

	seedMaterial(t, db, "MTL-R01", 1, 5)
	seedMaterial(t, db, "MTL-R02", 20, 5)

	report, err := svc.StockReport()
	require.NoError(t, err)
	assert.Len(t, report.Materials, 2)
	assert.Equal(t, 1, report.LowStock)
}

func TestBorrowReportRangeAndOverdue(t *testing.T) {
	db := setupTestDB(t)
	svc := newReportService(t, db)
	borrower := seedUser(t, db, "report@test.local", nil)
	asset := seedAsset(t, db, "AST-R01", model.ConditionGood)

	now := time.Now()
	past := now.Add(-24 * time.Hour)
	inRange := &model.AssetBorrow{
		AssetID:            asset.ID,
		BorrowerID:         borrower.ID,
		Status:             model.StatusBorrowed,
		BorrowDate:         now.Add(-2 * time.Hour),
		ExpectedReturnDate: &past,
	}
	require.NoError(t, db.Create(inRange).Error)
	outOfRange := &model.AssetBorrow{
		AssetID:    asset.ID,
		BorrowerID: borrower.ID,
		Status:     model.StatusReturned,
		BorrowDate: now.Add(-30 * 24 * time.Hour),
	}
	require.NoError(t, db.Create(outOfRange).Error)

	report, err := svc.BorrowReport(now.Add(-7*24*time.Hour), now)
	require.NoError(t, err)
	require.Len(t, report.Borrows, 1)
	assert.True(t, report.Borrows[0].IsOverdue)
	assert.Equal(t, 1, report.Overdue)
}

func TestDashboardStats(t *testing.T) {
	db := setupTestDB(t)
	svc := newReportService(t, db)
	borrower := seedUser(t, db, "stats@test.local", nil)

	seedMaterial(t, db, "MTL-R03", 0, 5)
	asset := seedAsset(t, db, "AST-R02", model.ConditionGood)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Create(&model.AssetBorrow{
		AssetID:            asset.ID,
		BorrowerID:         borrower.ID,
		Status:             model.StatusBorrowed,
		BorrowDate:         past,
		ExpectedReturnDate: &past,
	}).Error)

	stats, err := svc.GetDashboardStats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalMaterials)
	assert.EqualValues(t, 1, stats.LowStockCount)
	assert.EqualValues(t, 1, stats.TotalAssets)
	assert.EqualValues(t, 1, stats.ActiveBorrows)
	assert.EqualValues(t, 1, stats.OverdueBorrows)
}
