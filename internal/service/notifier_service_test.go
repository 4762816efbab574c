package service

import (
	"context"
	"testing"
	"time"

	"go-sarpras-api/internal/apperr"
	"go-sarpras-api/internal/model"
	"go-sarpras-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newNotifierService wires the notifier without redis: dedup degrades to
// always emitting, which keeps the tests deterministic.
func newNotifierService(t *testing.T, db *gorm.DB) NotifierService {
	t.Helper()
	return NewNotifierService(
		repository.NewNotificationRepo(db),
		repository.NewMaterialRepo(db),
		repository.NewBorrowRepo(db),
		repository.NewUserRepo(db),
		nil, testHub(), nil,
	)
}

func TestScanLowStockNotifiesAdmins(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotifierService(t, db)
	admin := seedAdmin(t, db)
	staff := seedUser(t, db, "staff@test.local", nil)

	seedMaterial(t, db, "MTL-N01", 2, 5)  // at threshold
	seedMaterial(t, db, "MTL-N02", 10, 5) // healthy

	summary, err := svc.ScanLowStock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Scanned)
	assert.Equal(t, 1, summary.Notified)

	adminNotifs, err := svc.ListForUser(admin.ID, false)
	require.NoError(t, err)
	require.Len(t, adminNotifs, 1)
	assert.Equal(t, model.NotifLowStock, adminNotifs[0].Type)
	assert.False(t, adminNotifs[0].IsRead)

	// Non-admins never receive low-stock alerts.
	staffNotifs, err := svc.ListForUser(staff.ID, false)
	require.NoError(t, err)
	assert.Empty(t, staffNotifs)
}

func TestScanOverdueNotifiesBorrowerOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotifierService(t, db)
	borrower := seedUser(t, db, "borrower@test.local", nil)
	asset := seedAsset(t, db, "AST-N01", model.ConditionGood)

	past := time.Now().Add(-72 * time.Hour)
	future := time.Now().Add(72 * time.Hour)
	overdue := &model.AssetBorrow{
		AssetID:            asset.ID,
		BorrowerID:         borrower.ID,
		Status:             model.StatusBorrowed,
		BorrowDate:         past.Add(-24 * time.Hour),
		ExpectedReturnDate: &past,
	}
	require.NoError(t, db.Create(overdue).Error)
	onTime := &model.AssetBorrow{
		AssetID:            asset.ID,
		BorrowerID:         borrower.ID,
		Status:             model.StatusBorrowed,
		BorrowDate:         time.Now(),
		ExpectedReturnDate: &future,
	}
	require.NoError(t, db.Create(onTime).Error)

	summary, err := svc.ScanOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Scanned)
	assert.Equal(t, 1, summary.Notified)

	notifs, err := svc.ListForUser(borrower.ID, true)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, model.NotifOverdue, notifs[0].Type)

	// The scan never flips the borrow status.
	var reloaded model.AssetBorrow
	require.NoError(t, db.First(&reloaded, "id = ?", overdue.ID).Error)
	assert.Equal(t, model.StatusBorrowed, reloaded.Status)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotifierService(t, db)
	owner := seedUser(t, db, "owner@test.local", nil)
	other := seedUser(t, db, "other@test.local", nil)

	require.NoError(t, svc.Notify(context.Background(), owner.ID, model.NotifSystem, "Info", "pesan", ""))

	notifs, err := svc.ListForUser(owner.ID, true)
	require.NoError(t, err)
	require.Len(t, notifs, 1)

	// Another user cannot mark it read.
	err = svc.MarkRead(notifs[0].ID, other.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	require.NoError(t, svc.MarkRead(notifs[0].ID, owner.ID))
	count, err := svc.CountUnread(owner.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAllRead(t *testing.T) {
	db := setupTestDB(t)
	svc := newNotifierService(t, db)
	owner := seedUser(t, db, "bulk@test.local", nil)

	ctx := context.Background()
	require.NoError(t, svc.Notify(ctx, owner.ID, model.NotifSystem, "satu", "", ""))
	require.NoError(t, svc.Notify(ctx, owner.ID, model.NotifSystem, "dua", "", ""))

	require.NoError(t, svc.MarkAllRead(owner.ID))
	count, err := svc.CountUnread(owner.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
