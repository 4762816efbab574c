package service

import (
	"testing"
	"time"

	"go-sarpras-api/internal/apperr"
	"go-sarpras-api/internal/model"
	"go-sarpras-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newBorrowService(t *testing.T, db *gorm.DB) (BorrowService, *model.User) {
	t.Helper()
	user := seedUser(t, db, "borrow@test.local", nil)
	svc := NewBorrowService(
		repository.NewAssetRepo(db),
		repository.NewBorrowRepo(db),
		db, testHub(), nil,
	)
	return svc, user
}

func seedAsset(t *testing.T, db *gorm.DB, number string, condition model.AssetCondition) *model.FixedAsset {
	t.Helper()
	asset := &model.FixedAsset{
		AssetNumber: number,
		Name:        "Asset " + number,
		Category:    "elektronik",
		Condition:   condition,
	}
	require.NoError(t, db.Create(asset).Error)
	return asset
}

func TestBorrowSecondLoanRejected(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newBorrowService(t, db)
	actor := actorFor(user)
	asset := seedAsset(t, db, "AST-001", model.ConditionGood)

	first, err := svc.Borrow(&BorrowRequest{
		AssetID:    asset.ID,
		BorrowerID: user.ID,
		Purpose:    "presentasi",
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBorrowed, first.Status)

	_, err = svc.Borrow(&BorrowRequest{
		AssetID:    asset.ID,
		BorrowerID: user.ID,
	}, actor)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindAlreadyBorrowed))
}

func TestBorrowBlockedByCondition(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newBorrowService(t, db)
	actor := actorFor(user)

	for _, condition := range []model.AssetCondition{model.ConditionDamaged, model.ConditionDisposed} {
		asset := seedAsset(t, db, "AST-"+string(condition), condition)
		_, err := svc.Borrow(&BorrowRequest{AssetID: asset.ID, BorrowerID: user.ID}, actor)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindAssetUnavailable))
	}
}

// NEEDS_REPAIR degrades the asset but does not pull it from circulation.
func TestBorrowAllowedNeedsRepair(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newBorrowService(t, db)
	asset := seedAsset(t, db, "AST-002", model.ConditionNeedsRepair)

	borrow, err := svc.Borrow(&BorrowRequest{AssetID: asset.ID, BorrowerID: user.ID}, actorFor(user))
	require.NoError(t, err)
	assert.Equal(t, model.StatusBorrowed, borrow.Status)
}

func TestReturnRecordsConditionAndAppendsNote(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newBorrowService(t, db)
	actor := actorFor(user)
	asset := seedAsset(t, db, "AST-003", model.ConditionGood)

	borrow, err := svc.Borrow(&BorrowRequest{
		AssetID:    asset.ID,
		BorrowerID: user.ID,
		Note:       "dipinjam untuk lab",
	}, actor)
	require.NoError(t, err)

	returned, err := svc.Return(borrow.ID, &ReturnRequest{
		Condition: model.ConditionNeedsRepair,
		Note:      "tombol power macet",
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReturned, returned.Status)
	require.NotNil(t, returned.ActualReturnDate)
	assert.Equal(t, "dipinjam untuk lab\ntombol power macet", returned.Note)

	reloaded, err := svc.GetAsset(asset.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ConditionNeedsRepair, reloaded.Condition)

	// The degraded asset can immediately be borrowed again.
	_, err = svc.Borrow(&BorrowRequest{AssetID: asset.ID, BorrowerID: user.ID}, actor)
	require.NoError(t, err)
}

func TestReturnOnlyOpenLoans(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newBorrowService(t, db)
	actor := actorFor(user)
	asset := seedAsset(t, db, "AST-004", model.ConditionGood)

	borrow, err := svc.Borrow(&BorrowRequest{AssetID: asset.ID, BorrowerID: user.ID}, actor)
	require.NoError(t, err)

	_, err = svc.Return(borrow.ID, &ReturnRequest{}, actor)
	require.NoError(t, err)

	_, err = svc.Return(borrow.ID, &ReturnRequest{}, actor)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotBorrowed))
}

func TestUndoReturnReopensLoan(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newBorrowService(t, db)
	actor := actorFor(user)
	asset := seedAsset(t, db, "AST-005", model.ConditionGood)

	borrow, err := svc.Borrow(&BorrowRequest{AssetID: asset.ID, BorrowerID: user.ID}, actor)
	require.NoError(t, err)

	_, err = svc.Return(borrow.ID, &ReturnRequest{Condition: model.ConditionDamaged}, actor)
	require.NoError(t, err)

	reopened, err := svc.UndoReturn(borrow.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBorrowed, reopened.Status)
	assert.Nil(t, reopened.ActualReturnDate)

	// The condition recorded at return time stays.
	reloaded, err := svc.GetAsset(asset.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ConditionDamaged, reloaded.Condition)
}

func TestUndoReturnRequiresReturnedStatus(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newBorrowService(t, db)
	actor := actorFor(user)
	asset := seedAsset(t, db, "AST-006", model.ConditionGood)

	borrow, err := svc.Borrow(&BorrowRequest{AssetID: asset.ID, BorrowerID: user.ID}, actor)
	require.NoError(t, err)

	_, err = svc.UndoReturn(borrow.ID, actor)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotReturned))
}

func TestUndoReturnBlockedByNewerLoan(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newBorrowService(t, db)
	actor := actorFor(user)
	asset := seedAsset(t, db, "AST-007", model.ConditionGood)

	first, err := svc.Borrow(&BorrowRequest{AssetID: asset.ID, BorrowerID: user.ID}, actor)
	require.NoError(t, err)
	_, err = svc.Return(first.ID, &ReturnRequest{}, actor)
	require.NoError(t, err)

	// Someone else takes the asset before the undo.
	_, err = svc.Borrow(&BorrowRequest{AssetID: asset.ID, BorrowerID: user.ID}, actor)
	require.NoError(t, err)

	_, err = svc.UndoReturn(first.ID, actor)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindAlreadyBorrowed))
}

func TestMarkLostTerminal(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newBorrowService(t, db)
	actor := actorFor(user)
	asset := seedAsset(t, db, "AST-008", model.ConditionGood)

	borrow, err := svc.Borrow(&BorrowRequest{AssetID: asset.ID, BorrowerID: user.ID}, actor)
	require.NoError(t, err)

	lost, err := svc.MarkLost(borrow.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, model.StatusLost, lost.Status)

	_, err = svc.Return(borrow.ID, &ReturnRequest{}, actor)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotBorrowed))
}

func TestDeleteBorrowRefusesReturned(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newBorrowService(t, db)
	actor := actorFor(user)
	asset := seedAsset(t, db, "AST-009", model.ConditionGood)

	borrow, err := svc.Borrow(&BorrowRequest{AssetID: asset.ID, BorrowerID: user.ID}, actor)
	require.NoError(t, err)
	_, err = svc.Return(borrow.ID, &ReturnRequest{}, actor)
	require.NoError(t, err)

	err = svc.DeleteBorrow(borrow.ID, actor)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindCannotDeleteReturn))
}

func TestDeleteAssetBlockedByActiveLoan(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newBorrowService(t, db)
	actor := actorFor(user)
	asset := seedAsset(t, db, "AST-010", model.ConditionGood)

	borrow, err := svc.Borrow(&BorrowRequest{AssetID: asset.ID, BorrowerID: user.ID}, actor)
	require.NoError(t, err)

	err = svc.DeleteAsset(asset.ID, actor)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	_, err = svc.Return(borrow.ID, &ReturnRequest{}, actor)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteAsset(asset.ID, actor))
}

func TestListBorrowsDerivesOverdue(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newBorrowService(t, db)
	actor := actorFor(user)
	asset := seedAsset(t, db, "AST-011", model.ConditionGood)

	past := time.Now().Add(-48 * time.Hour)
	borrow, err := svc.Borrow(&BorrowRequest{
		AssetID:            asset.ID,
		BorrowerID:         user.ID,
		ExpectedReturnDate: &past,
	}, actor)
	require.NoError(t, err)

	// OVERDUE is computed at read time, never persisted.
	var raw model.AssetBorrow
	require.NoError(t, db.First(&raw, "id = ?", borrow.ID).Error)
	assert.Equal(t, model.StatusBorrowed, raw.Status)

	listed, err := svc.ListBorrows(repository.BorrowFilter{OverdueOnly: true})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].IsOverdue)

	// Returning clears the overdue view.
	_, err = svc.Return(borrow.ID, &ReturnRequest{}, actor)
	require.NoError(t, err)
	listed, err = svc.ListBorrows(repository.BorrowFilter{OverdueOnly: true})
	require.NoError(t, err)
	assert.Empty(t, listed)
}
