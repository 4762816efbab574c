package service

import (
	"sync"
	"testing"

	"go-sarpras-api/internal/apperr"
	"go-sarpras-api/internal/model"
	"go-sarpras-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newStockService(t *testing.T, db *gorm.DB) (StockService, *model.User) {
	t.Helper()
	user := seedUser(t, db, "stock@test.local", nil)
	svc := NewStockService(
		repository.NewMaterialRepo(db),
		repository.NewTransactionRepo(db),
		db, testHub(), nil, nil,
	)
	return svc, user
}

func seedMaterial(t *testing.T, db *gorm.DB, code string, stock, minStock int) *model.Material {
	t.Helper()
	m := &model.Material{
		Code:         code,
		Name:         "Material " + code,
		Unit:         "pcs",
		Type:         model.MaterialConsumable,
		MinStock:     minStock,
		CurrentStock: stock,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func TestApplyMovementUpdatesCounterAndLedger(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newStockService(t, db)
	actor := actorFor(user)
	material := seedMaterial(t, db, "MTL-001", 0, 2)

	in, err := svc.ApplyMovement(&MovementRequest{
		MaterialID: material.ID,
		Type:       model.MovementIn,
		Quantity:   10,
		Reason:     "restock",
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, 10, in.BalanceAfter)

	out, err := svc.ApplyMovement(&MovementRequest{
		MaterialID: material.ID,
		Type:       model.MovementOut,
		Quantity:   3,
		Reason:     "lab usage",
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, 7, out.BalanceAfter)

	reloaded, err := svc.GetMaterial(material.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, reloaded.CurrentStock)

	// Replaying the ledger reconstructs the counter.
	transactions, err := svc.ListTransactions(repository.TransactionFilter{MaterialID: &material.ID})
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	sum := 0
	for _, tx := range transactions {
		if tx.Type == model.MovementIn {
			sum += tx.Quantity
		} else {
			sum -= tx.Quantity
		}
	}
	assert.Equal(t, reloaded.CurrentStock, sum)
}

func TestApplyMovementInsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newStockService(t, db)
	material := seedMaterial(t, db, "MTL-002", 3, 0)

	_, err := svc.ApplyMovement(&MovementRequest{
		MaterialID: material.ID,
		Type:       model.MovementOut,
		Quantity:   5,
	}, actorFor(user))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))

	// Counter untouched, no ledger row written.
	reloaded, err := svc.GetMaterial(material.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.CurrentStock)

	transactions, err := svc.ListTransactions(repository.TransactionFilter{MaterialID: &material.ID})
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestApplyMovementUnknownMaterial(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newStockService(t, db)
	material := seedMaterial(t, db, "MTL-003", 1, 0)

	require.NoError(t, db.Unscoped().Delete(material).Error)

	_, err := svc.ApplyMovement(&MovementRequest{
		MaterialID: material.ID,
		Type:       model.MovementIn,
		Quantity:   1,
	}, actorFor(user))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

// Two concurrent OUTs may not both pass the floor check: the material row is
// locked for the duration of each movement.
func TestApplyMovementConcurrentOut(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newStockService(t, db)
	actor := actorFor(user)
	material := seedMaterial(t, db, "MTL-004", 6, 0)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApplyMovement(&MovementRequest{
				MaterialID: material.ID,
				Type:       model.MovementOut,
				Quantity:   5,
			}, actor)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, failed := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))
			failed++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)

	reloaded, err := svc.GetMaterial(material.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.CurrentStock)
}

func TestAdjustStockGoesThroughLedger(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newStockService(t, db)
	actor := actorFor(user)
	material := seedMaterial(t, db, "MTL-005", 10, 0)

	entry, err := svc.AdjustStock(material.ID, 4, "", actor)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, model.MovementOut, entry.Type)
	assert.Equal(t, 6, entry.Quantity)
	assert.Equal(t, 4, entry.BalanceAfter)
	assert.Equal(t, "manual adjustment", entry.Reason)

	reloaded, err := svc.GetMaterial(material.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.CurrentStock)

	// Adjusting to the current value records nothing.
	entry, err = svc.AdjustStock(material.ID, 4, "", actor)
	require.NoError(t, err)
	assert.Nil(t, entry)

	transactions, err := svc.ListTransactions(repository.TransactionFilter{MaterialID: &material.ID})
	require.NoError(t, err)
	assert.Len(t, transactions, 1)
}

func TestAdjustStockRejectsNegativeTarget(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newStockService(t, db)
	material := seedMaterial(t, db, "MTL-006", 2, 0)

	_, err := svc.AdjustStock(material.ID, -1, "", actorFor(user))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestApplyBatchPartialSuccess(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newStockService(t, db)
	material := seedMaterial(t, db, "MTL-007", 5, 0)

	result := svc.ApplyBatch([]MovementRequest{
		{MaterialID: material.ID, Type: model.MovementOut, Quantity: 2},
		{MaterialID: material.ID, Type: model.MovementOut, Quantity: 10}, // over the floor
		{MaterialID: material.ID, Type: model.MovementIn, Quantity: 1},
	}, actorFor(user))

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Items, 3)

	assert.Nil(t, result.Items[0].Error)
	require.NotNil(t, result.Items[1].Error)
	assert.Equal(t, apperr.KindInsufficientStock, result.Items[1].Error.Kind)
	assert.Nil(t, result.Items[2].Error)

	// The failed item rolled back alone; the other two applied.
	reloaded, err := svc.GetMaterial(material.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.CurrentStock)
}

func TestCreateMaterialRecordsInitialStock(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newStockService(t, db)

	material := &model.Material{
		Code:         "MTL-008",
		Name:         "Spidol Whiteboard",
		Unit:         "pcs",
		CurrentStock: 5,
	}
	require.NoError(t, svc.CreateMaterial(material, actorFor(user)))
	assert.Equal(t, 5, material.CurrentStock)

	transactions, err := svc.ListTransactions(repository.TransactionFilter{MaterialID: &material.ID})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, model.MovementIn, transactions[0].Type)
	assert.Equal(t, 5, transactions[0].Quantity)
	assert.Equal(t, "initial stock", transactions[0].Reason)
}

func TestCreateMaterialDuplicateCode(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newStockService(t, db)
	seedMaterial(t, db, "MTL-009", 0, 0)

	err := svc.CreateMaterial(&model.Material{
		Code: "MTL-009",
		Name: "Duplicate",
		Unit: "pcs",
	}, actorFor(user))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestUpdateMaterialDoesNotTouchStock(t *testing.T) {
	db := setupTestDB(t)
	svc, user := newStockService(t, db)
	material := seedMaterial(t, db, "MTL-010", 8, 1)

	updated, err := svc.UpdateMaterial(material.ID, &UpdateMaterialRequest{
		Name:     "Renamed",
		Unit:     "box",
		MinStock: 3,
	}, actorFor(user))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 3, updated.MinStock)
	assert.Equal(t, 8, updated.CurrentStock)
}
