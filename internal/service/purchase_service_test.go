package service

import (
	"testing"

	"go-sarpras-api/internal/apperr"
	"go-sarpras-api/internal/model"
	"go-sarpras-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPurchaseService(t *testing.T, db *gorm.DB) PurchaseService {
	t.Helper()
	return NewPurchaseService(
		repository.NewPurchaseRepo(db),
		newNotifierService(t, db),
		nil,
	)
}

func TestCreatePurchaseRequiresItems(t *testing.T) {
	db := setupTestDB(t)
	svc := newPurchaseService(t, db)
	requester := seedUser(t, db, "requester@test.local", nil)

	_, err := svc.Create(&CreatePurchaseRequest{Title: "Kosong"}, actorFor(requester))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestReviewApproveOnlyPending(t *testing.T) {
	db := setupTestDB(t)
	svc := newPurchaseService(t, db)
	requester := seedUser(t, db, "requester@test.local", nil)
	reviewer := seedAdmin(t, db)

	request, err := svc.Create(&CreatePurchaseRequest{
		Title: "Spidol dan penghapus",
		Items: []PurchaseItemRequest{
			{MaterialName: "Spidol", Quantity: 20, Unit: "pcs"},
		},
	}, actorFor(requester))
	require.NoError(t, err)
	assert.Equal(t, model.PurchasePending, request.Status)

	approved, err := svc.Review(request.ID, &ReviewRequest{Approve: true, Note: "ok"}, actorFor(reviewer))
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseApproved, approved.Status)
	require.NotNil(t, approved.ReviewerID)
	assert.Equal(t, reviewer.ID, *approved.ReviewerID)
	assert.NotNil(t, approved.ReviewedAt)

	// A reviewed request cannot be re-reviewed.
	_, err = svc.Review(request.ID, &ReviewRequest{Approve: false}, actorFor(reviewer))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// The requester gets a decision notification.
	notifs := newNotifierService(t, db)
	mine, err := notifs.ListForUser(requester.ID, false)
	require.NoError(t, err)
	require.NotEmpty(t, mine)
	assert.Equal(t, model.NotifPurchaseRequest, mine[0].Type)
}

func TestDeletePurchaseOwnPendingOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := newPurchaseService(t, db)
	requester := seedUser(t, db, "requester@test.local", nil)
	other := seedUser(t, db, "other@test.local", nil)

	request, err := svc.Create(&CreatePurchaseRequest{
		Title: "Kabel HDMI",
		Items: []PurchaseItemRequest{
			{MaterialName: "Kabel HDMI 2m", Quantity: 3, Unit: "pcs"},
		},
	}, actorFor(requester))
	require.NoError(t, err)

	err = svc.Delete(request.ID, actorFor(other))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	require.NoError(t, svc.Delete(request.ID, actorFor(requester)))

	_, err = svc.Get(request.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
