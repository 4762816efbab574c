package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-sarpras-api/internal/apperr"
	"go-sarpras-api/internal/model"
	"go-sarpras-api/internal/repository"
	"go-sarpras-api/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreatePurchaseRequest carries a new procurement request.
type CreatePurchaseRequest struct {
	Title string                `json:"title" validate:"required"`
	Items []PurchaseItemRequest `json:"items" validate:"required,min=1,dive"`
}

type PurchaseItemRequest struct {
	MaterialName   string `json:"material_name" validate:"required"`
	Quantity       int    `json:"quantity" validate:"required,gt=0"`
	Unit           string `json:"unit"`
	EstimatedPrice int64  `json:"estimated_price"`
	Note           string `json:"note"`
}

// ReviewRequest approves or rejects a pending request.
type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

type PurchaseService interface {
	Create(req *CreatePurchaseRequest, actor Actor) (*model.PurchaseRequest, error)
	Review(id uuid.UUID, req *ReviewRequest, actor Actor) (*model.PurchaseRequest, error)
	Delete(id uuid.UUID, actor Actor) error
	Get(id uuid.UUID) (*model.PurchaseRequest, error)
	List(filter repository.PurchaseFilter) ([]model.PurchaseRequest, error)
}

type purchaseService struct {
	purchaseRepo repository.PurchaseRepository
	notifier     NotifierService
	logger       *zap.Logger
}

func NewPurchaseService(purchaseRepo repository.PurchaseRepository, notifier NotifierService, logger *zap.Logger) PurchaseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

func (s *purchaseService) Create(req *CreatePurchaseRequest, actor Actor) (*model.PurchaseRequest, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, apperr.Validation(fmt.Sprintf("field '%s' failed on tag '%s'", first.FailedField, first.Tag))
	}

	request := &model.PurchaseRequest{
		RequesterID: actor.ID,
		Title:       req.Title,
		Status:      model.PurchasePending,
	}
	request.CreatedBy = actor.ID.String()
	request.UpdatedBy = actor.ID.String()

	for _, item := range req.Items {
		request.Items = append(request.Items, model.PurchaseRequestItem{
			MaterialName:   item.MaterialName,
			Quantity:       item.Quantity,
			Unit:           item.Unit,
			EstimatedPrice: item.EstimatedPrice,
			Note:           item.Note,
		})
	}

	if err := s.purchaseRepo.Create(request); err != nil {
		return nil, err
	}

	go s.notifier.NotifyAdmins(context.Background(), model.NotifPurchaseRequest,
		"Pengajuan pembelian baru: "+request.Title,
		fmt.Sprintf("%s mengajukan pembelian %d item", actor.Name, len(request.Items)),
		"/purchases/"+request.ID.String())

	return request, nil
}

// Review flips a pending request to approved or rejected and notifies the
// requester. Approval never applies IN movements; goods receipt is recorded
// by the ledger when the goods arrive.
func (s *purchaseService) Review(id uuid.UUID, req *ReviewRequest, actor Actor) (*model.PurchaseRequest, error) {
	request, err := s.purchaseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("purchase request")
		}
		return nil, err
	}

	if request.Status != model.PurchasePending {
		return nil, apperr.Newf(apperr.KindConflict, "purchase request is already %s", request.Status)
	}

	now := time.Now()
	reviewerID := actor.ID
	request.ReviewerID = &reviewerID
	request.ReviewedAt = &now
	request.ReviewNote = req.Note
	request.UpdatedBy = actor.ID.String()
	if req.Approve {
		request.Status = model.PurchaseApproved
	} else {
		request.Status = model.PurchaseRejected
	}

	if err := s.purchaseRepo.Update(request); err != nil {
		return nil, err
	}

	verdict := "disetujui"
	if !req.Approve {
		verdict = "ditolak"
	}
	if err := s.notifier.Notify(context.Background(), request.RequesterID, model.NotifPurchaseRequest,
		fmt.Sprintf("Pengajuan pembelian %s", verdict),
		fmt.Sprintf("Pengajuan '%s' %s oleh %s", request.Title, verdict, actor.Name),
		"/purchases/"+request.ID.String()); err != nil {
		s.logger.Error("failed to notify requester", zap.Error(err))
	}

	return request, nil
}

// Delete removes a request; only the requester's own pending requests can go.
func (s *purchaseService) Delete(id uuid.UUID, actor Actor) error {
	request, err := s.purchaseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("purchase request")
		}
		return err
	}

	if request.RequesterID != actor.ID {
		return apperr.New(apperr.KindForbidden, "only the requester can delete a purchase request")
	}
	if request.Status != model.PurchasePending {
		return apperr.Newf(apperr.KindConflict, "a %s purchase request cannot be deleted", request.Status)
	}

	return s.purchaseRepo.Delete(id)
}

func (s *purchaseService) Get(id uuid.UUID) (*model.PurchaseRequest, error) {
	request, err := s.purchaseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("purchase request")
		}
		return nil, err
	}
	return request, nil
}

func (s *purchaseService) List(filter repository.PurchaseFilter) ([]model.PurchaseRequest, error) {
	return s.purchaseRepo.FindAll(filter)
}
