package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go-sarpras-api/internal/apperr"
	"go-sarpras-api/internal/model"
	"go-sarpras-api/internal/repository"
	"go-sarpras-api/internal/ws"
	"go-sarpras-api/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BorrowRequest opens a loan for an asset.
type BorrowRequest struct {
	AssetID            uuid.UUID  `json:"asset_id" validate:"uuid_required"`
	BorrowerID         uuid.UUID  `json:"borrower_id" validate:"uuid_required"`
	ExpectedReturnDate *time.Time `json:"expected_return_date,omitempty"`
	Purpose            string     `json:"purpose"`
	Note               string     `json:"note"`
}

// ReturnRequest closes a loan, optionally recording a new asset condition
// observed at return time.
type ReturnRequest struct {
	Condition model.AssetCondition `json:"condition" validate:"omitempty,oneof=GOOD DAMAGED NEEDS_REPAIR DISPOSED"`
	Note      string               `json:"note"`
}

type BorrowService interface {
	CreateAsset(req *model.FixedAsset, actor Actor) error
	UpdateAsset(id uuid.UUID, req *model.FixedAsset, actor Actor) (*model.FixedAsset, error)
	DeleteAsset(id uuid.UUID, actor Actor) error
	GetAsset(id uuid.UUID) (*model.FixedAsset, error)
	ListAssets(filter repository.AssetFilter) ([]model.FixedAsset, error)

	Borrow(req *BorrowRequest, actor Actor) (*model.AssetBorrow, error)
	Return(borrowID uuid.UUID, req *ReturnRequest, actor Actor) (*model.AssetBorrow, error)
	UndoReturn(borrowID uuid.UUID, actor Actor) (*model.AssetBorrow, error)
	MarkLost(borrowID uuid.UUID, actor Actor) (*model.AssetBorrow, error)
	DeleteBorrow(borrowID uuid.UUID, actor Actor) error
	GetBorrow(id uuid.UUID) (*model.BorrowResponse, error)
	ListBorrows(filter repository.BorrowFilter) ([]model.BorrowResponse, error)
}

type borrowService struct {
	assetRepo  repository.AssetRepository
	borrowRepo repository.BorrowRepository
	db         *gorm.DB
	hub        *ws.Hub
	logger     *zap.Logger
}

func NewBorrowService(aRepo repository.AssetRepository, bRepo repository.BorrowRepository, db *gorm.DB, hub *ws.Hub, logger *zap.Logger) BorrowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &borrowService{
		assetRepo:  aRepo,
		borrowRepo: bRepo,
		db:         db,
		hub:        hub,
		logger:     logger,
	}
}

func (s *borrowService) CreateAsset(req *model.FixedAsset, actor Actor) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return apperr.Validation(fmt.Sprintf("field '%s' failed on tag '%s'", first.FailedField, first.Tag))
	}

	existing, _ := s.assetRepo.FindByAssetNumber(req.AssetNumber)
	if existing != nil && existing.ID != uuid.Nil {
		return apperr.Newf(apperr.KindConflict, "asset number '%s' already exists", req.AssetNumber)
	}

	if req.Condition == "" {
		req.Condition = model.ConditionGood
	}
	req.CreatedBy = actor.ID.String()
	req.UpdatedBy = actor.ID.String()

	return s.assetRepo.Create(req)
}

func (s *borrowService) UpdateAsset(id uuid.UUID, req *model.FixedAsset, actor Actor) (*model.FixedAsset, error) {
	asset, err := s.assetRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("asset")
		}
		return nil, err
	}

	asset.Name = req.Name
	asset.Category = req.Category
	asset.Location = req.Location
	asset.ImageURL = req.ImageURL
	asset.AcquiredAt = req.AcquiredAt
	if req.Condition != "" {
		asset.Condition = req.Condition
	}
	asset.UpdatedBy = actor.ID.String()

	if err := s.assetRepo.Update(asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// DeleteAsset refuses while an active loan references the asset.
func (s *borrowService) DeleteAsset(id uuid.UUID, actor Actor) error {
	if _, err := s.assetRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("asset")
		}
		return err
	}

	active, err := s.borrowRepo.CountActiveForAsset(id)
	if err != nil {
		return err
	}
	if active > 0 {
		return apperr.New(apperr.KindConflict, "asset has an active borrow and cannot be deleted")
	}

	return s.assetRepo.Delete(id)
}

func (s *borrowService) GetAsset(id uuid.UUID) (*model.FixedAsset, error) {
	asset, err := s.assetRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("asset")
		}
		return nil, err
	}
	return asset, nil
}

func (s *borrowService) ListAssets(filter repository.AssetFilter) ([]model.FixedAsset, error) {
	return s.assetRepo.FindAll(filter)
}

// Borrow opens a loan. The asset row is locked first, then the
// one-active-loan invariant is re-checked inside the same transaction, so
// two concurrent borrows of the same asset cannot both succeed.
func (s *borrowService) Borrow(req *BorrowRequest, actor Actor) (*model.AssetBorrow, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, apperr.Validation(fmt.Sprintf("field '%s' failed on tag '%s'", first.FailedField, first.Tag))
	}

	var borrow *model.AssetBorrow

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var asset model.FixedAsset
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&asset, "id = ?", req.AssetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("asset")
			}
			return err
		}

		if !asset.Borrowable() {
			return apperr.Newf(apperr.KindAssetUnavailable, "asset '%s' is %s and cannot be borrowed", asset.Name, strings.ToLower(string(asset.Condition)))
		}

		var active int64
		if err := tx.Model(&model.AssetBorrow{}).
			Where("asset_id = ? AND status = ?", asset.ID, model.StatusBorrowed).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return apperr.Newf(apperr.KindAlreadyBorrowed, "asset '%s' is already borrowed", asset.Name)
		}

		b := &model.AssetBorrow{
			AssetID:            asset.ID,
			BorrowerID:         req.BorrowerID,
			Status:             model.StatusBorrowed,
			BorrowDate:         time.Now(),
			ExpectedReturnDate: req.ExpectedReturnDate,
			Purpose:            req.Purpose,
			Note:               req.Note,
		}
		b.CreatedBy = actor.ID.String()
		b.UpdatedBy = actor.ID.String()

		if err := tx.Create(b).Error; err != nil {
			return err
		}
		borrow = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent("borrow_created", borrow)
	return borrow, nil
}

// Return closes the loan and, when a changed condition is reported, updates
// the asset row in the same transaction so the pair commits atomically.
func (s *borrowService) Return(borrowID uuid.UUID, req *ReturnRequest, actor Actor) (*model.AssetBorrow, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, apperr.Validation(fmt.Sprintf("field '%s' failed on tag '%s'", first.FailedField, first.Tag))
	}

	var borrow *model.AssetBorrow

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var b model.AssetBorrow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, "id = ?", borrowID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("borrow")
			}
			return err
		}

		if b.Status != model.StatusBorrowed {
			return apperr.Newf(apperr.KindNotBorrowed, "borrow is %s, not an open loan", strings.ToLower(string(b.Status)))
		}

		b.Status = model.StatusReturned
		if b.ActualReturnDate == nil {
			now := time.Now()
			b.ActualReturnDate = &now
		}
		if req.Note != "" {
			// Catatan pengembalian ditambahkan, bukan menimpa catatan pinjam.
			if b.Note != "" {
				b.Note = b.Note + "\n" + req.Note
			} else {
				b.Note = req.Note
			}
		}
		b.UpdatedBy = actor.ID.String()

		if err := tx.Save(&b).Error; err != nil {
			return err
		}

		if req.Condition != "" {
			var asset model.FixedAsset
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&asset, "id = ?", b.AssetID).Error; err != nil {
				return err
			}
			if asset.Condition != req.Condition {
				asset.Condition = req.Condition
				asset.UpdatedBy = actor.ID.String()
				if err := tx.Save(&asset).Error; err != nil {
					return err
				}
			}
		}

		borrow = &b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent("borrow_returned", borrow)
	return borrow, nil
}

// UndoReturn re-opens a returned loan. The asset condition recorded during
// the return is deliberately left as-is. The one-active-loan invariant is
// re-asserted: another loan may have been opened since the return.
func (s *borrowService) UndoReturn(borrowID uuid.UUID, actor Actor) (*model.AssetBorrow, error) {
	var borrow *model.AssetBorrow

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var b model.AssetBorrow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, "id = ?", borrowID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("borrow")
			}
			return err
		}

		if b.Status != model.StatusReturned {
			return apperr.New(apperr.KindNotReturned, "only a returned borrow can be undone")
		}

		var asset model.FixedAsset
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&asset, "id = ?", b.AssetID).Error; err != nil {
			return err
		}
		var active int64
		if err := tx.Model(&model.AssetBorrow{}).
			Where("asset_id = ? AND status = ?", b.AssetID, model.StatusBorrowed).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return apperr.Newf(apperr.KindAlreadyBorrowed, "asset '%s' has been borrowed again since the return", asset.Name)
		}

		b.Status = model.StatusBorrowed
		b.ActualReturnDate = nil
		b.UpdatedBy = actor.ID.String()

		if err := tx.Save(&b).Error; err != nil {
			return err
		}
		borrow = &b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent("borrow_reopened", borrow)
	return borrow, nil
}

// MarkLost is a terminal transition for loans that will never be returned.
func (s *borrowService) MarkLost(borrowID uuid.UUID, actor Actor) (*model.AssetBorrow, error) {
	var borrow *model.AssetBorrow

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var b model.AssetBorrow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, "id = ?", borrowID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("borrow")
			}
			return err
		}

		if b.Status != model.StatusBorrowed {
			return apperr.New(apperr.KindNotBorrowed, "only an open loan can be marked lost")
		}

		b.Status = model.StatusLost
		b.UpdatedBy = actor.ID.String()

		if err := tx.Save(&b).Error; err != nil {
			return err
		}
		borrow = &b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent("borrow_lost", borrow)
	return borrow, nil
}

// DeleteBorrow hard-deletes a borrow record. Returned loans are history and
// are never deleted.
func (s *borrowService) DeleteBorrow(borrowID uuid.UUID, actor Actor) error {
	borrow, err := s.borrowRepo.FindByID(borrowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("borrow")
		}
		return err
	}

	if borrow.Status == model.StatusReturned {
		return apperr.New(apperr.KindCannotDeleteReturn, "a returned borrow cannot be deleted")
	}

	return s.borrowRepo.Delete(borrowID)
}

func (s *borrowService) GetBorrow(id uuid.UUID) (*model.BorrowResponse, error) {
	borrow, err := s.borrowRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("borrow")
		}
		return nil, err
	}
	resp := borrow.ToResponse(time.Now())
	return &resp, nil
}

func (s *borrowService) ListBorrows(filter repository.BorrowFilter) ([]model.BorrowResponse, error) {
	borrows, err := s.borrowRepo.FindAll(filter)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	responses := make([]model.BorrowResponse, len(borrows))
	for i, b := range borrows {
		responses[i] = b.ToResponse(now)
	}
	return responses, nil
}
