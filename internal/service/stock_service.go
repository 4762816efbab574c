package service

import (
	"context"
	"errors"
	"fmt"

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

// LowStockNotifier is the slice of the notifier the ledger needs: alerting
// admins right after a movement drops a material to its threshold.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, material *model.Material)
}

// MovementRequest is one requested stock movement.
type MovementRequest struct {
	MaterialID uuid.UUID          `json:"material_id" validate:"uuid_required"`
	Type       model.MovementType `json:"type" validate:"required,oneof=IN OUT"`
	Quantity   int                `json:"quantity" validate:"required,gt=0"`
	Reason     string             `json:"reason"`
}

// UpdateMaterialRequest updates descriptive fields only. Stock is excluded:
// the counter moves exclusively through the ledger.
type UpdateMaterialRequest struct {
	Name     string             `json:"name" validate:"required"`
	Category string             `json:"category"`
	Unit     string             `json:"unit" validate:"required"`
	Type     model.MaterialType `json:"type" validate:"omitempty,oneof=CONSUMABLE GENERAL"`
	MinStock int                `json:"min_stock" validate:"gte=0"`
}

// BatchItemResult reports the outcome of one item in a batch; items are
// applied independently so one failure never aborts the rest.
type BatchItemResult struct {
	Index       int                     `json:"index"`
	Transaction *model.StockTransaction `json:"transaction,omitempty"`
	Error       *apperr.Error           `json:"error,omitempty"`
}

type BatchResult struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Items     []BatchItemResult `json:"items"`
}

type StockService interface {
	CreateMaterial(req *model.Material, actor Actor) error
	UpdateMaterial(id uuid.UUID, req *UpdateMaterialRequest, actor Actor) (*model.Material, error)
	DeleteMaterial(id uuid.UUID, actor Actor) error
	GetMaterial(id uuid.UUID) (*model.Material, error)
	ListMaterials(filter repository.MaterialFilter) ([]model.Material, error)

	ApplyMovement(req *MovementRequest, actor Actor) (*model.StockTransaction, error)
	ApplyBatch(reqs []MovementRequest, actor Actor) *BatchResult
	AdjustStock(materialID uuid.UUID, targetStock int, reason string, actor Actor) (*model.StockTransaction, error)

	ListTransactions(filter repository.TransactionFilter) ([]model.StockTransaction, error)
	GetTransaction(id uuid.UUID) (*model.StockTransaction, error)
}

type stockService struct {
	materialRepo repository.MaterialRepository
	txRepo       repository.TransactionRepository
	db           *gorm.DB
	hub          *ws.Hub
	notifier     LowStockNotifier
	logger       *zap.Logger
}

func NewStockService(mRepo repository.MaterialRepository, tRepo repository.TransactionRepository, db *gorm.DB, hub *ws.Hub, notifier LowStockNotifier, logger *zap.Logger) StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &stockService{
		materialRepo: mRepo,
		txRepo:       tRepo,
		db:           db,
		hub:          hub,
		notifier:     notifier,
		logger:       logger,
	}
}

func (s *stockService) CreateMaterial(req *model.Material, actor Actor) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return apperr.Validation(fmt.Sprintf("field '%s' failed on tag '%s'", first.FailedField, first.Tag))
	}

	existing, _ := s.materialRepo.FindByCode(req.Code)
	if existing != nil && existing.ID != uuid.Nil {
		return apperr.Newf(apperr.KindConflict, "material code '%s' already exists", req.Code)
	}

	if req.Type == "" {
		req.Type = model.MaterialConsumable
	}
	req.CreatedBy = actor.ID.String()
	req.UpdatedBy = actor.ID.String()

	// Initial stock lands through the ledger, not as a raw column value:
	// carve it off the request and record an IN movement after insert.
	initialStock := req.CurrentStock
	req.CurrentStock = 0

	if err := s.materialRepo.Create(req); err != nil {
		return err
	}

	if initialStock > 0 {
		if _, err := s.ApplyMovement(&MovementRequest{
			MaterialID: req.ID,
			Type:       model.MovementIn,
			Quantity:   initialStock,
			Reason:     "initial stock",
		}, actor); err != nil {
			return err
		}
		req.CurrentStock = initialStock
	}

	return nil
}

func (s *stockService) UpdateMaterial(id uuid.UUID, req *UpdateMaterialRequest, actor Actor) (*model.Material, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, apperr.Validation(fmt.Sprintf("field '%s' failed on tag '%s'", first.FailedField, first.Tag))
	}

	material, err := s.materialRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("material")
		}
		return nil, err
	}

	material.Name = req.Name
	material.Category = req.Category
	material.Unit = req.Unit
	if req.Type != "" {
		material.Type = req.Type
	}
	material.MinStock = req.MinStock
	material.UpdatedBy = actor.ID.String()

	if err := s.materialRepo.Update(material); err != nil {
		return nil, err
	}
	return material, nil
}

// DeleteMaterial soft-deletes the material. Ledger rows stay behind with a
// detached reference; history is never cascaded away.
func (s *stockService) DeleteMaterial(id uuid.UUID, actor Actor) error {
	if _, err := s.materialRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("material")
		}
		return err
	}
	return s.materialRepo.Delete(id)
}

func (s *stockService) GetMaterial(id uuid.UUID) (*model.Material, error) {
	material, err := s.materialRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("material")
		}
		return nil, err
	}
	return material, nil
}

func (s *stockService) ListMaterials(filter repository.MaterialFilter) ([]model.Material, error) {
	return s.materialRepo.FindAll(filter)
}

// ApplyMovement applies one signed quantity change and writes the ledger row
// in the same database transaction. The material row is locked for the
// duration, so two concurrent OUTs against the same material serialize and
// the floor check always sees the committed balance.
func (s *stockService) ApplyMovement(req *MovementRequest, actor Actor) (*model.StockTransaction, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, apperr.Validation(fmt.Sprintf("field '%s' failed on tag '%s'", first.FailedField, first.Tag))
	}

	var entry *model.StockTransaction
	var lowStock *model.Material

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var material model.Material
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&material, "id = ?", req.MaterialID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("material")
			}
			return err
		}

		created, err := s.applyLocked(tx, &material, req, actor)
		if err != nil {
			return err
		}
		entry = created

		if material.IsLowStock() {
			m := material
			lowStock = &m
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Side effects only after commit; a rollback must not broadcast.
	s.hub.BroadcastEvent("stock_movement", entry)
	if lowStock != nil && s.notifier != nil {
		go s.notifier.NotifyLowStock(context.Background(), lowStock)
	}

	return entry, nil
}

// applyLocked performs the counter update and ledger insert for a material
// row that the caller already locked inside tx. Mutates material.CurrentStock
// to the new balance.
func (s *stockService) applyLocked(tx *gorm.DB, material *model.Material, req *MovementRequest, actor Actor) (*model.StockTransaction, error) {
	newStock := material.CurrentStock
	switch req.Type {
	case model.MovementIn:
		newStock += req.Quantity
	case model.MovementOut:
		if material.CurrentStock < req.Quantity {
			return nil, apperr.InsufficientStock(material.CurrentStock, material.Unit)
		}
		newStock -= req.Quantity
	default:
		return nil, apperr.Validation("movement type must be IN or OUT")
	}

	if err := tx.Model(&model.Material{}).
		Where("id = ?", material.ID).
		Updates(map[string]interface{}{
			"current_stock": newStock,
			"updated_by":    actor.ID.String(),
		}).Error; err != nil {
		return nil, err
	}

	materialID := material.ID
	actorID := actor.ID
	entry := &model.StockTransaction{
		MaterialID:   &materialID,
		Type:         req.Type,
		Quantity:     req.Quantity,
		BalanceAfter: newStock,
		Reason:       req.Reason,
		UserID:       &actorID,
	}
	entry.CreatedBy = actor.ID.String()
	entry.UpdatedBy = actor.ID.String()

	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}

	material.CurrentStock = newStock
	return entry, nil
}

// ApplyBatch applies each movement independently, collecting per-item
// results instead of aborting the batch on first failure.
func (s *stockService) ApplyBatch(reqs []MovementRequest, actor Actor) *BatchResult {
	result := &BatchResult{Items: make([]BatchItemResult, 0, len(reqs))}

	for i := range reqs {
		entry, err := s.ApplyMovement(&reqs[i], actor)
		item := BatchItemResult{Index: i, Transaction: entry}
		if err != nil {
			var appErr *apperr.Error
			if !errors.As(err, &appErr) {
				s.logger.Error("batch movement failed", zap.Int("index", i), zap.Error(err))
				appErr = apperr.Internal("failed to apply movement")
			}
			item.Error = appErr
			item.Transaction = nil
			result.Failed++
		} else {
			result.Succeeded++
		}
		result.Items = append(result.Items, item)
	}

	return result
}

// AdjustStock sets the counter to targetStock by routing the delta through
// the ledger. There is no unaudited mutation path: replaying the transaction
// rows always reconstructs the balance.
func (s *stockService) AdjustStock(materialID uuid.UUID, targetStock int, reason string, actor Actor) (*model.StockTransaction, error) {
	if targetStock < 0 {
		return nil, apperr.Validation("target stock cannot be negative")
	}
	if reason == "" {
		reason = "manual adjustment"
	}

	var entry *model.StockTransaction
	var lowStock *model.Material

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var material model.Material
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&material, "id = ?", materialID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("material")
			}
			return err
		}

		delta := targetStock - material.CurrentStock
		if delta == 0 {
			return nil // already at target, nothing to record
		}

		req := &MovementRequest{MaterialID: materialID, Reason: reason}
		if delta > 0 {
			req.Type = model.MovementIn
			req.Quantity = delta
		} else {
			req.Type = model.MovementOut
			req.Quantity = -delta
		}

		created, err := s.applyLocked(tx, &material, req, actor)
		if err != nil {
			return err
		}
		entry = created

		if material.IsLowStock() {
			m := material
			lowStock = &m
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if entry != nil {
		s.hub.BroadcastEvent("stock_adjustment", entry)
	}
	if lowStock != nil && s.notifier != nil {
		go s.notifier.NotifyLowStock(context.Background(), lowStock)
	}

	return entry, nil
}

func (s *stockService) ListTransactions(filter repository.TransactionFilter) ([]model.StockTransaction, error) {
	return s.txRepo.FindAll(filter)
}

func (s *stockService) GetTransaction(id uuid.UUID) (*model.StockTransaction, error) {
	transaction, err := s.txRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("transaction")
		}
		return nil, err
	}
	return transaction, nil
}
