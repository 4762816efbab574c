package handler

import (
	"go-sarpras-api/internal/model"
	"go-sarpras-api/internal/repository"
	"go-sarpras-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BorrowHandler struct {
	service service.BorrowService
}

func NewBorrowHandler(s service.BorrowService) *BorrowHandler {
	return &BorrowHandler{service: s}
}

func (h *BorrowHandler) CreateAsset(c *fiber.Ctx) error {
	var asset model.FixedAsset
	if err := c.BodyParser(&asset); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.CreateAsset(&asset, getActor(c)); err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Asset created", "data": asset})
}

func (h *BorrowHandler) UpdateAsset(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid asset ID"})
	}

	var req model.FixedAsset
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	asset, err := h.service.UpdateAsset(id, &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Asset updated", "data": asset})
}

func (h *BorrowHandler) DeleteAsset(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid asset ID"})
	}

	if err := h.service.DeleteAsset(id, getActor(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Asset deleted"})
}

func (h *BorrowHandler) GetAssets(c *fiber.Ctx) error {
	filter := repository.AssetFilter{
		Category:  c.Query("category"),
		Condition: model.AssetCondition(c.Query("condition")),
	}

	assets, err := h.service.ListAssets(filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(assets)
}

func (h *BorrowHandler) GetAsset(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid asset ID"})
	}

	asset, err := h.service.GetAsset(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(asset)
}

// CreateBorrow opens a loan.
// POST /api/v1/borrows
func (h *BorrowHandler) CreateBorrow(c *fiber.Ctx) error {
	var req service.BorrowRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actor := getActor(c)
	// Staff borrow for themselves unless another borrower is stated.
	if req.BorrowerID == uuid.Nil {
		req.BorrowerID = actor.ID
	}

	borrow, err := h.service.Borrow(&req, actor)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Borrow created", "data": borrow})
}

// ReturnBorrow closes a loan, optionally with a new asset condition.
// POST /api/v1/borrows/:id/return
func (h *BorrowHandler) ReturnBorrow(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid borrow ID"})
	}

	var req service.ReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	borrow, err := h.service.Return(id, &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Asset returned", "data": borrow})
}

// UndoReturn re-opens a returned loan.
// POST /api/v1/borrows/:id/undo-return
func (h *BorrowHandler) UndoReturn(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid borrow ID"})
	}

	borrow, err := h.service.UndoReturn(id, getActor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Return undone", "data": borrow})
}

// MarkLost flags an open loan as lost.
// POST /api/v1/borrows/:id/lost
func (h *BorrowHandler) MarkLost(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid borrow ID"})
	}

	borrow, err := h.service.MarkLost(id, getActor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Borrow marked lost", "data": borrow})
}

func (h *BorrowHandler) DeleteBorrow(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid borrow ID"})
	}

	if err := h.service.DeleteBorrow(id, getActor(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Borrow deleted"})
}

func (h *BorrowHandler) GetBorrows(c *fiber.Ctx) error {
	filter := repository.BorrowFilter{
		Status:      model.BorrowStatus(c.Query("status")),
		OverdueOnly: c.QueryBool("overdue"),
	}
	if raw := c.Query("asset_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid asset ID"})
		}
		filter.AssetID = &id
	}
	if raw := c.Query("borrower_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid borrower ID"})
		}
		filter.BorrowerID = &id
	}

	borrows, err := h.service.ListBorrows(filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(borrows)
}

func (h *BorrowHandler) GetBorrow(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid borrow ID"})
	}

	borrow, err := h.service.GetBorrow(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(borrow)
}
