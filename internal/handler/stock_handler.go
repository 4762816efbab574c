package handler

import (
	"time"

	"go-sarpras-api/internal/model"
	"go-sarpras-api/internal/repository"
	"go-sarpras-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StockHandler struct {
	service service.StockService
}

func NewStockHandler(s service.StockService) *StockHandler {
	return &StockHandler{service: s}
}

func (h *StockHandler) CreateMaterial(c *fiber.Ctx) error {
	var material model.Material
	if err := c.BodyParser(&material); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.CreateMaterial(&material, getActor(c)); err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Material created", "data": material})
}

func (h *StockHandler) UpdateMaterial(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid material ID"})
	}

	var req service.UpdateMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	material, err := h.service.UpdateMaterial(id, &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Material updated", "data": material})
}

func (h *StockHandler) DeleteMaterial(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid material ID"})
	}

	if err := h.service.DeleteMaterial(id, getActor(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Material deleted"})
}

func (h *StockHandler) GetMaterials(c *fiber.Ctx) error {
	filter := repository.MaterialFilter{
		Type:     model.MaterialType(c.Query("type")),
		Category: c.Query("category"),
		LowStock: c.QueryBool("low_stock"),
	}

	materials, err := h.service.ListMaterials(filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(materials)
}

func (h *StockHandler) GetMaterial(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid material ID"})
	}

	material, err := h.service.GetMaterial(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(material)
}

// CreateMovement records one stock movement through the ledger.
// POST /api/v1/stock/movements
func (h *StockHandler) CreateMovement(c *fiber.Ctx) error {
	var req service.MovementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	entry, err := h.service.ApplyMovement(&req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Movement recorded", "data": entry})
}

// CreateMovementBatch applies several movements with per-item results.
// Always returns 207-style payload with 200: callers inspect item errors.
// POST /api/v1/stock/movements/batch
func (h *StockHandler) CreateMovementBatch(c *fiber.Ctx) error {
	var reqs []service.MovementRequest
	if err := c.BodyParser(&reqs); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if len(reqs) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Batch cannot be empty"})
	}

	result := h.service.ApplyBatch(reqs, getActor(c))
	return c.JSON(result)
}

// AdjustStock sets a material's counter to an absolute value via the ledger.
// POST /api/v1/materials/:id/adjust
func (h *StockHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid material ID"})
	}

	var req struct {
		TargetStock int    `json:"target_stock"`
		Reason      string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	entry, err := h.service.AdjustStock(id, req.TargetStock, req.Reason, getActor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Stock adjusted", "data": entry})
}

func (h *StockHandler) GetTransactions(c *fiber.Ctx) error {
	filter := repository.TransactionFilter{
		Type: model.MovementType(c.Query("type")),
	}
	if raw := c.Query("material_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid material ID"})
		}
		filter.MaterialID = &id
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid from date, use YYYY-MM-DD"})
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid to date, use YYYY-MM-DD"})
		}
		filter.To = &t
	}

	transactions, err := h.service.ListTransactions(filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transactions)
}

func (h *StockHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	transaction, err := h.service.GetTransaction(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transaction)
}
