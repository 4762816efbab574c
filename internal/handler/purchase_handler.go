package handler

import (
	"go-sarpras-api/internal/model"
	"go-sarpras-api/internal/repository"
	"go-sarpras-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PurchaseHandler struct {
	service service.PurchaseService
}

func NewPurchaseHandler(s service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: s}
}

func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var req service.CreatePurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	request, err := h.service.Create(&req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Purchase request created", "data": request})
}

// Review approves or rejects a pending request.
// PUT /api/v1/purchases/:id/review
func (h *PurchaseHandler) Review(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase request ID"})
	}

	var req service.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	request, err := h.service.Review(id, &req, getActor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Purchase request reviewed", "data": request})
}

func (h *PurchaseHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase request ID"})
	}

	if err := h.service.Delete(id, getActor(c)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Purchase request deleted"})
}

func (h *PurchaseHandler) GetAll(c *fiber.Ctx) error {
	filter := repository.PurchaseFilter{
		Status: model.PurchaseStatus(c.Query("status")),
	}
	if raw := c.Query("requester_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid requester ID"})
		}
		filter.RequesterID = &id
	}

	requests, err := h.service.List(filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(requests)
}

func (h *PurchaseHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase request ID"})
	}

	request, err := h.service.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(request)
}
