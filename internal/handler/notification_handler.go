package handler

import (
	"go-sarpras-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	service service.NotifierService
}

func NewNotificationHandler(s service.NotifierService) *NotificationHandler {
	return &NotificationHandler{service: s}
}

// GetMine lists the caller's notifications.
// GET /api/v1/notifications?unread=true
func (h *NotificationHandler) GetMine(c *fiber.Ctx) error {
	actor := getActor(c)
	notifications, err := h.service.ListForUser(actor.ID, c.QueryBool("unread"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(notifications)
}

// GetUnreadCount returns the caller's unread badge count.
// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	actor := getActor(c)
	count, err := h.service.CountUnread(actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"unread": count})
}

// MarkRead flips one notification's read flag.
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid notification ID"})
	}

	if err := h.service.MarkRead(id, getActor(c).ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked read"})
}

// MarkAllRead flips every unread notification of the caller.
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.service.MarkAllRead(getActor(c).ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "All notifications marked read"})
}

// RunLowStockScan triggers the low-stock scan ad hoc.
// POST /api/v1/scans/low-stock
func (h *NotificationHandler) RunLowStockScan(c *fiber.Ctx) error {
	summary, err := h.service.ScanLowStock(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// RunOverdueScan triggers the overdue scan ad hoc.
// POST /api/v1/scans/overdue
func (h *NotificationHandler) RunOverdueScan(c *fiber.Ctx) error {
	summary, err := h.service.ScanOverdue(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
