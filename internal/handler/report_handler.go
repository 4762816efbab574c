package handler

import (
	"time"

	"go-sarpras-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GetDashboardStats returns overview counters for the dashboard.
// GET /api/v1/dashboard/stats
func (h *ReportHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// GetStockMovement returns per-day IN/OUT aggregates for charting.
// GET /api/v1/dashboard/stock-movement?days=30
func (h *ReportHandler) GetStockMovement(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	if days <= 0 || days > 365 {
		return c.Status(400).JSON(fiber.Map{"error": "days must be between 1 and 365"})
	}

	movement, err := h.service.GetStockMovement(days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movement)
}

// GetStockReport returns the inventory snapshot as JSON.
// GET /api/v1/reports/stock
func (h *ReportHandler) GetStockReport(c *fiber.Ctx) error {
	report, err := h.service.StockReport()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// GetBorrowReport returns loans within a date range.
// GET /api/v1/reports/borrows?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ReportHandler) GetBorrowReport(c *fiber.Ctx) error {
	now := time.Now()
	from := now.AddDate(0, -1, 0)
	to := now

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid from date, use YYYY-MM-DD"})
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid to date, use YYYY-MM-DD"})
		}
		// Include the whole end day.
		to = t.AddDate(0, 0, 1).Add(-time.Second)
	}

	report, err := h.service.BorrowReport(from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// ExportStockPDF streams the stock report as a PDF document.
// GET /api/v1/reports/stock/pdf
func (h *ReportHandler) ExportStockPDF(c *fiber.Ctx) error {
	pdf, err := h.service.ExportStockPDF(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="laporan-stok.pdf"`)
	return c.Send(pdf)
}
