package service

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"go-sarpras-api/internal/apperr"
	"go-sarpras-api/internal/model"
	"go-sarpras-api/internal/repository"
	"go-sarpras-api/pkg/clients/renderer"

	"go.uber.org/zap"
)

// StockReport is the material inventory snapshot used both as a JSON
// payload and as input to the PDF template.
type StockReport struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Materials   []model.Material `json:"materials"`
	LowStock    int              `json:"low_stock_count"`
}

// BorrowReport lists loans in a date range with derived overdue flags.
type BorrowReport struct {
	GeneratedAt time.Time              `json:"generated_at"`
	From        time.Time              `json:"from"`
	To          time.Time              `json:"to"`
	Borrows     []model.BorrowResponse `json:"borrows"`
	Overdue     int                    `json:"overdue_count"`
}

type ReportService interface {
	StockReport() (*StockReport, error)
	BorrowReport(from, to time.Time) (*BorrowReport, error)
	ExportStockPDF(ctx context.Context) ([]byte, error)
	GetDashboardStats() (*repository.DashboardStats, error)
	GetStockMovement(days int) ([]repository.StockMovementData, error)
}

type reportService struct {
	materialRepo repository.MaterialRepository
	borrowRepo   repository.BorrowRepository
	txRepo       repository.TransactionRepository
	renderer     *renderer.Client
	logger       *zap.Logger
}

func NewReportService(
	materialRepo repository.MaterialRepository,
	borrowRepo repository.BorrowRepository,
	txRepo repository.TransactionRepository,
	rendererClient *renderer.Client,
	logger *zap.Logger,
) ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &reportService{
		materialRepo: materialRepo,
		borrowRepo:   borrowRepo,
		txRepo:       txRepo,
		renderer:     rendererClient,
		logger:       logger,
	}
}

func (s *reportService) StockReport() (*StockReport, error) {
	materials, err := s.materialRepo.FindAll(repository.MaterialFilter{})
	if err != nil {
		return nil, err
	}

	report := &StockReport{
		GeneratedAt: time.Now(),
		Materials:   materials,
	}
	for i := range materials {
		if materials[i].IsLowStock() {
			report.LowStock++
		}
	}
	return report, nil
}

func (s *reportService) BorrowReport(from, to time.Time) (*BorrowReport, error) {
	borrows, err := s.borrowRepo.FindAll(repository.BorrowFilter{})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	report := &BorrowReport{GeneratedAt: now, From: from, To: to}
	for _, b := range borrows {
		if b.BorrowDate.Before(from) || b.BorrowDate.After(to) {
			continue
		}
		resp := b.ToResponse(now)
		if resp.IsOverdue {
			report.Overdue++
		}
		report.Borrows = append(report.Borrows, resp)
	}
	return report, nil
}

var stockReportTmpl = template.Must(template.New("stock_report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Laporan Stok</title>
<style>
body { font-family: sans-serif; font-size: 12px; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #999; padding: 4px 8px; text-align: left; }
.low { color: #b00; font-weight: bold; }
</style>
</head>
<body>
<h1>Laporan Stok Barang</h1>
<p>Dibuat: {{.GeneratedAt.Format "2006-01-02 15:04"}} &mdash; {{.LowStock}} item di bawah minimum</p>
<table>
<tr><th>Kode</th><th>Nama</th><th>Kategori</th><th>Stok</th><th>Minimum</th><th>Satuan</th></tr>
{{range .Materials}}
<tr{{if .IsLowStock}} class="low"{{end}}>
<td>{{.Code}}</td><td>{{.Name}}</td><td>{{.Category}}</td>
<td>{{.CurrentStock}}</td><td>{{.MinStock}}</td><td>{{.Unit}}</td>
</tr>
{{end}}
</table>
</body>
</html>`))

// ExportStockPDF renders the stock report to HTML and delegates conversion
// to the external renderer service.
func (s *reportService) ExportStockPDF(ctx context.Context) ([]byte, error) {
	report, err := s.StockReport()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := stockReportTmpl.Execute(&buf, report); err != nil {
		s.logger.Error("failed to render stock report template", zap.Error(err))
		return nil, apperr.Internal("failed to render report")
	}

	pdf, err := s.renderer.RenderPDF(ctx, buf.String())
	if err != nil {
		return nil, apperr.Internal("report conversion service unavailable")
	}
	return pdf, nil
}

func (s *reportService) GetDashboardStats() (*repository.DashboardStats, error) {
	return s.txRepo.GetDashboardStats()
}

func (s *reportService) GetStockMovement(days int) ([]repository.StockMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)
	return s.txRepo.GetStockMovement(startDate, endDate)
}
