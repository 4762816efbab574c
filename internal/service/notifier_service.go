package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-sarpras-api/internal/apperr"
	"go-sarpras-api/internal/model"
	"go-sarpras-api/internal/repository"
	"go-sarpras-api/internal/ws"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// dedupTTL is how long a scan suppresses a repeat notification for the same
// (user, subject) pair.
const dedupTTL = 24 * time.Hour

// ScanSummary reports what one scan run did.
type ScanSummary struct {
	Scanned  int `json:"scanned"`
	Notified int `json:"notified"`
	Skipped  int `json:"skipped"`
}

type NotifierService interface {
	ScanLowStock(ctx context.Context) (*ScanSummary, error)
	ScanOverdue(ctx context.Context) (*ScanSummary, error)
	NotifyLowStock(ctx context.Context, material *model.Material)
	NotifyAdmins(ctx context.Context, notifType model.NotificationType, title, message, actionLink string)
	Notify(ctx context.Context, userID uuid.UUID, notifType model.NotificationType, title, message, actionLink string) error

	ListForUser(userID uuid.UUID, unreadOnly bool) ([]model.Notification, error)
	CountUnread(userID uuid.UUID) (int64, error)
	MarkRead(id, userID uuid.UUID) error
	MarkAllRead(userID uuid.UUID) error
}

type notifierService struct {
	notifRepo    repository.NotificationRepository
	materialRepo repository.MaterialRepository
	borrowRepo   repository.BorrowRepository
	userRepo     repository.UserRepository
	rdb          *redis.Client
	hub          *ws.Hub
	logger       *zap.Logger
}

func NewNotifierService(
	notifRepo repository.NotificationRepository,
	materialRepo repository.MaterialRepository,
	borrowRepo repository.BorrowRepository,
	userRepo repository.UserRepository,
	rdb *redis.Client,
	hub *ws.Hub,
	logger *zap.Logger,
) NotifierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &notifierService{
		notifRepo:    notifRepo,
		materialRepo: materialRepo,
		borrowRepo:   borrowRepo,
		userRepo:     userRepo,
		rdb:          rdb,
		hub:          hub,
		logger:       logger,
	}
}

// shouldEmit consults redis with SET NX. When redis is unavailable the scan
// degrades to emitting: a duplicate alert beats a silently dropped one.
func (s *notifierService) shouldEmit(ctx context.Context, key string) bool {
	if s.rdb == nil {
		return true
	}
	ok, err := s.rdb.SetNX(ctx, key, 1, dedupTTL).Result()
	if err != nil {
		s.logger.Warn("notification dedup unavailable, emitting anyway", zap.String("key", key), zap.Error(err))
		return true
	}
	return ok
}

func (s *notifierService) create(ctx context.Context, n *model.Notification) error {
	if err := s.notifRepo.Create(n); err != nil {
		return err
	}
	s.hub.BroadcastEvent("notification", n)
	return nil
}

// ScanLowStock emits a LOW_STOCK notification to every admin for every
// material at or below its threshold. Idempotent within the dedup window;
// its only writes are notification inserts.
func (s *notifierService) ScanLowStock(ctx context.Context) (*ScanSummary, error) {
	materials, err := s.materialRepo.FindLowStock()
	if err != nil {
		return nil, err
	}

	admins, err := s.userRepo.FindByRoleCodes(model.AdminRoleCodes)
	if err != nil {
		return nil, err
	}

	summary := &ScanSummary{Scanned: len(materials)}
	for i := range materials {
		m := &materials[i]
		for _, admin := range admins {
			key := fmt.Sprintf("dedup:lowstock:%s:%s", admin.ID, m.ID)
			if !s.shouldEmit(ctx, key) {
				summary.Skipped++
				continue
			}

			metadata, _ := json.Marshal(map[string]interface{}{
				"material_id":   m.ID,
				"current_stock": m.CurrentStock,
				"min_stock":     m.MinStock,
				"unit":          m.Unit,
			})
			n := &model.Notification{
				UserID:     admin.ID,
				Title:      "Stok menipis: " + m.Name,
				Message:    fmt.Sprintf("Stok %s tersisa %d %s (minimum %d)", m.Name, m.CurrentStock, m.Unit, m.MinStock),
				Type:       model.NotifLowStock,
				ActionLink: "/materials/" + m.ID.String(),
				Metadata:   string(metadata),
			}
			if err := s.create(ctx, n); err != nil {
				s.logger.Error("failed to create low-stock notification", zap.Error(err))
				continue
			}
			summary.Notified++
		}
	}

	s.logger.Info("low-stock scan finished",
		zap.Int("scanned", summary.Scanned),
		zap.Int("notified", summary.Notified),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

// ScanOverdue notifies borrowers of open loans past their expected return
// date. It never writes the borrow status: overdue stays a derived view.
func (s *notifierService) ScanOverdue(ctx context.Context) (*ScanSummary, error) {
	overdue, err := s.borrowRepo.FindOverdue(time.Now())
	if err != nil {
		return nil, err
	}

	summary := &ScanSummary{Scanned: len(overdue)}
	for i := range overdue {
		b := &overdue[i]
		key := fmt.Sprintf("dedup:overdue:%s:%s", b.BorrowerID, b.ID)
		if !s.shouldEmit(ctx, key) {
			summary.Skipped++
			continue
		}

		assetName := "asset"
		if b.Asset != nil {
			assetName = b.Asset.Name
		}
		metadata, _ := json.Marshal(map[string]interface{}{
			"borrow_id":            b.ID,
			"asset_id":             b.AssetID,
			"expected_return_date": b.ExpectedReturnDate,
		})
		n := &model.Notification{
			UserID:     b.BorrowerID,
			Title:      "Pengembalian terlambat: " + assetName,
			Message:    fmt.Sprintf("Peminjaman %s sudah melewati tanggal pengembalian (%s)", assetName, b.ExpectedReturnDate.Format("2006-01-02")),
			Type:       model.NotifOverdue,
			ActionLink: "/borrows/" + b.ID.String(),
			Metadata:   string(metadata),
		}
		if err := s.create(ctx, n); err != nil {
			s.logger.Error("failed to create overdue notification", zap.Error(err))
			continue
		}
		summary.Notified++
	}

	s.logger.Info("overdue scan finished",
		zap.Int("scanned", summary.Scanned),
		zap.Int("notified", summary.Notified),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

// NotifyLowStock alerts admins about one material immediately after a
// movement drops it to the threshold. Same dedup keys as the periodic scan.
func (s *notifierService) NotifyLowStock(ctx context.Context, material *model.Material) {
	admins, err := s.userRepo.FindByRoleCodes(model.AdminRoleCodes)
	if err != nil {
		s.logger.Error("failed to resolve admins for low-stock alert", zap.Error(err))
		return
	}

	for _, admin := range admins {
		key := fmt.Sprintf("dedup:lowstock:%s:%s", admin.ID, material.ID)
		if !s.shouldEmit(ctx, key) {
			continue
		}
		n := &model.Notification{
			UserID:     admin.ID,
			Title:      "Stok menipis: " + material.Name,
			Message:    fmt.Sprintf("Stok %s tersisa %d %s (minimum %d)", material.Name, material.CurrentStock, material.Unit, material.MinStock),
			Type:       model.NotifLowStock,
			ActionLink: "/materials/" + material.ID.String(),
		}
		if err := s.create(ctx, n); err != nil {
			s.logger.Error("failed to create low-stock notification", zap.Error(err))
		}
	}
}

// NotifyAdmins fans one notification out to every admin user.
func (s *notifierService) NotifyAdmins(ctx context.Context, notifType model.NotificationType, title, message, actionLink string) {
	admins, err := s.userRepo.FindByRoleCodes(model.AdminRoleCodes)
	if err != nil {
		s.logger.Error("failed to resolve admin users", zap.Error(err))
		return
	}
	for _, admin := range admins {
		if err := s.Notify(ctx, admin.ID, notifType, title, message, actionLink); err != nil {
			s.logger.Error("failed to notify admin", zap.String("user_id", admin.ID.String()), zap.Error(err))
		}
	}
}

func (s *notifierService) Notify(ctx context.Context, userID uuid.UUID, notifType model.NotificationType, title, message, actionLink string) error {
	n := &model.Notification{
		UserID:     userID,
		Title:      title,
		Message:    message,
		Type:       notifType,
		ActionLink: actionLink,
	}
	return s.create(ctx, n)
}

func (s *notifierService) ListForUser(userID uuid.UUID, unreadOnly bool) ([]model.Notification, error) {
	return s.notifRepo.FindByUser(userID, unreadOnly)
}

func (s *notifierService) CountUnread(userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(userID)
}

func (s *notifierService) MarkRead(id, userID uuid.UUID) error {
	if err := s.notifRepo.MarkRead(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("notification")
		}
		return err
	}
	return nil
}

func (s *notifierService) MarkAllRead(userID uuid.UUID) error {
	return s.notifRepo.MarkAllRead(userID)
}
