package service

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-sarpras-api/internal/apperr"
	"go-sarpras-api/internal/model"
	"go-sarpras-api/internal/repository"
	"go-sarpras-api/internal/ws"
	"go-sarpras-api/pkg/jwt"
)

// sessionIdleTimeout invalidates tokens whose user has not sent a heartbeat
// recently, independent of JWT expiry.
const sessionIdleTimeout = 5 * time.Minute

type AuthService interface {
	Login(email, password string) (*LoginResponse, error)
	ResetPassword(email, oldPassword, newPassword string) error
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
	Heartbeat(userID uuid.UUID) error
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo repository.UserRepository
	hub      *ws.Hub
	logger   *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, hub *ws.Hub, logger *zap.Logger) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{
		userRepo: userRepo,
		hub:      hub,
		logger:   logger,
	}
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid email or password")
	}

	if !user.IsActive {
		return nil, apperr.New(apperr.KindForbidden, "user account is inactive")
	}

	if !user.CheckPassword(password) {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid email or password")
	}

	roleCode := ""
	if user.Role != nil {
		roleCode = user.Role.Code
	}

	// Single session: a fresh token version invalidates older tokens.
	now := time.Now()
	user.TokenVersion = uuid.New().String()
	user.LastSeenAt = &now
	if err := s.userRepo.Update(user); err != nil {
		s.logger.Error("failed to update session", zap.Error(err))
		return nil, apperr.Internal("failed to update session")
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, roleCode, user.GetPrivilegeCodes(), user.TokenVersion)
	if err != nil {
		s.logger.Error("failed to sign token", zap.Error(err))
		return nil, apperr.Internal("failed to generate token")
	}

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) ResetPassword(email, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return apperr.NotFound("user")
	}

	if !user.CheckPassword(oldPassword) {
		return apperr.New(apperr.KindUnauthorized, "current password is incorrect")
	}

	if err := user.SetPassword(newPassword); err != nil {
		return apperr.Internal("failed to hash new password")
	}

	return s.userRepo.Update(user)
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid or expired token")
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, apperr.NotFound("user")
	}

	if !user.IsActive {
		return nil, apperr.New(apperr.KindForbidden, "user account is inactive")
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, apperr.New(apperr.KindUnauthorized, "session expired (logged in on another device)")
	}

	// LastSeenAt nil means no heartbeat since login; treat as idle.
	if user.LastSeenAt == nil || time.Since(*user.LastSeenAt) > sessionIdleTimeout {
		return nil, apperr.New(apperr.KindUnauthorized, "session expired due to inactivity")
	}

	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Heartbeat(userID uuid.UUID) error {
	if err := s.userRepo.UpdateLastSeen(userID); err != nil {
		return err
	}

	// Presence update for connected dashboards.
	s.hub.BroadcastEvent("user_status_update", map[string]interface{}{
		"user_id":      userID.String(),
		"status":       "online",
		"last_seen_at": time.Now(),
	})

	return nil
}
