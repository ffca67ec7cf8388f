package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/estatehub/property-moderation/internal/auth"
	"github.com/estatehub/property-moderation/internal/config"
	"github.com/estatehub/property-moderation/internal/domain"
	"github.com/estatehub/property-moderation/internal/repository"
	apperrors "github.com/estatehub/property-moderation/pkg/util/errorutil"
)

// AuthService coordinates registration, login and admin credential flows.
type AuthService struct {
	users        repository.UserRepository
	tokenMgr     *auth.TokenManager
	bcryptCost   int
	minPassword  int
	termsVersion string
	logger       *zap.Logger
	now          Clock
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Logger   *zap.Logger
	Clock    Clock
}

// RegisterInput is a self-service sign up.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Role        string
	AcceptTerms bool
	IPAddress   string
}

// Session is an issued access token.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	minPassword := cfg.MinPasswordLength
	if minPassword <= 0 {
		minPassword = 8
	}
	return &AuthService{
		users:        deps.UserRepo,
		tokenMgr:     auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL()),
		bcryptCost:   cfg.BcryptCost,
		minPassword:  minPassword,
		termsVersion: cfg.TermsVersion,
		logger:       loggerOrNop(deps.Logger),
		now:          clockOrNow(deps.Clock),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) checkPasswordLength(password string) error {
	if len(password) < s.minPassword {
		return apperrors.NewValidationError(
			fmt.Sprintf("Password must be at least %d characters long", s.minPassword),
			map[string]any{"min_length": s.minPassword})
	}
	return nil
}

// Register creates a buyer or seller account and records the terms
// acceptance.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("Name, email and password are required", nil)
	}
	if !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("Invalid email address", map[string]any{"email": input.Email})
	}
	if err := s.checkPasswordLength(input.Password); err != nil {
		return nil, err
	}
	role := domain.Role(strings.ToLower(strings.TrimSpace(input.Role)))
	if role == "" {
		role = domain.RoleBuyer
	}
	if role != domain.RoleBuyer && role != domain.RoleSeller {
		return nil, apperrors.NewValidationError("Role must be 'buyer' or 'seller'", map[string]any{"role": input.Role})
	}
	if !input.AcceptTerms {
		return nil, apperrors.NewValidationError("You must accept the terms and conditions", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		Terms: &domain.TermsAcceptance{
			AcceptedAt: s.now(),
			Version:    s.termsVersion,
			IPAddress:  input.IPAddress,
		},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapWriteError(err, "user")
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return s.issue(user)
}

// Login authenticates with email and password. Deleted accounts fail as
// unknown credentials; suspended accounts are refused with 403.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperrors.NewValidationError("Email and password are required", nil)
	}
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("Invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if user.IsDeleted() {
		return nil, apperrors.NewUnauthorized("Invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("Invalid credentials")
	}
	if err := auth.CheckAccountStanding(user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}

// ChangeAdminPassword rotates an admin's password. Field and length checks
// run before any lookup or hash comparison.
func (s *AuthService) ChangeAdminPassword(ctx context.Context, adminID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apperrors.NewValidationError("Current password and new password are required", nil)
	}
	if err := s.checkPasswordLength(newPassword); err != nil {
		return err
	}

	admin, err := loadUser(ctx, s.users, adminID, "admin")
	if err != nil {
		return err
	}
	if admin.Role != domain.RoleAdmin || admin.IsDeleted() {
		return apperrors.NewNotFound("admin", map[string]any{"admin_id": adminID})
	}
	if err := auth.ComparePassword(admin.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("Current password is incorrect")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	admin.PasswordHash = hash
	if err := s.users.Update(ctx, admin); err != nil {
		return mapWriteError(err, "admin")
	}
	s.logger.Info("admin password changed", zap.String("admin_id", adminID))
	return nil
}

// BootstrapAdmin creates the admin account when no account uses email yet.
// It reports whether an account was created.
func (s *AuthService) BootstrapAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	if err := s.checkPasswordLength(password); err != nil {
		return false, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	admin := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Active:       true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return false, nil
		}
		return false, err
	}
	s.logger.Info("bootstrap admin created", zap.String("admin_id", admin.ID), zap.String("email", email))
	return true, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
