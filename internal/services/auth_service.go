package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mundodosbots/backend/internal/auth"
	"github.com/mundodosbots/backend/internal/models"
	"github.com/mundodosbots/backend/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Validation limits for user input
const (
	minPasswordLength = 6
	minNameLength     = 2
	// resetTokenBytes is the entropy of a reset token before hex encoding
	resetTokenBytes = 32
)

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserRepository is the interface that wraps methods for user data access
type UserRepository interface {
	// Create inserts a new user. Returns repositories.ErrEmailExists on a duplicate email.
	Create(ctx context.Context, user *models.User) error
	// GetByEmail retrieves a user by exact email match.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// ExistsByEmail checks if a user with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdatePassword overwrites the stored password hash of a user.
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
}

// ResetTokenRepository is the interface that wraps methods for reset token data access
type ResetTokenRepository interface {
	// Create inserts a new password reset token.
	Create(ctx context.Context, token *models.PasswordResetToken) error
	// GetValidWithEmail retrieves an unused, unexpired token and the owner's email.
	GetValidWithEmail(ctx context.Context, token string, now time.Time) (*models.PasswordResetToken, string, error)
	// ConsumeAndResetPassword marks the token used and updates the password in one transaction.
	ConsumeAndResetPassword(ctx context.Context, token string, now time.Time, passwordHash string) error
}

// ResetMailer is the interface that wraps reset email delivery
type ResetMailer interface {
	Enabled() bool
	SendPasswordReset(to, name, resetLink string) error
}

// ForgotPasswordResult is the outcome of a forgot-password request
type ForgotPasswordResult struct {
	// ResetToken is set only when the service is configured to expose tokens
	// in the response (development convenience, never in production).
	ResetToken string
}

// authService implements the authentication and password-reset flows
type authService struct {
	userRepo         UserRepository
	resetTokenRepo   ResetTokenRepository
	tokenManager     *auth.TokenManager
	mailer           ResetMailer
	logger           *zap.Logger
	resetTokenTTL    time.Duration
	siteBaseURL      string
	exposeResetToken bool
	now              func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	resetTokenRepo ResetTokenRepository,
	tokenManager *auth.TokenManager,
	mailer ResetMailer,
	logger *zap.Logger,
	resetTokenTTL time.Duration,
	siteBaseURL string,
	exposeResetToken bool,
) *authService {
	return &authService{
		userRepo:         userRepo,
		resetTokenRepo:   resetTokenRepo,
		tokenManager:     tokenManager,
		mailer:           mailer,
		logger:           logger,
		resetTokenTTL:    resetTokenTTL,
		siteBaseURL:      siteBaseURL,
		exposeResetToken: exposeResetToken,
		now:              time.Now,
	}
}

// Login authenticates a user by email and password and issues a session token.
// Unknown email, inactive account and wrong password all map to ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	var validationErrors []models.ValidationError
	if !emailRegex.MatchString(email) {
		validationErrors = append(validationErrors, models.ValidationError{
			Field:   "email",
			Message: "Email inválido",
		})
	}
	if len(req.Password) < minPasswordLength {
		validationErrors = append(validationErrors, models.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("Senha deve ter no mínimo %d caracteres", minPasswordLength),
		})
	}
	if len(validationErrors) > 0 {
		return nil, "", &ValidationFailedError{Errors: validationErrors}
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !user.IsActive {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokenManager.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate session token: %w", err)
	}

	return user, token, nil
}

// Verify validates a session token and returns the current user.
// Pure read; repeated calls with the same token return the same identity.
func (s *authService) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokenManager.Validate(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	// A deactivated account invalidates outstanding tokens on the next round trip
	if !user.IsActive {
		return nil, ErrInvalidToken
	}

	return user, nil
}

// ChangePassword re-verifies the current password before overwriting the hash
func (s *authService) ChangePassword(ctx context.Context, userID int, req *models.ChangePasswordRequest) error {
	var validationErrors []models.ValidationError
	if len(req.CurrentPassword) < minPasswordLength {
		validationErrors = append(validationErrors, models.ValidationError{
			Field:   "currentPassword",
			Message: fmt.Sprintf("Senha deve ter no mínimo %d caracteres", minPasswordLength),
		})
	}
	if len(req.NewPassword) < minPasswordLength {
		validationErrors = append(validationErrors, models.ValidationError{
			Field:   "newPassword",
			Message: fmt.Sprintf("Senha deve ter no mínimo %d caracteres", minPasswordLength),
		})
	}
	if len(validationErrors) > 0 {
		return &ValidationFailedError{Errors: validationErrors}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}

	// Same rule as Verify: deactivation cuts off outstanding tokens
	if !user.IsActive {
		return ErrInvalidToken
	}

	// Defense against session hijack: the bearer must still know the current password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrCurrentPasswordIncorrect
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, userID, string(passwordHash))
}

// Register creates a new editor account
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(strings.ToLower(req.Email))

	var validationErrors []models.ValidationError
	if len([]rune(name)) < minNameLength {
		validationErrors = append(validationErrors, models.ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("Nome deve ter no mínimo %d caracteres", minNameLength),
		})
	}
	if !emailRegex.MatchString(email) {
		validationErrors = append(validationErrors, models.ValidationError{
			Field:   "email",
			Message: "Email inválido",
		})
	}
	if len(req.Password) < minPasswordLength {
		validationErrors = append(validationErrors, models.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("Senha deve ter no mínimo %d caracteres", minPasswordLength),
		})
	}
	if len(validationErrors) > 0 {
		return nil, &ValidationFailedError{Errors: validationErrors}
	}

	// Fast-path existence check. The unique constraint on users.email is the
	// real guard; a concurrent insert still surfaces as ErrEmailExists below.
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailInUse
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         models.RoleEditor, // Registration always creates editors
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailExists) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	return user, nil
}

// ForgotPassword creates a reset token for an active account and delivers it by email.
// The result is identical whether or not the email is registered, so the endpoint
// cannot be used to enumerate accounts.
func (s *authService) ForgotPassword(ctx context.Context, email string) (*ForgotPasswordResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	result := &ForgotPasswordResult{}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return result, nil
		}
		return nil, err
	}

	if !user.IsActive {
		return result, nil
	}

	token, err := generateResetToken()
	if err != nil {
		return nil, err
	}

	resetToken := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: s.now().Add(s.resetTokenTTL),
		Used:      false,
	}

	if err := s.resetTokenRepo.Create(ctx, resetToken); err != nil {
		return nil, err
	}

	// Email delivery must not block or fail the response; a delivery error is
	// logged and the client still receives the generic message.
	if s.mailer != nil && s.mailer.Enabled() {
		resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.siteBaseURL, token)
		go func() {
			if err := s.mailer.SendPasswordReset(user.Email, user.Name, resetLink); err != nil {
				s.logger.Warn("failed to send password reset email",
					zap.Int("user_id", user.ID), zap.Error(err))
			}
		}()
	}

	if s.exposeResetToken {
		result.ResetToken = token
	}

	return result, nil
}

// ValidateResetToken checks a reset token and returns the associated email for display
func (s *authService) ValidateResetToken(ctx context.Context, token string) (string, error) {
	_, email, err := s.resetTokenRepo.GetValidWithEmail(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, repositories.ErrTokenNotFound) {
			return "", ErrInvalidResetToken
		}
		return "", err
	}

	return email, nil
}

// ResetPassword consumes a valid reset token and sets the new password.
// Token consumption and the password update commit or roll back together.
func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if len(req.NewPassword) < minPasswordLength {
		return &ValidationFailedError{Errors: []models.ValidationError{{
			Field:   "newPassword",
			Message: fmt.Sprintf("Senha deve ter no mínimo %d caracteres", minPasswordLength),
		}}}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.resetTokenRepo.ConsumeAndResetPassword(ctx, req.Token, s.now(), string(passwordHash)); err != nil {
		if errors.Is(err, repositories.ErrTokenNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	return nil
}

// generateResetToken returns a hex-encoded high-entropy random token
func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
