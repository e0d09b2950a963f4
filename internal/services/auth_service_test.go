package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mundodosbots/backend/internal/auth"
	"github.com/mundodosbots/backend/internal/models"
	"github.com/mundodosbots/backend/internal/repositories"
)

// mockUserRepository is an in-memory mock implementation of UserRepository
type mockUserRepository struct {
	usersByEmail map[string]*models.User
	usersByID    map[int]*models.User
	nextID       int
	createErr    error
	existsErr    error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[int]*models.User),
		nextID:       1,
	}
}

func (m *mockUserRepository) add(user *models.User) *models.User {
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	return user
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.usersByEmail[user.Email]; ok {
		return repositories.ErrEmailExists
	}
	m.add(user)
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.usersByEmail[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	user, ok := m.usersByID[userID]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.usersByEmail[email]
	return ok, nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	user, ok := m.usersByID[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

// mockResetTokenRepository is an in-memory mock implementation of ResetTokenRepository.
// It applies the same validity predicate as the real store (unused and unexpired),
// so expiry and single-use behavior can be exercised against an injected clock.
type mockResetTokenRepository struct {
	users     *mockUserRepository
	tokens    map[string]*models.PasswordResetToken
	nextID    int
	createErr error
}

func newMockResetTokenRepository(users *mockUserRepository) *mockResetTokenRepository {
	return &mockResetTokenRepository{
		users:  users,
		tokens: make(map[string]*models.PasswordResetToken),
		nextID: 1,
	}
}

func (m *mockResetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	if m.createErr != nil {
		return m.createErr
	}
	token.ID = m.nextID
	m.nextID++
	m.tokens[token.Token] = token
	return nil
}

func (m *mockResetTokenRepository) valid(token string, now time.Time) *models.PasswordResetToken {
	t, ok := m.tokens[token]
	if !ok || t.Used || !t.ExpiresAt.After(now) {
		return nil
	}
	return t
}

func (m *mockResetTokenRepository) GetValidWithEmail(ctx context.Context, token string, now time.Time) (*models.PasswordResetToken, string, error) {
	t := m.valid(token, now)
	if t == nil {
		return nil, "", repositories.ErrTokenNotFound
	}
	user, ok := m.users.usersByID[t.UserID]
	if !ok || !user.IsActive {
		return nil, "", repositories.ErrTokenNotFound
	}
	return t, user.Email, nil
}

func (m *mockResetTokenRepository) ConsumeAndResetPassword(ctx context.Context, token string, now time.Time, passwordHash string) error {
	t := m.valid(token, now)
	if t == nil {
		return repositories.ErrTokenNotFound
	}
	t.Used = true
	if user, ok := m.users.usersByID[t.UserID]; ok {
		user.PasswordHash = passwordHash
	}
	return nil
}

// mockResetMailer records reset email deliveries
type mockResetMailer struct {
	enabled bool
	sent    chan string
	err     error
}

func (m *mockResetMailer) Enabled() bool {
	return m.enabled
}

func (m *mockResetMailer) SendPasswordReset(to, name, resetLink string) error {
	if m.sent != nil {
		m.sent <- resetLink
	}
	return m.err
}

// authTestEnv bundles the auth service with its mocks for a test case
type authTestEnv struct {
	svc       *authService
	userRepo  *mockUserRepository
	tokenRepo *mockResetTokenRepository
	mailer    *mockResetMailer
	tm        *auth.TokenManager
}

func setupAuthService(t *testing.T) *authTestEnv {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	userRepo := newMockUserRepository()
	tokenRepo := newMockResetTokenRepository(userRepo)
	mailer := &mockResetMailer{}
	tm := auth.NewTokenManager("test-secret", time.Hour)

	svc := NewAuthService(userRepo, tokenRepo, tm, mailer, logger, time.Hour, "https://mundodosbots.com.br", false)

	return &authTestEnv{
		svc:       svc,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		mailer:    mailer,
		tm:        tm,
	}
}

// addActiveUser stores a user with the given password hashed
func addActiveUser(t *testing.T, env *authTestEnv, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return env.userRepo.add(&models.User{
		Name:         "Maria Silva",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleEditor,
		IsActive:     true,
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("success returns user and a valid token", func(t *testing.T) {
		env := setupAuthService(t)
		stored := addActiveUser(t, env, "maria@example.com", "secret123")

		user, token, err := env.svc.Login(context.Background(), &models.LoginRequest{
			Email:    "maria@example.com",
			Password: "secret123",
		})

		require.NoError(t, err)
		assert.Equal(t, stored.ID, user.ID)
		require.NotEmpty(t, token)

		claims, err := env.tm.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, stored.ID, claims.UserID)
		assert.Equal(t, "maria@example.com", claims.Email)
		assert.Equal(t, "editor", claims.Role)
	})

	t.Run("email is normalized before lookup", func(t *testing.T) {
		env := setupAuthService(t)
		addActiveUser(t, env, "maria@example.com", "secret123")

		_, token, err := env.svc.Login(context.Background(), &models.LoginRequest{
			Email:    "  MARIA@Example.COM ",
			Password: "secret123",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("unknown email, wrong password and inactive account return the same error", func(t *testing.T) {
		env := setupAuthService(t)
		addActiveUser(t, env, "maria@example.com", "secret123")
		inactive := addActiveUser(t, env, "inativo@example.com", "secret123")
		inactive.IsActive = false

		tests := []struct {
			name     string
			email    string
			password string
		}{
			{"unknown email", "ninguem@example.com", "secret123"},
			{"wrong password", "maria@example.com", "errada123"},
			{"inactive account", "inativo@example.com", "secret123"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				user, token, err := env.svc.Login(context.Background(), &models.LoginRequest{
					Email:    tt.email,
					Password: tt.password,
				})

				assert.ErrorIs(t, err, ErrInvalidCredentials)
				assert.Nil(t, user)
				assert.Empty(t, token)
			})
		}
	})

	t.Run("malformed input fails validation before any lookup", func(t *testing.T) {
		env := setupAuthService(t)

		_, _, err := env.svc.Login(context.Background(), &models.LoginRequest{
			Email:    "not-an-email",
			Password: "12345",
		})

		var validationErr *ValidationFailedError
		require.ErrorAs(t, err, &validationErr)
		assert.Len(t, validationErr.Errors, 2)
	})
}

func TestAuthService_Register(t *testing.T) {
	t.Run("creates an active editor and login works with the same password", func(t *testing.T) {
		env := setupAuthService(t)

		user, err := env.svc.Register(context.Background(), &models.RegisterRequest{
			Name:     "João Souza",
			Email:    "Joao@Example.com",
			Password: "secret123",
		})

		require.NoError(t, err)
		assert.Equal(t, "joao@example.com", user.Email)
		assert.Equal(t, models.RoleEditor, user.Role)
		assert.True(t, user.IsActive)

		// The registered credentials must round-trip through login
		_, token, err := env.svc.Login(context.Background(), &models.LoginRequest{
			Email:    "joao@example.com",
			Password: "secret123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("password hash never serializes", func(t *testing.T) {
		env := setupAuthService(t)

		user, err := env.svc.Register(context.Background(), &models.RegisterRequest{
			Name:     "João Souza",
			Email:    "joao@example.com",
			Password: "secret123",
		})
		require.NoError(t, err)
		require.NotEmpty(t, user.PasswordHash)

		body, err := json.Marshal(user)
		require.NoError(t, err)
		assert.NotContains(t, string(body), user.PasswordHash)
		assert.NotContains(t, string(body), "password")
	})

	t.Run("six character password is the accepted minimum", func(t *testing.T) {
		env := setupAuthService(t)

		_, err := env.svc.Register(context.Background(), &models.RegisterRequest{
			Name:     "João Souza",
			Email:    "joao@example.com",
			Password: "123456",
		})
		assert.NoError(t, err)

		_, err = env.svc.Register(context.Background(), &models.RegisterRequest{
			Name:     "Ana Lima",
			Email:    "ana@example.com",
			Password: "12345",
		})
		var validationErr *ValidationFailedError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "password", validationErr.Errors[0].Field)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		env := setupAuthService(t)
		addActiveUser(t, env, "maria@example.com", "secret123")

		_, err := env.svc.Register(context.Background(), &models.RegisterRequest{
			Name:     "Maria Clone",
			Email:    "maria@example.com",
			Password: "secret123",
		})

		assert.ErrorIs(t, err, ErrEmailInUse)
	})

	t.Run("concurrent insert losing the race maps to the same error", func(t *testing.T) {
		env := setupAuthService(t)
		env.userRepo.createErr = repositories.ErrEmailExists

		_, err := env.svc.Register(context.Background(), &models.RegisterRequest{
			Name:     "Maria Clone",
			Email:    "maria@example.com",
			Password: "secret123",
		})

		assert.ErrorIs(t, err, ErrEmailInUse)
	})

	t.Run("name shorter than two characters is rejected", func(t *testing.T) {
		env := setupAuthService(t)

		_, err := env.svc.Register(context.Background(), &models.RegisterRequest{
			Name:     " J ",
			Email:    "joao@example.com",
			Password: "secret123",
		})

		var validationErr *ValidationFailedError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "name", validationErr.Errors[0].Field)
	})
}

func TestAuthService_Verify(t *testing.T) {
	t.Run("valid token returns the user and repeats identically", func(t *testing.T) {
		env := setupAuthService(t)
		stored := addActiveUser(t, env, "maria@example.com", "secret123")

		token, err := env.tm.Generate(stored.ID, stored.Email, string(stored.Role))
		require.NoError(t, err)

		first, err := env.svc.Verify(context.Background(), token)
		require.NoError(t, err)
		second, err := env.svc.Verify(context.Background(), token)
		require.NoError(t, err)

		assert.Equal(t, stored.ID, first.ID)
		assert.Equal(t, first, second)
	})

	t.Run("garbage and tampered tokens are rejected", func(t *testing.T) {
		env := setupAuthService(t)
		stored := addActiveUser(t, env, "maria@example.com", "secret123")

		token, err := env.tm.Generate(stored.ID, stored.Email, string(stored.Role))
		require.NoError(t, err)

		for _, bad := range []string{"", "garbage", token + "x"} {
			_, err := env.svc.Verify(context.Background(), bad)
			assert.ErrorIs(t, err, ErrInvalidToken)
		}
	})

	t.Run("deactivated account invalidates an outstanding token", func(t *testing.T) {
		env := setupAuthService(t)
		stored := addActiveUser(t, env, "maria@example.com", "secret123")

		token, err := env.tm.Generate(stored.ID, stored.Email, string(stored.Role))
		require.NoError(t, err)

		stored.IsActive = false

		_, err = env.svc.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token for a deleted user is rejected", func(t *testing.T) {
		env := setupAuthService(t)

		token, err := env.tm.Generate(42, "ghost@example.com", "editor")
		require.NoError(t, err)

		_, err = env.svc.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	t.Run("success rehashes and old password stops working", func(t *testing.T) {
		env := setupAuthService(t)
		stored := addActiveUser(t, env, "maria@example.com", "secret123")

		err := env.svc.ChangePassword(context.Background(), stored.ID, &models.ChangePasswordRequest{
			CurrentPassword: "secret123",
			NewPassword:     "novasenha",
		})
		require.NoError(t, err)

		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("novasenha")))
		assert.Error(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
	})

	t.Run("wrong current password is rejected", func(t *testing.T) {
		env := setupAuthService(t)
		stored := addActiveUser(t, env, "maria@example.com", "secret123")

		err := env.svc.ChangePassword(context.Background(), stored.ID, &models.ChangePasswordRequest{
			CurrentPassword: "errada123",
			NewPassword:     "novasenha",
		})

		assert.ErrorIs(t, err, ErrCurrentPasswordIncorrect)
	})

	t.Run("short new password fails validation", func(t *testing.T) {
		env := setupAuthService(t)
		stored := addActiveUser(t, env, "maria@example.com", "secret123")

		err := env.svc.ChangePassword(context.Background(), stored.ID, &models.ChangePasswordRequest{
			CurrentPassword: "secret123",
			NewPassword:     "12345",
		})

		var validationErr *ValidationFailedError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("deactivated account cannot change password", func(t *testing.T) {
		env := setupAuthService(t)
		stored := addActiveUser(t, env, "maria@example.com", "secret123")
		stored.IsActive = false

		err := env.svc.ChangePassword(context.Background(), stored.ID, &models.ChangePasswordRequest{
			CurrentPassword: "secret123",
			NewPassword:     "novasenha",
		})

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthService_ForgotPassword(t *testing.T) {
	t.Run("unknown email returns empty result without error", func(t *testing.T) {
		env := setupAuthService(t)

		result, err := env.svc.ForgotPassword(context.Background(), "ninguem@example.com")

		require.NoError(t, err)
		assert.Empty(t, result.ResetToken)
		assert.Empty(t, env.tokenRepo.tokens)
	})

	t.Run("inactive account is treated like an unknown email", func(t *testing.T) {
		env := setupAuthService(t)
		stored := addActiveUser(t, env, "inativo@example.com", "secret123")
		stored.IsActive = false

		result, err := env.svc.ForgotPassword(context.Background(), "inativo@example.com")

		require.NoError(t, err)
		assert.Empty(t, result.ResetToken)
		assert.Empty(t, env.tokenRepo.tokens)
	})

	t.Run("active account gets a one hour token", func(t *testing.T) {
		env := setupAuthService(t)
		stored := addActiveUser(t, env, "maria@example.com", "secret123")

		issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		env.svc.now = func() time.Time { return issued }

		result, err := env.svc.ForgotPassword(context.Background(), "maria@example.com")

		require.NoError(t, err)
		// Token is not exposed in the response by default
		assert.Empty(t, result.ResetToken)

		require.Len(t, env.tokenRepo.tokens, 1)
		for _, tok := range env.tokenRepo.tokens {
			assert.Equal(t, stored.ID, tok.UserID)
			assert.Len(t, tok.Token, 64)
			assert.Equal(t, issued.Add(time.Hour), tok.ExpiresAt)
			assert.False(t, tok.Used)
		}
	})

	t.Run("exposed token mode returns the token for development", func(t *testing.T) {
		env := setupAuthService(t)
		addActiveUser(t, env, "maria@example.com", "secret123")
		env.svc.exposeResetToken = true

		result, err := env.svc.ForgotPassword(context.Background(), "maria@example.com")

		require.NoError(t, err)
		assert.Len(t, result.ResetToken, 64)
	})

	t.Run("reset email carries the site link with the token", func(t *testing.T) {
		env := setupAuthService(t)
		addActiveUser(t, env, "maria@example.com", "secret123")
		env.svc.exposeResetToken = true
		env.mailer.enabled = true
		env.mailer.sent = make(chan string, 1)

		result, err := env.svc.ForgotPassword(context.Background(), "maria@example.com")
		require.NoError(t, err)

		select {
		case link := <-env.mailer.sent:
			assert.Equal(t, "https://mundodosbots.com.br/reset-password?token="+result.ResetToken, link)
		case <-time.After(2 * time.Second):
			t.Fatal("reset email was not sent")
		}
	})

	t.Run("two requests issue two distinct live tokens", func(t *testing.T) {
		env := setupAuthService(t)
		addActiveUser(t, env, "maria@example.com", "secret123")
		env.svc.exposeResetToken = true

		first, err := env.svc.ForgotPassword(context.Background(), "maria@example.com")
		require.NoError(t, err)
		second, err := env.svc.ForgotPassword(context.Background(), "maria@example.com")
		require.NoError(t, err)

		assert.NotEqual(t, first.ResetToken, second.ResetToken)

		// Both remain usable for validation
		_, err = env.svc.ValidateResetToken(context.Background(), first.ResetToken)
		assert.NoError(t, err)
		_, err = env.svc.ValidateResetToken(context.Background(), second.ResetToken)
		assert.NoError(t, err)
	})
}

func TestAuthService_ValidateResetToken(t *testing.T) {
	issueToken := func(t *testing.T, env *authTestEnv, email string) string {
		t.Helper()
		env.svc.exposeResetToken = true
		result, err := env.svc.ForgotPassword(context.Background(), email)
		require.NoError(t, err)
		require.NotEmpty(t, result.ResetToken)
		return result.ResetToken
	}

	t.Run("valid just before expiry, invalid just after", func(t *testing.T) {
		env := setupAuthService(t)
		addActiveUser(t, env, "maria@example.com", "secret123")

		issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		env.svc.now = func() time.Time { return issued }
		token := issueToken(t, env, "maria@example.com")

		env.svc.now = func() time.Time { return issued.Add(time.Hour - time.Second) }
		email, err := env.svc.ValidateResetToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "maria@example.com", email)

		env.svc.now = func() time.Time { return issued.Add(time.Hour + time.Second) }
		_, err = env.svc.ValidateResetToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		env := setupAuthService(t)

		_, err := env.svc.ValidateResetToken(context.Background(), "deadbeef")
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})

	t.Run("token of a deactivated account is rejected", func(t *testing.T) {
		env := setupAuthService(t)
		stored := addActiveUser(t, env, "maria@example.com", "secret123")
		token := issueToken(t, env, "maria@example.com")

		stored.IsActive = false

		_, err := env.svc.ValidateResetToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	issueToken := func(t *testing.T, env *authTestEnv, email string) string {
		t.Helper()
		env.svc.exposeResetToken = true
		result, err := env.svc.ForgotPassword(context.Background(), email)
		require.NoError(t, err)
		return result.ResetToken
	}

	t.Run("consumes the token and the new password logs in", func(t *testing.T) {
		env := setupAuthService(t)
		addActiveUser(t, env, "maria@example.com", "secret123")
		token := issueToken(t, env, "maria@example.com")

		err := env.svc.ResetPassword(context.Background(), &models.ResetPasswordRequest{
			Token:       token,
			NewPassword: "novasenha",
		})
		require.NoError(t, err)

		_, sessionToken, err := env.svc.Login(context.Background(), &models.LoginRequest{
			Email:    "maria@example.com",
			Password: "novasenha",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, sessionToken)
	})

	t.Run("token is single use", func(t *testing.T) {
		env := setupAuthService(t)
		addActiveUser(t, env, "maria@example.com", "secret123")
		token := issueToken(t, env, "maria@example.com")

		req := &models.ResetPasswordRequest{Token: token, NewPassword: "novasenha"}
		require.NoError(t, env.svc.ResetPassword(context.Background(), req))

		err := env.svc.ResetPassword(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidResetToken)

		// A consumed token no longer validates either
		_, err = env.svc.ValidateResetToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		env := setupAuthService(t)
		addActiveUser(t, env, "maria@example.com", "secret123")

		issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		env.svc.now = func() time.Time { return issued }
		token := issueToken(t, env, "maria@example.com")

		env.svc.now = func() time.Time { return issued.Add(2 * time.Hour) }

		err := env.svc.ResetPassword(context.Background(), &models.ResetPasswordRequest{
			Token:       token,
			NewPassword: "novasenha",
		})
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})

	t.Run("short password fails before touching the token", func(t *testing.T) {
		env := setupAuthService(t)
		addActiveUser(t, env, "maria@example.com", "secret123")
		token := issueToken(t, env, "maria@example.com")

		err := env.svc.ResetPassword(context.Background(), &models.ResetPasswordRequest{
			Token:       token,
			NewPassword: "12345",
		})

		var validationErr *ValidationFailedError
		require.ErrorAs(t, err, &validationErr)

		// The token survives the failed attempt
		_, err = env.svc.ValidateResetToken(context.Background(), token)
		assert.NoError(t, err)
	})
}
