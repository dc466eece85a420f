package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shoefit/shoefit-server/internal/auth"
	"github.com/shoefit/shoefit-server/internal/domain"
	domainerrors "github.com/shoefit/shoefit-server/internal/errors"
	"github.com/shoefit/shoefit-server/internal/id"
	"github.com/shoefit/shoefit-server/internal/metrics"
	"github.com/shoefit/shoefit-server/internal/store"
)

const invalidCredentialsMessage = "invalid email or password"

// AuthService handles sign up, sign in and token verification.
// Session management is delegated to SessionService.
type AuthService struct {
	store          store.Store
	tokenService   *auth.TokenService
	sessionService *SessionService
	metrics        *metrics.Metrics
	logger         *slog.Logger

	passwordParams auth.PasswordParams

	// Serializes Setup so two concurrent calls cannot both create an admin.
	setupMu sync.Mutex

	dummyHashOnce sync.Once
	dummyHash     string
}

// NewAuthService creates a new authentication service. m may be nil.
func NewAuthService(
	store store.Store,
	tokenService *auth.TokenService,
	sessionService *SessionService,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:          store,
		tokenService:   tokenService,
		sessionService: sessionService,
		metrics:        m,
		logger:         orDiscard(logger),
		passwordParams: auth.DefaultPasswordParams,
	}
}

// SetPasswordParams overrides the argon2id cost used for new hashes.
// Stored hashes made with other parameters are upgraded on login.
func (s *AuthService) SetPasswordParams(p auth.PasswordParams) {
	s.passwordParams = p
}

// SetupRequest contains the first admin account's data.
type SetupRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"display_name" validate:"max=100"`
}

// RegisterRequest contains sign-up data.
type RegisterRequest struct {
	Email       string          `json:"email" validate:"required,email,max=254"`
	Password    string          `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string          `json:"display_name" validate:"max=100"`
	DeviceInfo  auth.DeviceInfo `json:"device_info"`
	IPAddress   string          `json:"-"`
}

// LoginRequest contains user credentials and device information.
type LoginRequest struct {
	Email      string          `json:"email" validate:"required,email,max=254"`
	Password   string          `json:"password" validate:"required,max=1024"`
	DeviceInfo auth.DeviceInfo `json:"device_info"`
	IPAddress  string          `json:"-"` // Extracted from request by handler
}

// RefreshRequest contains the refresh token and updated device info.
type RefreshRequest struct {
	RefreshToken string          `json:"refresh_token" validate:"required,max=256"`
	DeviceInfo   auth.DeviceInfo `json:"device_info"` // Optional updates
	IPAddress    string          `json:"-"`
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Setup creates the first account as admin and signs it in.
// It fails with ALREADY_CONFIGURED once any user exists.
func (s *AuthService) Setup(ctx context.Context, req SetupRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	s.setupMu.Lock()
	defer s.setupMu.Unlock()

	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil, domainerrors.AlreadyConfigured("server is already configured")
	}

	user, err := s.createUser(ctx, req.Email, req.Password, req.DisplayName, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, auth.DeviceInfo{}, "")
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("server setup complete", "user_id", user.ID)

	return &AuthResponse{User: user, SessionResponse: *sessionResp}, nil
}

// Register creates a member account and signs it in. The account is active
// immediately.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, req.Email, req.Password, req.DisplayName, domain.RoleMember)
	if err != nil {
		return nil, err
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.DeviceInfo, req.IPAddress)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)

	return &AuthResponse{User: user, SessionResponse: *sessionResp}, nil
}

// Login authenticates a user and creates a new session.
// Unknown emails and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Spend the same hashing time as a real check so response
			// timing does not reveal whether the email exists.
			auth.VerifyPassword(s.getDummyHash(), req.Password)
			s.metrics.RecordLogin("failure")
			return nil, domainerrors.InvalidCredentials(invalidCredentialsMessage)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.metrics.RecordLogin("failure")
		return nil, domainerrors.InvalidCredentials(invalidCredentialsMessage)
	}

	if s.passwordParams.NeedsRehash(user.PasswordHash) {
		if hash, err := s.passwordParams.Hash(req.Password); err == nil {
			user.PasswordHash = hash
		} else {
			s.logger.Warn("failed to rehash password", "user_id", user.ID, "error", err)
		}
	}

	user.LastLoginAt = time.Now()
	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		// Log but don't fail login
		s.logger.Warn("failed to update user on login", "user_id", user.ID, "error", err)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.DeviceInfo, req.IPAddress)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.metrics.RecordLogin("success")
	s.logger.Info("user logged in",
		"user_id", user.ID,
		"device", req.DeviceInfo.Platform,
	)

	return &AuthResponse{User: user, SessionResponse: *sessionResp}, nil
}

// RefreshTokens rotates the refresh token and issues a new access token.
func (s *AuthService) RefreshTokens(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	sessionResp, user, err := s.sessionService.RefreshSession(ctx, req.RefreshToken, req.DeviceInfo, req.IPAddress)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: user, SessionResponse: *sessionResp}, nil
}

// Logout revokes the session holding refreshToken.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return domainerrors.Validation("refresh_token is required")
	}
	return s.sessionService.RevokeRefreshToken(ctx, refreshToken)
}

// VerifyAccessToken validates a token and returns the associated user.
// Used by the authentication middleware.
func (s *AuthService) VerifyAccessToken(ctx context.Context, tokenString string) (*domain.User, *auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, nil, domainerrors.Unauthorized("invalid or expired access token").WithCause(err)
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.Unauthorized("user no longer exists")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	return user, claims, nil
}

// GetUser returns a user by id.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// IsSetupRequired reports whether no account exists yet.
func (s *AuthService) IsSetupRequired(ctx context.Context) (bool, error) {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count == 0, nil
}

// CreateUser creates an account without signing it in. Used by the seed tool.
func (s *AuthService) CreateUser(ctx context.Context, email, password, displayName string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domainerrors.Validationf("unknown role %q", role)
	}
	if err := validate.Validate(RegisterRequest{Email: email, Password: password, DisplayName: displayName}); err != nil {
		return nil, err
	}
	return s.createUser(ctx, email, password, displayName, role)
}

func (s *AuthService) createUser(ctx context.Context, email, password, displayName string, role domain.Role) (*domain.User, error) {
	passwordHash, err := s.passwordParams.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Entity:       domain.Entity{ID: userID},
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         role,
		DisplayName:  strings.TrimSpace(displayName),
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (s *AuthService) getDummyHash() string {
	s.dummyHashOnce.Do(func() {
		s.dummyHash, _ = s.passwordParams.Hash("dummy-password-for-timing")
	})
	return s.dummyHash
}

// normalizeEmail trims surrounding space. Matching is case-insensitive in the
// store, so the original casing is kept for display.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
