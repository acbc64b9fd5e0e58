package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/auth"
	"github.com/spec-kit/storefront-api/internal/clock"
	"github.com/spec-kit/storefront-api/internal/config"
	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/events"
	"github.com/spec-kit/storefront-api/internal/ratelimit"
	"github.com/spec-kit/storefront-api/internal/repository"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

// AuthService coordinates OTP, registration and password flows.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	limiter    ratelimit.Limiter
	tokenMgr   *auth.TokenManager
	clock      clock.Clock
	events     publisher
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
	otpTTL     time.Duration
	cooldown   time.Duration
	debugEcho  bool
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Limiter           ratelimit.Limiter
	Tokens            *auth.TokenManager
	Clock             clock.Clock
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
}

// OTPIssue is the outcome of a successful sendOtp. Code is only populated when
// debug echo is enabled.
type OTPIssue struct {
	Phone        string
	IsRegistered bool
	ExpiresAt    time.Time
	Code         string
}

// VerifyResult is the outcome of a successful verifyOtp.
type VerifyResult struct {
	User         *domain.User
	Session      *domain.Session
	IsRegistered bool
}

// RegistrationInput holds the profile completed after OTP verification.
type RegistrationInput struct {
	Name     string
	Email    string
	Password string
	Username string
	Address  domain.Address
}

// ResetIssue is the outcome of a password reset request. Token is only populated
// when debug echo is enabled and the email belongs to an account.
type ResetIssue struct {
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL(), clk)
	}
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		limiter:    deps.Limiter,
		tokenMgr:   tokens,
		clock:      clk,
		events:     publisher{dispatcher: deps.Dispatcher, logger: logger},
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
		resetTTL:   cfg.PasswordResetTTL(),
		otpTTL:     cfg.OTPTTL(),
		cooldown:   cfg.OTPCooldown(),
		debugEcho:  cfg.OTPDebugEcho,
	}
}

// SendOTP issues a fresh code for phone, creating a pending account on first
// contact. A second request inside the cooldown window fails without touching
// the stored code. Deactivated accounts are refused before a code is written.
func (s *AuthService) SendOTP(ctx context.Context, rawPhone string) (*OTPIssue, error) {
	if strings.TrimSpace(rawPhone) == "" {
		return nil, apperrors.NewValidationError("phone is required", map[string]any{"phone": "required"})
	}
	phone := auth.NormalizePhone(rawPhone)
	if !auth.ValidPhone(phone) {
		return nil, apperrors.NewValidationError("invalid phone number", map[string]any{"phone": "must contain 10 digits"})
	}

	existing, err := s.users.GetByPhone(ctx, phone)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil && !existing.Active {
		return nil, apperrors.NewUnauthorized("account is deactivated")
	}

	acquired, err := s.limiter.TryAcquire(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("acquire otp cooldown: %w", err)
	}
	if !acquired {
		return nil, apperrors.NewRateLimited("please wait before requesting another OTP", int(s.cooldown/time.Second))
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		s.releaseCooldown(ctx, phone)
		return nil, fmt.Errorf("generate otp: %w", err)
	}
	now := s.clock.Now()
	expiresAt := now.Add(s.otpTTL)

	user, err := s.storeCode(ctx, phone, code, expiresAt)
	if err != nil {
		s.releaseCooldown(ctx, phone)
		return nil, err
	}

	s.events.publish(ctx, events.New(events.EventOTPIssued, user.ID, now, events.OTPIssuedPayload{
		Phone:     phone,
		Code:      code,
		ExpiresAt: expiresAt,
	}))

	issue := &OTPIssue{Phone: phone, IsRegistered: user.IsRegistered(), ExpiresAt: expiresAt}
	if s.debugEcho {
		issue.Code = code
	}
	return issue, nil
}

// storeCode overwrites the code of an existing account or creates a pending one.
// A concurrent first request for the same phone surfaces as ErrDuplicate on
// create and is retried as an overwrite.
func (s *AuthService) storeCode(ctx context.Context, phone, code string, expiresAt time.Time) (*domain.User, error) {
	user, err := s.users.SetOTP(ctx, phone, code, expiresAt)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("store otp: %w", err)
	}

	user, err = s.users.CreatePending(ctx, phone, code, expiresAt)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, fmt.Errorf("create pending user: %w", err)
	}

	user, err = s.users.SetOTP(ctx, phone, code, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("store otp after concurrent create: %w", err)
	}
	return user, nil
}

func (s *AuthService) releaseCooldown(ctx context.Context, phone string) {
	if err := s.limiter.Release(ctx, phone); err != nil {
		s.logger.Warn("release otp cooldown", zap.String("phone", phone), zap.Error(err))
	}
}

// VerifyOTP checks code against the outstanding code for phone. An expired code
// is cleared before the failure is returned. On success the code is consumed,
// the account is marked verified and a session is issued.
func (s *AuthService) VerifyOTP(ctx context.Context, rawPhone, code string) (*VerifyResult, error) {
	phone := auth.NormalizePhone(rawPhone)
	details := map[string]any{}
	if !auth.ValidPhone(phone) {
		details["phone"] = "must contain 10 digits"
	}
	if !auth.ValidOTPFormat(code) {
		details["otp"] = "must be exactly 6 digits"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid phone or OTP", details)
	}

	user, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	if !user.Active {
		return nil, apperrors.NewUnauthorized("account is deactivated")
	}
	if user.OTPCode == nil {
		return nil, apperrors.NewOTPMismatch()
	}

	now := s.clock.Now()
	if user.OTPExpired(now) {
		if err := s.users.ClearOTP(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("clear expired otp: %w", err)
		}
		return nil, apperrors.NewOTPExpired()
	}
	if !auth.CodesEqual(*user.OTPCode, code) {
		return nil, apperrors.NewOTPMismatch()
	}

	consumed, err := s.users.ConsumeOTP(ctx, user.ID, code, now)
	if err != nil {
		return nil, fmt.Errorf("consume otp: %w", err)
	}
	if !consumed {
		// Another request consumed or replaced the code first.
		return nil, apperrors.NewOTPMismatch()
	}
	user.OTPCode = nil
	user.OTPExpires = nil
	user.Verified = true
	user.LastLogin = &now

	session, err := s.tokenMgr.IssueSession(user)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return &VerifyResult{User: user, Session: session, IsRegistered: user.IsRegistered()}, nil
}

// CompleteRegistration fills in the profile of a verified account. It succeeds at
// most once per account.
func (s *AuthService) CompleteRegistration(ctx context.Context, userID string, input RegistrationInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	if user.IsRegistered() {
		return nil, apperrors.NewAlreadyRegistered()
	}
	if !user.Verified {
		return nil, apperrors.NewForbidden("phone number not verified")
	}

	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	details := map[string]any{}
	if name == "" {
		details["name"] = "required"
	}
	if !validEmail(email) {
		details["email"] = "must be a valid email"
	}
	if len(input.Password) < auth.MinPasswordLength {
		details["password"] = fmt.Sprintf("must be at least %d characters", auth.MinPasswordLength)
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid registration details", details)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user.Name = name
	user.Email = email
	user.PasswordHash = hash
	user.Username = strings.TrimSpace(input.Username)
	user.Address = input.Address
	applied, err := s.users.CompleteProfile(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already in use", map[string]any{"email": email})
		}
		return nil, err
	}
	if !applied {
		return nil, apperrors.NewAlreadyRegistered()
	}

	s.events.publish(ctx, events.New(events.EventRegistrationCompleted, user.ID, s.clock.Now(),
		events.RegistrationCompletedPayload{Name: user.Name, Email: user.Email}))
	return user, nil
}

// LoginWithPassword authenticates a registered account by email.
func (s *AuthService) LoginWithPassword(ctx context.Context, email, password string) (*VerifyResult, error) {
	invalid := apperrors.NewUnauthorized("invalid email or password")

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, invalid
		}
		return nil, err
	}
	if !user.Active {
		return nil, invalid
	}

	now := s.clock.Now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	session, err := s.tokenMgr.IssueSession(user)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return &VerifyResult{User: user, Session: session, IsRegistered: user.IsRegistered()}, nil
}

// Me returns the account behind a session.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// Logout currently no-ops for stateless JWT approach.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// RequestPasswordReset stores a single use reset token for the account owning
// email. Unknown emails return the same empty result so callers cannot probe for
// accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*ResetIssue, error) {
	now := s.clock.Now()
	issue := &ResetIssue{ExpiresAt: now.Add(s.resetTTL)}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return issue, nil
		}
		return nil, err
	}
	if !user.Active {
		return issue, nil
	}

	token, hash, err := auth.NewResetToken()
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}
	record := &domain.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: issue.ExpiresAt,
	}
	if err := s.resets.Create(ctx, record); err != nil {
		return nil, err
	}

	s.events.publish(ctx, events.New(events.EventPasswordResetRequested, user.ID, now,
		events.PasswordResetRequestedPayload{Email: user.Email, Token: token, ExpiresAt: issue.ExpiresAt}))

	if s.debugEcho {
		issue.Token = token
	}
	return issue, nil
}

// ConfirmPasswordReset validates the reset token and updates password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return apperrors.NewValidationError("password too short",
			map[string]any{"password": fmt.Sprintf("must be at least %d characters", auth.MinPasswordLength)})
	}
	invalid := apperrors.NewValidationError("invalid or expired reset token", nil)

	record, err := s.resets.GetByTokenHash(ctx, auth.HashResetToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid
		}
		return err
	}
	now := s.clock.Now()
	if record.UsedAt != nil || !now.Before(record.ExpiresAt) {
		return invalid
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.resets.MarkUsed(ctx, record.ID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid
		}
		return err
	}

	if err := s.users.SetPasswordHash(ctx, record.UserID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid
		}
		return err
	}
	return nil
}

// ChangePassword verifies current password before updating to new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return apperrors.NewValidationError("password too short",
			map[string]any{"newPassword": fmt.Sprintf("must be at least %d characters", auth.MinPasswordLength)})
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return apperrors.NewUnauthorized("current password is incorrect")
		}
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.SetPasswordHash(ctx, user.ID, hash)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
