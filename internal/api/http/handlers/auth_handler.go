package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-api/internal/api/dto"
	"github.com/spec-kit/storefront-api/internal/service"
)

// AuthHandler exposes the OTP, session and password endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// SendOTP handles POST /api/auth/send-otp.
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req dto.SendOTPRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	issue, err := h.auth.SendOTP(c.UserContext(), req.Phone)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "OTP sent successfully", dto.SendOTPResponse{
		Phone:        issue.Phone,
		OTPIssued:    true,
		IsRegistered: issue.IsRegistered,
		ExpiresAt:    issue.ExpiresAt,
		OTP:          issue.Code,
	})
}

// VerifyOTP handles POST /api/auth/verify-otp.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	result, err := h.auth.VerifyOTP(c.UserContext(), req.Phone, req.OTP)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "OTP verified successfully", authResponse(result))
}

// RegisterDetails handles POST /api/auth/register-details.
func (h *AuthHandler) RegisterDetails(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.RegisterDetailsRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	input := service.RegistrationInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	}
	if req.Address != nil {
		input.Address = req.Address.ToDomain()
	}
	registered, err := h.auth.CompleteRegistration(c.UserContext(), user.ID, input)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "registration completed", fiber.Map{
		"user": dto.NewUserResponse(registered),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	result, err := h.auth.LoginWithPassword(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "login successful", authResponse(result))
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	fresh, err := h.auth.Me(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", fiber.Map{"user": dto.NewUserResponse(fresh)})
}

// Logout handles POST /api/auth/logout. Tokens are stateless; the client
// discards its copy.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), user.ID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "logged out successfully", nil)
}

// ForgotPassword handles POST /api/auth/forgot-password. The response is the
// same whether or not the email belongs to an account.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	issue, err := h.auth.RequestPasswordReset(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "if the email is registered, a reset token has been sent", dto.ForgotPasswordResponse{
		ExpiresAt:  issue.ExpiresAt,
		ResetToken: issue.Token,
	})
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	if err := h.auth.ConfirmPasswordReset(c.UserContext(), req.ResetToken, req.Password); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "password has been reset", nil)
}

// ChangePassword handles PUT /api/auth/change-password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	if err := h.auth.ChangePassword(c.UserContext(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "password updated", nil)
}

func authResponse(result *service.VerifyResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token:        result.Session.Token,
		ExpiresAt:    result.Session.ExpiresAt,
		IsRegistered: result.IsRegistered,
		User:         dto.NewUserResponse(result.User),
	}
}
