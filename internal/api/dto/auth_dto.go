package dto

import "time"

// SendOTPRequest payload for POST /api/auth/send-otp.
type SendOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// SendOTPResponse reports an issued code. OTP is only set in debug mode.
type SendOTPResponse struct {
	Phone        string    `json:"phone"`
	OTPIssued    bool      `json:"otpIssued"`
	IsRegistered bool      `json:"isRegistered"`
	ExpiresAt    time.Time `json:"expiresAt"`
	OTP          string    `json:"otp,omitempty"`
}

// VerifyOTPRequest payload for POST /api/auth/verify-otp.
type VerifyOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// RegisterDetailsRequest completes the profile of a verified account.
type RegisterDetailsRequest struct {
	Name     string      `json:"name" validate:"required,max=100"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6,max=72"`
	Username string      `json:"username" validate:"omitempty,max=50"`
	Address  *AddressDTO `json:"address" validate:"omitempty"`
}

// LoginRequest payload for email and password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest payload for a reset request.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPasswordResponse echoes the token only in debug mode.
type ForgotPasswordResponse struct {
	ExpiresAt  time.Time `json:"expiresAt"`
	ResetToken string    `json:"resetToken,omitempty"`
}

// ResetPasswordRequest payload for confirming a reset.
type ResetPasswordRequest struct {
	ResetToken string `json:"resetToken" validate:"required"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
}

// ChangePasswordRequest payload for PUT /api/auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// AuthResponse standard response for endpoints that mint a session.
type AuthResponse struct {
	Token        string       `json:"token"`
	ExpiresAt    time.Time    `json:"expiresAt"`
	IsRegistered bool         `json:"isRegistered"`
	User         UserResponse `json:"user"`
}
