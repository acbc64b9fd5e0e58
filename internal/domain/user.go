package domain

import "time"

// Role controls access to administrative routes.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Address is the postal address kept on a user profile.
type Address struct {
	Area    string
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// User is a customer account keyed by a normalized 10 digit phone number.
// A user created by an OTP request carries only Phone until registration
// is completed.
type User struct {
	ID           string
	Phone        string
	Name         string
	Email        string
	Username     string
	PasswordHash string
	Role         Role
	Active       bool
	Verified     bool
	OTPCode      *string
	OTPExpires   *time.Time
	LastLogin    *time.Time
	Address      Address
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsRegistered reports whether the profile has been completed.
func (u *User) IsRegistered() bool {
	return u.Name != "" && u.Email != ""
}

// HasPendingOTP reports whether a code is outstanding, expired or not.
func (u *User) HasPendingOTP() bool {
	return u.OTPCode != nil && u.OTPExpires != nil
}

// OTPExpired reports whether the outstanding code expired at now.
func (u *User) OTPExpired(now time.Time) bool {
	return u.OTPExpires == nil || !now.Before(*u.OTPExpires)
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
