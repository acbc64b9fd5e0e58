package domain

import "time"

// Session is a bearer credential minted for a user.
type Session struct {
	UserID    string
	Role      Role
	Token     string
	ExpiresAt time.Time
}

// PasswordResetToken is a single use reset credential. Only the SHA-256 of the
// token handed to the user is stored.
type PasswordResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
