package dto

import (
	"time"

	"github.com/spec-kit/storefront-api/internal/domain"
)

// AddressDTO is the wire form of a profile address.
type AddressDTO struct {
	Area    string `json:"area" validate:"max=100"`
	Street  string `json:"street" validate:"max=200"`
	City    string `json:"city" validate:"max=100"`
	State   string `json:"state" validate:"max=100"`
	ZipCode string `json:"zipCode" validate:"omitempty,max=12"`
	Country string `json:"country" validate:"max=100"`
}

// ToDomain converts the address.
func (a AddressDTO) ToDomain() domain.Address {
	return domain.Address{
		Area:    a.Area,
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		ZipCode: a.ZipCode,
		Country: a.Country,
	}
}

// UserResponse is the public view of an account. The password hash and OTP
// fields are never serialized.
type UserResponse struct {
	ID           string     `json:"id"`
	Phone        string     `json:"phone"`
	Name         string     `json:"name,omitempty"`
	Email        string     `json:"email,omitempty"`
	Username     string     `json:"username,omitempty"`
	Role         string     `json:"role"`
	Active       bool       `json:"isActive"`
	Verified     bool       `json:"isVerified"`
	IsRegistered bool       `json:"isRegistered"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	Address      AddressDTO `json:"address"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// NewUserResponse builds the public view of user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Phone:        user.Phone,
		Name:         user.Name,
		Email:        user.Email,
		Username:     user.Username,
		Role:         string(user.Role),
		Active:       user.Active,
		Verified:     user.Verified,
		IsRegistered: user.IsRegistered(),
		LastLogin:    user.LastLogin,
		Address: AddressDTO{
			Area:    user.Address.Area,
			Street:  user.Address.Street,
			City:    user.Address.City,
			State:   user.Address.State,
			ZipCode: user.Address.ZipCode,
			Country: user.Address.Country,
		},
		CreatedAt: user.CreatedAt,
	}
}

// NewUserResponses maps a slice.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// UpdateProfileRequest carries optional profile changes.
type UpdateProfileRequest struct {
	Name     *string     `json:"name" validate:"omitempty,min=1,max=100"`
	Email    *string     `json:"email" validate:"omitempty,email"`
	Username *string     `json:"username" validate:"omitempty,max=50"`
	Address  *AddressDTO `json:"address" validate:"omitempty"`
}
